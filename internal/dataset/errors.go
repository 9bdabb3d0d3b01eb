package dataset

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyFile      = errors.New("empty file")
	ErrMissingColumn  = errors.New("missing required column")
	ErrInvalidValue   = errors.New("invalid value")
	ErrNegativeValue  = errors.New("value must not be negative")
	ErrUnsupportedExt = errors.New("unsupported file type")
)

// LoadError is returned for every failure to produce a Dataset. When the
// failure is about content rather than access, Err is a *ParseError.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// ParseError locates a bad header or cell. Line is 1-based and counts the
// header; it is 1 for header problems.
type ParseError struct {
	Line   int
	Column string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("line %d: column %q: %v", e.Line, e.Column, e.Err)
	}
	return fmt.Sprintf("line %d: column %q: value %q: %v", e.Line, e.Column, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
