package dataset

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"
)

// Loader reads sale files and remembers the outcome per path for its own
// lifetime. A path is read at most once unless the read was interrupted by
// its context.
type Loader struct {
	mu      sync.Mutex
	entries map[string]*entry
	reads   atomic.Int64
}

type entry struct {
	mu   sync.Mutex
	done bool
	ds   *Dataset
	err  error
}

var defaultLoader = NewLoader()

func NewLoader() *Loader {
	return &Loader{entries: make(map[string]*entry)}
}

// Default returns the process-wide Loader.
func Default() *Loader {
	return defaultLoader
}

// Load reads path through the process-wide Loader.
func Load(ctx context.Context, path string) (*Dataset, error) {
	return defaultLoader.Load(ctx, path)
}

// Load returns the Dataset for path, reading the file on first use. The
// outcome of the first completed read, success or failure, is returned to
// every later caller.
func (l *Loader) Load(ctx context.Context, path string) (*Dataset, error) {
	e := l.entry(cacheKey(path))

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.done {
		return e.ds, e.err
	}

	ds, err := l.read(ctx, path)
	if err != nil && ctx.Err() != nil {
		return nil, err
	}

	e.ds, e.err, e.done = ds, err, true
	return ds, err
}

// Reads reports how many times a file was actually read.
func (l *Loader) Reads() int64 {
	return l.reads.Load()
}

func (l *Loader) entry(key string) *entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok {
		e = &entry{}
		l.entries[key] = e
	}
	return e
}

func (l *Loader) read(ctx context.Context, path string) (*Dataset, error) {
	l.reads.Add(1)
	start := time.Now()
	logger := slog.Default()
	logger.Info("reading dataset", "path", path)

	rows, err := readRows(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	if len(rows) == 0 {
		return nil, &LoadError{Path: path, Err: ErrEmptyFile}
	}

	idx, err := mapHeader(rows[0])
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	records, err := parseRecords(ctx, rows[1:], idx)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	ds := New(path, records)

	duration := time.Since(start)
	logger.Info("dataset loaded",
		"path", path,
		"records", ds.Len(),
		"duration", duration,
		"rate", fmt.Sprintf("%.0f records/sec", float64(ds.Len())/max(duration.Seconds(), 1e-9)),
	)
	return ds, nil
}

func cacheKey(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}
