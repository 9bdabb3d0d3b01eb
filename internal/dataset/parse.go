package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"

	"sales-dashboard/internal/models"
)

const (
	batchSize  = 10000
	maxWorkers = 10
)

// Required input columns, matched case-insensitively.
const (
	ColDate         = "Date"
	ColRegion       = "Region"
	ColProduct      = "Product"
	ColSales        = "Sales"
	ColSatisfaction = "Customer_Satisfaction"
	ColGender       = "Customer_Gender"
	ColAge          = "Customer_Age"
)

var requiredColumns = []string{ColDate, ColRegion, ColProduct, ColSales, ColSatisfaction, ColGender, ColAge}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"01-02-06",
	"1/2/06",
}

type columnIndex map[string]int

// readRows returns every row of the file including the header.
func readRows(path string) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return readWorkbook(path)
	case ".tsv":
		return readDelimited(path, '\t')
	case ".csv", ".txt", "":
		return readDelimited(path, ',')
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedExt, filepath.Ext(path))
	}
}

func readDelimited(path string, comma rune) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.Comma = comma
	reader.TrimLeadingSpace = true

	var rows [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("malformed input: %w", err)
		}
		rows = append(rows, record)
	}
	return rows, nil
}

func readWorkbook(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("read sheet: %w", err)
	}

	// Excel keeps blank rows between data; they carry no record.
	kept := rows[:0]
	for _, row := range rows {
		if !isBlank(row) {
			kept = append(kept, row)
		}
	}
	return kept, nil
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func mapHeader(header []string) (columnIndex, error) {
	positions := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := positions[name]; !dup {
			positions[name] = i
		}
	}

	idx := make(columnIndex, len(requiredColumns))
	for _, col := range requiredColumns {
		pos, ok := positions[strings.ToLower(col)]
		if !ok {
			return nil, &ParseError{Line: 1, Column: col, Err: ErrMissingColumn}
		}
		idx[col] = pos
	}
	return idx, nil
}

// parseRecords converts data rows to records in parallel batches. Output
// order matches input order and the reported error is the first bad row
// in file order.
func parseRecords(ctx context.Context, rows [][]string, idx columnIndex) ([]models.SaleRecord, error) {
	records := make([]models.SaleRecord, len(rows))
	batches := (len(rows) + batchSize - 1) / batchSize
	errs := make([]error, batches)

	var g errgroup.Group
	g.SetLimit(maxWorkers)

	for b := range batches {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			start := b * batchSize
			end := min(start+batchSize, len(rows))
			for i := start; i < end; i++ {
				// +2: one for the header, one for 1-based lines
				rec, err := parseRecord(rows[i], idx, i+2)
				if err != nil {
					errs[b] = err
					return nil
				}
				records[i] = rec
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return records, nil
}

func parseRecord(row []string, idx columnIndex, line int) (models.SaleRecord, error) {
	cell := func(col string) string {
		pos := idx[col]
		if pos >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[pos])
	}

	date, err := parseDate(cell(ColDate))
	if err != nil {
		return models.SaleRecord{}, &ParseError{Line: line, Column: ColDate, Value: cell(ColDate), Err: err}
	}

	sales, err := parseAmount(cell(ColSales))
	if err != nil {
		return models.SaleRecord{}, &ParseError{Line: line, Column: ColSales, Value: cell(ColSales), Err: err}
	}

	satisfaction, err := parseFloat(cell(ColSatisfaction))
	if err != nil {
		return models.SaleRecord{}, &ParseError{Line: line, Column: ColSatisfaction, Value: cell(ColSatisfaction), Err: err}
	}

	age, err := strconv.Atoi(cell(ColAge))
	if err != nil {
		return models.SaleRecord{}, &ParseError{Line: line, Column: ColAge, Value: cell(ColAge), Err: ErrInvalidValue}
	}
	if age < 0 {
		return models.SaleRecord{}, &ParseError{Line: line, Column: ColAge, Value: cell(ColAge), Err: ErrNegativeValue}
	}

	return models.SaleRecord{
		Date:                 date,
		Region:               cell(ColRegion),
		Product:              cell(ColProduct),
		Sales:                sales,
		CustomerSatisfaction: satisfaction,
		CustomerGender:       cell(ColGender),
		CustomerAge:          age,
	}, nil
}

// parseFloat rejects NaN and infinities so they never reach a metric.
func parseFloat(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrInvalidValue
	}
	return v, nil
}

func parseAmount(s string) (float64, error) {
	v, err := parseFloat(s)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, ErrNegativeValue
	}
	return v, nil
}

// parseDate accepts the layouts in dateLayouts and drops the time of day.
func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, ErrInvalidValue
}
