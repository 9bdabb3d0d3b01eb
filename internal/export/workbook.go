// Package export writes a filtered dashboard view as an Excel workbook.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"sales-dashboard/internal/dataset"
	"sales-dashboard/internal/models"
)

const (
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	SheetRecords  = "Records"
	SheetSummary  = "Summary"
	SheetDaily    = "Daily Sales"
	SheetRegions  = "Regions"
	SheetProducts = "Products"
)

// Workbook builds the export. Records is the first sheet and uses the input
// column names, so an exported file can be loaded again as a dataset.
func Workbook(d models.Dashboard, records []models.SaleRecord) (*excelize.File, error) {
	f := excelize.NewFile()

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	b := &builder{f: f, header: header}
	if err := f.SetSheetName(f.GetSheetName(0), SheetRecords); err != nil {
		return nil, fmt.Errorf("rename first sheet: %w", err)
	}

	b.table(SheetRecords,
		[]any{dataset.ColDate, dataset.ColRegion, dataset.ColProduct, dataset.ColSales,
			dataset.ColSatisfaction, dataset.ColGender, dataset.ColAge},
		len(records), func(i int) []any {
			r := records[i]
			return []any{r.Date.Format(models.DateLayout), r.Region, r.Product, r.Sales,
				r.CustomerSatisfaction, r.CustomerGender, r.CustomerAge}
		})

	b.sheet(SheetSummary)
	b.rows(SheetSummary, summaryRows(d))

	b.sheet(SheetDaily)
	b.table(SheetDaily, []any{"Date", "Sales"}, len(d.DailySales), func(i int) []any {
		return []any{d.DailySales[i].Date, d.DailySales[i].Sales}
	})

	b.sheet(SheetRegions)
	b.table(SheetRegions, []any{"Region", "Sales"}, len(d.RegionalSales), func(i int) []any {
		return []any{d.RegionalSales[i].Region, d.RegionalSales[i].Sales}
	})

	b.sheet(SheetProducts)
	satisfaction := make(map[string]float64, len(d.SatisfactionByProduct))
	for _, p := range d.SatisfactionByProduct {
		satisfaction[p.Product] = p.AverageSatisfaction
	}
	b.table(SheetProducts, []any{"Product", "Sales", "Average Satisfaction"}, len(d.ProductSales), func(i int) []any {
		p := d.ProductSales[i]
		return []any{p.Product, p.Sales, satisfaction[p.Product]}
	})

	if b.err != nil {
		f.Close()
		return nil, b.err
	}
	return f, nil
}

// Write streams the workbook to w.
func Write(w io.Writer, d models.Dashboard, records []models.SaleRecord) error {
	f, err := Workbook(d, records)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func summaryRows(d models.Dashboard) [][]any {
	c := d.Criteria
	m := d.Metrics
	return [][]any{
		{"Start", c.Start.Format(models.DateLayout)},
		{"End", c.End.Format(models.DateLayout)},
		{"Regions", strings.Join(c.Regions, ", ")},
		{"Products", strings.Join(c.Products, ", ")},
		{},
		{"Total Sales", m.TotalSales},
		{"Average Order Value", m.AverageOrderValue},
		{"Record Count", m.RecordCount},
		{"Average Satisfaction", m.AverageSatisfaction},
	}
}

// builder keeps the first error so sheet construction reads linearly.
type builder struct {
	f      *excelize.File
	header int
	err    error
}

func (b *builder) sheet(name string) {
	if b.err != nil {
		return
	}
	if _, err := b.f.NewSheet(name); err != nil {
		b.err = fmt.Errorf("create sheet %s: %w", name, err)
	}
}

func (b *builder) table(sheet string, header []any, n int, row func(int) []any) {
	rows := make([][]any, 0, n+1)
	rows = append(rows, header)
	for i := range n {
		rows = append(rows, row(i))
	}
	b.rows(sheet, rows)

	if b.err != nil {
		return
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err == nil {
		err = b.f.SetCellStyle(sheet, "A1", last, b.header)
	}
	if err != nil {
		b.err = fmt.Errorf("style %s header: %w", sheet, err)
	}
}

func (b *builder) rows(sheet string, rows [][]any) {
	for i, values := range rows {
		if b.err != nil {
			return
		}
		if len(values) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err == nil {
			err = b.f.SetSheetRow(sheet, cell, &values)
		}
		if err != nil {
			b.err = fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
}
