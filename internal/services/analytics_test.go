package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sales-dashboard/internal/dataset"
	"sales-dashboard/internal/models"
)

func createTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sales.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNewAnalytics(t *testing.T) {
	a := NewAnalytics()
	require.NotNil(t, a)
	assert.NotNil(t, a.Dataset(), "dataset should be initialized")
	assert.Equal(t, 0, a.Dataset().Len())
	assert.NotNil(t, a.logger)
	assert.Equal(t, DefaultAgeBins, a.ageBins)
}

func TestAnalytics_LoadFromFile(t *testing.T) {
	csv := `Date,Region,Product,Sales,Customer_Satisfaction,Customer_Gender,Customer_Age
2024-01-01,East,A,100,4,F,30
2024-01-02,West,B,200,5,M,40`
	path := createTempCSV(t, csv)
	loader := dataset.NewLoader()

	a := NewAnalytics(WithLoader(loader))
	require.NoError(t, a.LoadFromFile(context.Background(), path))
	assert.Equal(t, 2, a.Dataset().Len())

	b := NewAnalytics(WithLoader(loader))
	require.NoError(t, b.LoadFromFile(context.Background(), path))
	assert.Same(t, a.Dataset(), b.Dataset(), "the same path should share one dataset")
	assert.Equal(t, int64(1), loader.Reads())
}

func TestAnalytics_LoadFromFile_Errors(t *testing.T) {
	tests := []struct {
		name      string
		csv       string
		wantParse bool
	}{
		{name: "empty file", csv: ""},
		{name: "missing column", csv: "Date,Region\n2024-01-01,East", wantParse: true},
		{name: "invalid date", csv: "Date,Region,Product,Sales,Customer_Satisfaction,Customer_Gender,Customer_Age\n2024-13-45,East,A,1,1,F,1", wantParse: true},
		{name: "invalid age", csv: "Date,Region,Product,Sales,Customer_Satisfaction,Customer_Gender,Customer_Age\n2024-01-01,East,A,1,1,F,old", wantParse: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAnalytics(WithLoader(dataset.NewLoader()))
			err := a.LoadFromFile(context.Background(), createTempCSV(t, tt.csv))
			require.Error(t, err)

			var loadErr *dataset.LoadError
			assert.ErrorAs(t, err, &loadErr)

			var parseErr *dataset.ParseError
			assert.Equal(t, tt.wantParse, errors.As(err, &parseErr))

			// A failed load leaves the previous (empty) dataset in place.
			assert.Equal(t, 0, a.Dataset().Len())
		})
	}
}

func TestAnalytics_RenderRecomputesEveryCall(t *testing.T) {
	a := NewAnalytics()
	a.SetDataset(scenarioDataset())

	all := a.Render(a.DefaultCriteria())
	assert.Equal(t, 2, all.Metrics.RecordCount)
	assert.Equal(t, 300.0, all.Metrics.TotalSales)

	c := a.DefaultCriteria()
	c.Regions = []string{"West"}
	west := a.Render(c)
	assert.Equal(t, 1, west.Metrics.RecordCount)
	assert.Equal(t, 200.0, west.Metrics.TotalSales)

	again := a.Render(a.DefaultCriteria())
	assert.Equal(t, all, again)
	assert.Equal(t, int64(3), a.renders.Load())
}

func TestAnalytics_AgeBinOption(t *testing.T) {
	a := NewAnalytics(WithAgeBinCount(4))
	a.SetData([]models.SaleRecord{
		{Date: day(2024, 1, 1), Region: "R", Product: "P", CustomerAge: 10},
		{Date: day(2024, 1, 1), Region: "R", Product: "P", CustomerAge: 50},
	})

	d := a.Render(a.DefaultCriteria())
	assert.Len(t, d.AgeDistribution, 4)
}

func TestAnalytics_Options(t *testing.T) {
	a := NewAnalytics()
	a.SetDataset(scenarioDataset())

	opts := a.Options()
	assert.Equal(t, models.Options{
		MinDate:  "2024-01-01",
		MaxDate:  "2024-01-02",
		Regions:  []string{"East", "West"},
		Products: []string{"A", "B"},
		Records:  2,
	}, opts)
}

func TestAnalytics_OptionsEmpty(t *testing.T) {
	opts := NewAnalytics().Options()
	assert.Empty(t, opts.MinDate)
	assert.NotNil(t, opts.Regions)
	assert.NotNil(t, opts.Products)
}

func TestAnalytics_SetNilDataset(t *testing.T) {
	a := NewAnalytics()
	a.SetDataset(scenarioDataset())
	a.SetDataset(nil)

	require.NotNil(t, a.Dataset())
	assert.Equal(t, 0, a.Options().Records)
	assert.Equal(t, 0, a.Stats()["record_count"])
	assert.Equal(t, 0, a.Render(a.DefaultCriteria()).Metrics.RecordCount)
}

func TestAnalytics_FilteredRecords(t *testing.T) {
	a := NewAnalytics()
	a.SetDataset(scenarioDataset())

	c := a.DefaultCriteria()
	c.Products = []string{"B"}
	records := a.FilteredRecords(c)
	require.Len(t, records, 1)
	assert.Equal(t, "West", records[0].Region)
}

func TestAnalytics_Stats(t *testing.T) {
	a := NewAnalytics(WithLoader(dataset.NewLoader()))
	a.SetDataset(scenarioDataset())
	a.Render(a.DefaultCriteria())

	stats := a.Stats()
	assert.Equal(t, 2, stats["record_count"])
	assert.Equal(t, 2, stats["regions"])
	assert.Equal(t, int64(1), stats["renders"])
	assert.Equal(t, int64(0), stats["file_reads"])
	assert.IsType(t, time.Time{}, stats["loaded_at"])
}

func TestAnalytics_ConcurrentAccess(t *testing.T) {
	a := NewAnalytics()
	a.SetDataset(randomDataset(21, 500))

	done := make(chan bool, 10)
	for i := 0; i < 10; i++ {
		go func() {
			defer func() { done <- true }()

			_ = a.Render(a.DefaultCriteria())
			_ = a.Options()
			_ = a.Stats()
		}()
	}

	for i := 0; i < 10; i++ {
		<-done
	}
	assert.Equal(t, int64(10), a.renders.Load())
}
