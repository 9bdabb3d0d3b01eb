package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"sales-dashboard/internal/dataset"
	"sales-dashboard/internal/models"
)

// Analytics serves render passes over a single loaded dataset. It holds no
// aggregate state; every call recomputes from the records.
type Analytics struct {
	mu      sync.RWMutex
	data    *dataset.Dataset
	loader  *dataset.Loader
	ageBins int
	renders atomic.Int64
	logger  *slog.Logger
}

type Option func(*Analytics)

func WithLoader(l *dataset.Loader) Option {
	return func(a *Analytics) { a.loader = l }
}

func WithLogger(l *slog.Logger) Option {
	return func(a *Analytics) { a.logger = l }
}

func WithAgeBinCount(n int) Option {
	return func(a *Analytics) {
		if n > 0 {
			a.ageBins = n
		}
	}
}

func NewAnalytics(opts ...Option) *Analytics {
	a := &Analytics{
		data:    dataset.New("", nil),
		loader:  dataset.Default(),
		ageBins: DefaultAgeBins,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// SetDataset replaces the dataset, for tests and embedding. A nil dataset
// is stored as an empty one.
func (a *Analytics) SetDataset(ds *dataset.Dataset) {
	if ds == nil {
		ds = dataset.New("", nil)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.data = ds
}

// SetData wraps in-memory records in a Dataset.
func (a *Analytics) SetData(records []models.SaleRecord) {
	a.SetDataset(dataset.New("memory", records))
}

func (a *Analytics) LoadFromFile(ctx context.Context, path string) error {
	ds, err := a.loader.Load(ctx, path)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}

	a.SetDataset(ds)
	a.logger.Info("dataset ready",
		"path", path,
		"records", ds.Len(),
		"regions", len(ds.Regions()),
		"products", len(ds.Products()),
	)
	return nil
}

func (a *Analytics) Dataset() *dataset.Dataset {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.data
}

func (a *Analytics) DefaultCriteria() models.FilterCriteria {
	return DefaultCriteria(a.Dataset())
}

func (a *Analytics) Render(c models.FilterCriteria) models.Dashboard {
	start := time.Now()
	d := Render(a.Dataset(), c, WithAgeBins(a.ageBins))
	a.renders.Add(1)

	a.logger.Debug("dashboard rendered",
		"records", d.Metrics.RecordCount,
		"regions", len(c.Regions),
		"products", len(c.Products),
		"duration", time.Since(start),
	)
	return d
}

func (a *Analytics) FilteredRecords(c models.FilterCriteria) []models.SaleRecord {
	return Filter(a.Dataset(), c)
}

func (a *Analytics) Options() models.Options {
	ds := a.Dataset()
	opts := models.Options{
		Regions:  ds.Regions(),
		Products: ds.Products(),
		Records:  ds.Len(),
	}
	if opts.Regions == nil {
		opts.Regions = []string{}
	}
	if opts.Products == nil {
		opts.Products = []string{}
	}
	if ds.Len() > 0 {
		opts.MinDate = ds.MinDate().Format(models.DateLayout)
		opts.MaxDate = ds.MaxDate().Format(models.DateLayout)
	}
	return opts
}

// Stats is exposed for monitoring.
func (a *Analytics) Stats() map[string]any {
	ds := a.Dataset()
	stats := map[string]any{
		"source":       ds.Path(),
		"record_count": ds.Len(),
		"loaded_at":    ds.LoadedAt(),
		"regions":      len(ds.Regions()),
		"products":     len(ds.Products()),
		"genders":      len(ds.Genders()),
		"renders":      a.renders.Load(),
		"age_bins":     a.ageBins,
		"file_reads":   a.loader.Reads(),
	}
	return stats
}
