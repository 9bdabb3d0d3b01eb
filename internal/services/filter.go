package services

import (
	"time"

	"sales-dashboard/internal/dataset"
	"sales-dashboard/internal/models"
)

// Filter returns, in dataset order, every record whose date lies within
// [c.Start, c.End] and whose region and product are both selected. An
// inverted date range or an empty selection yields an empty view.
func Filter(ds *dataset.Dataset, c models.FilterCriteria) []models.SaleRecord {
	view := make([]models.SaleRecord, 0)
	start, end := dateOnly(c.Start), dateOnly(c.End)
	if ds == nil || ds.Len() == 0 || start.After(end) || len(c.Regions) == 0 || len(c.Products) == 0 {
		return view
	}

	regions := toSet(c.Regions)
	products := toSet(c.Products)

	ds.Each(func(r models.SaleRecord) bool {
		if matches(r, start, end, regions, products) {
			view = append(view, r)
		}
		return true
	})
	return view
}

func matches(r models.SaleRecord, start, end time.Time, regions, products map[string]struct{}) bool {
	if r.Date.Before(start) || r.Date.After(end) {
		return false
	}
	if _, ok := regions[r.Region]; !ok {
		return false
	}
	_, ok := products[r.Product]
	return ok
}

// DefaultCriteria selects the whole dataset, the initial state of the controls.
func DefaultCriteria(ds *dataset.Dataset) models.FilterCriteria {
	if ds == nil {
		return models.FilterCriteria{Regions: []string{}, Products: []string{}}
	}
	return models.FilterCriteria{
		Start:    ds.MinDate(),
		End:      ds.MaxDate(),
		Regions:  ds.Regions(),
		Products: ds.Products(),
	}
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[item] = struct{}{}
	}
	return set
}

// dateOnly maps t to midnight UTC of its calendar day, the form records use.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
