package dataset

import (
	"slices"
	"time"

	"sales-dashboard/internal/models"
)

// Dataset is an immutable, ordered set of sale records. Accessors never
// expose the backing slice.
type Dataset struct {
	path     string
	records  []models.SaleRecord
	minDate  time.Time
	maxDate  time.Time
	regions  []string
	products []string
	genders  []string
	loadedAt time.Time
}

// New builds a Dataset from records already in memory. The slice is copied.
func New(path string, records []models.SaleRecord) *Dataset {
	ds := &Dataset{
		path:     path,
		records:  slices.Clone(records),
		loadedAt: time.Now(),
	}
	ds.index()
	return ds
}

func (d *Dataset) index() {
	seenRegion := make(map[string]struct{})
	seenProduct := make(map[string]struct{})
	seenGender := make(map[string]struct{})

	for i, r := range d.records {
		if i == 0 || r.Date.Before(d.minDate) {
			d.minDate = r.Date
		}
		if i == 0 || r.Date.After(d.maxDate) {
			d.maxDate = r.Date
		}
		if _, ok := seenRegion[r.Region]; !ok {
			seenRegion[r.Region] = struct{}{}
			d.regions = append(d.regions, r.Region)
		}
		if _, ok := seenProduct[r.Product]; !ok {
			seenProduct[r.Product] = struct{}{}
			d.products = append(d.products, r.Product)
		}
		if _, ok := seenGender[r.CustomerGender]; !ok {
			seenGender[r.CustomerGender] = struct{}{}
			d.genders = append(d.genders, r.CustomerGender)
		}
	}
}

func (d *Dataset) Path() string { return d.path }

func (d *Dataset) Len() int { return len(d.records) }

func (d *Dataset) At(i int) models.SaleRecord { return d.records[i] }

// Records returns a copy of all records in file order.
func (d *Dataset) Records() []models.SaleRecord { return slices.Clone(d.records) }

// Each calls fn for every record in file order until fn returns false.
func (d *Dataset) Each(fn func(models.SaleRecord) bool) {
	for _, r := range d.records {
		if !fn(r) {
			return
		}
	}
}

// MinDate and MaxDate are zero for an empty dataset.
func (d *Dataset) MinDate() time.Time { return d.minDate }

func (d *Dataset) MaxDate() time.Time { return d.maxDate }

// Regions lists distinct regions in order of first appearance.
func (d *Dataset) Regions() []string { return slices.Clone(d.regions) }

func (d *Dataset) Products() []string { return slices.Clone(d.products) }

func (d *Dataset) Genders() []string { return slices.Clone(d.genders) }

func (d *Dataset) LoadedAt() time.Time { return d.loadedAt }
