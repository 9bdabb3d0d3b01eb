package services

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sales-dashboard/internal/dataset"
	"sales-dashboard/internal/models"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// scenarioDataset is the two-row dataset used by the acceptance scenarios.
func scenarioDataset() *dataset.Dataset {
	return dataset.New("scenario", []models.SaleRecord{
		{Date: day(2024, 1, 1), Region: "East", Product: "A", Sales: 100, CustomerSatisfaction: 4, CustomerGender: "F", CustomerAge: 30},
		{Date: day(2024, 1, 2), Region: "West", Product: "B", Sales: 200, CustomerSatisfaction: 5, CustomerGender: "M", CustomerAge: 40},
	})
}

func randomDataset(seed uint64, n int) *dataset.Dataset {
	rng := rand.New(rand.NewPCG(seed, seed))
	regions := []string{"North", "South", "East", "West"}
	products := []string{"A", "B", "C", "D", "E"}
	genders := []string{"F", "M", "Other"}

	records := make([]models.SaleRecord, n)
	for i := range records {
		records[i] = models.SaleRecord{
			Date:                 day(2024, 1, 1).AddDate(0, 0, rng.IntN(90)),
			Region:               regions[rng.IntN(len(regions))],
			Product:              products[rng.IntN(len(products))],
			Sales:                float64(rng.IntN(100000)) / 100,
			CustomerSatisfaction: float64(rng.IntN(51)) / 10,
			CustomerGender:       genders[rng.IntN(len(genders))],
			CustomerAge:          18 + rng.IntN(60),
		}
	}
	return dataset.New("random", records)
}

func randomCriteria(rng *rand.Rand, ds *dataset.Dataset) models.FilterCriteria {
	pick := func(values []string) []string {
		var out []string
		for _, v := range values {
			if rng.IntN(2) == 0 {
				out = append(out, v)
			}
		}
		return out
	}
	start := ds.MinDate().AddDate(0, 0, rng.IntN(100)-5)
	end := start.AddDate(0, 0, rng.IntN(60)-10)
	return models.FilterCriteria{
		Start:    start,
		End:      end,
		Regions:  pick(ds.Regions()),
		Products: pick(ds.Products()),
	}
}

func TestFilter_EveryRecordSatisfiesAllPredicates(t *testing.T) {
	ds := randomDataset(1, 500)
	rng := rand.New(rand.NewPCG(2, 2))

	for i := range 200 {
		c := randomCriteria(rng, ds)
		view := Filter(ds, c)

		require.LessOrEqual(t, len(view), ds.Len())
		for _, r := range view {
			assert.False(t, r.Date.Before(c.Start), "case %d: date %s before start %s", i, r.Date, c.Start)
			assert.False(t, r.Date.After(c.End), "case %d: date %s after end %s", i, r.Date, c.End)
			assert.Contains(t, c.Regions, r.Region, "case %d", i)
			assert.Contains(t, c.Products, r.Product, "case %d", i)
		}
	}
}

func TestFilter_ViewIsOrderedSubsetOfDataset(t *testing.T) {
	ds := randomDataset(3, 300)
	rng := rand.New(rand.NewPCG(4, 4))
	all := ds.Records()

	for range 50 {
		view := Filter(ds, randomCriteria(rng, ds))

		// Walk the dataset once; every view record must appear in order.
		j := 0
		for _, r := range all {
			if j < len(view) && r == view[j] {
				j++
			}
		}
		assert.Equal(t, len(view), j, "view is not an ordered subsequence of the dataset")
	}
}

func TestFilter_RejectedRecordsFailAPredicate(t *testing.T) {
	ds := randomDataset(5, 300)
	c := models.FilterCriteria{
		Start:    day(2024, 1, 15),
		End:      day(2024, 2, 15),
		Regions:  []string{"North", "East"},
		Products: []string{"A", "C"},
	}

	view := Filter(ds, c)
	want := 0
	ds.Each(func(r models.SaleRecord) bool {
		inRange := !r.Date.Before(c.Start) && !r.Date.After(c.End)
		if inRange && slices.Contains(c.Regions, r.Region) && slices.Contains(c.Products, r.Product) {
			want++
		}
		return true
	})
	assert.Equal(t, want, len(view))
}

func TestFilter_DefaultCriteriaSelectsEverything(t *testing.T) {
	ds := randomDataset(6, 250)

	view := Filter(ds, DefaultCriteria(ds))
	assert.Equal(t, ds.Records(), view)
}

func TestFilter_EdgeCases(t *testing.T) {
	ds := scenarioDataset()
	full := DefaultCriteria(ds)

	tests := []struct {
		name     string
		ds       *dataset.Dataset
		criteria models.FilterCriteria
		want     int
	}{
		{
			name:     "empty dataset",
			ds:       dataset.New("empty", nil),
			criteria: full,
			want:     0,
		},
		{
			name:     "nil dataset",
			ds:       nil,
			criteria: full,
			want:     0,
		},
		{
			name:     "empty region set",
			ds:       ds,
			criteria: models.FilterCriteria{Start: full.Start, End: full.End, Regions: []string{}, Products: full.Products},
			want:     0,
		},
		{
			name:     "nil product set",
			ds:       ds,
			criteria: models.FilterCriteria{Start: full.Start, End: full.End, Regions: full.Regions},
			want:     0,
		},
		{
			name:     "inverted date range",
			ds:       ds,
			criteria: models.FilterCriteria{Start: day(2024, 1, 2), End: day(2024, 1, 1), Regions: full.Regions, Products: full.Products},
			want:     0,
		},
		{
			name:     "single day range is inclusive",
			ds:       ds,
			criteria: models.FilterCriteria{Start: day(2024, 1, 2), End: day(2024, 1, 2), Regions: full.Regions, Products: full.Products},
			want:     1,
		},
		{
			name:     "time of day on bounds is ignored",
			ds:       ds,
			criteria: models.FilterCriteria{Start: day(2024, 1, 1).Add(15 * time.Hour), End: day(2024, 1, 2).Add(time.Hour), Regions: full.Regions, Products: full.Products},
			want:     2,
		},
		{
			name:     "unknown region",
			ds:       ds,
			criteria: models.FilterCriteria{Start: full.Start, End: full.End, Regions: []string{"Mars"}, Products: full.Products},
			want:     0,
		},
		{
			name:     "region match is exact",
			ds:       ds,
			criteria: models.FilterCriteria{Start: full.Start, End: full.End, Regions: []string{"east"}, Products: full.Products},
			want:     0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view := Filter(tt.ds, tt.criteria)
			require.NotNil(t, view)
			assert.Len(t, view, tt.want)
		})
	}
}

func TestDefaultCriteria(t *testing.T) {
	c := DefaultCriteria(scenarioDataset())

	assert.Equal(t, day(2024, 1, 1), c.Start)
	assert.Equal(t, day(2024, 1, 2), c.End)
	assert.Equal(t, []string{"East", "West"}, c.Regions)
	assert.Equal(t, []string{"A", "B"}, c.Products)
}

func BenchmarkFilter(b *testing.B) {
	ds := randomDataset(7, 10000)
	c := DefaultCriteria(ds)
	c.Regions = c.Regions[:2]

	for b.Loop() {
		_ = Filter(ds, c)
	}
}

func ExampleFilter() {
	ds := scenarioDataset()
	view := Filter(ds, models.FilterCriteria{
		Start:    ds.MinDate(),
		End:      ds.MaxDate(),
		Regions:  []string{"East"},
		Products: []string{"A", "B"},
	})
	for _, r := range view {
		fmt.Println(r.Region, r.Product, r.Sales)
	}
	// Output: East A 100
}
