package services

import (
	"cmp"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"sales-dashboard/internal/dataset"
	"sales-dashboard/internal/models"
)

// DefaultAgeBins is the number of equal-width buckets in the age histogram.
const DefaultAgeBins = 20

type renderConfig struct {
	ageBins int
}

type RenderOption func(*renderConfig)

// WithAgeBins overrides the histogram bucket count. Values below one are ignored.
func WithAgeBins(n int) RenderOption {
	return func(c *renderConfig) {
		if n > 0 {
			c.ageBins = n
		}
	}
}

func newRenderConfig(opts []RenderOption) renderConfig {
	cfg := renderConfig{ageBins: DefaultAgeBins}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Render runs one full pass: filter the dataset by c, then aggregate the
// resulting view. Nothing is retained between calls.
func Render(ds *dataset.Dataset, c models.FilterCriteria, opts ...RenderOption) models.Dashboard {
	d := Aggregate(Filter(ds, c), opts...)
	d.Criteria = c
	return d
}

type meanAccumulator struct {
	sum   float64
	count int
}

func (m meanAccumulator) mean() float64 {
	if m.count == 0 {
		return 0
	}
	return m.sum / float64(m.count)
}

// Aggregate computes every metric and chart series over view. An empty view
// yields zero metrics and empty, non-nil series.
func Aggregate(view []models.SaleRecord, opts ...RenderOption) models.Dashboard {
	cfg := newRenderConfig(opts)

	total := decimal.Zero
	satisfaction := meanAccumulator{}

	dailyGroups := make(map[time.Time]decimal.Decimal)
	regionGroups := make(map[string]decimal.Decimal)
	productGroups := make(map[string]decimal.Decimal)
	genderGroups := make(map[string]int)
	satisfactionGroups := make(map[string]meanAccumulator)

	for _, r := range view {
		amount := decimal.NewFromFloat(r.Sales)
		total = total.Add(amount)

		satisfaction.sum += r.CustomerSatisfaction
		satisfaction.count++

		dailyGroups[r.Date] = dailyGroups[r.Date].Add(amount)
		regionGroups[r.Region] = regionGroups[r.Region].Add(amount)
		productGroups[r.Product] = productGroups[r.Product].Add(amount)
		genderGroups[r.CustomerGender]++

		acc := satisfactionGroups[r.Product]
		acc.sum += r.CustomerSatisfaction
		acc.count++
		satisfactionGroups[r.Product] = acc
	}

	metrics := models.Metrics{
		TotalSales:          total.InexactFloat64(),
		RecordCount:         len(view),
		AverageSatisfaction: satisfaction.mean(),
	}
	if len(view) > 0 {
		metrics.AverageOrderValue = total.Div(decimal.NewFromInt(int64(len(view)))).InexactFloat64()
	}

	return models.Dashboard{
		Metrics:               metrics,
		DailySales:            sortDailySales(dailyGroups),
		RegionalSales:         sortRegionSales(regionGroups),
		GenderDistribution:    sortGenderCounts(genderGroups),
		AgeDistribution:       ageHistogram(view, cfg.ageBins),
		SatisfactionByProduct: sortProductSatisfaction(satisfactionGroups),
		ProductSales:          sortProductSales(productGroups),
	}
}

func sortDailySales(groups map[time.Time]decimal.Decimal) []models.DailySales {
	days := make([]time.Time, 0, len(groups))
	for day := range groups {
		days = append(days, day)
	}
	slices.SortFunc(days, func(a, b time.Time) int { return a.Compare(b) })

	result := make([]models.DailySales, 0, len(days))
	for _, day := range days {
		result = append(result, models.DailySales{
			Date:  day.Format(models.DateLayout),
			Sales: groups[day].InexactFloat64(),
		})
	}
	return result
}

func sortRegionSales(groups map[string]decimal.Decimal) []models.RegionSales {
	result := make([]models.RegionSales, 0, len(groups))
	for region, sales := range groups {
		result = append(result, models.RegionSales{Region: region, Sales: sales.InexactFloat64()})
	}
	slices.SortFunc(result, func(a, b models.RegionSales) int {
		return cmp.Compare(a.Region, b.Region)
	})
	return result
}

func sortProductSales(groups map[string]decimal.Decimal) []models.ProductSales {
	result := make([]models.ProductSales, 0, len(groups))
	for product, sales := range groups {
		result = append(result, models.ProductSales{Product: product, Sales: sales.InexactFloat64()})
	}
	slices.SortFunc(result, func(a, b models.ProductSales) int {
		return cmp.Compare(a.Product, b.Product)
	})
	return result
}

// sortGenderCounts orders by count descending, then by name.
func sortGenderCounts(groups map[string]int) []models.GenderCount {
	result := make([]models.GenderCount, 0, len(groups))
	for gender, count := range groups {
		result = append(result, models.GenderCount{Gender: gender, Count: count})
	}
	slices.SortFunc(result, func(a, b models.GenderCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Gender, b.Gender)
	})
	return result
}

func sortProductSatisfaction(groups map[string]meanAccumulator) []models.ProductSatisfaction {
	result := make([]models.ProductSatisfaction, 0, len(groups))
	for product, acc := range groups {
		result = append(result, models.ProductSatisfaction{Product: product, AverageSatisfaction: acc.mean()})
	}
	slices.SortFunc(result, func(a, b models.ProductSatisfaction) int {
		return cmp.Compare(a.Product, b.Product)
	})
	return result
}

// ageHistogram splits [min age, max age] into bins equal-width buckets. The
// last bucket is closed on the right. When every age is the same a single
// bucket [age, age+1) holds all records.
func ageHistogram(view []models.SaleRecord, bins int) []models.AgeBin {
	if len(view) == 0 || bins <= 0 {
		return []models.AgeBin{}
	}

	lo, hi := view[0].CustomerAge, view[0].CustomerAge
	for _, r := range view[1:] {
		lo = min(lo, r.CustomerAge)
		hi = max(hi, r.CustomerAge)
	}

	if lo == hi {
		return []models.AgeBin{{Lower: float64(lo), Upper: float64(lo + 1), Count: len(view)}}
	}

	// Bin membership is decided in integers; edges are one division each so
	// an age on an edge compares equal to it.
	span := hi - lo
	result := make([]models.AgeBin, bins)
	for i := range result {
		result[i].Lower = float64(lo) + float64(i*span)/float64(bins)
		result[i].Upper = float64(lo) + float64((i+1)*span)/float64(bins)
	}
	result[bins-1].Upper = float64(hi)

	for _, r := range view {
		i := min((r.CustomerAge-lo)*bins/span, bins-1)
		result[i].Count++
	}
	return result
}
