package models

import "time"

// DateLayout is the calendar date format used on the wire.
const DateLayout = "2006-01-02"

type SaleRecord struct {
	Date                 time.Time
	Region               string
	Product              string
	Sales                float64
	CustomerSatisfaction float64
	CustomerGender       string
	CustomerAge          int
}

// FilterCriteria selects records whose date lies in [Start, End] and whose
// region and product are members of Regions and Products. An empty set
// selects nothing.
type FilterCriteria struct {
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Regions  []string  `json:"regions"`
	Products []string  `json:"products"`
}

type Metrics struct {
	TotalSales          float64 `json:"total_sales"`
	AverageOrderValue   float64 `json:"average_order_value"`
	RecordCount         int     `json:"record_count"`
	AverageSatisfaction float64 `json:"average_satisfaction"`
}

type DailySales struct {
	Date  string  `json:"date"`
	Sales float64 `json:"sales"`
}

type RegionSales struct {
	Region string  `json:"region"`
	Sales  float64 `json:"sales"`
}

type GenderCount struct {
	Gender string `json:"gender"`
	Count  int    `json:"count"`
}

// AgeBin covers [Lower, Upper); the last bin of a histogram also includes Upper.
type AgeBin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

type ProductSatisfaction struct {
	Product             string  `json:"product"`
	AverageSatisfaction float64 `json:"average_satisfaction"`
}

type ProductSales struct {
	Product string  `json:"product"`
	Sales   float64 `json:"sales"`
}

// Dashboard is everything the presentation layer draws for one set of criteria.
type Dashboard struct {
	Criteria              FilterCriteria        `json:"criteria"`
	Metrics               Metrics               `json:"metrics"`
	DailySales            []DailySales          `json:"daily_sales"`
	RegionalSales         []RegionSales         `json:"regional_sales"`
	GenderDistribution    []GenderCount         `json:"gender_distribution"`
	AgeDistribution       []AgeBin              `json:"age_distribution"`
	SatisfactionByProduct []ProductSatisfaction `json:"satisfaction_by_product"`
	ProductSales          []ProductSales        `json:"product_sales"`
}

// Options describes the values the filter controls can offer.
type Options struct {
	MinDate  string   `json:"min_date"`
	MaxDate  string   `json:"max_date"`
	Regions  []string `json:"regions"`
	Products []string `json:"products"`
	Records  int      `json:"records"`
}
