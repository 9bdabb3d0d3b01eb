// Package templates renders the dashboard page and the fragments patched
// into it over SSE. Components live in dashboard.templ; run templ generate
// after editing it.
package templates

import (
	"net/url"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"sales-dashboard/internal/charts"
	"sales-dashboard/internal/models"
)

const Title = "Sales Analytics Dashboard"

// Page is what the full dashboard needs on first render.
type Page struct {
	Options  models.Options
	Criteria models.FilterCriteria
	Metrics  models.Metrics
	Query    url.Values
	Signals  string
}

type chartSection struct {
	Heading string
	Charts  []string
}

var sections = []chartSection{
	{Heading: "Sales Trends", Charts: []string{charts.DailySales, charts.RegionalSales}},
	{Heading: "Customer Insights", Charts: []string{charts.Gender, charts.Age, charts.SatisfactionByProduct}},
	{Heading: "Product Performance", Charts: []string{charts.ProductSales}},
}

var printer = message.NewPrinter(language.English)

func dollars(v float64) string { return printer.Sprintf("$%.0f", v) }

func cents(v float64) string { return printer.Sprintf("$%.2f", v) }

func count(v int) string { return printer.Sprintf("%d", v) }

func rating(v float64) string { return printer.Sprintf("%.2f/5.0", v) }

func chartURL(name string, q url.Values) string {
	return "/charts/" + name + ".png?" + q.Encode()
}

func exportURL(q url.Values) string {
	return "/api/export.xlsx?" + q.Encode()
}

func dateValue(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(models.DateLayout)
}
