// Package charts draws the dashboard series as PNG images.
package charts

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"slices"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"sales-dashboard/internal/models"
)

const (
	DailySales            = "daily-sales"
	RegionalSales         = "regional-sales"
	Gender                = "gender"
	Age                   = "age"
	SatisfactionByProduct = "satisfaction-by-product"
	ProductSales          = "product-sales"
)

var ErrUnknownChart = errors.New("unknown chart")

var names = []string{DailySales, RegionalSales, Gender, Age, SatisfactionByProduct, ProductSales}

// Names lists the charts in page order.
func Names() []string {
	return slices.Clone(names)
}

var titles = map[string]string{
	DailySales:            "Daily Sales Trend",
	RegionalSales:         "Sales by Region",
	Gender:                "Customer Gender Distribution",
	Age:                   "Customer Age Distribution",
	SatisfactionByProduct: "Average Customer Satisfaction by Product",
	ProductSales:          "Sales by Product",
}

func Title(name string) string {
	return titles[name]
}

type renderer interface {
	Render(rp chart.RendererProvider, w io.Writer) error
}

type Size struct {
	Width  int
	Height int
}

// Render writes the named chart for d as a PNG. A chart with no data is
// drawn as a blank placeholder.
func Render(w io.Writer, name string, d models.Dashboard, size Size) error {
	var r renderer
	switch name {
	case DailySales:
		r = dailySalesChart(d.DailySales, size)
	case RegionalSales:
		bars := make([]chart.Value, len(d.RegionalSales))
		for i, s := range d.RegionalSales {
			bars[i] = chart.Value{Label: s.Region, Value: s.Sales}
		}
		r = barChart(Title(name), bars, size)
	case Gender:
		r = genderChart(d.GenderDistribution, size)
	case Age:
		bars := make([]chart.Value, len(d.AgeDistribution))
		for i, b := range d.AgeDistribution {
			bars[i] = chart.Value{Label: fmt.Sprintf("%.0f-%.0f", b.Lower, b.Upper), Value: float64(b.Count)}
		}
		r = barChart(Title(name), bars, size)
	case SatisfactionByProduct:
		bars := make([]chart.Value, len(d.SatisfactionByProduct))
		for i, s := range d.SatisfactionByProduct {
			bars[i] = chart.Value{Label: s.Product, Value: s.AverageSatisfaction}
		}
		r = barChart(Title(name), bars, size)
	case ProductSales:
		bars := make([]chart.Value, len(d.ProductSales))
		for i, s := range d.ProductSales {
			bars[i] = chart.Value{Label: s.Product, Value: s.Sales}
		}
		r = barChart(Title(name), bars, size)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownChart, name)
	}

	if r == nil {
		return placeholder(w, size)
	}
	if err := r.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render %s chart: %w", name, err)
	}
	return nil
}

func dailySalesChart(days []models.DailySales, size Size) renderer {
	if len(days) == 0 {
		return nil
	}

	xs := make([]time.Time, 0, len(days))
	ys := make([]float64, 0, len(days))
	for _, d := range days {
		t, err := time.Parse(models.DateLayout, d.Date)
		if err != nil {
			continue
		}
		xs = append(xs, t)
		ys = append(ys, d.Sales)
	}
	if len(xs) == 0 {
		return nil
	}
	// go-chart needs two distinct x values to build a range.
	if len(xs) == 1 {
		xs = append(xs, xs[0].Add(24*time.Hour))
		ys = append(ys, ys[0])
	}

	lo, hi := valueRange(ys)
	return &chart.Chart{
		Title:      Title(DailySales),
		Width:      size.Width,
		Height:     size.Height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      chart.XAxis{Name: "Date", ValueFormatter: chart.TimeDateValueFormatter},
		YAxis:      chart.YAxis{Name: "Sales", Range: &chart.ContinuousRange{Min: lo, Max: hi}},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Sales",
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeColor: chart.ColorBlue,
					StrokeWidth: 2,
					DotWidth:    3,
					DotColor:    chart.ColorBlue,
				},
			},
		},
	}
}

func barChart(title string, bars []chart.Value, size Size) renderer {
	if len(bars) == 0 {
		return nil
	}

	ys := make([]float64, len(bars))
	for i, b := range bars {
		ys[i] = b.Value
	}
	lo, hi := valueRange(ys)

	return &chart.BarChart{
		Title:      title,
		Width:      size.Width,
		Height:     size.Height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		BarWidth:   barWidth(len(bars), size.Width),
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: lo, Max: hi},
		},
		Bars: bars,
	}
}

func genderChart(counts []models.GenderCount, size Size) renderer {
	values := make([]chart.Value, 0, len(counts))
	for _, g := range counts {
		if g.Count > 0 {
			values = append(values, chart.Value{Label: fmt.Sprintf("%s (%d)", g.Gender, g.Count), Value: float64(g.Count)})
		}
	}
	if len(values) == 0 {
		return nil
	}

	return &chart.PieChart{
		Title:  Title(Gender),
		Width:  size.Width,
		Height: size.Height,
		Values: values,
	}
}

// valueRange returns a y range that always includes zero and is never empty.
func valueRange(ys []float64) (float64, float64) {
	lo, hi := 0.0, 0.0
	for _, y := range ys {
		lo = math.Min(lo, y)
		hi = math.Max(hi, y)
	}
	if hi == lo {
		return lo, lo + 1
	}
	return lo, hi + (hi-lo)*0.1
}

func barWidth(n, width int) int {
	w := (width - 100) / (n * 2)
	return max(4, min(w, 60))
}

var placeholderColor = drawing.ColorFromHex("f0f2f6")

// placeholder draws a flat panel so an empty selection still yields an image.
func placeholder(w io.Writer, size Size) error {
	img := image.NewRGBA(image.Rect(0, 0, size.Width, size.Height))
	c := color.RGBA{R: placeholderColor.R, G: placeholderColor.G, B: placeholderColor.B, A: 255}
	draw.Draw(img, img.Bounds(), &image.Uniform{C: c}, image.Point{}, draw.Src)
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode placeholder: %w", err)
	}
	return nil
}
