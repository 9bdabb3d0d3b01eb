package handlers

import (
	"bytes"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"sales-dashboard/internal/charts"
	"sales-dashboard/internal/errors"
	"sales-dashboard/internal/services"
)

type ChartHandlers struct {
	analytics *services.Analytics
	logger    *slog.Logger
	size      charts.Size
}

func NewChartHandlers(analytics *services.Analytics, logger *slog.Logger, size charts.Size) *ChartHandlers {
	return &ChartHandlers{
		analytics: analytics,
		logger:    logger,
		size:      size,
	}
}

// HandleChart serves /charts/{file} where file is one of the chart names
// with a .png suffix. Filter criteria come from the query string.
func (h *ChartHandlers) HandleChart(w http.ResponseWriter, r *http.Request) {
	name, ok := strings.CutSuffix(r.PathValue("file"), ".png")
	if !ok || !slices.Contains(charts.Names(), name) {
		writeError(w, r, h.logger, errors.NotFound("Chart not found"))
		return
	}

	c, err := criteriaFromQuery(r.URL.Query(), h.analytics.DefaultCriteria())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	d := renderDashboard(r.Context(), h.logger, h.analytics, c)

	var buf bytes.Buffer
	if err := charts.Render(&buf, name, d, h.size); err != nil {
		writeError(w, r, h.logger, errors.InternalWrap(err, "Failed to render chart"))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", cacheControl)
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Warn("chart write interrupted", "chart", name, "error", err)
	}
}
