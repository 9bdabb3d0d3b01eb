package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"sales-dashboard/internal/errors"
	"sales-dashboard/internal/models"
	"sales-dashboard/internal/services"
	"sales-dashboard/internal/ui/templates"
)

const renderTimeout = 10 * time.Second

type PageHandler struct {
	analytics *services.Analytics
	logger    *slog.Logger
}

func NewPageHandler(analytics *services.Analytics, logger *slog.Logger) *PageHandler {
	return &PageHandler{
		analytics: analytics,
		logger:    logger,
	}
}

// HandleIndex renders the dashboard page. Query parameters preselect the
// filters, so a filtered view can be bookmarked.
func (h *PageHandler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
	defer cancel()

	c, err := criteriaFromQuery(r.URL.Query(), h.analytics.DefaultCriteria())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	d := renderDashboard(ctx, h.logger, h.analytics, c)
	signals, err := json.Marshal(pageSignals(c))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	page := templates.Page{
		Options:  h.analytics.Options(),
		Criteria: c,
		Metrics:  d.Metrics,
		Query:    criteriaQuery(c),
		Signals:  string(signals),
	}

	var buf bytes.Buffer
	if err := templates.Dashboard(page).Render(ctx, &buf); err != nil {
		writeError(w, r, h.logger, errors.InternalWrap(err, "Failed to render page"))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", cacheControl)
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Warn("page write interrupted", "error", err)
	}
}

func pageSignals(c models.FilterCriteria) map[string]any {
	filters := map[string]any{
		"start":    "",
		"end":      "",
		"regions":  nonNil(c.Regions),
		"products": nonNil(c.Products),
	}
	if !c.Start.IsZero() {
		filters["start"] = c.Start.Format(models.DateLayout)
	}
	if !c.End.IsZero() {
		filters["end"] = c.End.Format(models.DateLayout)
	}
	return map[string]any{"filters": filters}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
