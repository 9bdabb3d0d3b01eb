package handlers

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"sales-dashboard/internal/errors"
	"sales-dashboard/internal/export"
	"sales-dashboard/internal/models"
	"sales-dashboard/internal/services"
)

type APIHandlers struct {
	analytics *services.Analytics
	logger    *slog.Logger
}

func NewAPIHandlers(analytics *services.Analytics, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		analytics: analytics,
		logger:    logger,
	}
}

func (h *APIHandlers) criteria(r *http.Request) (models.FilterCriteria, error) {
	return criteriaFromQuery(r.URL.Query(), h.analytics.DefaultCriteria())
}

func (h *APIHandlers) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	c, err := h.criteria(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	d := renderDashboard(r.Context(), h.logger, h.analytics, c)
	errors.WriteSuccess(w, d, map[string]string{"Cache-Control": cacheControl})
}

func (h *APIHandlers) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	c, err := h.criteria(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	d := renderDashboard(r.Context(), h.logger, h.analytics, c)
	errors.WriteSuccess(w, d.Metrics, map[string]string{"Cache-Control": cacheControl})
}

func (h *APIHandlers) HandleOptions(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, h.analytics.Options(), map[string]string{"Cache-Control": cacheControl})
}

// HandleExport streams the filtered records and their aggregates as a
// workbook. It is built in memory first so failures still get a JSON error.
func (h *APIHandlers) HandleExport(w http.ResponseWriter, r *http.Request) {
	c, err := h.criteria(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	d := renderDashboard(r.Context(), h.logger, h.analytics, c)
	records := h.analytics.FilteredRecords(c)

	var buf bytes.Buffer
	if err := export.Write(&buf, d, records); err != nil {
		writeError(w, r, h.logger, errors.InternalWrap(err, "Failed to build export"))
		return
	}

	filename := fmt.Sprintf("sales_%s_%s.xlsx", c.Start.Format(models.DateLayout), c.End.Format(models.DateLayout))
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", fmt.Sprint(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Warn("export write interrupted", "error", err)
	}
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	healthData := map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
		"records":   h.analytics.Dataset().Len(),
	}

	errors.WriteSuccess(w, healthData)
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, h.analytics.Stats())
}
