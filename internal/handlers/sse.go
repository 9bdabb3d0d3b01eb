package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/starfederation/datastar-go/datastar"

	"sales-dashboard/internal/services"
	"sales-dashboard/internal/ui/templates"
)

// Signals prefixed with an underscore stay in the browser and are not sent
// back with every request.
const (
	dashboardSignal = "_dashboard"
	optionsSignal   = "_options"
)

type SSEHandlers struct {
	analytics *services.Analytics
	logger    *slog.Logger
}

func NewSSEHandlers(analytics *services.Analytics, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		analytics: analytics,
		logger:    logger,
	}
}

// HandleDashboard re-renders for the filter signals and patches the metric
// cards, the chart images and the full series.
func (h *SSEHandlers) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	c, err := criteriaFromSignals(r, h.analytics.DefaultCriteria())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	d := renderDashboard(r.Context(), h.logger, h.analytics, c)

	metricsHTML, err := renderComponent(r.Context(), templates.Metrics(d.Metrics))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	chartsHTML, err := renderComponent(r.Context(), templates.Charts(criteriaQuery(c)))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	signals, err := json.Marshal(map[string]any{dashboardSignal: d})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	sse := datastar.NewSSE(w, r)
	if err := sse.PatchElements(metricsHTML); err != nil {
		h.logger.Warn("patch metrics", "error", err)
		return
	}
	if err := sse.PatchElements(chartsHTML); err != nil {
		h.logger.Warn("patch charts", "error", err)
		return
	}
	if err := sse.PatchSignals(signals); err != nil {
		h.logger.Warn("patch dashboard signals", "error", err)
	}
}

func (h *SSEHandlers) HandleOptions(w http.ResponseWriter, r *http.Request) {
	signals, err := json.Marshal(map[string]any{optionsSignal: h.analytics.Options()})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	sse := datastar.NewSSE(w, r)
	if err := sse.PatchSignals(signals); err != nil {
		h.logger.Warn("patch options signals", "error", err)
	}
}
