package handlers

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/a-h/templ"

	"sales-dashboard/internal/errors"
	"sales-dashboard/internal/models"
	"sales-dashboard/internal/observability"
	"sales-dashboard/internal/services"
)

const cacheControl = "public, max-age=300"

// renderDashboard runs one render pass inside a span of its own.
func renderDashboard(ctx context.Context, logger *slog.Logger, analytics *services.Analytics, c models.FilterCriteria) models.Dashboard {
	_, span := observability.StartSpan(ctx, "dashboard.render")
	d := analytics.Render(c)

	span.SetTag("records", strconv.Itoa(d.Metrics.RecordCount))
	span.SetTag("regions", strconv.Itoa(len(c.Regions)))
	span.SetTag("products", strconv.Itoa(len(c.Products)))
	span.Finish()
	span.Log(logger)
	return d
}

func renderComponent(ctx context.Context, c templ.Component) (string, error) {
	var buf bytes.Buffer
	if err := c.Render(ctx, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	errors.WriteError(w, logger, err, observability.GetRequestID(r.Context()))
}
