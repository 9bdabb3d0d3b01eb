package handlers

import (
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/starfederation/datastar-go/datastar"

	"sales-dashboard/internal/errors"
	"sales-dashboard/internal/models"
)

const (
	paramStart   = "start"
	paramEnd     = "end"
	paramRegion  = "region"
	paramProduct = "product"

	// paramNone names list parameters whose selection is empty, e.g.
	// none=region. A bare region= selects the blank region instead.
	paramNone = "none"
)

// criteriaFromQuery reads filter criteria from the URL. A list parameter that
// is absent keeps the default. Each occurrence is one value, taken verbatim.
func criteriaFromQuery(q url.Values, defaults models.FilterCriteria) (models.FilterCriteria, error) {
	c := defaults

	var err error
	if c.Start, err = dateParam(q.Get(paramStart), paramStart, defaults.Start); err != nil {
		return c, err
	}
	if c.End, err = dateParam(q.Get(paramEnd), paramEnd, defaults.End); err != nil {
		return c, err
	}
	c.Regions = listFromQuery(q, paramRegion, c.Regions)
	c.Products = listFromQuery(q, paramProduct, c.Products)
	return c, nil
}

func listFromQuery(q url.Values, key string, fallback []string) []string {
	if slices.Contains(q[paramNone], key) {
		return []string{}
	}
	if values, ok := q[key]; ok {
		return slices.Clone(values)
	}
	return fallback
}

// criteriaQuery is the inverse of criteriaFromQuery.
func criteriaQuery(c models.FilterCriteria) url.Values {
	q := url.Values{}
	if !c.Start.IsZero() {
		q.Set(paramStart, c.Start.Format(models.DateLayout))
	}
	if !c.End.IsZero() {
		q.Set(paramEnd, c.End.Format(models.DateLayout))
	}
	setList(q, paramRegion, c.Regions)
	setList(q, paramProduct, c.Products)
	return q
}

func setList(q url.Values, key string, values []string) {
	if len(values) == 0 {
		q.Add(paramNone, key)
		return
	}
	q[key] = slices.Clone(values)
}

func dateParam(value, key string, fallback time.Time) (time.Time, error) {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return fallback, nil
	}
	t, err := time.Parse(models.DateLayout, raw)
	if err != nil {
		return time.Time{}, errors.InvalidField(key, err)
	}
	return t, nil
}

type filterSignals struct {
	Filters struct {
		Start    string    `json:"start"`
		End      string    `json:"end"`
		Regions  *[]string `json:"regions"`
		Products *[]string `json:"products"`
	} `json:"filters"`
}

// criteriaFromSignals reads filter criteria from Datastar signals. A missing
// or null list keeps the default; an empty list selects nothing.
func criteriaFromSignals(r *http.Request, defaults models.FilterCriteria) (models.FilterCriteria, error) {
	var signals filterSignals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		return defaults, errors.InvalidField("datastar", err)
	}

	c := defaults
	var err error
	if c.Start, err = dateParam(signals.Filters.Start, paramStart, defaults.Start); err != nil {
		return c, err
	}
	if c.End, err = dateParam(signals.Filters.End, paramEnd, defaults.End); err != nil {
		return c, err
	}
	if signals.Filters.Regions != nil {
		c.Regions = slices.Clone(*signals.Filters.Regions)
	}
	if signals.Filters.Products != nil {
		c.Products = slices.Clone(*signals.Filters.Products)
	}
	return c, nil
}
