package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	apierrors "salespulse/internal/errors"
	"salespulse/internal/profitability"
)

var validate = validator.New()

// filterParams mirrors the common query parameters accepted by every
// analytics endpoint.
type filterParams struct {
	Division  string `validate:"omitempty,max=100"`
	From      string `validate:"omitempty,datetime=2006-01-02"`
	To        string `validate:"omitempty,datetime=2006-01-02"`
	MinMargin string `validate:"omitempty"`
	Query     string `validate:"omitempty,max=200"`
}

// parseFilter builds a pipeline filter from the request query string.
// division may repeat or carry a comma-separated list.
func parseFilter(r *http.Request) (profitability.Filter, *apierrors.APIError) {
	q := r.URL.Query()

	params := filterParams{
		Division:  q.Get("division"),
		From:      q.Get("from"),
		To:        q.Get("to"),
		MinMargin: q.Get("min_margin"),
		Query:     q.Get("q"),
	}
	if err := validate.Struct(params); err != nil {
		return profitability.Filter{}, apierrors.InvalidRequestWithError(err)
	}

	var filter profitability.Filter

	for _, raw := range q["division"] {
		for _, d := range strings.Split(raw, ",") {
			if d = strings.TrimSpace(d); d != "" {
				filter.Divisions = append(filter.Divisions, d)
			}
		}
	}

	if params.From != "" {
		t, err := time.Parse("2006-01-02", params.From)
		if err != nil {
			return profitability.Filter{}, apierrors.ErrValidation("from", "must be a YYYY-MM-DD date")
		}
		filter.From = t
	}
	if params.To != "" {
		t, err := time.Parse("2006-01-02", params.To)
		if err != nil {
			return profitability.Filter{}, apierrors.ErrValidation("to", "must be a YYYY-MM-DD date")
		}
		filter.To = t
	}
	if !filter.From.IsZero() && !filter.To.IsZero() && filter.To.Before(filter.From) {
		return profitability.Filter{}, apierrors.ErrValidation("to", "must not precede from")
	}

	if params.MinMargin != "" {
		m, err := strconv.ParseFloat(params.MinMargin, 64)
		if err != nil || m < 0 || m > 1 {
			return profitability.Filter{}, apierrors.ErrValidation("min_margin", "must be a fraction between 0 and 1")
		}
		filter.MinMargin = m
	}

	filter.ProductQuery = params.Query

	return filter, nil
}

// paretoParams are the concentration-specific query parameters.
type paretoParams struct {
	Metric    string  `validate:"omitempty,oneof=profit sales"`
	Threshold float64 `validate:"gt=0,lte=1"`
}

// parseParetoParams reads metric and threshold, defaulting to the
// server-configured threshold when the query omits one.
func parseParetoParams(r *http.Request, defaultThreshold float64) (paretoParams, *apierrors.APIError) {
	q := r.URL.Query()

	params := paretoParams{
		Metric:    q.Get("metric"),
		Threshold: defaultThreshold,
	}
	if params.Metric == "" {
		params.Metric = profitability.MetricProfit
	}

	if raw := q.Get("threshold"); raw != "" {
		t, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return paretoParams{}, apierrors.ErrValidation("threshold", "must be a number")
		}
		params.Threshold = t
	}

	if err := validate.Struct(params); err != nil {
		return paretoParams{}, apierrors.InvalidRequestWithError(err)
	}

	return params, nil
}
