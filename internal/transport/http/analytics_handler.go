package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "salespulse/internal/errors"
	"salespulse/internal/exporter"
	"salespulse/internal/profitability"
)

// AnalyticsHandler serves the profitability analysis API.
type AnalyticsHandler struct {
	service         AnalyticsService
	logger          *slog.Logger
	errorHandler    *apierrors.ErrorHandler
	paretoThreshold float64
}

// NewAnalyticsHandler creates a new analytics handler.
func NewAnalyticsHandler(service AnalyticsService, paretoThreshold float64, logger *slog.Logger) *AnalyticsHandler {
	if paretoThreshold <= 0 || paretoThreshold > 1 {
		paretoThreshold = 0.8
	}
	return &AnalyticsHandler{
		service:         service,
		logger:          logger,
		errorHandler:    apierrors.NewErrorHandler(logger, false),
		paretoThreshold: paretoThreshold,
	}
}

// RegisterRoutes registers the analytics routes.
func (h *AnalyticsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/summary", h.GetSummary)
	r.Get("/products", h.GetProducts)
	r.Get("/divisions", h.GetDivisions)
	r.Get("/factories", h.GetFactories)
	r.Get("/pareto", h.GetPareto)
	r.Get("/volatility", h.GetVolatility)
	r.Get("/insights", h.GetInsights)
	r.Get("/diagnostics", h.GetDiagnostics)
	r.Get("/export/products.csv", h.ExportProductsCSV)
}

// analyze parses the common filter parameters and runs the pipeline,
// handling errors uniformly. Returns nil when a response has been written.
func (h *AnalyticsHandler) analyze(w http.ResponseWriter, r *http.Request) *profitability.Result {
	filter, apiErr := parseFilter(r)
	if apiErr != nil {
		h.errorHandler.HandleError(w, r, apiErr)
		return nil
	}

	result, err := h.service.Analyze(r.Context(), filter)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return nil
	}
	return result
}

// GetSummary returns the KPI scalars and classification thresholds for the
// filtered record set.
func (h *AnalyticsHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	result := h.analyze(w, r)
	if result == nil {
		return
	}

	render.JSON(w, r, map[string]any{
		"filter":     result.Filter,
		"kpis":       result.KPIs,
		"thresholds": result.Thresholds,
	})
}

// GetProducts returns the classified product-level aggregate table.
func (h *AnalyticsHandler) GetProducts(w http.ResponseWriter, r *http.Request) {
	result := h.analyze(w, r)
	if result == nil {
		return
	}

	render.JSON(w, r, map[string]any{
		"count":      len(result.Products),
		"thresholds": result.Thresholds,
		"entities":   result.Products,
	})
}

// GetDivisions returns the division-level aggregate table.
func (h *AnalyticsHandler) GetDivisions(w http.ResponseWriter, r *http.Request) {
	result := h.analyze(w, r)
	if result == nil {
		return
	}

	render.JSON(w, r, map[string]any{
		"count":    len(result.Divisions),
		"entities": result.Divisions,
	})
}

// factoryRow pairs a factory aggregate with its map coordinate.
type factoryRow struct {
	profitability.Entity
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// GetFactories returns the factory-level aggregate table with coordinates
// attached for the map view.
func (h *AnalyticsHandler) GetFactories(w http.ResponseWriter, r *http.Request) {
	result := h.analyze(w, r)
	if result == nil {
		return
	}

	coords := h.service.Reference().Coordinates
	rows := make([]factoryRow, len(result.Factories))
	for i, e := range result.Factories {
		rows[i] = factoryRow{Entity: e}
		if c, ok := coords[e.Factory]; ok {
			rows[i].Lat = c.Lat
			rows[i].Lon = c.Lon
		}
	}

	render.JSON(w, r, map[string]any{
		"count":    len(rows),
		"entities": rows,
	})
}

// GetPareto returns the concentration curve for the requested metric and
// threshold, defaulting to profit at the configured threshold.
func (h *AnalyticsHandler) GetPareto(w http.ResponseWriter, r *http.Request) {
	params, apiErr := parseParetoParams(r, h.paretoThreshold)
	if apiErr != nil {
		h.errorHandler.HandleError(w, r, apiErr)
		return
	}

	result := h.analyze(w, r)
	if result == nil {
		return
	}

	conc, err := profitability.Concentrate(result.Products, params.Metric, params.Threshold)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, conc)
}

// GetVolatility returns the month-to-month margin dispersion table.
func (h *AnalyticsHandler) GetVolatility(w http.ResponseWriter, r *http.Request) {
	result := h.analyze(w, r)
	if result == nil {
		return
	}

	render.JSON(w, r, map[string]any{
		"count": len(result.Volatility),
		"rows":  result.Volatility,
	})
}

// GetInsights returns the categorized recommendations for the current
// analysis.
func (h *AnalyticsHandler) GetInsights(w http.ResponseWriter, r *http.Request) {
	result := h.analyze(w, r)
	if result == nil {
		return
	}

	render.JSON(w, r, result.Insights)
}

// GetDiagnostics returns the load diagnostics for the current dataset:
// dropped rows, duplicates, unknown dates and per-row anomalies.
func (h *AnalyticsHandler) GetDiagnostics(w http.ResponseWriter, r *http.Request) {
	diags, err := h.service.Diagnostics(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, diags)
}

// ExportProductsCSV streams the classified product table as a CSV download.
func (h *AnalyticsHandler) ExportProductsCSV(w http.ResponseWriter, r *http.Request) {
	result := h.analyze(w, r)
	if result == nil {
		return
	}

	filename := fmt.Sprintf("products_%s.csv", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := exporter.WriteEntitiesCSV(w, result.Products); err != nil {
		// Headers are already out; all we can do is log.
		h.logger.ErrorContext(r.Context(), "csv export failed",
			slog.String("error", err.Error()))
	}
}
