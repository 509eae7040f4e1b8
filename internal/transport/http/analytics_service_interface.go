package http

import (
	"context"

	"salespulse/internal/config"
	"salespulse/internal/dataprocessing"
	"salespulse/internal/profitability"
)

// AnalyticsService is the service surface the handlers depend on. Satisfied
// by services.AnalyticsService; tests substitute a stub.
type AnalyticsService interface {
	Analyze(ctx context.Context, filter profitability.Filter) (*profitability.Result, error)
	Diagnostics(ctx context.Context) (dataprocessing.LoadDiagnostics, error)
	Reference() config.ReferenceData
	Stats() map[string]any
}
