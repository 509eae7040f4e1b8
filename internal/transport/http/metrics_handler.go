package http

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"salespulse/internal/infrastructure"
)

// MetricsHandler exposes the application's prometheus registry.
func MetricsHandler(metrics *infrastructure.Metrics) http.Handler {
	return promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}
