package infrastructure

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// Metrics holds the application's OpenTelemetry instruments, exported
// through a prometheus registry scraped at /metrics.
type Metrics struct {
	Registry *prometheus.Registry
	provider *sdkmetric.MeterProvider

	httpRequests metric.Int64Counter
	httpDuration metric.Float64Histogram
	datasetLoads metric.Int64Counter
	pipelineRuns metric.Int64Counter
}

// NewMetrics initializes the otel meter provider with a prometheus exporter
// and creates the application instruments.
func NewMetrics() (*Metrics, error) {
	registry := prometheus.NewRegistry()

	exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("create prometheus exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter("salespulse")

	m := &Metrics{Registry: registry, provider: provider}

	if m.httpRequests, err = meter.Int64Counter("http_requests_total",
		metric.WithDescription("HTTP requests served")); err != nil {
		return nil, fmt.Errorf("create http_requests_total: %w", err)
	}
	if m.httpDuration, err = meter.Float64Histogram("http_request_duration_seconds",
		metric.WithDescription("HTTP request latency"),
		metric.WithUnit("s")); err != nil {
		return nil, fmt.Errorf("create http_request_duration_seconds: %w", err)
	}
	if m.datasetLoads, err = meter.Int64Counter("dataset_loads_total",
		metric.WithDescription("Raw source loads, cache misses only")); err != nil {
		return nil, fmt.Errorf("create dataset_loads_total: %w", err)
	}
	if m.pipelineRuns, err = meter.Int64Counter("pipeline_runs_total",
		metric.WithDescription("Full pipeline recomputations")); err != nil {
		return nil, fmt.Errorf("create pipeline_runs_total: %w", err)
	}

	return m, nil
}

// RecordRequest records one served HTTP request.
func (m *Metrics) RecordRequest(ctx context.Context, path string, status int, elapsed time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("path", path),
		attribute.Int("status", status),
	)
	m.httpRequests.Add(ctx, 1, attrs)
	m.httpDuration.Record(ctx, elapsed.Seconds(), attrs)
}

// RecordDatasetLoad records a cache-miss source load.
func (m *Metrics) RecordDatasetLoad(ctx context.Context) {
	m.datasetLoads.Add(ctx, 1)
}

// RecordPipelineRun records one full pipeline recomputation.
func (m *Metrics) RecordPipelineRun(ctx context.Context, ok bool) {
	m.pipelineRuns.Add(ctx, 1, metric.WithAttributes(attribute.Bool("ok", ok)))
}

// Shutdown flushes the meter provider.
func (m *Metrics) Shutdown(ctx context.Context) error {
	return m.provider.Shutdown(ctx)
}
