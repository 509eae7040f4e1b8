package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"salespulse/internal/config"
	"salespulse/internal/dataprocessing"
	"salespulse/internal/infrastructure"
	"salespulse/internal/profitability"
)

// AnalyticsService owns the memoized dataset and runs the profitability
// pipeline per request. The cached dataset is keyed on source path and
// modification time: filter changes reuse it, source changes invalidate it.
// The dataset itself is immutable, so concurrent Analyze calls share it
// without copying.
type AnalyticsService struct {
	loader   *dataprocessing.Loader
	analyzer *profitability.Analyzer
	ref      config.ReferenceData
	source   string
	logger   *slog.Logger
	metrics  *infrastructure.Metrics

	mu          sync.RWMutex
	cached      *dataprocessing.Dataset
	cachedMtime time.Time
}

// NewAnalyticsService creates the service around a data source path.
func NewAnalyticsService(cfg config.DataConfig, analytics config.AnalyticsConfig, ref config.ReferenceData, logger *slog.Logger) *AnalyticsService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalyticsService{
		loader:   dataprocessing.NewLoader(ref, analytics.ProfitMismatchTolerance, logger),
		analyzer: profitability.NewAnalyzer(analytics.ParetoThreshold, analytics.TopN, logger),
		ref:      ref,
		source:   cfg.SourcePath,
		logger:   logger,
	}
}

// SetMetrics attaches the application instruments. Optional; the service
// works without them.
func (s *AnalyticsService) SetMetrics(m *infrastructure.Metrics) {
	s.metrics = m
}

// Dataset returns the cleaned record table, loading the source only when it
// has not been loaded yet or has changed on disk.
func (s *AnalyticsService) Dataset(ctx context.Context) (*dataprocessing.Dataset, error) {
	mtime, err := sourceMtime(s.source)
	if err != nil {
		return nil, fmt.Errorf("stat data source: %w", err)
	}

	s.mu.RLock()
	if s.cached != nil && s.cachedMtime.Equal(mtime) {
		ds := s.cached
		s.mu.RUnlock()
		return ds, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Another request may have loaded while we waited for the write lock.
	if s.cached != nil && s.cachedMtime.Equal(mtime) {
		return s.cached, nil
	}

	start := time.Now()
	ds, err := s.loader.Load(ctx, s.source)
	if err != nil {
		return nil, fmt.Errorf("load data source: %w", err)
	}
	s.cached = ds
	s.cachedMtime = mtime
	if s.metrics != nil {
		s.metrics.RecordDatasetLoad(ctx)
	}

	s.logger.InfoContext(ctx, "dataset cached",
		slog.String("source", s.source),
		slog.Int("records", len(ds.Records)),
		slog.String("duration", time.Since(start).String()),
	)

	return ds, nil
}

// Analyze runs the full pipeline over the cached dataset with the given
// filter. Each call rebuilds the aggregate tables from scratch.
func (s *AnalyticsService) Analyze(ctx context.Context, filter profitability.Filter) (*profitability.Result, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	result, err := s.analyzer.Run(ctx, ds.Records, filter)
	if s.metrics != nil {
		s.metrics.RecordPipelineRun(ctx, err == nil)
	}
	return result, err
}

// Diagnostics returns the load diagnostics for the current dataset.
func (s *AnalyticsService) Diagnostics(ctx context.Context) (dataprocessing.LoadDiagnostics, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return dataprocessing.LoadDiagnostics{}, err
	}
	return ds.Diagnostics, nil
}

// Reference exposes the injected factory reference data for the map view.
func (s *AnalyticsService) Reference() config.ReferenceData {
	return s.ref
}

// Stats reports cache state for the health endpoint.
func (s *AnalyticsService) Stats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"source": s.source,
		"cached": s.cached != nil,
	}
	if s.cached != nil {
		stats["records"] = len(s.cached.Records)
		stats["loaded_at"] = s.cached.LoadedAt
	}
	return stats
}

func sourceMtime(path string) (time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}
