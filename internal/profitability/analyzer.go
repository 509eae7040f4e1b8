package profitability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"salespulse/pkg/contracts/domain"
)

// Analyzer orchestrates the full pipeline: filter, aggregate, classify,
// concentrate, volatility, KPIs, insights. It holds only immutable tuning
// parameters, so a single Analyzer is safe to share across requests.
type Analyzer struct {
	paretoThreshold float64
	topN            int
	logger          *slog.Logger
}

// NewAnalyzer creates an analyzer with the given concentration threshold and
// leaderboard size.
func NewAnalyzer(paretoThreshold float64, topN int, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	if paretoThreshold <= 0 || paretoThreshold > 1 {
		paretoThreshold = 0.8
	}
	if topN <= 0 {
		topN = 10
	}
	return &Analyzer{
		paretoThreshold: paretoThreshold,
		topN:            topN,
		logger:          logger,
	}
}

// Result is the complete pipeline output for one (record set, filter) pair.
type Result struct {
	Filter     Filter          `json:"filter"`
	KPIs       KPISummary      `json:"kpis"`
	Products   []Entity        `json:"products"`
	Divisions  []Entity        `json:"divisions"`
	Factories  []Entity        `json:"factories"`
	Thresholds Thresholds      `json:"thresholds"`
	Profit     Concentration   `json:"profit_concentration"`
	Volatility []VolatilityRow `json:"volatility"`
	Insights   Insights        `json:"insights"`
}

// Run executes every stage over the filtered subset of records. The input
// slice is treated as immutable. Returns ErrNoData when the filter excludes
// everything.
func (a *Analyzer) Run(ctx context.Context, records []domain.Transaction, filter Filter) (*Result, error) {
	start := time.Now()

	filtered := ApplyFilter(records, filter)
	if len(filtered) == 0 {
		a.logger.WarnContext(ctx, "filter excluded all records",
			slog.Int("input_records", len(records)))
		return nil, ErrNoData
	}

	products, err := Aggregate(filtered, GroupByProduct)
	if err != nil {
		return nil, fmt.Errorf("aggregate products: %w", err)
	}
	divisions, err := Aggregate(filtered, GroupByDivision)
	if err != nil {
		return nil, fmt.Errorf("aggregate divisions: %w", err)
	}
	factories, err := Aggregate(filtered, GroupByFactory)
	if err != nil {
		return nil, fmt.Errorf("aggregate factories: %w", err)
	}

	thresholds, err := Classify(products)
	if err != nil {
		return nil, fmt.Errorf("classify products: %w", err)
	}
	if _, err := Classify(divisions); err != nil {
		return nil, fmt.Errorf("classify divisions: %w", err)
	}
	if _, err := Classify(factories); err != nil {
		return nil, fmt.Errorf("classify factories: %w", err)
	}

	// A loss-making period has a valid aggregate table but no defined profit
	// concentration. The curve is simply absent; the rest of the run stands.
	conc, err := Concentrate(products, MetricProfit, a.paretoThreshold)
	if err != nil && !errors.Is(err, ErrNotComputable) {
		return nil, fmt.Errorf("profit concentration: %w", err)
	}

	// A set whose every record lacks a parseable date has no volatility
	// table; that alone does not sink the run.
	vol, err := Volatility(filtered, GroupByProduct)
	if err != nil && !errors.Is(err, ErrNoData) {
		return nil, fmt.Errorf("volatility: %w", err)
	}

	kpis, err := Summarize(filtered, products, a.topN)
	if err != nil {
		return nil, fmt.Errorf("summarize: %w", err)
	}

	result := &Result{
		Filter:     filter,
		KPIs:       kpis,
		Products:   products,
		Divisions:  divisions,
		Factories:  factories,
		Thresholds: thresholds,
		Profit:     conc,
		Volatility: vol,
		Insights:   BuildInsights(products, conc, time.Now()),
	}

	a.logger.InfoContext(ctx, "pipeline run completed",
		slog.Int("input_records", len(records)),
		slog.Int("filtered_records", len(filtered)),
		slog.Int("product_entities", len(products)),
		slog.String("duration", time.Since(start).String()),
	)

	return result, nil
}
