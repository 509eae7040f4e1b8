package profitability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salespulse/pkg/contracts/domain"
)

func TestAnalyzerRunScenario(t *testing.T) {
	// The three-record scenario: product A (Jan), product B (Feb), plus an
	// invalid zero-sales row that the loader would have dropped before the
	// pipeline sees it.
	records := []domain.Transaction{
		tx("Sugar", "A", "Sugar Shack", 50, 5, 10, jan),
		tx("Sugar", "B", "Sugar Shack", 200, 80, 20, feb),
	}

	analyzer := NewAnalyzer(0.8, 10, nil)
	result, err := analyzer.Run(context.Background(), records, Filter{})
	require.NoError(t, err)

	require.Len(t, result.Products, 2)
	byProduct := map[string]Entity{}
	for _, e := range result.Products {
		byProduct[e.Product] = e
	}

	a, b := byProduct["A"], byProduct["B"]
	assert.InDelta(t, 0.10, a.Margin, 1e-9)
	assert.InDelta(t, 0.40, b.Margin, 1e-9)

	// Median of two values is their mean; B dominates both axes, A sits
	// below both medians. The tie-break rule would only matter if A reached
	// the median exactly.
	assert.Equal(t, LabelStrategicCore, b.Label)
	assert.Equal(t, LabelRationalizationCandidate, a.Label)

	// Each product has one month of history: volatility must be null.
	require.Len(t, result.Volatility, 2)
	for _, row := range result.Volatility {
		assert.Nil(t, row.Volatility)
	}

	// KPIs use ratio-of-sums for the overall margin.
	assert.InDelta(t, 250, result.KPIs.TotalRevenue, 1e-9)
	assert.InDelta(t, 85, result.KPIs.TotalProfit, 1e-9)
	assert.InDelta(t, 0.34, result.KPIs.OverallMargin, 1e-9)
	assert.InDelta(t, 0.25, result.KPIs.MeanRecordMargin, 1e-9)
}

func TestAnalyzerRunAllLossPeriod(t *testing.T) {
	// Every record is valid (positive sales and units) but the period loses
	// money overall. Profit concentration is undefined; everything else in
	// the run must still come back.
	records := []domain.Transaction{
		tx("Sugar", "A", "Sugar Shack", 50, -10, 10, jan),
		tx("Sugar", "B", "Sugar Shack", 200, -5, 20, feb),
	}

	analyzer := NewAnalyzer(0.8, 10, nil)
	result, err := analyzer.Run(context.Background(), records, Filter{})
	require.NoError(t, err)

	require.Len(t, result.Products, 2)
	for _, e := range result.Products {
		assert.NotEmpty(t, e.Label, "classification still runs for %s", e.Product)
	}
	require.Len(t, result.Volatility, 2)

	assert.InDelta(t, 250, result.KPIs.TotalRevenue, 1e-9)
	assert.InDelta(t, -15, result.KPIs.TotalProfit, 1e-9)
	assert.InDelta(t, 0, result.KPIs.TopNProfitShare, 1e-9)

	// The curve is absent, not partially populated.
	assert.Zero(t, result.Profit.TopN)
	assert.Empty(t, result.Profit.Points)
	assert.Empty(t, result.Insights.ConcentrationWarning)
}

func TestAnalyzerRunNoData(t *testing.T) {
	records := []domain.Transaction{
		tx("Sugar", "A", "Sugar Shack", 50, 5, 10, jan),
	}

	analyzer := NewAnalyzer(0.8, 10, nil)
	_, err := analyzer.Run(context.Background(), records, Filter{Divisions: []string{"Chocolate"}})
	assert.ErrorIs(t, err, ErrNoData)
}

func TestAnalyzerRunIsPureOverInput(t *testing.T) {
	records := []domain.Transaction{
		tx("Sugar", "A", "Sugar Shack", 50, 5, 10, jan),
		tx("Sugar", "B", "Sugar Shack", 200, 80, 20, feb),
	}
	before := make([]domain.Transaction, len(records))
	copy(before, records)

	analyzer := NewAnalyzer(0.8, 10, nil)
	r1, err := analyzer.Run(context.Background(), records, Filter{})
	require.NoError(t, err)
	r2, err := analyzer.Run(context.Background(), records, Filter{})
	require.NoError(t, err)

	assert.Equal(t, before, records, "input records must not be mutated")
	assert.Equal(t, r1.Products, r2.Products, "same input and filter must reproduce the same table")
	assert.Equal(t, r1.Thresholds, r2.Thresholds)
}

func TestBuildInsights(t *testing.T) {
	entities := []Entity{
		{Product: "core", TotalProfit: 100, Margin: 0.4, Label: LabelStrategicCore},
		{Product: "drag", TotalProfit: 5, Margin: 0.02, Label: LabelRationalizationCandidate},
		{Product: "volume", TotalProfit: 90, Margin: 0.05, Label: LabelVolumeIllusion},
	}
	conc := Concentration{Metric: MetricProfit, Threshold: 0.8, TopN: 1, TopNShare: 0.82}

	ins := BuildInsights(entities, conc, time.Now())

	assert.Len(t, ins.StrategicCore, 1)
	assert.Len(t, ins.RationalizationCandidates, 1)
	assert.Len(t, ins.VolumeIllusions, 1)
	assert.NotEmpty(t, ins.ConcentrationWarning)
	assert.NotEmpty(t, ins.Notes)
}

func TestSummarizeNoData(t *testing.T) {
	_, err := Summarize(nil, nil, 10)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestSummarizeTopNProfitShare(t *testing.T) {
	records := []domain.Transaction{
		tx("Sugar", "A", "Sugar Shack", 100, 80, 10, jan),
		tx("Sugar", "B", "Sugar Shack", 100, 15, 10, jan),
		tx("Sugar", "C", "Sugar Shack", 100, 5, 10, jan),
	}
	entities, err := Aggregate(records, GroupByProduct)
	require.NoError(t, err)

	s, err := Summarize(records, entities, 1)
	require.NoError(t, err)
	assert.InDelta(t, 0.80, s.TopNProfitShare, 1e-9)
}
