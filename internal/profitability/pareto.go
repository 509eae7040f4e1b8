package profitability

import (
	"fmt"
	"sort"
)

// Metric names accepted by the concentration analyzer.
const (
	MetricProfit = "profit"
	MetricSales  = "sales"
)

// Concentrate ranks entities descending on the chosen metric, accumulates
// their shares into a curve and reports the smallest prefix whose cumulative
// share reaches the threshold. The sort is stable: entities tied on the
// metric keep their relative order from the aggregate table. Returns
// ErrNotComputable when the table is empty or the grand total is not
// positive.
//
// The curve assumes per-entity metric values are non-negative. Negative
// contributors (loss-making entities against a positive grand total) make
// the cumulative shares non-monotonic and can push them above 1.0 before
// settling back, so TopN may reflect an overshoot rather than a stable
// prefix.
func Concentrate(entities []Entity, metric string, threshold float64) (Concentration, error) {
	if threshold <= 0 || threshold > 1 {
		return Concentration{}, fmt.Errorf("concentration threshold must be in (0, 1], got %v", threshold)
	}

	value, err := metricFunc(metric)
	if err != nil {
		return Concentration{}, err
	}

	if len(entities) == 0 {
		return Concentration{}, fmt.Errorf("empty entity table: %w", ErrNotComputable)
	}

	var grandTotal float64
	for _, e := range entities {
		grandTotal += value(e)
	}
	if grandTotal <= 0 {
		return Concentration{}, fmt.Errorf("grand total %s is %v: %w", metric, grandTotal, ErrNotComputable)
	}

	ranked := make([]Entity, len(entities))
	copy(ranked, entities)
	sort.SliceStable(ranked, func(i, j int) bool {
		return value(ranked[i]) > value(ranked[j])
	})

	result := Concentration{
		Metric:    metric,
		Threshold: threshold,
		Points:    make([]CurvePoint, len(ranked)),
	}

	var cum float64
	for i, e := range ranked {
		v := value(e)
		share := v / grandTotal
		cum += share
		result.Points[i] = CurvePoint{
			Rank:            i + 1,
			Key:             e.Key(),
			Value:           v,
			Share:           share,
			CumulativeShare: cum,
		}
		if result.TopN == 0 && cum >= threshold {
			result.TopN = i + 1
			result.TopNShare = cum
		}
	}

	// Floating accumulation can leave the last point a hair under the
	// threshold even when it should be 1.0. The curve always terminates at
	// the full total, so the final prefix qualifies.
	if result.TopN == 0 {
		result.TopN = len(ranked)
		result.TopNShare = result.Points[len(ranked)-1].CumulativeShare
	}

	return result, nil
}

func metricFunc(metric string) (func(Entity) float64, error) {
	switch metric {
	case MetricProfit:
		return func(e Entity) float64 { return e.TotalProfit }, nil
	case MetricSales:
		return func(e Entity) float64 { return e.TotalSales }, nil
	default:
		return nil, fmt.Errorf("unknown concentration metric %q", metric)
	}
}
