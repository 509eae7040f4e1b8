package profitability

import (
	"sort"
)

// Classify assigns each entity exactly one strategic label by comparing its
// total profit and ratio-of-sums margin against the population medians.
// Comparison is non-strict on both axes: an entity sitting exactly on a
// median lands in the upper bucket. Thresholds are recomputed from the
// entities passed in, so the labelling always reflects the current filter.
func Classify(entities []Entity) (Thresholds, error) {
	if len(entities) == 0 {
		return Thresholds{}, ErrNoData
	}

	profits := make([]float64, len(entities))
	margins := make([]float64, len(entities))
	for i, e := range entities {
		profits[i] = e.TotalProfit
		margins[i] = e.Margin
	}

	th := Thresholds{
		MedianProfit: median(profits),
		MedianMargin: median(margins),
	}

	for i := range entities {
		entities[i].Label = labelFor(entities[i], th)
	}

	return th, nil
}

func labelFor(e Entity, th Thresholds) Label {
	highProfit := e.TotalProfit >= th.MedianProfit
	highMargin := e.Margin >= th.MedianMargin

	switch {
	case highProfit && highMargin:
		return LabelStrategicCore
	case highProfit && !highMargin:
		return LabelVolumeIllusion
	case !highProfit && highMargin:
		return LabelMarginRisk
	default:
		return LabelRationalizationCandidate
	}
}

// median returns the interpolated median: for an even count, the mean of the
// two middle values. The input slice is not modified.
func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
