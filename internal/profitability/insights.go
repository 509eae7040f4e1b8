package profitability

import (
	"fmt"
	"sort"
	"time"
)

// Insights contains the categorized, human-readable read of the current
// analysis: which products carry the portfolio, which are candidates for
// rationalization, and how concentrated profit is.
type Insights struct {
	GeneratedAt time.Time `json:"generated_at"`

	StrategicCore             []Entity `json:"strategic_core"`
	RationalizationCandidates []Entity `json:"rationalization_candidates"`
	MarginRisks               []Entity `json:"margin_risks"`
	VolumeIllusions           []Entity `json:"volume_illusions"`

	// ConcentrationWarning is set when a small number of entities carries the
	// bulk of profit.
	ConcentrationWarning string   `json:"concentration_warning,omitempty"`
	Notes                []string `json:"notes,omitempty"`
}

// BuildInsights derives recommendations from an already-classified entity
// table and its concentration analysis. Entities must carry labels; call
// Classify first.
func BuildInsights(entities []Entity, conc Concentration, now time.Time) Insights {
	ins := Insights{GeneratedAt: now}

	for _, e := range entities {
		switch e.Label {
		case LabelStrategicCore:
			ins.StrategicCore = append(ins.StrategicCore, e)
		case LabelRationalizationCandidate:
			ins.RationalizationCandidates = append(ins.RationalizationCandidates, e)
		case LabelMarginRisk:
			ins.MarginRisks = append(ins.MarginRisks, e)
		case LabelVolumeIllusion:
			ins.VolumeIllusions = append(ins.VolumeIllusions, e)
		}
	}

	// Most consequential first within each category.
	byProfit := func(list []Entity) {
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].TotalProfit > list[j].TotalProfit
		})
	}
	byProfit(ins.StrategicCore)
	byProfit(ins.VolumeIllusions)
	byProfit(ins.MarginRisks)
	sort.SliceStable(ins.RationalizationCandidates, func(i, j int) bool {
		return ins.RationalizationCandidates[i].TotalProfit < ins.RationalizationCandidates[j].TotalProfit
	})

	if conc.TopN > 0 && len(entities) > 0 {
		fraction := float64(conc.TopN) / float64(len(entities))
		if fraction <= 0.5 {
			ins.ConcentrationWarning = fmt.Sprintf(
				"%d of %d entities (%.0f%%) carry %.0f%% of %s",
				conc.TopN, len(entities), fraction*100, conc.TopNShare*100, conc.Metric)
		}
	}

	if n := len(ins.RationalizationCandidates); n > 0 {
		ins.Notes = append(ins.Notes, fmt.Sprintf(
			"%d entities sit below median on both profit and margin; review for rationalization", n))
	}
	if n := len(ins.VolumeIllusions); n > 0 {
		ins.Notes = append(ins.Notes, fmt.Sprintf(
			"%d entities deliver above-median profit on below-median margins; cost review may lift the floor", n))
	}

	return ins
}
