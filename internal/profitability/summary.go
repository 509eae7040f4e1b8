package profitability

import (
	"salespulse/pkg/contracts/domain"
)

// Summarize computes the scalar KPI figures for the filtered record set. The
// entities parameter must be the aggregate table built from the same records;
// it supplies the top-N profit share. Returns ErrNoData on an empty set.
func Summarize(records []domain.Transaction, entities []Entity, topN int) (KPISummary, error) {
	if len(records) == 0 {
		return KPISummary{}, ErrNoData
	}
	if topN <= 0 {
		topN = 10
	}

	s := KPISummary{RecordCount: len(records), TopN: topN}

	var marginSum float64
	for _, tx := range records {
		s.TotalRevenue += tx.Sales
		s.TotalProfit += tx.GrossProfit
		s.TotalUnits += tx.Units
		marginSum += tx.GrossMargin
	}

	s.OverallMargin = domain.SafeRatio(s.TotalProfit, s.TotalRevenue)
	s.MeanRecordMargin = marginSum / float64(len(records))
	s.TopNProfitShare = topNProfitShare(entities, topN, s.TotalProfit)

	return s, nil
}

func topNProfitShare(entities []Entity, n int, totalProfit float64) float64 {
	if totalProfit <= 0 || len(entities) == 0 {
		return 0
	}

	conc, err := Concentrate(entities, MetricProfit, 1.0)
	if err != nil {
		return 0
	}
	if n > len(conc.Points) {
		n = len(conc.Points)
	}
	return conc.Points[n-1].CumulativeShare
}
