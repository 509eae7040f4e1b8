package profitability

import (
	"sort"

	"salespulse/pkg/contracts/domain"
)

// ApplyFilter returns the subset of records passing every predicate. The
// input slice is never mutated.
func ApplyFilter(records []domain.Transaction, filter Filter) []domain.Transaction {
	if filter.IsZero() {
		out := make([]domain.Transaction, len(records))
		copy(out, records)
		return out
	}

	out := make([]domain.Transaction, 0, len(records))
	for _, tx := range records {
		if filter.Matches(tx) {
			out = append(out, tx)
		}
	}
	return out
}

// Aggregate rolls the filtered records up into one entity per distinct
// grouping key. Aggregation is a pure function of the record set: totals are
// summed, margin is recomputed as total profit over total sales, and
// contribution shares are taken against the grand totals of the whole set.
// Returns ErrNoData when no records remain.
func Aggregate(records []domain.Transaction, groupBy GroupBy) ([]Entity, error) {
	if len(records) == 0 {
		return nil, ErrNoData
	}

	groups := make(map[string]*Entity)
	var grandSales, grandProfit float64

	for _, tx := range records {
		key := groupKey(tx, groupBy)
		e, ok := groups[key]
		if !ok {
			e = &Entity{}
			switch groupBy {
			case GroupByDivision:
				e.Division = tx.Division
			case GroupByFactory:
				e.Factory = tx.Factory
			default:
				e.Division = tx.Division
				e.Product = tx.ProductName
				e.Factory = tx.Factory
			}
			groups[key] = e
		}

		e.TotalSales += tx.Sales
		e.TotalProfit += tx.GrossProfit
		e.TotalCost += tx.Cost
		e.TotalUnits += tx.Units
		e.Records++

		grandSales += tx.Sales
		grandProfit += tx.GrossProfit
	}

	entities := make([]Entity, 0, len(groups))
	for _, e := range groups {
		e.Margin = domain.SafeRatio(e.TotalProfit, e.TotalSales)
		e.ProfitPerUnit = domain.SafeRatio(e.TotalProfit, float64(e.TotalUnits))
		e.SalesShare = domain.SafeRatio(e.TotalSales, grandSales)
		e.ProfitShare = domain.SafeRatio(e.TotalProfit, grandProfit)
		entities = append(entities, *e)
	}

	// Deterministic table order regardless of map iteration.
	sort.Slice(entities, func(i, j int) bool {
		return entities[i].Key() < entities[j].Key()
	})

	return entities, nil
}

func groupKey(tx domain.Transaction, groupBy GroupBy) string {
	switch groupBy {
	case GroupByDivision:
		return tx.Division
	case GroupByFactory:
		return tx.Factory
	default:
		return tx.Division + "|" + tx.ProductName + "|" + tx.Factory
	}
}
