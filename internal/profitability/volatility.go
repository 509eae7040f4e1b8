package profitability

import (
	"math"
	"sort"

	"salespulse/pkg/contracts/domain"
)

// monthBucket accumulates one entity-month of sales and profit. Monthly
// margin is ratio-of-sums within the bucket, consistent with the aggregate
// margin definition.
type monthBucket struct {
	sales  float64
	profit float64
}

// Volatility buckets records into calendar months per grouping key, computes
// each month's margin, and reports the sample standard deviation of that
// monthly series per entity. Entities observed in a single month get a nil
// volatility: insufficient history is not zero dispersion. Records with an
// unknown order date are skipped. Returns ErrNoData when no datable records
// remain.
func Volatility(records []domain.Transaction, groupBy GroupBy) ([]VolatilityRow, error) {
	type entityMonths struct {
		sample domain.Transaction
		months map[string]*monthBucket
	}

	groups := make(map[string]*entityMonths)
	for _, tx := range records {
		if !tx.HasOrderDate() {
			continue
		}
		key := groupKey(tx, groupBy)
		g, ok := groups[key]
		if !ok {
			g = &entityMonths{sample: tx, months: make(map[string]*monthBucket)}
			groups[key] = g
		}
		month := tx.Month()
		b, ok := g.months[month]
		if !ok {
			b = &monthBucket{}
			g.months[month] = b
		}
		b.sales += tx.Sales
		b.profit += tx.GrossProfit
	}

	if len(groups) == 0 {
		return nil, ErrNoData
	}

	rows := make([]VolatilityRow, 0, len(groups))
	for _, g := range groups {
		row := VolatilityRow{Months: len(g.months)}
		switch groupBy {
		case GroupByDivision:
			row.Division = g.sample.Division
		case GroupByFactory:
			row.Factory = g.sample.Factory
		default:
			row.Division = g.sample.Division
			row.Product = g.sample.ProductName
			row.Factory = g.sample.Factory
		}

		margins := make([]float64, 0, len(g.months))
		for _, b := range g.months {
			margins = append(margins, domain.SafeRatio(b.profit, b.sales))
		}
		row.MeanMonthlyMargin = mean(margins)
		if len(margins) >= 2 {
			sd := stddev(margins)
			row.Volatility = &sd
		}

		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		return volatilityKey(rows[i]) < volatilityKey(rows[j])
	})

	return rows, nil
}

func volatilityKey(r VolatilityRow) string {
	return r.Division + "|" + r.Product + "|" + r.Factory
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stddev is the sample standard deviation (n-1 denominator). Callers must
// guarantee len(values) >= 2.
func stddev(values []float64) float64 {
	m := mean(values)
	var ss float64
	for _, v := range values {
		d := v - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(values)-1))
}
