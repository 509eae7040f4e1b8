package profitability

import (
	"errors"
	"strings"
	"time"

	"salespulse/pkg/contracts/domain"
)

// Sentinel errors returned by the pipeline stages.
var (
	// ErrNoData means the current filters exclude every record. Callers must
	// treat this as "nothing to show", not as a zero-valued result.
	ErrNoData = errors.New("no records match the current filters")
	// ErrNotComputable means the requested analysis is undefined for the
	// current data, such as a concentration curve over a zero grand total.
	ErrNotComputable = errors.New("analysis not computable for current data")
)

// Label is the strategic category assigned to an aggregated entity by the
// two-axis median classification.
type Label string

const (
	// LabelStrategicCore: profit and margin both at or above the median.
	LabelStrategicCore Label = "StrategicCore"
	// LabelVolumeIllusion: high profit carried by thin margins.
	LabelVolumeIllusion Label = "VolumeIllusion"
	// LabelMarginRisk: healthy margin but below-median profit contribution.
	LabelMarginRisk Label = "MarginRisk"
	// LabelRationalizationCandidate: below median on both axes.
	LabelRationalizationCandidate Label = "RationalizationCandidate"
)

// GroupBy selects the grouping key for aggregation.
type GroupBy int

const (
	// GroupByProduct groups by division, product and factory.
	GroupByProduct GroupBy = iota
	// GroupByDivision groups by division only.
	GroupByDivision
	// GroupByFactory groups by factory only.
	GroupByFactory
)

// String returns the string representation of the grouping.
func (g GroupBy) String() string {
	switch g {
	case GroupByProduct:
		return "product"
	case GroupByDivision:
		return "division"
	case GroupByFactory:
		return "factory"
	default:
		return "unknown"
	}
}

// Filter is the predicate set applied to the cleaned record table before
// aggregation. Zero values mean "no constraint".
type Filter struct {
	Divisions    []string  `json:"divisions,omitempty"`
	From         time.Time `json:"from,omitempty"`
	To           time.Time `json:"to,omitempty"`
	MinMargin    float64   `json:"min_margin,omitempty"`
	ProductQuery string    `json:"product_query,omitempty"`
}

// IsZero reports whether the filter imposes no constraints.
func (f Filter) IsZero() bool {
	return len(f.Divisions) == 0 && f.From.IsZero() && f.To.IsZero() &&
		f.MinMargin == 0 && f.ProductQuery == ""
}

// Matches reports whether a transaction passes every predicate.
// Records with an unknown order date pass date-range checks only when no
// range is set.
func (f Filter) Matches(tx domain.Transaction) bool {
	if len(f.Divisions) > 0 && !containsFold(f.Divisions, tx.Division) {
		return false
	}
	if !f.From.IsZero() {
		if !tx.HasOrderDate() || tx.OrderDate.Before(f.From) {
			return false
		}
	}
	if !f.To.IsZero() {
		if !tx.HasOrderDate() || tx.OrderDate.After(f.To) {
			return false
		}
	}
	if f.MinMargin > 0 && tx.GrossMargin < f.MinMargin {
		return false
	}
	if f.ProductQuery != "" &&
		!strings.Contains(strings.ToLower(tx.ProductName), strings.ToLower(f.ProductQuery)) {
		return false
	}
	return true
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

// Entity is one row of the aggregated table: all records sharing a grouping
// key, rolled up. Rebuilt from scratch whenever the filtered record set
// changes; never mutated incrementally.
type Entity struct {
	Division string `json:"division,omitempty"`
	Product  string `json:"product,omitempty"`
	Factory  string `json:"factory,omitempty"`

	TotalSales  float64 `json:"total_sales"`
	TotalProfit float64 `json:"total_profit"`
	TotalCost   float64 `json:"total_cost"`
	TotalUnits  int64   `json:"total_units"`
	Records     int     `json:"records"`

	// Margin is the ratio-of-sums figure, total profit over total sales.
	// The mean of per-record margins is a different, biased statistic and is
	// never used here.
	Margin        float64 `json:"margin"`
	ProfitPerUnit float64 `json:"profit_per_unit"`

	// Contribution shares against the grand totals of the filtered set.
	SalesShare  float64 `json:"sales_share"`
	ProfitShare float64 `json:"profit_share"`

	Label Label `json:"label,omitempty"`
}

// Key returns the composite grouping key for the entity.
func (e Entity) Key() string {
	parts := make([]string, 0, 3)
	if e.Division != "" {
		parts = append(parts, e.Division)
	}
	if e.Product != "" {
		parts = append(parts, e.Product)
	}
	if e.Factory != "" {
		parts = append(parts, e.Factory)
	}
	return strings.Join(parts, "|")
}

// Thresholds are the population reference values the classifier compares
// each entity against. Recomputed whenever the aggregate table changes.
type Thresholds struct {
	MedianProfit float64 `json:"median_profit"`
	MedianMargin float64 `json:"median_margin"`
}

// CurvePoint is one step of the concentration curve: the entity at a given
// rank and the cumulative share reached by including it.
type CurvePoint struct {
	Rank            int     `json:"rank"`
	Key             string  `json:"key"`
	Value           float64 `json:"value"`
	Share           float64 `json:"share"`
	CumulativeShare float64 `json:"cumulative_share"`
}

// Concentration is the result of the Pareto analysis over one metric.
type Concentration struct {
	Metric    string       `json:"metric"`
	Threshold float64      `json:"threshold"`
	Points    []CurvePoint `json:"points"`
	// TopN is the smallest prefix whose cumulative share reaches the
	// threshold.
	TopN      int     `json:"top_n"`
	TopNShare float64 `json:"top_n_share"`
}

// VolatilityRow reports the month-to-month margin dispersion for one entity.
type VolatilityRow struct {
	Division string `json:"division,omitempty"`
	Product  string `json:"product,omitempty"`
	Factory  string `json:"factory,omitempty"`

	Months            int     `json:"months"`
	MeanMonthlyMargin float64 `json:"mean_monthly_margin"`

	// Volatility is nil when the entity was observed in fewer than two
	// months. Insufficient history is not the same thing as zero volatility.
	Volatility *float64 `json:"volatility"`
}

// KPISummary holds the scalar figures for the filtered record set.
type KPISummary struct {
	TotalRevenue float64 `json:"total_revenue"`
	TotalProfit  float64 `json:"total_profit"`
	TotalUnits   int64   `json:"total_units"`
	RecordCount  int     `json:"record_count"`

	// OverallMargin is ratio-of-sums and is the figure decisions are made on.
	OverallMargin float64 `json:"overall_margin"`
	// MeanRecordMargin is the unweighted mean of per-record margins. Reported
	// for continuity with the legacy dashboard; never used for thresholds.
	MeanRecordMargin float64 `json:"mean_record_margin"`

	TopN            int     `json:"top_n"`
	TopNProfitShare float64 `json:"top_n_profit_share"`
}
