package domain

import (
	"time"
)

// UnknownFactory is the factory name assigned to products missing from the
// product-to-factory reference table. Unmapped products are kept, not dropped.
const UnknownFactory = "Unknown"

// Transaction represents a single sales ledger line after cleaning.
// Derived ratio fields are computed once at load time and never mutated.
type Transaction struct {
	OrderID     string    `json:"order_id" csv:"OrderID"`
	ProductID   string    `json:"product_id" csv:"ProductID"`
	Division    string    `json:"division" csv:"Division"`
	ProductName string    `json:"product_name" csv:"ProductName"`
	Factory     string    `json:"factory" csv:"Factory"`
	OrderDate   time.Time `json:"order_date" csv:"OrderDate"`
	ShipDate    time.Time `json:"ship_date,omitempty" csv:"ShipDate"`

	Sales       float64 `json:"sales" csv:"Sales"`
	Units       int64   `json:"units" csv:"Units"`
	GrossProfit float64 `json:"gross_profit" csv:"GrossProfit"`
	Cost        float64 `json:"cost" csv:"Cost"`

	// Derived fields, populated by DeriveMetrics.
	GrossMargin   float64 `json:"gross_margin"`
	ProfitPerUnit float64 `json:"profit_per_unit"`
	CostPerUnit   float64 `json:"cost_per_unit"`

	// ProfitMismatch marks rows where the reported gross profit disagrees
	// with sales minus cost beyond tolerance. The row is kept; the flag is a
	// data-quality signal.
	ProfitMismatch bool `json:"profit_mismatch,omitempty"`
}

// IsValid reports whether the transaction can participate in analysis.
// Sales and units must be strictly positive.
func (t Transaction) IsValid() bool {
	return t.Sales > 0 && t.Units > 0
}

// HasOrderDate reports whether the order date was parseable. Records with an
// unknown date are excluded from time-bucketed analysis only.
func (t Transaction) HasOrderDate() bool {
	return !t.OrderDate.IsZero()
}

// Key returns the identity used for duplicate detection.
func (t Transaction) Key() string {
	return t.OrderID + "|" + t.ProductID
}

// DeriveMetrics computes the per-record ratio fields. Division by zero yields
// zero rather than NaN or infinity so downstream aggregation never sees
// non-finite values.
func (t *Transaction) DeriveMetrics() {
	t.GrossMargin = SafeRatio(t.GrossProfit, t.Sales)
	t.ProfitPerUnit = SafeRatio(t.GrossProfit, float64(t.Units))
	t.CostPerUnit = SafeRatio(t.Cost, float64(t.Units))
}

// CheckProfitMismatch flags the record when reported profit deviates from
// sales minus cost by more than tolFraction of sales (with a small absolute
// floor so tiny rows are not all flagged).
func (t *Transaction) CheckProfitMismatch(tolFraction float64) bool {
	tol := t.Sales * tolFraction
	if tol < 0.01 {
		tol = 0.01
	}
	diff := t.GrossProfit - (t.Sales - t.Cost)
	if diff < 0 {
		diff = -diff
	}
	t.ProfitMismatch = diff > tol
	return t.ProfitMismatch
}

// SafeRatio divides a by b, returning 0 when b is zero.
func SafeRatio(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

// Month returns the calendar month bucket of the order date in YYYY-MM form,
// or the empty string when the date is unknown.
func (t Transaction) Month() string {
	if !t.HasOrderDate() {
		return ""
	}
	return t.OrderDate.Format("2006-01")
}
