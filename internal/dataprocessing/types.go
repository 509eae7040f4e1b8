package dataprocessing

import (
	"time"

	"salespulse/pkg/contracts/domain"
)

// Dataset is the cleaned, derived, deduplicated record table produced by one
// load. It is immutable after load and safe to share across concurrent
// analysis requests.
type Dataset struct {
	Records     []domain.Transaction `json:"records"`
	Diagnostics LoadDiagnostics      `json:"diagnostics"`
	SourcePath  string               `json:"source_path"`
	LoadedAt    time.Time            `json:"loaded_at"`
}

// LoadDiagnostics counts what the cleaner did to the raw source. Dropped rows
// are not errors; the counts are the diagnostic surface for data quality.
type LoadDiagnostics struct {
	TotalRows         int `json:"total_rows"`
	LoadedRows        int `json:"loaded_rows"`
	DroppedInvalid    int `json:"dropped_invalid"`    // sales <= 0 or units <= 0
	DroppedMissing    int `json:"dropped_missing"`    // unparseable sales/units/profit/cost
	DroppedDuplicates int `json:"dropped_duplicates"` // repeated order+product identity
	UnknownDates      int `json:"unknown_dates"`      // kept, order date unparseable
	ProfitMismatches  int `json:"profit_mismatches"`  // kept, flagged

	// Anomalies lists the rows retained with a data-quality warning.
	Anomalies []RowAnomaly `json:"anomalies,omitempty"`
}

// RowAnomaly annotates a retained row whose figures look suspicious.
type RowAnomaly struct {
	Line      int    `json:"line"`
	OrderID   string `json:"order_id"`
	ProductID string `json:"product_id"`
	Reason    string `json:"reason"`
}

// merge folds another diagnostics block into this one (multi-file loads).
func (d *LoadDiagnostics) merge(other LoadDiagnostics) {
	d.TotalRows += other.TotalRows
	d.LoadedRows += other.LoadedRows
	d.DroppedInvalid += other.DroppedInvalid
	d.DroppedMissing += other.DroppedMissing
	d.DroppedDuplicates += other.DroppedDuplicates
	d.UnknownDates += other.UnknownDates
	d.ProfitMismatches += other.ProfitMismatches
	d.Anomalies = append(d.Anomalies, other.Anomalies...)
}
