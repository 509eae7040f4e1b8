// Package dataprocessing loads and cleans the raw sales ledger. It accepts
// CSV files, XLSX workbooks and directories of CSVs, maps drifting header
// names onto the expected schema, drops invalid and duplicate rows with
// per-reason counts, parses dates tolerantly, derives per-record ratio
// metrics and attaches producing factories from the injected reference data.
//
// Loading is a pure transform: the raw source is read once and the resulting
// Dataset is immutable. Re-parsing on every filter change is wasteful, so the
// service layer memoizes the Dataset keyed on source identity.
package dataprocessing
