package exporter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"salespulse/internal/profitability"
)

// ReportWriter writes analysis reports under a base output directory.
type ReportWriter struct {
	outputDir string
	logger    *slog.Logger
}

// NewReportWriter creates a report writer rooted at outputDir.
func NewReportWriter(outputDir string, logger *slog.Logger) *ReportWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportWriter{outputDir: outputDir, logger: logger}
}

var entityHeaders = []string{
	"division", "product", "factory",
	"total_sales", "total_profit", "total_cost", "total_units", "records",
	"margin", "profit_per_unit", "sales_share", "profit_share", "label",
}

var volatilityHeaders = []string{
	"division", "product", "factory",
	"months", "mean_monthly_margin", "volatility",
}

// WriteEntitiesCSV streams the aggregated entity table as CSV. Used both for
// the HTTP export endpoint and for file reports.
func WriteEntitiesCSV(w io.Writer, entities []profitability.Entity) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(entityHeaders); err != nil {
		return fmt.Errorf("write headers: %w", err)
	}
	for i, e := range entities {
		record := []string{
			e.Division,
			e.Product,
			e.Factory,
			formatAmount(e.TotalSales),
			formatAmount(e.TotalProfit),
			formatAmount(e.TotalCost),
			strconv.FormatInt(e.TotalUnits, 10),
			strconv.Itoa(e.Records),
			formatRatio(e.Margin),
			formatAmount(e.ProfitPerUnit),
			formatRatio(e.SalesShare),
			formatRatio(e.ProfitShare),
			string(e.Label),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write record %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteVolatilityCSV streams the volatility table as CSV. Entities without
// enough history get an empty volatility cell, not a zero.
func WriteVolatilityCSV(w io.Writer, rows []profitability.VolatilityRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(volatilityHeaders); err != nil {
		return fmt.Errorf("write headers: %w", err)
	}
	for i, row := range rows {
		vol := ""
		if row.Volatility != nil {
			vol = formatRatio(*row.Volatility)
		}
		record := []string{
			row.Division,
			row.Product,
			row.Factory,
			strconv.Itoa(row.Months),
			formatRatio(row.MeanMonthlyMargin),
			vol,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write record %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveEntitiesCSV writes the entity table to a file under the output
// directory, with a UTF-8 BOM so spreadsheet tools open it correctly.
func (w *ReportWriter) SaveEntitiesCSV(name string, entities []profitability.Entity) (string, error) {
	return w.save(name, func(f io.Writer) error {
		return WriteEntitiesCSV(f, entities)
	})
}

// SaveVolatilityCSV writes the volatility table under the output directory.
func (w *ReportWriter) SaveVolatilityCSV(name string, rows []profitability.VolatilityRow) (string, error) {
	return w.save(name, func(f io.Writer) error {
		return WriteVolatilityCSV(f, rows)
	})
}

// SaveResultJSON writes the full pipeline result as indented JSON.
func (w *ReportWriter) SaveResultJSON(name string, result *profitability.Result) (string, error) {
	return w.save(name, func(f io.Writer) error {
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	})
}

func (w *ReportWriter) save(name string, write func(io.Writer) error) (string, error) {
	fullPath := filepath.Join(w.outputDir, name)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	f, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("create report file: %w", err)
	}
	defer f.Close()

	// BOM helps Excel recognize UTF-8.
	if filepath.Ext(name) == ".csv" {
		if _, err := f.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return "", fmt.Errorf("write BOM: %w", err)
		}
	}

	if err := write(f); err != nil {
		return "", err
	}

	w.logger.Info("report written", slog.String("path", fullPath))
	return fullPath, nil
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatRatio(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
