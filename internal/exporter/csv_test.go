package exporter

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salespulse/internal/profitability"
)

func sampleEntities() []profitability.Entity {
	return []profitability.Entity{
		{
			Division: "Chocolate", Product: "Wonka Bar - Milk Chocolate", Factory: "Lot's O' Nuts",
			TotalSales: 1000, TotalProfit: 400, TotalCost: 600, TotalUnits: 100, Records: 4,
			Margin: 0.4, ProfitPerUnit: 4, SalesShare: 0.8, ProfitShare: 0.9,
			Label: profitability.LabelStrategicCore,
		},
		{
			Division: "Sugar", Product: "Nerds", Factory: "Sugar Shack",
			TotalSales: 250, TotalProfit: 45, TotalCost: 205, TotalUnits: 50, Records: 2,
			Margin: 0.18, ProfitPerUnit: 0.9, SalesShare: 0.2, ProfitShare: 0.1,
			Label: profitability.LabelRationalizationCandidate,
		},
	}
}

func TestWriteEntitiesCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteEntitiesCSV(&buf, sampleEntities()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, entityHeaders, rows[0])
	assert.Equal(t, "Wonka Bar - Milk Chocolate", rows[1][1])
	assert.Equal(t, "1000.00", rows[1][3])
	assert.Equal(t, "0.400000", rows[1][8])
	assert.Equal(t, "StrategicCore", rows[1][12])
	assert.Equal(t, "RationalizationCandidate", rows[2][12])
}

func TestWriteVolatilityCSV(t *testing.T) {
	vol := 0.05
	rows := []profitability.VolatilityRow{
		{Division: "Chocolate", Product: "Wonka Gum", Factory: "Secret Factory",
			Months: 3, MeanMonthlyMargin: 0.2, Volatility: &vol},
		{Division: "Sugar", Product: "Fun Dip", Factory: "Sugar Shack",
			Months: 1, MeanMonthlyMargin: 0.1, Volatility: nil},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteVolatilityCSV(&buf, rows))

	parsed, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, parsed, 3)

	assert.Equal(t, "0.050000", parsed[1][5])
	// Insufficient history renders as empty, never as zero.
	assert.Equal(t, "", parsed[2][5])
}

func TestReportWriterSaveEntitiesCSV(t *testing.T) {
	dir := t.TempDir()
	w := NewReportWriter(dir, nil)

	path, err := w.SaveEntitiesCSV("products.csv", sampleEntities())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "products.csv"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}), "expected UTF-8 BOM")
	assert.Contains(t, string(data), "Nerds")
}

func TestReportWriterSaveResultJSON(t *testing.T) {
	dir := t.TempDir()
	w := NewReportWriter(dir, nil)

	result := &profitability.Result{Products: sampleEntities()}
	path, err := w.SaveResultJSON(filepath.Join("reports", "result.json"), result)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `"total_sales": 1000`))
}
