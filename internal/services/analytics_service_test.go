package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salespulse/internal/config"
	"salespulse/internal/profitability"
)

const testCSV = `Order ID,Product ID,Division,Product Name,Order Date,Ship Date,Sales,Units,Gross Profit,Cost
O1,P1,Sugar,Nerds,2024-01-10,,50,10,5,45
O2,P2,Sugar,Fun Dip,2024-02-10,,200,20,80,120
`

func newTestService(t *testing.T, csv string) (*AnalyticsService, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sales.csv")
	require.NoError(t, os.WriteFile(path, []byte(csv), 0644))

	svc := NewAnalyticsService(
		config.DataConfig{SourcePath: path},
		config.AnalyticsConfig{ParetoThreshold: 0.8, ProfitMismatchTolerance: 0.01, TopN: 10},
		config.DefaultReferenceData(),
		nil,
	)
	return svc, path
}

func TestDatasetIsMemoized(t *testing.T) {
	svc, _ := newTestService(t, testCSV)
	ctx := context.Background()

	ds1, err := svc.Dataset(ctx)
	require.NoError(t, err)
	ds2, err := svc.Dataset(ctx)
	require.NoError(t, err)

	assert.Same(t, ds1, ds2, "unchanged source must return the cached dataset")
}

func TestDatasetReloadsWhenSourceChanges(t *testing.T) {
	svc, path := newTestService(t, testCSV)
	ctx := context.Background()

	ds1, err := svc.Dataset(ctx)
	require.NoError(t, err)
	require.Len(t, ds1.Records, 2)

	extended := testCSV + "O3,P3,Chocolate,Wonka Bar - Milk Chocolate,2024-03-10,,300,30,60,240\n"
	require.NoError(t, os.WriteFile(path, []byte(extended), 0644))
	// Ensure the mtime moves even on coarse-grained filesystems.
	future := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(path, future, future))

	ds2, err := svc.Dataset(ctx)
	require.NoError(t, err)
	assert.Len(t, ds2.Records, 3)
	assert.NotSame(t, ds1, ds2)
}

func TestAnalyze(t *testing.T) {
	svc, _ := newTestService(t, testCSV)

	result, err := svc.Analyze(context.Background(), profitability.Filter{})
	require.NoError(t, err)

	assert.Len(t, result.Products, 2)
	assert.InDelta(t, 250, result.KPIs.TotalRevenue, 1e-9)
}

func TestAnalyzeNoData(t *testing.T) {
	svc, _ := newTestService(t, testCSV)

	_, err := svc.Analyze(context.Background(), profitability.Filter{Divisions: []string{"Toys"}})
	assert.ErrorIs(t, err, profitability.ErrNoData)
}

func TestDiagnostics(t *testing.T) {
	csv := testCSV + "O4,P4,Sugar,Nerds,2024-01-11,,0,10,0,0\n"
	svc, _ := newTestService(t, csv)

	diag, err := svc.Diagnostics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, diag.LoadedRows)
	assert.Equal(t, 1, diag.DroppedInvalid)
}

func TestStats(t *testing.T) {
	svc, _ := newTestService(t, testCSV)

	stats := svc.Stats()
	assert.Equal(t, false, stats["cached"])

	_, err := svc.Dataset(context.Background())
	require.NoError(t, err)

	stats = svc.Stats()
	assert.Equal(t, true, stats["cached"])
	assert.Equal(t, 2, stats["records"])
}
