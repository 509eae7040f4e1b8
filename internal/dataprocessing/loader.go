package dataprocessing

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"salespulse/pkg/contracts/domain"
)

// FactoryResolver maps a product name to its producing factory. The config
// package's reference data satisfies this.
type FactoryResolver interface {
	FactoryFor(product string) string
}

// Loader reads a raw sales source, drops invalid and duplicate rows, coerces
// types, derives the per-record ratio metrics and attaches factory names.
// The load is a pure transform of the source; callers cache the result and
// reuse it across filter changes.
type Loader struct {
	logger            *slog.Logger
	resolver          FactoryResolver
	mismatchTolerance float64
}

// NewLoader creates a loader. mismatchTolerance is the fraction of sales
// beyond which a reported profit disagreeing with sales-cost is flagged.
func NewLoader(resolver FactoryResolver, mismatchTolerance float64, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	if mismatchTolerance <= 0 {
		mismatchTolerance = 0.01
	}
	return &Loader{
		logger:            logger,
		resolver:          resolver,
		mismatchTolerance: mismatchTolerance,
	}
}

// Load reads the source at path: a CSV file, an XLSX workbook, or a
// directory of CSV files. An unreadable source is fatal; individual bad rows
// are dropped and counted.
func (l *Loader) Load(ctx context.Context, path string) (*Dataset, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat source: %w", err)
	}

	if info.IsDir() {
		return l.loadDirectory(ctx, path)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return l.loadExcel(ctx, path)
	default:
		return l.loadCSV(ctx, path)
	}
}

// loadCSV reads one CSV file into a dataset.
func (l *Loader) loadCSV(ctx context.Context, path string) (*Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read CSV records: %w", err)
	}

	return l.buildDataset(ctx, rows, path)
}

// loadDirectory loads every CSV in the directory concurrently and merges the
// results. Duplicate order+product identities are collapsed across files.
func (l *Loader) loadDirectory(ctx context.Context, dir string) (*Dataset, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read source directory: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(strings.ToLower(e.Name()), ".csv") {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no CSV files found in directory: %s", dir)
	}
	sort.Strings(paths)

	var mu sync.Mutex
	datasets := make(map[string]*Dataset, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, p := range paths {
		g.Go(func() error {
			ds, err := l.loadCSV(gctx, p)
			if err != nil {
				// A single bad file does not sink a directory load.
				l.logger.WarnContext(gctx, "skipping unreadable CSV file",
					slog.String("file", p),
					slog.String("error", err.Error()))
				return nil
			}
			mu.Lock()
			datasets[p] = ds
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if len(datasets) == 0 {
		return nil, fmt.Errorf("no loadable CSV files in directory: %s", dir)
	}

	merged := &Dataset{SourcePath: dir, LoadedAt: time.Now()}
	seen := make(map[string]bool)
	for _, p := range paths {
		ds, ok := datasets[p]
		if !ok {
			continue
		}
		merged.Diagnostics.merge(ds.Diagnostics)
		for _, tx := range ds.Records {
			if seen[tx.Key()] {
				merged.Diagnostics.DroppedDuplicates++
				merged.Diagnostics.LoadedRows--
				continue
			}
			seen[tx.Key()] = true
			merged.Records = append(merged.Records, tx)
		}
	}

	if len(merged.Records) == 0 {
		return nil, fmt.Errorf("no valid records in directory: %s", dir)
	}
	return merged, nil
}

// buildDataset runs the cleaning pass over raw rows from any tabular source.
func (l *Loader) buildDataset(ctx context.Context, rows [][]string, source string) (*Dataset, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("source %s is empty", source)
	}

	cm, headerIdx, err := findHeader(rows)
	if err != nil {
		return nil, fmt.Errorf("source %s: %w", source, err)
	}

	ds := &Dataset{SourcePath: source, LoadedAt: time.Now()}
	seen := make(map[string]bool)

	for i := headerIdx + 1; i < len(rows); i++ {
		row := rows[i]
		if isBlank(row) {
			continue
		}
		ds.Diagnostics.TotalRows++
		line := i + 1

		tx, reason := l.parseRow(cm, row)
		switch reason {
		case dropMissing:
			ds.Diagnostics.DroppedMissing++
			continue
		case dropInvalid:
			ds.Diagnostics.DroppedInvalid++
			continue
		}

		if seen[tx.Key()] {
			ds.Diagnostics.DroppedDuplicates++
			continue
		}
		seen[tx.Key()] = true

		if !tx.HasOrderDate() {
			ds.Diagnostics.UnknownDates++
		}
		if tx.ProfitMismatch {
			ds.Diagnostics.ProfitMismatches++
			ds.Diagnostics.Anomalies = append(ds.Diagnostics.Anomalies, RowAnomaly{
				Line:      line,
				OrderID:   tx.OrderID,
				ProductID: tx.ProductID,
				Reason:    "reported gross profit disagrees with sales minus cost",
			})
		}

		ds.Records = append(ds.Records, tx)
		ds.Diagnostics.LoadedRows++
	}

	if len(ds.Records) == 0 {
		return nil, fmt.Errorf("source %s contains no valid records", source)
	}

	l.logger.InfoContext(ctx, "source loaded",
		slog.String("source", source),
		slog.Int("rows", ds.Diagnostics.TotalRows),
		slog.Int("loaded", ds.Diagnostics.LoadedRows),
		slog.Int("dropped_invalid", ds.Diagnostics.DroppedInvalid),
		slog.Int("dropped_missing", ds.Diagnostics.DroppedMissing),
		slog.Int("dropped_duplicates", ds.Diagnostics.DroppedDuplicates),
		slog.Int("profit_mismatches", ds.Diagnostics.ProfitMismatches),
	)

	return ds, nil
}

type dropReason int

const (
	dropNone dropReason = iota
	dropMissing
	dropInvalid
)

// parseRow coerces one raw row into a transaction, classifying unusable rows
// by drop reason.
func (l *Loader) parseRow(cm columnMap, row []string) (domain.Transaction, dropReason) {
	sales, err := parseAmount(cm.get(row, colSales))
	if err != nil {
		return domain.Transaction{}, dropMissing
	}
	profit, err := parseAmount(cm.get(row, colProfit))
	if err != nil {
		return domain.Transaction{}, dropMissing
	}
	cost, err := parseAmount(cm.get(row, colCost))
	if err != nil {
		return domain.Transaction{}, dropMissing
	}
	unitsF, err := parseAmount(cm.get(row, colUnits))
	if err != nil {
		return domain.Transaction{}, dropMissing
	}
	// Units is a count. A fractional cell is bad data, not something to
	// silently truncate.
	if unitsF != math.Trunc(unitsF) {
		return domain.Transaction{}, dropInvalid
	}

	tx := domain.Transaction{
		OrderID:     cm.get(row, colOrderID),
		ProductID:   cm.get(row, colProductID),
		Division:    cm.get(row, colDivision),
		ProductName: cm.get(row, colProduct),
		OrderDate:   parseDate(cm.get(row, colOrderDate)),
		ShipDate:    parseDate(cm.get(row, colShipDate)),
		Sales:       sales,
		Units:       int64(unitsF),
		GrossProfit: profit,
		Cost:        cost,
	}

	if !tx.IsValid() {
		return domain.Transaction{}, dropInvalid
	}

	tx.Factory = l.resolver.FactoryFor(tx.ProductName)
	tx.DeriveMetrics()
	tx.CheckProfitMismatch(l.mismatchTolerance)

	return tx, dropNone
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
