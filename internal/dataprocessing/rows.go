package dataprocessing

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// columnMap locates the expected schema columns inside an arbitrary header
// row. Matching is case-insensitive and tolerant of minor renames, the way
// exported spreadsheets tend to drift.
type columnMap map[string]int

const (
	colOrderID   = "order_id"
	colProductID = "product_id"
	colDivision  = "division"
	colProduct   = "product_name"
	colOrderDate = "order_date"
	colShipDate  = "ship_date"
	colSales     = "sales"
	colUnits     = "units"
	colProfit    = "gross_profit"
	colCost      = "cost"
)

// requiredColumns must all be present for a source to be usable at all.
var requiredColumns = []string{colOrderID, colProductID, colDivision, colProduct, colOrderDate, colSales, colUnits, colProfit, colCost}

// mapHeader builds a column map from a header row, or nil when the row does
// not look like a header.
func mapHeader(row []string) columnMap {
	cm := make(columnMap)
	for i, cell := range row {
		h := strings.ToLower(strings.TrimSpace(cell))
		switch {
		case strings.Contains(h, "order") && strings.Contains(h, "id"):
			cm[colOrderID] = i
		case strings.Contains(h, "product") && strings.Contains(h, "id"):
			cm[colProductID] = i
		case strings.Contains(h, "division"):
			cm[colDivision] = i
		case strings.Contains(h, "product"):
			cm[colProduct] = i
		case strings.Contains(h, "order") && strings.Contains(h, "date"):
			cm[colOrderDate] = i
		case strings.Contains(h, "ship") && strings.Contains(h, "date"):
			cm[colShipDate] = i
		case strings.Contains(h, "sales") || strings.Contains(h, "revenue"):
			cm[colSales] = i
		case strings.Contains(h, "units") || strings.Contains(h, "quantity"):
			cm[colUnits] = i
		case strings.Contains(h, "profit"):
			cm[colProfit] = i
		case strings.Contains(h, "cost"):
			cm[colCost] = i
		}
	}

	for _, col := range requiredColumns {
		if _, ok := cm[col]; !ok {
			return nil
		}
	}
	return cm
}

// findHeader scans the leading rows for one that maps to the full schema.
// Spreadsheet exports sometimes carry title rows above the real header.
func findHeader(rows [][]string) (columnMap, int, error) {
	limit := len(rows)
	if limit > 10 {
		limit = 10
	}
	for i := 0; i < limit; i++ {
		if cm := mapHeader(rows[i]); cm != nil {
			return cm, i, nil
		}
	}
	return nil, 0, fmt.Errorf("no header row with the expected sales schema found in first %d rows", limit)
}

func (cm columnMap) get(row []string, col string) string {
	idx, ok := cm[col]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseAmount parses a numeric cell, tolerating thousands separators and a
// leading currency sign.
func parseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, fmt.Errorf("empty numeric cell")
	}
	return strconv.ParseFloat(s, 64)
}

var dateFormats = []string{
	"2006-01-02",
	"01/02/2006",
	"2006/01/02",
	"01-02-2006",
	"2006-01-02 15:04:05",
	"Jan 2, 2006",
}

// parseDate tries the known formats and returns the zero time when none
// match. An unknown date is a sentinel, not an error.
func parseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, format := range dateFormats {
		if d, err := time.Parse(format, s); err == nil {
			return d
		}
	}
	return time.Time{}
}
