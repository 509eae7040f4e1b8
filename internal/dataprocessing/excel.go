package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"
)

// loadExcel reads the sales table out of an XLSX workbook. The sheet holding
// the expected schema is found by header detection, so exported workbooks
// with renamed sheets still load.
func (l *Loader) loadExcel(ctx context.Context, path string) (*Dataset, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil || len(rows) < 2 {
			continue
		}
		if _, _, err := findHeader(rows); err != nil {
			continue
		}

		l.logger.InfoContext(ctx, "found sales data sheet",
			slog.String("file", path),
			slog.String("sheet", sheet))

		return l.buildDataset(ctx, rows, path)
	}

	return nil, fmt.Errorf("no sheet with the expected sales schema in workbook %s", path)
}
