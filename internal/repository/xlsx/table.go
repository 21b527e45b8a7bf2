// Package xlsx stores the inventory table in a local spreadsheet file.
package xlsx

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/mamadbah2/stockledger/internal/repository/tabular"
)

const defaultSheet = "Sheet1"

// Table implements tabular.Table on a single worksheet of an .xlsx file.
type Table struct {
	path   string
	sheet  string
	logger *zap.Logger
}

// NewTable returns a table stored at path in the named worksheet.
func NewTable(path, sheet string, logger *zap.Logger) *Table {
	if logger == nil {
		logger = zap.NewNop()
	}
	if sheet == "" {
		sheet = defaultSheet
	}
	return &Table{path: path, sheet: sheet, logger: logger}
}

// Path returns the workbook location.
func (t *Table) Path() string { return t.path }

// ReadRows returns every row of the worksheet. When the configured sheet is
// absent the first sheet of the workbook is read.
func (t *Table) ReadRows(ctx context.Context) ([][]string, error) {
	if _, err := os.Stat(t.path); errors.Is(err, fs.ErrNotExist) {
		return nil, tabular.ErrTableMissing
	} else if err != nil {
		return nil, fmt.Errorf("stat %s: %w", t.path, err)
	}

	f, err := excelize.OpenFile(t.path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", tabular.ErrStoreUnreadable, t.path, err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			t.logger.Debug("close workbook", zap.Error(err))
		}
	}()

	sheet := t.sheet
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx == -1 {
		list := f.GetSheetList()
		if len(list) == 0 {
			return nil, fmt.Errorf("%w: %s has no worksheet", tabular.ErrStoreUnreadable, t.path)
		}
		t.logger.Warn("configured sheet not found, reading first sheet", zap.String("sheet", t.sheet), zap.String("fallback", list[0]))
		sheet = list[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: read sheet %s: %v", tabular.ErrStoreUnreadable, sheet, err)
	}
	return rows, nil
}

// WriteRows replaces the workbook with a fresh one holding rows. The file is
// written next to the target and renamed into place.
func (t *Table) WriteRows(ctx context.Context, rows [][]string) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if t.sheet != defaultSheet {
		if err := f.SetSheetName(defaultSheet, t.sheet); err != nil {
			return fmt.Errorf("name sheet %s: %w", t.sheet, err)
		}
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("row %d: %w", i+1, err)
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(t.sheet, cell, &values); err != nil {
			return fmt.Errorf("set row %d: %w", i+1, err)
		}
	}

	dir := filepath.Dir(t.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".inventory-*.xlsx")
	if err != nil {
		return fmt.Errorf("create temp workbook: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if err := f.Write(tmp); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write workbook: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync workbook: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close workbook: %w", err)
	}
	if err := os.Rename(tmp.Name(), t.path); err != nil {
		return fmt.Errorf("replace %s: %w", t.path, err)
	}

	t.logger.Debug("workbook written", zap.String("path", t.path), zap.Int("rows", len(rows)))
	return nil
}
