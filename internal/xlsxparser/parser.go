// =============================================================================
// Invoicer - XLSX Parser Module
// =============================================================================
//
// This module reads invoice data from an Excel workbook into a types.Table.
// One worksheet is read: the header row names the columns and every
// non-blank row below it becomes one invoice row.
//
// SHEET LAYOUT (Example):
//
//   | Client          | E-mail           | Service 1        | Qty 1 | Price 1 |
//   |-----------------|------------------|------------------|-------|---------|
//   | PT Test Company | test@example.com | Layanan contoh 1 | 2     | 500000  |
//
// Cells are read as raw values, so a price displayed as "Rp 500.000" by
// the cell's number format still reaches the filler as "500000". Dates
// are expected as text; a date cell comes through as its serial number.
//
// =============================================================================

package xlsxparser

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/invoicer/internal/config"
	"github.com/ginjaninja78/invoicer/internal/types"
)

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads an XLSX workbook and returns the configured sheet as a table.
//
// PARAMETERS:
//   - filePath: The path to the XLSX file.
//   - settings: Which sheet to read and where its header row is.
//
// RETURNS:
//   - The parsed table.
//   - An error if the file cannot be opened or the sheet does not exist.
func Parse(filePath string, settings config.XLSXSettings) (*types.Table, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	table, err := ParseWorkbook(f, settings)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filePath, err)
	}
	table.SourceFile = filePath
	return table, nil
}

// ParseWorkbook reads a table from an already opened workbook.
func ParseWorkbook(f *excelize.File, settings config.XLSXSettings) (*types.Table, error) {
	sheet, err := resolveSheet(f, settings.Sheet)
	if err != nil {
		return nil, err
	}

	// GetRows drops trailing empty cells of each row; NewTable pads them.
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	headerIdx := max(settings.HeaderRow, 1) - 1
	if headerIdx >= len(rows) {
		return nil, fmt.Errorf("sheet %q has no header row %d", sheet, headerIdx+1)
	}

	return types.NewTable(rows[headerIdx], rows[headerIdx+1:]), nil
}

// resolveSheet returns the sheet to read: the named one, or the first.
func resolveSheet(f *excelize.File, name string) (string, error) {
	if name == "" {
		first := f.GetSheetName(0)
		if first == "" {
			return "", fmt.Errorf("workbook has no sheets")
		}
		return first, nil
	}

	idx, err := f.GetSheetIndex(name)
	if err != nil {
		return "", fmt.Errorf("invalid sheet name %q: %w", name, err)
	}
	if idx < 0 {
		return "", fmt.Errorf("sheet %q not found (available: %s)", name, strings.Join(f.GetSheetList(), ", "))
	}
	return name, nil
}
