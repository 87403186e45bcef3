// =============================================================================
// Invoicer - CSV Parser Module
// =============================================================================
//
// This module reads invoice data from CSV files into a types.Table.
//
// FEATURES:
//   - Configurable delimiter (comma, semicolon, pipe, tab)
//   - Multi-line header support (header rows merged with a space)
//   - Configurable data start row
//   - Leading UTF-8 byte order mark removed (spreadsheet exports add one)
//   - Blank rows skipped
//
// Every cell is kept as a string. Numbers are interpreted later, by the
// filler, so a value like "N/A" in a Qty column reaches the invoice as is.
//
// =============================================================================

package csvparser

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ginjaninja78/invoicer/internal/config"
	"github.com/ginjaninja78/invoicer/internal/types"
)

const bom = "\ufeff"

// =============================================================================
// MAIN PARSING FUNCTION
// =============================================================================

// Parse reads a CSV file and returns its table.
//
// PARAMETERS:
//   - filePath: The path to the CSV file.
//   - settings: The CSV parsing settings.
//
// RETURNS:
//   - The parsed table.
//   - An error if the file cannot be read or has no header.
func Parse(filePath string, settings config.CSVSettings) (*types.Table, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	table, err := ParseReader(f, settings)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filePath, err)
	}
	table.SourceFile = filePath
	return table, nil
}

// ParseReader reads CSV data from r.
func ParseReader(r io.Reader, settings config.CSVSettings) (*types.Table, error) {
	if settings.HeaderRows < 1 {
		return nil, fmt.Errorf("header_rows must be at least 1")
	}

	reader := newReader(r, settings.Delimiter)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("CSV file is empty")
	}
	if len(records) < settings.HeaderRows {
		return nil, fmt.Errorf("file has %d row(s), fewer than header_rows (%d)", len(records), settings.HeaderRows)
	}
	if first := records[0]; len(first) > 0 {
		first[0] = strings.TrimPrefix(first[0], bom)
	}

	header := mergeHeaderRows(records[:settings.HeaderRows])

	start := max(settings.DataStartRow-1, settings.HeaderRows)
	if start > len(records) {
		start = len(records)
	}
	return types.NewTable(header, records[start:]), nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// newReader returns a csv.Reader for the configured delimiter. Records may
// have varying lengths; quotes are parsed leniently since spreadsheet
// exports are rarely strict.
func newReader(r io.Reader, delimiter string) *csv.Reader {
	reader := csv.NewReader(bufio.NewReader(r))
	reader.Comma = delimiterRune(delimiter)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	return reader
}

func delimiterRune(delimiter string) rune {
	switch strings.ToLower(delimiter) {
	case "", ",", "comma":
		return ','
	case ";", "semicolon":
		return ';'
	case "|", "pipe":
		return '|'
	case "\t", "\\t", "tab":
		return '\t'
	default:
		return []rune(delimiter)[0]
	}
}

// mergeHeaderRows joins the non-blank cells of each column across the
// header rows with a space.
//
// EXAMPLE:
//   Row 1: "No.",     "Invoice", ""
//   Row 2: "Invoice", "Date",    "Client"
//   Result: "No. Invoice", "Invoice Date", "Client"
func mergeHeaderRows(rows [][]string) []string {
	if len(rows) == 1 {
		return rows[0]
	}

	var parts [][]string
	for _, row := range rows {
		for col, cell := range row {
			if col >= len(parts) {
				parts = append(parts, make([][]string, col+1-len(parts))...)
			}
			if cell = strings.TrimSpace(cell); cell != "" {
				parts[col] = append(parts[col], cell)
			}
		}
	}

	header := make([]string, len(parts))
	for col, p := range parts {
		header[col] = strings.Join(p, " ")
	}
	return header
}
