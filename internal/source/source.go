// =============================================================================
// Invoicer - Data Source Loader
// =============================================================================
//
// This module picks the parser for a data file by its extension and
// provides the built-in sample row used to calibrate a template.
//
// SUPPORTED SOURCES:
//   .csv, .txt  -> csvparser (csv_settings)
//   .xlsx, .xlsm -> xlsxparser (xlsx_settings)
//
// =============================================================================

package source

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ginjaninja78/invoicer/internal/config"
	"github.com/ginjaninja78/invoicer/internal/csvparser"
	"github.com/ginjaninja78/invoicer/internal/types"
	"github.com/ginjaninja78/invoicer/internal/xlsxparser"
)

// ErrUnsupportedSource is returned for a data file of unknown type.
var ErrUnsupportedSource = errors.New("unsupported data source")

// Load reads the data file at path.
func Load(path string, cfg *config.Config) (*types.Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		return csvparser.Parse(path, cfg.CSVSettings)
	case ".xlsx", ".xlsm":
		return xlsxparser.Parse(path, cfg.XLSXSettings)
	default:
		return nil, fmt.Errorf("%w: %s (expected .csv or .xlsx)", ErrUnsupportedSource, filepath.Base(path))
	}
}

// =============================================================================
// SAMPLE DATA
// =============================================================================

// sampleLines is the number of filled line items in the sample row.
const sampleLines = 3

// SampleTable returns a one-row table in the configured column layout:
// every header field filled, three priced services, the remaining lines
// blank. Filling a template with it shows where every placeholder lands.
func SampleTable(cfg *config.Config) *types.Table {
	mapping := cfg.Mapping()

	header := map[string]string{
		"Client":        "PT Test Company",
		"PIC":           "John Doe",
		"Contact":       "+62 812 3456 7890",
		"E-mail":        "test@example.com",
		"Address":       "Jalan Test 123, Bandung, Jawa Barat",
		"No. Invoice":   "INV-2025-001",
		"No. Quotation": "QUO-2025-001",
		"Invoice Date":  "01 Januari 2025",
		"Due Date":      "31 Januari 2025",
	}

	table := &types.Table{SourceFile: "sample"}
	row := types.Row{}

	for _, field := range mapping.HeaderFields() {
		column := mapping.Column(field)
		table.Headers = append(table.Headers, column)
		row[column] = header[field]
	}

	for i := 1; i <= mapping.LineItems(); i++ {
		service := mapping.Column(config.ServiceField(i))
		qty := mapping.Column(config.QtyField(i))
		price := mapping.Column(config.PriceField(i))
		table.Headers = append(table.Headers, service, qty, price)

		if i <= sampleLines {
			row[service] = "Layanan contoh " + strconv.Itoa(i)
			row[qty] = strconv.Itoa(i * 2)
			row[price] = strconv.Itoa(500000 * i)
		} else {
			row[service], row[qty], row[price] = "", "", ""
		}
	}

	table.Rows = []types.Row{row}
	return table
}
