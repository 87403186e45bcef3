// =============================================================================
// Invoicer - Shared Types
// =============================================================================
//
// This package contains shared types used across multiple modules to avoid
// import cycles. Types defined here are used by:
//   - csvparser / xlsxparser (producers of rows)
//   - filler (consumer of rows)
//   - batch (row selection and outcomes)
//
// =============================================================================

package types

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// ROW TYPES
// =============================================================================

// Row is one record of the input table, keyed by column header.
//
// Values are whatever the data source produced: strings from CSV, strings or
// numbers from programmatic callers, nil for absent cells. A Row is never
// mutated by the filler.
type Row map[string]any

// Text returns the trimmed string form of the value stored under key.
//
// Missing keys, nil values and NaN floats resolve to the empty string. This
// is the only way the rest of the program reads a Row, so a missing column
// can never surface as an error.
func (r Row) Text(key string) string {
	v, ok := r[key]
	if !ok {
		return ""
	}
	return strings.TrimSpace(Stringify(v))
}

// Clone returns a shallow copy of the row.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Stringify renders a raw cell value as text. Missing markers (nil, NaN)
// become "".
func Stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		if math.IsNaN(val) {
			return ""
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		if math.IsNaN(float64(val)) {
			return ""
		}
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case decimal.Decimal:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

// =============================================================================
// TABLE TYPE
// =============================================================================

// Table is a loaded data source: ordered headers plus rows.
type Table struct {
	// Headers contains the column headers in source order.
	Headers []string

	// Rows contains the data rows. The index of a row in this slice is the
	// row index used for selection and reporting.
	Rows []Row

	// SourceFile is the path the table was loaded from.
	SourceFile string
}

// HasColumn reports whether the table carries the given header.
func (t *Table) HasColumn(name string) bool {
	for _, h := range t.Headers {
		if h == name {
			return true
		}
	}
	return false
}

// NewTable builds a table from a header record and the data records below
// it. Header names are trimmed and blank ones become Column_<n>. Blank
// records are skipped; short records read as "" in their missing cells.
func NewTable(header []string, records [][]string) *Table {
	t := &Table{
		Headers: make([]string, len(header)),
		Rows:    make([]Row, 0, len(records)),
	}
	for i, name := range header {
		if name = strings.TrimSpace(name); name == "" {
			name = fmt.Sprintf("Column_%d", i+1)
		}
		t.Headers[i] = name
	}

	for _, rec := range records {
		if isBlank(rec) {
			continue
		}
		row := make(Row, len(t.Headers))
		for col, name := range t.Headers {
			row[name] = ""
			if col < len(rec) {
				row[name] = strings.TrimSpace(rec[col])
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func isBlank(rec []string) bool {
	for _, cell := range rec {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
