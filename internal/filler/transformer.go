// =============================================================================
// Invoicer - Column Transformations
// =============================================================================
//
// Transformations clean up data source values before placeholders are
// resolved. They run on a copy of the row, so the caller's row is never
// modified.
//
// TRANSFORMATION TYPES:
//   - String manipulations (prepend, append, trim, case conversion)
//   - Substring and regular expression replacements
//   - Padding and digit extraction (invoice numbers, phone numbers)
//   - Date format conversions
//   - Lookup table replacements
//
// Rules are compiled once when the Filler is built. An unknown action type or
// an invalid pattern is a configuration error; applying a compiled rule to a
// value never fails.
//
// =============================================================================

package filler

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ginjaninja78/invoicer/internal/config"
	"github.com/ginjaninja78/invoicer/internal/types"
)

// =============================================================================
// TRANSFORMER
// =============================================================================

// action is one compiled transformation step.
type action func(value string, row types.Row) string

// step is an action plus whether it can supply a value for an empty or
// absent column.
type step struct {
	apply      action
	fillsEmpty bool
}

// Transformer applies per-column transformation rules to rows.
type Transformer struct {
	// rules maps a column header to its compiled steps, in order.
	rules map[string][]step

	// order keeps the configured rule order for deterministic application.
	order []string
}

// NewTransformer compiles the given rules.
//
// RETURNS:
//   - The transformer. With no rules it leaves every row unchanged.
//   - An error naming the first rule that cannot be compiled.
func NewTransformer(rules []config.TransformationRule) (*Transformer, error) {
	t := &Transformer{rules: make(map[string][]step, len(rules))}

	for i, rule := range rules {
		if _, seen := t.rules[rule.Field]; !seen {
			t.order = append(t.order, rule.Field)
		}
		for j, a := range rule.Actions {
			fn, err := compileAction(a)
			if err != nil {
				return nil, fmt.Errorf("transformation_rules[%d].actions[%d] (%s): %w", i, j, rule.Field, err)
			}
			t.rules[rule.Field] = append(t.rules[rule.Field], step{
				apply:      fn,
				fillsEmpty: a.Type == "if_empty_use_default" || a.Type == "if_empty_use_field",
			})
		}
	}

	return t, nil
}

// Apply returns a transformed copy of row. Columns without a rule are left
// alone. For a column the row does not carry, only the if_empty actions run
// until one of them supplies a value; the remaining steps then apply to it.
func (t *Transformer) Apply(row types.Row) types.Row {
	out := row.Clone()
	if t == nil || len(t.rules) == 0 {
		return out
	}

	for _, field := range t.order {
		raw, present := out[field]
		value := ""
		if present {
			value = types.Stringify(raw)
		}
		for _, s := range t.rules[field] {
			if !present && !s.fillsEmpty {
				continue
			}
			value = s.apply(value, out)
			present = present || value != ""
		}
		if present {
			out[field] = value
		}
	}
	return out
}

// =============================================================================
// ACTION COMPILATION
// =============================================================================

// compileAction turns one configured action into a step.
//
// SUPPORTED TRANSFORMATIONS:
//   See the switch statement below for all supported transformation types.
func compileAction(a config.TransformationAction) (action, error) {
	switch a.Type {

	// =========================================================================
	// STRING MANIPULATIONS
	// =========================================================================

	case "prepend_string":
		// EXAMPLE: "2025-001" with value "INV-" -> "INV-2025-001"
		return func(v string, _ types.Row) string { return a.Value + v }, nil

	case "append_string":
		return func(v string, _ types.Row) string { return v + a.Value }, nil

	case "trim":
		return func(v string, _ types.Row) string { return strings.TrimSpace(v) }, nil

	case "trim_left":
		cutset := a.Value
		if cutset == "" {
			cutset = " \t\n\r"
		}
		return func(v string, _ types.Row) string { return strings.TrimLeft(v, cutset) }, nil

	case "trim_right":
		cutset := a.Value
		if cutset == "" {
			cutset = " \t\n\r"
		}
		return func(v string, _ types.Row) string { return strings.TrimRight(v, cutset) }, nil

	case "uppercase":
		return func(v string, _ types.Row) string { return strings.ToUpper(v) }, nil

	case "lowercase":
		return func(v string, _ types.Row) string { return strings.ToLower(v) }, nil

	case "replace":
		// EXAMPLE: "Jl. Test" with find "Jl." and value "Jalan" -> "Jalan Test"
		if a.Find == "" {
			return identity, nil
		}
		return func(v string, _ types.Row) string { return strings.ReplaceAll(v, a.Find, a.Value) }, nil

	case "regex_replace":
		if a.Find == "" {
			return identity, nil
		}
		re, err := regexp.Compile(a.Find)
		if err != nil {
			return nil, fmt.Errorf("invalid regex pattern: %w", err)
		}
		return func(v string, _ types.Row) string { return re.ReplaceAllString(v, a.Value) }, nil

	case "normalize_whitespace":
		return func(v string, _ types.Row) string { return strings.Join(strings.Fields(v), " ") }, nil

	// =========================================================================
	// NUMERIC FORMATTING
	// =========================================================================

	case "pad_zeros_to_length":
		// EXAMPLE: "42" with value "4" -> "0042"
		n, err := strconv.Atoi(a.Value)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("pad length must be a positive integer, got %q", a.Value)
		}
		return func(v string, _ types.Row) string { return PadLeft(v, n, '0') }, nil

	case "extract_digits":
		// EXAMPLE: "+62 812-3456" -> "628123456"
		return func(v string, _ types.Row) string {
			return strings.Map(func(r rune) rune {
				if r >= '0' && r <= '9' {
					return r
				}
				return -1
			}, v)
		}, nil

	// =========================================================================
	// DATE/TIME CONVERSIONS
	// =========================================================================

	case "format_date":
		// VALUE FORMAT: "input_layout|output_layout" using Go layouts.
		// EXAMPLE: "2025-01-31" with "2006-01-02|02/01/2006" -> "31/01/2025"
		in, out, ok := strings.Cut(a.Value, "|")
		if !ok {
			return nil, fmt.Errorf("format_date value must be \"input|output\", got %q", a.Value)
		}
		in, out = strings.TrimSpace(in), strings.TrimSpace(out)
		return func(v string, _ types.Row) string {
			t, err := time.Parse(in, strings.TrimSpace(v))
			if err != nil {
				// Not in the expected layout: keep the value.
				return v
			}
			return t.Format(out)
		}, nil

	// =========================================================================
	// LOOKUP TABLE REPLACEMENTS
	// =========================================================================

	case "lookup":
		return func(v string, _ types.Row) string {
			if replacement, ok := a.LookupTable[v]; ok {
				return replacement
			}
			return v
		}, nil

	case "lookup_with_default":
		return func(v string, _ types.Row) string {
			if replacement, ok := a.LookupTable[v]; ok {
				return replacement
			}
			return a.Value
		}, nil

	// =========================================================================
	// CONDITIONAL
	// =========================================================================

	case "if_empty_use_default":
		return func(v string, _ types.Row) string {
			if strings.TrimSpace(v) == "" {
				return a.Value
			}
			return v
		}, nil

	case "if_empty_use_field":
		// VALUE: the column to copy from.
		return func(v string, row types.Row) string {
			if strings.TrimSpace(v) == "" {
				return row.Text(a.Value)
			}
			return v
		}, nil

	default:
		return nil, fmt.Errorf("unknown transformation type: %s", a.Type)
	}
}

func identity(v string, _ types.Row) string { return v }

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// PadLeft pads s with padChar on the left to reach length runes.
func PadLeft(s string, length int, padChar rune) string {
	n := len([]rune(s))
	if n >= length {
		return s
	}
	return strings.Repeat(string(padChar), length-n) + s
}
