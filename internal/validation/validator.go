// =============================================================================
// Invoicer - Validation Module
// =============================================================================
//
// This module checks a loaded table before invoices are produced. Nothing
// here stops a run: data problems degrade to blank or zero values in the
// invoice, so they are reported to the operator ahead of time instead.
//
// VALIDATION TYPES:
//   - Column coverage: every mapped column is present in the table
//   - Line items: numeric Qty and Price on lines that have a Service
//   - Recipients: a parseable e-mail address on every row that is sent
//
// SEVERITY:
//   - "error": the row will fail (only recipient problems when sending)
//   - "warning": the row will render, but with blank or zero values
//
// =============================================================================

package validation

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/ginjaninja78/invoicer/internal/config"
	"github.com/ginjaninja78/invoicer/internal/currency"
	"github.com/ginjaninja78/invoicer/internal/types"
)

// ErrInvalidRecipient is returned for an address that cannot be parsed.
var ErrInvalidRecipient = errors.New("invalid recipient address")

// =============================================================================
// VALIDATION ERROR
// =============================================================================

// ValidationError represents a single finding.
type ValidationError struct {
	// Severity is "error" or "warning".
	Severity string

	// Field is the column the finding is about.
	Field string

	// Value is the offending value, if any.
	Value string

	// Rule names the check that failed.
	Rule string

	// Message is a human-readable description.
	Message string

	// RowNumber is the 0-based row index, or -1 for table-level findings.
	RowNumber int
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.RowNumber < 0 {
		return fmt.Sprintf("[%s] column '%s': %s", strings.ToUpper(e.Severity), e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] row %d, column '%s': %s (value: '%s')",
		strings.ToUpper(e.Severity),
		e.RowNumber,
		e.Field,
		e.Message,
		e.Value,
	)
}

// =============================================================================
// VALIDATION RESULT
// =============================================================================

// ValidationResult contains the outcome of validating a table.
type ValidationResult struct {
	// IsValid is false when at least one finding has severity "error".
	IsValid bool

	Errors       []*ValidationError
	ErrorCount   int
	WarningCount int

	// RowsValidated is the number of rows checked.
	RowsValidated int
}

func (r *ValidationResult) add(e *ValidationError) {
	r.Errors = append(r.Errors, e)
	if e.Severity == "error" {
		r.ErrorCount++
		r.IsValid = false
	} else {
		r.WarningCount++
	}
}

// =============================================================================
// VALIDATOR
// =============================================================================

// Validator checks tables against a field mapping.
type Validator struct {
	mapping     *config.FieldMapping
	emailColumn string
}

// NewValidator creates a validator for the configuration's mapping.
func NewValidator(cfg *config.Config) *Validator {
	return &Validator{
		mapping:     cfg.Mapping(),
		emailColumn: cfg.EmailColumn,
	}
}

// Validate checks the selected rows. With forSend, recipient problems are
// errors; otherwise they are not reported at all.
func (v *Validator) Validate(table *types.Table, indices []int, forSend bool) *ValidationResult {
	result := &ValidationResult{IsValid: true}

	for _, e := range v.ValidateColumns(table, forSend) {
		result.add(e)
	}

	for _, idx := range indices {
		if idx < 0 || idx >= len(table.Rows) {
			continue
		}
		result.RowsValidated++
		for _, e := range v.ValidateRow(idx, table.Rows[idx], forSend) {
			result.add(e)
		}
	}

	return result
}

// ValidateColumns reports mapped columns the table does not carry.
func (v *Validator) ValidateColumns(table *types.Table, forSend bool) []*ValidationError {
	var out []*ValidationError
	seen := make(map[string]bool)

	for _, column := range v.mapping.Columns() {
		if seen[column] || table.HasColumn(column) {
			continue
		}
		seen[column] = true
		out = append(out, &ValidationError{
			Severity:  "warning",
			Field:     column,
			Rule:      "column_present",
			Message:   "column not found; its placeholders will render empty",
			RowNumber: -1,
		})
	}

	if forSend && !table.HasColumn(v.emailColumn) {
		out = append(out, &ValidationError{
			Severity:  "error",
			Field:     v.emailColumn,
			Rule:      "column_present",
			Message:   "recipient column not found",
			RowNumber: -1,
		})
	}
	return out
}

// ValidateRow checks one row.
func (v *Validator) ValidateRow(idx int, row types.Row, forSend bool) []*ValidationError {
	var out []*ValidationError

	for i := 1; i <= v.mapping.LineItems(); i++ {
		if row.Text(v.mapping.Column(config.ServiceField(i))) == "" {
			continue
		}
		for _, field := range []string{config.QtyField(i), config.PriceField(i)} {
			column := v.mapping.Column(field)
			value := row.Text(column)
			if _, ok := currency.ParseAmount(value); ok {
				continue
			}
			out = append(out, &ValidationError{
				Severity:  "warning",
				Field:     column,
				Value:     value,
				Rule:      "numeric",
				Message:   "not a number; the line counts as zero",
				RowNumber: idx,
			})
		}
	}

	if forSend {
		addr := row.Text(v.emailColumn)
		if err := ValidateRecipient(addr); err != nil {
			out = append(out, &ValidationError{
				Severity:  "error",
				Field:     v.emailColumn,
				Value:     addr,
				Rule:      "recipient",
				Message:   err.Error(),
				RowNumber: idx,
			})
		}
	}

	return out
}

// =============================================================================
// RECIPIENTS
// =============================================================================

// ValidateRecipient checks that addr is a single bare e-mail address.
func ValidateRecipient(addr string) error {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return fmt.Errorf("%w: empty", ErrInvalidRecipient)
	}
	parsed, err := mail.ParseAddress(addr)
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidRecipient, addr, err)
	}
	if parsed.Address != addr {
		return fmt.Errorf("%w: %q: expected a bare address", ErrInvalidRecipient, addr)
	}
	return nil
}
