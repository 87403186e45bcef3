package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/invoicer/internal/config"
	"github.com/ginjaninja78/invoicer/internal/types"
)

func TestValidateRecipient(t *testing.T) {
	tests := []struct {
		addr    string
		wantErr bool
	}{
		{"test@example.com", false},
		{"  test@example.com  ", false},
		{"", true},
		{"not-an-address", true},
		{"John Doe <john@example.com>", true},
		{"a@example.com, b@example.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			err := ValidateRecipient(tt.addr)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidRecipient)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func fullTable(rows ...types.Row) *types.Table {
	headers := append([]string(nil), config.DefaultHeaderFields...)
	for i := 1; i <= 6; i++ {
		headers = append(headers, config.ServiceField(i), config.QtyField(i), config.PriceField(i))
	}
	return &types.Table{Headers: headers, Rows: rows}
}

func TestValidate_CleanTable(t *testing.T) {
	v := NewValidator(config.Default())
	table := fullTable(types.Row{
		"E-mail": "test@example.com", "Service 1": "x", "Qty 1": "2", "Price 1": "500000",
	})

	result := v.Validate(table, []int{0}, true)

	assert.True(t, result.IsValid)
	assert.Empty(t, result.Errors)
	assert.Equal(t, 1, result.RowsValidated)
}

func TestValidate_MissingColumns(t *testing.T) {
	v := NewValidator(config.Default())
	table := &types.Table{Headers: []string{"Client"}, Rows: []types.Row{{"Client": "A"}}}

	result := v.Validate(table, []int{0}, false)
	assert.True(t, result.IsValid, "missing columns only warn when not sending")
	assert.Equal(t, len(config.Default().Mapping().Columns())-1, result.WarningCount)

	result = v.Validate(table, []int{0}, true)
	assert.False(t, result.IsValid)
}

func TestValidateRow(t *testing.T) {
	v := NewValidator(config.Default())

	errs := v.ValidateRow(4, types.Row{
		"E-mail":    "",
		"Service 1": "Support", "Qty 1": "N/A", "Price 1": "100",
		"Service 2": "", "Qty 2": "junk", "Price 2": "junk",
	}, true)

	require.Len(t, errs, 2)
	assert.Equal(t, "Qty 1", errs[0].Field)
	assert.Equal(t, "warning", errs[0].Severity)
	assert.Equal(t, 4, errs[0].RowNumber)
	assert.Equal(t, "E-mail", errs[1].Field)
	assert.Equal(t, "error", errs[1].Severity)
	assert.Contains(t, errs[1].Error(), "row 4")
}
