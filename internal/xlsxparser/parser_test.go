package xlsxparser

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/invoicer/internal/config"
)

func writeWorkbook(t *testing.T, sheet string, rows [][]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	if sheet != "Sheet1" {
		_, err := f.NewSheet(sheet)
		require.NoError(t, err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	path := filepath.Join(t.TempDir(), "invoices.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestParse(t *testing.T) {
	path := writeWorkbook(t, "Sheet1", [][]any{
		{"Client", "E-mail", "", "Qty 1", "Price 1"},
		{"PT Test Company", " test@example.com ", "x", 2, 500000},
		{nil, nil, nil, nil, nil},
		{"PT Short"},
	})

	table, err := Parse(path, config.XLSXSettings{HeaderRow: 1})
	require.NoError(t, err)

	assert.Equal(t, path, table.SourceFile)
	assert.Equal(t, []string{"Client", "E-mail", "Column_3", "Qty 1", "Price 1"}, table.Headers)
	require.Len(t, table.Rows, 2)

	assert.Equal(t, "test@example.com", table.Rows[0].Text("E-mail"))
	assert.Equal(t, "2", table.Rows[0].Text("Qty 1"))
	assert.Equal(t, "500000", table.Rows[0].Text("Price 1"))
	assert.Equal(t, "PT Short", table.Rows[1].Text("Client"))
	assert.Equal(t, "", table.Rows[1].Text("Price 1"))
}

func TestParse_NamedSheetAndHeaderRow(t *testing.T) {
	path := writeWorkbook(t, "Data", [][]any{
		{"Invoice export"},
		{"Client", "Qty 1"},
		{"ACME", 3},
	})

	table, err := Parse(path, config.XLSXSettings{Sheet: "Data", HeaderRow: 2})
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "ACME", table.Rows[0].Text("Client"))
	assert.Equal(t, "3", table.Rows[0].Text("Qty 1"))
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse(filepath.Join(t.TempDir(), "missing.xlsx"), config.XLSXSettings{HeaderRow: 1})
	assert.Error(t, err)

	path := writeWorkbook(t, "Sheet1", [][]any{{"Client"}})

	_, err = Parse(path, config.XLSXSettings{Sheet: "Nope", HeaderRow: 1})
	assert.ErrorContains(t, err, "not found")

	_, err = Parse(path, config.XLSXSettings{HeaderRow: 5})
	assert.Error(t, err)
}
