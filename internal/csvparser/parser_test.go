package csvparser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/invoicer/internal/config"
	"github.com/ginjaninja78/invoicer/internal/types"
)

func settings(delim string, headerRows int) config.CSVSettings {
	return config.CSVSettings{Delimiter: delim, HeaderRows: headerRows, DataStartRow: headerRows + 1}
}

func TestParseReader(t *testing.T) {
	input := "\ufeffClient,E-mail,Service 1,Qty 1,Price 1\n" +
		"PT Test Company,test@example.com,Layanan contoh 1,2,500000\n" +
		",,,,\n" +
		"\"PT Quoted, Tbk\", b@example.com ,Hosting,N/A\n"

	table, err := ParseReader(strings.NewReader(input), settings(",", 1))
	require.NoError(t, err)

	assert.Equal(t, []string{"Client", "E-mail", "Service 1", "Qty 1", "Price 1"}, table.Headers)
	require.Len(t, table.Rows, 2, "blank row skipped")

	assert.Equal(t, types.Row{
		"Client": "PT Test Company", "E-mail": "test@example.com",
		"Service 1": "Layanan contoh 1", "Qty 1": "2", "Price 1": "500000",
	}, table.Rows[0])

	assert.Equal(t, "PT Quoted, Tbk", table.Rows[1].Text("Client"))
	assert.Equal(t, "b@example.com", table.Rows[1].Text("E-mail"))
	assert.Equal(t, "N/A", table.Rows[1].Text("Qty 1"))
	assert.Equal(t, "", table.Rows[1].Text("Price 1"), "short row padded")
}

func TestParseReader_Delimiters(t *testing.T) {
	for _, delim := range []string{";", "semicolon", "|", "tab"} {
		t.Run(delim, func(t *testing.T) {
			sep := map[string]string{";": ";", "semicolon": ";", "|": "|", "tab": "\t"}[delim]
			input := "Client" + sep + "Qty 1\nACME" + sep + "3\n"

			table, err := ParseReader(strings.NewReader(input), settings(delim, 1))
			require.NoError(t, err)
			assert.Equal(t, "3", table.Rows[0].Text("Qty 1"))
		})
	}
}

func TestParseReader_MultiLineHeaders(t *testing.T) {
	input := "No.,Invoice,,\nInvoice,Date,Client,\nINV-1,01 Januari 2025,ACME,x\n"

	table, err := ParseReader(strings.NewReader(input), settings(",", 2))
	require.NoError(t, err)

	assert.Equal(t, []string{"No. Invoice", "Invoice Date", "Client", "Column_4"}, table.Headers)
	assert.Equal(t, "INV-1", table.Rows[0].Text("No. Invoice"))
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse(filepath.Join(t.TempDir(), "missing.csv"), settings(",", 1))
	assert.Error(t, err)

	_, err = ParseReader(strings.NewReader(""), settings(",", 1))
	assert.Error(t, err)

	_, err = ParseReader(strings.NewReader("a,b\n"), settings(",", 2))
	assert.Error(t, err)
}

func TestParse_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "invoices.csv")
	require.NoError(t, os.WriteFile(path, []byte("Client\nACME\n"), 0o644))

	table, err := Parse(path, settings(",", 1))
	require.NoError(t, err)
	assert.Equal(t, path, table.SourceFile)
	assert.Len(t, table.Rows, 1)
}
