package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/invoicer/internal/config"
	"github.com/ginjaninja78/invoicer/internal/filler"
)

func TestLoad_DispatchesOnExtension(t *testing.T) {
	cfg := config.Default()
	dir := t.TempDir()

	csvPath := filepath.Join(dir, "data.CSV")
	require.NoError(t, os.WriteFile(csvPath, []byte("Client,Qty 1\nACME,2\n"), 0o644))

	table, err := Load(csvPath, cfg)
	require.NoError(t, err)
	assert.Equal(t, "ACME", table.Rows[0].Text("Client"))

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"Client", "Qty 1"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"Globex", 4}))
	xlsxPath := filepath.Join(dir, "data.xlsx")
	require.NoError(t, f.SaveAs(xlsxPath))
	require.NoError(t, f.Close())

	table, err = Load(xlsxPath, cfg)
	require.NoError(t, err)
	assert.Equal(t, "Globex", table.Rows[0].Text("Client"))
	assert.Equal(t, "4", table.Rows[0].Text("Qty 1"))

	_, err = Load(filepath.Join(dir, "data.json"), cfg)
	assert.ErrorIs(t, err, ErrUnsupportedSource)
}

func TestSampleTable(t *testing.T) {
	cfg := config.Default()
	table := SampleTable(cfg)

	require.Len(t, table.Rows, 1)
	assert.Len(t, table.Headers, len(cfg.Mapping().Columns()))

	row := table.Rows[0]
	assert.Equal(t, "PT Test Company", row.Text("Client"))
	assert.Equal(t, "Layanan contoh 3", row.Text("Service 3"))
	assert.Equal(t, "", row.Text("Service 4"))

	f, err := filler.New(cfg)
	require.NoError(t, err)
	inv := f.Resolve(row)

	total, _ := inv.Placeholders.Get(filler.TotalField)
	assert.Equal(t, "14.000.000", total)
	sub, _ := inv.Placeholders.Get(filler.SubtotalField(2))
	assert.Equal(t, "4.000.000", sub)
}
