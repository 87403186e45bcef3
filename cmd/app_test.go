package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dt "github.com/ginjaninja78/invoicer/internal/doctemplate/doctest"
	"github.com/ginjaninja78/invoicer/pkg/utils"
)

func TestParseRows(t *testing.T) {
	tests := []struct {
		name    string
		rows    string
		all     bool
		want    []int
		wantErr bool
	}{
		{name: "list", rows: "0,2,5", want: []int{0, 2, 5}},
		{name: "range", rows: "1-3", want: []int{1, 2, 3}},
		{name: "mixed keeps order and drops duplicates", rows: "4, 1-2 ,2", want: []int{4, 1, 2}},
		{name: "all", all: true, want: []int{0, 1, 2, 3, 4, 5}},
		{name: "empty", rows: "", wantErr: true},
		{name: "out of range", rows: "6", wantErr: true},
		{name: "negative", rows: "-1", wantErr: true},
		{name: "reversed range", rows: "3-1", wantErr: true},
		{name: "garbage", rows: "a", wantErr: true},
		{name: "both flags", rows: "1", all: true, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseRows(tt.rows, tt.all, 6)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGenerateCommand(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "out")

	tplPath := filepath.Join(dir, "template.docx")
	require.NoError(t, os.WriteFile(tplPath, dt.DOCX(dt.InvoiceDocument(6), dt.Options{}), 0o644))

	dataPath := filepath.Join(dir, "invoices.csv")
	require.NoError(t, os.WriteFile(dataPath, []byte(
		"Client,E-mail,Service 1,Qty 1,Price 1\n"+
			"PT Alpha,a@example.com,Hosting,1,100000\n"+
			"PT Beta,b@example.com,Support,2,250000\n"), 0o644))

	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(
		"template: "+tplPath+"\n"+
			"output_dir: "+outDir+"\n"+
			"renderer:\n  kind: native\n"), 0o644))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"generate", dataPath, "--all", "--config", cfgPath})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
		allRows = false
	})

	require.NoError(t, rootCmd.Execute())

	for _, name := range []string{"PT_Alpha.pdf", "PT_Beta.pdf"} {
		data, err := os.ReadFile(filepath.Join(outDir, name))
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(data, []byte("%PDF")), name)
	}

	records, err := utils.ReadReport(filepath.Join(outDir, "report.csv"))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "ok", records[1].Status)
	assert.Equal(t, "500.000", records[1].Total)

	assert.Contains(t, out.String(), "Successful:  2")
}

func TestListCommand_CheckSendWithoutCredentials(t *testing.T) {
	for _, key := range []string{"GMAIL_SENDER", "GMAIL_APP_PASSWORD", "RESEND_API_KEY", "SMTP_HOST", "SMTP_PORT"} {
		t.Setenv(key, "")
	}

	dir := t.TempDir()
	dataPath := filepath.Join(dir, "invoices.csv")
	require.NoError(t, os.WriteFile(dataPath, []byte(
		"Client,E-mail\n"+
			"PT Alpha,a@example.com\n"), 0o644))
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("output_dir: "+dir+"\n"), 0o644))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"list", dataPath, "--check-send", "--config", cfgPath})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
		checkSend = false
	})

	require.NoError(t, rootCmd.Execute())

	assert.Contains(t, out.String(), "  0 | PT Alpha")
	assert.Contains(t, out.String(), `Mail transport "smtp" has no credentials`)
}
