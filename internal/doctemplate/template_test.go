package doctemplate

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	dt "github.com/ginjaninja78/invoicer/internal/doctemplate/doctest"
)

// pairs builds a Replacer applying token/value pairs in order.
func pairs(kv ...string) Replacer {
	return ReplacerFunc(func(s string) string {
		for i := 0; i+1 < len(kv); i += 2 {
			s = strings.ReplaceAll(s, kv[i], kv[i+1])
		}
		return s
	})
}

func mustParse(t *testing.T, data []byte) *Template {
	t.Helper()
	tpl, err := Parse("test.docx", data)
	require.NoError(t, err)
	return tpl
}

func outline(t *testing.T, f *Filled) *Outline {
	t.Helper()
	o, err := ReadOutline(f)
	require.NoError(t, err)
	return o
}

func TestFill_SplitRuns(t *testing.T) {
	doc := dt.Document(
		dt.RawParagraph(dt.Run("Hello {{Cli"), dt.BoldRun("ent"), dt.Run("}}!")),
		dt.RawParagraph(dt.Run("{"), dt.Run("{Total"), dt.Run("}"), dt.Run("}")),
	)
	tpl := mustParse(t, dt.DOCX(doc, dt.Options{}))

	filled, err := tpl.Fill(pairs("{{Client}}", "PT Test Company", "{{Total}}", "1.500.000"))
	require.NoError(t, err)

	o := outline(t, filled)
	require.Len(t, o.Body, 2)
	assert.Equal(t, "Hello PT Test Company!", o.Body[0].Text)
	assert.Equal(t, "1.500.000", o.Body[1].Text)

	xml := dt.PartXML(filled.Data, "word/document.xml")
	assert.NotContains(t, xml, "{{")
	assert.NotContains(t, xml, "Cli<")
	// The styled run survives, emptied.
	assert.Contains(t, xml, "<w:b/>")
}

func TestFill_TablesHeadersFooters(t *testing.T) {
	doc := dt.Document(
		dt.Paragraph("Body {{Client}}"),
		dt.Table(
			[]string{"Service", "Qty"},
			[]string{"{{Service 1}}", "{{Qty 1}}"},
		),
	)
	tpl := mustParse(t, dt.DOCX(doc, dt.Options{
		Header: dt.Header(dt.Paragraph("Invoice {{No. Invoice}}")),
		Footer: dt.Footer(dt.Paragraph("{{Client}} - page 1")),
	}))

	filled, err := tpl.Fill(pairs(
		"{{Client}}", "ACME",
		"{{No. Invoice}}", "INV-2025-001",
		"{{Service 1}}", "Consulting",
		"{{Qty 1}}", "3",
	))
	require.NoError(t, err)

	o := outline(t, filled)
	assert.Equal(t, []string{"Invoice INV-2025-001"}, o.Header)
	assert.Equal(t, []string{"ACME - page 1"}, o.Footer)
	require.Len(t, o.Body, 2)
	assert.Equal(t, "Body ACME", o.Body[0].Text)
	assert.Equal(t, BlockTable, o.Body[1].Kind)
	assert.Equal(t, [][]string{{"Service", "Qty"}, {"Consulting", "3"}}, o.Body[1].Rows)
}

func TestFill_UnresolvedTokensStay(t *testing.T) {
	tpl := mustParse(t, dt.DOCX(dt.Document(dt.Paragraph("{{Client}} {{Unknown}}")), dt.Options{}))

	filled, err := tpl.Fill(pairs("{{Client}}", "ACME"))
	require.NoError(t, err)

	assert.Equal(t, "ACME {{Unknown}}", outline(t, filled).Body[0].Text)
}

func TestFill_TabsAndBreaks(t *testing.T) {
	tpl := mustParse(t, dt.DOCX(dt.Document(dt.Paragraph("{{Address}}")), dt.Options{}))

	filled, err := tpl.Fill(pairs("{{Address}}", "Jalan Test 123\nBandung\tJawa Barat"))
	require.NoError(t, err)

	xml := dt.PartXML(filled.Data, "word/document.xml")
	assert.Contains(t, xml, "<w:br/>")
	assert.Contains(t, xml, "<w:tab/>")
	assert.Equal(t, "Jalan Test 123\nBandung\tJawa Barat", outline(t, filled).Body[0].Text)
}

func TestFill_OutputOnlyDiffersAtExistingPlaceholders(t *testing.T) {
	// The template has no {{Total}}; rows differing only in Total must
	// produce identical bytes.
	tpl := mustParse(t, dt.DOCX(dt.Document(dt.Paragraph("Client {{Client}}")), dt.Options{
		Footer: dt.Footer(dt.Paragraph("static footer")),
	}))

	a, err := tpl.Fill(pairs("{{Client}}", "ACME", "{{Total}}", "1"))
	require.NoError(t, err)
	b, err := tpl.Fill(pairs("{{Client}}", "ACME", "{{Total}}", "999.999"))
	require.NoError(t, err)

	assert.True(t, bytes.Equal(a.Data, b.Data))
}

func TestFill_NoPlaceholdersCopiesParts(t *testing.T) {
	src := dt.DOCX(dt.Document(dt.Paragraph("nothing to see")), dt.Options{})
	tpl := mustParse(t, src)

	a, err := tpl.Fill(pairs("{{Client}}", "A"))
	require.NoError(t, err)
	b, err := tpl.Fill(pairs("{{Client}}", "B"))
	require.NoError(t, err)

	assert.True(t, bytes.Equal(a.Data, b.Data))
	assert.Equal(t, dt.PartXML(src, "word/document.xml"), dt.PartXML(a.Data, "word/document.xml"))
}

func TestFill_TemplateIsNotMutated(t *testing.T) {
	tpl := mustParse(t, dt.DOCX(dt.Document(dt.Paragraph("{{Client}}")), dt.Options{}))

	var wg sync.WaitGroup
	results := make([]string, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			filled, err := tpl.Fill(pairs("{{Client}}", strings.Repeat("x", i+1)))
			if err != nil {
				return
			}
			o, err := ReadOutline(filled)
			if err != nil {
				return
			}
			results[i] = o.Body[0].Text
		}(i)
	}
	wg.Wait()

	for i, got := range results {
		assert.Equal(t, strings.Repeat("x", i+1), got)
	}
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	t.Run("not found", func(t *testing.T) {
		_, err := Load(filepath.Join(dir, "missing.docx"))
		assert.ErrorIs(t, err, ErrTemplateNotFound)
	})

	t.Run("not a zip", func(t *testing.T) {
		path := filepath.Join(dir, "garbage.docx")
		require.NoError(t, os.WriteFile(path, []byte("not an office file"), 0o644))

		_, err := Load(path)
		assert.ErrorIs(t, err, ErrInvalidTemplate)
	})

	t.Run("broken xml", func(t *testing.T) {
		_, err := Parse("broken.docx", dt.DOCX("<w:document><w:body>", dt.Options{}))
		assert.ErrorIs(t, err, ErrInvalidTemplate)
	})

	t.Run("loads valid file", func(t *testing.T) {
		path := filepath.Join(dir, "ok.docx")
		require.NoError(t, os.WriteFile(path, dt.DOCX(dt.Document(dt.Paragraph("x")), dt.Options{}), 0o644))

		tpl, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, KindDOCX, tpl.Kind())
		assert.Equal(t, "ok.docx", tpl.Name())
	})
}

func TestFill_XLSX(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetCellStr("Sheet1", "A1", "Client: {{Client}}"))
	require.NoError(t, f.SetCellRichText("Sheet1", "B1", []excelize.RichTextRun{
		{Text: "{{To", Font: &excelize.Font{Bold: true}},
		{Text: "tal}}"},
	}))
	require.NoError(t, f.SetCellStr("Sheet1", "A2", "{{Unknown}}"))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	tpl, err := Parse("template.xlsx", buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, KindXLSX, tpl.Kind())

	filled, err := tpl.Fill(pairs("{{Client}}", "ACME", "{{Total}}", "1.500.000"))
	require.NoError(t, err)

	out, err := excelize.OpenReader(bytes.NewReader(filled.Data))
	require.NoError(t, err)
	defer out.Close()

	a1, err := out.GetCellValue("Sheet1", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Client: ACME", a1)

	b1, err := out.GetCellValue("Sheet1", "B1")
	require.NoError(t, err)
	assert.Equal(t, "1.500.000", b1)

	a2, err := out.GetCellValue("Sheet1", "A2")
	require.NoError(t, err)
	assert.Equal(t, "{{Unknown}}", a2)
}

func TestFill_XLSXHeaderFooter(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetCellStr("Sheet1", "A1", "{{Client}}"))
	require.NoError(t, f.SetHeaderFooter("Sheet1", &excelize.HeaderFooterOptions{
		OddHeader: "&L{{No. Invoice}}&R&P",
		OddFooter: "&C{{Client}}",
	}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	tpl, err := Parse("template.xlsx", buf.Bytes())
	require.NoError(t, err)

	filled, err := tpl.Fill(pairs("{{Client}}", "ACME", "{{No. Invoice}}", "INV-7"))
	require.NoError(t, err)

	out, err := excelize.OpenReader(bytes.NewReader(filled.Data))
	require.NoError(t, err)
	defer out.Close()

	opts, err := out.GetHeaderFooter("Sheet1")
	require.NoError(t, err)
	require.NotNil(t, opts)
	assert.Equal(t, "&LINV-7&R&P", opts.OddHeader)
	assert.Equal(t, "&CACME", opts.OddFooter)
}
