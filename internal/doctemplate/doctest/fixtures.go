// Package doctest builds minimal WordprocessingML documents for tests.
//
// The documents carry only what Word needs to open them: content types, the
// main document, optional header/footer parts and their relationships.
package doctest

import (
	"archive/zip"
	"bytes"
	"fmt"
	"html"
	"io"
	"strings"
	"time"
)

const (
	nsW = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	nsR = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"

	relHeader = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/header"
	relFooter = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/footer"
)

// fixed zip timestamps keep fixture bytes stable between calls.
var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// Run returns a w:r holding text.
func Run(text string) string {
	return `<w:r><w:t xml:space="preserve">` + html.EscapeString(text) + `</w:t></w:r>`
}

// BoldRun returns a bold w:r holding text.
func BoldRun(text string) string {
	return `<w:r><w:rPr><w:b/></w:rPr><w:t xml:space="preserve">` + html.EscapeString(text) + `</w:t></w:r>`
}

// Paragraph returns a w:p with one plain run per text.
func Paragraph(texts ...string) string {
	var sb strings.Builder
	sb.WriteString("<w:p>")
	for _, t := range texts {
		sb.WriteString(Run(t))
	}
	sb.WriteString("</w:p>")
	return sb.String()
}

// RawParagraph wraps already built runs in a w:p.
func RawParagraph(runs ...string) string {
	return "<w:p>" + strings.Join(runs, "") + "</w:p>"
}

// Table returns a w:tbl; every cell holds one paragraph.
func Table(rows ...[]string) string {
	var sb strings.Builder
	sb.WriteString("<w:tbl>")
	for _, row := range rows {
		sb.WriteString("<w:tr>")
		for _, cell := range row {
			sb.WriteString("<w:tc>" + Paragraph(cell) + "</w:tc>")
		}
		sb.WriteString("</w:tr>")
	}
	sb.WriteString("</w:tbl>")
	return sb.String()
}

// Document returns word/document.xml with the given body content.
func Document(body ...string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n" +
		`<w:document xmlns:w="` + nsW + `" xmlns:r="` + nsR + `"><w:body>` +
		strings.Join(body, "") +
		`</w:body></w:document>`
}

// Header returns a header part with the given paragraphs.
func Header(paragraphs ...string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n" +
		`<w:hdr xmlns:w="` + nsW + `">` + strings.Join(paragraphs, "") + `</w:hdr>`
}

// Footer returns a footer part with the given paragraphs.
func Footer(paragraphs ...string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n" +
		`<w:ftr xmlns:w="` + nsW + `">` + strings.Join(paragraphs, "") + `</w:ftr>`
}

// Options adds optional parts to a fixture.
type Options struct {
	Header string
	Footer string
}

// DOCX assembles a .docx archive from document.xml content.
func DOCX(document string, opts Options) []byte {
	type entry struct{ name, body string }

	var rels strings.Builder
	rels.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n")
	rels.WriteString(`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)

	overrides := `<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>`
	entries := []entry{}

	if opts.Header != "" {
		rels.WriteString(`<Relationship Id="rIdHeader1" Type="` + relHeader + `" Target="header1.xml"/>`)
		overrides += `<Override PartName="/word/header1.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.header+xml"/>`
		entries = append(entries, entry{"word/header1.xml", opts.Header})
	}
	if opts.Footer != "" {
		rels.WriteString(`<Relationship Id="rIdFooter1" Type="` + relFooter + `" Target="footer1.xml"/>`)
		overrides += `<Override PartName="/word/footer1.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.footer+xml"/>`
		entries = append(entries, entry{"word/footer1.xml", opts.Footer})
	}
	rels.WriteString(`</Relationships>`)

	contentTypes := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n" +
		`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
		`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
		`<Default Extension="xml" ContentType="application/xml"/>` +
		overrides +
		`</Types>`

	rootRels := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n" +
		`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
		`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>` +
		`</Relationships>`

	all := append([]entry{
		{"[Content_Types].xml", contentTypes},
		{"_rels/.rels", rootRels},
		{"word/document.xml", document},
		{"word/_rels/document.xml.rels", rels.String()},
	}, entries...)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range all {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: e.name, Method: zip.Deflate, Modified: epoch})
		if err != nil {
			panic(fmt.Sprintf("doctest: %v", err))
		}
		if _, err := io.WriteString(w, e.body); err != nil {
			panic(fmt.Sprintf("doctest: %v", err))
		}
	}
	if err := zw.Close(); err != nil {
		panic(fmt.Sprintf("doctest: %v", err))
	}
	return buf.Bytes()
}

// PartXML returns the content of one archive entry, or "" if absent.
func PartXML(docx []byte, name string) string {
	zr, err := zip.NewReader(bytes.NewReader(docx), int64(len(docx)))
	if err != nil {
		return ""
	}
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return ""
		}
		defer rc.Close()
		data, _ := io.ReadAll(rc)
		return string(data)
	}
	return ""
}

// InvoiceDocument is a reference-shaped invoice body: header fields,
// a line item table with Service/Qty/Price/Subtotal, total and terbilang.
func InvoiceDocument(lineItems int) string {
	body := []string{
		Paragraph("Invoice {{No. Invoice}}"),
		Paragraph("Client: {{Client}}"),
		Paragraph("Date: {{Invoice Date}} / Due: {{Due Date}}"),
	}
	rows := [][]string{{"Service", "Qty", "Price", "Subtotal"}}
	for i := 1; i <= lineItems; i++ {
		rows = append(rows, []string{
			fmt.Sprintf("{{Service %d}}", i),
			fmt.Sprintf("{{Qty %d}}", i),
			fmt.Sprintf("{{Price %d}}", i),
			fmt.Sprintf("{{Subtotal %d}}", i),
		})
	}
	body = append(body,
		Table(rows...),
		Paragraph("Total: {{Total}}"),
		Paragraph("Terbilang: {{Terbilang}}"),
	)
	return Document(body...)
}
