package render

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/ginjaninja78/invoicer/internal/doctemplate"
)

const (
	fontFamily = "Helvetica"
	fontSize   = 10.0
	lineHeight = 5.0
	cellPad    = 1.5
)

// stamp is written as the creation date so identical input yields identical
// bytes.
var stamp = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// Native lays out the text outline of a filled document with fpdf. It needs
// no external program but ignores the template's styling.
type Native struct {
	pageSize string
	compress bool
}

// NewNative returns a native renderer for the given page size ("A4",
// "Letter", ...).
func NewNative(pageSize string) *Native {
	if pageSize == "" {
		pageSize = "A4"
	}
	return &Native{pageSize: pageSize, compress: true}
}

// Render lays out header lines, body paragraphs and tables, and footer lines.
func (n *Native) Render(ctx context.Context, doc *doctemplate.Filled) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, newError("layout", err)
	}

	outline, err := doctemplate.ReadOutline(doc)
	if err != nil {
		return nil, newError("outline", err)
	}

	pdf := fpdf.New("P", "mm", n.pageSize, "")
	pdf.SetCompression(n.compress)
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(stamp)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AliasNbPages("")

	// Core fonts are cp1252; translate so accented names survive.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	lm, _, rm, _ := pdf.GetMargins()
	contentW := pageW - lm - rm

	if len(outline.Header) > 0 {
		pdf.SetHeaderFunc(func() {
			pdf.SetFont(fontFamily, "B", fontSize)
			for _, line := range outline.Header {
				pdf.MultiCell(contentW, lineHeight, tr(line), "", "L", false)
			}
			pdf.Ln(lineHeight)
		})
	}
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont(fontFamily, "I", fontSize-2)
		text := strings.Join(outline.Footer, "  ")
		if text != "" {
			text += "  "
		}
		text += fmt.Sprintf("%d/{nb}", pdf.PageNo())
		pdf.CellFormat(contentW, lineHeight, tr(text), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	pdf.SetFont(fontFamily, "", fontSize)

	for _, block := range outline.Body {
		switch block.Kind {
		case doctemplate.BlockParagraph:
			if strings.TrimSpace(block.Text) == "" {
				pdf.Ln(lineHeight)
				continue
			}
			pdf.MultiCell(contentW, lineHeight, tr(block.Text), "", "L", false)
		case doctemplate.BlockTable:
			n.table(pdf, tr, contentW, block.Rows)
			pdf.Ln(lineHeight / 2)
		}
	}

	if pdf.Err() {
		return nil, newError("layout", pdf.Error())
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, newError("output", err)
	}
	return buf.Bytes(), nil
}

// table draws rows with equal column widths. The first row is bold. Rows
// whose cells are all empty are skipped so unused line items leave no gap.
func (n *Native) table(pdf *fpdf.Fpdf, tr func(string) string, width float64, rows [][]string) {
	cols := 0
	for _, row := range rows {
		cols = max(cols, len(row))
	}
	if cols == 0 {
		return
	}
	colW := width / float64(cols)
	lm, _, _, _ := pdf.GetMargins()
	_, pageH := pdf.GetPageSize()
	_, bottom := pdf.GetAutoPageBreak()

	for ri, row := range rows {
		if allEmpty(row) {
			continue
		}
		style := ""
		if ri == 0 {
			style = "B"
		}
		pdf.SetFont(fontFamily, style, fontSize)

		lines := make([][]string, cols)
		height := lineHeight
		for ci := 0; ci < cols; ci++ {
			text := ""
			if ci < len(row) {
				text = tr(row[ci])
			}
			lines[ci] = splitCell(pdf, text, colW-2*cellPad)
			height = max(height, float64(len(lines[ci]))*lineHeight)
		}
		height += 2 * cellPad

		if pdf.GetY()+height > pageH-bottom {
			pdf.AddPage()
			pdf.SetFont(fontFamily, style, fontSize)
		}

		y := pdf.GetY()
		for ci := 0; ci < cols; ci++ {
			x := lm + float64(ci)*colW
			pdf.Rect(x, y, colW, height, "D")
			for li, line := range lines[ci] {
				pdf.SetXY(x+cellPad, y+cellPad+float64(li)*lineHeight)
				pdf.CellFormat(colW-2*cellPad, lineHeight, line, "", 0, "L", false, 0, "")
			}
		}
		pdf.SetXY(lm, y+height)
	}
	pdf.SetFont(fontFamily, "", fontSize)
}

// splitCell wraps text to width, keeping explicit line breaks.
func splitCell(pdf *fpdf.Fpdf, text string, width float64) []string {
	var out []string
	for _, para := range strings.Split(text, "\n") {
		if para == "" {
			out = append(out, "")
			continue
		}
		out = append(out, pdf.SplitText(para, width)...)
	}
	return out
}

func allEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
