package doctemplate

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strings"

	"github.com/beevik/etree"
	"github.com/xuri/excelize/v2"
)

// BlockKind distinguishes outline blocks.
type BlockKind int

const (
	BlockParagraph BlockKind = iota
	BlockTable
)

// Block is one paragraph or table of a document body.
type Block struct {
	Kind BlockKind

	// Text is set for paragraphs.
	Text string

	// Rows holds cell texts for tables. Paragraphs inside a cell are joined
	// with "\n".
	Rows [][]string
}

// Outline is the plain text structure of a filled document, used by the
// native renderer. Formatting is not preserved.
type Outline struct {
	Header []string
	Body   []Block
	Footer []string
}

// ReadOutline extracts the text structure of a filled document.
func ReadOutline(f *Filled) (*Outline, error) {
	switch f.Kind {
	case KindDOCX:
		return docxOutline(f.Data)
	case KindXLSX:
		return xlsxOutline(f.Data)
	default:
		return nil, fmt.Errorf("%w: unsupported kind %q", ErrInvalidTemplate, f.Kind)
	}
}

func docxOutline(data []byte) (*Outline, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTemplate, err)
	}

	parts, err := docxTextParts(zr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTemplate, err)
	}

	out := &Outline{}
	for _, f := range zr.File {
		if !parts[f.Name] {
			continue
		}
		raw, err := readZipFile(f)
		if err != nil {
			return nil, err
		}
		doc := etree.NewDocument()
		if err := doc.ReadFromBytes(raw); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidTemplate, f.Name, err)
		}
		root := doc.Root()
		if root == nil {
			continue
		}

		switch {
		case f.Name == docxMainPart:
			out.Body = bodyBlocks(root)
		case strings.Contains(f.Name, "header"):
			out.Header = append(out.Header, nonEmptyParagraphs(root)...)
		case strings.Contains(f.Name, "footer"):
			out.Footer = append(out.Footer, nonEmptyParagraphs(root)...)
		}
	}
	return out, nil
}

// bodyBlocks walks the direct children of w:body.
func bodyBlocks(root *etree.Element) []Block {
	var body *etree.Element
	for _, c := range root.ChildElements() {
		if isW(c, "body") {
			body = c
			break
		}
	}
	if body == nil {
		return nil
	}

	var blocks []Block
	for _, c := range body.ChildElements() {
		switch {
		case isW(c, "p"):
			blocks = append(blocks, Block{Kind: BlockParagraph, Text: paragraphText(c)})
		case isW(c, "tbl"):
			blocks = append(blocks, Block{Kind: BlockTable, Rows: tableRows(c)})
		}
	}
	return blocks
}

func tableRows(tbl *etree.Element) [][]string {
	var rows [][]string
	for _, tr := range tbl.ChildElements() {
		if !isW(tr, "tr") {
			continue
		}
		var cells []string
		for _, tc := range tr.ChildElements() {
			if !isW(tc, "tc") {
				continue
			}
			var lines []string
			for _, p := range paragraphs(tc) {
				lines = append(lines, paragraphText(p))
			}
			cells = append(cells, strings.Join(lines, "\n"))
		}
		rows = append(rows, cells)
	}
	return rows
}

func nonEmptyParagraphs(root *etree.Element) []string {
	var out []string
	for _, p := range paragraphs(root) {
		if text := strings.TrimSpace(paragraphText(p)); text != "" {
			out = append(out, text)
		}
	}
	return out
}

func xlsxOutline(data []byte) (*Outline, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTemplate, err)
	}
	defer f.Close()

	out := &Outline{}
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("%w: sheet %s: %v", ErrInvalidTemplate, sheet, err)
		}
		if len(rows) > 0 {
			out.Body = append(out.Body, Block{Kind: BlockTable, Rows: rows})
		}
	}
	return out, nil
}
