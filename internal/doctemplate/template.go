// =============================================================================
// Invoicer - Document Template Module
// =============================================================================
//
// This module loads invoice templates and produces filled copies of them.
// A template is an office document containing literal placeholder tokens of
// the form {{Name}}. Two containers are supported:
//
//   | Container | Matching unit         | Parts searched                      |
//   |-----------|-----------------------|-------------------------------------|
//   | .docx     | paragraph (w:p)       | document body, tables, headers,     |
//   |           |                       | footers                             |
//   | .xlsx     | cell                  | every cell of every worksheet       |
//
// RUN FRAGMENTATION:
//   Word splits a paragraph into runs whenever formatting changes, and often
//   when it does not (spell checking, revision ids). A token typed as
//   "{{Client}}" may end up stored as "{{" + "Client" + "}}" in three runs.
//   Matching is therefore done against the paragraph's concatenated text:
//     1. Concatenate the text of every run of the paragraph
//     2. Apply all replacements to the concatenated string
//     3. If the text changed, write it into the first run (keeping that
//        run's formatting) and blank every other run
//   Paragraphs whose text does not change are left untouched.
//
// IMMUTABILITY:
//   A Template only holds the original bytes. Every Fill parses a fresh copy,
//   so one Template can be filled from many goroutines at once.
//
// =============================================================================

package doctemplate

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrTemplateNotFound is returned when the template file does not exist.
	ErrTemplateNotFound = errors.New("template not found")

	// ErrInvalidTemplate is returned when the template cannot be parsed.
	ErrInvalidTemplate = errors.New("invalid template")
)

// =============================================================================
// TYPES
// =============================================================================

// Kind identifies the template container format.
type Kind string

const (
	KindDOCX Kind = "docx"
	KindXLSX Kind = "xlsx"
)

// Ext returns the file extension of the container, with the leading dot.
func (k Kind) Ext() string {
	return "." + string(k)
}

// Replacer rewrites text, substituting every known placeholder token.
// Unknown tokens must be left as they are.
type Replacer interface {
	Apply(text string) string
}

// ReplacerFunc adapts a plain function to the Replacer interface.
type ReplacerFunc func(string) string

// Apply calls f(text).
func (f ReplacerFunc) Apply(text string) string { return f(text) }

// Template is a loaded, validated template.
type Template struct {
	name string
	kind Kind
	data []byte
}

// Filled is a template with its placeholders substituted, ready to render.
type Filled struct {
	// Kind is the container format of Data.
	Kind Kind

	// Data is the complete filled document.
	Data []byte
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads and validates the template at path.
//
// RETURNS:
//   - ErrTemplateNotFound (wrapped) if the file does not exist.
//   - ErrInvalidTemplate (wrapped) if it is not a readable docx or xlsx.
func Load(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidTemplate, path, err)
	}
	return Parse(filepath.Base(path), data)
}

// Parse validates template bytes. The container format is detected from the
// archive contents; name is only used in error messages.
func Parse(name string, data []byte) (*Template, error) {
	kind, err := detectKind(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidTemplate, name, err)
	}

	t := &Template{name: name, kind: kind, data: data}

	// A dry fill with an identity replacer parses every part the real fill
	// will touch, so a broken template fails here and not per row.
	if _, err := t.Fill(ReplacerFunc(func(s string) string { return s })); err != nil {
		return nil, err
	}

	return t, nil
}

// detectKind sniffs the archive for the main part of each container.
func detectKind(data []byte) (Kind, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("not an office document: %w", err)
	}
	for _, f := range zr.File {
		switch f.Name {
		case docxMainPart:
			return KindDOCX, nil
		case xlsxMainPart:
			return KindXLSX, nil
		}
	}
	return "", errors.New("neither a .docx nor a .xlsx document")
}

// Name returns the template file name.
func (t *Template) Name() string { return t.name }

// Kind returns the container format.
func (t *Template) Kind() Kind { return t.kind }

// =============================================================================
// FILLING
// =============================================================================

// Fill returns a filled copy of the template. The template itself is never
// modified.
func (t *Template) Fill(r Replacer) (*Filled, error) {
	var (
		out []byte
		err error
	)

	switch t.kind {
	case KindDOCX:
		out, err = fillDOCX(t.data, r)
	case KindXLSX:
		out, err = fillXLSX(t.data, r)
	default:
		err = fmt.Errorf("unsupported kind %q", t.kind)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidTemplate, t.name, err)
	}

	return &Filled{Kind: t.kind, Data: out}, nil
}
