package doctemplate

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/beevik/etree"
)

const (
	docxMainPart = "word/document.xml"
	docxMainRels = "word/_rels/document.xml.rels"
)

// fillDOCX rewrites the main document part and every header/footer part.
// Parts whose paragraphs did not change are copied byte for byte, including
// their zip headers, so output only differs where a placeholder was found.
func fillDOCX(data []byte, r Replacer) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}

	targets, err := docxTextParts(zr)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, f := range zr.File {
		if !targets[f.Name] {
			if err := zw.Copy(f); err != nil {
				return nil, fmt.Errorf("copy %s: %w", f.Name, err)
			}
			continue
		}

		raw, err := readZipFile(f)
		if err != nil {
			return nil, err
		}

		filled, changed, err := fillPart(raw, r)
		if err != nil {
			return nil, fmt.Errorf("part %s: %w", f.Name, err)
		}
		if !changed {
			if err := zw.Copy(f); err != nil {
				return nil, fmt.Errorf("copy %s: %w", f.Name, err)
			}
			continue
		}

		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     f.Name,
			Method:   f.Method,
			Modified: f.Modified,
		})
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", f.Name, err)
		}
		if _, err := w.Write(filled); err != nil {
			return nil, fmt.Errorf("write %s: %w", f.Name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close archive: %w", err)
	}
	return buf.Bytes(), nil
}

// docxTextParts returns the set of parts searched for placeholders: the main
// document plus every header and footer it references.
func docxTextParts(zr *zip.Reader) (map[string]bool, error) {
	targets := map[string]bool{}

	var rels *zip.File
	for _, f := range zr.File {
		switch f.Name {
		case docxMainPart:
			targets[f.Name] = true
		case docxMainRels:
			rels = f
		}
	}
	if !targets[docxMainPart] {
		return nil, fmt.Errorf("missing %s", docxMainPart)
	}
	if rels == nil {
		return targets, nil
	}

	raw, err := readZipFile(rels)
	if err != nil {
		return nil, err
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", docxMainRels, err)
	}
	if doc.Root() == nil {
		return targets, nil
	}

	for _, rel := range doc.Root().ChildElements() {
		if rel.Tag != "Relationship" || rel.SelectAttrValue("TargetMode", "") == "External" {
			continue
		}
		relType := rel.SelectAttrValue("Type", "")
		if !strings.HasSuffix(relType, "/header") && !strings.HasSuffix(relType, "/footer") {
			continue
		}
		targets[resolvePartName(rel.SelectAttrValue("Target", ""))] = true
	}

	return targets, nil
}

// resolvePartName turns a relationship target of word/document.xml into an
// archive entry name.
func resolvePartName(target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	return path.Join("word", target)
}

// fillPart applies r to every paragraph of one XML part.
func fillPart(raw []byte, r Replacer) ([]byte, bool, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(raw); err != nil {
		return nil, false, fmt.Errorf("parse xml: %w", err)
	}
	if doc.Root() == nil {
		return nil, false, fmt.Errorf("empty xml part")
	}

	changed := false
	for _, p := range paragraphs(doc.Root()) {
		if replaceInParagraph(p, r) {
			changed = true
		}
	}
	if !changed {
		return raw, false, nil
	}

	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, false, fmt.Errorf("serialize xml: %w", err)
	}
	return out, true, nil
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.Name, err)
	}
	return data, nil
}
