package doctemplate

import (
	"strings"

	"github.com/beevik/etree"
)

// wml is the namespace prefix WordprocessingML parts use for w:p, w:r, w:t.
const wml = "w"

// runContainers are paragraph children that wrap runs without starting a new
// paragraph. Their runs belong to the enclosing paragraph's text.
var runContainers = map[string]bool{
	"hyperlink": true,
	"smartTag":  true,
	"ins":       true,
	"fldSimple": true,
	"customXml": true,
}

// runContent are run children that carry text. Everything else in a run
// (w:rPr, drawings, field chars) is kept when the run's text is rewritten.
var runContent = map[string]bool{
	"t":             true,
	"tab":           true,
	"br":            true,
	"cr":            true,
	"noBreakHyphen": true,
}

func isW(e *etree.Element, tag string) bool {
	return e.Space == wml && e.Tag == tag
}

// paragraphs returns every w:p below root in document order, including
// paragraphs in table cells, text boxes and content controls.
func paragraphs(root *etree.Element) []*etree.Element {
	var out []*etree.Element
	var walk func(*etree.Element)
	walk = func(e *etree.Element) {
		if isW(e, "p") {
			out = append(out, e)
		}
		for _, c := range e.ChildElements() {
			walk(c)
		}
	}
	walk(root)
	return out
}

// paragraphRuns returns the runs of p, in order, including runs wrapped in
// hyperlinks and similar containers. Runs of nested paragraphs are not
// included.
func paragraphRuns(p *etree.Element) []*etree.Element {
	var runs []*etree.Element
	var collect func(*etree.Element)
	collect = func(e *etree.Element) {
		for _, c := range e.ChildElements() {
			switch {
			case isW(c, "r"):
				runs = append(runs, c)
			case c.Space == wml && runContainers[c.Tag]:
				collect(c)
			}
		}
	}
	collect(p)
	return runs
}

// runText returns the visible text of a run. Tabs and breaks map to "\t"
// and "\n".
func runText(r *etree.Element) string {
	var sb strings.Builder
	for _, c := range r.ChildElements() {
		if c.Space != wml {
			continue
		}
		switch c.Tag {
		case "t":
			sb.WriteString(c.Text())
		case "tab":
			sb.WriteByte('\t')
		case "br", "cr":
			sb.WriteByte('\n')
		case "noBreakHyphen":
			sb.WriteByte('-')
		}
	}
	return sb.String()
}

// paragraphText concatenates the text of every run of p.
func paragraphText(p *etree.Element) string {
	var sb strings.Builder
	for _, r := range paragraphRuns(p) {
		sb.WriteString(runText(r))
	}
	return sb.String()
}

// setRunText replaces the text content of a run, keeping its properties.
func setRunText(r *etree.Element, text string) {
	for _, c := range r.ChildElements() {
		if c.Space == wml && runContent[c.Tag] {
			r.RemoveChild(c)
		}
	}

	var chunk strings.Builder
	flush := func() {
		if chunk.Len() == 0 {
			return
		}
		t := r.CreateElement("w:t")
		t.CreateAttr("xml:space", "preserve")
		t.SetText(chunk.String())
		chunk.Reset()
	}

	for _, ch := range text {
		switch ch {
		case '\t':
			flush()
			r.CreateElement("w:tab")
		case '\n':
			flush()
			r.CreateElement("w:br")
		default:
			chunk.WriteRune(ch)
		}
	}
	flush()
}

// replaceInParagraph substitutes placeholders against the paragraph's
// concatenated text. On change the whole result goes into the first run and
// the remaining runs are emptied. Reports whether p was modified.
func replaceInParagraph(p *etree.Element, r Replacer) bool {
	runs := paragraphRuns(p)
	if len(runs) == 0 {
		return false
	}

	var sb strings.Builder
	for _, run := range runs {
		sb.WriteString(runText(run))
	}
	full := sb.String()

	replaced := r.Apply(full)
	if replaced == full {
		return false
	}

	setRunText(runs[0], replaced)
	for _, run := range runs[1:] {
		setRunText(run, "")
	}
	return true
}
