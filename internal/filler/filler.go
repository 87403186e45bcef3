// =============================================================================
// Invoicer - Template Filler
// =============================================================================
//
// The filler turns one data row into the placeholder values of one invoice
// and applies them to a template.
//
// RESOLUTION ORDER:
//   1. Header fields (Client, PIC, ..., Due Date), looked up through the
//      field mapping and trimmed
//   2. Line items 1..N: Service, Qty, Price, Subtotal
//   3. Total and Terbilang (the total in words)
//
// LINE ITEM RULES:
//   | Service  | Qty placeholder        | Price / Subtotal        | Adds    |
//   |----------|------------------------|-------------------------|---------|
//   | empty    | ""                     | ""                      | 0       |
//   | present  | integer form if        | formatted amount; a     | Qty x   |
//   |          | numeric, else verbatim | non-numeric Price is    | Price,  |
//   |          |                        | echoed                  | or 0    |
//
// Nothing in resolution can fail. Missing columns read as "", unparsable
// numbers count as zero, and a negative product is clamped to zero.
//
// =============================================================================

package filler

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/invoicer/internal/config"
	"github.com/ginjaninja78/invoicer/internal/currency"
	"github.com/ginjaninja78/invoicer/internal/doctemplate"
	"github.com/ginjaninja78/invoicer/internal/types"
)

// Placeholder names that are not read from the row.
const (
	TotalField     = "Total"
	TerbilangField = "Terbilang"
)

// Token wraps a logical name in the template delimiters.
func Token(name string) string {
	return "{{" + name + "}}"
}

// SubtotalField names the computed subtotal of line i.
func SubtotalField(i int) string { return fmt.Sprintf("Subtotal %d", i) }

// =============================================================================
// PLACEHOLDER SET
// =============================================================================

// PlaceholderSet is the ordered token -> value mapping of one invoice.
// It implements doctemplate.Replacer.
type PlaceholderSet struct {
	tokens []string
	values map[string]string
}

func newPlaceholderSet(capacity int) *PlaceholderSet {
	return &PlaceholderSet{
		tokens: make([]string, 0, capacity),
		values: make(map[string]string, capacity),
	}
}

// set records the value for a logical name. Re-setting a name keeps its
// original position.
func (p *PlaceholderSet) set(name, value string) {
	token := Token(name)
	if _, ok := p.values[token]; !ok {
		p.tokens = append(p.tokens, token)
	}
	p.values[token] = value
}

// Get returns the value resolved for a logical name.
func (p *PlaceholderSet) Get(name string) (string, bool) {
	v, ok := p.values[Token(name)]
	return v, ok
}

// Value returns the value bound to a token such as "{{Client}}".
func (p *PlaceholderSet) Value(token string) string { return p.values[token] }

// Tokens returns the tokens in resolution order.
func (p *PlaceholderSet) Tokens() []string {
	return append([]string(nil), p.tokens...)
}

// Apply replaces every known token in text, in resolution order. Unknown
// tokens are left as they are.
func (p *PlaceholderSet) Apply(text string) string {
	if !strings.Contains(text, "{{") {
		return text
	}
	for _, token := range p.tokens {
		text = strings.ReplaceAll(text, token, p.values[token])
	}
	return text
}

// =============================================================================
// INVOICE
// =============================================================================

// Line is one resolved line item.
type Line struct {
	Index    int
	Present  bool
	Service  string
	Qty      string
	Price    string
	Subtotal decimal.Decimal
}

// Invoice is the resolved content of one row.
type Invoice struct {
	Placeholders *PlaceholderSet
	Lines        []Line
	Total        decimal.Decimal
}

// =============================================================================
// FILLER
// =============================================================================

// Filler resolves rows against an immutable field mapping. It holds no
// per-row state and is safe for concurrent use.
type Filler struct {
	mapping     *config.FieldMapping
	formatter   *currency.Formatter
	transformer *Transformer
}

// New builds a Filler from the configuration.
//
// RETURNS:
//   - An error if a transformation rule cannot be compiled.
func New(cfg *config.Config) (*Filler, error) {
	transformer, err := NewTransformer(cfg.TransformationRules)
	if err != nil {
		return nil, err
	}
	return &Filler{
		mapping:     cfg.Mapping(),
		formatter:   currency.NewFormatter(cfg.Currency),
		transformer: transformer,
	}, nil
}

// Resolve computes the invoice of one row. The row is not modified.
func (f *Filler) Resolve(row types.Row) *Invoice {
	row = f.transformer.Apply(row)

	lineItems := f.mapping.LineItems()
	headers := f.mapping.HeaderFields()

	inv := &Invoice{
		Placeholders: newPlaceholderSet(len(headers) + 4*lineItems + 2),
		Lines:        make([]Line, 0, lineItems),
		Total:        decimal.Zero,
	}
	p := inv.Placeholders

	for _, name := range headers {
		p.set(name, f.lookup(row, name))
	}

	for i := 1; i <= lineItems; i++ {
		line := f.resolveLine(row, i)
		inv.Lines = append(inv.Lines, line)
		inv.Total = inv.Total.Add(line.Subtotal)

		if !line.Present {
			p.set(config.ServiceField(i), "")
			p.set(config.QtyField(i), "")
			p.set(config.PriceField(i), "")
			p.set(SubtotalField(i), "")
			continue
		}
		p.set(config.ServiceField(i), line.Service)
		p.set(config.QtyField(i), line.Qty)
		p.set(config.PriceField(i), line.Price)
		p.set(SubtotalField(i), f.formatter.FormatAmount(line.Subtotal))
	}

	p.set(TotalField, f.formatter.FormatAmount(inv.Total))
	p.set(TerbilangField, f.formatter.AmountInWords(inv.Total))

	return inv
}

// Fill resolves row and applies it to tpl.
//
// RETURNS:
//   - The filled document.
//   - An error only if the template itself cannot be processed.
func (f *Filler) Fill(tpl *doctemplate.Template, row types.Row) (*doctemplate.Filled, *Invoice, error) {
	inv := f.Resolve(row)
	filled, err := tpl.Fill(inv.Placeholders)
	if err != nil {
		return nil, nil, err
	}
	return filled, inv, nil
}

// lookup reads a logical field through the mapping.
func (f *Filler) lookup(row types.Row, name string) string {
	return row.Text(f.mapping.Column(name))
}

func (f *Filler) resolveLine(row types.Row, i int) Line {
	line := Line{Index: i, Subtotal: decimal.Zero}

	line.Service = f.lookup(row, config.ServiceField(i))
	if line.Service == "" {
		return line
	}
	line.Present = true

	rawQty := f.lookup(row, config.QtyField(i))
	rawPrice := f.lookup(row, config.PriceField(i))

	qty, qtyOK := currency.ParseAmount(rawQty)
	price, priceOK := currency.ParseAmount(rawPrice)

	switch {
	case rawQty == "":
		line.Qty = ""
	case qtyOK:
		line.Qty = qty.Truncate(0).String()
	default:
		line.Qty = rawQty
	}

	line.Price = f.formatter.FormatAmount(rawPrice)

	if qtyOK && priceOK {
		if sub := qty.Mul(price); sub.IsPositive() {
			line.Subtotal = sub
		}
	}
	return line
}
