package config

import "fmt"

// FieldMapping binds logical placeholder names to data source column names.
// It is built once from the configuration and only exposes read accessors,
// so it can be shared by concurrent fills.
type FieldMapping struct {
	columns      map[string]string
	headerFields []string
	lineItems    int
}

// NewFieldMapping copies overrides so later changes to the caller's map do
// not leak into the mapping.
func NewFieldMapping(overrides map[string]string, headerFields []string, lineItems int) *FieldMapping {
	columns := make(map[string]string, len(overrides))
	for name, column := range overrides {
		columns[name] = column
	}
	if len(headerFields) == 0 {
		headerFields = DefaultHeaderFields
	}
	return &FieldMapping{
		columns:      columns,
		headerFields: append([]string(nil), headerFields...),
		lineItems:    lineItems,
	}
}

// Column returns the data source column for a logical name. Unmapped names
// resolve to themselves.
func (m *FieldMapping) Column(name string) string {
	if column, ok := m.columns[name]; ok {
		return column
	}
	return name
}

// HeaderFields returns the non-line-item placeholder names in template order.
func (m *FieldMapping) HeaderFields() []string {
	return append([]string(nil), m.headerFields...)
}

// LineItems returns the number of line item slots.
func (m *FieldMapping) LineItems() int {
	return m.lineItems
}

// Columns lists every column the mapping reads, header fields first, then
// Service/Qty/Price per line.
func (m *FieldMapping) Columns() []string {
	out := make([]string, 0, len(m.headerFields)+3*m.lineItems)
	for _, name := range m.headerFields {
		out = append(out, m.Column(name))
	}
	for i := 1; i <= m.lineItems; i++ {
		out = append(out,
			m.Column(ServiceField(i)),
			m.Column(QtyField(i)),
			m.Column(PriceField(i)),
		)
	}
	return out
}

// ServiceField, QtyField and PriceField name the logical fields of line i.
func ServiceField(i int) string { return fmt.Sprintf("Service %d", i) }
func QtyField(i int) string     { return fmt.Sprintf("Qty %d", i) }
func PriceField(i int) string   { return fmt.Sprintf("Price %d", i) }
