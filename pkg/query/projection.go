// Package query builds parameterized SELECT statements over a single table
// from logical field names.
package query

import (
	"fmt"
	"strings"
)

// Projection maps logical field names to alias-qualified columns of one table.
type Projection struct {
	table   string
	alias   string
	columns map[string]string
	order   []string
}

// NewProjection creates a projection over schema.table using alias.
func NewProjection(schema, table, alias string) *Projection {
	return &Projection{
		table:   fmt.Sprintf("%s.%s %s", schema, table, alias),
		alias:   alias,
		columns: make(map[string]string),
	}
}

// Project maps field to column and appends it to the select list.
func (p *Projection) Project(column, field string) *Projection {
	qualified := p.alias + "." + column
	p.columns[field] = qualified
	p.order = append(p.order, qualified)
	return p
}

// Column returns the qualified column of field and whether it is mapped.
func (p *Projection) Column(field string) (string, bool) {
	col, ok := p.columns[field]
	return col, ok
}

// Table returns the FROM target, "schema.table alias".
func (p *Projection) Table() string {
	return p.table
}

// Columns returns the select list.
func (p *Projection) Columns() string {
	return strings.Join(p.order, ", ")
}
