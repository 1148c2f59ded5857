/*-------------------------------------------------------------------------
 *
 * pgEdge NetSuite Connect Agent
 *
 * Portions copyright (c) 2026, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

package catalog

import (
	"fmt"
	"strings"
)

// SQLType is a column type as exposed by the Connect endpoint
type SQLType string

const (
	// TypeNumber is the NUMBER type (ids, amounts, quantities)
	TypeNumber SQLType = "NUMBER"
	// TypeVarchar2 is the VARCHAR2 type (text, codes, single-char flags)
	TypeVarchar2 SQLType = "VARCHAR2"
	// TypeTimestamp is the TIMESTAMP type (all date and datetime columns)
	TypeTimestamp SQLType = "TIMESTAMP"
)

// FlagLength is the maximum VARCHAR2 length for a column to be treated as a
// boolean flag holding the 'T'/'F' literals
const FlagLength = 4

// ColumnRef names a column by canonical table and column name
type ColumnRef struct {
	Table  string `yaml:"table" json:"table"`
	Column string `yaml:"column" json:"column"`
}

// String renders the reference as table.column
func (r ColumnRef) String() string {
	return r.Table + "." + r.Column
}

// ColumnDef describes one column and its three name forms. The same physical
// column is known by a documented name (Connect Browser docs, underscored),
// a live name (what the endpoint actually accepts, often renamed), and a
// canonical name (what a query generator is told to use).
type ColumnDef struct {
	Canonical   string     `yaml:"canonical"`
	Documented  string     `yaml:"documented"`
	Live        string     `yaml:"live"`
	Type        SQLType    `yaml:"type"`
	Length      *int       `yaml:"length,omitempty"`
	Precision   *int       `yaml:"precision,omitempty"`
	Scale       *int       `yaml:"scale,omitempty"`
	Description string     `yaml:"description,omitempty"`
	References  *ColumnRef `yaml:"references,omitempty"`
}

// IsFlag reports whether the column is a boolean flag: a short fixed-length
// VARCHAR2 holding 'T' or 'F'
func (c *ColumnDef) IsFlag() bool {
	return c.Type == TypeVarchar2 && c.Length != nil && *c.Length <= FlagLength
}

// TableDef describes one table, its columns in documented order, and its
// primary key (single-column or fully composite)
type TableDef struct {
	Canonical   string      `yaml:"canonical"`
	Documented  string      `yaml:"documented"`
	Live        string      `yaml:"live"`
	Description string      `yaml:"description,omitempty"`
	DomainTags  []string    `yaml:"domain_tags,omitempty"`
	PrimaryKey  []string    `yaml:"primary_key"`
	Columns     []ColumnDef `yaml:"columns"`
}

// Column returns the column with the given canonical name
func (t *TableDef) Column(canonical string) (*ColumnDef, bool) {
	for i := range t.Columns {
		if t.Columns[i].Canonical == canonical {
			return &t.Columns[i], true
		}
	}
	return nil, false
}

// ForeignKeyEdge is one directed foreign-key reference. A composite key is a
// single edge whose column lists carry every member in key-sequence order;
// the group id ties the edge back to the schema definition record.
type ForeignKeyEdge struct {
	FromTable   string   `yaml:"from"`
	FromColumns []string `yaml:"from_columns"`
	ToTable     string   `yaml:"to"`
	ToColumns   []string `yaml:"to_columns"`
	Group       string   `yaml:"group"`
}

// Composite reports whether the edge binds more than one column
func (e *ForeignKeyEdge) Composite() bool {
	return len(e.FromColumns) > 1
}

// String renders the edge as from(cols) -> to(cols) for diagnostics
func (e *ForeignKeyEdge) String() string {
	return fmt.Sprintf("%s(%s) -> %s(%s)",
		e.FromTable, strings.Join(e.FromColumns, ", "),
		e.ToTable, strings.Join(e.ToColumns, ", "))
}

// Synonym declares that a set of canonical columns in one table
// intentionally share a name form (e.g. one documented column that maps to
// two business-meaningful live columns). Without a declaration such a
// collision fails catalog construction.
type Synonym struct {
	Table   string   `yaml:"table"`
	Columns []string `yaml:"columns"`
	Reason  string   `yaml:"reason,omitempty"`
}

// Fold normalizes a name for matching: lower-cased with underscores
// removed. Folding is used only to compare name forms; output always uses
// the live spelling.
func Fold(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), "_", "")
}
