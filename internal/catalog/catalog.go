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
)

// Catalog is the immutable, in-memory model of one schema release. It is
// built once, verified eagerly, and then shared by any number of concurrent
// readers; there is no mutation path after Build returns.
type Catalog struct {
	release string
	tables  []TableDef

	// one table index per name form so lookup precedence stays explicit
	tablesByCanonical  map[string]*TableDef
	tablesByDocumented map[string]*TableDef
	tablesByLive       map[string]*TableDef

	// per-table column indexes, keyed by canonical table name
	columns map[string]*columnIndex

	edges []ForeignKeyEdge
	// both directions: edgesOut[t] has edges owned by t, edgesIn[t] the
	// edges referencing t
	edgesOut map[string][]*ForeignKeyEdge
	edgesIn  map[string][]*ForeignKeyEdge

	synonyms []Synonym
}

type columnIndex struct {
	byCanonical  map[string]*ColumnDef
	byDocumented map[string]*ColumnDef
	byLive       map[string]*ColumnDef
}

// Build constructs and verifies a catalog from a parsed definition.
// Verification is eager and fatal: a definition with dangling references,
// undeclared alias collisions, or malformed keys cannot serve any request,
// so construction fails instead of publishing a partial catalog.
func Build(def *Definition) (*Catalog, error) {
	c := &Catalog{
		release:            def.Release,
		tables:             def.Tables,
		tablesByCanonical:  make(map[string]*TableDef, len(def.Tables)),
		tablesByDocumented: make(map[string]*TableDef, len(def.Tables)),
		tablesByLive:       make(map[string]*TableDef, len(def.Tables)),
		columns:            make(map[string]*columnIndex, len(def.Tables)),
		edges:              def.ForeignKeys,
		edgesOut:           make(map[string][]*ForeignKeyEdge),
		edgesIn:            make(map[string][]*ForeignKeyEdge),
		synonyms:           def.Synonyms,
	}

	if err := c.indexTables(); err != nil {
		return nil, err
	}
	if err := c.verifyPrimaryKeys(); err != nil {
		return nil, err
	}
	if err := c.verifyReferences(); err != nil {
		return nil, err
	}
	if err := c.indexEdges(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalog) indexTables() error {
	for i := range c.tables {
		t := &c.tables[i]
		if t.Canonical == "" || t.Documented == "" || t.Live == "" {
			return fmt.Errorf("table %q: all three name forms are required", t.Canonical)
		}
		for _, idx := range []struct {
			form string
			m    map[string]*TableDef
			name string
		}{
			{"canonical", c.tablesByCanonical, t.Canonical},
			{"documented", c.tablesByDocumented, t.Documented},
			{"live", c.tablesByLive, t.Live},
		} {
			key := Fold(idx.name)
			if prev, ok := idx.m[key]; ok && prev != t {
				return fmt.Errorf("table alias collision: %s name %q of %q already names %q",
					idx.form, idx.name, t.Canonical, prev.Canonical)
			}
			idx.m[key] = t
		}

		ci, err := c.indexColumns(t)
		if err != nil {
			return err
		}
		c.columns[t.Canonical] = ci
	}
	return nil
}

func (c *Catalog) indexColumns(t *TableDef) (*columnIndex, error) {
	ci := &columnIndex{
		byCanonical:  make(map[string]*ColumnDef, len(t.Columns)),
		byDocumented: make(map[string]*ColumnDef, len(t.Columns)),
		byLive:       make(map[string]*ColumnDef, len(t.Columns)),
	}
	for i := range t.Columns {
		col := &t.Columns[i]
		if col.Canonical == "" || col.Documented == "" || col.Live == "" {
			return nil, fmt.Errorf("table %q column %q: all three name forms are required",
				t.Canonical, col.Canonical)
		}
		switch col.Type {
		case TypeNumber, TypeVarchar2, TypeTimestamp:
		default:
			return nil, fmt.Errorf("table %q column %q: unknown SQL type %q",
				t.Canonical, col.Canonical, col.Type)
		}
		for _, idx := range []struct {
			form string
			m    map[string]*ColumnDef
			name string
		}{
			{"canonical", ci.byCanonical, col.Canonical},
			{"documented", ci.byDocumented, col.Documented},
			{"live", ci.byLive, col.Live},
		} {
			key := Fold(idx.name)
			prev, ok := idx.m[key]
			if ok && prev != col {
				if !c.synonymDeclared(t.Canonical, prev.Canonical, col.Canonical) {
					return nil, fmt.Errorf(
						"column alias collision in %q: %s name %q is shared by %q and %q and no synonym is declared",
						t.Canonical, idx.form, idx.name, prev.Canonical, col.Canonical)
				}
				// declared synonym: first column in documented order wins
				continue
			}
			idx.m[key] = col
		}
	}
	return ci, nil
}

// synonymDeclared reports whether the definition explicitly allows the two
// canonical columns of a table to share a name form
func (c *Catalog) synonymDeclared(table, a, b string) bool {
	for _, s := range c.synonyms {
		if s.Table != table {
			continue
		}
		var hasA, hasB bool
		for _, col := range s.Columns {
			if col == a {
				hasA = true
			}
			if col == b {
				hasB = true
			}
		}
		if hasA && hasB {
			return true
		}
	}
	return false
}

func (c *Catalog) verifyPrimaryKeys() error {
	for i := range c.tables {
		t := &c.tables[i]
		if len(t.PrimaryKey) == 0 {
			return fmt.Errorf("table %q has no primary key", t.Canonical)
		}
		for _, pk := range t.PrimaryKey {
			if _, ok := t.Column(pk); !ok {
				return fmt.Errorf("table %q: primary key column %q does not exist", t.Canonical, pk)
			}
		}
	}
	return nil
}

// verifyReferences enforces invariant 1: every ColumnDef.references must
// point to a table+column pair present in the catalog
func (c *Catalog) verifyReferences() error {
	for i := range c.tables {
		t := &c.tables[i]
		for j := range t.Columns {
			col := &t.Columns[j]
			if col.References == nil {
				continue
			}
			target, ok := c.tablesByCanonical[Fold(col.References.Table)]
			if !ok {
				return fmt.Errorf("dangling reference: %s.%s -> unknown table %q",
					t.Canonical, col.Canonical, col.References.Table)
			}
			if _, ok := target.Column(col.References.Column); !ok {
				return fmt.Errorf("dangling reference: %s.%s -> %s has no column %q",
					t.Canonical, col.Canonical, target.Canonical, col.References.Column)
			}
		}
	}
	return nil
}

func (c *Catalog) indexEdges() error {
	groups := make(map[string]bool, len(c.edges))
	for i := range c.edges {
		e := &c.edges[i]
		if e.Group == "" {
			return fmt.Errorf("foreign key %s has no composite group id", e.String())
		}
		if groups[e.Group] {
			return fmt.Errorf("duplicate foreign key group id %q", e.Group)
		}
		groups[e.Group] = true
		if len(e.FromColumns) == 0 || len(e.FromColumns) != len(e.ToColumns) {
			return fmt.Errorf("foreign key %s: column lists must be non-empty and of equal arity", e.Group)
		}

		from, ok := c.tablesByCanonical[Fold(e.FromTable)]
		if !ok {
			return fmt.Errorf("foreign key %s: unknown table %q", e.Group, e.FromTable)
		}
		to, ok := c.tablesByCanonical[Fold(e.ToTable)]
		if !ok {
			return fmt.Errorf("foreign key %s: unknown table %q", e.Group, e.ToTable)
		}
		for _, col := range e.FromColumns {
			if _, ok := from.Column(col); !ok {
				return fmt.Errorf("foreign key %s: %s has no column %q", e.Group, from.Canonical, col)
			}
		}
		for _, col := range e.ToColumns {
			if _, ok := to.Column(col); !ok {
				return fmt.Errorf("foreign key %s: %s has no column %q", e.Group, to.Canonical, col)
			}
		}

		c.edgesOut[from.Canonical] = append(c.edgesOut[from.Canonical], e)
		c.edgesIn[to.Canonical] = append(c.edgesIn[to.Canonical], e)
	}
	return nil
}

// Release returns the schema release tag the catalog was built from
func (c *Catalog) Release() string {
	return c.release
}

// Tables returns every table definition in documented order
func (c *Catalog) Tables() []TableDef {
	return c.tables
}

// LookupTable finds a table by any name form. Precedence when forms
// collide: canonical, then documented, then live. Matching is
// case-insensitive and underscore-insensitive.
func (c *Catalog) LookupTable(name string) (*TableDef, bool) {
	key := Fold(name)
	if t, ok := c.tablesByCanonical[key]; ok {
		return t, true
	}
	if t, ok := c.tablesByDocumented[key]; ok {
		return t, true
	}
	if t, ok := c.tablesByLive[key]; ok {
		return t, true
	}
	return nil, false
}

// LookupColumn finds a column of a table by any name form, with the same
// precedence and folding as LookupTable
func (c *Catalog) LookupColumn(table *TableDef, name string) (*ColumnDef, bool) {
	ci, ok := c.columns[table.Canonical]
	if !ok {
		return nil, false
	}
	key := Fold(name)
	if col, ok := ci.byCanonical[key]; ok {
		return col, true
	}
	if col, ok := ci.byDocumented[key]; ok {
		return col, true
	}
	if col, ok := ci.byLive[key]; ok {
		return col, true
	}
	return nil, false
}

// EdgesBetween returns every foreign-key edge connecting the two tables, in
// either direction. More than one result is a real ambiguity the caller
// must surface, never resolve silently.
func (c *Catalog) EdgesBetween(a, b string) []*ForeignKeyEdge {
	var out []*ForeignKeyEdge
	for _, e := range c.edgesOut[a] {
		if e.ToTable == b {
			out = append(out, e)
		}
	}
	if a != b {
		for _, e := range c.edgesOut[b] {
			if e.ToTable == a {
				out = append(out, e)
			}
		}
	}
	return out
}

// EdgesOf returns every foreign-key edge touching the table, owned and
// referencing, for path search in both directions
func (c *Catalog) EdgesOf(table string) []*ForeignKeyEdge {
	out := make([]*ForeignKeyEdge, 0, len(c.edgesOut[table])+len(c.edgesIn[table]))
	out = append(out, c.edgesOut[table]...)
	for _, e := range c.edgesIn[table] {
		if e.FromTable == table && e.ToTable == table {
			continue // self-edge already included
		}
		out = append(out, e)
	}
	return out
}

// Edges returns every foreign-key edge in the catalog
func (c *Catalog) Edges() []ForeignKeyEdge {
	return c.edges
}

// Synonyms returns the declared synonym list
func (c *Catalog) Synonyms() []Synonym {
	return c.synonyms
}
