/*-------------------------------------------------------------------------
 *
 * pgEdge NetSuite Connect Agent
 *
 * Portions copyright (c) 2026, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

// Package resolve maps table and column references given in any of the
// three name forms (canonical, documented, live) onto the live identifiers
// the Connect endpoint accepts. It is the only place in the repo that
// performs name matching.
package resolve

import (
	"pgedge-netsuite-mcp/internal/catalog"
	"pgedge-netsuite-mcp/internal/diag"
)

// Resolver resolves names against one catalog. Stateless; cheap to
// construct per validation call.
type Resolver struct {
	cat *catalog.Catalog
}

// New creates a resolver over the given catalog
func New(cat *catalog.Catalog) *Resolver {
	return &Resolver{cat: cat}
}

// Table resolves a table reference in any name form. On a miss the second
// return value is an UnknownTable diagnostic.
func (r *Resolver) Table(name string) (*catalog.TableDef, *diag.Diagnostic) {
	t, ok := r.cat.LookupTable(name)
	if !ok {
		d := diag.Newf(diag.StageNameResolution, diag.UnknownTable, name,
			"no table matches %q in canonical, documented, or live form", name)
		return nil, &d
	}
	return t, nil
}

// Column resolves a column of an already-resolved table in any name form.
// On a miss the second return value is an UnknownColumn diagnostic.
func (r *Resolver) Column(table *catalog.TableDef, name string) (*catalog.ColumnDef, *diag.Diagnostic) {
	col, ok := r.cat.LookupColumn(table, name)
	if !ok {
		d := diag.Newf(diag.StageNameResolution, diag.UnknownColumn, table.Canonical+"."+name,
			"table %q has no column matching %q in any name form", table.Canonical, name)
		return nil, &d
	}
	return col, nil
}

// Live resolves a table and column given in any form to the live
// identifiers for both. Output always uses the live spelling, regardless of
// which form matched.
func (r *Resolver) Live(table, column string) (liveTable, liveColumn string, diags diag.List) {
	t, d := r.Table(table)
	if d != nil {
		return "", "", diag.List{*d}
	}
	col, d := r.Column(t, column)
	if d != nil {
		return t.Live, "", diag.List{*d}
	}
	return t.Live, col.Live, nil
}
