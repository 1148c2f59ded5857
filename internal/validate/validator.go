/*-------------------------------------------------------------------------
 *
 * pgEdge NetSuite Connect Agent
 *
 * Portions copyright (c) 2026, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

// Package validate orchestrates the validation pipeline: name resolution,
// join validation, and dialect linting over a candidate query. Stages do
// not abort on the first finding; diagnostics accumulate so one call
// returns the complete error set, which is what a generation/retry loop
// needs.
package validate

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"pgedge-netsuite-mcp/internal/catalog"
	"pgedge-netsuite-mcp/internal/diag"
	"pgedge-netsuite-mcp/internal/joingraph"
	"pgedge-netsuite-mcp/internal/lint"
	"pgedge-netsuite-mcp/internal/resolve"
)

// Status is the terminal state of a validation call
type Status string

const (
	// StatusApproved means the SQL is fully resolved and dialect-clean
	StatusApproved Status = "approved"
	// StatusRejected means diagnostics were found and no SQL is emitted
	StatusRejected Status = "rejected"
)

// Result is the outcome of one validation call. Approved carries the
// executable SQL; Rejected carries the diagnostics and no SQL.
type Result struct {
	Status      Status    `json:"status"`
	SQL         string    `json:"sql,omitempty"`
	Diagnostics diag.List `json:"diagnostics,omitempty"`
}

// ErrEmptyInput is returned for a nil or empty candidate query. Malformed
// input is the one condition reported as an error instead of diagnostics.
var ErrEmptyInput = errors.New("empty input")

// Limits caps intent pagination. DefaultTop is applied when the intent
// asks for no TOP; zero leaves the query unpaginated. An intent asking
// for more than MaxTop rows is rejected.
type Limits struct {
	DefaultTop int
	MaxTop     int
}

// DefaultLimits mirrors the configuration defaults
var DefaultLimits = Limits{DefaultTop: 0, MaxTop: 10000}

// Validator runs the validation pipeline over one catalog. It holds no
// mutable state; any number of calls may run concurrently.
type Validator struct {
	cat    *catalog.Catalog
	names  *resolve.Resolver
	joins  *joingraph.Resolver
	linter *lint.Linter
	limits Limits
}

// New creates a validator over the given catalog with the default limits
func New(cat *catalog.Catalog) *Validator {
	return NewWithLimits(cat, DefaultLimits)
}

// NewWithLimits creates a validator with operator-configured pagination
// limits
func NewWithLimits(cat *catalog.Catalog, limits Limits) *Validator {
	if limits.MaxTop == 0 {
		limits.MaxTop = DefaultLimits.MaxTop
	}
	return &Validator{
		cat:    cat,
		names:  resolve.New(cat),
		joins:  joingraph.New(cat),
		linter: lint.New(),
		limits: limits,
	}
}

// ValidateIntent validates a structured candidate query. Every stage is
// attempted even when an earlier stage produced diagnostics.
func (v *Validator) ValidateIntent(in *Intent) (*Result, error) {
	if in == nil || len(in.Tables) == 0 {
		return nil, fmt.Errorf("intent must name at least one table: %w", ErrEmptyInput)
	}
	for _, p := range in.Projections {
		if p.Aggregate != "" && !intentAggregates[strings.ToUpper(p.Aggregate)] {
			return nil, fmt.Errorf("unknown aggregate %q", p.Aggregate)
		}
	}
	for _, f := range in.Filters {
		if !intentOps[strings.ToUpper(f.Op)] {
			return nil, fmt.Errorf("unknown filter operator %q", f.Op)
		}
	}

	var diags diag.List

	// name resolution: every table and column reference, in any form,
	// mapped to its definition
	tables := make(map[string]*catalog.TableDef) // by canonical name
	var canonTables []string
	for _, name := range in.Tables {
		t, d := v.names.Table(name)
		if d != nil {
			diags = append(diags, *d)
			continue
		}
		if _, seen := tables[t.Canonical]; !seen {
			tables[t.Canonical] = t
			canonTables = append(canonTables, t.Canonical)
		}
	}
	if len(canonTables) == 0 {
		// nothing resolved; join and dialect stages have nothing to work on
		return &Result{Status: StatusRejected, Diagnostics: diags}, nil
	}
	defaultTable := canonTables[0]

	proj := make([]resolvedProjection, 0, len(in.Projections))
	for _, p := range in.Projections {
		ref, _, ds := v.resolveRef(p.Table, p.Column, defaultTable, tables)
		diags = append(diags, ds...)
		if ref == nil {
			continue
		}
		proj = append(proj, resolvedProjection{
			ref:       *ref,
			aggregate: strings.ToUpper(p.Aggregate),
			alias:     p.Alias,
		})
	}

	filters := make([]resolvedFilter, 0, len(in.Filters))
	for _, f := range in.Filters {
		ref, col, ds := v.resolveRef(f.Table, f.Column, defaultTable, tables)
		diags = append(diags, ds...)
		if ref == nil {
			continue
		}
		op := strings.ToUpper(f.Op)
		if d := checkLiteralType(col, op, f.Value, *ref); d != nil {
			diags = append(diags, *d)
		}
		filters = append(filters, resolvedFilter{ref: *ref, op: op, value: f.Value})
	}

	order := make([]resolvedOrder, 0, len(in.OrderBy))
	for _, o := range in.OrderBy {
		// an ORDER BY term may name a projection alias instead of a column
		if o.Table == "" && isProjectionAlias(in, o.Column) {
			order = append(order, resolvedOrder{expr: o.Column, desc: o.Desc})
			continue
		}
		ref, _, ds := v.resolveRef(o.Table, o.Column, defaultTable, tables)
		diags = append(diags, ds...)
		if ref == nil {
			continue
		}
		order = append(order, resolvedOrder{expr: ref.sql(len(canonTables) > 1), desc: o.Desc})
	}

	// join validation over canonical names
	canonJoins, ds := v.canonicalizeJoins(in.Joins, defaultTable)
	diags = append(diags, ds...)
	plan, jdiags := v.joins.Resolve(canonTables, canonJoins)
	diags = append(diags, jdiags...)

	var joins []joinClause
	fromLive := []string{tables[defaultTable].Live}
	if plan != nil {
		joins = v.renderJoins(plan, defaultTable)
	}

	top := in.Top
	if top <= 0 {
		top = v.limits.DefaultTop
	}
	if top > v.limits.MaxTop {
		diags = append(diags, diag.Newf(diag.StageDialect, diag.ForbiddenSyntax,
			fmt.Sprintf("TOP %d", top),
			"TOP %d exceeds the maximum of %d rows", top, v.limits.MaxTop))
	}

	// dialect check runs against the SQL that would be emitted, so a bad
	// filter literal is reported even when join validation already failed
	sql := buildIntentSQL(top, proj, filters, order, fromLive, joins)
	diags = append(diags, v.linter.Lint(sql)...)

	if len(diags) > 0 {
		return &Result{Status: StatusRejected, Diagnostics: diags}, nil
	}
	return &Result{Status: StatusApproved, SQL: sql}, nil
}

// resolveRef resolves a (table, column) pair in any name form, defaulting
// the table. Returns nil and diagnostics when either part is unknown.
func (v *Validator) resolveRef(table, column, defaultTable string,
	known map[string]*catalog.TableDef) (*resolvedRef, *catalog.ColumnDef, diag.List) {

	name := table
	if name == "" {
		name = defaultTable
	}
	t, d := v.names.Table(name)
	if d != nil {
		return nil, nil, diag.List{*d}
	}
	if _, ok := known[t.Canonical]; !ok && table != "" {
		return nil, nil, diag.List{diag.Newf(diag.StageNameResolution, diag.UnknownTable, name,
			"table %q is referenced but not listed in the intent tables", name)}
	}
	col, d := v.names.Column(t, column)
	if d != nil {
		return nil, nil, diag.List{*d}
	}
	return &resolvedRef{
		tableCanonical: t.Canonical,
		tableLive:      t.Live,
		columnLive:     col.Live,
	}, col, nil
}

// canonicalizeJoins resolves every name in the explicit join predicates so
// the graph sees canonical forms only
func (v *Validator) canonicalizeJoins(joins []joingraph.Predicate, defaultTable string) ([]joingraph.Predicate, diag.List) {
	var out []joingraph.Predicate
	var diags diag.List
	for _, j := range joins {
		canon := joingraph.Predicate{}
		ok := true

		canon.LeftTable, canon.LeftColumns, ok = v.canonicalSide(j.LeftTable, j.LeftColumns, defaultTable, &diags)
		if rt, rc, rok := v.canonicalSide(j.RightTable, j.RightColumns, defaultTable, &diags); rok {
			canon.RightTable, canon.RightColumns = rt, rc
		} else {
			ok = false
		}
		if ok {
			out = append(out, canon)
		}
	}
	return out, diags
}

func (v *Validator) canonicalSide(table string, columns []string, defaultTable string,
	diags *diag.List) (string, []string, bool) {

	name := table
	if name == "" {
		name = defaultTable
	}
	t, d := v.names.Table(name)
	if d != nil {
		*diags = append(*diags, *d)
		return "", nil, false
	}
	canonCols := make([]string, 0, len(columns))
	ok := true
	for _, c := range columns {
		col, d := v.names.Column(t, c)
		if d != nil {
			*diags = append(*diags, *d)
			ok = false
			continue
		}
		canonCols = append(canonCols, col.Canonical)
	}
	return t.Canonical, canonCols, ok
}

// renderJoins orders the plan steps starting from the intent's first table
// and renders each as a JOIN clause over live identifiers
func (v *Validator) renderJoins(plan *joingraph.Plan, first string) []joinClause {
	joined := map[string]bool{first: true}
	var out []joinClause
	steps := append([]joingraph.Step(nil), plan.Steps...)

	for progress := true; progress && len(steps) > 0; {
		progress = false
		var deferred []joingraph.Step
		for _, s := range steps {
			from, to := s.Edge.FromTable, s.Edge.ToTable
			var newTable string
			switch {
			case joined[from] && joined[to]:
				// extra constraint between already-joined tables
				if len(out) > 0 {
					out[len(out)-1].conditions = append(out[len(out)-1].conditions, v.onConditions(s.Edge)...)
				}
				progress = true
				continue
			case joined[from]:
				newTable = to
			case joined[to]:
				newTable = from
			default:
				deferred = append(deferred, s)
				continue
			}
			joined[newTable] = true
			t, _ := v.cat.LookupTable(newTable)
			out = append(out, joinClause{table: t.Live, conditions: v.onConditions(s.Edge)})
			progress = true
		}
		steps = deferred
	}
	return out
}

// onConditions renders the full column set of an edge as equality
// conditions; composite groups always bind every member (invariant 2)
func (v *Validator) onConditions(e *catalog.ForeignKeyEdge) []string {
	from, _ := v.cat.LookupTable(e.FromTable)
	to, _ := v.cat.LookupTable(e.ToTable)
	conds := make([]string, len(e.FromColumns))
	for i := range e.FromColumns {
		fc, _ := from.Column(e.FromColumns[i])
		tc, _ := to.Column(e.ToColumns[i])
		conds[i] = fmt.Sprintf("%s.%s = %s.%s", from.Live, fc.Live, to.Live, tc.Live)
	}
	return conds
}

var dateShapedLiteral = regexp.MustCompile(
	`^'(\d{4}-\d{2}-\d{2}([ T]\d{2}:\d{2}(:\d{2})?)?|\d{1,2}/\d{1,2}/\d{2,4})'$`)

// checkLiteralType reports a TypeMismatch when a filter literal cannot fit
// the column's SQL type. Date-shaped strings against TIMESTAMP columns are
// left to the dialect linter, which reports the more specific
// InvalidDateLiteral.
func checkLiteralType(col *catalog.ColumnDef, op, value string, ref resolvedRef) *diag.Diagnostic {
	if op == "IS NULL" || op == "IS NOT NULL" {
		return nil
	}
	family := classifyLiteral(value)
	if family == literalOther {
		return nil // expression literals are passed through to the linter
	}

	name := ref.tableCanonical + "." + ref.columnLive
	mismatch := func(want string) *diag.Diagnostic {
		d := diag.Newf(diag.StageNameResolution, diag.TypeMismatch, name,
			"column %s has type %s; literal %s does not fit (%s expected)",
			name, col.Type, value, want)
		return &d
	}

	switch col.Type {
	case catalog.TypeNumber:
		if family != literalNumber {
			return mismatch("a numeric literal")
		}
	case catalog.TypeVarchar2:
		if family == literalNumber || family == literalDate {
			return mismatch("a quoted string")
		}
	case catalog.TypeTimestamp:
		if family == literalNumber {
			return mismatch("a TO_DATE(...) expression")
		}
		if family == literalString && !dateShapedLiteral.MatchString(strings.TrimSpace(value)) {
			return mismatch("a TO_DATE(...) expression")
		}
	}
	return nil
}

func isProjectionAlias(in *Intent, name string) bool {
	for _, p := range in.Projections {
		if p.Alias != "" && strings.EqualFold(p.Alias, name) {
			return true
		}
	}
	return false
}
