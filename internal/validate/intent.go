/*-------------------------------------------------------------------------
 *
 * pgEdge NetSuite Connect Agent
 *
 * Portions copyright (c) 2026, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

package validate

import (
	"fmt"
	"regexp"
	"strings"

	"pgedge-netsuite-mcp/internal/joingraph"
)

// Projection is one output column of a structured intent. Names may be in
// any form; Table defaults to the first intent table.
type Projection struct {
	Table     string `json:"table,omitempty"`
	Column    string `json:"column"`
	Aggregate string `json:"aggregate,omitempty"` // SUM, COUNT, AVG, MIN, MAX
	Alias     string `json:"alias,omitempty"`
}

// Filter is one WHERE predicate. Value is the literal exactly as it should
// appear in SQL: a number, a quoted string, or a TO_DATE(...) expression.
type Filter struct {
	Table  string `json:"table,omitempty"`
	Column string `json:"column"`
	Op     string `json:"op"`
	Value  string `json:"value"`
}

// OrderBy is one ORDER BY term. Column may also name a projection alias.
type OrderBy struct {
	Table  string `json:"table,omitempty"`
	Column string `json:"column"`
	Desc   bool   `json:"desc,omitempty"`
}

// Intent is a structured candidate query: the form a generator produces
// before any SQL text exists. All names may use any of the three forms.
type Intent struct {
	Tables      []string              `json:"tables"`
	Projections []Projection          `json:"projections"`
	Filters     []Filter              `json:"filters,omitempty"`
	Joins       []joingraph.Predicate `json:"joins,omitempty"`
	OrderBy     []OrderBy             `json:"order_by,omitempty"`
	Top         int                   `json:"top,omitempty"`
}

// filter operators the intent form accepts
var intentOps = map[string]bool{
	"=": true, "!=": true, "<>": true, "<": true, "<=": true, ">": true, ">=": true,
	"LIKE": true, "NOT LIKE": true, "IS NULL": true, "IS NOT NULL": true,
}

// aggregates the intent form accepts
var intentAggregates = map[string]bool{
	"SUM": true, "COUNT": true, "AVG": true, "MIN": true, "MAX": true,
}

// literalFamily classifies an intent filter literal for type checking
type literalFamily int

const (
	literalNumber literalFamily = iota
	literalString
	literalDate // a TO_DATE(...) expression
	literalOther
)

var (
	numberLiteral = regexp.MustCompile(`^-?\d+(\.\d+)?$`)
	stringLiteral = regexp.MustCompile(`^'(?:[^']|'')*'$`)
	toDateCall    = regexp.MustCompile(`(?i)^TO_DATE\s*\(`)
)

func classifyLiteral(value string) literalFamily {
	v := strings.TrimSpace(value)
	switch {
	case numberLiteral.MatchString(v):
		return literalNumber
	case toDateCall.MatchString(v):
		return literalDate
	case stringLiteral.MatchString(v):
		return literalString
	default:
		return literalOther
	}
}

// resolvedRef is a column reference after name resolution, carrying the
// live identifiers used for SQL output
type resolvedRef struct {
	tableCanonical string
	tableLive      string
	columnLive     string
}

func (r resolvedRef) sql(qualify bool) string {
	if qualify {
		return r.tableLive + "." + r.columnLive
	}
	return r.columnLive
}

// buildIntentSQL renders the resolved intent as dialect-correct SQL: TOP
// pagination, live identifiers only, and GROUP BY over the non-aggregated
// projections whenever an aggregate is present.
func buildIntentSQL(top int, proj []resolvedProjection, filters []resolvedFilter,
	order []resolvedOrder, fromTables []string, joins []joinClause) string {

	qualify := len(fromTables) > 1 || len(joins) > 0
	var sb strings.Builder

	sb.WriteString("SELECT ")
	if top > 0 {
		fmt.Fprintf(&sb, "TOP %d ", top)
	}

	var selects []string
	var groupBy []string
	hasAggregate := false
	for _, p := range proj {
		if p.aggregate != "" {
			hasAggregate = true
		}
	}
	for _, p := range proj {
		expr := p.ref.sql(qualify)
		if p.aggregate != "" {
			expr = p.aggregate + "(" + expr + ")"
		} else if hasAggregate {
			groupBy = append(groupBy, p.ref.sql(qualify))
		}
		if p.alias != "" {
			expr += " AS " + p.alias
		}
		selects = append(selects, expr)
	}
	if len(selects) == 0 {
		selects = []string{"*"}
	}
	sb.WriteString(strings.Join(selects, ", "))

	sb.WriteString(" FROM ")
	sb.WriteString(fromTables[0])
	for _, j := range joins {
		fmt.Fprintf(&sb, " JOIN %s ON %s", j.table, strings.Join(j.conditions, " AND "))
	}

	if len(filters) > 0 {
		var preds []string
		for _, f := range filters {
			if f.op == "IS NULL" || f.op == "IS NOT NULL" {
				preds = append(preds, f.ref.sql(qualify)+" "+f.op)
				continue
			}
			preds = append(preds, f.ref.sql(qualify)+" "+f.op+" "+f.value)
		}
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(preds, " AND "))
	}

	if len(groupBy) > 0 {
		sb.WriteString(" GROUP BY ")
		sb.WriteString(strings.Join(groupBy, ", "))
	}

	if len(order) > 0 {
		var terms []string
		for _, o := range order {
			term := o.expr
			if o.desc {
				term += " DESC"
			}
			terms = append(terms, term)
		}
		sb.WriteString(" ORDER BY ")
		sb.WriteString(strings.Join(terms, ", "))
	}

	return sb.String()
}

type resolvedProjection struct {
	ref       resolvedRef
	aggregate string
	alias     string
}

type resolvedFilter struct {
	ref   resolvedRef
	op    string
	value string
}

type resolvedOrder struct {
	expr string
	desc bool
}

// joinClause is one rendered JOIN, produced from a join plan step
type joinClause struct {
	table      string // live name of the newly joined table
	conditions []string
}
