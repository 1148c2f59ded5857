/*-------------------------------------------------------------------------
 *
 * pgEdge NetSuite Connect Agent
 *
 * Portions copyright (c) 2026, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

// Package joingraph computes join plans over the catalog's foreign-key
// graph. Edges are an explicit list with a reverse index, so a table pair
// connected by more than one key is enumerable and is surfaced as an
// ambiguity instead of being hidden behind an arbitrary pick.
package joingraph

import (
	"fmt"
	"sort"
	"strings"

	"pgedge-netsuite-mcp/internal/catalog"
	"pgedge-netsuite-mcp/internal/diag"
)

// Predicate is an explicit join predicate supplied by the caller: pairwise
// column equalities between two tables. Tables and columns are canonical
// names (the validator resolves name forms before the graph is consulted).
type Predicate struct {
	LeftTable    string   `json:"left_table"`
	LeftColumns  []string `json:"left_columns"`
	RightTable   string   `json:"right_table"`
	RightColumns []string `json:"right_columns"`
}

func (p Predicate) String() string {
	return fmt.Sprintf("%s(%s) = %s(%s)",
		p.LeftTable, strings.Join(p.LeftColumns, ", "),
		p.RightTable, strings.Join(p.RightColumns, ", "))
}

// Step is one confirmed join: a foreign-key edge and the direction it is
// traversed in. Every column of a composite edge is bound by the step.
type Step struct {
	Edge     *catalog.ForeignKeyEdge
	Reversed bool // true when traversed from referenced table to owner
	Explicit bool // true when the caller supplied the predicate
}

// Plan is a confirmed join plan covering every requested table
type Plan struct {
	Steps []Step
}

// Resolver computes join plans against one catalog. Stateless per call.
type Resolver struct {
	cat *catalog.Catalog
}

// New creates a join resolver over the given catalog
func New(cat *catalog.Catalog) *Resolver {
	return &Resolver{cat: cat}
}

// Resolve maps a set of requested tables and optional explicit predicates
// to a join plan. Explicit predicates are verified against the catalog, not
// trusted; pairs they leave unconnected are closed by breadth-first search
// over the foreign-key graph. Any ambiguity or partial composite binding is
// returned as diagnostics, and a plan is only returned when it is complete
// and unambiguous.
func (r *Resolver) Resolve(tables []string, explicit []Predicate) (*Plan, diag.List) {
	var diags diag.List
	plan := &Plan{}

	if len(tables) <= 1 && len(explicit) == 0 {
		return plan, nil
	}

	connected := map[string]bool{}
	if len(tables) > 0 {
		connected[tables[0]] = true
	}

	for _, pred := range explicit {
		step, ds := r.matchExplicit(pred)
		diags = append(diags, ds...)
		if step != nil {
			plan.Steps = append(plan.Steps, *step)
			connected[pred.LeftTable] = true
			connected[pred.RightTable] = true
		}
	}

	for _, t := range tables {
		if connected[t] {
			continue
		}
		path := r.shortestPath(connected, t)
		if path == nil {
			diags = append(diags, diag.Newf(diag.StageJoinValidation, diag.ForbiddenSyntax, t,
				"no foreign-key path connects %q to the other requested tables", t))
			connected[t] = true // report each unreachable table once
			continue
		}
		for i := 0; i+1 < len(path); i++ {
			step, d := r.stepBetween(path[i], path[i+1])
			if d != nil {
				diags = append(diags, *d)
				continue
			}
			plan.Steps = append(plan.Steps, *step)
		}
		for _, hop := range path {
			connected[hop] = true
		}
	}

	if len(diags) > 0 {
		return nil, diags
	}
	return plan, nil
}

// matchExplicit verifies one caller-supplied predicate against the edge
// list. The predicate must bind a real edge or composite group exactly;
// binding part of a composite group is MissingCompositeKeyPart (invariant:
// composite groups are atomic), and a predicate no edge backs at all is
// rejected outright.
func (r *Resolver) matchExplicit(pred Predicate) (*Step, diag.List) {
	if len(pred.LeftColumns) == 0 || len(pred.LeftColumns) != len(pred.RightColumns) {
		return nil, diag.List{diag.Newf(diag.StageJoinValidation, diag.ForbiddenSyntax,
			pred.LeftTable,
			"join predicate %s must supply the same number of columns on both sides", pred)}
	}

	candidates := r.cat.EdgesBetween(pred.LeftTable, pred.RightTable)
	if len(candidates) == 0 {
		return nil, diag.List{diag.Newf(diag.StageJoinValidation, diag.ForbiddenSyntax,
			pred.LeftTable+"/"+pred.RightTable,
			"no foreign key connects %q and %q", pred.LeftTable, pred.RightTable)}
	}

	// best partial overlap, kept for the MissingCompositeKeyPart message
	var partialEdge *catalog.ForeignKeyEdge
	var partialMissing []string

	for _, e := range candidates {
		for _, o := range orientPairs(pred, e) {
			missing := missingPairs(e, o.pairs)
			if len(missing) == 0 && len(o.pairs) == len(e.FromColumns) {
				return &Step{Edge: e, Reversed: o.reversed, Explicit: true}, nil
			}
			if len(missing) < len(e.FromColumns) {
				// at least one pair bound: candidate for a partial-binding report
				if partialEdge == nil || len(missing) < len(partialMissing) {
					partialEdge = e
					partialMissing = missing
				}
			}
		}
	}

	if partialEdge != nil {
		return nil, diag.List{diag.Newf(diag.StageJoinValidation, diag.MissingCompositeKeyPart,
			partialEdge.FromTable,
			"join predicate %s binds composite key %s only partially; missing column(s): %s",
			pred, partialEdge.Group, strings.Join(partialMissing, ", "))}
	}
	return nil, diag.List{diag.Newf(diag.StageJoinValidation, diag.ForbiddenSyntax,
		pred.LeftTable+"/"+pred.RightTable,
		"join predicate %s does not correspond to any foreign-key edge between %q and %q",
		pred, pred.LeftTable, pred.RightTable)}
}

// orientation is one way a predicate's column pairs can map onto an
// edge's owner->target direction
type orientation struct {
	pairs    map[string]string
	reversed bool
}

// orientPairs maps the predicate's column pairs into the edge's
// owner->target direction. A self-referencing edge matches the predicate
// in both directions, so every valid orientation is returned and the
// caller tries each.
func orientPairs(pred Predicate, e *catalog.ForeignKeyEdge) []orientation {
	var orients []orientation
	if pred.LeftTable == e.FromTable && pred.RightTable == e.ToTable {
		pairs := make(map[string]string, len(pred.LeftColumns))
		for i := range pred.LeftColumns {
			pairs[pred.LeftColumns[i]] = pred.RightColumns[i]
		}
		orients = append(orients, orientation{pairs: pairs, reversed: false})
	}
	if pred.LeftTable == e.ToTable && pred.RightTable == e.FromTable {
		pairs := make(map[string]string, len(pred.LeftColumns))
		for i := range pred.LeftColumns {
			pairs[pred.RightColumns[i]] = pred.LeftColumns[i]
		}
		orients = append(orients, orientation{pairs: pairs, reversed: true})
	}
	return orients
}

// missingPairs returns the edge columns the oriented predicate pairs do not
// bind (owner-side canonical names)
func missingPairs(e *catalog.ForeignKeyEdge, pairs map[string]string) []string {
	var missing []string
	for i, from := range e.FromColumns {
		to, ok := pairs[from]
		if !ok || to != e.ToColumns[i] {
			missing = append(missing, from)
		}
	}
	return missing
}

// stepBetween confirms the single edge connecting two adjacent tables on a
// BFS path. Two or more direct edges is a real occurrence in this schema (a
// child can reference the same parent in two roles) and must come back to
// the caller as AmbiguousJoin, never an arbitrary choice.
func (r *Resolver) stepBetween(a, b string) (*Step, *diag.Diagnostic) {
	candidates := r.cat.EdgesBetween(a, b)
	switch len(candidates) {
	case 0:
		d := diag.Newf(diag.StageJoinValidation, diag.ForbiddenSyntax, a+"/"+b,
			"no foreign key connects %q and %q", a, b)
		return nil, &d
	case 1:
		e := candidates[0]
		return &Step{Edge: e, Reversed: e.FromTable != a}, nil
	default:
		names := make([]string, len(candidates))
		for i, e := range candidates {
			names[i] = fmt.Sprintf("%s [%s]", e.String(), e.Group)
		}
		d := diag.Newf(diag.StageJoinValidation, diag.AmbiguousJoin, a+"/"+b,
			"%d foreign keys connect %q and %q: %s; supply an explicit join predicate to disambiguate",
			len(candidates), a, b, strings.Join(names, "; "))
		return nil, &d
	}
}

// shortestPath runs a multi-source BFS from the connected set to the target
// and returns the table sequence from a connected table to the target.
// Traversal follows edges in both directions; intermediate hops may be
// tables the caller did not request.
func (r *Resolver) shortestPath(connected map[string]bool, target string) []string {
	parents := make(map[string]string)
	var queue []string
	for t := range connected {
		parents[t] = ""
		queue = append(queue, t)
	}
	// deterministic expansion order regardless of map iteration
	sort.Strings(queue)

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == target {
			var path []string
			for t := cur; t != ""; t = parents[t] {
				path = append([]string{t}, path...)
				if connected[t] {
					break
				}
			}
			return path
		}
		for _, e := range r.cat.EdgesOf(cur) {
			next := e.ToTable
			if next == cur {
				next = e.FromTable
			}
			if _, seen := parents[next]; seen {
				continue
			}
			parents[next] = cur
			queue = append(queue, next)
		}
	}
	return nil
}
