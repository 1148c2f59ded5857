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
	"sort"
	"strings"

	"pgedge-netsuite-mcp/internal/catalog"
	"pgedge-netsuite-mcp/internal/diag"
	"pgedge-netsuite-mcp/internal/joingraph"
	"pgedge-netsuite-mcp/internal/sqlscan"
)

// clauseKeywords end the scope of a table list or an ON clause
var clauseKeywords = map[string]bool{
	"WHERE": true, "GROUP": true, "ORDER": true, "HAVING": true,
	"JOIN": true, "INNER": true, "LEFT": true, "RIGHT": true,
	"FULL": true, "CROSS": true, "ON": true, "UNION": true,
}

// tableRef is one table named in a FROM or JOIN clause
type tableRef struct {
	nameTok sqlscan.Token
	alias   string
	def     *catalog.TableDef // nil when the name did not resolve
}

// rewrite replaces one token's text in the original input
type rewrite struct {
	pos, length int
	text        string
}

// ValidateSQL validates a literal SQL string. Table and column references
// may use any of the three name forms; on approval the returned SQL has
// every reference rewritten to its live spelling, with the rest of the
// text untouched. Unqualified identifiers that do not resolve are left
// alone, since the scanner cannot tell a column from a function or alias.
func (v *Validator) ValidateSQL(sql string) (*Result, error) {
	if strings.TrimSpace(sql) == "" {
		return nil, fmt.Errorf("sql text: %w", ErrEmptyInput)
	}

	diags := v.linter.Lint(sql)

	toks, err := sqlscan.Tokens(sql)
	if err != nil {
		// the linter already reported the unterminated literal; name
		// resolution over a broken token stream would only mislead
		return &Result{Status: StatusRejected, Diagnostics: diags}, nil
	}

	refs := scanTableRefs(toks)
	var rewrites []rewrite
	byAlias := make(map[string]*catalog.TableDef) // folded alias or name form
	cteScope := scanCTENames(toks)
	var canonTables []string
	seen := make(map[string]bool)

	for i := range refs {
		r := &refs[i]
		if cteScope[catalog.Fold(r.nameTok.Text)] {
			// a CTE name is in scope but has no catalog shape to resolve
			if r.alias != "" {
				cteScope[catalog.Fold(r.alias)] = true
			}
			continue
		}
		t, d := v.names.Table(r.nameTok.Text)
		if d != nil {
			diags = append(diags, *d)
			continue
		}
		r.def = t
		if !seen[t.Canonical] {
			seen[t.Canonical] = true
			canonTables = append(canonTables, t.Canonical)
		}
		if r.nameTok.Text != t.Live {
			rewrites = append(rewrites, rewrite{r.nameTok.Pos, len(r.nameTok.Text), t.Live})
		}
		if r.alias != "" {
			byAlias[catalog.Fold(r.alias)] = t
		}
		for _, form := range []string{t.Canonical, t.Documented, t.Live} {
			byAlias[catalog.Fold(form)] = t
		}
	}

	colRewrites, cdiags := v.rewriteColumnRefs(toks, byAlias, refs, cteScope)
	rewrites = append(rewrites, colRewrites...)
	diags = append(diags, cdiags...)

	if len(canonTables) > 0 {
		preds, pdiags := v.extractJoinPredicates(toks, byAlias)
		diags = append(diags, pdiags...)
		_, jdiags := v.joins.Resolve(canonTables, preds)
		diags = append(diags, jdiags...)
	}

	if len(diags) > 0 {
		return &Result{Status: StatusRejected, Diagnostics: diags}, nil
	}
	return &Result{Status: StatusApproved, SQL: applyRewrites(sql, rewrites)}, nil
}

// scanCTENames collects the names a WITH clause defines. Those names are
// legal in the outer FROM list but are not catalog tables, so resolution
// and column rewriting skip them. The CTE bodies themselves are subquery
// scopes and are already skipped by depth tracking.
func scanCTENames(toks []sqlscan.Token) map[string]bool {
	names := make(map[string]bool)
	if len(toks) == 0 || !toks[0].IsKeyword("WITH") {
		return names
	}
	i := 1
	for i < len(toks) {
		if toks[i].Kind != sqlscan.Ident {
			break
		}
		names[catalog.Fold(toks[i].Text)] = true
		i++
		// optional column list before AS
		if i < len(toks) && toks[i].Kind == sqlscan.Symbol && toks[i].Text == "(" {
			i = skipParens(toks, i)
		}
		if i < len(toks) && toks[i].IsKeyword("AS") {
			i++
		}
		if i >= len(toks) || toks[i].Kind != sqlscan.Symbol || toks[i].Text != "(" {
			break
		}
		i = skipParens(toks, i)
		if i < len(toks) && toks[i].Kind == sqlscan.Symbol && toks[i].Text == "," {
			i++
			continue
		}
		break
	}
	return names
}

// skipParens advances past the balanced group opening at i
func skipParens(toks []sqlscan.Token, i int) int {
	depth := 0
	for ; i < len(toks); i++ {
		if toks[i].Kind != sqlscan.Symbol {
			continue
		}
		switch toks[i].Text {
		case "(":
			depth++
		case ")":
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return i
}

// scanTableRefs collects the tables named after FROM and JOIN, with their
// aliases. Subqueries are skipped by depth tracking; their tables belong
// to their own scope and are validated by the caller separately.
func scanTableRefs(toks []sqlscan.Token) []tableRef {
	var refs []tableRef
	depth := 0
	inFrom := false

	for i := 0; i < len(toks); i++ {
		t := toks[i]
		switch {
		case t.Kind == sqlscan.Symbol && t.Text == "(":
			depth++
			inFrom = false
		case t.Kind == sqlscan.Symbol && t.Text == ")":
			depth--
		case depth > 0:
			// inside a subquery or function call
		case t.IsKeyword("FROM") || t.IsKeyword("JOIN"):
			inFrom = true
		case inFrom && t.Kind == sqlscan.Ident:
			if clauseKeywords[t.Upper()] {
				inFrom = false
				continue
			}
			ref := tableRef{nameTok: t}
			// optional alias: [AS] ident
			j := i + 1
			if j < len(toks) && toks[j].IsKeyword("AS") {
				j++
			}
			if j < len(toks) && toks[j].Kind == sqlscan.Ident && !clauseKeywords[toks[j].Upper()] {
				ref.alias = toks[j].Text
				i = j
			}
			refs = append(refs, ref)
			// a comma keeps us in the FROM list, anything else ends it
			if i+1 < len(toks) && toks[i+1].Kind == sqlscan.Symbol && toks[i+1].Text == "," {
				i++
			} else {
				inFrom = false
			}
		}
	}
	return refs
}

// rewriteColumnRefs handles qualified references: ident '.' ident where
// the qualifier is a known table or alias. The qualifier keeps an alias
// spelling but a table name form is rewritten to live; the column is
// always rewritten to live. A qualifier naming a CTE is left untouched,
// since the CTE's column shape is not in the catalog.
func (v *Validator) rewriteColumnRefs(toks []sqlscan.Token, byAlias map[string]*catalog.TableDef,
	refs []tableRef, cteScope map[string]bool) ([]rewrite, diag.List) {

	aliasNames := make(map[string]bool)
	for _, r := range refs {
		if r.alias != "" {
			aliasNames[catalog.Fold(r.alias)] = true
		}
	}

	var rewrites []rewrite
	var diags diag.List
	for i := 0; i+2 < len(toks); i++ {
		q, dot, c := toks[i], toks[i+1], toks[i+2]
		if q.Kind != sqlscan.Ident || dot.Kind != sqlscan.Symbol || dot.Text != "." || c.Kind != sqlscan.Ident {
			continue
		}
		t, ok := byAlias[catalog.Fold(q.Text)]
		if !ok {
			if !cteScope[catalog.Fold(q.Text)] {
				diags = append(diags, diag.Newf(diag.StageNameResolution, diag.UnknownTable, q.Text,
					"no table matches %q in canonical, documented, or live form", q.Text))
			}
			i += 2
			continue
		}
		col, d := v.names.Column(t, c.Text)
		if d != nil {
			diags = append(diags, *d)
			i += 2
			continue
		}
		if !aliasNames[catalog.Fold(q.Text)] && q.Text != t.Live {
			rewrites = append(rewrites, rewrite{q.Pos, len(q.Text), t.Live})
		}
		if c.Text != col.Live {
			rewrites = append(rewrites, rewrite{c.Pos, len(c.Text), col.Live})
		}
		i += 2
	}
	return rewrites, diags
}

// extractJoinPredicates reads each ON clause and merges its AND-ed
// equalities per table pair, so a composite key spelled as two conditions
// arrives at the join graph as one predicate. WHERE clauses are scanned
// the same way, since a comma join disambiguates there; a WHERE equality
// only becomes a join predicate when a foreign key connects the pair, so
// plain cross-table filters stay filters.
func (v *Validator) extractJoinPredicates(toks []sqlscan.Token,
	byAlias map[string]*catalog.TableDef) ([]joingraph.Predicate, diag.List) {

	var preds []joingraph.Predicate
	var diags diag.List

	for i := 0; i < len(toks); i++ {
		if !toks[i].IsKeyword("ON") && !toks[i].IsKeyword("WHERE") {
			continue
		}
		fromWhere := toks[i].IsKeyword("WHERE")
		// group equalities in this clause by unordered table pair
		byPair := make(map[string]*joingraph.Predicate)
		var pairOrder []string

		j := i + 1
		for j < len(toks) {
			t := toks[j]
			if t.Kind == sqlscan.Ident && clauseKeywords[t.Upper()] && !t.IsKeyword("ON") {
				break
			}
			if t.IsKeyword("AND") {
				j++
				continue
			}
			// expect qualified = qualified
			lt, lc, n := qualifiedRef(toks, j)
			if n == 0 {
				j++
				continue
			}
			j += n
			if j >= len(toks) || toks[j].Kind != sqlscan.Symbol || toks[j].Text != "=" {
				continue
			}
			j++
			rt, rc, n := qualifiedRef(toks, j)
			if n == 0 {
				continue
			}
			j += n

			ldef, lok := byAlias[catalog.Fold(lt)]
			rdef, rok := byAlias[catalog.Fold(rt)]
			if !lok || !rok {
				continue // unknown qualifier already reported by the rewrite pass
			}
			lcol, d := v.names.Column(ldef, lc)
			if d != nil {
				continue
			}
			rcol, d := v.names.Column(rdef, rc)
			if d != nil {
				continue
			}
			if fromWhere && !v.equalityBindsEdge(ldef.Canonical, lcol.Canonical, rdef.Canonical, rcol.Canonical) {
				continue
			}

			key := ldef.Canonical + "|" + rdef.Canonical
			p, ok := byPair[key]
			if !ok {
				p = &joingraph.Predicate{LeftTable: ldef.Canonical, RightTable: rdef.Canonical}
				byPair[key] = p
				pairOrder = append(pairOrder, key)
			}
			p.LeftColumns = append(p.LeftColumns, lcol.Canonical)
			p.RightColumns = append(p.RightColumns, rcol.Canonical)
		}
		for _, key := range pairOrder {
			preds = append(preds, *byPair[key])
		}
		i = j - 1
	}
	return preds, diags
}

// equalityBindsEdge reports whether a column equality between two tables
// lines up with a column pair of some foreign-key edge, in either
// direction. WHERE equalities that do not are ordinary filters.
func (v *Validator) equalityBindsEdge(lt, lc, rt, rc string) bool {
	for _, e := range v.cat.EdgesBetween(lt, rt) {
		for i := range e.FromColumns {
			if e.FromTable == lt && e.FromColumns[i] == lc && e.ToColumns[i] == rc {
				return true
			}
			if e.FromTable == rt && e.FromColumns[i] == rc && e.ToColumns[i] == lc {
				return true
			}
		}
	}
	return false
}

// qualifiedRef reads table '.' column at position i, returning the token
// count consumed (0 when the shape does not match)
func qualifiedRef(toks []sqlscan.Token, i int) (table, column string, n int) {
	if i+2 >= len(toks) {
		return "", "", 0
	}
	q, dot, c := toks[i], toks[i+1], toks[i+2]
	if q.Kind != sqlscan.Ident || dot.Text != "." || c.Kind != sqlscan.Ident {
		return "", "", 0
	}
	return q.Text, c.Text, 3
}

// applyRewrites replaces token spans back-to-front so earlier positions
// stay valid
func applyRewrites(src string, rewrites []rewrite) string {
	sort.Slice(rewrites, func(i, j int) bool { return rewrites[i].pos > rewrites[j].pos })
	out := src
	for _, r := range rewrites {
		out = out[:r.pos] + r.text + out[r.pos+r.length:]
	}
	return out
}
