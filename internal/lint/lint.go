/*-------------------------------------------------------------------------
 *
 * pgEdge NetSuite Connect Agent
 *
 * Portions copyright (c) 2026, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

// Package lint statically checks SQL text against the SuiteAnalytics
// Connect dialect. The linter has no schema dependency; every rule runs on
// the token stream and all rules are checked on every call so a single pass
// surfaces the complete finding set.
package lint

import (
	"regexp"
	"strings"

	"pgedge-netsuite-mcp/internal/diag"
	"pgedge-netsuite-mcp/internal/sqlscan"
)

// Linter enforces the accepted Connect dialect subset. Stateless; the zero
// value is ready to use.
type Linter struct{}

// New creates a linter
func New() *Linter {
	return &Linter{}
}

// Lint checks the SQL text and returns every dialect violation found. An
// empty list means the text is clean.
func (l *Linter) Lint(sql string) diag.List {
	var diags diag.List

	tokens, err := sqlscan.Tokens(sql)
	if err != nil {
		diags = append(diags, diag.Newf(diag.StageDialect, diag.ForbiddenSyntax, "",
			"string literal is not closed; escape an embedded quote by doubling it ('')"))
	}

	diags = append(diags, l.checkStatementShape(tokens)...)
	diags = append(diags, l.checkPagination(tokens)...)
	diags = append(diags, l.checkDateLiterals(tokens)...)
	diags = append(diags, l.checkBooleanLiterals(tokens)...)
	return diags
}

// statements the Connect endpoint will never execute; matched as whole
// identifiers so column names like create_date do not trip the check
var forbiddenStatements = map[string]bool{
	"INSERT": true, "UPDATE": true, "DELETE": true, "MERGE": true,
	"DROP": true, "CREATE": true, "ALTER": true, "TRUNCATE": true,
	"GRANT": true, "REVOKE": true, "EXEC": true, "EXECUTE": true,
	"CALL": true, "COPY": true,
}

func (l *Linter) checkStatementShape(tokens []sqlscan.Token) diag.List {
	var diags diag.List
	if len(tokens) == 0 {
		return diag.List{diag.Newf(diag.StageDialect, diag.ForbiddenSyntax, "",
			"empty statement")}
	}

	first := tokens[0]
	if !(first.IsKeyword("SELECT") || first.IsKeyword("WITH")) {
		diags = append(diags, diag.Newf(diag.StageDialect, diag.ForbiddenSyntax, first.Text,
			"only SELECT (or WITH ... SELECT) statements are accepted"))
	}

	for _, t := range tokens {
		if t.Kind == sqlscan.Ident && forbiddenStatements[t.Upper()] {
			diags = append(diags, diag.Newf(diag.StageDialect, diag.ForbiddenSyntax, t.Text,
				"%s is not allowed; the endpoint is read-only", t.Upper()))
		}
		if t.Kind == sqlscan.Symbol && t.Text == ";" {
			diags = append(diags, diag.Newf(diag.StageDialect, diag.ForbiddenSyntax, "",
				"semicolons are not allowed; submit a single statement"))
		}
	}
	return diags
}

// checkPagination enforces the one row-limiting form the endpoint
// understands, SELECT TOP n. LIMIT, ROWNUM and FETCH FIRST/NEXT all parse
// locally but fail remotely, so they are rejected here.
func (l *Linter) checkPagination(tokens []sqlscan.Token) diag.List {
	var diags diag.List
	for i, t := range tokens {
		if t.Kind != sqlscan.Ident {
			continue
		}
		switch t.Upper() {
		case "LIMIT":
			if i+1 < len(tokens) && tokens[i+1].Kind == sqlscan.Number {
				diags = append(diags, diag.Newf(diag.StageDialect, diag.ForbiddenSyntax, t.Text,
					"LIMIT is not supported; use SELECT TOP %s instead", tokens[i+1].Text))
			}
		case "ROWNUM":
			diags = append(diags, diag.Newf(diag.StageDialect, diag.ForbiddenSyntax, t.Text,
				"ROWNUM is not supported; use SELECT TOP n"))
		case "FETCH":
			if i+1 < len(tokens) &&
				(tokens[i+1].IsKeyword("FIRST") || tokens[i+1].IsKeyword("NEXT")) {
				diags = append(diags, diag.Newf(diag.StageDialect, diag.ForbiddenSyntax, t.Text,
					"FETCH FIRST ... ROWS is not supported; use SELECT TOP n"))
			}
		}
	}
	return diags
}

// dateShaped matches literals that read as dates: ISO and slash forms,
// optionally with a time part
var dateShaped = regexp.MustCompile(
	`^\d{4}-\d{2}-\d{2}([ T]\d{2}:\d{2}(:\d{2})?)?$|^\d{1,2}/\d{1,2}/\d{2,4}$`)

// comparison symbols that put an adjacent literal into predicate position
var comparisonSymbols = map[string]bool{
	"=": true, "<": true, ">": true, "<=": true, ">=": true, "<>": true, "!=": true,
}

// checkDateLiterals requires the explicit conversion form
// TO_DATE('...', 'YYYY-MM-DD') for every date comparison. A bare
// date-shaped string compared to a timestamp column silently mismatches on
// the endpoint, which is why the generic form is rejected outright.
func (l *Linter) checkDateLiterals(tokens []sqlscan.Token) diag.List {
	var diags diag.List

	// strings consumed by a well-formed TO_DATE(value, format) call
	converted := make(map[int]bool)

	for i, t := range tokens {
		if !t.IsKeyword("TO_DATE") {
			continue
		}
		// expected shape: TO_DATE ( 'value' , 'format' )
		if i+2 < len(tokens) &&
			tokens[i+1].Text == "(" && tokens[i+2].Kind == sqlscan.String {
			converted[i+2] = true
			if i+4 < len(tokens) && tokens[i+3].Text == "," && tokens[i+4].Kind == sqlscan.String {
				converted[i+4] = true
				continue
			}
			diags = append(diags, diag.Newf(diag.StageDialect, diag.InvalidDateLiteral, t.Text,
				"TO_DATE requires an explicit format string, e.g. TO_DATE(%s, 'YYYY-MM-DD')",
				tokens[i+2].Text))
		}
	}

	for i, t := range tokens {
		if t.Kind != sqlscan.String || converted[i] || !dateShaped.MatchString(t.Unquote()) {
			continue
		}
		// a literal on either side of a comparison is in predicate position
		if (i > 0 && inPredicatePosition(tokens[i-1])) ||
			(i+1 < len(tokens) && tokens[i+1].Kind == sqlscan.Symbol && comparisonSymbols[tokens[i+1].Text]) {
			diags = append(diags, diag.Newf(diag.StageDialect, diag.InvalidDateLiteral, t.Text,
				"bare date literal %s; wrap it as TO_DATE(%s, 'YYYY-MM-DD')", t.Text, t.Text))
		}
	}
	return diags
}

func inPredicatePosition(prev sqlscan.Token) bool {
	if prev.Kind == sqlscan.Symbol && comparisonSymbols[prev.Text] {
		return true
	}
	// BETWEEN x AND y puts both bounds in predicate position
	return prev.IsKeyword("BETWEEN") || prev.IsKeyword("AND")
}

// flag columns are fixed-length VARCHAR2 check columns holding 'T'/'F'.
// The linter is schema-free, so the well-known flag identifiers of the
// Connect schema are matched by folded name.
var flagColumns = map[string]bool{
	"isinactive":    true,
	"posting":       true,
	"mainline":      true,
	"iselimination": true,
}

// checkBooleanLiterals rejects generic boolean forms. The endpoint has no
// boolean type: flags are compared against the single-character literals
// 'T' and 'F' and nothing else.
func (l *Linter) checkBooleanLiterals(tokens []sqlscan.Token) diag.List {
	var diags diag.List
	for i, t := range tokens {
		if t.Kind == sqlscan.Ident && (t.IsKeyword("TRUE") || t.IsKeyword("FALSE")) {
			diags = append(diags, diag.Newf(diag.StageDialect, diag.InvalidBooleanLiteral, t.Text,
				"%s is not a literal in this dialect; flag columns compare against 'T' or 'F'", t.Upper()))
			continue
		}

		// pattern: <flag column> <comparison> <literal>
		if t.Kind != sqlscan.Symbol || !comparisonSymbols[t.Text] {
			continue
		}
		if i == 0 || i+1 >= len(tokens) {
			continue
		}
		left, right := tokens[i-1], tokens[i+1]
		if left.Kind != sqlscan.Ident || !flagColumns[foldName(left.Text)] {
			continue
		}
		switch right.Kind {
		case sqlscan.String:
			if v := right.Unquote(); v != "T" && v != "F" {
				diags = append(diags, diag.Newf(diag.StageDialect, diag.InvalidBooleanLiteral, left.Text,
					"%s compares against %s; flag columns accept only 'T' or 'F'", left.Text, right.Text))
			}
		case sqlscan.Number:
			diags = append(diags, diag.Newf(diag.StageDialect, diag.InvalidBooleanLiteral, left.Text,
				"%s compares against %s; flag columns accept only 'T' or 'F'", left.Text, right.Text))
		}
	}
	return diags
}

func foldName(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), "_", "")
}
