/*-------------------------------------------------------------------------
 *
 * pgEdge NetSuite Connect Agent
 *
 * Portions copyright (c) 2026, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

package mirror

import (
	"fmt"
	"sort"
	"strings"

	"pgedge-netsuite-mcp/internal/sqlscan"
)

// clause keywords that end a FROM table list
var fromEnders = map[string]bool{
	"WHERE": true, "GROUP": true, "ORDER": true, "HAVING": true,
	"JOIN": true, "INNER": true, "LEFT": true, "RIGHT": true,
	"FULL": true, "CROSS": true, "ON": true, "UNION": true,
	"AS": true,
}

type span struct {
	pos, length int
	text        string
}

// Rewrite translates an approved Connect-dialect query into the Postgres
// form the mirror stores: SELECT TOP n becomes a trailing LIMIT n, and
// every table reference gains the mirror prefix (transaction -> ns_transaction).
// The input is assumed validated; table names are already live spellings.
func Rewrite(sql, tablePrefix string) (string, error) {
	toks, err := sqlscan.Tokens(sql)
	if err != nil {
		return "", fmt.Errorf("rewrite: %w", err)
	}
	if len(toks) == 0 {
		return "", fmt.Errorf("rewrite: empty statement")
	}

	var spans []span
	limit := ""

	// SELECT TOP n at the head of the statement
	if len(toks) >= 3 && toks[0].IsKeyword("SELECT") && toks[1].IsKeyword("TOP") && toks[2].Kind == sqlscan.Number {
		start := toks[1].Pos
		end := toks[2].Pos + len(toks[2].Text)
		if end < len(sql) && sql[end] == ' ' {
			end++ // take the trailing space with the removed clause
		}
		spans = append(spans, span{pos: start, length: end - start, text: ""})
		limit = toks[2].Text
	}

	// prefix table names after FROM and JOIN
	inFrom := false
	depth := 0
	for i := 0; i < len(toks); i++ {
		t := toks[i]
		switch {
		case t.Kind == sqlscan.Symbol && t.Text == "(":
			depth++
			inFrom = false
		case t.Kind == sqlscan.Symbol && t.Text == ")":
			depth--
		case depth > 0:
		case t.IsKeyword("FROM") || t.IsKeyword("JOIN"):
			inFrom = true
		case inFrom && t.Kind == sqlscan.Ident:
			if fromEnders[t.Upper()] {
				inFrom = false
				continue
			}
			if !strings.HasPrefix(t.Text, tablePrefix) {
				spans = append(spans, span{pos: t.Pos, length: 0, text: tablePrefix})
			}
			// skip an optional alias, keep going on a comma
			if i+1 < len(toks) && toks[i+1].Kind == sqlscan.Ident && !fromEnders[toks[i+1].Upper()] {
				i++
			}
			if i+1 < len(toks) && toks[i+1].Kind == sqlscan.Symbol && toks[i+1].Text == "," {
				i++
			} else {
				inFrom = false
			}
		}
	}

	out := apply(sql, spans)
	out = strings.TrimRight(out, " \t\n")
	if limit != "" {
		out += " LIMIT " + limit
	}
	return strings.TrimSpace(out), nil
}

func apply(src string, spans []span) string {
	sort.Slice(spans, func(i, j int) bool { return spans[i].pos > spans[j].pos })
	out := src
	for _, s := range spans {
		out = out[:s.pos] + s.text + out[s.pos+s.length:]
	}
	return out
}
