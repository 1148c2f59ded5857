/*-------------------------------------------------------------------------
 *
 * pgEdge NetSuite Connect Agent
 *
 * Portions copyright (c) 2026, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

// Package tsv renders schema listings and mirror query results as
// tab-separated text. Values are escaped so a tab or newline inside a
// memo field cannot break the row structure.
package tsv

import (
	"fmt"
	"strings"
	"time"
)

// escape replaces the characters that would break TSV parsing with their
// literal backslash sequences
func escape(s string) string {
	s = strings.ReplaceAll(s, "\t", "\\t")
	s = strings.ReplaceAll(s, "\n", "\\n")
	s = strings.ReplaceAll(s, "\r", "\\r")
	return s
}

// FormatValue converts one mirror row value to a TSV-safe string. The
// mirrored columns are NUMBER, VARCHAR2, and TIMESTAMP, so the cases
// cover what the pgx row scan produces for those; NULL becomes the
// empty string. A flag column mirrored as boolean renders as the
// endpoint spells it.
func FormatValue(v interface{}) string {
	if v == nil {
		return ""
	}

	var s string
	switch val := v.(type) {
	case string:
		s = val
	case []byte:
		s = string(val)
	case time.Time:
		s = val.Format(time.RFC3339)
	case bool:
		if val {
			s = "T"
		} else {
			s = "F"
		}
	default:
		s = fmt.Sprint(val)
	}
	return escape(s)
}

// FormatResults renders a mirror query result: a header row of column
// names followed by the data rows
func FormatResults(columnNames []string, results [][]interface{}) string {
	if len(columnNames) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(strings.Join(columnNames, "\t"))

	for _, row := range results {
		sb.WriteString("\n")
		values := make([]string, len(row))
		for i, val := range row {
			values[i] = FormatValue(val)
		}
		sb.WriteString(strings.Join(values, "\t"))
	}
	return sb.String()
}

// BuildRow joins already-stringified values into one escaped TSV row,
// used by the schema listing tools and resources
func BuildRow(values ...string) string {
	escaped := make([]string, len(values))
	for i, v := range values {
		escaped[i] = escape(v)
	}
	return strings.Join(escaped, "\t")
}
