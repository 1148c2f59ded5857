/*-------------------------------------------------------------------------
 *
 * pgEdge NetSuite Connect Agent
 *
 * Portions copyright (c) 2026, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

package tools

import (
	"context"
	"fmt"
	"strings"

	"pgedge-netsuite-mcp/internal/catalog"
	"pgedge-netsuite-mcp/internal/mcp"
	"pgedge-netsuite-mcp/internal/resolve"
	"pgedge-netsuite-mcp/internal/tsv"
)

// DescribeTableTool creates the describe_table tool
func DescribeTableTool(provider *catalog.Provider) Tool {
	return Tool{
		Definition: mcp.Tool{
			Name:        "describe_table",
			Description: "Describe one table: every column with its three name forms, SQL type, whether it is a 'T'/'F' flag, and what it references; plus the primary key and all foreign-key edges touching the table. The table may be named in canonical, documented, or live form.",
			InputSchema: mcp.InputSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"table": map[string]interface{}{
						"type":        "string",
						"description": "Table name in any of the three forms",
					},
				},
				Required: []string{"table"},
			},
		},
		Handler: func(ctx context.Context, args map[string]interface{}) (mcp.ToolResponse, error) {
			name, errResp := ValidateStringParam(args, "table")
			if errResp != nil {
				return *errResp, nil
			}

			cat := provider.Current()
			t, d := resolve.New(cat).Table(name)
			if d != nil {
				return mcp.NewToolError(d.Message)
			}

			var sb strings.Builder
			fmt.Fprintf(&sb, "Table %s (documented %s, live %s)\n", t.Canonical, t.Documented, t.Live)
			if t.Description != "" {
				sb.WriteString(t.Description + "\n")
			}
			fmt.Fprintf(&sb, "Primary key: %s\n\n", strings.Join(t.PrimaryKey, ", "))

			sb.WriteString(tsv.BuildRow("canonical", "documented", "live", "type", "flag", "references", "description"))
			for i := range t.Columns {
				col := &t.Columns[i]
				refs := ""
				if col.References != nil {
					refs = col.References.String()
				}
				flag := ""
				if col.IsFlag() {
					flag = "T/F"
				}
				sb.WriteString("\n")
				sb.WriteString(tsv.BuildRow(
					col.Canonical,
					col.Documented,
					col.Live,
					typeText(col),
					flag,
					refs,
					col.Description,
				))
			}

			edges := cat.EdgesOf(t.Canonical)
			if len(edges) > 0 {
				sb.WriteString("\n\nForeign keys:\n")
				for _, e := range edges {
					fmt.Fprintf(&sb, "  %s  [%s]\n", e.String(), e.Group)
				}
			}

			return mcp.NewToolSuccess(sb.String())
		},
	}
}

// typeText renders a column type with its documented size
func typeText(col *catalog.ColumnDef) string {
	switch {
	case col.Type == catalog.TypeVarchar2 && col.Length != nil:
		return fmt.Sprintf("VARCHAR2(%d)", *col.Length)
	case col.Type == catalog.TypeNumber && col.Precision != nil && col.Scale != nil:
		return fmt.Sprintf("NUMBER(%d,%d)", *col.Precision, *col.Scale)
	case col.Type == catalog.TypeNumber && col.Precision != nil:
		return fmt.Sprintf("NUMBER(%d)", *col.Precision)
	default:
		return string(col.Type)
	}
}
