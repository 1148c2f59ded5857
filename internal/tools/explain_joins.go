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
	"encoding/json"
	"fmt"
	"strings"

	"pgedge-netsuite-mcp/internal/catalog"
	"pgedge-netsuite-mcp/internal/joingraph"
	"pgedge-netsuite-mcp/internal/mcp"
	"pgedge-netsuite-mcp/internal/resolve"
)

// ExplainJoinsTool creates the explain_joins tool
func ExplainJoinsTool(provider *catalog.Provider) Tool {
	return Tool{
		Definition: mcp.Tool{
			Name:        "explain_joins",
			Description: "Explain how a set of tables connects through the foreign-key graph. Returns the join steps a query must use, or the diagnostics that make the set unjoinable: ambiguous relationships that need an explicit choice, and composite keys that must be bound in full. Table names may use any of the three forms.",
			InputSchema: mcp.InputSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"tables": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"description": "The tables to connect, two or more",
					},
				},
				Required: []string{"tables"},
			},
		},
		Handler: func(ctx context.Context, args map[string]interface{}) (mcp.ToolResponse, error) {
			names, errResp := ValidateStringListParam(args, "tables")
			if errResp != nil {
				return *errResp, nil
			}

			cat := provider.Current()
			resolver := resolve.New(cat)

			var canon []string
			for _, name := range names {
				t, d := resolver.Table(name)
				if d != nil {
					return mcp.NewToolError(d.Message)
				}
				canon = append(canon, t.Canonical)
			}

			plan, diags := joingraph.New(cat).Resolve(canon, nil)
			if len(diags) > 0 {
				out, err := json.MarshalIndent(diags, "", "  ")
				if err != nil {
					return mcp.NewToolError(fmt.Sprintf("Failed to encode diagnostics: %v", err))
				}
				return mcp.NewToolError(string(out))
			}

			if len(plan.Steps) == 0 {
				return mcp.NewToolSuccess("Single table, no joins required.")
			}

			var sb strings.Builder
			sb.WriteString("Join steps:\n")
			for i, s := range plan.Steps {
				fmt.Fprintf(&sb, "  %d. %s", i+1, s.Edge.String())
				if s.Reversed {
					sb.WriteString("  (traversed in reverse)")
				}
				if s.Edge.Composite() {
					sb.WriteString("  (composite key, bind every column)")
				}
				sb.WriteString("\n")
			}
			return mcp.NewToolSuccess(sb.String())
		},
	}
}
