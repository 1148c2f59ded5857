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

	"pgedge-netsuite-mcp/internal/catalog"
	"pgedge-netsuite-mcp/internal/learning"
	"pgedge-netsuite-mcp/internal/mcp"
	"pgedge-netsuite-mcp/internal/mirror"
	"pgedge-netsuite-mcp/internal/tsv"
	"pgedge-netsuite-mcp/internal/validate"
)

// QueryMirrorTool creates the query_mirror tool. Every query passes
// through the validator first; only approved SQL reaches the mirror.
func QueryMirrorTool(provider *catalog.Provider, client *mirror.Client, store *learning.Store) Tool {
	return Tool{
		Definition: mcp.Tool{
			Name:        "query_mirror",
			Description: "Validate a Connect-dialect query and, if approved, execute it against the local Postgres mirror of the NetSuite tables. Returns rows as TSV. Rejected queries return the full diagnostic list and are never executed. Use this to test a query cheaply before submitting it to the real endpoint.",
			InputSchema: mcp.InputSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"sql": map[string]interface{}{
						"type":        "string",
						"description": "The candidate SELECT statement in Connect dialect",
					},
					"question": map[string]interface{}{
						"type":        "string",
						"description": "The natural-language question, recorded with the outcome",
					},
				},
				Required: []string{"sql"},
			},
		},
		Handler: func(ctx context.Context, args map[string]interface{}) (mcp.ToolResponse, error) {
			sql, errResp := ValidateStringParam(args, "sql")
			if errResp != nil {
				return *errResp, nil
			}
			question := ValidateOptionalStringParam(args, "question", "")

			cat := provider.Current()
			result, err := validate.New(cat).ValidateSQL(sql)
			if err != nil {
				return mcp.NewToolError(fmt.Sprintf("Validation failed: %v", err))
			}
			recordOutcome(store, question, sql, result, cat.Release())

			if result.Status != validate.StatusApproved {
				out, err := json.MarshalIndent(result, "", "  ")
				if err != nil {
					return mcp.NewToolError(fmt.Sprintf("Failed to encode result: %v", err))
				}
				return mcp.NewToolError(string(out))
			}

			if client == nil || !client.Ready() {
				return mcp.NewToolError(mcp.MirrorNotReadyError)
			}

			rows, err := client.Execute(ctx, result.SQL)
			if err != nil {
				return mcp.NewToolError(fmt.Sprintf("Mirror execution failed: %v", err))
			}

			text := tsv.FormatResults(rows.Columns, rows.Rows)
			if rows.Truncated {
				text += fmt.Sprintf("\n\n(result truncated at %d rows)", len(rows.Rows))
			}
			return mcp.NewToolSuccess(text)
		},
	}
}
