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
	"pgedge-netsuite-mcp/internal/logging"
	"pgedge-netsuite-mcp/internal/mcp"
	"pgedge-netsuite-mcp/internal/validate"
)

// ValidateQueryTool creates the validate_query tool. It accepts either a
// literal SQL string or a structured intent and returns the full
// diagnostic set, never just the first finding. The limits cap intent
// pagination as configured by the operator.
func ValidateQueryTool(provider *catalog.Provider, store *learning.Store, limits validate.Limits) Tool {
	return Tool{
		Definition: mcp.Tool{
			Name:        "validate_query",
			Description: "Validate a SuiteAnalytics Connect query before running it. Accepts either 'sql' (a SELECT in the Connect dialect; table and column names may use canonical, documented, or live spelling) or 'intent' (a structured query description). Returns approved SQL with all names rewritten to live identifiers, or the complete list of diagnostics: unknown names, ambiguous or incomplete joins, and dialect violations such as LIMIT instead of SELECT TOP or bare date literals instead of TO_DATE.",
			InputSchema: mcp.InputSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"sql": map[string]interface{}{
						"type":        "string",
						"description": "The candidate SELECT statement in Connect dialect",
					},
					"intent": map[string]interface{}{
						"type":        "object",
						"description": "Structured query intent: tables, projections, filters, joins, order_by, top",
					},
					"question": map[string]interface{}{
						"type":        "string",
						"description": "The natural-language question the query answers, recorded with the outcome",
					},
				},
			},
		},
		Handler: func(ctx context.Context, args map[string]interface{}) (mcp.ToolResponse, error) {
			cat := provider.Current()
			validator := validate.NewWithLimits(cat, limits)
			question := ValidateOptionalStringParam(args, "question", "")

			var result *validate.Result
			var inputSQL string
			var err error

			switch {
			case args["sql"] != nil:
				sql, errResp := ValidateStringParam(args, "sql")
				if errResp != nil {
					return *errResp, nil
				}
				inputSQL = sql
				result, err = validator.ValidateSQL(sql)
			case args["intent"] != nil:
				intent, parseErr := parseIntent(args["intent"])
				if parseErr != nil {
					return mcp.NewToolError(fmt.Sprintf("Invalid 'intent' argument: %v", parseErr))
				}
				result, err = validator.ValidateIntent(intent)
			default:
				return mcp.NewToolError("Provide either 'sql' or 'intent'")
			}
			if err != nil {
				return mcp.NewToolError(fmt.Sprintf("Validation failed: %v", err))
			}

			recordOutcome(store, question, inputSQL, result, cat.Release())

			out, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return mcp.NewToolError(fmt.Sprintf("Failed to encode result: %v", err))
			}
			return mcp.NewToolSuccess(string(out))
		},
	}
}

// parseIntent converts the raw JSON argument into a validate.Intent
func parseIntent(raw interface{}) (*validate.Intent, error) {
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	var intent validate.Intent
	if err := json.Unmarshal(data, &intent); err != nil {
		return nil, err
	}
	return &intent, nil
}

// recordOutcome persists the validation result when a learning store is
// configured. Recording failures are logged, not surfaced; the validation
// result stands on its own.
func recordOutcome(store *learning.Store, question, inputSQL string, result *validate.Result, release string) {
	if store == nil {
		return
	}
	sql := result.SQL
	if sql == "" {
		sql = inputSQL
	}
	if _, err := store.RecordValidation(question, sql, string(result.Status), result.Diagnostics, release); err != nil {
		logging.Warn("failed to record validation outcome", "error", err.Error())
	}
}
