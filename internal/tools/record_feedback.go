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

	"pgedge-netsuite-mcp/internal/learning"
	"pgedge-netsuite-mcp/internal/mcp"
)

var feedbackVerdicts = map[string]bool{
	"correct":      true,
	"wrong_result": true,
	"wrong_query":  true,
}

// RecordFeedbackTool creates the record_feedback tool
func RecordFeedbackTool(store *learning.Store) Tool {
	return Tool{
		Definition: mcp.Tool{
			Name:        "record_feedback",
			Description: "Record a verdict on an earlier validation: whether the approved query actually answered the question. Verdicts are 'correct', 'wrong_result' (query ran but answered the wrong thing), or 'wrong_query' (a better query exists; supply it as corrected_sql). Feedback accumulates in the learning store and informs schema curation.",
			InputSchema: mcp.InputSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"validation_id": map[string]interface{}{
						"type":        "string",
						"description": "The id returned when the validation was recorded",
					},
					"verdict": map[string]interface{}{
						"type":        "string",
						"description": "One of: correct, wrong_result, wrong_query",
					},
					"corrected_sql": map[string]interface{}{
						"type":        "string",
						"description": "The query that should have been generated",
					},
					"notes": map[string]interface{}{
						"type":        "string",
						"description": "Free-form explanation",
					},
				},
				Required: []string{"validation_id", "verdict"},
			},
		},
		Handler: func(ctx context.Context, args map[string]interface{}) (mcp.ToolResponse, error) {
			if store == nil {
				return mcp.NewToolError("The learning store is not configured; feedback cannot be recorded")
			}

			validationID, errResp := ValidateStringParam(args, "validation_id")
			if errResp != nil {
				return *errResp, nil
			}
			verdict, errResp := ValidateStringParam(args, "verdict")
			if errResp != nil {
				return *errResp, nil
			}
			if !feedbackVerdicts[verdict] {
				return mcp.NewToolError(fmt.Sprintf("Unknown verdict %q; use correct, wrong_result, or wrong_query", verdict))
			}

			correctedSQL := ValidateOptionalStringParam(args, "corrected_sql", "")
			notes := ValidateOptionalStringParam(args, "notes", "")

			rec, err := store.RecordFeedback(validationID, verdict, correctedSQL, notes)
			if err != nil {
				return mcp.NewToolError(fmt.Sprintf("Failed to record feedback: %v", err))
			}
			return mcp.NewToolSuccess(fmt.Sprintf("Recorded feedback %s on validation %s", rec.ID, rec.ValidationID))
		},
	}
}
