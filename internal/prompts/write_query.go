/*-------------------------------------------------------------------------
 *
 * pgEdge NetSuite Connect Agent
 *
 * Portions copyright (c) 2026, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

package prompts

import (
	"fmt"

	"pgedge-netsuite-mcp/internal/mcp"
)

// WriteQueryPrompt guides an agent from a business question to an
// approved Connect query
func WriteQueryPrompt() Prompt {
	return Prompt{
		Definition: mcp.Prompt{
			Name:        "write_query",
			Description: "Turn a business question about NetSuite data into an approved SuiteAnalytics Connect query",
			Arguments: []mcp.PromptArgument{
				{
					Name:        "question",
					Description: "The business question to answer",
					Required:    true,
				},
			},
		},
		Handler: func(args map[string]string) mcp.PromptResult {
			question := args["question"]
			text := fmt.Sprintf(`Answer this question with a SuiteAnalytics Connect query: %s

Work through these steps:

1. Read the netsuite://dialect resource and keep its rules in mind.
2. Use list_tables to find candidate tables, then describe_table on each
   one you plan to use. Write queries against the canonical column names.
3. If the query spans tables, call explain_joins first. When a
   relationship is ambiguous you must choose an edge and write the join
   condition explicitly; composite keys need every column bound.
4. Draft the SELECT (remember: SELECT TOP n for pagination, TO_DATE for
   dates, 'T'/'F' for flags) and run it through validate_query.
5. If rejected, fix every diagnostic and validate again. Do not guess at
   names; go back to describe_table.
6. Once approved, run the approved SQL with query_mirror to check the
   result shape before using it against the real endpoint.`, question)

			return mcp.PromptResult{
				Description: "Write and validate a Connect query",
				Messages: []mcp.PromptMessage{
					{
						Role:    "user",
						Content: mcp.ContentItem{Type: "text", Text: text},
					},
				},
			}
		},
	}
}

// RepairQueryPrompt guides an agent through fixing a rejected query
func RepairQueryPrompt() Prompt {
	return Prompt{
		Definition: mcp.Prompt{
			Name:        "repair_query",
			Description: "Fix a Connect query that the validator rejected",
			Arguments: []mcp.PromptArgument{
				{
					Name:        "sql",
					Description: "The rejected query",
					Required:    true,
				},
				{
					Name:        "diagnostics",
					Description: "The diagnostic list returned by validate_query",
					Required:    false,
				},
			},
		},
		Handler: func(args map[string]string) mcp.PromptResult {
			text := fmt.Sprintf(`This Connect query was rejected:

%s

Diagnostics:
%s

Address every diagnostic, not just the first:

- UnknownTable / UnknownColumn: the name matches none of the three name
  forms. Use describe_table to find the right spelling; do not invent
  names.
- AmbiguousJoin: more than one foreign key connects the tables. Pick the
  edge that matches the question's meaning and write its condition
  explicitly.
- MissingCompositeKeyPart: the join binds part of a composite key. Add
  the missing columns listed in the diagnostic.
- ForbiddenSyntax / InvalidDateLiteral / InvalidBooleanLiteral: rewrite
  per the netsuite://dialect resource (SELECT TOP, TO_DATE, 'T'/'F').

Then run the corrected query through validate_query again.`, args["sql"], args["diagnostics"])

			return mcp.PromptResult{
				Description: "Repair a rejected Connect query",
				Messages: []mcp.PromptMessage{
					{
						Role:    "user",
						Content: mcp.ContentItem{Type: "text", Text: text},
					},
				},
			}
		},
	}
}
