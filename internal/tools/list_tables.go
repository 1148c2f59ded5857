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
	"strings"

	"pgedge-netsuite-mcp/internal/catalog"
	"pgedge-netsuite-mcp/internal/mcp"
	"pgedge-netsuite-mcp/internal/tsv"
)

// ListTablesTool creates the list_tables tool
func ListTablesTool(provider *catalog.Provider) Tool {
	return Tool{
		Definition: mcp.Tool{
			Name:        "list_tables",
			Description: "List the tables of the current schema release with all three name forms: canonical (use this in queries you write), documented (Connect Browser spelling), and live (what the endpoint accepts; approved queries are rewritten to this form). Optionally filter by a domain tag such as 'transactions' or 'entities'.",
			InputSchema: mcp.InputSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"domain": map[string]interface{}{
						"type":        "string",
						"description": "Only list tables tagged with this domain",
					},
				},
			},
		},
		Handler: func(ctx context.Context, args map[string]interface{}) (mcp.ToolResponse, error) {
			cat := provider.Current()
			domain := ValidateOptionalStringParam(args, "domain", "")

			var sb strings.Builder
			sb.WriteString("Schema release: " + cat.Release() + "\n\n")
			sb.WriteString(tsv.BuildRow("canonical", "documented", "live", "domains", "columns", "description"))

			count := 0
			for _, t := range cat.Tables() {
				if domain != "" && !hasTag(t.DomainTags, domain) {
					continue
				}
				sb.WriteString("\n")
				sb.WriteString(tsv.BuildRow(
					t.Canonical,
					t.Documented,
					t.Live,
					strings.Join(t.DomainTags, ","),
					tsv.FormatValue(len(t.Columns)),
					t.Description,
				))
				count++
			}
			if count == 0 {
				return mcp.NewToolError("No tables match domain: " + domain)
			}
			return mcp.NewToolSuccess(sb.String())
		},
	}
}

func hasTag(tags []string, want string) bool {
	for _, tag := range tags {
		if strings.EqualFold(tag, want) {
			return true
		}
	}
	return false
}
