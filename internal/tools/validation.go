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
	"fmt"

	"pgedge-netsuite-mcp/internal/mcp"
)

// ValidateStringParam validates and extracts a required string parameter
// from args. Returns a ToolResponse error if validation fails.
func ValidateStringParam(args map[string]interface{}, name string) (string, *mcp.ToolResponse) {
	value, ok := args[name].(string)
	if !ok || value == "" {
		resp, _ := mcp.NewToolError(fmt.Sprintf("Missing or invalid '%s' argument", name))
		return "", &resp
	}
	return value, nil
}

// ValidateOptionalStringParam extracts an optional string parameter,
// returning defaultValue when absent
func ValidateOptionalStringParam(args map[string]interface{}, name string, defaultValue string) string {
	value, ok := args[name].(string)
	if !ok {
		return defaultValue
	}
	return value
}

// ValidateOptionalNumberParam extracts an optional number parameter,
// returning defaultValue when absent
func ValidateOptionalNumberParam(args map[string]interface{}, name string, defaultValue float64) float64 {
	value, ok := args[name].(float64)
	if !ok {
		return defaultValue
	}
	return value
}

// ValidateStringListParam extracts a required list-of-strings parameter.
// JSON arrays arrive as []interface{}.
func ValidateStringListParam(args map[string]interface{}, name string) ([]string, *mcp.ToolResponse) {
	raw, ok := args[name].([]interface{})
	if !ok || len(raw) == 0 {
		resp, _ := mcp.NewToolError(fmt.Sprintf("Missing or invalid '%s' argument (expected a non-empty array of strings)", name))
		return nil, &resp
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		s, ok := v.(string)
		if !ok {
			resp, _ := mcp.NewToolError(fmt.Sprintf("Argument '%s' must contain only strings", name))
			return nil, &resp
		}
		out = append(out, s)
	}
	return out, nil
}
