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
	"testing"

	"pgedge-netsuite-mcp/internal/catalog"
	"pgedge-netsuite-mcp/internal/mcp"
)

func testProvider(t *testing.T) *catalog.Provider {
	t.Helper()
	cat, err := catalog.LoadEmbedded()
	if err != nil {
		t.Fatalf("LoadEmbedded failed: %v", err)
	}
	return catalog.NewProvider(cat, "")
}

// responseText collects the text content of a tool response
func responseText(t *testing.T, resp mcp.ToolResponse) string {
	t.Helper()
	var sb strings.Builder
	for _, item := range resp.Content {
		sb.WriteString(item.Text)
	}
	return sb.String()
}

func TestRegistryOrderAndExecute(t *testing.T) {
	r := NewRegistry()
	handler := func(ctx context.Context, args map[string]interface{}) (mcp.ToolResponse, error) {
		return mcp.NewToolSuccess("ok")
	}
	r.Register("beta", Tool{Definition: mcp.Tool{Name: "beta"}, Handler: handler})
	r.Register("alpha", Tool{Definition: mcp.Tool{Name: "alpha"}, Handler: handler})

	list := r.List()
	if len(list) != 2 || list[0].Name != "beta" || list[1].Name != "alpha" {
		t.Errorf("List order = %+v", list)
	}

	resp, err := r.Execute(context.Background(), "alpha", nil)
	if err != nil {
		t.Fatal(err)
	}
	if resp.IsError || responseText(t, resp) != "ok" {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestRegistryUnknownTool(t *testing.T) {
	r := NewRegistry()
	resp, err := r.Execute(context.Background(), "ghost", nil)
	if err != nil {
		t.Fatal(err)
	}
	if !resp.IsError {
		t.Error("expected an error response for an unknown tool")
	}
}
