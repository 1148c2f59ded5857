/*-------------------------------------------------------------------------
 *
 * pgEdge NetSuite Connect Agent
 *
 * Portions copyright (c) 2026, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

// Package resources exposes the schema catalog over MCP resources, so an
// agent can pull the table list, the join graph, and the dialect rules
// into context without a tool round-trip.
package resources

import (
	"context"
	"fmt"
	"strings"

	"pgedge-netsuite-mcp/internal/catalog"
	"pgedge-netsuite-mcp/internal/mcp"
	"pgedge-netsuite-mcp/internal/tsv"
)

// Resource URI constants
const (
	URIRelease = "netsuite://schema/release"
	URITables  = "netsuite://schema/tables"
	URIJoins   = "netsuite://schema/joins"
	URIDialect = "netsuite://dialect"

	// per-table resources live under this prefix, e.g.
	// netsuite://schema/tables/transaction
	tableURIPrefix = "netsuite://schema/tables/"
)

// Registry serves catalog-backed resources. It satisfies
// mcp.ResourceProvider. The catalog is read through the provider on every
// call so a reloaded schema is visible immediately.
type Registry struct {
	provider *catalog.Provider
}

// NewRegistry creates a resource registry over the given catalog provider
func NewRegistry(provider *catalog.Provider) *Registry {
	return &Registry{provider: provider}
}

// List returns all resource definitions, including one per table
func (r *Registry) List() []mcp.Resource {
	cat := r.provider.Current()

	resources := []mcp.Resource{
		{
			URI:         URIRelease,
			Name:        "Schema release",
			Description: "The Connect schema release this server validates against",
			MimeType:    "text/plain",
		},
		{
			URI:         URITables,
			Name:        "Table list",
			Description: "All tables with canonical, documented, and live names",
			MimeType:    "text/tab-separated-values",
		},
		{
			URI:         URIJoins,
			Name:        "Join graph",
			Description: "Every declared foreign-key edge, including composite and ambiguous relationships",
			MimeType:    "text/plain",
		},
		{
			URI:         URIDialect,
			Name:        "Dialect rules",
			Description: "The SuiteAnalytics Connect SQL dialect rules the validator enforces",
			MimeType:    "text/markdown",
		},
	}

	for _, t := range cat.Tables() {
		resources = append(resources, mcp.Resource{
			URI:         tableURIPrefix + t.Canonical,
			Name:        "Table " + t.Canonical,
			Description: t.Description,
			MimeType:    "text/tab-separated-values",
		})
	}
	return resources
}

// Read serves one resource by URI
func (r *Registry) Read(ctx context.Context, uri string) (mcp.ResourceContent, error) {
	cat := r.provider.Current()

	switch {
	case uri == URIRelease:
		return mcp.NewResourceSuccess(uri, "text/plain", cat.Release())
	case uri == URITables:
		return mcp.NewResourceSuccess(uri, "text/tab-separated-values", tableList(cat))
	case uri == URIJoins:
		return mcp.NewResourceSuccess(uri, "text/plain", joinGraph(cat))
	case uri == URIDialect:
		return mcp.NewResourceSuccess(uri, "text/markdown", DialectRules)
	case strings.HasPrefix(uri, tableURIPrefix):
		return tableDetail(cat, uri, strings.TrimPrefix(uri, tableURIPrefix))
	default:
		return mcp.ResourceContent{}, fmt.Errorf("resource not found: %s", uri)
	}
}

func tableList(cat *catalog.Catalog) string {
	var sb strings.Builder
	sb.WriteString(tsv.BuildRow("canonical", "documented", "live", "domains"))
	for _, t := range cat.Tables() {
		sb.WriteString("\n")
		sb.WriteString(tsv.BuildRow(t.Canonical, t.Documented, t.Live, strings.Join(t.DomainTags, ",")))
	}
	return sb.String()
}

func joinGraph(cat *catalog.Catalog) string {
	var sb strings.Builder
	for _, e := range cat.Edges() {
		fmt.Fprintf(&sb, "%s  [%s]", e.String(), e.Group)
		if e.Composite() {
			sb.WriteString("  composite")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func tableDetail(cat *catalog.Catalog, uri, canonical string) (mcp.ResourceContent, error) {
	t, ok := cat.LookupTable(canonical)
	if !ok {
		return mcp.ResourceContent{}, fmt.Errorf("resource not found: %s", uri)
	}

	var sb strings.Builder
	sb.WriteString(tsv.BuildRow("canonical", "documented", "live", "type", "references"))
	for i := range t.Columns {
		col := &t.Columns[i]
		refs := ""
		if col.References != nil {
			refs = col.References.String()
		}
		sb.WriteString("\n")
		sb.WriteString(tsv.BuildRow(col.Canonical, col.Documented, col.Live, string(col.Type), refs))
	}
	return mcp.NewResourceSuccess(uri, "text/tab-separated-values", sb.String())
}
