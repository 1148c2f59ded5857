/*-------------------------------------------------------------------------
 *
 * pgEdge NetSuite Connect Agent
 *
 * Portions copyright (c) 2026, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

package catalog

import (
	_ "embed"
	"fmt"
)

// DefaultRelease is the schema release compiled into the binary
const DefaultRelease = "2025.2"

//go:embed schema/netsuite_2025_2.yaml
var embeddedDefinition []byte

// LoadEmbedded builds the catalog from the schema definition compiled into
// the binary. Used when no definition path is configured.
func LoadEmbedded() (*Catalog, error) {
	def, err := ParseDefinition(embeddedDefinition)
	if err != nil {
		return nil, fmt.Errorf("embedded schema definition is broken: %w", err)
	}
	return Build(def)
}

// Load builds the catalog from a definition file, falling back to the
// embedded release when path is empty
func Load(path string) (*Catalog, error) {
	if path == "" {
		return LoadEmbedded()
	}
	def, err := LoadDefinition(path)
	if err != nil {
		return nil, err
	}
	return Build(def)
}
