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
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Definition is one versioned schema release as recorded on disk: every
// table with its name triple, columns, primary key and domain tags, every
// foreign-key edge, and the declared synonym list. It is loaded wholesale
// and never partially updated at runtime.
type Definition struct {
	Release     string           `yaml:"release"`
	Tables      []TableDef       `yaml:"tables"`
	ForeignKeys []ForeignKeyEdge `yaml:"foreign_keys"`
	Synonyms    []Synonym        `yaml:"synonyms,omitempty"`
}

// ParseDefinition decodes a YAML schema definition document
func ParseDefinition(data []byte) (*Definition, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("failed to parse schema definition: %w", err)
	}
	if def.Release == "" {
		return nil, fmt.Errorf("schema definition has no release tag")
	}
	if len(def.Tables) == 0 {
		return nil, fmt.Errorf("schema definition %s contains no tables", def.Release)
	}
	return &def, nil
}

// LoadDefinition reads and decodes a schema definition file
func LoadDefinition(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema definition %s: %w", path, err)
	}
	return ParseDefinition(data)
}
