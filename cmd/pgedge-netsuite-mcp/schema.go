/*-------------------------------------------------------------------------
 *
 * pgEdge NetSuite Connect Agent
 *
 * Portions copyright (c) 2026, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"pgedge-netsuite-mcp/internal/catalog"
	"pgedge-netsuite-mcp/internal/schemadoc"
)

var schemaImportOut string

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Inspect and maintain the schema catalog",
}

var schemaShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print a summary of the loaded schema release",
	RunE:  runSchemaShow,
}

var schemaVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Run the release verification checks on a schema definition",
	Long: `Verify builds the catalog from a schema definition and reports the
first broken invariant: name collisions after folding, undeclared
synonym collisions, missing primary key columns, foreign-key edges
that reference unknown tables or columns, and mismatched edge arity.`,
	RunE: runSchemaVerify,
}

var schemaImportCmd = &cobra.Command{
	Use:   "import <records-browser.html>",
	Short: "Import a table definition from a Connect Browser HTML page",
	Long: `Import parses a saved Connect Browser table page and merges the
table and its join definitions into a schema definition file. The live
name cannot be derived from the page and is left empty for curation.`,
	Args: cobra.ExactArgs(1),
	RunE: runSchemaImport,
}

func init() {
	schemaImportCmd.Flags().StringVarP(&schemaImportOut, "out", "o", "", "Write the merged definition to this file (default: overwrite --schema)")
	schemaCmd.AddCommand(schemaShowCmd)
	schemaCmd.AddCommand(schemaVerifyCmd)
	schemaCmd.AddCommand(schemaImportCmd)
}

func runSchemaShow(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	cat, err := catalog.Load(schemaPath)
	if err != nil {
		return err
	}

	fmt.Printf("release:      %s\n", cat.Release())
	fmt.Printf("tables:       %d\n", len(cat.Tables()))
	fmt.Printf("foreign keys: %d\n", len(cat.Edges()))
	fmt.Printf("synonyms:     %d\n", len(cat.Synonyms()))
	return nil
}

func runSchemaVerify(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	if _, err := catalog.Load(schemaPath); err != nil {
		return err
	}
	fmt.Println("ok")
	return nil
}

func runSchemaImport(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	if schemaPath == "" {
		return fmt.Errorf("import requires --schema pointing at a definition file")
	}

	imported, err := schemadoc.ImportFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to import %s: %w", args[0], err)
	}

	def, err := catalog.LoadDefinition(schemaPath)
	if err != nil {
		return err
	}
	schemadoc.Merge(def, imported)

	// imported tables have no live name yet, so a failed build is a
	// warning rather than an error
	if _, err := catalog.Build(def); err != nil {
		fmt.Fprintf(os.Stderr, "warning: merged definition does not verify: %v\n", err)
		fmt.Fprintln(os.Stderr, "the imported table likely needs a curated live name")
	}

	out := schemaImportOut
	if out == "" {
		out = schemaPath
	}
	data, err := yaml.Marshal(def)
	if err != nil {
		return fmt.Errorf("failed to encode schema definition: %w", err)
	}
	if err := os.WriteFile(out, data, 0644); err != nil {
		return fmt.Errorf("failed to write schema definition: %w", err)
	}

	fmt.Printf("merged %s into %s (%d columns, %d joins)\n",
		imported.Table.Documented, out, len(imported.Table.Columns), len(imported.Edges))
	return nil
}
