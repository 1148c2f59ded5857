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
	"os"

	"github.com/spf13/cobra"
)

var (
	configFile  string
	schemaPath  string
	schemaWatch bool
	learningDB  string

	mirrorEnabled bool
	mirrorHost    string
	mirrorPort    int
	mirrorName    string
	mirrorUser    string
	mirrorSSLMode string
)

var rootCmd = &cobra.Command{
	Use:   "pgedge-netsuite-mcp",
	Short: "pgEdge NetSuite Connect Agent - schema-aware query validation over MCP",
	Long: `pgedge-netsuite-mcp is an MCP server that sits between LLM agents and a
NetSuite SuiteAnalytics Connect endpoint. It holds a curated schema
catalog (the three name forms of every table and column, the declared
foreign-key graph, and the Connect SQL dialect rules) and validates
generated queries before they cost a real request: unknown names,
ambiguous joins, incomplete composite keys, and dialect violations all
come back as a complete diagnostic list.

Approved queries can optionally be executed against a local Postgres
mirror of the Connect tables, and validation outcomes can be recorded in
a local learning store.`,
	RunE: runServe, // serving over stdio is the default action
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configFile, "config", "c", "", "Path to configuration file")
	pf.StringVar(&schemaPath, "schema", "", "Path to a schema definition YAML (default: embedded release)")

	sf := serveCmd.Flags()
	sf.BoolVar(&schemaWatch, "watch", false, "Reload the catalog when the schema file changes")
	sf.StringVar(&learningDB, "learning-db", "", "Path to the SQLite learning store")
	sf.BoolVar(&mirrorEnabled, "mirror", false, "Enable mirror query execution")
	sf.StringVar(&mirrorHost, "mirror-host", "", "Mirror database host")
	sf.IntVar(&mirrorPort, "mirror-port", 0, "Mirror database port")
	sf.StringVar(&mirrorName, "mirror-database", "", "Mirror database name")
	sf.StringVar(&mirrorUser, "mirror-user", "", "Mirror database user")
	sf.StringVar(&mirrorSSLMode, "mirror-sslmode", "", "Mirror connection sslmode")

	rootCmd.Flags().AddFlagSet(sf)

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(lintCmd)
	rootCmd.AddCommand(schemaCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
