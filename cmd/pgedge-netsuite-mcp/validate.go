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
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"pgedge-netsuite-mcp/internal/catalog"
	"pgedge-netsuite-mcp/internal/config"
	"pgedge-netsuite-mcp/internal/lint"
	"pgedge-netsuite-mcp/internal/validate"
)

var (
	validateFile   string
	validateIntent bool
)

var validateCmd = &cobra.Command{
	Use:   "validate [sql]",
	Short: "Validate a Connect query against the schema catalog",
	Long: `Validate runs the full pipeline on a query: name resolution,
join validation, and dialect linting. The query is read from the
argument, from --file, or from stdin. With --intent the input is a
structured query intent in JSON instead of SQL text.

The result is printed as JSON. The exit status is nonzero when the
query is rejected.`,
	RunE: runValidate,
}

var lintCmd = &cobra.Command{
	Use:   "lint [sql]",
	Short: "Check a query against the Connect dialect rules only",
	Long: `Lint checks a query for dialect violations without resolving names
or joins: pagination form, date and boolean literals, statement shape.
The input is read the same way as for validate.`,
	RunE: runLint,
}

func init() {
	validateCmd.Flags().StringVarP(&validateFile, "file", "f", "", "Read the query from a file")
	validateCmd.Flags().BoolVar(&validateIntent, "intent", false, "Treat the input as a JSON query intent")
	lintCmd.Flags().StringVarP(&validateFile, "file", "f", "", "Read the query from a file")
}

// readQueryInput reads the query text from the argument, --file, or stdin
func readQueryInput(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if validateFile != "" {
		data, err := os.ReadFile(validateFile)
		if err != nil {
			return "", fmt.Errorf("failed to read query file: %w", err)
		}
		return string(data), nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read query from stdin: %w", err)
	}
	return string(data), nil
}

func runValidate(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	input, err := readQueryInput(args)
	if err != nil {
		return err
	}
	if strings.TrimSpace(input) == "" {
		return fmt.Errorf("no query provided")
	}

	cat, err := catalog.Load(schemaPath)
	if err != nil {
		return fmt.Errorf("failed to load schema catalog: %w", err)
	}

	cfgPath, flags := configSources(cmd)
	cfg, err := config.LoadConfig(cfgPath, flags)
	if err != nil {
		return err
	}
	validator := validate.NewWithLimits(cat, validate.Limits{
		DefaultTop: cfg.Validation.DefaultTop,
		MaxTop:     cfg.Validation.MaxTop,
	})

	var result *validate.Result
	if validateIntent {
		var in validate.Intent
		if err := json.Unmarshal([]byte(input), &in); err != nil {
			return fmt.Errorf("failed to parse query intent: %w", err)
		}
		result, err = validator.ValidateIntent(&in)
	} else {
		result, err = validator.ValidateSQL(input)
	}
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to format result: %w", err)
	}
	fmt.Println(string(out))

	if result.Status == validate.StatusRejected {
		os.Exit(1)
	}
	return nil
}

func runLint(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	input, err := readQueryInput(args)
	if err != nil {
		return err
	}
	if strings.TrimSpace(input) == "" {
		return fmt.Errorf("no query provided")
	}

	diags := lint.New().Lint(input)
	if len(diags) == 0 {
		fmt.Println("ok")
		return nil
	}

	out, err := json.MarshalIndent(diags, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to format diagnostics: %w", err)
	}
	fmt.Println(string(out))
	os.Exit(1)
	return nil
}
