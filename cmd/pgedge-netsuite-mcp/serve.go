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
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"pgedge-netsuite-mcp/internal/catalog"
	"pgedge-netsuite-mcp/internal/config"
	"pgedge-netsuite-mcp/internal/learning"
	"pgedge-netsuite-mcp/internal/logging"
	"pgedge-netsuite-mcp/internal/mcp"
	"pgedge-netsuite-mcp/internal/mirror"
	"pgedge-netsuite-mcp/internal/prompts"
	"pgedge-netsuite-mcp/internal/resources"
	"pgedge-netsuite-mcp/internal/tools"
	"pgedge-netsuite-mcp/internal/validate"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the MCP stdio protocol (the default command)",
	RunE:  runServe,
}

// releaseReporter adapts the catalog provider to mcp.ReleaseProvider
type releaseReporter struct {
	provider *catalog.Provider
}

func (r releaseReporter) SchemaRelease() string {
	return r.provider.Current().Release()
}

func runServe(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	cfgPath, flags := configSources(cmd)
	cfg, err := config.LoadConfig(cfgPath, flags)
	if err != nil {
		return err
	}
	reloadable := config.NewReloadableConfig(cfg, cfgPath, flags)

	cat, err := catalog.Load(cfg.Schema.Path)
	if err != nil {
		return fmt.Errorf("failed to load schema catalog: %w", err)
	}
	logging.Info("catalog loaded", "release", cat.Release(), "tables", len(cat.Tables()))

	provider := catalog.NewProvider(cat, cfg.Schema.Path)
	if cfg.Schema.Watch {
		if err := provider.Watch(); err != nil {
			return fmt.Errorf("failed to watch schema file: %w", err)
		}
		defer provider.Stop()
	}

	var store *learning.Store
	if cfg.Learning.Enabled {
		store, err = learning.NewStore(cfg.Learning.DatabasePath)
		if err != nil {
			return fmt.Errorf("failed to open learning store: %w", err)
		}
		defer store.Close()
	}

	var mirrorClient *mirror.Client
	if cfg.Mirror.Enabled {
		mirrorClient = mirror.NewClient(cfg.Mirror)
		// a down mirror must not block validation work
		if err := mirrorClient.Connect(context.Background()); err != nil {
			logging.Warn("mirror unavailable", "error", err.Error())
			mirrorClient = nil
		} else {
			defer mirrorClient.Close()
		}
	}

	limits := validate.Limits{
		DefaultTop: cfg.Validation.DefaultTop,
		MaxTop:     cfg.Validation.MaxTop,
	}

	toolRegistry := tools.NewRegistry()
	toolRegistry.Register("validate_query", tools.ValidateQueryTool(provider, store, limits))
	toolRegistry.Register("list_tables", tools.ListTablesTool(provider))
	toolRegistry.Register("describe_table", tools.DescribeTableTool(provider))
	toolRegistry.Register("explain_joins", tools.ExplainJoinsTool(provider))
	toolRegistry.Register("query_mirror", tools.QueryMirrorTool(provider, mirrorClient, store))
	toolRegistry.Register("record_feedback", tools.RecordFeedbackTool(store))

	promptRegistry := prompts.NewRegistry()
	promptRegistry.Register("write_query", prompts.WriteQueryPrompt())
	promptRegistry.Register("repair_query", prompts.RepairQueryPrompt())

	server := mcp.NewServer(toolRegistry)
	server.SetResourceProvider(resources.NewRegistry(provider))
	server.SetPromptProvider(promptRegistry)
	server.SetReleaseProvider(releaseReporter{provider: provider})

	// the catalog follows every successful configuration reload
	reloadable.OnReload(func(newCfg *config.Config) {
		if newCfg.Schema.Path == "" {
			return
		}
		if err := provider.Rebuild(); err != nil {
			logging.Error("catalog reload failed", "error", err.Error())
		}
	})

	// SIGHUP reloads the configuration file
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	go func() {
		for range hup {
			logging.Info("reloading configuration", "path", reloadable.GetPath())
			if err := reloadable.Reload(); err != nil {
				logging.Warn("configuration reload failed", "error", err.Error())
			}
		}
	}()

	return server.Run()
}

// configSources maps the cobra flag state onto the config loader inputs
func configSources(cmd *cobra.Command) (string, config.CLIFlags) {
	changed := cmd.Flags().Changed

	path := configFile
	if path == "" {
		path = config.DefaultConfigPath()
	}

	return path, config.CLIFlags{
		ConfigFileSet: changed("config"),
		ConfigFile:    configFile,

		SchemaPath:    schemaPath,
		SchemaPathSet: changed("schema"),
		SchemaWatch:   schemaWatch,
		SchemaWatched: changed("watch"),

		MirrorEnabled:    mirrorEnabled,
		MirrorEnabledSet: changed("mirror"),
		MirrorHost:       mirrorHost,
		MirrorHostSet:    changed("mirror-host"),
		MirrorPort:       mirrorPort,
		MirrorPortSet:    changed("mirror-port"),
		MirrorName:       mirrorName,
		MirrorNameSet:    changed("mirror-database"),
		MirrorUser:       mirrorUser,
		MirrorUserSet:    changed("mirror-user"),
		MirrorSSLMode:    mirrorSSLMode,
		MirrorSSLSet:     changed("mirror-sslmode"),

		LearningPath:    learningDB,
		LearningPathSet: changed("learning-db"),
	}
}
