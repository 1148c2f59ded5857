/*-------------------------------------------------------------------------
 *
 * pgEdge NetSuite Connect Agent
 *
 * Portions copyright (c) 2026, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config represents the complete server configuration
type Config struct {
	// Schema catalog configuration
	Schema SchemaConfig `yaml:"schema"`

	// Mirror database configuration (local Postgres replica of Connect data)
	Mirror MirrorConfig `yaml:"mirror"`

	// Learning store configuration
	Learning LearningConfig `yaml:"learning"`

	// Validation limits
	Validation ValidationConfig `yaml:"validation"`
}

// SchemaConfig holds schema catalog settings
type SchemaConfig struct {
	Path  string `yaml:"path"`  // Path to a schema definition YAML (default: embedded release)
	Watch bool   `yaml:"watch"` // Reload the catalog when the definition file changes
}

// MirrorConfig holds mirror database connection settings. The mirror is a
// Postgres database holding ns_* copies of the Connect tables; queries
// approved by the validator can be executed against it.
type MirrorConfig struct {
	Enabled  bool   `yaml:"enabled"`  // Whether mirror execution is available (default: false)
	Host     string `yaml:"host"`     // Database host (default: localhost)
	Port     int    `yaml:"port"`     // Database port (default: 5432)
	Database string `yaml:"database"` // Database name (default: netsuite_mirror)
	User     string `yaml:"user"`     // Database user (required when enabled)
	Password string `yaml:"password"` // Password (optional, PGEDGE_NETSUITE_MIRROR_PASSWORD env var if not set)
	SSLMode  string `yaml:"sslmode"`  // SSL mode: disable, require, verify-ca, verify-full (default: prefer)

	// Connection pool settings
	PoolMaxConns        int    `yaml:"pool_max_conns"`          // Maximum number of connections (default: 4)
	PoolMinConns        int    `yaml:"pool_min_conns"`          // Minimum number of connections (default: 0)
	PoolMaxConnIdleTime string `yaml:"pool_max_conn_idle_time"` // Idle timeout before a connection closes (default: 30m)

	TablePrefix string `yaml:"table_prefix"` // Prefix of mirrored tables (default: ns_)
	MaxRows     int    `yaml:"max_rows"`     // Row cap on mirror query results (default: 500)
}

// LearningConfig holds the validation outcome store settings
type LearningConfig struct {
	Enabled      bool   `yaml:"enabled"`       // Whether outcome recording is enabled (default: false)
	DatabasePath string `yaml:"database_path"` // Path to the SQLite store (required when enabled)
}

// ValidationConfig holds limits applied by the validator
type ValidationConfig struct {
	DefaultTop int `yaml:"default_top"` // TOP applied to intents that give none (0 = leave unpaginated)
	MaxTop     int `yaml:"max_top"`     // Upper bound on TOP values (default: 10000)
}

// CLIFlags represents command line flag values and whether they were
// explicitly set
type CLIFlags struct {
	ConfigFileSet bool
	ConfigFile    string

	SchemaPath    string
	SchemaPathSet bool
	SchemaWatch   bool
	SchemaWatched bool

	MirrorEnabled    bool
	MirrorEnabledSet bool
	MirrorHost       string
	MirrorHostSet    bool
	MirrorPort       int
	MirrorPortSet    bool
	MirrorName       string
	MirrorNameSet    bool
	MirrorUser       string
	MirrorUserSet    bool
	MirrorSSLMode    string
	MirrorSSLSet     bool

	LearningPath    string
	LearningPathSet bool
}

// LoadConfig loads configuration with proper priority:
// 1. Command line flags (highest priority)
// 2. Environment variables
// 3. Configuration file
// 4. Hard-coded defaults (lowest priority)
func LoadConfig(configPath string, cliFlags CLIFlags) (*Config, error) {
	cfg := defaultConfig()

	if configPath != "" {
		fileCfg, err := loadConfigFile(configPath)
		if err != nil {
			// An explicitly named file must load; the default path may
			// simply not exist
			if cliFlags.ConfigFileSet {
				return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
			}
		} else {
			mergeConfig(cfg, fileCfg)
		}
	}

	applyEnvironmentVariables(cfg)
	applyCLIFlags(cfg, cliFlags)

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns configuration with hard-coded defaults
func defaultConfig() *Config {
	return &Config{
		Schema: SchemaConfig{
			Path:  "", // empty means the embedded release
			Watch: false,
		},
		Mirror: MirrorConfig{
			Enabled:             false,
			Host:                "localhost",
			Port:                5432,
			Database:            "netsuite_mirror",
			User:                "",
			Password:            "",
			SSLMode:             "prefer",
			PoolMaxConns:        4,
			PoolMinConns:        0,
			PoolMaxConnIdleTime: "30m",
			TablePrefix:         "ns_",
			MaxRows:             500,
		},
		Learning: LearningConfig{
			Enabled:      false,
			DatabasePath: "",
		},
		Validation: ValidationConfig{
			DefaultTop: 0,
			MaxTop:     10000,
		},
	}
}

// loadConfigFile loads configuration from a YAML file
func loadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	return &cfg, nil
}

// mergeConfig merges source config into dest, only overriding non-zero
// values
func mergeConfig(dest, src *Config) {
	if src.Schema.Path != "" {
		dest.Schema.Path = src.Schema.Path
	}
	if src.Schema.Watch {
		dest.Schema.Watch = true
	}

	if src.Mirror.Enabled {
		dest.Mirror.Enabled = true
	}
	if src.Mirror.Host != "" {
		dest.Mirror.Host = src.Mirror.Host
	}
	if src.Mirror.Port != 0 {
		dest.Mirror.Port = src.Mirror.Port
	}
	if src.Mirror.Database != "" {
		dest.Mirror.Database = src.Mirror.Database
	}
	if src.Mirror.User != "" {
		dest.Mirror.User = src.Mirror.User
	}
	if src.Mirror.Password != "" {
		dest.Mirror.Password = src.Mirror.Password
	}
	if src.Mirror.SSLMode != "" {
		dest.Mirror.SSLMode = src.Mirror.SSLMode
	}
	if src.Mirror.PoolMaxConns != 0 {
		dest.Mirror.PoolMaxConns = src.Mirror.PoolMaxConns
	}
	if src.Mirror.PoolMinConns != 0 {
		dest.Mirror.PoolMinConns = src.Mirror.PoolMinConns
	}
	if src.Mirror.PoolMaxConnIdleTime != "" {
		dest.Mirror.PoolMaxConnIdleTime = src.Mirror.PoolMaxConnIdleTime
	}
	if src.Mirror.TablePrefix != "" {
		dest.Mirror.TablePrefix = src.Mirror.TablePrefix
	}
	if src.Mirror.MaxRows != 0 {
		dest.Mirror.MaxRows = src.Mirror.MaxRows
	}

	if src.Learning.Enabled || src.Learning.DatabasePath != "" {
		dest.Learning.Enabled = src.Learning.Enabled
		if src.Learning.DatabasePath != "" {
			dest.Learning.DatabasePath = src.Learning.DatabasePath
		}
	}

	if src.Validation.DefaultTop != 0 {
		dest.Validation.DefaultTop = src.Validation.DefaultTop
	}
	if src.Validation.MaxTop != 0 {
		dest.Validation.MaxTop = src.Validation.MaxTop
	}
}

// applyEnvironmentVariables overrides config with environment variables
func applyEnvironmentVariables(cfg *Config) {
	if v := os.Getenv("PGEDGE_NETSUITE_SCHEMA_PATH"); v != "" {
		cfg.Schema.Path = v
	}
	if v := os.Getenv("PGEDGE_NETSUITE_MIRROR_HOST"); v != "" {
		cfg.Mirror.Host = v
		cfg.Mirror.Enabled = true
	}
	if v := os.Getenv("PGEDGE_NETSUITE_MIRROR_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Mirror.Port = port
		}
	}
	if v := os.Getenv("PGEDGE_NETSUITE_MIRROR_DATABASE"); v != "" {
		cfg.Mirror.Database = v
	}
	if v := os.Getenv("PGEDGE_NETSUITE_MIRROR_USER"); v != "" {
		cfg.Mirror.User = v
	}
	if v := os.Getenv("PGEDGE_NETSUITE_MIRROR_PASSWORD"); v != "" {
		cfg.Mirror.Password = v
	}
	if v := os.Getenv("PGEDGE_NETSUITE_MIRROR_SSLMODE"); v != "" {
		cfg.Mirror.SSLMode = v
	}
	if v := os.Getenv("PGEDGE_NETSUITE_LEARNING_DB"); v != "" {
		cfg.Learning.Enabled = true
		cfg.Learning.DatabasePath = v
	}
}

// applyCLIFlags overrides config with explicitly set command line flags
func applyCLIFlags(cfg *Config, flags CLIFlags) {
	if flags.SchemaPathSet {
		cfg.Schema.Path = flags.SchemaPath
	}
	if flags.SchemaWatched {
		cfg.Schema.Watch = flags.SchemaWatch
	}
	if flags.MirrorEnabledSet {
		cfg.Mirror.Enabled = flags.MirrorEnabled
	}
	if flags.MirrorHostSet {
		cfg.Mirror.Host = flags.MirrorHost
	}
	if flags.MirrorPortSet {
		cfg.Mirror.Port = flags.MirrorPort
	}
	if flags.MirrorNameSet {
		cfg.Mirror.Database = flags.MirrorName
	}
	if flags.MirrorUserSet {
		cfg.Mirror.User = flags.MirrorUser
	}
	if flags.MirrorSSLSet {
		cfg.Mirror.SSLMode = flags.MirrorSSLMode
	}
	if flags.LearningPathSet {
		cfg.Learning.Enabled = true
		cfg.Learning.DatabasePath = flags.LearningPath
	}
}

// validateConfig checks the final configuration for consistency
func validateConfig(cfg *Config) error {
	if cfg.Schema.Path != "" {
		if _, err := os.Stat(cfg.Schema.Path); err != nil {
			return fmt.Errorf("schema path %s: %w", cfg.Schema.Path, err)
		}
	}
	if cfg.Schema.Watch && cfg.Schema.Path == "" {
		return fmt.Errorf("schema.watch requires schema.path; the embedded release cannot change")
	}

	if cfg.Mirror.Enabled {
		if cfg.Mirror.User == "" {
			return fmt.Errorf("mirror.user is required when the mirror is enabled")
		}
		if cfg.Mirror.Port < 1 || cfg.Mirror.Port > 65535 {
			return fmt.Errorf("mirror.port %d out of range", cfg.Mirror.Port)
		}
		switch cfg.Mirror.SSLMode {
		case "disable", "allow", "prefer", "require", "verify-ca", "verify-full":
		default:
			return fmt.Errorf("mirror.sslmode %q is not a valid libpq sslmode", cfg.Mirror.SSLMode)
		}
		if cfg.Mirror.MaxRows < 1 {
			return fmt.Errorf("mirror.max_rows must be positive")
		}
	}

	if cfg.Learning.Enabled && cfg.Learning.DatabasePath == "" {
		return fmt.Errorf("learning.database_path is required when learning is enabled")
	}

	if cfg.Validation.MaxTop < 1 {
		return fmt.Errorf("validation.max_top must be positive")
	}
	if cfg.Validation.DefaultTop < 0 || cfg.Validation.DefaultTop > cfg.Validation.MaxTop {
		return fmt.Errorf("validation.default_top must be between 0 and validation.max_top")
	}

	return nil
}

// DefaultConfigPath returns the conventional config file location under
// the user's home directory
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "pgedge-netsuite-mcp.yaml"
	}
	return filepath.Join(home, ".pgedge-netsuite-mcp", "config.yaml")
}
