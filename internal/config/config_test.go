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
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Schema.Path != "" {
		t.Errorf("Expected empty schema path (embedded release), got %s", cfg.Schema.Path)
	}

	if cfg.Mirror.Enabled {
		t.Error("Expected mirror to be disabled by default")
	}

	if cfg.Mirror.Port != 5432 {
		t.Errorf("Expected default mirror port 5432, got %d", cfg.Mirror.Port)
	}

	if cfg.Mirror.TablePrefix != "ns_" {
		t.Errorf("Expected default table prefix 'ns_', got %s", cfg.Mirror.TablePrefix)
	}

	if cfg.Mirror.MaxRows != 500 {
		t.Errorf("Expected default max rows 500, got %d", cfg.Mirror.MaxRows)
	}

	if cfg.Learning.Enabled {
		t.Error("Expected learning store to be disabled by default")
	}

	if cfg.Validation.MaxTop != 10000 {
		t.Errorf("Expected default max top 10000, got %d", cfg.Validation.MaxTop)
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
mirror:
  enabled: true
  host: mirror.internal
  user: readonly
  max_rows: 100
learning:
  enabled: true
  database_path: /tmp/learning.db
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path, CLIFlags{ConfigFileSet: true, ConfigFile: path})
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if !cfg.Mirror.Enabled {
		t.Error("Expected mirror to be enabled")
	}
	if cfg.Mirror.Host != "mirror.internal" {
		t.Errorf("Expected mirror host 'mirror.internal', got %s", cfg.Mirror.Host)
	}
	if cfg.Mirror.MaxRows != 100 {
		t.Errorf("Expected max rows 100, got %d", cfg.Mirror.MaxRows)
	}
	// merged defaults survive alongside file values
	if cfg.Mirror.Port != 5432 {
		t.Errorf("Expected default port to survive merge, got %d", cfg.Mirror.Port)
	}
	if cfg.Learning.DatabasePath != "/tmp/learning.db" {
		t.Errorf("Expected learning path from file, got %s", cfg.Learning.DatabasePath)
	}
}

func TestValidateConfigRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"mirror without user", func(c *Config) { c.Mirror.Enabled = true }},
		{"bad sslmode", func(c *Config) {
			c.Mirror.Enabled = true
			c.Mirror.User = "u"
			c.Mirror.SSLMode = "mandatory"
		}},
		{"learning without path", func(c *Config) { c.Learning.Enabled = true }},
		{"watch without path", func(c *Config) { c.Schema.Watch = true }},
		{"default top above max", func(c *Config) {
			c.Validation.DefaultTop = 20000
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			if err := validateConfig(cfg); err == nil {
				t.Error("Expected validation error, got nil")
			}
		})
	}
}

func TestCLIFlagsOverrideFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("mirror:\n  enabled: true\n  user: filer\n  host: fromfile\n"), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path, CLIFlags{
		ConfigFileSet: true,
		ConfigFile:    path,
		MirrorHost:    "fromflag",
		MirrorHostSet: true,
	})
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Mirror.Host != "fromflag" {
		t.Errorf("Expected CLI flag to win, got %s", cfg.Mirror.Host)
	}
}
