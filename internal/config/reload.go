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
	"sync"
)

// ReloadableConfig wraps a Config with thread-safe access and reload
// capability. SIGHUP triggers Reload in the serve command.
type ReloadableConfig struct {
	mu       sync.RWMutex
	config   *Config
	path     string
	cliFlags CLIFlags
	onReload []func(*Config)
}

// NewReloadableConfig creates a new reloadable configuration
func NewReloadableConfig(config *Config, path string, cliFlags CLIFlags) *ReloadableConfig {
	return &ReloadableConfig{
		config:   config,
		path:     path,
		cliFlags: cliFlags,
		onReload: make([]func(*Config), 0),
	}
}

// Get returns the current configuration (read-only access)
func (rc *ReloadableConfig) Get() *Config {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	return rc.config
}

// Reload reloads the configuration from the file. On error the old config
// stays in effect.
func (rc *ReloadableConfig) Reload() error {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if rc.path == "" {
		return fmt.Errorf("no configuration file path set")
	}

	// LoadConfig applies CLI flags internally so precedence is preserved
	newConfig, err := LoadConfig(rc.path, rc.cliFlags)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	rc.logRestartRequiredSettings(newConfig)

	old := rc.config
	rc.config = newConfig

	for _, callback := range rc.onReload {
		callback(newConfig)
	}

	fmt.Fprintf(os.Stderr, "Configuration reloaded successfully from %s\n", rc.path)
	if old.Schema.Path != newConfig.Schema.Path {
		fmt.Fprintf(os.Stderr, "  Schema definition changed: %s -> %s\n",
			old.Schema.Path, newConfig.Schema.Path)
	}

	return nil
}

// logRestartRequiredSettings logs settings that changed but require a
// restart to take effect
func (rc *ReloadableConfig) logRestartRequiredSettings(newConfig *Config) {
	old := rc.config

	// the mirror pool is built once at startup
	if old.Mirror.Enabled != newConfig.Mirror.Enabled {
		fmt.Fprintf(os.Stderr, "  WARNING: mirror.enabled changed - requires restart\n")
	}
	if old.Mirror.Host != newConfig.Mirror.Host ||
		old.Mirror.Port != newConfig.Mirror.Port ||
		old.Mirror.Database != newConfig.Mirror.Database {
		fmt.Fprintf(os.Stderr, "  WARNING: mirror connection settings changed - requires restart\n")
	}
	if old.Learning.DatabasePath != newConfig.Learning.DatabasePath {
		fmt.Fprintf(os.Stderr, "  WARNING: learning.database_path changed - requires restart\n")
	}
}

// OnReload registers a callback invoked with the new configuration after
// a successful reload
func (rc *ReloadableConfig) OnReload(fn func(*Config)) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.onReload = append(rc.onReload, fn)
}

// GetPath returns the configuration file path
func (rc *ReloadableConfig) GetPath() string {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	return rc.path
}
