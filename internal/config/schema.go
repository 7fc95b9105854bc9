package config

import (
	"time"

	"github.com/Timolansberry/Daily-Planner/internal/remote"
)

// Config represents the full dayplan configuration
type Config struct {
	// DatabasePath is the SQLite cache file
	DatabasePath string `yaml:"database_path" mapstructure:"database_path"`

	// VaultDir is the plain-file mirror directory
	VaultDir string `yaml:"vault_dir" mapstructure:"vault_dir"`

	// DebounceMS is the quiet window for coalescing saves, in milliseconds
	DebounceMS int `yaml:"debounce_ms" mapstructure:"debounce_ms"`

	// Server configuration
	Server ServerConfig `yaml:"server" mapstructure:"server"`

	// Remote sync backend configuration
	Remote RemoteConfig `yaml:"remote" mapstructure:"remote"`

	// Log configuration
	Log LogConfig `yaml:"log" mapstructure:"log"`
}

// ServerConfig configures the local HTTP server
type ServerConfig struct {
	Addr string `yaml:"addr" mapstructure:"addr"`
}

// RemoteConfig configures the remote document store
type RemoteConfig struct {
	BaseURL   string `yaml:"base_url" mapstructure:"base_url"`
	ProjectID string `yaml:"project_id" mapstructure:"project_id"`
	UserID    string `yaml:"user_id" mapstructure:"user_id"`
	Token     string `yaml:"token" mapstructure:"token"`
}

// LogConfig configures the server's rolling file log
type LogConfig struct {
	File       string `yaml:"file" mapstructure:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb" mapstructure:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups" mapstructure:"max_backups"`
}

// QuietInterval returns the debounce window as a duration.
func (c *Config) QuietInterval() time.Duration {
	return time.Duration(c.DebounceMS) * time.Millisecond
}

// Enabled reports whether a remote backend is configured. Without both
// a base URL and a user id the app runs local-only.
func (r RemoteConfig) Enabled() bool {
	return r.BaseURL != "" && r.UserID != ""
}

// Session builds the remote session from configuration, or nil when
// the remote is not enabled.
func (r RemoteConfig) Session() *remote.Session {
	if !r.Enabled() {
		return nil
	}
	return &remote.Session{
		UserID:    r.UserID,
		ProjectID: r.ProjectID,
		Token:     r.Token,
	}
}
