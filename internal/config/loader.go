// Package config loads dayplan configuration from a YAML file under
// the dayplan home directory, with DAYPLAN_* environment overrides on
// every key and built-in defaults for all of them.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Home returns the dayplan home directory: $DAYPLAN_HOME when set,
// otherwise ~/.dayplan.
func Home() string {
	if dir := os.Getenv("DAYPLAN_HOME"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".dayplan"
	}
	return filepath.Join(home, ".dayplan")
}

// Path returns the config file location under the home directory.
func Path() string {
	return filepath.Join(Home(), "config.yaml")
}

// Load reads configuration in precedence order: defaults, then the
// config file if present, then DAYPLAN_* environment variables.
func Load() (*Config, error) {
	return LoadFile(Path())
}

// LoadFile is Load with an explicit config file location. A missing
// file is not an error; defaults and environment still apply.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)

	v.SetEnvPrefix("DAYPLAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	def := DefaultConfig()
	v.SetDefault("database_path", def.DatabasePath)
	v.SetDefault("vault_dir", def.VaultDir)
	v.SetDefault("debounce_ms", def.DebounceMS)
	v.SetDefault("server.addr", def.Server.Addr)
	v.SetDefault("remote.base_url", def.Remote.BaseURL)
	v.SetDefault("remote.project_id", def.Remote.ProjectID)
	v.SetDefault("remote.user_id", def.Remote.UserID)
	v.SetDefault("remote.token", def.Remote.Token)
	v.SetDefault("log.file", def.Log.File)
	v.SetDefault("log.max_size_mb", def.Log.MaxSizeMB)
	v.SetDefault("log.max_backups", def.Log.MaxBackups)
}
