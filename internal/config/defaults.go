package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	home := Home()
	return &Config{
		DatabasePath: filepath.Join(home, "cache.db"),
		VaultDir:     filepath.Join(home, "vault"),
		DebounceMS:   300,
		Server: ServerConfig{
			Addr: ":8787",
		},
		Remote: RemoteConfig{
			ProjectID: "daily-planner",
		},
		Log: LogConfig{
			File:       filepath.Join(home, "dayplan.log"),
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

const configHeader = `# dayplan configuration
#
# Every key can be overridden with a DAYPLAN_* environment variable,
# for example DAYPLAN_REMOTE_TOKEN or DAYPLAN_SERVER_ADDR.
#
# remote: leave base_url and user_id empty to run local-only.

`

// WriteDefault writes a starter configuration file with the current
// defaults. Parent directories are created as needed.
func WriteDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	body, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return fmt.Errorf("failed to serialize defaults: %w", err)
	}

	if err := os.WriteFile(path, append([]byte(configHeader), body...), 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
