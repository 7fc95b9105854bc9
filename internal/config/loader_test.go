package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	t.Setenv("DAYPLAN_HOME", "/tmp/dayplan-test")

	cfg := DefaultConfig()

	if cfg.DatabasePath != "/tmp/dayplan-test/cache.db" {
		t.Errorf("Expected database under the home dir, got '%s'", cfg.DatabasePath)
	}
	if cfg.DebounceMS != 300 {
		t.Errorf("Expected 300ms debounce, got %d", cfg.DebounceMS)
	}
	if cfg.QuietInterval() != 300*time.Millisecond {
		t.Errorf("Expected QuietInterval 300ms, got %v", cfg.QuietInterval())
	}
	if cfg.Server.Addr != ":8787" {
		t.Errorf("Expected server addr ':8787', got '%s'", cfg.Server.Addr)
	}
	if cfg.Remote.Enabled() {
		t.Error("Expected remote to be disabled by default")
	}
	if cfg.Remote.Session() != nil {
		t.Error("Expected no session for a disabled remote")
	}
}

func TestRemoteEnabled(t *testing.T) {
	tests := []struct {
		name    string
		remote  RemoteConfig
		enabled bool
	}{
		{"empty", RemoteConfig{}, false},
		{"url only", RemoteConfig{BaseURL: "https://x"}, false},
		{"user only", RemoteConfig{UserID: "u42"}, false},
		{"both", RemoteConfig{BaseURL: "https://x", UserID: "u42"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.remote.Enabled(); got != tt.enabled {
				t.Errorf("Enabled() = %v, want %v", got, tt.enabled)
			}
		})
	}
}

func TestLoadMergesFileAndEnv(t *testing.T) {
	home := t.TempDir()
	t.Setenv("DAYPLAN_HOME", home)

	content := []byte("debounce_ms: 150\nremote:\n  base_url: https://sync.example.com\n  user_id: u42\n")
	if err := os.WriteFile(filepath.Join(home, "config.yaml"), content, 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	t.Setenv("DAYPLAN_REMOTE_TOKEN", "env-token")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.DebounceMS != 150 {
		t.Errorf("Expected file override 150, got %d", cfg.DebounceMS)
	}
	if cfg.Remote.BaseURL != "https://sync.example.com" {
		t.Errorf("Expected file base_url, got '%s'", cfg.Remote.BaseURL)
	}
	if cfg.Remote.Token != "env-token" {
		t.Errorf("Expected env token override, got '%s'", cfg.Remote.Token)
	}
	if !cfg.Remote.Enabled() {
		t.Error("Expected remote enabled with url and user set")
	}

	sess := cfg.Remote.Session()
	if sess == nil || sess.UserID != "u42" || sess.Token != "env-token" {
		t.Errorf("Session() = %+v", sess)
	}

	// Defaults fill everything the file leaves out.
	if cfg.Server.Addr != ":8787" {
		t.Errorf("Expected default server addr, got '%s'", cfg.Server.Addr)
	}
	if cfg.DatabasePath != filepath.Join(home, "cache.db") {
		t.Errorf("Expected default database path under home, got '%s'", cfg.DatabasePath)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("DAYPLAN_HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DebounceMS != 300 {
		t.Errorf("Expected default debounce, got %d", cfg.DebounceMS)
	}
}

func TestLoadFileExplicitPath(t *testing.T) {
	t.Setenv("DAYPLAN_HOME", t.TempDir())

	path := filepath.Join(t.TempDir(), "elsewhere.yaml")
	if err := os.WriteFile(path, []byte("debounce_ms: 75\n"), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.DebounceMS != 75 {
		t.Errorf("Expected 75 from the explicit file, got %d", cfg.DebounceMS)
	}
}

func TestWriteDefault(t *testing.T) {
	home := t.TempDir()
	t.Setenv("DAYPLAN_HOME", home)

	path := filepath.Join(home, "nested", "config.yaml")
	if err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read written config: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("Written config is empty")
	}
	if data[0] != '#' {
		t.Error("Expected a comment header at the top of the starter config")
	}
}
