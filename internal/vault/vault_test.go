package vault

import (
	"context"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"

	"github.com/Timolansberry/Daily-Planner/internal/plan"
	"github.com/Timolansberry/Daily-Planner/internal/store"
	"github.com/Timolansberry/Daily-Planner/internal/sync"
)

// setupCoordinator creates a local-only coordinator over a temp cache.
func setupCoordinator(t *testing.T) (sync.Coordinator, *store.Store) {
	t.Helper()

	cache, err := store.Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("Failed to open test cache: %v", err)
	}
	t.Cleanup(func() {
		_ = cache.Close()
	})
	return sync.New(cache, nil, log.New(io.Discard, "", 0)), cache
}

func savePlan(t *testing.T, coord sync.Coordinator, date, notes string) {
	t.Helper()

	state := plan.NewState()
	state.Notes = notes
	if result := coord.Save(context.Background(), date, state); result.Status != sync.SaveOK {
		t.Fatalf("Failed to seed plan for %s: %v", date, result.Status)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	coord, cache := setupCoordinator(t)
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "vault")

	savePlan(t, coord, "2026-08-25", "first day")
	savePlan(t, coord, "2026-08-26", "second day")

	result, err := Export(ctx, cache, dir)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if result.Exported != 2 || len(result.Errors) != 0 {
		t.Fatalf("Export = %+v, want 2 files and no errors", result)
	}

	data, err := os.ReadFile(filepath.Join(dir, "2026-08-25.json"))
	if err != nil {
		t.Fatalf("Failed to read exported day: %v", err)
	}
	if !strings.Contains(string(data), "\n  ") {
		t.Error("Exported day file is not pretty-printed")
	}

	var manifest Manifest
	if _, err := toml.DecodeFile(filepath.Join(dir, ManifestName), &manifest); err != nil {
		t.Fatalf("Failed to decode manifest: %v", err)
	}
	if manifest.FormatVersion != FormatVersion {
		t.Errorf("Manifest format version = %d, want %d", manifest.FormatVersion, FormatVersion)
	}
	if manifest.Page != "planner" {
		t.Errorf("Manifest page = %q, want planner", manifest.Page)
	}
	if manifest.ExportedAt == "" {
		t.Error("Manifest has no export timestamp")
	}

	// Import into a fresh cache and compare.
	coord2, _ := setupCoordinator(t)
	imported, err := Import(ctx, coord2, dir)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if imported.Imported != 2 || imported.Skipped != 0 {
		t.Fatalf("Import = %+v, want 2 imported", imported)
	}

	state, err := coord2.Load(ctx, "2026-08-26")
	if err != nil {
		t.Fatalf("Load after import failed: %v", err)
	}
	if state.Notes != "second day" {
		t.Errorf("Imported notes = %q, want 'second day'", state.Notes)
	}
}

func TestImportSkipsJunk(t *testing.T) {
	coord, _ := setupCoordinator(t)
	dir := t.TempDir()

	files := map[string]string{
		"2026-08-26.json": `{"notes": "good"}`,
		"2026-08-27.json": `{invalid json`,
		"not-a-date.json": `{"notes": "wrong name"}`,
		"2026-02-30.json": `{"notes": "impossible date"}`,
		"notes.txt":       "plain text",
		ManifestName:      "format_version = 1\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}

	result, err := Import(context.Background(), coord, dir)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if result.Imported != 1 {
		t.Errorf("Imported = %d, want 1", result.Imported)
	}
	if result.Skipped != 3 {
		t.Errorf("Skipped = %d, want the bad-json, bad-name, and bad-date files", result.Skipped)
	}
	if len(result.Errors) != 1 {
		t.Errorf("Errors = %v, want exactly the unparseable file", result.Errors)
	}

	state, err := coord.Load(context.Background(), "2026-08-26")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if state.Notes != "good" {
		t.Errorf("Imported notes = %q", state.Notes)
	}
}

func TestImportMissingDir(t *testing.T) {
	coord, _ := setupCoordinator(t)

	result, err := Import(context.Background(), coord, filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatalf("Import of a missing directory failed: %v", err)
	}
	if result.Imported != 0 || result.Skipped != 0 || len(result.Errors) != 0 {
		t.Errorf("Import of a missing directory = %+v, want empty result", result)
	}
}

func TestExportEmptyCache(t *testing.T) {
	_, cache := setupCoordinator(t)
	dir := filepath.Join(t.TempDir(), "vault")

	result, err := Export(context.Background(), cache, dir)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if result.Exported != 0 {
		t.Errorf("Exported = %d, want 0", result.Exported)
	}
	if _, err := os.Stat(filepath.Join(dir, ManifestName)); err != nil {
		t.Errorf("Manifest missing after empty export: %v", err)
	}
}

func TestDateFromFile(t *testing.T) {
	tests := []struct {
		name string
		date string
		ok   bool
	}{
		{"2026-08-26.json", "2026-08-26", true},
		{"2026-8-26.json", "", false},
		{"2026-08-26.txt", "", false},
		{"vault.toml", "", false},
		{"2026-08-26.json.tmp", "", false},
	}

	for _, tt := range tests {
		date, ok := dateFromFile(tt.name)
		if date != tt.date || ok != tt.ok {
			t.Errorf("dateFromFile(%q) = %q, %v; want %q, %v", tt.name, date, ok, tt.date, tt.ok)
		}
	}
}
