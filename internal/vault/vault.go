// Package vault mirrors planner documents as plain JSON files, one
// YYYY-MM-DD.json per day, so plans can be backed up, inspected, or
// dropped into a synced folder. The vault is a mirror, never the
// authority: imports flow through the sync coordinator and get the
// same normalization and best-effort remote push as any other save.
package vault

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/Timolansberry/Daily-Planner/internal/dates"
	"github.com/Timolansberry/Daily-Planner/internal/plan"
	"github.com/Timolansberry/Daily-Planner/internal/store"
	"github.com/Timolansberry/Daily-Planner/internal/sync"
)

// ManifestName is the vault manifest file written next to the day files.
const ManifestName = "vault.toml"

// FormatVersion is bumped when the day-file layout changes.
const FormatVersion = 1

// Manifest describes a vault directory.
type Manifest struct {
	FormatVersion int    `toml:"format_version"`
	Page          string `toml:"page"`
	ExportedAt    string `toml:"exported_at"`
}

// ExportResult reports what an export did.
type ExportResult struct {
	Exported int
	Errors   []string
}

// ImportResult reports what an import did.
type ImportResult struct {
	Imported int
	Skipped  int
	Errors   []string
}

// Export writes every cached planner entry to dir as a pretty-printed
// JSON day file, plus the manifest. Files are written atomically via a
// temp file so a watcher never sees a half-written day.
func Export(ctx context.Context, cache *store.Store, dir string) (*ExportResult, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create vault directory: %w", err)
	}

	entries, err := cache.EntriesForPage(ctx, plan.PagePlanner)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate cache: %w", err)
	}

	result := &ExportResult{}
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("export interrupted: %w", err)
		}

		var pretty bytes.Buffer
		if err := json.Indent(&pretty, entry.Doc, "", "  "); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", entry.Key(), err))
			continue
		}

		path := filepath.Join(dir, entry.Date+".json")
		if err := writeFileAtomic(path, pretty.Bytes()); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", entry.Key(), err))
			continue
		}
		result.Exported++
	}

	if err := writeManifest(dir); err != nil {
		return result, err
	}
	return result, nil
}

// Import reads every day file in dir and saves it through the
// coordinator. Files that are not named YYYY-MM-DD.json are skipped;
// files that do not parse are skipped and reported in Errors.
func Import(ctx context.Context, coord sync.Coordinator, dir string) (*ImportResult, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return &ImportResult{}, nil
		}
		return nil, fmt.Errorf("failed to read vault directory: %w", err)
	}

	result := &ImportResult{}
	for _, de := range dirEntries {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("import interrupted: %w", err)
		}
		if de.IsDir() {
			continue
		}

		date, ok := dateFromFile(de.Name())
		if !ok {
			if strings.HasSuffix(de.Name(), ".json") {
				result.Skipped++
			}
			continue
		}

		if err := importDay(ctx, coord, filepath.Join(dir, de.Name()), date); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", de.Name(), err))
			result.Skipped++
			continue
		}
		result.Imported++
	}
	return result, nil
}

// importDay reads, normalizes, and saves one day file.
func importDay(ctx context.Context, coord sync.Coordinator, path, date string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read day file: %w", err)
	}

	state, err := plan.Normalize(data)
	if err != nil {
		return fmt.Errorf("failed to parse day file: %w", err)
	}

	coord.Save(ctx, date, state)
	return nil
}

// dateFromFile extracts the date from a YYYY-MM-DD.json filename.
func dateFromFile(name string) (string, bool) {
	if !strings.HasSuffix(name, ".json") {
		return "", false
	}
	date := strings.TrimSuffix(name, ".json")
	if !dates.Valid(date) {
		return "", false
	}
	return date, true
}

func writeManifest(dir string) error {
	manifest := Manifest{
		FormatVersion: FormatVersion,
		Page:          string(plan.PagePlanner),
		ExportedAt:    time.Now().UTC().Format(time.RFC3339),
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(manifest); err != nil {
		return fmt.Errorf("failed to serialize manifest: %w", err)
	}
	if err := writeFileAtomic(filepath.Join(dir, ManifestName), buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

// writeFileAtomic writes via temp file and rename.
func writeFileAtomic(path string, data []byte) error {
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}
