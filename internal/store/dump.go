package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/Timolansberry/Daily-Planner/internal/plan"
)

// ImportOptions contains configuration for a legacy dump import.
type ImportOptions struct {
	DryRun bool // Preview without writing
}

// ImportResult contains statistics about a dump import.
type ImportResult struct {
	Imported int
	Skipped  int
	Errors   []string
}

// ImportDump loads a browser localStorage export into the cache.
//
// The dump is a single JSON object mapping "{page}:{date}" keys to
// documents. Browser exports usually double-encode each value as a
// string containing the document; both that form and plain objects are
// accepted. Keys that do not name a known page (themes, auth tokens,
// and other page-local leftovers) are skipped, never fatal.
func (s *Store) ImportDump(ctx context.Context, r io.Reader, opts ImportOptions) (*ImportResult, error) {
	var dump map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&dump); err != nil {
		return nil, fmt.Errorf("failed to parse dump: %w", err)
	}

	// Sort keys so results and errors are deterministic
	keys := make([]string, 0, len(dump))
	for key := range dump {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	result := &ImportResult{}
	for _, key := range keys {
		page, date, err := plan.SplitKey(key)
		if err != nil {
			result.Skipped++
			continue
		}

		doc := unquoteDoc(dump[key])
		if !json.Valid(doc) {
			result.Skipped++
			result.Errors = append(result.Errors,
				fmt.Sprintf("entry %s holds no parseable document", key))
			continue
		}

		if !opts.DryRun {
			if err := s.WriteContext(ctx, page, date, doc); err != nil {
				result.Errors = append(result.Errors,
					fmt.Sprintf("failed to import %s: %v", key, err))
				continue
			}
		}
		result.Imported++
	}

	return result, nil
}

// unquoteDoc unwraps the double encoding in localStorage exports, where
// each value is a JSON string containing the document itself.
func unquoteDoc(raw json.RawMessage) json.RawMessage {
	var inner string
	if err := json.Unmarshal(raw, &inner); err == nil {
		return json.RawMessage(inner)
	}
	return raw
}
