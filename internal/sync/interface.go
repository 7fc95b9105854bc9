package sync

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Timolansberry/Daily-Planner/internal/plan"
	"github.com/Timolansberry/Daily-Planner/internal/remote"
)

// SaveStatus classifies the remote half of a completed save. The local
// half is not represented here: local writes are the authoritative path
// and their rare failures are logged and swallowed rather than surfaced.
type SaveStatus int

const (
	// SaveOK means the save needed nothing beyond the local cache, or
	// the remote mirror accepted the write too.
	SaveOK SaveStatus = iota
	// SaveRemoteUnavailable means the remote store could not be
	// reached or answered with a server error. The local copy stands
	// alone until the next push.
	SaveRemoteUnavailable
	// SaveRemoteRejected means the remote store refused the write
	// outright. Retrying without intervention will not help.
	SaveRemoteRejected
)

// String returns a short label for status indicators.
func (s SaveStatus) String() string {
	switch s {
	case SaveOK:
		return "ok"
	case SaveRemoteUnavailable:
		return "remote-unavailable"
	case SaveRemoteRejected:
		return "remote-rejected"
	default:
		return "unknown"
	}
}

// Result describes one completed save. Err carries the swallowed
// remote error when Status is not SaveOK, so callers can surface a
// sync indicator without the save itself ever failing.
type Result struct {
	Status SaveStatus
	Synced bool // the remote mirror holds this write
	Err    error
}

// BulkResult summarizes a bulk push of the whole cache.
type BulkResult struct {
	Pushed   int
	Failed   int
	Duration time.Duration
}

// Coordinator orchestrates reads and writes across the local cache and
// the remote mirror.
//
// Reads are remote-first while a session is active and always fall
// back to the local cache; a date nobody ever saved loads as the empty
// template. Writes land in the local cache synchronously and are then
// mirrored best-effort. No method here retries; per-entry resilience
// lives in the coordinator's loops.
type Coordinator interface {
	// Load returns the plan for a date: from the remote store when a
	// session is active and the document exists, otherwise from the
	// local cache, otherwise a fresh empty template. Whatever the
	// source, the document passes through plan.Normalize, so legacy
	// shapes never reach callers.
	//
	// Example:
	//   state, err := coord.Load(ctx, "2026-08-26")
	Load(ctx context.Context, date string) (*plan.State, error)

	// Save persists the plan for a date: local cache first, then the
	// remote mirror when a session is active. The returned Result
	// reports the remote outcome; the call itself never fails.
	Save(ctx context.Context, date string, state *plan.State) Result

	// LoadRaw returns the stored document for any page without
	// normalization. Returns store.ErrNotFound when neither the
	// remote store nor the cache holds it.
	LoadRaw(ctx context.Context, page plan.Page, date string) (json.RawMessage, error)

	// SaveRaw persists an opaque document for any page under the same
	// local-first policy as Save.
	SaveRaw(ctx context.Context, page plan.Page, date string, doc json.RawMessage) Result

	// LoadUser returns the stored user-info record, or
	// store.ErrNotFound when nobody ever signed in.
	LoadUser(ctx context.Context) (*plan.UserInfo, error)

	// SaveUser persists the user-info record under the fixed key.
	SaveUser(ctx context.Context, user *plan.UserInfo) Result

	// ClearDay resets a date to the empty template and persists the
	// template immediately, overwriting prior data. Returns the fresh
	// state alongside the save result.
	ClearDay(ctx context.Context, date string) (*plan.State, Result)

	// BulkSync pushes every cached entry to the remote store and
	// marks each pushed entry as synced. This is the one-directional,
	// local-wins push that runs when a session is newly established:
	// remote data for the same keys is simply overwritten. Individual
	// failures are counted, logged, and not retried.
	//
	// Returns an error only when no session is active, the cache
	// cannot be enumerated, or ctx is canceled mid-push.
	BulkSync(ctx context.Context) (*BulkResult, error)

	// SetSession activates or clears (nil) the remote session. The
	// coordinator never attempts a remote path without one.
	SetSession(sess *remote.Session)

	// Session returns the active remote session, or nil.
	Session() *remote.Session
}
