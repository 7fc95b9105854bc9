// Package remote talks to the optional remote document store that
// mirrors the local cache. The store is an opaque HTTP key-value
// backend addressed by hierarchical paths; it may be slow, absent, or
// broken at any time, and every caller in this codebase treats it as
// best-effort.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Timolansberry/Daily-Planner/internal/plan"
)

// ErrNotFound is returned by Read when the remote store holds no
// document at the requested path.
var ErrNotFound = errors.New("document not found")

// Ref addresses one document in the remote store.
type Ref struct {
	ProjectID string
	UserID    string
	Page      plan.Page
	Date      string
}

// Path returns the hierarchical document path:
// projects/{projectId}/users/{userId}/{page}/{date}.
func (r Ref) Path() string {
	return fmt.Sprintf("projects/%s/users/%s/%s/%s", r.ProjectID, r.UserID, r.Page, r.Date)
}

// Session identifies the signed-in user a remote mirror belongs to.
// A nil session anywhere in this codebase means local-only mode.
type Session struct {
	UserID    string
	ProjectID string
	Token     string
}

// Ref builds the document reference for one page and date under this
// session's user.
func (s *Session) Ref(page plan.Page, date string) Ref {
	return Ref{
		ProjectID: s.ProjectID,
		UserID:    s.UserID,
		Page:      page,
		Date:      date,
	}
}

// Store is the remote document store. Implementations never retry;
// resilience policy belongs to the sync coordinator.
type Store interface {
	// Read returns the document at ref, or ErrNotFound.
	Read(ctx context.Context, ref Ref) (json.RawMessage, error)
	// Write stores the document at ref, overwriting any prior value.
	Write(ctx context.Context, ref Ref, doc json.RawMessage) error
}

// StatusError reports a non-success HTTP response from the store.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("remote store error: status=%d body=%s", e.Code, e.Body)
}

// IsRejected reports whether the store refused the request outright
// (a 4xx response). Everything else, transport failures included, is
// treated as the store being unavailable.
func IsRejected(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code >= 400 && se.Code < 500
}
