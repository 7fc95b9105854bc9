package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	gosync "sync"
	"time"

	"github.com/Timolansberry/Daily-Planner/internal/plan"
	"github.com/Timolansberry/Daily-Planner/internal/remote"
	"github.com/Timolansberry/Daily-Planner/internal/store"
)

// coordinator implements the Coordinator interface.
type coordinator struct {
	cache  *store.Store
	remote remote.Store
	logger *log.Logger

	mu   gosync.Mutex
	sess *remote.Session
}

// New creates a new Coordinator.
//
// The cache must be open before passing it here. rs may be nil when no
// remote backend is configured; the coordinator then runs local-only
// and no remote path is ever attempted.
//
// If logger is nil, a default logger writing to stderr is used.
//
// Example:
//
//	cache, err := store.Open("~/.dayplan/cache.db")
//	if err != nil {
//	    return err
//	}
//	coord := sync.New(cache, remote.NewClient(baseURL, token), nil)
func New(cache *store.Store, rs remote.Store, logger *log.Logger) Coordinator {
	if logger == nil {
		logger = log.New(os.Stderr, "[sync] ", log.LstdFlags)
	}
	return &coordinator{
		cache:  cache,
		remote: rs,
		logger: logger,
	}
}

// SetSession implements Coordinator.SetSession.
func (c *coordinator) SetSession(sess *remote.Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sess = sess
}

// Session implements Coordinator.Session.
func (c *coordinator) Session() *remote.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sess
}

// activeSession returns the session only when a remote store is
// configured to use it with.
func (c *coordinator) activeSession() *remote.Session {
	if c.remote == nil {
		return nil
	}
	return c.Session()
}

// Load implements Coordinator.Load.
func (c *coordinator) Load(ctx context.Context, date string) (*plan.State, error) {
	doc, err := c.LoadRaw(ctx, plan.PagePlanner, date)
	if errors.Is(err, store.ErrNotFound) {
		return plan.NewState(), nil
	}
	if err != nil {
		return nil, err
	}

	if v := plan.DocSchema(doc); plan.NewerSchema(v) {
		c.logger.Printf("WARNING: plan for %s carries newer schema %s, loading best-effort", date, v)
	}

	state, err := plan.Normalize(doc)
	if err != nil {
		// A document we cannot even parse as an object is treated
		// like an absent one rather than surfaced.
		c.logger.Printf("WARNING: unreadable plan for %s, starting fresh: %v", date, err)
		return plan.NewState(), nil
	}
	return state, nil
}

// LoadRaw implements Coordinator.LoadRaw.
func (c *coordinator) LoadRaw(ctx context.Context, page plan.Page, date string) (json.RawMessage, error) {
	if sess := c.activeSession(); sess != nil {
		doc, err := c.remote.Read(ctx, sess.Ref(page, date))
		if err == nil {
			return doc, nil
		}
		if !errors.Is(err, remote.ErrNotFound) {
			c.logger.Printf("WARNING: remote read failed for %s, falling back to local: %v", page.Key(date), err)
		}
	}
	return c.cache.ReadContext(ctx, page, date)
}

// Save implements Coordinator.Save.
func (c *coordinator) Save(ctx context.Context, date string, state *plan.State) Result {
	state.Schema = plan.Schema
	doc, err := json.Marshal(state)
	if err != nil {
		c.logger.Printf("WARNING: failed to serialize plan for %s, edit lost: %v", date, err)
		return Result{Status: SaveOK}
	}
	return c.SaveRaw(ctx, plan.PagePlanner, date, doc)
}

// SaveRaw implements Coordinator.SaveRaw.
func (c *coordinator) SaveRaw(ctx context.Context, page plan.Page, date string, doc json.RawMessage) Result {
	// Local cache first, synchronously. A failure here is logged and
	// swallowed; the remote push still runs so the data has somewhere
	// to live.
	if err := c.cache.WriteContext(ctx, page, date, doc); err != nil {
		c.logger.Printf("WARNING: local write failed for %s: %v", page.Key(date), err)
	}

	sess := c.activeSession()
	if sess == nil {
		return Result{Status: SaveOK}
	}

	if err := c.push(ctx, sess, page, date, doc); err != nil {
		status := SaveRemoteUnavailable
		if remote.IsRejected(err) {
			status = SaveRemoteRejected
		}
		c.logger.Printf("WARNING: remote write failed for %s: %v", page.Key(date), err)
		return Result{Status: status, Err: err}
	}
	return Result{Status: SaveOK, Synced: true}
}

// push tags a document with sync metadata, writes it to the remote
// store, and marks the cache entry synced.
func (c *coordinator) push(ctx context.Context, sess *remote.Session, page plan.Page, date string, doc json.RawMessage) error {
	if err := c.remote.Write(ctx, sess.Ref(page, date), tagPayload(doc, sess, page)); err != nil {
		return err
	}
	if err := c.cache.MarkSyncedContext(ctx, page, date, time.Now()); err != nil {
		c.logger.Printf("WARNING: failed to mark %s synced: %v", page.Key(date), err)
	}
	return nil
}

// tagPayload merges the sync metadata into the document's top level:
// last-updated timestamp, owning user and project, and page category.
// Non-object documents are pushed untagged.
func tagPayload(doc json.RawMessage, sess *remote.Session, page plan.Page) json.RawMessage {
	var payload map[string]interface{}
	if err := json.Unmarshal(doc, &payload); err != nil {
		return doc
	}
	payload["lastUpdated"] = time.Now().UTC().Format(time.RFC3339)
	payload["userId"] = sess.UserID
	payload["projectId"] = sess.ProjectID
	payload["page"] = string(page)

	tagged, err := json.Marshal(payload)
	if err != nil {
		return doc
	}
	return tagged
}

// LoadUser implements Coordinator.LoadUser.
func (c *coordinator) LoadUser(ctx context.Context) (*plan.UserInfo, error) {
	doc, err := c.LoadRaw(ctx, plan.PageUserInfo, plan.UserInfoDate)
	if err != nil {
		return nil, err
	}
	var user plan.UserInfo
	if err := json.Unmarshal(doc, &user); err != nil {
		return nil, fmt.Errorf("failed to parse user record: %w", err)
	}
	return &user, nil
}

// SaveUser implements Coordinator.SaveUser.
func (c *coordinator) SaveUser(ctx context.Context, user *plan.UserInfo) Result {
	doc, err := json.Marshal(user)
	if err != nil {
		c.logger.Printf("WARNING: failed to serialize user record: %v", err)
		return Result{Status: SaveOK}
	}
	return c.SaveRaw(ctx, plan.PageUserInfo, plan.UserInfoDate, doc)
}

// ClearDay implements Coordinator.ClearDay.
func (c *coordinator) ClearDay(ctx context.Context, date string) (*plan.State, Result) {
	state := plan.NewState()
	result := c.Save(ctx, date, state)
	c.logger.Printf("Cleared plan for %s", date)
	return state, result
}

// BulkSync implements Coordinator.BulkSync.
func (c *coordinator) BulkSync(ctx context.Context) (*BulkResult, error) {
	sess := c.activeSession()
	if sess == nil {
		return nil, fmt.Errorf("no remote session active")
	}

	entries, err := c.cache.EntriesContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate cache: %w", err)
	}

	c.logger.Printf("Starting bulk sync: %d cached entries", len(entries))
	start := time.Now()
	result := &BulkResult{}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			result.Duration = time.Since(start)
			return result, fmt.Errorf("bulk sync interrupted: %w", err)
		}

		if err := c.push(ctx, sess, entry.Page, entry.Date, entry.Doc); err != nil {
			c.logger.Printf("WARNING: failed to push %s: %v", entry.Key(), err)
			result.Failed++
			continue
		}
		result.Pushed++
	}

	result.Duration = time.Since(start)
	c.logger.Printf("Bulk sync complete: pushed=%d failed=%d in %v",
		result.Pushed, result.Failed, result.Duration.Round(time.Millisecond))

	return result, nil
}
