// Package store provides the local cache for planner documents.
//
// This is the authoritative store in the local-first design: every save
// lands here synchronously before any remote write is attempted, and
// every load falls back here when the remote store is absent or fails.
//
// The cache is an embedded SQLite database in WAL mode, keyed by
// (page, date). Values are stored as the JSON document verbatim; the
// store never reshapes them. Each entry tracks when it was last written
// and when it was last pushed to the remote store, which drives both
// the bulk sync on sign-in and the unsynced-entry count shown by the
// CLI.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/Timolansberry/Daily-Planner/internal/plan"
)

// ErrNotFound is returned by Read when no entry exists for a key.
var ErrNotFound = errors.New("entry not found")

// Store wraps the SQLite connection holding the planner cache.
type Store struct {
	conn *sql.DB
	path string
}

// Entry is one cached document with its sync bookkeeping. SyncedAt is
// nil until the entry has been pushed to the remote store at least
// once since its last write.
type Entry struct {
	Page      plan.Page
	Date      string
	Doc       json.RawMessage
	UpdatedAt time.Time
	SyncedAt  *time.Time
}

// Key returns the flat "{page}:{date}" identity of the entry.
func (e *Entry) Key() string {
	return e.Page.Key(e.Date)
}

// Open creates a cache database at the specified path, creating the
// parent directory and the schema as needed.
//
// The database runs in WAL mode for concurrent reads. The caller MUST
// call Close() when done.
//
// Example:
//
//	cache, err := store.Open("~/.dayplan/cache.db")
//	if err != nil {
//	    return err
//	}
//	defer cache.Close()
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	conn, err := sql.Open("sqlite3", fmt.Sprintf("file:%s", path))
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping cache database: %w", err)
	}

	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(5 * time.Minute)

	s := &Store{
		conn: conn,
		path: path,
	}

	// Enable WAL mode for concurrent reads
	if _, err := s.conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// Set busy timeout to 5 seconds
	if _, err := s.conn.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if err := s.InitSchema(); err != nil {
		_ = s.Close()
		return nil, err
	}

	return s, nil
}

// Path returns the cache database file path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database connection.
// Performs a WAL checkpoint to ensure all changes are persisted.
func (s *Store) Close() error {
	if s.conn == nil {
		return nil
	}

	// Checkpoint WAL before closing
	if _, err := s.conn.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to checkpoint WAL: %v\n", err)
	}

	if err := s.conn.Close(); err != nil {
		return fmt.Errorf("failed to close cache database: %w", err)
	}

	s.conn = nil
	return nil
}

// InitSchema creates the cache schema if it doesn't exist.
// This is idempotent - safe to call multiple times.
func (s *Store) InitSchema() error {
	return s.InitSchemaContext(context.Background())
}

// InitSchemaContext creates the cache schema with context support.
func (s *Store) InitSchemaContext(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS entries (
		page       TEXT NOT NULL,
		date       TEXT NOT NULL,
		doc        TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		synced_at  TEXT,
		PRIMARY KEY (page, date)
	);

	CREATE INDEX IF NOT EXISTS idx_entries_page ON entries(page);
	CREATE INDEX IF NOT EXISTS idx_entries_unsynced ON entries(synced_at) WHERE synced_at IS NULL;
	`

	if _, err := s.conn.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize cache schema: %w", err)
	}

	return nil
}

// Write inserts or replaces the document for (page, date).
//
// A write resets the entry's synced marker: locally newer data is
// unsynced until the next remote push.
func (s *Store) Write(page plan.Page, date string, doc json.RawMessage) error {
	return s.WriteContext(context.Background(), page, date, doc)
}

// WriteContext inserts or replaces a document with context support.
func (s *Store) WriteContext(ctx context.Context, page plan.Page, date string, doc json.RawMessage) error {
	if !page.Valid() {
		return fmt.Errorf("unknown page %q", page)
	}
	if !json.Valid(doc) {
		return fmt.Errorf("document for %s is not valid JSON", page.Key(date))
	}

	query := `
	INSERT INTO entries (page, date, doc, updated_at, synced_at)
	VALUES (?, ?, ?, ?, NULL)
	ON CONFLICT(page, date) DO UPDATE SET
		doc = excluded.doc,
		updated_at = excluded.updated_at,
		synced_at = NULL
	`

	_, err := s.conn.ExecContext(ctx, query,
		string(page),
		date,
		string(doc),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to write entry %s: %w", page.Key(date), err)
	}

	return nil
}

// Read returns the document stored for (page, date).
// Returns ErrNotFound if no entry exists.
func (s *Store) Read(page plan.Page, date string) (json.RawMessage, error) {
	return s.ReadContext(context.Background(), page, date)
}

// ReadContext returns a stored document with context support.
func (s *Store) ReadContext(ctx context.Context, page plan.Page, date string) (json.RawMessage, error) {
	var doc string
	err := s.conn.QueryRowContext(ctx,
		`SELECT doc FROM entries WHERE page = ? AND date = ?`,
		string(page), date,
	).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read entry %s: %w", page.Key(date), err)
	}
	return json.RawMessage(doc), nil
}

// Delete removes the entry for (page, date).
// Returns nil if the entry doesn't exist (idempotent).
func (s *Store) Delete(page plan.Page, date string) error {
	return s.DeleteContext(context.Background(), page, date)
}

// DeleteContext removes an entry with context support.
func (s *Store) DeleteContext(ctx context.Context, page plan.Page, date string) error {
	_, err := s.conn.ExecContext(ctx,
		`DELETE FROM entries WHERE page = ? AND date = ?`,
		string(page), date,
	)
	if err != nil {
		return fmt.Errorf("failed to delete entry %s: %w", page.Key(date), err)
	}
	return nil
}

// MarkSynced records that the entry for (page, date) was pushed to the
// remote store at the given time.
func (s *Store) MarkSynced(page plan.Page, date string, at time.Time) error {
	return s.MarkSyncedContext(context.Background(), page, date, at)
}

// MarkSyncedContext records a remote push with context support.
func (s *Store) MarkSyncedContext(ctx context.Context, page plan.Page, date string, at time.Time) error {
	_, err := s.conn.ExecContext(ctx,
		`UPDATE entries SET synced_at = ? WHERE page = ? AND date = ?`,
		at.UTC().Format(time.RFC3339), string(page), date,
	)
	if err != nil {
		return fmt.Errorf("failed to mark entry %s synced: %w", page.Key(date), err)
	}
	return nil
}

// Entries returns every cached entry ordered by page then date.
// This drives the bulk sync push and the vault export.
func (s *Store) Entries() ([]Entry, error) {
	return s.EntriesContext(context.Background())
}

// EntriesContext returns every cached entry with context support.
func (s *Store) EntriesContext(ctx context.Context) ([]Entry, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT page, date, doc, updated_at, synced_at FROM entries ORDER BY page ASC, date ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// EntriesForPage returns every cached entry for one page, ordered by date.
func (s *Store) EntriesForPage(ctx context.Context, page plan.Page) ([]Entry, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT page, date, doc, updated_at, synced_at FROM entries WHERE page = ? ORDER BY date ASC`,
		string(page),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries for page %s: %w", page, err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// scanEntries is a helper to scan entries from query results.
func scanEntries(rows *sql.Rows) ([]Entry, error) {
	var entries []Entry

	for rows.Next() {
		var entry Entry
		var page, doc, updatedAt string
		var syncedAt sql.NullString

		if err := rows.Scan(&page, &entry.Date, &doc, &updatedAt, &syncedAt); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}

		entry.Page = plan.Page(page)
		entry.Doc = json.RawMessage(doc)
		if t, err := time.Parse(time.RFC3339, updatedAt); err == nil {
			entry.UpdatedAt = t
		}
		if syncedAt.Valid {
			if t, err := time.Parse(time.RFC3339, syncedAt.String); err == nil {
				entry.SyncedAt = &t
			}
		}

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entries: %w", err)
	}

	return entries, nil
}

// Count returns the total number of cached entries.
func (s *Store) Count() (int, error) {
	return s.CountContext(context.Background())
}

// CountContext returns the total number of cached entries with context support.
func (s *Store) CountContext(ctx context.Context) (int, error) {
	var count int
	err := s.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM entries").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count entries: %w", err)
	}
	return count, nil
}

// CountUnsynced returns the number of entries written since their last
// remote push.
func (s *Store) CountUnsynced(ctx context.Context) (int, error) {
	var count int
	err := s.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM entries WHERE synced_at IS NULL").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unsynced entries: %w", err)
	}
	return count, nil
}
