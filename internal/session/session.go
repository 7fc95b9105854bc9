// Package session holds the live planner state for the active date and
// routes every mutation through the debounced writer.
//
// The session:
// 1. Owns the in-memory plan for exactly one date at a time
// 2. Applies mutations and schedules a debounced save for each
// 3. Flushes pending writes on navigation and shutdown
// 4. Handles sign-in: persists the user record, activates the remote
//    session and pushes the whole cache
//
// Handlers and commands go through the session's methods; there is no
// shared global state.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	gosync "sync"
	"time"

	"github.com/Timolansberry/Daily-Planner/internal/plan"
	"github.com/Timolansberry/Daily-Planner/internal/remote"
	"github.com/Timolansberry/Daily-Planner/internal/store"
	"github.com/Timolansberry/Daily-Planner/internal/sync"
)

// Config holds configuration for a session.
type Config struct {
	// QuietInterval is the debounce window for mutation saves.
	// Zero means sync.DefaultQuietInterval.
	QuietInterval time.Duration

	// OnSave, when set, runs after every completed debounced save.
	// Used to feed the event hub.
	OnSave func(date string, result sync.Result)

	// Logger for session activity
	Logger *log.Logger
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		QuietInterval: sync.DefaultQuietInterval,
		Logger:        log.New(os.Stderr, "[session] ", log.LstdFlags),
	}
}

// Session is the application controller. It is safe for concurrent use.
type Session struct {
	coord  sync.Coordinator
	writer *sync.Writer
	logger *log.Logger

	mu    gosync.Mutex
	date  string
	state *plan.State
	user  *plan.UserInfo
}

// New creates a session on top of a coordinator. Use Start to load the
// initial date before calling any mutator.
func New(coord sync.Coordinator, config *Config) (*Session, error) {
	if coord == nil {
		return nil, fmt.Errorf("coordinator cannot be nil")
	}
	if config == nil {
		config = DefaultConfig()
	}
	logger := config.Logger
	if logger == nil {
		logger = log.New(os.Stderr, "[session] ", log.LstdFlags)
	}

	writer := sync.NewWriter(coord, sync.WriterConfig{
		Interval: config.QuietInterval,
		OnSave:   config.OnSave,
		Logger:   logger,
	})

	return &Session{
		coord:  coord,
		writer: writer,
		logger: logger,
	}, nil
}

// Start loads the plan for date and restores the stored user record,
// if any. A stored record does not by itself activate the remote path;
// that needs SignIn with a token.
func (s *Session) Start(ctx context.Context, date string) error {
	user, err := s.coord.LoadUser(ctx)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		s.logger.Printf("WARNING: failed to load user record: %v", err)
	}

	state, err := s.coord.Load(ctx, date)
	if err != nil {
		return fmt.Errorf("failed to load plan for %s: %w", date, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.date = date
	s.state = state
	s.user = user
	return nil
}

// Date returns the active date.
func (s *Session) Date() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.date
}

// Snapshot returns a deep copy of the active plan, or nil before
// Start. Callers may inspect or serialize it freely without racing the
// session's own mutations.
func (s *Session) Snapshot() *plan.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil {
		return nil
	}
	return s.state.Clone()
}

// User returns the signed-in user record, or nil.
func (s *Session) User() *plan.UserInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// GoTo flushes pending writes and swaps in the plan for date.
func (s *Session) GoTo(ctx context.Context, date string) (*plan.State, error) {
	s.writer.Flush()

	state, err := s.coord.Load(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load plan for %s: %w", date, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.date = date
	s.state = state
	return state.Clone(), nil
}

// ClearDay resets the active date to the empty template and persists
// the reset immediately. A pending debounced edit for the old content
// is discarded so it cannot land after the clear.
func (s *Session) ClearDay(ctx context.Context) (*plan.State, sync.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.writer.Discard()
	state, result := s.coord.ClearDay(ctx, s.date)
	s.state = state
	return state.Clone(), result
}

// SetOnSave replaces the save callback after construction. The
// callback runs under the writer's lock; see sync.WriterConfig.OnSave
// for the contract.
func (s *Session) SetOnSave(fn func(date string, result sync.Result)) {
	s.writer.SetOnSave(fn)
}

// Flush forces any pending debounced save to land now.
func (s *Session) Flush() {
	s.writer.Flush()
}

// Close flushes pending writes and stops the writer.
func (s *Session) Close() {
	s.writer.Close()
}

// scheduleSave queues a debounced save of the active state.
// The caller must hold mu.
func (s *Session) scheduleSave() {
	s.writer.Schedule(s.date, s.state)
}

// AddTodo appends a to-do. Blank text is rejected without mutating.
func (s *Session) AddTodo(text string) (*plan.Todo, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("todo text cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	todo := *s.state.AddTodo(text)
	s.scheduleSave()
	return &todo, nil
}

// ToggleTodo flips the done flag of the to-do with the given id.
func (s *Session) ToggleTodo(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.state.ToggleTodo(id) {
		return fmt.Errorf("no todo with id %s", id)
	}
	s.scheduleSave()
	return nil
}

// EditTodo replaces the text of the to-do with the given id.
func (s *Session) EditTodo(id, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("todo text cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.state.SetTodoText(id, text) {
		return fmt.Errorf("no todo with id %s", id)
	}
	s.scheduleSave()
	return nil
}

// DeleteTodo removes the to-do with the given id and renumbers the rest.
func (s *Session) DeleteTodo(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.state.DeleteTodo(id) {
		return fmt.Errorf("no todo with id %s", id)
	}
	s.scheduleSave()
	return nil
}

// MoveTodo moves the to-do with the given id to position to.
func (s *Session) MoveTodo(id string, to int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	from := -1
	for i := range s.state.Todos {
		if s.state.Todos[i].ID == id {
			from = i
			break
		}
	}
	if from == -1 {
		return fmt.Errorf("no todo with id %s", id)
	}
	if err := s.state.MoveTodo(from, to); err != nil {
		return err
	}
	s.scheduleSave()
	return nil
}

// SetTopThree replaces the text of priority slot i.
func (s *Session) SetTopThree(i int, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.state.SetTopThree(i, text); err != nil {
		return err
	}
	s.scheduleSave()
	return nil
}

// ToggleTopThree flips the done flag of priority slot i.
func (s *Session) ToggleTopThree(i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.state.ToggleTopThree(i); err != nil {
		return err
	}
	s.scheduleSave()
	return nil
}

// SetScheduleEntry replaces the text for one schedule grid hour.
func (s *Session) SetScheduleEntry(hour, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.state.SetScheduleEntry(hour, text); err != nil {
		return err
	}
	s.scheduleSave()
	return nil
}

// SetNotes replaces the day's notes.
func (s *Session) SetNotes(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Notes = text
	s.scheduleSave()
}

// SetMeal replaces one meal field (breakfast, lunch, or dinner).
func (s *Session) SetMeal(name, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.state.SetMeal(name, text); err != nil {
		return err
	}
	s.scheduleSave()
	return nil
}

// SetWater sets the water tracker and returns the clamped value.
func (s *Session) SetWater(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.SetWater(n)
	s.scheduleSave()
	return s.state.Water
}

// AddWater adjusts the water tracker by delta and returns the new value.
func (s *Session) AddWater(delta int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.state.AddWater(delta)
	s.scheduleSave()
	return n
}

// AddHabit validates and appends a habit. The returned copy carries
// the generated id and creation timestamp.
func (s *Session) AddHabit(h plan.Habit) (*plan.Habit, error) {
	h.Title = strings.TrimSpace(h.Title)

	s.mu.Lock()
	defer s.mu.Unlock()

	added, err := s.state.AddHabit(h)
	if err != nil {
		return nil, err
	}
	s.scheduleSave()
	out := added.Clone()
	return &out, nil
}

// UpdateHabit replaces the mutable fields of the habit with h's id.
func (s *Session) UpdateHabit(h plan.Habit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.state.UpdateHabit(h); err != nil {
		return err
	}
	s.scheduleSave()
	return nil
}

// DeleteHabit removes the habit with the given id.
func (s *Session) DeleteHabit(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.state.DeleteHabit(id) {
		return fmt.Errorf("no habit with id %s", id)
	}
	s.scheduleSave()
	return nil
}

// SetHabitStatus marks a habit for a date: completed, not_done,
// skipped, or back to unmarked.
func (s *Session) SetHabitStatus(id, date string, status plan.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.state.SetHabitStatus(id, date, status); err != nil {
		return err
	}
	s.scheduleSave()
	return nil
}

// SignIn persists the user record, activates the remote session and
// pushes every cached entry so the backend catches up on offline work.
//
// rs may be nil for a local-only sign-in; the record is still stored
// and no remote path activates. When rs carries no UserID it is filled
// from the record's UID.
func (s *Session) SignIn(ctx context.Context, user *plan.UserInfo, rs *remote.Session) (*sync.BulkResult, error) {
	if user == nil {
		return nil, fmt.Errorf("user record cannot be nil")
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	record := *user
	if record.CreatedAt == "" {
		record.CreatedAt = now
	}
	record.LastLoginAt = now

	// Pending edits must be in the cache before the bulk push reads it.
	s.writer.Flush()

	if result := s.coord.SaveUser(ctx, &record); result.Err != nil {
		s.logger.Printf("WARNING: user record saved locally only: %v", result.Err)
	}

	s.mu.Lock()
	s.user = &record
	s.mu.Unlock()

	if rs == nil {
		s.logger.Printf("Signed in locally as %s", record.UID)
		return nil, nil
	}

	if rs.UserID == "" {
		rs.UserID = record.UID
	}
	s.coord.SetSession(rs)
	s.logger.Printf("Signed in as %s, pushing cache", record.UID)

	result, err := s.coord.BulkSync(ctx)
	if err != nil {
		return result, fmt.Errorf("sign-in push failed: %w", err)
	}
	return result, nil
}

// SignOut flushes pending writes and deactivates the remote session.
// The stored user record is kept; local use continues.
func (s *Session) SignOut() {
	s.writer.Flush()
	s.coord.SetSession(nil)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	s.logger.Printf("Signed out")
}
