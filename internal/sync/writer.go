package sync

import (
	"context"
	"log"
	"os"
	gosync "sync"
	"time"

	"github.com/Timolansberry/Daily-Planner/internal/plan"
)

// DefaultQuietInterval is the trailing-edge debounce window. A burst
// of mutations produces one persistence cycle once input has been
// quiet this long.
const DefaultQuietInterval = 300 * time.Millisecond

// Saver is the slice of the coordinator the writer needs.
type Saver interface {
	Save(ctx context.Context, date string, state *plan.State) Result
}

// WriterConfig holds configuration for the debounced writer.
type WriterConfig struct {
	// Interval is the quiet window. Zero means DefaultQuietInterval.
	Interval time.Duration

	// OnSave, when set, runs after every completed save with the date
	// and its result. It runs with the writer's lock held and must not
	// call back into the writer or its owner; hand the event to a
	// channel and return.
	OnSave func(date string, result Result)

	// Logger for writer events. Nil means a default stderr logger.
	Logger *log.Logger
}

// DefaultWriterConfig returns the default writer configuration.
func DefaultWriterConfig() WriterConfig {
	return WriterConfig{
		Interval: DefaultQuietInterval,
	}
}

// Writer coalesces rapid mutations into one save per quiet window.
//
// Each Schedule call replaces the pending state and resets the timer;
// the save fires only once input has been quiet for the full interval.
// Scheduling a different date flushes the pending date first, so a
// fast navigation can never drop the previous date's last edit. Flush
// and Close force pending writes to land immediately.
type Writer struct {
	saver  Saver
	config WriterConfig
	logger *log.Logger

	mu      gosync.Mutex
	timer   *time.Timer
	gen     int
	pending *pendingSave
	closed  bool
}

type pendingSave struct {
	date  string
	state *plan.State
}

// NewWriter creates a debounced writer on top of a coordinator.
func NewWriter(saver Saver, config WriterConfig) *Writer {
	if config.Interval <= 0 {
		config.Interval = DefaultQuietInterval
	}
	logger := config.Logger
	if logger == nil {
		logger = log.New(os.Stderr, "[writer] ", log.LstdFlags)
	}
	return &Writer{
		saver:  saver,
		config: config,
		logger: logger,
	}
}

// Schedule records state as the pending save for date and resets the
// quiet-window timer. The state is cloned, so the caller may keep
// mutating its copy; the clone taken by the last Schedule call before
// the window closes is what gets persisted.
func (w *Writer) Schedule(date string, state *plan.State) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		w.logger.Printf("WARNING: schedule after close dropped for %s", date)
		return
	}

	// A date change flushes the previous date's pending edit before
	// the new one starts its window.
	if w.pending != nil && w.pending.date != date {
		w.saveLocked()
	}

	w.pending = &pendingSave{date: date, state: state.Clone()}

	if w.timer != nil {
		w.timer.Stop()
	}
	w.gen++
	gen := w.gen
	w.timer = time.AfterFunc(w.config.Interval, func() {
		w.fire(gen)
	})
}

// fire runs when a quiet window closes. A timer superseded by a later
// Schedule call is a no-op; only the newest window persists.
func (w *Writer) fire(gen int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if gen != w.gen {
		return
	}
	w.saveLocked()
}

// Flush persists the pending save immediately, if any.
func (w *Writer) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.saveLocked()
}

// SetOnSave replaces the save callback. Lets a consumer built after
// the writer, such as an event hub, hook completed saves. The callback
// contract is the same as WriterConfig.OnSave.
func (w *Writer) SetOnSave(fn func(date string, result Result)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.config.OnSave = fn
}

// Discard drops the pending save without persisting it. Used when the
// pending edit has been superseded, such as a cleared day.
func (w *Writer) Discard() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.pending = nil
	w.gen++
}

// Close flushes the pending save and stops the writer. Further
// Schedule calls are dropped with a warning.
func (w *Writer) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.saveLocked()
	w.closed = true
}

// HasPending reports whether an unsaved edit is waiting on the timer.
func (w *Writer) HasPending() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.pending != nil
}

// saveLocked stops the timer and persists the pending state, if any.
// The caller must hold mu.
func (w *Writer) saveLocked() {
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	p := w.pending
	if p == nil {
		return
	}
	w.pending = nil

	result := w.saver.Save(context.Background(), p.date, p.state)
	if w.config.OnSave != nil {
		w.config.OnSave(p.date, result)
	}
}
