package vault

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	gosync "sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Timolansberry/Daily-Planner/internal/sync"
)

// Config holds configuration for the vault daemon.
type Config struct {
	// DebounceInterval is how long to wait before importing changed
	// files. This batches rapid editor saves together.
	DebounceInterval time.Duration

	// ResyncInterval is how often to re-import the whole directory.
	ResyncInterval time.Duration

	// Logger for daemon activity
	Logger *log.Logger
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		DebounceInterval: 500 * time.Millisecond,
		ResyncInterval:   5 * time.Minute,
		Logger:           log.New(os.Stderr, "[vault] ", log.LstdFlags),
	}
}

// Daemon watches a vault directory and imports day files as they
// change.
//
// The daemon:
// 1. Performs a full import on start
// 2. Watches for create and write events on day files
// 3. Imports changed files after a debounce window
// 4. Periodically re-imports the whole directory
//
// File removals are ignored; the vault mirrors the cache, it does not
// command deletions.
type Daemon struct {
	coord  sync.Coordinator
	dir    string
	config *Config

	watcher       *fsnotify.Watcher
	changeQueue   map[string]time.Time // filepath -> queued at
	changeQueueMu gosync.Mutex

	ctx    context.Context
	cancel context.CancelFunc
	wg     gosync.WaitGroup
}

// New creates a vault daemon. Use Start to begin watching.
func New(coord sync.Coordinator, dir string) (*Daemon, error) {
	return NewWithConfig(coord, dir, DefaultConfig())
}

// NewWithConfig creates a daemon with custom configuration.
func NewWithConfig(coord sync.Coordinator, dir string, config *Config) (*Daemon, error) {
	if coord == nil {
		return nil, fmt.Errorf("coordinator cannot be nil")
	}
	if dir == "" {
		return nil, fmt.Errorf("vault directory cannot be empty")
	}
	if config == nil {
		config = DefaultConfig()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Daemon{
		coord:       coord,
		dir:         dir,
		config:      config,
		watcher:     watcher,
		changeQueue: make(map[string]time.Time),
		ctx:         ctx,
		cancel:      cancel,
	}, nil
}

// Start begins watching. Blocks until ctx is cancelled or Stop is
// called.
func (d *Daemon) Start(ctx context.Context) error {
	d.config.Logger.Printf("Starting vault daemon on %s", d.dir)

	if err := os.MkdirAll(d.dir, 0755); err != nil {
		return fmt.Errorf("failed to create vault directory: %w", err)
	}

	// Catch up on anything edited while we were not running.
	result, err := Import(d.ctx, d.coord, d.dir)
	if err != nil {
		return fmt.Errorf("initial import failed: %w", err)
	}
	d.config.Logger.Printf("Initial import: %d files", result.Imported)

	if err := d.watcher.Add(d.dir); err != nil {
		return fmt.Errorf("failed to watch vault directory: %w", err)
	}

	d.wg.Add(3)
	go d.watchFileEvents()
	go d.processChangeQueue()
	go d.resyncLoop()

	select {
	case <-ctx.Done():
		d.config.Logger.Println("Shutdown signal received")
		return d.Stop()
	case <-d.ctx.Done():
		return nil
	}
}

// Stop gracefully shuts down the daemon.
func (d *Daemon) Stop() error {
	d.cancel()

	if err := d.watcher.Close(); err != nil {
		d.config.Logger.Printf("Error closing watcher: %v", err)
	}

	d.wg.Wait()
	d.config.Logger.Println("Vault daemon stopped")
	return nil
}

// watchFileEvents monitors filesystem events and queues changes.
func (d *Daemon) watchFileEvents() {
	defer d.wg.Done()

	for {
		select {
		case <-d.ctx.Done():
			return

		case event, ok := <-d.watcher.Events:
			if !ok {
				return
			}

			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			name := filepath.Base(event.Name)
			if name == ManifestName || strings.HasSuffix(name, ".tmp") {
				continue
			}
			if _, ok := dateFromFile(name); !ok {
				continue
			}

			d.queueChange(event.Name)

		case err, ok := <-d.watcher.Errors:
			if !ok {
				return
			}
			d.config.Logger.Printf("Watcher error: %v", err)
		}
	}
}

// queueChange adds a file to the change queue with debouncing.
func (d *Daemon) queueChange(path string) {
	d.changeQueueMu.Lock()
	defer d.changeQueueMu.Unlock()
	d.changeQueue[path] = time.Now()
}

// processChangeQueue imports queued files once they have been quiet
// long enough.
func (d *Daemon) processChangeQueue() {
	defer d.wg.Done()

	ticker := time.NewTicker(d.config.DebounceInterval)
	defer ticker.Stop()

	for {
		select {
		case <-d.ctx.Done():
			return
		case <-ticker.C:
			d.processPendingChanges()
		}
	}
}

func (d *Daemon) processPendingChanges() {
	d.changeQueueMu.Lock()
	defer d.changeQueueMu.Unlock()

	now := time.Now()
	for path, queuedAt := range d.changeQueue {
		if now.Sub(queuedAt) < d.config.DebounceInterval {
			continue
		}
		delete(d.changeQueue, path)

		date, ok := dateFromFile(filepath.Base(path))
		if !ok {
			continue
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			// Removed while queued; the vault never deletes.
			continue
		}

		d.config.Logger.Printf("Importing %s", filepath.Base(path))
		if err := importDay(d.ctx, d.coord, path, date); err != nil {
			d.config.Logger.Printf("Error importing %s: %v", path, err)
		}
	}
}

// resyncLoop periodically re-imports the whole directory.
func (d *Daemon) resyncLoop() {
	defer d.wg.Done()

	ticker := time.NewTicker(d.config.ResyncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-d.ctx.Done():
			return
		case <-ticker.C:
			result, err := Import(d.ctx, d.coord, d.dir)
			if err != nil {
				d.config.Logger.Printf("Resync failed: %v", err)
				continue
			}
			if result.Imported > 0 || len(result.Errors) > 0 {
				d.config.Logger.Printf("Resync: %d imported, %d errors",
					result.Imported, len(result.Errors))
			}
		}
	}
}
