package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Timolansberry/Daily-Planner/internal/config"
	"github.com/Timolansberry/Daily-Planner/internal/dates"
	"github.com/Timolansberry/Daily-Planner/internal/remote"
	"github.com/Timolansberry/Daily-Planner/internal/session"
	"github.com/Timolansberry/Daily-Planner/internal/store"
	"github.com/Timolansberry/Daily-Planner/internal/sync"
)

var rootCmd = &cobra.Command{
	Use:   "dayplan",
	Short: "Local-first daily planner with best-effort remote sync",
	Long: `dayplan is a daily planner that never blocks on the network.

Every edit lands in a local SQLite cache first. When a remote backend
is configured the change is mirrored there on a best-effort basis, and
anything that could not be pushed is retried with 'dayplan sync'.

Data lives under the dayplan home directory (default ~/.dayplan, or
$DAYPLAN_HOME): the cache, the config file, and the plain-file vault.

Example usage:
  dayplan show                   # Today's plan
  dayplan todo add "Call Sam"    # Add a todo for today
  dayplan habit mark 1 completed # Mark the first habit done
  dayplan serve                  # Start the local planner server
  dayplan sync                   # Push unsynced entries to the remote

Date arguments accept ISO dates and natural language:
  dayplan show 2026-08-30
  dayplan show tomorrow
  dayplan todo add --date "next friday" "Pack for the trip"`,
}

var configFile string

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"Config file (default $DAYPLAN_HOME/config.yaml)")

	rootCmd.AddGroup(
		&cobra.Group{ID: "plan", Title: "Planning Commands:"},
		&cobra.Group{ID: "sync", Title: "Sync & Server Commands:"},
		&cobra.Group{ID: "maint", Title: "Maintenance Commands:"},
	)
}

// loadConfig reads the layered configuration or exits.
func loadConfig() *config.Config {
	path := configFile
	if path == "" {
		path = config.Path()
	}
	cfg, err := config.LoadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

// openCoordinator opens the cache and builds a coordinator on top of
// it. The remote path is attached only when the config enables it, so
// everything downstream degrades to local-only by itself. The caller
// owns the returned store and must Close it.
func openCoordinator(cfg *config.Config, logger *log.Logger) (sync.Coordinator, *store.Store) {
	cache, err := store.Open(cfg.DatabasePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open cache at %s: %v\n", cfg.DatabasePath, err)
		os.Exit(1)
	}

	var rs remote.Store
	if cfg.Remote.Enabled() {
		rs = remote.NewClient(cfg.Remote.BaseURL, cfg.Remote.Token)
	}

	coord := sync.New(cache, rs, logger)
	if sess := cfg.Remote.Session(); sess != nil {
		coord.SetSession(sess)
	}
	return coord, cache
}

// startSession loads date into a fresh session for a one-shot command.
// Close flushes any pending write, so the debounce window never loses
// an edit.
func startSession(cfg *config.Config, coord sync.Coordinator, date string) *session.Session {
	sess, err := session.New(coord, &session.Config{QuietInterval: cfg.QuietInterval()})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := sess.Start(context.Background(), date); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load %s: %v\n", date, err)
		os.Exit(1)
	}
	return sess
}

// resolveDate turns a command line date into YYYY-MM-DD. Accepts ISO
// dates and natural language ("today", "tomorrow", "next friday");
// empty means today.
func resolveDate(arg string) string {
	date, err := dates.Resolve(arg, time.Now())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return date
}

// dateFromArgs resolves an optional positional date. Joining the args
// lets natural language dates pass unquoted: dayplan show next friday.
func dateFromArgs(args []string) string {
	if len(args) == 0 {
		return dates.Today()
	}
	return resolveDate(strings.Join(args, " "))
}
