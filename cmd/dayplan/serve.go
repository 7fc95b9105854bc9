package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/Timolansberry/Daily-Planner/internal/dates"
	"github.com/Timolansberry/Daily-Planner/internal/server"
	"github.com/Timolansberry/Daily-Planner/internal/session"
	"github.com/Timolansberry/Daily-Planner/internal/vault"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	GroupID: "sync",
	Short:   "Start the local planner server",
	Long: `Start the HTTP server that backs the planner UI.

The server keeps one active day in memory, debounces edits into the
local cache, and broadcasts changes to connected WebSocket clients.

WebSocket messages include:
- plan_update: A day's plan was saved (with its sync status)
- day_cleared: A day was reset to the empty template
- sync_complete: A bulk push to the remote finished
- stats: Todo, habit, and water counts for the active day

Example usage:
  dayplan serve                  # Listen on the configured address
  dayplan serve --addr :9000     # Override the listen address
  dayplan serve --vault          # Also mirror saved days to the vault

Connect with a WebSocket client:
  ws://localhost:8787/ws`,
	Run: func(cmd *cobra.Command, args []string) {
		addr, _ := cmd.Flags().GetString("addr")
		withVault, _ := cmd.Flags().GetBool("vault")

		cfg := loadConfig()
		if addr == "" {
			addr = cfg.Server.Addr
		}

		// Daemon logs go to stderr, and to a rolling file when one is
		// configured.
		logOut := io.Writer(os.Stderr)
		if cfg.Log.File != "" {
			logOut = io.MultiWriter(os.Stderr, &lumberjack.Logger{
				Filename:   cfg.Log.File,
				MaxSize:    cfg.Log.MaxSizeMB,
				MaxBackups: cfg.Log.MaxBackups,
			})
		}

		coord, cache := openCoordinator(cfg, log.New(logOut, "[sync] ", log.LstdFlags))
		defer cache.Close()

		sess, err := session.New(coord, &session.Config{
			QuietInterval: cfg.QuietInterval(),
			Logger:        log.New(logOut, "[session] ", log.LstdFlags),
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if err := sess.Start(context.Background(), dates.Today()); err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to load today's plan: %v\n", err)
			os.Exit(1)
		}
		defer sess.Close()

		srv, err := server.New(sess, coord, &server.Config{
			Addr:      addr,
			Remote:    cfg.Remote.Session(),
			AccessLog: logOut,
			Logger:    log.New(logOut, "[server] ", log.LstdFlags),
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if err := srv.Start(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to start server: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Planner server started on http://%s\n", srv.Addr())
		fmt.Printf("WebSocket endpoint: ws://%s/ws\n", srv.Addr())
		fmt.Printf("Health check: http://%s/health\n", srv.Addr())

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		// The vault watcher is a sidecar: it shuts down with the signal
		// context, so only startup failures need reporting.
		if withVault {
			vcfg := vault.DefaultConfig()
			vcfg.Logger = log.New(logOut, "[vault] ", log.LstdFlags)
			daemon, err := vault.NewWithConfig(coord, cfg.VaultDir, vcfg)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: failed to create vault watcher: %v\n", err)
				os.Exit(1)
			}
			go func() {
				if err := daemon.Start(ctx); err != nil {
					fmt.Fprintf(os.Stderr, "Error: vault watcher stopped: %v\n", err)
				}
			}()
			fmt.Printf("Vault watcher mirroring %s\n", cfg.VaultDir)
		}

		fmt.Println("\nPress Ctrl+C to stop...")
		<-ctx.Done()

		fmt.Println("\nShutting down planner server...")
		if err := srv.Stop(); err != nil {
			fmt.Fprintf(os.Stderr, "Error during shutdown: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Planner server stopped")
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides config)")
	serveCmd.Flags().Bool("vault", false, "Mirror saved days into the vault directory")
	rootCmd.AddCommand(serveCmd)
}
