package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Timolansberry/Daily-Planner/internal/config"
	"github.com/Timolansberry/Daily-Planner/internal/ui"
	"github.com/Timolansberry/Daily-Planner/internal/vault"
)

var vaultCmd = &cobra.Command{
	Use:     "vault",
	GroupID: "sync",
	Short:   "Mirror plans as plain JSON day files",
	Long: `Mirror planner days to and from a directory of plain JSON files,
one YYYY-MM-DD.json per day.

The vault is a mirror, never the authority: imports flow through the
sync coordinator and get the same normalization and best-effort remote
push as any other save. Point the directory at a synced folder to get
cheap offsite copies.

Example usage:
  dayplan vault export           # Write every cached day to the vault
  dayplan vault import           # Read day files back into the cache
  dayplan vault watch            # Keep importing as files change`,
}

var vaultExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write cached days to the vault directory",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		dir := vaultDir(cmd, cfg)
		_, cache := openCoordinator(cfg, nil)
		defer cache.Close()

		result, err := vault.Export(context.Background(), cache, dir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("%s Exported %d days to %s\n", ui.RenderPass("✓"), result.Exported, dir)
		for _, e := range result.Errors {
			fmt.Printf("   %s %s\n", ui.RenderWarn("⚠"), e)
		}
	},
}

var vaultImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Read day files back into the planner",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		dir := vaultDir(cmd, cfg)
		coord, cache := openCoordinator(cfg, nil)
		defer cache.Close()

		result, err := vault.Import(context.Background(), coord, dir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("%s Imported %d days from %s\n", ui.RenderPass("✓"), result.Imported, dir)
		if result.Skipped > 0 {
			fmt.Printf("   Skipped: %d\n", result.Skipped)
		}
		for _, e := range result.Errors {
			fmt.Printf("   %s %s\n", ui.RenderWarn("⚠"), e)
		}
	},
}

var vaultWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the vault directory and import changed day files",
	Long: `Watch the vault directory and import day files as they change.

Runs a full import on start, then imports edited files after a short
debounce, with a periodic full re-import as a safety net. File removals
are ignored; the vault mirrors the cache, it does not command
deletions.

Example usage:
  dayplan vault watch
  dayplan vault watch --dir ~/Dropbox/dayplan`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		dir := vaultDir(cmd, cfg)
		coord, cache := openCoordinator(cfg, nil)
		defer cache.Close()

		daemon, err := vault.New(coord, dir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Watching %s\n", dir)
		fmt.Println("\nPress Ctrl+C to stop...")

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		if err := daemon.Start(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Vault watcher stopped")
	},
}

func init() {
	vaultCmd.PersistentFlags().String("dir", "", "Vault directory (overrides config)")

	vaultCmd.AddCommand(vaultExportCmd)
	vaultCmd.AddCommand(vaultImportCmd)
	vaultCmd.AddCommand(vaultWatchCmd)
	rootCmd.AddCommand(vaultCmd)
}

func vaultDir(cmd *cobra.Command, cfg *config.Config) string {
	dir, _ := cmd.Flags().GetString("dir")
	if dir == "" {
		return cfg.VaultDir
	}
	return dir
}
