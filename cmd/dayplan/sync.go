package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Timolansberry/Daily-Planner/internal/ui"
)

var syncCmd = &cobra.Command{
	Use:     "sync",
	GroupID: "sync",
	Short:   "Push the local cache to the remote",
	Long: `Push every cached entry to the remote store.

Edits made offline leave entries dirty in the cache; this walks the
whole cache and re-pushes it, so the remote converges on the local
state. Entries that fail stay dirty and are retried next run.

Requires a configured remote (base_url and user_id in the config).

Example usage:
  dayplan sync`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		coord, cache := openCoordinator(cfg, nil)
		defer cache.Close()

		ctx := context.Background()
		pending, err := cache.CountUnsynced(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("%s Pushing the local cache (%d entries pending)...\n", ui.RenderAccent("🔄"), pending)

		result, err := coord.BulkSync(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("%s Bulk sync complete in %s\n",
			ui.RenderPass("✓"), result.Duration.Round(time.Millisecond))
		fmt.Printf("   Pushed: %d\n", result.Pushed)
		if result.Failed > 0 {
			fmt.Printf("   Failed: %d %s\n", result.Failed, ui.RenderWarn("(kept dirty, retried next run)"))
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
}
