package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Timolansberry/Daily-Planner/internal/store"
	"github.com/Timolansberry/Daily-Planner/internal/ui"
)

var migrateCmd = &cobra.Command{
	Use:     "migrate FILE",
	GroupID: "maint",
	Short:   "Import a browser localStorage dump",
	Long: `Import a legacy browser localStorage export into the local cache.

The dump is a single JSON object mapping "{page}:{date}" keys to
documents, the shape produced by dumping localStorage from the web
planner. Double-encoded values are unwrapped, unknown keys (themes,
auth tokens) are skipped, and imported days go through the usual
normalization the next time they load.

Example usage:
  dayplan migrate localStorage.json
  dayplan migrate localStorage.json --dry-run   # Preview only
  cat dump.json | dayplan migrate -`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		in := os.Stdin
		if args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			defer f.Close()
			in = f
		}

		cfg := loadConfig()
		_, cache := openCoordinator(cfg, nil)
		defer cache.Close()

		result, err := cache.ImportDump(context.Background(), in, store.ImportOptions{DryRun: dryRun})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		verb := "Imported"
		if dryRun {
			verb = "Would import"
		}
		fmt.Printf("%s %s %d entries\n", ui.RenderPass("✓"), verb, result.Imported)
		if result.Skipped > 0 {
			fmt.Printf("   Skipped: %d\n", result.Skipped)
		}
		for _, e := range result.Errors {
			fmt.Printf("   %s %s\n", ui.RenderWarn("⚠"), e)
		}
	},
}

func init() {
	migrateCmd.Flags().Bool("dry-run", false, "Parse the dump without writing anything")
	rootCmd.AddCommand(migrateCmd)
}
