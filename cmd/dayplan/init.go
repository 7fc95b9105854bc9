package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Timolansberry/Daily-Planner/internal/config"
	"github.com/Timolansberry/Daily-Planner/internal/ui"
)

var initCmd = &cobra.Command{
	Use:     "init",
	GroupID: "maint",
	Short:   "Write a starter config file",
	Long: `Write a starter configuration file with the current defaults to
the dayplan home directory (default ~/.dayplan/config.yaml, or under
$DAYPLAN_HOME).

The planner runs fine without one; the file is for pointing at a
remote backend or moving the cache and vault somewhere else.

Example usage:
  dayplan init
  dayplan init --force    # Overwrite an existing config`,
	Run: func(cmd *cobra.Command, args []string) {
		force, _ := cmd.Flags().GetBool("force")
		path := configFile
		if path == "" {
			path = config.Path()
		}

		if !force {
			if _, err := os.Stat(path); err == nil {
				fmt.Fprintf(os.Stderr, "Error: %s already exists (use --force to overwrite)\n", path)
				os.Exit(1)
			}
		}

		if err := config.WriteDefault(path); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("%s Wrote %s\n", ui.RenderPass("✓"), path)
	},
}

func init() {
	initCmd.Flags().Bool("force", false, "Overwrite an existing config file")
	rootCmd.AddCommand(initCmd)
}
