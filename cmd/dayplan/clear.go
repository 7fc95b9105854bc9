package main

import (
	"context"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/Timolansberry/Daily-Planner/internal/ui"
)

var clearCmd = &cobra.Command{
	Use:     "clear [date]",
	GroupID: "plan",
	Short:   "Reset a day to the empty template",
	Long: `Reset a day's plan to the empty template: blank priorities, no
todos, an empty schedule, zero water, no habits.

The cleared state is written through immediately, not debounced, and
pushed to the remote when one is configured.

Example usage:
  dayplan clear                # Clear today (asks first)
  dayplan clear yesterday --force`,
	Args: cobra.ArbitraryArgs,
	Run: func(cmd *cobra.Command, args []string) {
		force, _ := cmd.Flags().GetBool("force")
		date := dateFromArgs(args)

		if !force {
			confirmed := false
			prompt := huh.NewConfirm().
				Title(fmt.Sprintf("Clear the plan for %s?", date)).
				Description("Todos, schedule, notes, and habits for the day are reset.").
				Value(&confirmed)
			if err := prompt.Run(); err != nil || !confirmed {
				fmt.Println("Cancelled")
				return
			}
		}

		cfg := loadConfig()
		coord, cache := openCoordinator(cfg, nil)
		defer cache.Close()

		sess := startSession(cfg, coord, date)
		defer sess.Close()

		_, result := sess.ClearDay(context.Background())
		fmt.Printf("%s Cleared %s [%s]\n",
			ui.RenderPass("✓"), date, ui.SyncBadge(result.Synced, result.Status.String()))
	},
}

func init() {
	clearCmd.Flags().Bool("force", false, "Skip the confirmation prompt")
	rootCmd.AddCommand(clearCmd)
}
