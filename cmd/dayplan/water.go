package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Timolansberry/Daily-Planner/internal/plan"
	"github.com/Timolansberry/Daily-Planner/internal/ui"
)

var waterCmd = &cobra.Command{
	Use:     "water [COUNT | +N | -N]",
	GroupID: "plan",
	Short:   "Track water intake",
	Long: `Show or change the day's water tracker. The tracker counts 0 to 8
units and clamps anything outside that range.

Example usage:
  dayplan water          # Show the gauge
  dayplan water 5        # Set the count
  dayplan water +1       # One more glass
  dayplan water -2       # Undo two`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		date := flagDate(cmd)
		cfg := loadConfig()
		coord, cache := openCoordinator(cfg, nil)
		defer cache.Close()

		if len(args) == 0 {
			state, err := coord.Load(context.Background(), date)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: failed to load %s: %v\n", date, err)
				os.Exit(1)
			}
			fmt.Println(ui.WaterGauge(state.Water, plan.WaterMax))
			return
		}

		n, err := strconv.Atoi(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: expected a number or +N/-N, got %q\n", args[0])
			os.Exit(1)
		}

		sess := startSession(cfg, coord, date)
		defer sess.Close()

		var count int
		if strings.HasPrefix(args[0], "+") || strings.HasPrefix(args[0], "-") {
			count = sess.AddWater(n)
		} else {
			count = sess.SetWater(n)
		}
		fmt.Println(ui.WaterGauge(count, plan.WaterMax))
	},
}

func init() {
	waterCmd.Flags().StringP("date", "d", "", "Day to operate on (default today)")
	rootCmd.AddCommand(waterCmd)
}
