package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/Timolansberry/Daily-Planner/internal/plan"
	"github.com/Timolansberry/Daily-Planner/internal/ui"
)

var habitCmd = &cobra.Command{
	Use:     "habit",
	GroupID: "plan",
	Short:   "Track recurring habits",
	Long: `Track recurring habits and their per-day completion status.

Habits live on the day's plan and carry a frequency (daily, weekly,
monthly) plus an optional weekday schedule. Each day a habit can be
marked completed, not_done, or skipped.

Example usage:
  dayplan habit add                      # Interactive form
  dayplan habit add --title "Meditate"   # Non-interactive
  dayplan habit list
  dayplan habit mark 1 completed
  dayplan habit mark 1 clear             # Back to unmarked`,
}

var habitAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a habit",
	Run: func(cmd *cobra.Command, args []string) {
		title, _ := cmd.Flags().GetString("title")

		var h plan.Habit
		if title != "" {
			h.Title = title
			h.Description, _ = cmd.Flags().GetString("description")
			freq, _ := cmd.Flags().GetString("frequency")
			h.Frequency = plan.Frequency(freq)
			h.Days, _ = cmd.Flags().GetIntSlice("days")
			h.Repeat, _ = cmd.Flags().GetBool("repeat")
			h.Reminder, _ = cmd.Flags().GetBool("reminder")
			h.Goal, _ = cmd.Flags().GetBool("goal")
		} else {
			h = habitForm()
		}

		date := flagDate(cmd)
		cfg := loadConfig()
		coord, cache := openCoordinator(cfg, nil)
		defer cache.Close()

		sess := startSession(cfg, coord, date)
		defer sess.Close()

		added, err := sess.AddHabit(h)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("%s Added habit: %s %s\n", ui.RenderPass("✓"), added.Title, ui.RenderMuted(habitMeta(*added)))
	},
}

var habitListCmd = &cobra.Command{
	Use:   "list",
	Short: "List habits with today's status",
	Run: func(cmd *cobra.Command, args []string) {
		date := flagDate(cmd)
		cfg := loadConfig()
		coord, cache := openCoordinator(cfg, nil)
		defer cache.Close()

		state, err := coord.Load(context.Background(), date)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to load %s: %v\n", date, err)
			os.Exit(1)
		}

		if len(state.Habits) == 0 {
			fmt.Println("No habits yet. Add one with 'dayplan habit add'.")
			return
		}
		for i, h := range state.Habits {
			fmt.Printf("%d. %s %s %s\n",
				i+1, ui.HabitMark(string(h.StatusOn(date))), h.Title, ui.RenderMuted(habitMeta(h)))
			if h.Description != "" {
				fmt.Printf("   %s\n", ui.RenderMuted(h.Description))
			}
		}
	},
}

var habitMarkCmd = &cobra.Command{
	Use:   "mark INDEX STATUS",
	Short: "Set a habit's status for a day",
	Long: `Set a habit's completion status for a day. INDEX is the 1-based
position shown by 'dayplan habit list'. STATUS is one of completed,
not_done, skipped, or clear to return the day to unmarked.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		index, err := strconv.Atoi(args[0])
		if err != nil || index < 1 {
			fmt.Fprintf(os.Stderr, "Error: INDEX must be a positive number, got %q\n", args[0])
			os.Exit(1)
		}
		status := plan.Status(args[1])
		if args[1] == "clear" {
			status = plan.StatusUnmarked
		}
		if status != plan.StatusUnmarked && !status.Valid() {
			fmt.Fprintf(os.Stderr, "Error: status must be completed, not_done, skipped, or clear\n")
			os.Exit(1)
		}

		date := flagDate(cmd)
		cfg := loadConfig()
		coord, cache := openCoordinator(cfg, nil)
		defer cache.Close()

		sess := startSession(cfg, coord, date)
		defer sess.Close()

		habits := sess.Snapshot().Habits
		if index > len(habits) {
			fmt.Fprintf(os.Stderr, "Error: no habit %d, the list has %d\n", index, len(habits))
			os.Exit(1)
		}
		habit := habits[index-1]
		if err := sess.SetHabitStatus(habit.ID, date, status); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if status == plan.StatusUnmarked {
			fmt.Printf("%s Cleared %s on %s\n", ui.HabitMark(""), habit.Title, date)
			return
		}
		fmt.Printf("%s %s on %s\n", ui.HabitMark(string(status)), habit.Title, date)
	},
}

func init() {
	habitCmd.PersistentFlags().StringP("date", "d", "", "Day to operate on (default today)")

	habitAddCmd.Flags().String("title", "", "Habit title (skips the interactive form)")
	habitAddCmd.Flags().String("description", "", "Optional description")
	habitAddCmd.Flags().String("frequency", "daily", "daily, weekly, or monthly")
	habitAddCmd.Flags().IntSlice("days", nil, "Weekdays to schedule, 0=Sunday (empty means every day)")
	habitAddCmd.Flags().Bool("repeat", true, "Repeat on the schedule")
	habitAddCmd.Flags().Bool("reminder", false, "Flag the habit for reminders")
	habitAddCmd.Flags().Bool("goal", false, "Count the habit toward goals")

	habitCmd.AddCommand(habitAddCmd)
	habitCmd.AddCommand(habitListCmd)
	habitCmd.AddCommand(habitMarkCmd)
	rootCmd.AddCommand(habitCmd)
}

// habitForm collects a new habit interactively.
func habitForm() plan.Habit {
	h := plan.Habit{Frequency: plan.FrequencyDaily, Repeat: true}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Value(&h.Title).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("title is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Description").
				Value(&h.Description),
			huh.NewSelect[plan.Frequency]().
				Title("Frequency").
				Options(
					huh.NewOption("Daily", plan.FrequencyDaily),
					huh.NewOption("Weekly", plan.FrequencyWeekly),
					huh.NewOption("Monthly", plan.FrequencyMonthly),
				).
				Value(&h.Frequency),
			huh.NewMultiSelect[int]().
				Title("Days").
				Description("Leave empty to schedule every day").
				Options(
					huh.NewOption("Sunday", 0),
					huh.NewOption("Monday", 1),
					huh.NewOption("Tuesday", 2),
					huh.NewOption("Wednesday", 3),
					huh.NewOption("Thursday", 4),
					huh.NewOption("Friday", 5),
					huh.NewOption("Saturday", 6),
				).
				Value(&h.Days),
			huh.NewConfirm().
				Title("Repeat on the schedule?").
				Value(&h.Repeat),
			huh.NewConfirm().
				Title("Remind you?").
				Value(&h.Reminder),
			huh.NewConfirm().
				Title("Count toward goals?").
				Value(&h.Goal),
		),
	)

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Println("Cancelled")
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return h
}

// habitMeta renders the frequency and weekday schedule, like "(daily)"
// or "(weekly: Mon, Wed)".
func habitMeta(h plan.Habit) string {
	freq := string(h.Frequency)
	if freq == "" {
		freq = string(plan.FrequencyDaily)
	}
	if len(h.Days) == 0 {
		return "(" + freq + ")"
	}
	names := make([]string, 0, len(h.Days))
	for _, d := range h.Days {
		if d < 0 || d > 6 {
			continue
		}
		names = append(names, time.Weekday(d).String()[:3])
	}
	return "(" + freq + ": " + strings.Join(names, ", ") + ")"
}
