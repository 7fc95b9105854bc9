package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Timolansberry/Daily-Planner/internal/dates"
	"github.com/Timolansberry/Daily-Planner/internal/plan"
	"github.com/Timolansberry/Daily-Planner/internal/ui"
)

var showCmd = &cobra.Command{
	Use:     "show [date]",
	GroupID: "plan",
	Short:   "Print a day's plan",
	Long: `Print the full plan for a date: top three priorities, todos,
schedule, meals, notes, water, and habits.

Reads go through the sync coordinator, so with a remote configured the
freshest copy wins and offline reads fall back to the local cache.

Example usage:
  dayplan show                 # Today
  dayplan show tomorrow
  dayplan show 2026-08-30
  dayplan show next friday`,
	Args: cobra.ArbitraryArgs,
	Run: func(cmd *cobra.Command, args []string) {
		date := dateFromArgs(args)
		cfg := loadConfig()
		coord, cache := openCoordinator(cfg, nil)
		defer cache.Close()

		state, err := coord.Load(context.Background(), date)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to load %s: %v\n", date, err)
			os.Exit(1)
		}

		printDay(date, state)
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func printDay(date string, state *plan.State) {
	title := date
	if t, err := time.Parse(dates.ISO, date); err == nil {
		title = t.Format("Monday, January 2, 2006")
	}
	fmt.Println(ui.RenderTitle(title))

	fmt.Println()
	fmt.Println(ui.RenderAccent("Top Three"))
	for i, slot := range state.TopThree {
		text := slot.Text
		if text == "" {
			text = ui.RenderMuted("(empty)")
		}
		fmt.Printf("  %d. %s %s\n", i+1, ui.Checkbox(slot.Done), text)
	}

	if len(state.Todos) > 0 {
		fmt.Println()
		fmt.Println(ui.RenderAccent("Todos"))
		for i, todo := range sortedTodos(state) {
			fmt.Printf("  %d. %s %s\n", i+1, ui.Checkbox(todo.Done), todo.Text)
		}
	}

	if hours := scheduledHours(state); len(hours) > 0 {
		fmt.Println()
		fmt.Println(ui.RenderAccent("Schedule"))
		for _, hour := range hours {
			fmt.Printf("  %s  %s\n", hour, state.Schedule[hour])
		}
	}

	meals := state.Meals
	if meals.Breakfast != "" || meals.Lunch != "" || meals.Dinner != "" {
		fmt.Println()
		fmt.Println(ui.RenderAccent("Meals"))
		printMeal("Breakfast", meals.Breakfast)
		printMeal("Lunch", meals.Lunch)
		printMeal("Dinner", meals.Dinner)
	}

	if state.Notes != "" {
		fmt.Println()
		fmt.Println(ui.RenderAccent("Notes"))
		for _, line := range strings.Split(state.Notes, "\n") {
			fmt.Printf("  %s\n", line)
		}
	}

	fmt.Println()
	fmt.Printf("%s  %s\n", ui.RenderAccent("Water"), ui.WaterGauge(state.Water, plan.WaterMax))

	if len(state.Habits) > 0 {
		fmt.Println()
		fmt.Println(ui.RenderAccent("Habits"))
		for i, h := range state.Habits {
			freq := string(h.Frequency)
			if freq == "" {
				freq = string(plan.FrequencyDaily)
			}
			fmt.Printf("  %d. %s %s %s\n",
				i+1, ui.HabitMark(string(h.StatusOn(date))), h.Title, ui.RenderMuted("("+freq+")"))
		}
	}
}

func printMeal(name, text string) {
	if text == "" {
		return
	}
	fmt.Printf("  %s: %s\n", name, text)
}

// sortedTodos returns the todos in display order without touching the
// state's own slice.
func sortedTodos(state *plan.State) []plan.Todo {
	todos := make([]plan.Todo, len(state.Todos))
	copy(todos, state.Todos)
	sort.Slice(todos, func(i, j int) bool { return todos[i].Order < todos[j].Order })
	return todos
}

func scheduledHours(state *plan.State) []string {
	var hours []string
	for _, hour := range plan.ScheduleHours() {
		if state.Schedule[hour] != "" {
			hours = append(hours, hour)
		}
	}
	return hours
}
