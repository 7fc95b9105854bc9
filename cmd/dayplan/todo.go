package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Timolansberry/Daily-Planner/internal/dates"
	"github.com/Timolansberry/Daily-Planner/internal/ui"
)

var todoCmd = &cobra.Command{
	Use:     "todo",
	GroupID: "plan",
	Short:   "Manage a day's to-do list",
	Long: `Manage the to-do list for a day.

Example usage:
  dayplan todo add "Call Sam"              # Add to today
  dayplan todo add -d tomorrow "Pack bag"  # Add to another day
  dayplan todo list                        # Numbered list for today
  dayplan todo done 2                      # Toggle the second todo`,
}

var todoAddCmd = &cobra.Command{
	Use:   "add TEXT",
	Short: "Add a to-do",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		date := flagDate(cmd)
		cfg := loadConfig()
		coord, cache := openCoordinator(cfg, nil)
		defer cache.Close()

		sess := startSession(cfg, coord, date)
		defer sess.Close()

		todo, err := sess.AddTodo(strings.Join(args, " "))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("%s Added for %s: %s\n", ui.RenderPass("✓"), date, todo.Text)
	},
}

var todoListCmd = &cobra.Command{
	Use:   "list",
	Short: "List a day's todos",
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

		todos := sortedTodos(state)
		if len(todos) == 0 {
			fmt.Printf("No todos for %s\n", date)
			return
		}
		for i, todo := range todos {
			fmt.Printf("%d. %s %s\n", i+1, ui.Checkbox(todo.Done), todo.Text)
		}
	},
}

var todoDoneCmd = &cobra.Command{
	Use:   "done INDEX",
	Short: "Toggle a to-do by its list position",
	Long: `Toggle a to-do between done and open. INDEX is the 1-based
position shown by 'dayplan todo list'.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		index, err := strconv.Atoi(args[0])
		if err != nil || index < 1 {
			fmt.Fprintf(os.Stderr, "Error: INDEX must be a positive number, got %q\n", args[0])
			os.Exit(1)
		}

		date := flagDate(cmd)
		cfg := loadConfig()
		coord, cache := openCoordinator(cfg, nil)
		defer cache.Close()

		sess := startSession(cfg, coord, date)
		defer sess.Close()

		todos := sortedTodos(sess.Snapshot())
		if index > len(todos) {
			fmt.Fprintf(os.Stderr, "Error: no todo %d, the list has %d\n", index, len(todos))
			os.Exit(1)
		}
		todo := todos[index-1]
		if err := sess.ToggleTodo(todo.ID); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if todo.Done {
			fmt.Printf("%s Reopened: %s\n", ui.RenderWarn("↺"), todo.Text)
		} else {
			fmt.Printf("%s Done: %s\n", ui.RenderPass("✓"), todo.Text)
		}
	},
}

func init() {
	todoCmd.PersistentFlags().StringP("date", "d", "", "Day to operate on (default today)")

	todoCmd.AddCommand(todoAddCmd)
	todoCmd.AddCommand(todoListCmd)
	todoCmd.AddCommand(todoDoneCmd)
	rootCmd.AddCommand(todoCmd)
}

// flagDate resolves the shared --date flag, defaulting to today.
func flagDate(cmd *cobra.Command) string {
	arg, _ := cmd.Flags().GetString("date")
	if arg == "" {
		return dates.Today()
	}
	return resolveDate(arg)
}
