// Package ui provides terminal styling for command output. Styles
// degrade to plain text when stdout is not a terminal or color is
// disabled, so piped output stays clean.
package ui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

var (
	accentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	passStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	titleStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
)

var colorEnabled = detectColor()

// detectColor reports whether stdout wants styled output.
func detectColor() bool {
	if termenv.EnvNoColor() {
		return false
	}
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return false
	}
	return termenv.ColorProfile() != termenv.Ascii
}

func render(style lipgloss.Style, s string) string {
	if !colorEnabled {
		return s
	}
	return style.Render(s)
}

// RenderAccent styles informational highlights.
func RenderAccent(s string) string { return render(accentStyle, s) }

// RenderPass styles success markers.
func RenderPass(s string) string { return render(passStyle, s) }

// RenderWarn styles warnings.
func RenderWarn(s string) string { return render(warnStyle, s) }

// RenderFail styles errors.
func RenderFail(s string) string { return render(failStyle, s) }

// RenderMuted styles secondary detail.
func RenderMuted(s string) string { return render(mutedStyle, s) }

// RenderTitle styles section headings.
func RenderTitle(s string) string { return render(titleStyle, s) }

// Checkbox renders a todo's done state.
func Checkbox(done bool) string {
	if done {
		return RenderPass("[x]")
	}
	return "[ ]"
}

// HabitMark renders a habit's status for one date: completed, not
// done, skipped, or unmarked.
func HabitMark(status string) string {
	switch status {
	case "completed":
		return RenderPass("✓")
	case "not_done":
		return RenderFail("✗")
	case "skipped":
		return RenderWarn("~")
	default:
		return RenderMuted("·")
	}
}

// WaterGauge renders the water tracker as filled and empty cells.
func WaterGauge(count, max int) string {
	if max <= 0 {
		return ""
	}
	if count < 0 {
		count = 0
	}
	if count > max {
		count = max
	}
	filled := strings.Repeat("●", count)
	empty := strings.Repeat("○", max-count)
	return fmt.Sprintf("%s%s %d/%d", RenderAccent(filled), RenderMuted(empty), count, max)
}

// SyncBadge renders a save result's remote outcome.
func SyncBadge(synced bool, status string) string {
	if synced {
		return RenderPass("synced")
	}
	switch status {
	case "remote-rejected":
		return RenderFail("rejected")
	case "remote-unavailable":
		return RenderWarn("local only")
	default:
		return RenderMuted("local")
	}
}
