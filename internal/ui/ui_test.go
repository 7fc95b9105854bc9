package ui

import (
	"strings"
	"testing"
)

// Force plain output so assertions do not depend on the test terminal.
func plain(t *testing.T) {
	t.Helper()
	old := colorEnabled
	colorEnabled = false
	t.Cleanup(func() { colorEnabled = old })
}

func TestRenderPlainPassthrough(t *testing.T) {
	plain(t)

	for _, fn := range []func(string) string{
		RenderAccent, RenderPass, RenderWarn, RenderFail, RenderMuted, RenderTitle,
	} {
		if got := fn("hello"); got != "hello" {
			t.Errorf("Expected plain passthrough, got %q", got)
		}
	}
}

func TestCheckbox(t *testing.T) {
	plain(t)

	if got := Checkbox(true); got != "[x]" {
		t.Errorf("Expected [x], got %q", got)
	}
	if got := Checkbox(false); got != "[ ]" {
		t.Errorf("Expected [ ], got %q", got)
	}
}

func TestHabitMark(t *testing.T) {
	plain(t)

	cases := map[string]string{
		"completed": "✓",
		"not_done":  "✗",
		"skipped":   "~",
		"":          "·",
		"garbage":   "·",
	}
	for status, want := range cases {
		if got := HabitMark(status); got != want {
			t.Errorf("Expected %q for status %q, got %q", want, status, got)
		}
	}
}

func TestWaterGauge(t *testing.T) {
	plain(t)

	got := WaterGauge(3, 8)
	if !strings.HasSuffix(got, "3/8") {
		t.Errorf("Expected count suffix 3/8, got %q", got)
	}
	if strings.Count(got, "●") != 3 {
		t.Errorf("Expected 3 filled cells, got %q", got)
	}
	if strings.Count(got, "○") != 5 {
		t.Errorf("Expected 5 empty cells, got %q", got)
	}

	// Out-of-range counts clamp instead of panicking.
	if got := WaterGauge(99, 8); strings.Count(got, "●") != 8 {
		t.Errorf("Expected clamp to 8 filled cells, got %q", got)
	}
	if got := WaterGauge(-5, 8); strings.Count(got, "○") != 8 {
		t.Errorf("Expected clamp to 0 filled cells, got %q", got)
	}
}

func TestSyncBadge(t *testing.T) {
	plain(t)

	if got := SyncBadge(true, "ok"); got != "synced" {
		t.Errorf("Expected synced, got %q", got)
	}
	if got := SyncBadge(false, "remote-unavailable"); got != "local only" {
		t.Errorf("Expected local only, got %q", got)
	}
	if got := SyncBadge(false, "remote-rejected"); got != "rejected" {
		t.Errorf("Expected rejected, got %q", got)
	}
	if got := SyncBadge(false, "ok"); got != "local" {
		t.Errorf("Expected local, got %q", got)
	}
}
