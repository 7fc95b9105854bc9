// Package dates resolves user-facing date input. Plans are keyed by
// canonical YYYY-MM-DD strings; this package turns both ISO dates and
// casual phrases like "tomorrow" or "next monday" into that key.
package dates

import (
	"fmt"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// ISO is the canonical date layout used as the storage key.
const ISO = "2006-01-02"

var parser = func() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}()

// Today returns the current local date in canonical form.
func Today() string {
	return time.Now().Format(ISO)
}

// Valid reports whether s is a canonical YYYY-MM-DD date. The
// round-trip check rejects spellings like 2026-8-26 that time.Parse
// would let through.
func Valid(s string) bool {
	t, err := time.Parse(ISO, s)
	return err == nil && t.Format(ISO) == s
}

// Resolve turns user input into a canonical date relative to now.
// Empty input means now's date; canonical dates pass through; anything
// else goes to the natural-language parser.
func Resolve(input string, now time.Time) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return now.Format(ISO), nil
	}
	if Valid(input) {
		return input, nil
	}

	r, err := parser.Parse(input, now)
	if err != nil {
		return "", fmt.Errorf("failed to parse date %q: %w", input, err)
	}
	if r == nil {
		return "", fmt.Errorf("unrecognized date %q", input)
	}
	return r.Time.Format(ISO), nil
}

// Weekday returns the weekday number (0=Sunday) for a canonical date.
func Weekday(date string) (int, error) {
	t, err := time.Parse(ISO, date)
	if err != nil {
		return 0, fmt.Errorf("invalid date %q: %w", date, err)
	}
	return int(t.Weekday()), nil
}
