package plan

import (
	"fmt"
	"strings"
)

// Page identifies one of the app's storage categories. The planner
// page holds the per-date State documents; the others hold opaque
// documents owned by their own views.
type Page string

const (
	PagePlanner  Page = "planner"
	PageHabits   Page = "habits"
	PageExpenses Page = "expenses"
	PageWork     Page = "work"
	PagePomodoro Page = "pomodoro"
	PageUserInfo Page = "userInfo"
)

// UserInfoDate is the fixed date literal the user-info record is
// stored under; that page has no per-date documents.
const UserInfoDate = "profile"

// Pages returns every known storage page.
func Pages() []Page {
	return []Page{PagePlanner, PageHabits, PageExpenses, PageWork, PagePomodoro, PageUserInfo}
}

// Valid reports whether p is a known page.
func (p Page) Valid() bool {
	switch p {
	case PagePlanner, PageHabits, PageExpenses, PageWork, PagePomodoro, PageUserInfo:
		return true
	}
	return false
}

// Key returns the flat cache key for a page and date: "{page}:{date}".
func (p Page) Key(date string) string {
	return fmt.Sprintf("%s:%s", p, date)
}

// SplitKey parses a flat "{page}:{date}" cache key.
func SplitKey(key string) (Page, string, error) {
	page, date, ok := strings.Cut(key, ":")
	if !ok {
		return "", "", fmt.Errorf("malformed cache key %q", key)
	}
	p := Page(page)
	if !p.Valid() {
		return "", "", fmt.Errorf("unknown page in cache key %q", key)
	}
	return p, date, nil
}
