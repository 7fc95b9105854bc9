package plan

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Status is a habit's completion state for one date. Unmarked is
// represented by the absence of a completions entry and is never
// stored; the three markable values below are. Any status may be
// replaced by any other on repeated interaction the same day.
type Status string

const (
	StatusUnmarked  Status = ""
	StatusCompleted Status = "completed"
	StatusNotDone   Status = "not_done"
	StatusSkipped   Status = "skipped"
)

// Valid reports whether s is one of the three markable statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusCompleted, StatusNotDone, StatusSkipped:
		return true
	}
	return false
}

// Frequency is how often a habit repeats.
type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

// Valid reports whether f is a known frequency.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
		return true
	}
	return false
}

// Habit is a tracked recurring behavior. Days holds weekday numbers
// (0=Sunday); an empty set means the habit is scheduled every day.
// Completions maps a YYYY-MM-DD date key to that day's status.
type Habit struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description,omitempty"`
	Color       string            `json:"color,omitempty"`
	Repeat      bool              `json:"repeat"`
	Reminder    bool              `json:"reminder"`
	Goal        bool              `json:"goal"`
	Frequency   Frequency         `json:"frequency,omitempty"`
	Days        []int             `json:"days,omitempty"`
	CreatedAt   string            `json:"createdAt,omitempty"`
	Completions map[string]Status `json:"completions,omitempty"`
}

// Validate checks the fields a user supplies when creating or editing
// a habit. A habit with no title is rejected outright.
func (h *Habit) Validate() error {
	if h.Title == "" {
		return fmt.Errorf("title is required")
	}
	if h.Frequency != "" && !h.Frequency.Valid() {
		return fmt.Errorf("unknown frequency %q", h.Frequency)
	}
	for _, d := range h.Days {
		if d < 0 || d > 6 {
			return fmt.Errorf("weekday %d out of range 0-6", d)
		}
	}
	return nil
}

// ScheduledOn reports whether the habit is scheduled on the given
// weekday. An empty Days set means every day.
func (h *Habit) ScheduledOn(day time.Weekday) bool {
	if len(h.Days) == 0 {
		return true
	}
	for _, d := range h.Days {
		if d == int(day) {
			return true
		}
	}
	return false
}

// StatusOn returns the habit's status for a date key, or StatusUnmarked
// when the date has no entry.
func (h *Habit) StatusOn(date string) Status {
	return h.Completions[date]
}

// SetStatus records the habit's status for a date key. Setting
// StatusUnmarked removes the entry.
func (h *Habit) SetStatus(date string, status Status) error {
	if status == StatusUnmarked {
		delete(h.Completions, date)
		return nil
	}
	if !status.Valid() {
		return fmt.Errorf("unknown habit status %q", status)
	}
	if h.Completions == nil {
		h.Completions = make(map[string]Status)
	}
	h.Completions[date] = status
	return nil
}

// Clone returns a deep copy of the habit.
func (h Habit) Clone() Habit {
	out := h
	if h.Days != nil {
		out.Days = make([]int, len(h.Days))
		copy(out.Days, h.Days)
	}
	if h.Completions != nil {
		out.Completions = make(map[string]Status, len(h.Completions))
		for k, v := range h.Completions {
			out.Completions[k] = v
		}
	}
	return out
}

// AddHabit validates and appends a habit, filling in a fresh id and a
// creation timestamp when absent. Returns the stored habit.
func (s *State) AddHabit(h Habit) (*Habit, error) {
	if err := h.Validate(); err != nil {
		return nil, fmt.Errorf("invalid habit: %w", err)
	}
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	if h.CreatedAt == "" {
		h.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}
	s.Habits = append(s.Habits, h)
	return &s.Habits[len(s.Habits)-1], nil
}

// UpdateHabit replaces the editable fields of the habit with the same
// id, preserving its creation timestamp and completion history.
func (s *State) UpdateHabit(h Habit) error {
	if err := h.Validate(); err != nil {
		return fmt.Errorf("invalid habit: %w", err)
	}
	for i := range s.Habits {
		if s.Habits[i].ID == h.ID {
			h.CreatedAt = s.Habits[i].CreatedAt
			h.Completions = s.Habits[i].Completions
			s.Habits[i] = h
			return nil
		}
	}
	return fmt.Errorf("no habit with id %s", h.ID)
}

// DeleteHabit removes the habit with the given id.
// Returns false if no such habit exists.
func (s *State) DeleteHabit(id string) bool {
	for i := range s.Habits {
		if s.Habits[i].ID == id {
			s.Habits = append(s.Habits[:i], s.Habits[i+1:]...)
			return true
		}
	}
	return false
}

// HabitByID returns the habit with the given id, or nil.
func (s *State) HabitByID(id string) *Habit {
	for i := range s.Habits {
		if s.Habits[i].ID == id {
			return &s.Habits[i]
		}
	}
	return nil
}

// SetHabitStatus records a status for one habit on one date.
func (s *State) SetHabitStatus(id, date string, status Status) error {
	habit := s.HabitByID(id)
	if habit == nil {
		return fmt.Errorf("no habit with id %s", id)
	}
	return habit.SetStatus(date, status)
}
