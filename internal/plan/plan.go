// Package plan defines the daily planner document model: the per-date
// PlanState with its top-three priorities, to-do list, hourly schedule,
// meal and water trackers, notes, and habits, plus the normalization
// rules that migrate legacy document shapes into the current schema.
package plan

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// scheduleStart and scheduleEnd bound the hourly grid (inclusive).
const (
	scheduleStart = 6
	scheduleEnd   = 23
)

// WaterMax is the number of intake units on the water tracker.
const WaterMax = 8

// TopThreeLen is the fixed number of priority slots.
const TopThreeLen = 3

// Slot is one of the three priority slots at the top of a day.
type Slot struct {
	ID   string `json:"id"`
	Text string `json:"text"`
	Done bool   `json:"done"`
}

// Todo is a single to-do entry. Order defines the display sequence and
// is kept contiguous in 0..n-1 after every reorder or delete.
type Todo struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Done  bool   `json:"done"`
	Order int    `json:"order"`
}

// Meals holds the three free-text meal fields for a day.
type Meals struct {
	Breakfast string `json:"breakfast"`
	Lunch     string `json:"lunch"`
	Dinner    string `json:"dinner"`
}

// State is the full planner document for one calendar date. It is the
// single in-memory source of truth for the active date and is replaced
// wholesale on date navigation, never diffed.
type State struct {
	Schema   string            `json:"schema,omitempty"`
	TopThree []Slot            `json:"topThree"`
	Todos    []Todo            `json:"todos"`
	Schedule map[string]string `json:"schedule"`
	Notes    string            `json:"notes"`
	Meals    Meals             `json:"meals"`
	Water    int               `json:"water"`
	Habits   []Habit           `json:"habits"`
}

// NewState returns the empty template for a date with no stored data:
// three blank priority slots, no todos, the full 18-hour schedule grid
// with every entry empty, zero water, and no habits.
func NewState() *State {
	return &State{
		Schema:   Schema,
		TopThree: NewTopThree(),
		Todos:    []Todo{},
		Schedule: NewSchedule(),
		Habits:   []Habit{},
	}
}

// NewTopThree returns three empty priority slots with fresh ids.
func NewTopThree() []Slot {
	slots := make([]Slot, TopThreeLen)
	for i := range slots {
		slots[i] = Slot{ID: uuid.NewString()}
	}
	return slots
}

// ScheduleHours returns the fixed hour keys of the schedule grid,
// "06:00" through "23:00" inclusive.
func ScheduleHours() []string {
	hours := make([]string, 0, scheduleEnd-scheduleStart+1)
	for h := scheduleStart; h <= scheduleEnd; h++ {
		hours = append(hours, fmt.Sprintf("%02d:00", h))
	}
	return hours
}

// NewSchedule returns a schedule map with every grid hour present and empty.
func NewSchedule() map[string]string {
	sched := make(map[string]string, scheduleEnd-scheduleStart+1)
	for _, hour := range ScheduleHours() {
		sched[hour] = ""
	}
	return sched
}

// AddTodo appends a new to-do at the end of the list and returns it.
func (s *State) AddTodo(text string) *Todo {
	todo := Todo{
		ID:    uuid.NewString(),
		Text:  text,
		Order: len(s.Todos),
	}
	s.Todos = append(s.Todos, todo)
	return &s.Todos[len(s.Todos)-1]
}

// ToggleTodo flips the done flag of the to-do with the given id.
// Returns false if no such to-do exists.
func (s *State) ToggleTodo(id string) bool {
	for i := range s.Todos {
		if s.Todos[i].ID == id {
			s.Todos[i].Done = !s.Todos[i].Done
			return true
		}
	}
	return false
}

// SetTodoText replaces the text of the to-do with the given id.
// Returns false if no such to-do exists.
func (s *State) SetTodoText(id, text string) bool {
	for i := range s.Todos {
		if s.Todos[i].ID == id {
			s.Todos[i].Text = text
			return true
		}
	}
	return false
}

// DeleteTodo removes the to-do with the given id and re-normalizes
// the remaining order fields. Returns false if no such to-do exists.
func (s *State) DeleteTodo(id string) bool {
	for i := range s.Todos {
		if s.Todos[i].ID == id {
			s.Todos = append(s.Todos[:i], s.Todos[i+1:]...)
			s.renumberTodos()
			return true
		}
	}
	return false
}

// MoveTodo moves the to-do at position from to position to, shifting
// the entries between them, and re-normalizes all order fields to a
// contiguous 0..n-1 range in the new visual order.
func (s *State) MoveTodo(from, to int) error {
	if from < 0 || from >= len(s.Todos) {
		return fmt.Errorf("todo position %d out of range (have %d)", from, len(s.Todos))
	}
	if to < 0 || to >= len(s.Todos) {
		return fmt.Errorf("todo position %d out of range (have %d)", to, len(s.Todos))
	}
	if from == to {
		return nil
	}
	moved := s.Todos[from]
	s.Todos = append(s.Todos[:from], s.Todos[from+1:]...)
	s.Todos = append(s.Todos[:to], append([]Todo{moved}, s.Todos[to:]...)...)
	s.renumberTodos()
	return nil
}

// renumberTodos rewrites every order field to match slice position.
func (s *State) renumberTodos() {
	for i := range s.Todos {
		s.Todos[i].Order = i
	}
}

// SortTodos orders the list by the stored order fields and renumbers
// them contiguously. Used when loading documents whose order values
// have gaps or duplicates.
func (s *State) SortTodos() {
	sort.SliceStable(s.Todos, func(i, j int) bool {
		return s.Todos[i].Order < s.Todos[j].Order
	})
	s.renumberTodos()
}

// SetTopThree replaces the text of priority slot i (0-based).
func (s *State) SetTopThree(i int, text string) error {
	if i < 0 || i >= len(s.TopThree) {
		return fmt.Errorf("priority slot %d out of range", i)
	}
	s.TopThree[i].Text = text
	return nil
}

// ToggleTopThree flips the done flag of priority slot i (0-based).
func (s *State) ToggleTopThree(i int) error {
	if i < 0 || i >= len(s.TopThree) {
		return fmt.Errorf("priority slot %d out of range", i)
	}
	s.TopThree[i].Done = !s.TopThree[i].Done
	return nil
}

// SetScheduleEntry replaces the free text for one grid hour. The hour
// must be one of the fixed keys returned by ScheduleHours.
func (s *State) SetScheduleEntry(hour, text string) error {
	if _, ok := s.Schedule[hour]; !ok {
		return fmt.Errorf("hour %q is not on the schedule grid", hour)
	}
	s.Schedule[hour] = text
	return nil
}

// SetMeal replaces the free text of one meal field. Name must be
// breakfast, lunch, or dinner.
func (s *State) SetMeal(name, text string) error {
	switch name {
	case "breakfast":
		s.Meals.Breakfast = text
	case "lunch":
		s.Meals.Lunch = text
	case "dinner":
		s.Meals.Dinner = text
	default:
		return fmt.Errorf("unknown meal %q", name)
	}
	return nil
}

// SetWater sets the water tracker, clamped to [0, WaterMax].
func (s *State) SetWater(n int) {
	s.Water = clampWater(n)
}

// AddWater adjusts the water tracker by delta, clamped to [0, WaterMax],
// and returns the new value.
func (s *State) AddWater(delta int) int {
	s.Water = clampWater(s.Water + delta)
	return s.Water
}

func clampWater(n int) int {
	if n < 0 {
		return 0
	}
	if n > WaterMax {
		return WaterMax
	}
	return n
}

// Clone returns a deep copy of the state. Callers that hand a state to
// a background writer clone it first so later mutations do not race
// with serialization.
func (s *State) Clone() *State {
	out := &State{
		Schema: s.Schema,
		Notes:  s.Notes,
		Meals:  s.Meals,
		Water:  s.Water,
	}
	out.TopThree = make([]Slot, len(s.TopThree))
	copy(out.TopThree, s.TopThree)
	out.Todos = make([]Todo, len(s.Todos))
	copy(out.Todos, s.Todos)
	out.Schedule = make(map[string]string, len(s.Schedule))
	for k, v := range s.Schedule {
		out.Schedule[k] = v
	}
	out.Habits = make([]Habit, len(s.Habits))
	for i, h := range s.Habits {
		out.Habits[i] = h.Clone()
	}
	return out
}
