package plan

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestNormalizeEmptyDocument(t *testing.T) {
	s, err := Normalize([]byte(`{}`))
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	if len(s.TopThree) != TopThreeLen {
		t.Errorf("TopThree length = %d, want %d", len(s.TopThree), TopThreeLen)
	}
	if len(s.Schedule) != 18 {
		t.Errorf("Schedule has %d keys, want 18", len(s.Schedule))
	}
	if len(s.Todos) != 0 || s.Todos == nil {
		t.Errorf("Todos = %v, want empty list", s.Todos)
	}
	if len(s.Habits) != 0 || s.Habits == nil {
		t.Errorf("Habits = %v, want empty list", s.Habits)
	}
	if s.Water != 0 {
		t.Errorf("Water = %d, want 0", s.Water)
	}
	if s.Schema != Schema {
		t.Errorf("Schema = %q, want %q", s.Schema, Schema)
	}
}

func TestNormalizeCoercesNonArrays(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"habits as object", `{"habits": {"0": {"title": "run"}}}`},
		{"habits as null", `{"habits": null}`},
		{"habits as number", `{"habits": 42}`},
		{"habits as string", `{"habits": "none"}`},
		{"todos as object", `{"todos": {}}`},
		{"topThree as bool", `{"topThree": true}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Normalize([]byte(tt.doc))
			if err != nil {
				t.Fatalf("Normalize failed: %v", err)
			}
			if len(s.Habits) != 0 {
				t.Errorf("Habits = %v, want empty", s.Habits)
			}
			if len(s.Todos) != 0 {
				t.Errorf("Todos = %v, want empty", s.Todos)
			}
			if len(s.TopThree) != TopThreeLen {
				t.Errorf("TopThree length = %d, want %d", len(s.TopThree), TopThreeLen)
			}
		})
	}
}

func TestNormalizeSchedule(t *testing.T) {
	t.Run("non-object replaced with template", func(t *testing.T) {
		for _, doc := range []string{`{"schedule": []}`, `{"schedule": 7}`, `{"schedule": "busy"}`} {
			s, err := Normalize([]byte(doc))
			if err != nil {
				t.Fatalf("Normalize(%s) failed: %v", doc, err)
			}
			if len(s.Schedule) != 18 {
				t.Errorf("Schedule has %d keys, want 18", len(s.Schedule))
			}
		}
	})

	t.Run("known hours carried, junk dropped", func(t *testing.T) {
		doc := `{"schedule": {"06:00": "gym", "23:00": "read", "02:00": "ghost", "09:00": 42}}`
		s, err := Normalize([]byte(doc))
		if err != nil {
			t.Fatalf("Normalize failed: %v", err)
		}
		if s.Schedule["06:00"] != "gym" || s.Schedule["23:00"] != "read" {
			t.Errorf("Known hours not carried over: %v", s.Schedule)
		}
		if _, ok := s.Schedule["02:00"]; ok {
			t.Error("Off-grid hour survived normalization")
		}
		if s.Schedule["09:00"] != "" {
			t.Errorf("Non-string schedule value = %q, want empty", s.Schedule["09:00"])
		}
		if len(s.Schedule) != 18 {
			t.Errorf("Schedule has %d keys, want 18", len(s.Schedule))
		}
	})
}

func TestNormalizeRoundTrip(t *testing.T) {
	s := NewState()
	s.AddTodo("pack lunch")
	s.AddTodo("call dentist")
	s.ToggleTodo(s.Todos[0].ID)
	if err := s.SetTopThree(0, "finish report"); err != nil {
		t.Fatalf("SetTopThree failed: %v", err)
	}
	if err := s.SetScheduleEntry("14:00", "1:1 with sam"); err != nil {
		t.Fatalf("SetScheduleEntry failed: %v", err)
	}
	s.Notes = "remember the milk"
	s.Meals = Meals{Breakfast: "oats", Lunch: "salad", Dinner: "curry"}
	s.SetWater(5)
	habit, err := s.AddHabit(Habit{Title: "run", Frequency: FrequencyDaily, Days: []int{1, 3, 5}})
	if err != nil {
		t.Fatalf("AddHabit failed: %v", err)
	}
	if err := habit.SetStatus("2026-08-26", StatusCompleted); err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}

	raw, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	got, err := Normalize(raw)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if !reflect.DeepEqual(s, got) {
		t.Errorf("Round trip changed the state.\n got: %+v\nwant: %+v", got, s)
	}
}

func TestNormalizeSortsTodosByOrder(t *testing.T) {
	doc := `{"todos": [
		{"id": "c", "text": "third", "order": 5},
		{"id": "a", "text": "first", "order": 0},
		{"id": "b", "text": "second", "order": 2}
	]}`
	s, err := Normalize([]byte(doc))
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	want := []string{"first", "second", "third"}
	for i, text := range want {
		if s.Todos[i].Text != text {
			t.Errorf("Todos[%d].Text = %q, want %q", i, s.Todos[i].Text, text)
		}
		if s.Todos[i].Order != i {
			t.Errorf("Todos[%d].Order = %d, want %d", i, s.Todos[i].Order, i)
		}
	}
}

func TestNormalizeDropsUndecodableListEntries(t *testing.T) {
	doc := `{"todos": [{"id": "a", "text": "keep", "order": 0}, "junk", {"id": "b", "text": "also keep", "order": 1}]}`
	s, err := Normalize([]byte(doc))
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if len(s.Todos) != 2 {
		t.Fatalf("Todos length = %d, want 2", len(s.Todos))
	}
	if s.Todos[0].Text != "keep" || s.Todos[1].Text != "also keep" {
		t.Errorf("Wrong todos survived: %+v", s.Todos)
	}
}

func TestNormalizeWater(t *testing.T) {
	tests := []struct {
		doc  string
		want int
	}{
		{`{"water": 3}`, 3},
		{`{"water": 99}`, 8},
		{`{"water": -2}`, 0},
		{`{"water": 6.7}`, 6},
		{`{"water": "lots"}`, 0},
	}

	for _, tt := range tests {
		s, err := Normalize([]byte(tt.doc))
		if err != nil {
			t.Fatalf("Normalize(%s) failed: %v", tt.doc, err)
		}
		if s.Water != tt.want {
			t.Errorf("Normalize(%s): Water = %d, want %d", tt.doc, s.Water, tt.want)
		}
	}
}

func TestNormalizeTopThreePadding(t *testing.T) {
	t.Run("short list padded", func(t *testing.T) {
		doc := `{"topThree": [{"id": "x", "text": "only one", "done": true}]}`
		s, err := Normalize([]byte(doc))
		if err != nil {
			t.Fatalf("Normalize failed: %v", err)
		}
		if len(s.TopThree) != 3 {
			t.Fatalf("TopThree length = %d, want 3", len(s.TopThree))
		}
		if s.TopThree[0].Text != "only one" || !s.TopThree[0].Done {
			t.Errorf("Existing slot not preserved: %+v", s.TopThree[0])
		}
		for i := 1; i < 3; i++ {
			if s.TopThree[i].ID == "" {
				t.Errorf("Padded slot %d has no id", i)
			}
			if s.TopThree[i].Text != "" {
				t.Errorf("Padded slot %d has text %q", i, s.TopThree[i].Text)
			}
		}
	})

	t.Run("long list truncated", func(t *testing.T) {
		doc := `{"topThree": [{"id":"1"},{"id":"2"},{"id":"3"},{"id":"4"},{"id":"5"}]}`
		s, err := Normalize([]byte(doc))
		if err != nil {
			t.Fatalf("Normalize failed: %v", err)
		}
		if len(s.TopThree) != 3 {
			t.Errorf("TopThree length = %d, want 3", len(s.TopThree))
		}
	})

	t.Run("missing slot ids filled", func(t *testing.T) {
		doc := `{"topThree": [{"text": "no id"}]}`
		s, err := Normalize([]byte(doc))
		if err != nil {
			t.Fatalf("Normalize failed: %v", err)
		}
		if s.TopThree[0].ID == "" {
			t.Error("Slot id not synthesized")
		}
	})
}

func TestNormalizeHabitRepair(t *testing.T) {
	doc := `{"habits": [{
		"title": "hydrate",
		"frequency": "fortnightly",
		"days": [0, 3, 9, -1],
		"completions": {"2026-08-20": "completed", "2026-08-21": "maybe"}
	}]}`
	s, err := Normalize([]byte(doc))
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if len(s.Habits) != 1 {
		t.Fatalf("Habits length = %d, want 1", len(s.Habits))
	}
	h := s.Habits[0]
	if h.ID == "" {
		t.Error("Habit id not synthesized")
	}
	if h.Frequency != "" {
		t.Errorf("Frequency = %q, want cleared", h.Frequency)
	}
	if !reflect.DeepEqual(h.Days, []int{0, 3}) {
		t.Errorf("Days = %v, want [0 3]", h.Days)
	}
	if h.StatusOn("2026-08-20") != StatusCompleted {
		t.Error("Valid completion lost")
	}
	if _, ok := h.Completions["2026-08-21"]; ok {
		t.Error("Invalid completion status survived")
	}
}

func TestNormalizeRejectsNonObject(t *testing.T) {
	for _, doc := range []string{`[]`, `42`, `"plan"`, ``, `{broken`} {
		if _, err := Normalize([]byte(doc)); err == nil {
			t.Errorf("Normalize(%q) succeeded, want error", doc)
		}
	}
}

func TestDocSchema(t *testing.T) {
	tests := []struct {
		doc  string
		want string
	}{
		{`{"schema": "v1.1.0"}`, "v1.1.0"},
		{`{"schema": "1.1.0"}`, ""},
		{`{}`, ""},
		{`{"schema": 2}`, ""},
	}

	for _, tt := range tests {
		if got := DocSchema([]byte(tt.doc)); got != tt.want {
			t.Errorf("DocSchema(%s) = %q, want %q", tt.doc, got, tt.want)
		}
	}
}

func TestNewerSchema(t *testing.T) {
	if NewerSchema("v1.99.0") {
		t.Error("Same-major schema reported as newer")
	}
	if !NewerSchema("v2.0.0") {
		t.Error("Next-major schema not reported as newer")
	}
	if NewerSchema("") {
		t.Error("Legacy untagged schema reported as newer")
	}
}
