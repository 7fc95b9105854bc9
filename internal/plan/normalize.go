package plan

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/mod/semver"
)

// Schema is the document schema version stamped on every saved plan.
// Documents written by the original browser app carry no tag at all;
// Normalize treats those as legacy and migrates them.
const Schema = "v1.1.0"

// DocSchema extracts the schema tag from a stored document. Returns ""
// for legacy documents with no tag or an unparseable one.
func DocSchema(raw []byte) string {
	var doc struct {
		Schema string `json:"schema"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return ""
	}
	if !semver.IsValid(doc.Schema) {
		return ""
	}
	return doc.Schema
}

// NewerSchema reports whether a document's schema tag belongs to a
// newer major version than this build writes. Such documents are still
// normalized best-effort; callers may want to log a warning.
func NewerSchema(v string) bool {
	return semver.IsValid(v) && semver.Compare(semver.Major(v), semver.Major(Schema)) > 0
}

// rawState mirrors State with every field left undecoded, so one
// malformed field cannot fail the whole document.
type rawState struct {
	TopThree json.RawMessage `json:"topThree"`
	Todos    json.RawMessage `json:"todos"`
	Schedule json.RawMessage `json:"schedule"`
	Notes    json.RawMessage `json:"notes"`
	Meals    json.RawMessage `json:"meals"`
	Water    json.RawMessage `json:"water"`
	Habits   json.RawMessage `json:"habits"`
}

// Normalize parses a stored planner document of any historical shape
// and coerces it into the current schema: non-array topThree, todos,
// and habits become empty lists; a non-object schedule is replaced
// with the full 18-key empty template; the top three are padded or
// truncated to exactly three slots; water is clamped to [0, WaterMax].
// It is a pure function and never fails on legacy field shapes, only
// on input that is not a JSON object at all.
func Normalize(raw []byte) (*State, error) {
	var doc rawState
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse plan document: %w", err)
	}

	out := &State{Schema: Schema}
	out.TopThree = ensureTopThree(decodeList[Slot](doc.TopThree))
	out.Todos = decodeList[Todo](doc.Todos)
	if out.Todos == nil {
		out.Todos = []Todo{}
	}
	for i := range out.Todos {
		if out.Todos[i].ID == "" {
			out.Todos[i].ID = uuid.NewString()
		}
	}
	out.SortTodos()

	out.Schedule = normalizeSchedule(doc.Schedule)
	out.Notes = decodeString(doc.Notes)

	if len(doc.Meals) > 0 {
		// Best effort; a malformed meals record reads as empty.
		_ = json.Unmarshal(doc.Meals, &out.Meals)
	}

	out.Water = clampWater(decodeInt(doc.Water))

	out.Habits = decodeList[Habit](doc.Habits)
	if out.Habits == nil {
		out.Habits = []Habit{}
	}
	for i := range out.Habits {
		normalizeHabit(&out.Habits[i])
	}

	return out, nil
}

// decodeList decodes a JSON array element by element, dropping entries
// that do not decode. Returns nil when the value is absent or not an
// array at all.
func decodeList[T any](raw json.RawMessage) []T {
	if len(raw) == 0 {
		return nil
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err == nil {
		return items
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil
	}
	items = make([]T, 0, len(elems))
	for _, elem := range elems {
		var item T
		if err := json.Unmarshal(elem, &item); err != nil {
			continue
		}
		items = append(items, item)
	}
	return items
}

// ensureTopThree pads or truncates to exactly TopThreeLen slots,
// synthesizing fresh ids for slots that lack one.
func ensureTopThree(slots []Slot) []Slot {
	if len(slots) > TopThreeLen {
		slots = slots[:TopThreeLen]
	}
	for i := range slots {
		if slots[i].ID == "" {
			slots[i].ID = uuid.NewString()
		}
	}
	for len(slots) < TopThreeLen {
		slots = append(slots, Slot{ID: uuid.NewString()})
	}
	return slots
}

// normalizeSchedule rebuilds the fixed hourly grid. Values for known
// hours are carried over individually; unknown keys and non-string
// values are dropped; a non-object schedule yields the empty template.
func normalizeSchedule(raw json.RawMessage) map[string]string {
	out := NewSchedule()
	if len(raw) == 0 {
		return out
	}
	var entries map[string]json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return out
	}
	for _, hour := range ScheduleHours() {
		entry, ok := entries[hour]
		if !ok {
			continue
		}
		var text string
		if err := json.Unmarshal(entry, &text); err != nil {
			continue
		}
		out[hour] = text
	}
	return out
}

func decodeString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// decodeInt tolerates fractional values, which browser-era documents
// occasionally held.
func decodeInt(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 0
	}
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return int(f)
	}
	return 0
}

// normalizeHabit repairs one habit in place: fills a missing id, drops
// out-of-range weekdays, clears an unrecognized frequency, and removes
// completion entries whose status is not a markable value.
func normalizeHabit(h *Habit) {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	if h.Frequency != "" && !h.Frequency.Valid() {
		h.Frequency = ""
	}
	if len(h.Days) > 0 {
		days := h.Days[:0]
		for _, d := range h.Days {
			if d >= 0 && d <= 6 {
				days = append(days, d)
			}
		}
		h.Days = days
	}
	for date, status := range h.Completions {
		if !status.Valid() {
			delete(h.Completions, date)
		}
	}
}
