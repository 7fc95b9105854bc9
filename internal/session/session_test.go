package session

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"path/filepath"
	gosync "sync"
	"testing"
	"time"

	"github.com/Timolansberry/Daily-Planner/internal/plan"
	"github.com/Timolansberry/Daily-Planner/internal/remote"
	"github.com/Timolansberry/Daily-Planner/internal/store"
	"github.com/Timolansberry/Daily-Planner/internal/sync"
)

const testDate = "2026-08-26"

// fakeRemote is a minimal in-memory remote.Store for sign-in tests.
type fakeRemote struct {
	mu   gosync.Mutex
	docs map[string]json.RawMessage
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{docs: make(map[string]json.RawMessage)}
}

func (f *fakeRemote) Read(ctx context.Context, ref remote.Ref) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.docs[ref.Path()]
	if !ok {
		return nil, remote.ErrNotFound
	}
	return doc, nil
}

func (f *fakeRemote) Write(ctx context.Context, ref remote.Ref, doc json.RawMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs[ref.Path()] = append(json.RawMessage(nil), doc...)
	return nil
}

func (f *fakeRemote) has(path string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.docs[path]
	return ok
}

// setupSession creates a started session over a temp cache.
func setupSession(t *testing.T, rs remote.Store, interval time.Duration) (*Session, sync.Coordinator) {
	t.Helper()

	cache, err := store.Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("Failed to open test cache: %v", err)
	}
	t.Cleanup(func() {
		_ = cache.Close()
	})

	logger := log.New(io.Discard, "", 0)
	coord := sync.New(cache, rs, logger)
	sess, err := New(coord, &Config{QuietInterval: interval, Logger: logger})
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	t.Cleanup(sess.Close)

	if err := sess.Start(context.Background(), testDate); err != nil {
		t.Fatalf("Failed to start session: %v", err)
	}
	return sess, coord
}

func TestStartLoadsTemplate(t *testing.T) {
	sess, _ := setupSession(t, nil, time.Minute)

	if got := sess.Date(); got != testDate {
		t.Errorf("Date() = %q, want %q", got, testDate)
	}
	state := sess.Snapshot()
	if len(state.TopThree) != 3 {
		t.Errorf("TopThree length = %d, want 3", len(state.TopThree))
	}
	if len(state.Schedule) != 18 {
		t.Errorf("Schedule has %d keys, want 18", len(state.Schedule))
	}
	if sess.User() != nil {
		t.Error("User() returned a record before any sign-in")
	}
}

func TestAddTodoValidation(t *testing.T) {
	sess, _ := setupSession(t, nil, time.Minute)

	if _, err := sess.AddTodo("   "); err == nil {
		t.Error("AddTodo accepted blank text")
	}
	if got := len(sess.Snapshot().Todos); got != 0 {
		t.Errorf("blank AddTodo mutated state: %d todos", got)
	}

	todo, err := sess.AddTodo("  ship it  ")
	if err != nil {
		t.Fatalf("AddTodo failed: %v", err)
	}
	if todo.ID == "" {
		t.Error("AddTodo returned a todo without an id")
	}
	if todo.Text != "ship it" {
		t.Errorf("AddTodo text = %q, want trimmed", todo.Text)
	}
	if todo.Order != 0 {
		t.Errorf("first todo order = %d, want 0", todo.Order)
	}
}

func TestMutationsPersistAfterQuietWindow(t *testing.T) {
	sess, coord := setupSession(t, nil, 40*time.Millisecond)

	if _, err := sess.AddTodo("water the plants"); err != nil {
		t.Fatalf("AddTodo failed: %v", err)
	}
	sess.SetWater(3)
	sess.SetNotes("remember the balcony")

	time.Sleep(200 * time.Millisecond)

	state, err := coord.Load(context.Background(), testDate)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(state.Todos) != 1 || state.Todos[0].Text != "water the plants" {
		t.Errorf("persisted todos = %+v", state.Todos)
	}
	if state.Water != 3 {
		t.Errorf("persisted water = %d, want 3", state.Water)
	}
	if state.Notes != "remember the balcony" {
		t.Errorf("persisted notes = %q", state.Notes)
	}
}

func TestGoToFlushesPending(t *testing.T) {
	sess, coord := setupSession(t, nil, time.Minute)

	if _, err := sess.AddTodo("edit before navigating"); err != nil {
		t.Fatalf("AddTodo failed: %v", err)
	}

	const next = "2026-08-27"
	state, err := sess.GoTo(context.Background(), next)
	if err != nil {
		t.Fatalf("GoTo failed: %v", err)
	}
	if len(state.Todos) != 0 {
		t.Errorf("new date came up with %d todos", len(state.Todos))
	}
	if sess.Date() != next {
		t.Errorf("Date() = %q after GoTo, want %q", sess.Date(), next)
	}

	// The previous date's pending edit landed before the swap.
	prev, err := coord.Load(context.Background(), testDate)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(prev.Todos) != 1 {
		t.Errorf("previous date lost its pending edit: %+v", prev.Todos)
	}
}

func TestClearDayDiscardsPending(t *testing.T) {
	sess, coord := setupSession(t, nil, 40*time.Millisecond)

	if _, err := sess.AddTodo("about to vanish"); err != nil {
		t.Fatalf("AddTodo failed: %v", err)
	}

	state, result := sess.ClearDay(context.Background())
	if result.Status != sync.SaveOK {
		t.Errorf("ClearDay save status = %v", result.Status)
	}
	if len(state.Todos) != 0 {
		t.Errorf("ClearDay returned %d todos", len(state.Todos))
	}

	// Wait past the quiet window; the discarded edit must not come back.
	time.Sleep(200 * time.Millisecond)
	got, err := coord.Load(context.Background(), testDate)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(got.Todos) != 0 {
		t.Errorf("discarded edit resurfaced after clear: %+v", got.Todos)
	}
}

func TestMoveTodoByID(t *testing.T) {
	sess, _ := setupSession(t, nil, time.Minute)

	var ids []string
	for _, text := range []string{"first", "second", "third"} {
		todo, err := sess.AddTodo(text)
		if err != nil {
			t.Fatalf("AddTodo failed: %v", err)
		}
		ids = append(ids, todo.ID)
	}

	if err := sess.MoveTodo(ids[0], 2); err != nil {
		t.Fatalf("MoveTodo failed: %v", err)
	}

	state := sess.Snapshot()
	gotOrder := []string{state.Todos[0].Text, state.Todos[1].Text, state.Todos[2].Text}
	wantOrder := []string{"second", "third", "first"}
	for i := range wantOrder {
		if gotOrder[i] != wantOrder[i] {
			t.Errorf("position %d = %q, want %q", i, gotOrder[i], wantOrder[i])
		}
	}
	for i, todo := range state.Todos {
		if todo.Order != i {
			t.Errorf("todo %q order = %d, want %d", todo.Text, todo.Order, i)
		}
	}

	if err := sess.MoveTodo("missing", 0); err == nil {
		t.Error("MoveTodo accepted an unknown id")
	}
}

func TestHabitLifecycle(t *testing.T) {
	sess, _ := setupSession(t, nil, time.Minute)

	if _, err := sess.AddHabit(plan.Habit{Title: "  "}); err == nil {
		t.Error("AddHabit accepted a blank title")
	}

	habit, err := sess.AddHabit(plan.Habit{Title: "stretch", Days: []int{1, 3, 5}})
	if err != nil {
		t.Fatalf("AddHabit failed: %v", err)
	}
	if habit.ID == "" || habit.CreatedAt == "" {
		t.Errorf("AddHabit returned incomplete habit: %+v", habit)
	}

	if err := sess.SetHabitStatus(habit.ID, testDate, plan.StatusCompleted); err != nil {
		t.Fatalf("SetHabitStatus failed: %v", err)
	}
	state := sess.Snapshot()
	if got := state.Habits[0].StatusOn(testDate); got != plan.StatusCompleted {
		t.Errorf("status = %q, want completed", got)
	}

	if err := sess.SetHabitStatus("missing", testDate, plan.StatusSkipped); err == nil {
		t.Error("SetHabitStatus accepted an unknown habit id")
	}

	if err := sess.DeleteHabit(habit.ID); err != nil {
		t.Fatalf("DeleteHabit failed: %v", err)
	}
	if got := len(sess.Snapshot().Habits); got != 0 {
		t.Errorf("habit count after delete = %d", got)
	}
}

func TestSetWaterClamps(t *testing.T) {
	sess, _ := setupSession(t, nil, time.Minute)

	if got := sess.SetWater(99); got != plan.WaterMax {
		t.Errorf("SetWater(99) = %d, want %d", got, plan.WaterMax)
	}
	if got := sess.AddWater(-99); got != 0 {
		t.Errorf("AddWater(-99) = %d, want 0", got)
	}
}

func TestSignInLocalOnly(t *testing.T) {
	sess, coord := setupSession(t, nil, time.Minute)

	result, err := sess.SignIn(context.Background(), &plan.UserInfo{
		Email:       "t@example.com",
		DisplayName: "Taylor",
		UID:         "u42",
		Provider:    "google.com",
	}, nil)
	if err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	if result != nil {
		t.Errorf("local sign-in returned a bulk result: %+v", result)
	}

	user := sess.User()
	if user == nil {
		t.Fatal("User() is nil after sign-in")
	}
	if user.LastLoginAt == "" || user.CreatedAt == "" {
		t.Errorf("sign-in did not stamp timestamps: %+v", user)
	}

	stored, err := coord.LoadUser(context.Background())
	if err != nil {
		t.Fatalf("LoadUser failed: %v", err)
	}
	if stored.UID != "u42" {
		t.Errorf("stored UID = %q", stored.UID)
	}
}

func TestSignInValidation(t *testing.T) {
	sess, _ := setupSession(t, nil, time.Minute)

	if _, err := sess.SignIn(context.Background(), nil, nil); err == nil {
		t.Error("SignIn accepted a nil user")
	}
	if _, err := sess.SignIn(context.Background(), &plan.UserInfo{Email: "x@y.z"}, nil); err == nil {
		t.Error("SignIn accepted a record without a UID")
	}
}

func TestSignInPushesCache(t *testing.T) {
	rs := newFakeRemote()
	sess, coord := setupSession(t, rs, time.Minute)

	if _, err := sess.AddTodo("offline work"); err != nil {
		t.Fatalf("AddTodo failed: %v", err)
	}

	result, err := sess.SignIn(context.Background(), &plan.UserInfo{
		UID:      "u42",
		Email:    "t@example.com",
		Provider: "google.com",
	}, &remote.Session{ProjectID: "daily-planner", Token: "tok"})
	if err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	if result == nil || result.Pushed != 2 {
		t.Fatalf("bulk result = %+v, want 2 pushed entries", result)
	}

	if !rs.has("projects/daily-planner/users/u42/planner/" + testDate) {
		t.Error("plan entry missing from remote after sign-in push")
	}
	if !rs.has("projects/daily-planner/users/u42/userInfo/profile") {
		t.Error("user record missing from remote after sign-in push")
	}

	if coord.Session() == nil {
		t.Error("remote session not activated")
	}

	sess.SignOut()
	if coord.Session() != nil {
		t.Error("remote session still active after sign-out")
	}
	if sess.User() != nil {
		t.Error("User() still set after sign-out")
	}
}
