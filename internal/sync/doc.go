// Package sync provides the local-first persistence core of the planner.
//
// Overview
//
// The coordinator owns the policy that makes the planner local-first:
// the on-device cache is always written synchronously and treated as
// authoritative, while the remote document store is a best-effort
// mirror that may be absent, slow, or broken without ever affecting
// the user's data.
//
// Architecture
//
//	UI mutation
//	     ↓
//	Writer (trailing-edge debounce, one quiet window per burst)
//	     ↓
//	Coordinator.Save
//	     ├── local cache   (synchronous, authoritative)
//	     └── remote mirror (best effort, tagged with sync metadata)
//
//	Coordinator.Load
//	     ├── remote mirror (first, when a session is active)
//	     └── local cache   (fallback, then empty template)
//
// Usage
//
// Basic usage:
//
//	cache, err := store.Open("~/.dayplan/cache.db")
//	if err != nil {
//	    return err
//	}
//	defer cache.Close()
//
//	coord := sync.New(cache, remote.NewClient(baseURL, token), nil)
//	coord.SetSession(&remote.Session{UserID: "u42", ProjectID: "daily-planner"})
//
//	state, err := coord.Load(ctx, "2026-08-26")
//	if err != nil {
//	    return err
//	}
//	state.AddTodo("water the plants")
//	result := coord.Save(ctx, "2026-08-26", state)
//	if result.Status != sync.SaveOK {
//	    log.Printf("saved locally only: %v", result.Err)
//	}
//
// Debounced writes:
//
//	writer := sync.NewWriter(coord, sync.DefaultWriterConfig())
//	defer writer.Close()
//
//	writer.Schedule("2026-08-26", state) // coalesced per quiet window
//	writer.Flush()                       // force pending writes to land
package sync
