package server

import (
	"encoding/json"
	"log"
	"time"

	"github.com/Timolansberry/Daily-Planner/internal/plan"
	"github.com/Timolansberry/Daily-Planner/internal/session"
	"github.com/Timolansberry/Daily-Planner/internal/sync"
)

// Events bridges session save events into hub broadcasts.
type Events struct {
	hub    *Hub
	sess   *session.Session
	logger *log.Logger
}

// NewEvents creates the event bridge for a session.
func NewEvents(hub *Hub, sess *session.Session, logger *log.Logger) *Events {
	if logger == nil {
		logger = log.Default()
	}

	return &Events{
		hub:    hub,
		sess:   sess,
		logger: logger,
	}
}

// OnPlanSaved announces a persisted save. Safe to call from the
// session's save callback: the update is built from the arguments and
// the stats refresh runs on its own goroutine.
func (e *Events) OnPlanSaved(date string, result sync.Result) {
	e.send(MessageTypePlanUpdate, PlanUpdateData{
		Date:   date,
		Page:   string(plan.PagePlanner),
		Synced: result.Synced,
		Status: result.Status.String(),
	})

	go e.BroadcastStats()
}

// OnDayCleared announces a day reset.
func (e *Events) OnDayCleared(date string) {
	e.send(MessageTypeDayCleared, DayClearedData{Date: date})
	go e.BroadcastStats()
}

// OnSyncComplete announces a finished bulk push.
func (e *Events) OnSyncComplete(result *sync.BulkResult) {
	if result == nil {
		return
	}

	e.send(MessageTypeSyncComplete, SyncCompleteData{
		Pushed:   result.Pushed,
		Failed:   result.Failed,
		Duration: result.Duration,
	})
}

// BroadcastStats sends current counts for the active day.
func (e *Events) BroadcastStats() {
	msg, ok := e.statsMessage()
	if !ok {
		return
	}
	e.hub.Broadcast(msg)
}

// statsMessage builds a stats message from the session's live state.
// Doubles as the hub's welcome message so new clients start with
// today's counts.
func (e *Events) statsMessage() (Message, bool) {
	state := e.sess.Snapshot()
	if state == nil {
		return Message{}, false
	}

	return buildMessage(MessageTypeStats, statsFrom(e.sess.Date(), state))
}

// send marshals data and queues it on the hub.
func (e *Events) send(msgType MessageType, data any) {
	msg, ok := buildMessage(msgType, data)
	if !ok {
		e.logger.Printf("Failed to marshal %s event", msgType)
		return
	}
	e.hub.Broadcast(msg)
}

func buildMessage(msgType MessageType, data any) (Message, bool) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Message{}, false
	}

	return Message{
		Type:      msgType,
		Timestamp: time.Now(),
		Data:      raw,
	}, true
}

// statsFrom computes day counts from a plan snapshot.
func statsFrom(date string, state *plan.State) StatsData {
	stats := StatsData{
		Date:        date,
		TodosTotal:  len(state.Todos),
		HabitsTotal: len(state.Habits),
		Water:       state.Water,
	}

	for _, t := range state.Todos {
		if t.Done {
			stats.TodosDone++
		}
	}

	for _, slot := range state.TopThree {
		if slot.Done {
			stats.TopThreeDone++
		}
	}

	for _, h := range state.Habits {
		if h.StatusOn(date) == plan.StatusCompleted {
			stats.HabitsCompleted++
		}
	}

	return stats
}
