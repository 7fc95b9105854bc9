package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	gosync "sync"
	"time"

	"github.com/coder/websocket"
)

// MessageType defines the type of event hub message
type MessageType string

const (
	// MessageTypePlanUpdate indicates a plan was persisted
	MessageTypePlanUpdate MessageType = "plan_update"

	// MessageTypeDayCleared indicates a day was reset to the template
	MessageTypeDayCleared MessageType = "day_cleared"

	// MessageTypeSyncComplete indicates a bulk push finished
	MessageTypeSyncComplete MessageType = "sync_complete"

	// MessageTypeStats indicates updated counts for the active day
	MessageTypeStats MessageType = "stats"
)

// Message represents an event hub broadcast message
type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// PlanUpdateData describes a persisted save
type PlanUpdateData struct {
	Date   string `json:"date"`
	Page   string `json:"page"`
	Synced bool   `json:"synced"`
	Status string `json:"status"`
}

// DayClearedData describes a day reset
type DayClearedData struct {
	Date string `json:"date"`
}

// SyncCompleteData describes a finished bulk push
type SyncCompleteData struct {
	Pushed   int           `json:"pushed"`
	Failed   int           `json:"failed"`
	Duration time.Duration `json:"duration"`
}

// StatsData holds counts for the active day
type StatsData struct {
	Date            string `json:"date"`
	TodosTotal      int    `json:"todos_total"`
	TodosDone       int    `json:"todos_done"`
	TopThreeDone    int    `json:"top_three_done"`
	HabitsTotal     int    `json:"habits_total"`
	HabitsCompleted int    `json:"habits_completed"`
	Water           int    `json:"water"`
}

// Hub manages WebSocket connections and broadcasts planner events.
type Hub struct {
	clients   map[*websocket.Conn]bool
	clientsMu gosync.RWMutex

	broadcast chan Message

	// welcome, when set, produces the first message sent to a newly
	// connected client.
	welcome func() (Message, bool)

	ctx    context.Context
	cancel context.CancelFunc
	wg     gosync.WaitGroup

	logger *log.Logger
}

// NewHub creates an event hub. Use Start before accepting connections.
func NewHub(logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Hub{
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan Message, 100),
		ctx:       ctx,
		cancel:    cancel,
		logger:    logger,
	}
}

// Start begins the broadcast loop.
func (h *Hub) Start() {
	h.wg.Add(1)
	go h.broadcastLoop()
}

// Stop disconnects all clients and stops the broadcast loop.
func (h *Hub) Stop() {
	h.cancel()

	h.clientsMu.Lock()
	for conn := range h.clients {
		_ = conn.Close(websocket.StatusGoingAway, "Server shutting down")
		delete(h.clients, conn)
	}
	h.clientsMu.Unlock()

	h.wg.Wait()
}

// Broadcast sends a message to all connected clients. Never blocks; a
// full queue drops the message with a warning.
func (h *Hub) Broadcast(msg Message) {
	select {
	case h.broadcast <- msg:
	case <-h.ctx.Done():
		return
	default:
		h.logger.Println("WARNING: broadcast channel full, dropping message")
	}
}

// ClientCount returns the current number of connected clients.
func (h *Hub) ClientCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}

// broadcastLoop fans queued messages out to every client.
func (h *Hub) broadcastLoop() {
	defer h.wg.Done()

	for {
		select {
		case <-h.ctx.Done():
			return

		case msg := <-h.broadcast:
			if msg.Timestamp.IsZero() {
				msg.Timestamp = time.Now()
			}

			data, err := json.Marshal(msg)
			if err != nil {
				h.logger.Printf("Failed to marshal message: %v", err)
				continue
			}

			h.clientsMu.RLock()
			clients := make([]*websocket.Conn, 0, len(h.clients))
			for conn := range h.clients {
				clients = append(clients, conn)
			}
			h.clientsMu.RUnlock()

			// Write outside the read lock so a slow client cannot
			// stall registration.
			for _, conn := range clients {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				err := conn.Write(ctx, websocket.MessageText, data)
				cancel()

				if err != nil {
					h.logger.Printf("Failed to send to client: %v", err)
					h.removeClient(conn)
				}
			}
		}
	}
}

// HandleWS upgrades an HTTP connection and registers the client.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		h.logger.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	h.clientsMu.Lock()
	h.clients[conn] = true
	clientCount := len(h.clients)
	h.clientsMu.Unlock()

	h.logger.Printf("Client connected (total: %d)", clientCount)

	if h.welcome != nil {
		if msg, ok := h.welcome(); ok {
			if msg.Timestamp.IsZero() {
				msg.Timestamp = time.Now()
			}
			if data, err := json.Marshal(msg); err == nil {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				_ = conn.Write(ctx, websocket.MessageText, data)
				cancel()
			}
		}
	}

	go h.readLoop(conn)
}

// readLoop drains client frames so pings are answered and disconnects
// are noticed.
func (h *Hub) readLoop(conn *websocket.Conn) {
	defer h.removeClient(conn)

	for {
		_, _, err := conn.Read(h.ctx)
		if err != nil {
			return
		}
	}
}

// removeClient safely removes a client connection.
func (h *Hub) removeClient(conn *websocket.Conn) {
	h.clientsMu.Lock()
	if _, exists := h.clients[conn]; exists {
		delete(h.clients, conn)
		clientCount := len(h.clients)
		h.clientsMu.Unlock()

		_ = conn.Close(websocket.StatusNormalClosure, "")
		h.logger.Printf("Client disconnected (total: %d)", clientCount)
	} else {
		h.clientsMu.Unlock()
	}
}
