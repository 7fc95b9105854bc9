// Package server exposes the planner over HTTP.
//
// The server is a thin shell around a session: REST routes under /api
// mutate the active day through the session so every edit rides the
// same debounced local-first persistence as any other input, and a
// WebSocket hub at /ws pushes save results, day counts, and sync
// outcomes to connected clients.
package server

import (
	"context"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	gosync "sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Timolansberry/Daily-Planner/internal/remote"
	"github.com/Timolansberry/Daily-Planner/internal/session"
	"github.com/Timolansberry/Daily-Planner/internal/sync"
)

// Config holds configuration for the HTTP server.
type Config struct {
	// Addr is the listen address. ":0" picks a free port.
	Addr string

	// Remote, when set, is the session template used for sign-in over
	// the API. Nil keeps the server local-only.
	Remote *remote.Session

	// AccessLog receives one line per request. Nil means os.Stderr.
	AccessLog io.Writer

	// Logger for server events. Nil means a default stderr logger.
	Logger *log.Logger
}

// DefaultConfig returns the default server configuration.
func DefaultConfig() *Config {
	return &Config{
		Addr: ":8787",
	}
}

// Server serves the planner API and the event WebSocket.
type Server struct {
	sess   *session.Session
	coord  sync.Coordinator
	hub    *Hub
	events *Events
	config *Config
	logger *log.Logger

	router   *gin.Engine
	httpSrv  *http.Server
	listener net.Listener
	wg       gosync.WaitGroup
}

// New creates a server on top of a started session. The session's save
// callback is wired to the event hub, so debounced saves reach
// WebSocket clients without further setup.
func New(sess *session.Session, coord sync.Coordinator, config *Config) (*Server, error) {
	if sess == nil {
		return nil, fmt.Errorf("session cannot be nil")
	}
	if coord == nil {
		return nil, fmt.Errorf("coordinator cannot be nil")
	}
	if config == nil {
		config = DefaultConfig()
	}
	if config.Addr == "" {
		config.Addr = ":8787"
	}
	logger := config.Logger
	if logger == nil {
		logger = log.New(os.Stderr, "[server] ", log.LstdFlags)
	}
	accessLog := config.AccessLog
	if accessLog == nil {
		accessLog = os.Stderr
	}

	hub := NewHub(logger)
	events := NewEvents(hub, sess, logger)
	hub.welcome = events.statsMessage
	sess.SetOnSave(events.OnPlanSaved)

	// Quiet gin's debug output unless a mode was chosen already.
	if gin.Mode() == gin.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.LoggerWithWriter(accessLog), gin.Recovery())

	s := &Server{
		sess:   sess,
		coord:  coord,
		hub:    hub,
		events: events,
		config: config,
		logger: logger,
		router: router,
	}
	s.registerRoutes()

	return s, nil
}

func (s *Server) registerRoutes() {
	s.router.GET("/health", s.handleHealth)
	s.router.GET("/ws", gin.WrapF(s.hub.HandleWS))

	api := s.router.Group("/api")
	{
		api.GET("/plans/:date", s.handleGetPlan)
		api.PUT("/plans/:date", s.handlePutPlan)
		api.POST("/plans/:date/clear", s.handleClearDay)

		api.POST("/plans/:date/todos", s.handleAddTodo)
		api.PATCH("/plans/:date/todos/:id", s.handlePatchTodo)
		api.DELETE("/plans/:date/todos/:id", s.handleDeleteTodo)
		api.POST("/plans/:date/todos/:id/move", s.handleMoveTodo)

		api.PUT("/plans/:date/water", s.handleSetWater)

		api.POST("/plans/:date/habits", s.handleAddHabit)
		api.DELETE("/plans/:date/habits/:id", s.handleDeleteHabit)
		api.PUT("/plans/:date/habits/:id/status", s.handleHabitStatus)

		api.GET("/user", s.handleGetUser)
		api.PUT("/user", s.handlePutUser)

		api.POST("/sync", s.handleBulkSync)
	}
}

// Start binds the listen address and begins serving. Returns once the
// listener is bound; the serve loop runs in the background.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Addr, err)
	}
	s.listener = listener

	s.hub.Start()

	s.httpSrv = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.logger.Printf("HTTP server error: %v", err)
		}
	}()

	s.logger.Printf("Listening on http://%s", listener.Addr())
	return nil
}

// Stop disconnects WebSocket clients and shuts the HTTP server down.
func (s *Server) Stop() error {
	s.hub.Stop()

	if s.httpSrv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpSrv.Shutdown(ctx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
	}

	s.wg.Wait()
	return nil
}

// Addr returns the bound listen address, useful with ":0".
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.config.Addr
	}
	return s.listener.Addr().String()
}

// Events returns the event bridge, for callers that perform saves
// outside the session and want them announced.
func (s *Server) Events() *Events {
	return s.events
}
