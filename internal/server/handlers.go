package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Timolansberry/Daily-Planner/internal/dates"
	"github.com/Timolansberry/Daily-Planner/internal/plan"
	"github.com/Timolansberry/Daily-Planner/internal/remote"
	"github.com/Timolansberry/Daily-Planner/internal/store"
)

// handleHealth reports liveness, the active date, and client count.
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"date":    s.sess.Date(),
		"clients": s.hub.ClientCount(),
	})
}

// dateParam validates the :date path segment.
func (s *Server) dateParam(c *gin.Context) (string, bool) {
	date := c.Param("date")
	if !dates.Valid(date) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return "", false
	}
	return date, true
}

// ensureDate navigates the session to date when it is not already
// active. Navigation flushes the previous date's pending edits first.
func (s *Server) ensureDate(c *gin.Context, date string) bool {
	if s.sess.Date() == date {
		return true
	}
	if _, err := s.sess.GoTo(c.Request.Context(), date); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return false
	}
	return true
}

// handleGetPlan returns the plan for a date. The active date comes from
// the live session; any other date is read without navigating.
func (s *Server) handleGetPlan(c *gin.Context) {
	date, ok := s.dateParam(c)
	if !ok {
		return
	}

	if date == s.sess.Date() {
		c.JSON(http.StatusOK, s.sess.Snapshot())
		return
	}

	state, err := s.coord.Load(c.Request.Context(), date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, state)
}

// handlePutPlan replaces the whole plan for a date. The body passes
// through normalization, so partial or legacy documents are tolerated.
func (s *Server) handlePutPlan(c *gin.Context) {
	date, ok := s.dateParam(c)
	if !ok {
		return
	}

	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read body"})
		return
	}

	state, err := plan.Normalize(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Land any debounced edit first so this write is the newest.
	s.sess.Flush()
	result := s.coord.Save(c.Request.Context(), date, state)

	// The session keeps serving the replaced content otherwise.
	if date == s.sess.Date() {
		if _, err := s.sess.GoTo(c.Request.Context(), date); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}

	s.events.OnPlanSaved(date, result)
	c.JSON(http.StatusOK, gin.H{
		"synced": result.Synced,
		"status": result.Status.String(),
	})
}

// handleClearDay resets a date to the empty template.
func (s *Server) handleClearDay(c *gin.Context) {
	date, ok := s.dateParam(c)
	if !ok {
		return
	}
	if !s.ensureDate(c, date) {
		return
	}

	state, result := s.sess.ClearDay(c.Request.Context())
	s.events.OnDayCleared(date)

	c.JSON(http.StatusOK, gin.H{
		"plan":   state,
		"synced": result.Synced,
		"status": result.Status.String(),
	})
}

// handleAddTodo appends a todo to the list.
func (s *Server) handleAddTodo(c *gin.Context) {
	date, ok := s.dateParam(c)
	if !ok {
		return
	}

	var body struct {
		Text string `json:"text"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if !s.ensureDate(c, date) {
		return
	}

	todo, err := s.sess.AddTodo(body.Text)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, todo)
}

// handlePatchTodo edits a todo's text, done flag, or both. Omitted
// fields keep their value.
func (s *Server) handlePatchTodo(c *gin.Context) {
	date, ok := s.dateParam(c)
	if !ok {
		return
	}

	var body struct {
		Text *string `json:"text"`
		Done *bool   `json:"done"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if !s.ensureDate(c, date) {
		return
	}

	id := c.Param("id")
	if body.Text != nil {
		if err := s.sess.EditTodo(id, *body.Text); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
	}
	if body.Done != nil {
		done, found := s.todoDone(id)
		if !found {
			c.JSON(http.StatusNotFound, gin.H{"error": "no todo with id " + id})
			return
		}
		if done != *body.Done {
			if err := s.sess.ToggleTodo(id); err != nil {
				c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// todoDone looks up a todo's done flag in the live state.
func (s *Server) todoDone(id string) (bool, bool) {
	state := s.sess.Snapshot()
	if state == nil {
		return false, false
	}
	for _, t := range state.Todos {
		if t.ID == id {
			return t.Done, true
		}
	}
	return false, false
}

// handleDeleteTodo removes a todo.
func (s *Server) handleDeleteTodo(c *gin.Context) {
	date, ok := s.dateParam(c)
	if !ok {
		return
	}
	if !s.ensureDate(c, date) {
		return
	}

	if err := s.sess.DeleteTodo(c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// handleMoveTodo reorders a todo to a target position.
func (s *Server) handleMoveTodo(c *gin.Context) {
	date, ok := s.dateParam(c)
	if !ok {
		return
	}

	var body struct {
		To int `json:"to"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if !s.ensureDate(c, date) {
		return
	}

	if err := s.sess.MoveTodo(c.Param("id"), body.To); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// handleSetWater sets the water tracker. Out-of-range counts clamp.
func (s *Server) handleSetWater(c *gin.Context) {
	date, ok := s.dateParam(c)
	if !ok {
		return
	}

	var body struct {
		Count int `json:"count"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if !s.ensureDate(c, date) {
		return
	}

	c.JSON(http.StatusOK, gin.H{"water": s.sess.SetWater(body.Count)})
}

// handleAddHabit adds a habit to the day's list.
func (s *Server) handleAddHabit(c *gin.Context) {
	date, ok := s.dateParam(c)
	if !ok {
		return
	}

	var habit plan.Habit
	if err := c.ShouldBindJSON(&habit); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if !s.ensureDate(c, date) {
		return
	}

	added, err := s.sess.AddHabit(habit)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, added)
}

// handleDeleteHabit removes a habit.
func (s *Server) handleDeleteHabit(c *gin.Context) {
	date, ok := s.dateParam(c)
	if !ok {
		return
	}
	if !s.ensureDate(c, date) {
		return
	}

	if err := s.sess.DeleteHabit(c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// handleHabitStatus marks a habit completed, not done, or skipped for a
// date. An empty status clears the mark. The body's date defaults to
// the path date, so a habit can be marked for a day other than the one
// being viewed.
func (s *Server) handleHabitStatus(c *gin.Context) {
	date, ok := s.dateParam(c)
	if !ok {
		return
	}

	var body struct {
		Date   string `json:"date"`
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if body.Date == "" {
		body.Date = date
	}
	if !dates.Valid(body.Date) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}
	status := plan.Status(body.Status)
	if status != plan.StatusUnmarked && !status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be completed, not_done, skipped, or empty"})
		return
	}

	if !s.ensureDate(c, date) {
		return
	}

	if err := s.sess.SetHabitStatus(c.Param("id"), body.Date, status); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// handleGetUser returns the stored user record.
func (s *Server) handleGetUser(c *gin.Context) {
	if user := s.sess.User(); user != nil {
		c.JSON(http.StatusOK, user)
		return
	}

	user, err := s.coord.LoadUser(c.Request.Context())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no user record"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, user)
}

// handlePutUser signs the user in. With a remote session template
// configured this establishes the remote path and pushes the cache;
// without one the record is stored locally.
func (s *Server) handlePutUser(c *gin.Context) {
	var user plan.UserInfo
	if err := c.ShouldBindJSON(&user); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	var rs *remote.Session
	if s.config.Remote != nil {
		cp := *s.config.Remote
		rs = &cp
	}

	result, err := s.sess.SignIn(c.Request.Context(), &user, rs)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp := gin.H{"user": s.sess.User()}
	if result != nil {
		s.events.OnSyncComplete(result)
		resp["sync"] = result
	}
	c.JSON(http.StatusOK, resp)
}

// handleBulkSync pushes every cached entry to the remote store.
func (s *Server) handleBulkSync(c *gin.Context) {
	s.sess.Flush()

	result, err := s.coord.BulkSync(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	s.events.OnSyncComplete(result)
	c.JSON(http.StatusOK, result)
}
