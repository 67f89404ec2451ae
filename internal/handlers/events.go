package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/universe-app/universe/internal/services"
	"github.com/universe-app/universe/pkg/response"
)

// EventHandler exposes campus events. Writes sit behind the admin middleware.
type EventHandler struct {
	events *services.EventService
}

// NewEventHandler constructs an event handler.
func NewEventHandler(events *services.EventService) *EventHandler {
	return &EventHandler{events: events}
}

// List returns events ordered by start time.
// GET /api/events
func (h *EventHandler) List(c *gin.Context) {
	events, err := h.events.List(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, events)
}

// Get returns a single event.
// GET /api/events/:id
func (h *EventHandler) Get(c *gin.Context) {
	event, err := h.events.Get(requestContext(c), strings.TrimSpace(c.Param("id")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, event)
}

type eventRequest struct {
	Title       string    `json:"title" validate:"required,max=200"`
	Description string    `json:"description" validate:"omitempty,max=5000"`
	Location    string    `json:"location" validate:"omitempty,max=200"`
	StartTime   time.Time `json:"start_time" validate:"required"`
	EndTime     time.Time `json:"end_time" validate:"required"`
}

// Create adds an event.
// POST /api/admin/events
func (h *EventHandler) Create(c *gin.Context) {
	var req eventRequest
	if !bindAndValidate(c, &req) {
		return
	}

	event, err := h.events.Create(requestContext(c), services.EventInput{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, event)
}

// Update replaces an event's fields.
// PUT /api/admin/events/:id
func (h *EventHandler) Update(c *gin.Context) {
	var req eventRequest
	if !bindAndValidate(c, &req) {
		return
	}

	event, err := h.events.Update(requestContext(c), strings.TrimSpace(c.Param("id")), services.EventInput{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, event)
}

// Delete removes an event.
// DELETE /api/admin/events/:id
func (h *EventHandler) Delete(c *gin.Context) {
	if err := h.events.Delete(requestContext(c), strings.TrimSpace(c.Param("id"))); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
