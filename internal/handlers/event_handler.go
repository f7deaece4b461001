package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/internal/middleware"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/internal/models"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/internal/services"
)

type EventHandler struct {
	service services.CatalogServiceInterface
}

func NewEventHandler(service services.CatalogServiceInterface) *EventHandler {
	return &EventHandler{service: service}
}

// ListUpcoming returns published events that have not started yet
func (h *EventHandler) ListUpcoming(c *gin.Context) {
	events, err := h.service.GetUpcomingEvents(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "events": events})
}

// ListMine returns the caller's own events
func (h *EventHandler) ListMine(c *gin.Context) {
	caller, err := middleware.GetCaller(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Unauthorized: Invalid token", err)
		return
	}

	events, err := h.service.ListCreatorEvents(c.Request.Context(), caller)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "events": events})
}

// Create creates a new unpublished event owned by the caller
func (h *EventHandler) Create(c *gin.Context) {
	caller, err := middleware.GetCaller(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Unauthorized: Invalid token", err)
		return
	}

	var req models.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, "Invalid request body", err)
		return
	}

	event, err := h.service.CreateEvent(c.Request.Context(), caller, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "event": event})
}

// Publish flips an event's published flag
func (h *EventHandler) Publish(c *gin.Context) {
	caller, err := middleware.GetCaller(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Unauthorized: Invalid token", err)
		return
	}

	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid event ID", err)
		return
	}

	var req struct {
		Published bool `json:"published"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, "Invalid request body", err)
		return
	}

	if err := h.service.PublishEvent(c.Request.Context(), caller, eventID, req.Published); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
