package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"campus-flow/internal/models"
	"campus-flow/internal/repositories"
	"campus-flow/internal/telemetry"
)

// EventHandler manages the event catalogue endpoints.
type EventHandler struct {
	events        repositories.EventRepository
	registrations repositories.RegistrationRepository
	audit         *telemetry.AuditEmitter
}

// NewEventHandler constructs an EventHandler.
func NewEventHandler(events repositories.EventRepository, registrations repositories.RegistrationRepository, audit *telemetry.AuditEmitter) *EventHandler {
	return &EventHandler{events: events, registrations: registrations, audit: audit}
}

// ListEvents returns the published catalogue, optionally filtered by
// category and date.
func (h *EventHandler) ListEvents(c *gin.Context) {
	var filter repositories.EventFilter

	if category := c.Query("category"); category != "" {
		if !models.ValidCategory(category) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category"})
			return
		}
		filter.Category = category
	}
	if date := c.Query("date"); date != "" {
		parsed, err := time.Parse("2006-01-02", date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, expected YYYY-MM-DD"})
			return
		}
		filter.Date = &parsed
	}

	events, err := h.events.ListPublishedEvents(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load events"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"events": events})
}

// MyEvents returns events owned by the authenticated organizer.
func (h *EventHandler) MyEvents(c *gin.Context) {
	userID := c.GetInt("userID")

	events, err := h.events.ListEventsByOrganizer(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load events"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"events": events})
}

// GetEvent returns a single event with organizer info.
func (h *EventHandler) GetEvent(c *gin.Context) {
	eventID, ok := eventIDParam(c)
	if !ok {
		return
	}

	event, err := h.events.GetEventSummary(c.Request.Context(), eventID)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load event"})
		return
	}

	c.JSON(http.StatusOK, event)
}

// CreateEvent creates a draft event owned by the caller.
func (h *EventHandler) CreateEvent(c *gin.Context) {
	userID := c.GetInt("userID")

	var req struct {
		Title       string    `json:"title" binding:"required"`
		Description string    `json:"description"`
		DateTime    time.Time `json:"date_time" binding:"required"`
		Venue       string    `json:"venue" binding:"required"`
		Category    string    `json:"category" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !models.ValidCategory(req.Category) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category"})
		return
	}

	event, err := h.events.CreateEvent(c.Request.Context(), models.Event{
		Title:       req.Title,
		Description: req.Description,
		DateTime:    req.DateTime,
		Venue:       req.Venue,
		Category:    req.Category,
		Status:      models.StatusDraft,
		OrganizerID: userID,
	})
	if err != nil {
		h.emitAudit(c, "ERROR", "internal error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create event"})
		return
	}

	h.emitAudit(c, "INFO", "Event created")
	c.JSON(http.StatusCreated, event)
}

// UpdateStatus moves an event along the draft, published, closed lifecycle.
func (h *EventHandler) UpdateStatus(c *gin.Context) {
	eventID, ok := eventIDParam(c)
	if !ok {
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	event, err := h.events.GetEvent(c.Request.Context(), eventID)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load event"})
		return
	}

	userID := c.GetInt("userID")
	if event.OrganizerID != userID && c.GetString("userRole") != models.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the organizer can change event status"})
		return
	}

	if !validTransition(event.Status, req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status transition"})
		return
	}

	updated, err := h.events.UpdateEventStatus(c.Request.Context(), eventID, req.Status)
	if err != nil {
		h.emitAudit(c, "ERROR", "internal error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update event"})
		return
	}

	h.emitAudit(c, "INFO", "Event status updated")
	c.JSON(http.StatusOK, updated)
}

// ListParticipants returns the registration roster for an event the caller
// organizes. Admins may inspect any event.
func (h *EventHandler) ListParticipants(c *gin.Context) {
	eventID, ok := eventIDParam(c)
	if !ok {
		return
	}

	event, err := h.events.GetEvent(c.Request.Context(), eventID)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load event"})
		return
	}

	if event.OrganizerID != c.GetInt("userID") && c.GetString("userRole") != models.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the organizer can list participants"})
		return
	}

	participants, err := h.registrations.ListParticipants(c.Request.Context(), eventID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load participants"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"participants": participants})
}

// validTransition encodes the one-way event lifecycle.
func validTransition(from, to string) bool {
	switch from {
	case models.StatusDraft:
		return to == models.StatusPublished
	case models.StatusPublished:
		return to == models.StatusClosed
	default:
		return false
	}
}

func (h *EventHandler) emitAudit(c *gin.Context, level, text string) {
	if h.audit == nil {
		return
	}
	h.audit.Emit(c.Request.Context(), level, text, requestIDFromContext(c), userIDFromContext(c))
}
