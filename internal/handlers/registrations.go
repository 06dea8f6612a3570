package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"campus-flow/internal/models"
	"campus-flow/internal/repositories"
	"campus-flow/internal/telemetry"
)

// RegistrationHandler manages event registrations.
type RegistrationHandler struct {
	events        repositories.EventRepository
	registrations repositories.RegistrationRepository
	audit         *telemetry.AuditEmitter
}

// NewRegistrationHandler constructs a RegistrationHandler.
func NewRegistrationHandler(events repositories.EventRepository, registrations repositories.RegistrationRepository, audit *telemetry.AuditEmitter) *RegistrationHandler {
	return &RegistrationHandler{events: events, registrations: registrations, audit: audit}
}

// Register signs the authenticated student up for a published event.
func (h *RegistrationHandler) Register(c *gin.Context) {
	var req struct {
		EventID int `json:"event_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	eventID := req.EventID

	event, err := h.events.GetEvent(c.Request.Context(), eventID)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load event"})
		return
	}
	if event.Status != models.StatusPublished {
		c.JSON(http.StatusBadRequest, gin.H{"error": "event is not open for registration"})
		return
	}

	userID := c.GetInt("userID")
	reg, err := h.registrations.CreateRegistration(c.Request.Context(), userID, eventID)
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateRegistration) {
			c.JSON(http.StatusConflict, gin.H{"error": "already registered"})
			return
		}
		h.emitAudit(c, "ERROR", "internal error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not register"})
		return
	}

	h.emitAudit(c, "INFO", "Registered for event")
	c.JSON(http.StatusCreated, reg)
}

// MyRegistrations lists the caller's registrations.
func (h *RegistrationHandler) MyRegistrations(c *gin.Context) {
	userID := c.GetInt("userID")

	regs, err := h.registrations.ListRegistrationsForUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load registrations"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"registrations": regs})
}

// Cancel removes the caller's registration for an event.
func (h *RegistrationHandler) Cancel(c *gin.Context) {
	eventID, ok := eventIDParam(c)
	if !ok {
		return
	}

	userID := c.GetInt("userID")
	if err := h.registrations.DeleteRegistration(c.Request.Context(), userID, eventID); err != nil {
		if errors.Is(err, repositories.ErrRegistrationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "registration not found"})
			return
		}
		h.emitAudit(c, "ERROR", "internal error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not cancel registration"})
		return
	}

	h.emitAudit(c, "INFO", "Registration cancelled")
	c.Status(http.StatusNoContent)
}

func (h *RegistrationHandler) emitAudit(c *gin.Context, level, text string) {
	if h.audit == nil {
		return
	}
	h.audit.Emit(c.Request.Context(), level, text, requestIDFromContext(c), userIDFromContext(c))
}
