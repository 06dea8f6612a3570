package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"campus-flow/internal/access"
	"campus-flow/internal/chat"
	"campus-flow/internal/models"
	"campus-flow/internal/observability"
	"campus-flow/internal/repositories"
	"campus-flow/internal/telemetry"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 100
)

// ChatHandler serves the REST facet of event chat rooms: room listings,
// message history, access flags, participants and moderation.
type ChatHandler struct {
	events        repositories.EventRepository
	registrations repositories.RegistrationRepository
	messages      repositories.MessageRepository
	moderator     *chat.Moderator
	audit         *telemetry.AuditEmitter
}

// NewChatHandler constructs a ChatHandler.
func NewChatHandler(events repositories.EventRepository, registrations repositories.RegistrationRepository, messages repositories.MessageRepository, moderator *chat.Moderator, audit *telemetry.AuditEmitter) *ChatHandler {
	return &ChatHandler{
		events:        events,
		registrations: registrations,
		messages:      messages,
		moderator:     moderator,
		audit:         audit,
	}
}

// MyRooms lists the chat rooms visible to the caller. Admins see every
// published room, organizers their own events, students the published
// events they are registered for and not banned from.
func (h *ChatHandler) MyRooms(c *gin.Context) {
	userID := c.GetInt("userID")

	var (
		rooms []models.RoomSummary
		err   error
	)
	switch c.GetString("userRole") {
	case models.RoleAdmin:
		rooms, err = h.events.ListRoomsForAdmin(c.Request.Context())
	case models.RoleOrganizer:
		rooms, err = h.events.ListRoomsForOrganizer(c.Request.Context(), userID)
	default:
		rooms, err = h.events.ListRoomsForStudent(c.Request.Context(), userID)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load rooms"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"rooms": rooms})
}

// GetMessages returns room history in ascending order. Supports a limit
// and an exclusive RFC3339 "before" cursor for paging backwards.
func (h *ChatHandler) GetMessages(c *gin.Context) {
	eventID, ok := eventIDParam(c)
	if !ok {
		return
	}

	decision, ok := h.decide(c, eventID)
	if !ok {
		return
	}
	if !decision.CanView {
		status := http.StatusForbidden
		text := "not registered for this event"
		if decision.IsBanned {
			text = "you are banned from this room"
		}
		c.JSON(status, gin.H{"error": text})
		return
	}

	limit := defaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
		if limit > maxHistoryLimit {
			limit = maxHistoryLimit
		}
	}

	var before *time.Time
	if raw := c.Query("before"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid before cursor, expected RFC3339"})
			return
		}
		before = &parsed
	}

	msgs, err := h.messages.ListMessages(c.Request.Context(), eventID, limit, before)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

// GetAccess reports the caller's standing in a room without side effects.
func (h *ChatHandler) GetAccess(c *gin.Context) {
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

	userID := c.GetInt("userID")
	reg, err := h.registrations.FindRegistration(c.Request.Context(), userID, eventID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to verify registration"})
		return
	}

	actor := access.Actor{UserID: userID, Role: c.GetString("userRole")}
	decision := access.Decide(actor, event, reg)

	c.JSON(http.StatusOK, gin.H{
		"can_view":     decision.CanView,
		"can_moderate": decision.CanModerate,
		"is_banned":    decision.IsBanned,
		"is_organizer": event.OrganizerID == userID,
		"is_admin":     actor.Role == models.RoleAdmin,
	})
}

// GetParticipants lists registered users with ban state. Moderators only.
func (h *ChatHandler) GetParticipants(c *gin.Context) {
	eventID, ok := eventIDParam(c)
	if !ok {
		return
	}

	decision, ok := h.decide(c, eventID)
	if !ok {
		return
	}
	if !decision.CanModerate {
		c.JSON(http.StatusForbidden, gin.H{"error": "only organizers and admins can list participants"})
		return
	}

	participants, err := h.registrations.ListParticipants(c.Request.Context(), eventID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load participants"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"participants": participants})
}

// BanUser bans a registered user from a room.
func (h *ChatHandler) BanUser(c *gin.Context) {
	eventID, ok := eventIDParam(c)
	if !ok {
		return
	}
	targetUserID, err := strconv.Atoi(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	actor := access.Actor{UserID: c.GetInt("userID"), Role: c.GetString("userRole")}
	reg, err := h.moderator.Ban(c.Request.Context(), actor, eventID, targetUserID)
	if err != nil {
		h.respondModerationError(c, err, "ban")
		return
	}

	observability.IncModerationAction("ban", "rest")
	h.emitAudit(c, "INFO", "User banned from room")
	c.JSON(http.StatusOK, reg)
}

// UnbanUser lifts a ban. Idempotent: unbanning a user who is not banned
// still succeeds.
func (h *ChatHandler) UnbanUser(c *gin.Context) {
	eventID, ok := eventIDParam(c)
	if !ok {
		return
	}
	targetUserID, err := strconv.Atoi(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	actor := access.Actor{UserID: c.GetInt("userID"), Role: c.GetString("userRole")}
	reg, err := h.moderator.Unban(c.Request.Context(), actor, eventID, targetUserID)
	if err != nil {
		h.respondModerationError(c, err, "unban")
		return
	}

	observability.IncModerationAction("unban", "rest")
	h.emitAudit(c, "INFO", "User unbanned from room")
	c.JSON(http.StatusOK, reg)
}

// decide loads the event and registration for the caller and derives the
// access decision. Writes the error response itself on failure.
func (h *ChatHandler) decide(c *gin.Context, eventID int) (access.Decision, bool) {
	event, err := h.events.GetEvent(c.Request.Context(), eventID)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load event"})
		}
		return access.Decision{}, false
	}

	userID := c.GetInt("userID")
	reg, err := h.registrations.FindRegistration(c.Request.Context(), userID, eventID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to verify registration"})
		return access.Decision{}, false
	}

	actor := access.Actor{UserID: userID, Role: c.GetString("userRole")}
	return access.Decide(actor, event, reg), true
}

func (h *ChatHandler) respondModerationError(c *gin.Context, err error, action string) {
	switch {
	case errors.Is(err, repositories.ErrEventNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
	case errors.Is(err, chat.ErrForbidden):
		h.emitAudit(c, "ERROR", "not allowed")
		c.JSON(http.StatusForbidden, gin.H{"error": "only organizers and admins can " + action + " users"})
	case errors.Is(err, chat.ErrInvalidTarget):
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot ban the event organizer"})
	case errors.Is(err, repositories.ErrRegistrationNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "user is not registered for this event"})
	default:
		h.emitAudit(c, "ERROR", "internal error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not " + action + " user"})
	}
}

func (h *ChatHandler) emitAudit(c *gin.Context, level, text string) {
	if h.audit == nil {
		return
	}
	h.audit.Emit(c.Request.Context(), level, text, requestIDFromContext(c), userIDFromContext(c))
}
