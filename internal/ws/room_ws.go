package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	"campus-flow/internal/access"
	"campus-flow/internal/auth"
	"campus-flow/internal/chat"
	"campus-flow/internal/models"
	"campus-flow/internal/observability"
	"campus-flow/internal/repositories"
)

// RoomHandler owns the realtime session protocol: the authenticated
// connection lifecycle and the join/leave/send/delete/ban/unban vocabulary.
// Authorization is re-derived on every mutating action so a ban applied
// mid-session takes effect on the banned session's next action.
type RoomHandler struct {
	hub           *Hub
	tokens        *auth.Tokens
	users         repositories.UserRepository
	events        repositories.EventRepository
	registrations repositories.RegistrationRepository
	messages      repositories.MessageRepository
	moderator     *chat.Moderator
}

// NewRoomHandler constructs a RoomHandler.
func NewRoomHandler(hub *Hub, tokens *auth.Tokens, users repositories.UserRepository, events repositories.EventRepository, registrations repositories.RegistrationRepository, messages repositories.MessageRepository, moderator *chat.Moderator) *RoomHandler {
	return &RoomHandler{
		hub:           hub,
		tokens:        tokens,
		users:         users,
		events:        events,
		registrations: registrations,
		messages:      messages,
		moderator:     moderator,
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// clientEvent is the envelope for client-to-server protocol events.
type clientEvent struct {
	Type         string `json:"type"`
	EventID      int    `json:"event_id"`
	Content      string `json:"content"`
	MessageID    int    `json:"message_id"`
	TargetUserID int    `json:"target_user_id"`
}

// Client-to-server event types.
const (
	actionJoinRoom      = "joinRoom"
	actionLeaveRoom     = "leaveRoom"
	actionSendMessage   = "sendMessage"
	actionDeleteMessage = "deleteMessage"
	actionBanUser       = "banUser"
	actionUnbanUser     = "unbanUser"
)

// Handle authenticates the handshake, upgrades the connection and runs the
// session read loop. An absent or invalid token terminates the request
// before any room logic runs.
func (h *RoomHandler) Handle(c *gin.Context) {
	ctx, span := otel.Tracer("campus-flow/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	token := c.GetHeader("Authorization")
	if token == "" {
		token = c.Query("token")
		if token != "" {
			token = "Bearer " + token
		}
	}

	claims, err := h.validateToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	user, err := h.users.GetUser(ctx, claims.UserID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unknown user"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	meta := observability.MetaFromRequest(c.Request)
	session := &Session{
		conn:        conn,
		UserID:      user.ID,
		Role:        user.Role,
		Name:        user.Name,
		Email:       user.Email,
		ConnID:      uuid.NewString(),
		DeviceID:    meta.DeviceID,
		IP:          meta.IP,
		RequestID:   meta.RequestID,
		TraceID:     span.SpanContext().TraceID().String(),
		ConnectedAt: time.Now(),
	}

	observability.IncWSActive()
	observability.IncWSEvent("ws_connect")
	h.publishLifecycle(ctx, session, "ws_connect", "")

	// The request context dies when this handler returns; the session
	// outlives it but keeps its trace and values.
	go h.readLoop(context.WithoutCancel(ctx), session)
}

func (h *RoomHandler) readLoop(ctx context.Context, s *Session) {
	var closeReason string
	defer func() {
		if room := h.hub.Leave(s); room != 0 {
			h.hub.Broadcast(room, models.RoomEvent{Type: models.EventUserLeft, EventID: room, UserID: s.UserID}, nil)
		}
		observability.DecWSActive()
		observability.IncWSEvent("ws_disconnect")
		h.publishLifecycle(ctx, s, "ws_disconnect", closeReason)
		s.Close()
	}()

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			closeReason = err.Error()
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				observability.IncWSEvent("ws_error")
				h.publishLifecycle(ctx, s, "ws_error", closeReason)
			}
			return
		}
		h.dispatch(ctx, s, data)
	}
}

func (h *RoomHandler) dispatch(ctx context.Context, s *Session, data []byte) {
	var ev clientEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		s.SendError("malformed event")
		return
	}

	// The label set must stay bounded, so only known action names are
	// counted as-is.
	switch ev.Type {
	case actionJoinRoom:
		observability.IncWSEvent(ev.Type)
		h.handleJoin(ctx, s, ev.EventID)
	case actionLeaveRoom:
		observability.IncWSEvent(ev.Type)
		h.handleLeave(s, ev.EventID)
	case actionSendMessage:
		observability.IncWSEvent(ev.Type)
		h.handleSend(ctx, s, ev.EventID, ev.Content)
	case actionDeleteMessage:
		observability.IncWSEvent(ev.Type)
		h.handleDelete(ctx, s, ev.EventID, ev.MessageID)
	case actionBanUser:
		observability.IncWSEvent(ev.Type)
		h.handleBan(ctx, s, ev.EventID, ev.TargetUserID)
	case actionUnbanUser:
		observability.IncWSEvent(ev.Type)
		h.handleUnban(ctx, s, ev.EventID, ev.TargetUserID)
	default:
		observability.IncWSEvent("unknown")
		s.SendError("unknown event type")
	}
}

func (h *RoomHandler) handleJoin(ctx context.Context, s *Session, eventID int) {
	event, err := h.events.GetEvent(ctx, eventID)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			s.SendError("event not found")
		} else {
			s.SendError("failed to load event")
		}
		return
	}

	reg, err := h.registrations.FindRegistration(ctx, s.UserID, eventID)
	if err != nil {
		s.SendError("failed to verify registration")
		return
	}

	decision := access.Decide(s.Actor(), event, reg)
	if decision.IsBanned {
		s.SendError("you are banned from this room")
		return
	}
	if !decision.CanView {
		s.SendError("not registered for this event")
		return
	}

	if prev := h.hub.Join(eventID, s); prev != 0 {
		h.hub.Broadcast(prev, models.RoomEvent{Type: models.EventUserLeft, EventID: prev, UserID: s.UserID}, nil)
	}
	h.hub.Broadcast(eventID, models.RoomEvent{Type: models.EventUserJoined, EventID: eventID, UserID: s.UserID}, s)
}

func (h *RoomHandler) handleLeave(s *Session, eventID int) {
	if h.hub.RoomOf(s) != eventID {
		return
	}
	h.hub.Leave(s)
	h.hub.Broadcast(eventID, models.RoomEvent{Type: models.EventUserLeft, EventID: eventID, UserID: s.UserID}, nil)
}

func (h *RoomHandler) handleSend(ctx context.Context, s *Session, eventID int, content string) {
	if h.hub.RoomOf(s) != eventID {
		s.SendError("join the room before sending messages")
		return
	}

	content = strings.TrimSpace(content)
	if content == "" {
		s.SendError("message content is required")
		return
	}
	if utf8.RuneCountInString(content) > models.MaxMessageLength {
		s.SendError("message exceeds the maximum length")
		return
	}

	// Ban state can change after join; re-derive before every send.
	event, err := h.events.GetEvent(ctx, eventID)
	if err != nil {
		s.SendError("failed to load event")
		return
	}
	reg, err := h.registrations.FindRegistration(ctx, s.UserID, eventID)
	if err != nil {
		s.SendError("failed to verify registration")
		return
	}
	decision := access.Decide(s.Actor(), event, reg)
	if !decision.CanView {
		if decision.IsBanned {
			s.SendError("you are banned from this room")
		} else {
			s.SendError("not registered for this event")
		}
		return
	}

	msg, err := h.messages.CreateMessage(ctx, eventID, s.UserID, content)
	if err != nil {
		s.SendError("failed to store message")
		return
	}

	// Broadcast only after the write is durable; the sender's UI learns the
	// server-assigned id and timestamp from this same broadcast.
	chatMsg := models.ChatMessage{Message: msg, AuthorName: s.Name, AuthorEmail: s.Email}
	h.hub.Broadcast(eventID, models.RoomEvent{Type: models.EventNewMessage, EventID: eventID, Message: &chatMsg}, nil)
}

func (h *RoomHandler) handleDelete(ctx context.Context, s *Session, eventID, messageID int) {
	event, err := h.events.GetEvent(ctx, eventID)
	if err != nil {
		s.SendError("event not found")
		return
	}
	reg, err := h.registrations.FindRegistration(ctx, s.UserID, eventID)
	if err != nil {
		s.SendError("failed to verify registration")
		return
	}
	if !access.Decide(s.Actor(), event, reg).CanModerate {
		s.SendError("only organizers and admins can delete messages")
		return
	}

	msg, err := h.messages.GetMessage(ctx, messageID)
	if err != nil {
		s.SendError("message not found")
		return
	}
	if msg.EventID != eventID {
		s.SendError("message does not belong to this room")
		return
	}

	if err := h.messages.SoftDeleteMessage(ctx, messageID); err != nil {
		s.SendError("failed to delete message")
		return
	}

	observability.IncModerationAction("delete_message", "ws")
	h.hub.Broadcast(eventID, models.RoomEvent{Type: models.EventMessageDeleted, EventID: eventID, MessageID: messageID}, nil)
}

func (h *RoomHandler) handleBan(ctx context.Context, s *Session, eventID, targetUserID int) {
	if _, err := h.moderator.Ban(ctx, s.Actor(), eventID, targetUserID); err != nil {
		s.SendError(moderationErrorText(err, "ban"))
		return
	}
	observability.IncModerationAction("ban", "ws")
}

func (h *RoomHandler) handleUnban(ctx context.Context, s *Session, eventID, targetUserID int) {
	if _, err := h.moderator.Unban(ctx, s.Actor(), eventID, targetUserID); err != nil {
		s.SendError(moderationErrorText(err, "unban"))
		return
	}
	observability.IncModerationAction("unban", "ws")
}

func moderationErrorText(err error, action string) string {
	switch {
	case errors.Is(err, repositories.ErrEventNotFound):
		return "event not found"
	case errors.Is(err, chat.ErrForbidden):
		return "only organizers and admins can " + action + " users"
	case errors.Is(err, chat.ErrInvalidTarget):
		return "cannot ban the event organizer"
	case errors.Is(err, repositories.ErrRegistrationNotFound):
		return "user is not registered for this event"
	default:
		return "failed to " + action + " user"
	}
}

func (h *RoomHandler) validateToken(header string) (auth.Claims, error) {
	parts := strings.Split(header, " ")
	if len(parts) == 2 {
		return h.tokens.Verify(parts[1])
	}
	return auth.Claims{}, errors.New("invalid token")
}

func (h *RoomHandler) publishLifecycle(ctx context.Context, s *Session, event, reason string) {
	payload := map[string]interface{}{
		"ws": map[string]interface{}{
			"event":       event,
			"conn_id":     s.ConnID,
			"duration_ms": time.Since(s.ConnectedAt).Milliseconds(),
			"reason":      reason,
		},
		"identity": map[string]interface{}{
			"user_id":   s.UserID,
			"device_id": s.DeviceID,
			"ip":        s.IP,
		},
	}
	_ = observability.PublishEvent(ctx, "ws_events.rooms", observability.NewRoomEvent(event, payload), observability.BuildHeaders(s.RequestID, s.TraceID))
}
