package ws

import (
	"context"
	"log"
	"sync"
	"time"

	"campus-flow/internal/models"
	"campus-flow/internal/observability"
)

// Hub is the room registry: it maps each event id to the set of live
// sessions and keeps the reverse index needed to evict a banned user's
// session. A session belongs to at most one room at a time.
type Hub struct {
	mu          sync.RWMutex
	rooms       map[int]map[*Session]bool
	sessionRoom map[*Session]int
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		rooms:       make(map[int]map[*Session]bool),
		sessionRoom: make(map[*Session]int),
	}
}

// Join adds the session to the event's room, moving it out of any prior
// room first. Returns the vacated room id, or 0. Idempotent.
func (h *Hub) Join(eventID int, s *Session) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	prev := h.sessionRoom[s]
	if prev == eventID {
		return 0
	}
	if prev != 0 {
		h.removeLocked(prev, s)
	}

	if _, ok := h.rooms[eventID]; !ok {
		h.rooms[eventID] = make(map[*Session]bool)
	}
	h.rooms[eventID][s] = true
	h.sessionRoom[s] = eventID
	observability.SetRoomMembers(eventID, len(h.rooms[eventID]))
	return prev
}

// Leave removes the session from whatever room it occupies. Returns the
// vacated room id, or 0 when the session was idle. Idempotent.
func (h *Hub) Leave(s *Session) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	room := h.sessionRoom[s]
	if room == 0 {
		return 0
	}
	h.removeLocked(room, s)
	return room
}

// RoomOf returns the session's current room id, or 0 when idle.
func (h *Hub) RoomOf(s *Session) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.sessionRoom[s]
}

// FindSession returns the live session for (user, event), or nil. The scan
// is bounded by the room's membership, not total connections.
func (h *Hub) FindSession(eventID, userID int) *Session {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.rooms[eventID] {
		if s.UserID == userID {
			return s
		}
	}
	return nil
}

// Broadcast delivers an event to every session in the room except exclude.
func (h *Hub) Broadcast(eventID int, event models.RoomEvent, exclude *Session) {
	h.mu.RLock()
	members := make([]*Session, 0, len(h.rooms[eventID]))
	for s := range h.rooms[eventID] {
		if s != exclude {
			members = append(members, s)
		}
	}
	h.mu.RUnlock()

	for _, s := range members {
		if err := s.Send(event); err != nil {
			log.Printf("websocket write error: %v", err)
			s.Close()
			h.Leave(s)
			h.publishWSError(s, eventID, err)
		}
	}
}

// NotifyBan evicts the target's live session (when one exists), sends it a
// kicked notice, and tells the remaining members about the ban. The target
// never receives the ban broadcast, only the kick.
func (h *Hub) NotifyBan(eventID, targetUserID, bannedBy int) {
	if target := h.FindSession(eventID, targetUserID); target != nil {
		h.Leave(target)
		_ = target.Send(models.RoomEvent{
			Type:    models.EventKicked,
			EventID: eventID,
			Message: "you have been removed from this room",
		})
		observability.IncWSEvent(models.EventKicked)
	}
	h.Broadcast(eventID, models.RoomEvent{
		Type:     models.EventUserBanned,
		EventID:  eventID,
		UserID:   targetUserID,
		BannedBy: bannedBy,
	}, nil)
}

// NotifyUnban tells the room a user may register presence again. The user
// is not rejoined; an explicit joinRoom re-validates their state.
func (h *Hub) NotifyUnban(eventID, targetUserID int) {
	h.Broadcast(eventID, models.RoomEvent{
		Type:    models.EventUserUnbanned,
		EventID: eventID,
		UserID:  targetUserID,
	}, nil)
}

// removeLocked deletes the session from a room. Caller holds h.mu.
func (h *Hub) removeLocked(eventID int, s *Session) {
	if members, ok := h.rooms[eventID]; ok {
		delete(members, s)
		if len(members) == 0 {
			delete(h.rooms, eventID)
		}
		observability.SetRoomMembers(eventID, len(members))
	}
	delete(h.sessionRoom, s)
}

func (h *Hub) publishWSError(s *Session, eventID int, err error) {
	payload := map[string]interface{}{
		"ws": map[string]interface{}{
			"resource_id": eventID,
			"event":       "ws_error",
			"conn_id":     s.ConnID,
			"duration_ms": time.Since(s.ConnectedAt).Milliseconds(),
			"reason":      err.Error(),
		},
		"identity": map[string]interface{}{
			"user_id":   s.UserID,
			"device_id": s.DeviceID,
			"ip":        s.IP,
		},
	}

	headers := observability.BuildHeaders(s.RequestID, s.TraceID)
	_ = observability.PublishEvent(context.Background(), "ws_events.rooms", observability.NewRoomEvent("ws_error", payload), headers)
	observability.IncWSEvent("ws_error")
}
