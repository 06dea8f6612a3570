package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"campus-flow/internal/access"
	"campus-flow/internal/models"
)

// Session is one authenticated websocket connection. Room membership lives
// in the Hub; the session itself only carries identity and connection
// metadata. Writes are serialized because broadcasts arrive from other
// sessions' goroutines.
type Session struct {
	conn    *websocket.Conn
	writeMu sync.Mutex

	UserID int
	Role   string
	Name   string
	Email  string

	ConnID      string
	DeviceID    string
	IP          string
	RequestID   string
	TraceID     string
	ConnectedAt time.Time
}

// Actor returns the session's identity for access decisions.
func (s *Session) Actor() access.Actor {
	return access.Actor{UserID: s.UserID, Role: s.Role}
}

// Send marshals and writes a room event to the client.
func (s *Session) Send(event models.RoomEvent) error {
	if s.conn == nil {
		return nil
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteMessage(websocket.TextMessage, payload)
}

// SendError delivers a session-scoped error notice.
func (s *Session) SendError(text string) {
	_ = s.Send(models.RoomEvent{Type: models.EventError, Message: text})
}

// Close closes the underlying connection.
func (s *Session) Close() {
	if s.conn != nil {
		s.conn.Close()
	}
}
