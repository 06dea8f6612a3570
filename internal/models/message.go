package models

import "time"

// MaxMessageLength caps chat message content, counted in runes.
const MaxMessageLength = 1000

// Message is an append-only chat entry. Deletion is a flag flip; rows are
// never removed or edited.
type Message struct {
	ID        int       `db:"id" json:"id"`
	EventID   int       `db:"event_id" json:"event_id"`
	UserID    int       `db:"user_id" json:"user_id"`
	Content   string    `db:"content" json:"content"`
	IsDeleted bool      `db:"is_deleted" json:"is_deleted"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ChatMessage is a message with the author fields denormalized for display.
type ChatMessage struct {
	Message
	AuthorName  string `db:"author_name" json:"author_name"`
	AuthorEmail string `db:"author_email" json:"author_email"`
}

// Room event types pushed to websocket clients.
const (
	EventNewMessage     = "newMessage"
	EventMessageDeleted = "messageDeleted"
	EventUserJoined     = "userJoined"
	EventUserLeft       = "userLeft"
	EventUserBanned     = "userBanned"
	EventUserUnbanned   = "userUnbanned"
	EventKicked         = "kicked"
	EventError          = "error"
)

// RoomEvent is broadcast through websockets. Fields are populated per type.
// Message holds a *ChatMessage for newMessage and a plain string notice for
// kicked and error; both serialize under the same wire key.
type RoomEvent struct {
	Type      string      `json:"type"`
	EventID   int         `json:"event_id,omitempty"`
	Message   interface{} `json:"message,omitempty"`
	MessageID int         `json:"message_id,omitempty"`
	UserID    int         `json:"user_id,omitempty"`
	BannedBy  int         `json:"banned_by,omitempty"`
}
