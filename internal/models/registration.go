package models

import "time"

// Registration records a user's relationship to an event, including ban
// state. At most one registration exists per (user, event) pair.
type Registration struct {
	ID           int        `db:"id" json:"id"`
	UserID       int        `db:"user_id" json:"user_id"`
	EventID      int        `db:"event_id" json:"event_id"`
	IsBanned     bool       `db:"is_banned" json:"is_banned"`
	BannedAt     *time.Time `db:"banned_at" json:"banned_at,omitempty"`
	BannedBy     *int       `db:"banned_by" json:"banned_by,omitempty"`
	RegisteredAt time.Time  `db:"registered_at" json:"registered_at"`
}

// Participant is the moderator-facing view of a registration.
type Participant struct {
	UserID       int        `db:"user_id" json:"user_id"`
	Name         string     `db:"name" json:"name"`
	Email        string     `db:"email" json:"email"`
	IsBanned     bool       `db:"is_banned" json:"is_banned"`
	BannedAt     *time.Time `db:"banned_at" json:"banned_at,omitempty"`
	BannedBy     *string    `db:"banned_by_name" json:"banned_by,omitempty"`
	RegisteredAt time.Time  `db:"registered_at" json:"registered_at"`
}
