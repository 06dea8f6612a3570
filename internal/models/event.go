package models

import "time"

// Event statuses.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusClosed    = "closed"
)

// Event categories.
var Categories = []string{"tech", "cultural", "sports", "workshop", "seminar", "other"}

// ValidCategory reports whether category is a known event category.
func ValidCategory(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}

// Event is a campus event. The chat layer treats it as read-only
// authorization context.
type Event struct {
	ID          int       `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	DateTime    time.Time `db:"date_time" json:"date_time"`
	Venue       string    `db:"venue" json:"venue"`
	Category    string    `db:"category" json:"category"`
	Status      string    `db:"status" json:"status"`
	OrganizerID int       `db:"organizer_id" json:"organizer_id"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// EventSummary is the API view of an event enriched with organizer info.
type EventSummary struct {
	Event
	OrganizerName  string `db:"organizer_name" json:"organizer_name,omitempty"`
	OrganizerEmail string `db:"organizer_email" json:"organizer_email,omitempty"`
}

// RoomSummary is the listing entry for a chat room visible to a user.
type RoomSummary struct {
	EventID   int       `db:"id" json:"event_id"`
	Title     string    `db:"title" json:"title"`
	Category  string    `db:"category" json:"category"`
	DateTime  time.Time `db:"date_time" json:"date_time"`
	Organizer string    `db:"organizer_name" json:"organizer"`
}
