package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"

	"campus-flow/internal/models"
)

var ErrEventNotFound = errors.New("event not found")

// EventFilter narrows the public event listing.
type EventFilter struct {
	Category string
	Date     *time.Time
}

// EventRepository abstracts event persistence.
type EventRepository interface {
	CreateEvent(ctx context.Context, event models.Event) (models.Event, error)
	GetEvent(ctx context.Context, eventID int) (models.Event, error)
	GetEventSummary(ctx context.Context, eventID int) (models.EventSummary, error)
	ListPublishedEvents(ctx context.Context, filter EventFilter) ([]models.EventSummary, error)
	ListEventsByOrganizer(ctx context.Context, organizerID int) ([]models.EventSummary, error)
	UpdateEventStatus(ctx context.Context, eventID int, status string) (models.Event, error)
	ListRoomsForAdmin(ctx context.Context) ([]models.RoomSummary, error)
	ListRoomsForOrganizer(ctx context.Context, organizerID int) ([]models.RoomSummary, error)
	ListRoomsForStudent(ctx context.Context, userID int) ([]models.RoomSummary, error)
}

// EventRepo is a sqlx implementation of EventRepository.
type EventRepo struct {
	db *sqlx.DB
}

// NewEventRepo constructs an EventRepo.
func NewEventRepo(db *sqlx.DB) *EventRepo {
	return &EventRepo{db: db}
}

const eventSummaryColumns = `e.id, e.title, e.description, e.date_time, e.venue, e.category, e.status, e.organizer_id, e.created_at,
        u.name AS organizer_name, u.email AS organizer_email`

// CreateEvent inserts a new event in draft status.
func (r *EventRepo) CreateEvent(ctx context.Context, event models.Event) (models.Event, error) {
	var created models.Event
	err := r.db.QueryRowxContext(ctx, `INSERT INTO events (title, description, date_time, venue, category, status, organizer_id)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id, title, description, date_time, venue, category, status, organizer_id, created_at`,
		event.Title, event.Description, event.DateTime, event.Venue, event.Category, models.StatusDraft, event.OrganizerID).
		StructScan(&created)
	return created, err
}

// GetEvent fetches an event by id.
func (r *EventRepo) GetEvent(ctx context.Context, eventID int) (models.Event, error) {
	var event models.Event
	err := r.db.GetContext(ctx, &event, `SELECT id, title, description, date_time, venue, category, status, organizer_id, created_at FROM events WHERE id=$1`, eventID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Event{}, ErrEventNotFound
	}
	return event, err
}

// GetEventSummary fetches an event joined with organizer display fields.
func (r *EventRepo) GetEventSummary(ctx context.Context, eventID int) (models.EventSummary, error) {
	var event models.EventSummary
	err := r.db.GetContext(ctx, &event, `SELECT `+eventSummaryColumns+` FROM events e INNER JOIN users u ON u.id = e.organizer_id WHERE e.id=$1`, eventID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.EventSummary{}, ErrEventNotFound
	}
	return event, err
}

// ListPublishedEvents returns published events, optionally filtered by
// category and by calendar day.
func (r *EventRepo) ListPublishedEvents(ctx context.Context, filter EventFilter) ([]models.EventSummary, error) {
	query := `SELECT ` + eventSummaryColumns + ` FROM events e INNER JOIN users u ON u.id = e.organizer_id WHERE e.status='published'`
	args := []interface{}{}
	if filter.Category != "" {
		args = append(args, filter.Category)
		query += ` AND e.category=$1`
	}
	if filter.Date != nil {
		day := filter.Date.Truncate(24 * time.Hour)
		args = append(args, day, day.Add(24*time.Hour))
		query += ` AND e.date_time >= $` + strconv.Itoa(len(args)-1) + ` AND e.date_time < $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY e.date_time ASC`

	var events []models.EventSummary
	err := r.db.SelectContext(ctx, &events, query, args...)
	return events, err
}

// ListEventsByOrganizer returns the organizer's events, newest first.
func (r *EventRepo) ListEventsByOrganizer(ctx context.Context, organizerID int) ([]models.EventSummary, error) {
	var events []models.EventSummary
	err := r.db.SelectContext(ctx, &events, `SELECT `+eventSummaryColumns+` FROM events e INNER JOIN users u ON u.id = e.organizer_id
        WHERE e.organizer_id=$1 ORDER BY e.created_at DESC`, organizerID)
	return events, err
}

// UpdateEventStatus sets the event status.
func (r *EventRepo) UpdateEventStatus(ctx context.Context, eventID int, status string) (models.Event, error) {
	var event models.Event
	err := r.db.QueryRowxContext(ctx, `UPDATE events SET status=$2 WHERE id=$1
        RETURNING id, title, description, date_time, venue, category, status, organizer_id, created_at`, eventID, status).
		StructScan(&event)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Event{}, ErrEventNotFound
	}
	return event, err
}

const roomSummaryColumns = `e.id, e.title, e.category, e.date_time, u.name AS organizer_name`

// ListRoomsForAdmin returns every published event's room.
func (r *EventRepo) ListRoomsForAdmin(ctx context.Context) ([]models.RoomSummary, error) {
	var rooms []models.RoomSummary
	err := r.db.SelectContext(ctx, &rooms, `SELECT `+roomSummaryColumns+` FROM events e INNER JOIN users u ON u.id = e.organizer_id
        WHERE e.status='published' ORDER BY e.date_time DESC`)
	return rooms, err
}

// ListRoomsForOrganizer returns rooms for events the organizer owns.
func (r *EventRepo) ListRoomsForOrganizer(ctx context.Context, organizerID int) ([]models.RoomSummary, error) {
	var rooms []models.RoomSummary
	err := r.db.SelectContext(ctx, &rooms, `SELECT `+roomSummaryColumns+` FROM events e INNER JOIN users u ON u.id = e.organizer_id
        WHERE e.organizer_id=$1 ORDER BY e.date_time DESC`, organizerID)
	return rooms, err
}

// ListRoomsForStudent returns rooms for events the student holds a
// non-banned registration for.
func (r *EventRepo) ListRoomsForStudent(ctx context.Context, userID int) ([]models.RoomSummary, error) {
	var rooms []models.RoomSummary
	err := r.db.SelectContext(ctx, &rooms, `SELECT `+roomSummaryColumns+` FROM events e
        INNER JOIN users u ON u.id = e.organizer_id
        INNER JOIN registrations reg ON reg.event_id = e.id
        WHERE reg.user_id=$1 AND reg.is_banned = FALSE ORDER BY e.date_time DESC`, userID)
	return rooms, err
}
