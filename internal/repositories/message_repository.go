package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"campus-flow/internal/models"
)

var ErrMessageNotFound = errors.New("message not found")

// MessageRepository defines interactions for room messages.
type MessageRepository interface {
	CreateMessage(ctx context.Context, eventID, userID int, content string) (models.Message, error)
	GetMessage(ctx context.Context, messageID int) (models.Message, error)
	ListMessages(ctx context.Context, eventID int, limit int, before *time.Time) ([]models.ChatMessage, error)
	SoftDeleteMessage(ctx context.Context, messageID int) error
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// CreateMessage appends a message to the event's room.
func (r *MessageRepo) CreateMessage(ctx context.Context, eventID, userID int, content string) (models.Message, error) {
	var msg models.Message
	err := r.db.QueryRowxContext(ctx, `INSERT INTO messages (event_id, user_id, content) VALUES ($1, $2, $3)
        RETURNING id, event_id, user_id, content, is_deleted, created_at`, eventID, userID, content).
		StructScan(&msg)
	return msg, err
}

// GetMessage retrieves a single message, deleted or not.
func (r *MessageRepo) GetMessage(ctx context.Context, messageID int) (models.Message, error) {
	var msg models.Message
	err := r.db.GetContext(ctx, &msg, `SELECT id, event_id, user_id, content, is_deleted, created_at FROM messages WHERE id=$1`, messageID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Message{}, ErrMessageNotFound
	}
	return msg, err
}

// ListMessages returns up to limit non-deleted messages older than before
// (unbounded when before is nil), joined with author display fields. The
// window is selected newest-first and reordered to chronological ascending.
func (r *MessageRepo) ListMessages(ctx context.Context, eventID int, limit int, before *time.Time) ([]models.ChatMessage, error) {
	query := `SELECT m.id, m.event_id, m.user_id, m.content, m.is_deleted, m.created_at,
        u.name AS author_name, u.email AS author_email
        FROM messages m INNER JOIN users u ON u.id = m.user_id
        WHERE m.event_id=$1 AND m.is_deleted = FALSE`
	args := []interface{}{eventID}
	if before != nil {
		args = append(args, *before)
		query += ` AND m.created_at < $2`
	}
	query += ` ORDER BY m.created_at DESC LIMIT ` + limitClause(len(args)+1)

	args = append(args, limit)
	var msgs []models.ChatMessage
	if err := r.db.SelectContext(ctx, &msgs, query, args...); err != nil {
		return nil, err
	}

	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

// SoftDeleteMessage marks a message deleted. Safe to repeat.
func (r *MessageRepo) SoftDeleteMessage(ctx context.Context, messageID int) error {
	res, err := r.db.ExecContext(ctx, `UPDATE messages SET is_deleted = TRUE WHERE id=$1`, messageID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrMessageNotFound
	}
	return nil
}

func limitClause(placeholder int) string {
	if placeholder == 2 {
		return "$2"
	}
	return "$3"
}
