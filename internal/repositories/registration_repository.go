package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"campus-flow/internal/models"
)

var (
	ErrRegistrationNotFound  = errors.New("registration not found")
	ErrDuplicateRegistration = errors.New("already registered for this event")
)

// RegistrationRepository abstracts registration persistence, including the
// ban fields mutated by the moderation path.
type RegistrationRepository interface {
	CreateRegistration(ctx context.Context, userID, eventID int) (models.Registration, error)
	FindRegistration(ctx context.Context, userID, eventID int) (*models.Registration, error)
	ListRegistrationsForUser(ctx context.Context, userID int) ([]models.Registration, error)
	DeleteRegistration(ctx context.Context, userID, eventID int) error
	ListParticipants(ctx context.Context, eventID int) ([]models.Participant, error)
	SetBan(ctx context.Context, eventID, targetUserID, bannedBy int) (models.Registration, error)
	ClearBan(ctx context.Context, eventID, targetUserID int) (models.Registration, error)
}

// RegistrationRepo is a sqlx implementation of RegistrationRepository.
type RegistrationRepo struct {
	db *sqlx.DB
}

// NewRegistrationRepo constructs a RegistrationRepo.
func NewRegistrationRepo(db *sqlx.DB) *RegistrationRepo {
	return &RegistrationRepo{db: db}
}

const registrationColumns = `id, user_id, event_id, is_banned, banned_at, banned_by, registered_at`

// CreateRegistration inserts a registration row.
func (r *RegistrationRepo) CreateRegistration(ctx context.Context, userID, eventID int) (models.Registration, error) {
	var reg models.Registration
	err := r.db.QueryRowxContext(ctx, `INSERT INTO registrations (user_id, event_id) VALUES ($1, $2)
        RETURNING `+registrationColumns, userID, eventID).
		StructScan(&reg)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return models.Registration{}, ErrDuplicateRegistration
	}
	return reg, err
}

// FindRegistration returns the registration for (user, event), or nil when
// none exists. A cancelled registration reads as nil.
func (r *RegistrationRepo) FindRegistration(ctx context.Context, userID, eventID int) (*models.Registration, error) {
	var reg models.Registration
	err := r.db.GetContext(ctx, &reg, `SELECT `+registrationColumns+` FROM registrations WHERE user_id=$1 AND event_id=$2`, userID, eventID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

// ListRegistrationsForUser returns the user's registrations, newest first.
func (r *RegistrationRepo) ListRegistrationsForUser(ctx context.Context, userID int) ([]models.Registration, error) {
	var regs []models.Registration
	err := r.db.SelectContext(ctx, &regs, `SELECT `+registrationColumns+` FROM registrations WHERE user_id=$1 ORDER BY registered_at DESC`, userID)
	return regs, err
}

// DeleteRegistration removes the registration (cancellation).
func (r *RegistrationRepo) DeleteRegistration(ctx context.Context, userID, eventID int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM registrations WHERE user_id=$1 AND event_id=$2`, userID, eventID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrRegistrationNotFound
	}
	return nil
}

// ListParticipants returns every registration for the event with user and
// banning-moderator display fields.
func (r *RegistrationRepo) ListParticipants(ctx context.Context, eventID int) ([]models.Participant, error) {
	var participants []models.Participant
	err := r.db.SelectContext(ctx, &participants, `SELECT reg.user_id, u.name, u.email, reg.is_banned, reg.banned_at,
        b.name AS banned_by_name, reg.registered_at
        FROM registrations reg
        INNER JOIN users u ON u.id = reg.user_id
        LEFT JOIN users b ON b.id = reg.banned_by
        WHERE reg.event_id=$1 ORDER BY reg.registered_at DESC`, eventID)
	return participants, err
}

// SetBan flips the ban fields on the target's registration.
func (r *RegistrationRepo) SetBan(ctx context.Context, eventID, targetUserID, bannedBy int) (models.Registration, error) {
	var reg models.Registration
	err := r.db.QueryRowxContext(ctx, `UPDATE registrations SET is_banned = TRUE, banned_at=$3, banned_by=$4
        WHERE user_id=$1 AND event_id=$2 RETURNING `+registrationColumns,
		targetUserID, eventID, time.Now().UTC(), bannedBy).
		StructScan(&reg)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Registration{}, ErrRegistrationNotFound
	}
	return reg, err
}

// ClearBan resets the ban fields. A no-op on non-banned registrations.
func (r *RegistrationRepo) ClearBan(ctx context.Context, eventID, targetUserID int) (models.Registration, error) {
	var reg models.Registration
	err := r.db.QueryRowxContext(ctx, `UPDATE registrations SET is_banned = FALSE, banned_at = NULL, banned_by = NULL
        WHERE user_id=$1 AND event_id=$2 RETURNING `+registrationColumns,
		targetUserID, eventID).
		StructScan(&reg)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Registration{}, ErrRegistrationNotFound
	}
	return reg, err
}
