package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"campus-flow/internal/models"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already registered")
)

// UserRepository abstracts account persistence.
type UserRepository interface {
	CreateUser(ctx context.Context, name, email, passwordHash, role string) (models.User, error)
	GetUser(ctx context.Context, userID int) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
}

// UserRepo is a sqlx implementation of UserRepository.
type UserRepo struct {
	db *sqlx.DB
}

// NewUserRepo constructs a UserRepo.
func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db}
}

// CreateUser inserts a new account.
func (r *UserRepo) CreateUser(ctx context.Context, name, email, passwordHash, role string) (models.User, error) {
	var user models.User
	err := r.db.QueryRowxContext(ctx, `INSERT INTO users (name, email, password_hash, role) VALUES ($1, $2, $3, $4)
        RETURNING id, name, email, password_hash, role, created_at`, name, email, passwordHash, role).
		StructScan(&user)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return models.User{}, ErrDuplicateEmail
	}
	return user, err
}

// GetUser fetches an account by id.
func (r *UserRepo) GetUser(ctx context.Context, userID int) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT id, name, email, password_hash, role, created_at FROM users WHERE id=$1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

// GetUserByEmail fetches an account by email.
func (r *UserRepo) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT id, name, email, password_hash, role, created_at FROM users WHERE email=$1`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}
