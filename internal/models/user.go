package models

import "time"

// User roles.
const (
	RoleStudent   = "student"
	RoleOrganizer = "organizer"
	RoleAdmin     = "admin"
)

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	return role == RoleStudent || role == RoleOrganizer || role == RoleAdmin
}

// User is an account in the campus directory.
type User struct {
	ID           int       `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         string    `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
