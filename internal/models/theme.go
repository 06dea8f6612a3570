package models

import (
	"time"

	"github.com/lib/pq"
)

// Theme fonts.
var Fonts = []string{"pixel", "retro", "modern"}

// ValidFont reports whether font is a known theme font.
func ValidFont(font string) bool {
	for _, f := range Fonts {
		if f == font {
			return true
		}
	}
	return false
}

// Theme is the single cosmetic UI configuration row.
type Theme struct {
	ID             int            `db:"id" json:"id"`
	Name           string         `db:"name" json:"name"`
	PrimaryColor   string         `db:"primary_color" json:"primary_color"`
	SecondaryColor string         `db:"secondary_color" json:"secondary_color"`
	Background     string         `db:"background" json:"background"`
	Font           string         `db:"font" json:"font"`
	Effects        pq.StringArray `db:"effects" json:"effects"`
	UpsideDown     bool           `db:"upside_down" json:"upside_down"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
}
