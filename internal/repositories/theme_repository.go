package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"campus-flow/internal/models"
)

// ThemeRepository abstracts the single UI theme row.
type ThemeRepository interface {
	GetTheme(ctx context.Context) (models.Theme, error)
	UpdateTheme(ctx context.Context, theme models.Theme) (models.Theme, error)
}

// ThemeRepo is a sqlx implementation of ThemeRepository.
type ThemeRepo struct {
	db *sqlx.DB
}

// NewThemeRepo constructs a ThemeRepo.
func NewThemeRepo(db *sqlx.DB) *ThemeRepo {
	return &ThemeRepo{db: db}
}

const themeColumns = `id, name, primary_color, secondary_color, background, font, effects, upside_down, updated_at`

// GetTheme returns the current theme, seeding the default row on first read.
func (r *ThemeRepo) GetTheme(ctx context.Context) (models.Theme, error) {
	var theme models.Theme
	err := r.db.GetContext(ctx, &theme, `SELECT `+themeColumns+` FROM themes ORDER BY id LIMIT 1`)
	if errors.Is(err, sql.ErrNoRows) {
		err = r.db.QueryRowxContext(ctx, `INSERT INTO themes DEFAULT VALUES RETURNING `+themeColumns).StructScan(&theme)
	}
	return theme, err
}

// UpdateTheme overwrites the theme row with the given configuration.
func (r *ThemeRepo) UpdateTheme(ctx context.Context, theme models.Theme) (models.Theme, error) {
	var updated models.Theme
	err := r.db.QueryRowxContext(ctx, `UPDATE themes SET name=$2, primary_color=$3, secondary_color=$4,
        background=$5, font=$6, effects=$7, upside_down=$8, updated_at=NOW() WHERE id=$1 RETURNING `+themeColumns,
		theme.ID, theme.Name, theme.PrimaryColor, theme.SecondaryColor, theme.Background, theme.Font, theme.Effects, theme.UpsideDown).
		StructScan(&updated)
	return updated, err
}
