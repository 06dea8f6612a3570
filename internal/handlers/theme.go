package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"campus-flow/internal/models"
	"campus-flow/internal/repositories"
)

// ThemeHandler serves the single UI theme row.
type ThemeHandler struct {
	themes repositories.ThemeRepository
}

// NewThemeHandler constructs a ThemeHandler.
func NewThemeHandler(themes repositories.ThemeRepository) *ThemeHandler {
	return &ThemeHandler{themes: themes}
}

// GetTheme returns the current theme, seeding defaults on first read.
func (h *ThemeHandler) GetTheme(c *gin.Context) {
	theme, err := h.themes.GetTheme(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load theme"})
		return
	}
	c.JSON(http.StatusOK, theme)
}

// UpdateTheme applies a partial update to the theme. Admin only.
func (h *ThemeHandler) UpdateTheme(c *gin.Context) {
	var req struct {
		Name           *string  `json:"name"`
		PrimaryColor   *string  `json:"primary_color"`
		SecondaryColor *string  `json:"secondary_color"`
		Background     *string  `json:"background"`
		Font           *string  `json:"font"`
		Effects        []string `json:"effects"`
		UpsideDown     *bool    `json:"upside_down"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	theme, err := h.themes.GetTheme(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load theme"})
		return
	}

	if req.Name != nil {
		theme.Name = *req.Name
	}
	if req.PrimaryColor != nil {
		theme.PrimaryColor = *req.PrimaryColor
	}
	if req.SecondaryColor != nil {
		theme.SecondaryColor = *req.SecondaryColor
	}
	if req.Background != nil {
		theme.Background = *req.Background
	}
	if req.Font != nil {
		if !models.ValidFont(*req.Font) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid font"})
			return
		}
		theme.Font = *req.Font
	}
	if req.Effects != nil {
		theme.Effects = req.Effects
	}
	if req.UpsideDown != nil {
		theme.UpsideDown = *req.UpsideDown
	}

	updated, err := h.themes.UpdateTheme(c.Request.Context(), theme)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update theme"})
		return
	}

	c.JSON(http.StatusOK, updated)
}
