package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"campus-flow/internal/auth"
	"campus-flow/internal/models"
	"campus-flow/internal/repositories"
	"campus-flow/internal/telemetry"
)

// AuthHandler manages signup, login and the current-user endpoint.
type AuthHandler struct {
	users  repositories.UserRepository
	tokens *auth.Tokens
	audit  *telemetry.AuditEmitter
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(users repositories.UserRepository, tokens *auth.Tokens, audit *telemetry.AuditEmitter) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens, audit: audit}
}

// Signup registers a new account and returns a token for it.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=6"`
		Role     string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !models.ValidRole(req.Role) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid role"})
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not process password"})
		return
	}

	user, err := h.users.CreateUser(c.Request.Context(), req.Name, req.Email, hash, req.Role)
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateEmail) {
			c.JSON(http.StatusConflict, gin.H{"error": "email is already registered"})
			return
		}
		h.emitAudit(c, "ERROR", "internal error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create user"})
		return
	}

	token, err := h.tokens.Issue(user.ID, user.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue token"})
		return
	}

	h.emitAudit(c, "INFO", "User signed up")
	c.JSON(http.StatusCreated, gin.H{"token": token, "user": user})
}

// Login exchanges credentials for a token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.GetUserByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load user"})
		return
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		h.emitAudit(c, "ERROR", "invalid credentials")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, err := h.tokens.Issue(user.ID, user.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue token"})
		return
	}

	h.emitAudit(c, "INFO", "User logged in")
	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

// Me returns the authenticated user.
func (h *AuthHandler) Me(c *gin.Context) {
	userID := c.GetInt("userID")

	user, err := h.users.GetUser(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load user"})
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) emitAudit(c *gin.Context, level, text string) {
	if h.audit == nil {
		return
	}
	h.audit.Emit(c.Request.Context(), level, text, requestIDFromContext(c), userIDFromContext(c))
}
