package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/logstore/core/internal/api/middleware"
	"github.com/logstore/core/internal/services"
)

// LoginResponse represents the login response
type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
}

// AuthHandler handles authentication related requests
type AuthHandler struct {
	userService *services.UserService
	jwtManager  *middleware.JWTManager
	logger      *slog.Logger
}

// NewAuthHandler creates a new AuthHandler instance
func NewAuthHandler(userService *services.UserService, jwtManager *middleware.JWTManager, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		jwtManager:  jwtManager,
		logger:      logger.With("source", "auth"),
	}
}

// Login handles user login requests
// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	creds, ok := middleware.BindCredentials(c)
	if !ok {
		return
	}

	user, err := h.userService.VerifyCredentials(c.Request.Context(), creds.Email, creds.Password)
	if err != nil {
		h.logger.Warn("login failed", "client_ip", c.ClientIP(), "error", err.Error())
		middleware.AbortWithCredentialError(c, err)
		return
	}

	h.issueToken(c, user.ID)
	h.logger.Info("user logged in", "user_id", user.ID, "client_ip", c.ClientIP())
}

// RefreshToken issues a fresh token for an authenticated user
// POST /api/auth/refresh
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		unauthenticated(c)
		return
	}

	// Tokens of soft-deleted accounts are not renewed
	if _, err := h.userService.GetUserByID(c.Request.Context(), userID); err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.issueToken(c, userID)
}

func (h *AuthHandler) issueToken(c *gin.Context, userID uint) {
	token, expiresAt, err := h.jwtManager.GenerateToken(userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": LoginResponse{
			Token:     token,
			ExpiresAt: expiresAt,
		},
	})
}

// GetCurrentUser returns the current authenticated user info
// GET /api/auth/me
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		unauthenticated(c)
		return
	}

	user, err := h.userService.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    ToProfileResponse(user),
	})
}
