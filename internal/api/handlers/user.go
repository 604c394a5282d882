package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/logstore/core/internal/api/middleware"
	"github.com/logstore/core/internal/database/models"
	"github.com/logstore/core/internal/services"
)

// UserHandler handles account related requests
type UserHandler struct {
	userService *services.UserService
	logger      *slog.Logger
}

// NewUserHandler creates a new UserHandler instance
func NewUserHandler(userService *services.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		logger:      logger.With("source", "users"),
	}
}

// UserProfileResponse represents the user profile response
type UserProfileResponse struct {
	ID        uint   `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	CreatedAt int64  `json:"created_at"`
}

// ToProfileResponse converts a User model to UserProfileResponse
func ToProfileResponse(user *models.User) UserProfileResponse {
	return UserProfileResponse{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		CreatedAt: user.CreatedAt.Unix(),
	}
}

// Register creates a new account
// POST /api/users
func (h *UserHandler) Register(c *gin.Context) {
	var req services.NewUserInput
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSONWithDetails(c, http.StatusNotAcceptable, "VALIDATION_ERROR", "Invalid request body", err.Error())
		return
	}

	user, err := h.userService.CreateUser(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    ToProfileResponse(user),
	})
}

// DeleteAccount soft-deletes the caller's account
// DELETE /api/users/me
func (h *UserHandler) DeleteAccount(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		unauthenticated(c)
		return
	}

	if err := h.userService.DeleteUser(c.Request.Context(), userID); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Account deleted successfully",
	})
}

// RestoreAccount brings back a soft-deleted account. It runs behind
// RestoreCredentialsMiddleware and RestoreTokenMiddleware.
// POST /api/users/restore
func (h *UserHandler) RestoreAccount(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		unauthenticated(c)
		return
	}

	if err := h.userService.RestoreUser(c.Request.Context(), userID); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Account restored successfully",
	})
}
