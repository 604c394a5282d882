package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"unicode"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/logstore/core/internal/services"
)

// respondError maps a service error to the single status table used by every
// handler. Unexpected errors are logged and never leak their cause.
func respondError(c *gin.Context, logger *slog.Logger, err error) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		errorJSONWithDetails(c, http.StatusNotAcceptable, "VALIDATION_ERROR", "Invalid data", verr.Fields)
	case errors.Is(err, services.ErrValidation):
		errorJSON(c, http.StatusNotAcceptable, "VALIDATION_ERROR", "Invalid data")
	case errors.Is(err, services.ErrEmptyResult):
		c.Status(http.StatusNoContent)
	case errors.Is(err, services.ErrNotFound):
		errorJSON(c, http.StatusNotFound, "NOT_FOUND", sentence(err.Error()))
	case errors.Is(err, services.ErrUserAlreadyExists):
		errorJSON(c, http.StatusConflict, "CONFLICT", "User already exists")
	case errors.Is(err, services.ErrInvalidCredentials):
		errorJSON(c, http.StatusUnauthorized, "AUTH_FAILED", "Incorrect password")
	default:
		logger.Error("request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"error", err.Error(),
		)
		errorJSON(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	}
}

func errorJSON(c *gin.Context, status int, code, message string) {
	errorJSONWithDetails(c, status, code, message, nil)
}

// errorJSONWithDetails writes the error envelope; details is omitted when nil
func errorJSONWithDetails(c *gin.Context, status int, code, message string, details interface{}) {
	body := gin.H{
		"code":    code,
		"message": message,
	}
	if details != nil {
		body["details"] = details
	}
	c.JSON(status, gin.H{
		"success": false,
		"error":   body,
	})
}

func unauthenticated(c *gin.Context) {
	errorJSON(c, http.StatusUnauthorized, "AUTH_FAILED", "User not authenticated")
}

// sentence upper-cases the first letter of an error message
func sentence(msg string) string {
	r, size := utf8.DecodeRuneInString(msg)
	if r == utf8.RuneError {
		return msg
	}
	return string(unicode.ToUpper(r)) + msg[size:]
}
