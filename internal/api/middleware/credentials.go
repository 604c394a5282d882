package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/logstore/core/internal/database/models"
	"github.com/logstore/core/internal/services"
)

const (
	// maxCredentialsBody caps the login body size
	maxCredentialsBody = 4 << 10

	restoreTokenKey = "restore_token"
)

// Credentials is the email/password pair submitted to authenticate
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate will run validation rules
func (r Credentials) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

// CredentialVerifier checks a credential pair against stored users
type CredentialVerifier interface {
	VerifyCredentials(ctx context.Context, email, password string) (*models.User, error)
	VerifyCredentialsIncludingDeleted(ctx context.Context, email, password string) (*models.User, error)
}

// BindCredentials reads an {email, password} body. Any other field is
// rejected before the shape is validated, so no lookup ever runs on a
// polluted request. On failure the request is aborted and false is returned.
func BindCredentials(c *gin.Context) (*Credentials, bool) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxCredentialsBody))
	if err != nil {
		abortWithError(c, http.StatusNotAcceptable, "VALIDATION_ERROR", "Invalid request body")
		return nil, false
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		abortWithError(c, http.StatusNotAcceptable, "VALIDATION_ERROR", "Invalid request body")
		return nil, false
	}
	for key := range fields {
		if key != "email" && key != "password" {
			abortWithError(c, http.StatusNotAcceptable, "TOO_MANY_FIELDS", "Only email and password are accepted")
			return nil, false
		}
	}

	var creds Credentials
	if err := json.Unmarshal(body, &creds); err != nil {
		abortWithError(c, http.StatusNotAcceptable, "VALIDATION_ERROR", "Data values are not valid")
		return nil, false
	}
	if err := creds.Validate(); err != nil {
		c.AbortWithStatusJSON(http.StatusNotAcceptable, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Data values are not valid",
				"details": services.NewValidationError(err).Fields,
			},
		})
		return nil, false
	}

	return &creds, true
}

// AbortWithCredentialError converts a credential verification failure into
// its terminal response
func AbortWithCredentialError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrUserNotFound):
		abortWithError(c, http.StatusBadRequest, "USER_NOT_FOUND", "User not found")
	case errors.Is(err, services.ErrInvalidCredentials):
		abortWithError(c, http.StatusUnauthorized, "AUTH_FAILED", "Incorrect password")
	default:
		slog.Error("credential verification failed", "source", "auth", "error", err.Error())
		abortWithError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	}
}

// RestoreCredentialsMiddleware authenticates an email/password pair against
// all users, soft-deleted ones included. It does not resolve an identity; it
// leaves a bearer artifact for RestoreTokenMiddleware.
func RestoreCredentialsMiddleware(verifier CredentialVerifier, jwtManager *JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		creds, ok := BindCredentials(c)
		if !ok {
			return
		}

		user, err := verifier.VerifyCredentialsIncludingDeleted(c.Request.Context(), creds.Email, creds.Password)
		if err != nil {
			AbortWithCredentialError(c, err)
			return
		}

		token, _, err := jwtManager.GenerateToken(user.ID)
		if err != nil {
			slog.Error("token generation failed", "source", "auth", "error", err.Error())
			abortWithError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to generate token")
			return
		}

		c.Set(restoreTokenKey, BearerPrefix+token)
		c.Next()
	}
}

// RestoreTokenMiddleware consumes the artifact left by
// RestoreCredentialsMiddleware and resolves the user ID from it
func RestoreTokenMiddleware(jwtManager *JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := authorize(jwtManager, c.GetString(restoreTokenKey))
		if err != nil {
			abortUnauthorized(c, err)
			return
		}

		c.Set(userIDKey, claims.UserID)
		c.Next()
	}
}
