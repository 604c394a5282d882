package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken indicates the JWT token is invalid
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired indicates the JWT token has expired
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenNotFound indicates no token was provided
	ErrTokenNotFound = errors.New("token not found")
)

const (
	// AuthorizationHeader is the header name for JWT token
	AuthorizationHeader = "Authorization"
	// BearerPrefix is the prefix for Bearer token
	BearerPrefix = "Bearer "
	// DefaultTokenExpiry is the default JWT token expiry duration
	DefaultTokenExpiry = 24 * time.Hour
	// TokenIssuer is written to the iss claim of every token
	TokenIssuer = "logstore"

	userIDKey = "user_id"
)

// JWTClaims represents the claims in a JWT token
type JWTClaims struct {
	UserID uint `json:"user_id"`
	jwt.RegisteredClaims
}

// JWTManager handles JWT token generation and validation
type JWTManager struct {
	secretKey   []byte
	tokenExpiry time.Duration
	now         func() time.Time
}

// NewJWTManager creates a new JWTManager instance
func NewJWTManager(secretKey string, tokenExpiry time.Duration) *JWTManager {
	if tokenExpiry == 0 {
		tokenExpiry = DefaultTokenExpiry
	}
	return &JWTManager{
		secretKey:   []byte(secretKey),
		tokenExpiry: tokenExpiry,
		now:         time.Now,
	}
}

// GenerateToken generates a new JWT token for a user
func (m *JWTManager) GenerateToken(userID uint) (string, int64, error) {
	now := m.now()
	expiresAt := now.Add(m.tokenExpiry)

	claims := &JWTClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    TokenIssuer,
			Subject:   strconv.FormatUint(uint64(userID), 10),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(m.secretKey)
	if err != nil {
		return "", 0, err
	}

	return tokenString, expiresAt.Unix(), nil
}

// ValidateToken validates a JWT token and returns the claims.
// It has no side effects.
func (m *JWTManager) ValidateToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		// Validate signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secretKey, nil
	}, jwt.WithIssuer(TokenIssuer), jwt.WithTimeFunc(m.now))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid || claims.UserID == 0 {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// ParseBearer extracts the token from an "Authorization: Bearer <token>" value
func ParseBearer(header string) (string, error) {
	if header == "" {
		return "", ErrTokenNotFound
	}
	if !strings.HasPrefix(header, BearerPrefix) {
		return "", ErrInvalidToken
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, BearerPrefix))
	if token == "" {
		return "", ErrTokenNotFound
	}
	return token, nil
}

// JWTMiddleware validates the bearer token and resolves the caller's user ID
// for downstream handlers
func JWTMiddleware(jwtManager *JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := authorize(jwtManager, c.GetHeader(AuthorizationHeader))
		if err != nil {
			abortUnauthorized(c, err)
			return
		}

		c.Set(userIDKey, claims.UserID)
		c.Next()
	}
}

func authorize(jwtManager *JWTManager, header string) (*JWTClaims, error) {
	tokenString, err := ParseBearer(header)
	if err != nil {
		return nil, err
	}
	return jwtManager.ValidateToken(tokenString)
}

func abortUnauthorized(c *gin.Context, err error) {
	message := "Invalid token"
	switch {
	case errors.Is(err, ErrTokenNotFound):
		message = "Token not provided"
	case errors.Is(err, ErrTokenExpired):
		message = "Token has expired"
	}
	abortWithError(c, http.StatusUnauthorized, "AUTH_FAILED", message)
}

// GetUserIDFromContext retrieves the user ID resolved by the auth gate
func GetUserIDFromContext(c *gin.Context) (uint, bool) {
	userID, exists := c.Get(userIDKey)
	if !exists {
		return 0, false
	}
	id, ok := userID.(uint)
	return id, ok && id != 0
}

func abortWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}
