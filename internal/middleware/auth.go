package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/internal/models"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/internal/repository"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/pkg/jwt"
)

const (
	// AuthHeaderPrefix is the expected Authorization header scheme
	AuthHeaderPrefix = "Bearer "

	// CallerContextKey is the key used to store the caller profile in context
	CallerContextKey = "caller_profile"
)

var (
	ErrCallerNotFound = errors.New("caller not found in context")
	ErrInvalidCaller  = errors.New("invalid caller type")
)

// AuthMiddleware validates the bearer access token and loads the caller's
// profile into the request context. Tokens are minted by the identity gateway
// with the user UUID as subject.
func AuthMiddleware(tokenManager *jwt.TokenManager, profiles repository.ProfileStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			_ = c.Error(fmt.Errorf("missing bearer token")) //nolint:errcheck
			rejectUnauthorized(c)
			return
		}

		claims, err := tokenManager.ValidateToken(token)
		if err != nil {
			_ = c.Error(fmt.Errorf("invalid access token: %w", err)) //nolint:errcheck
			rejectUnauthorized(c)
			return
		}

		userID, err := uuid.Parse(claims.Subject)
		if err != nil {
			_ = c.Error(fmt.Errorf("invalid token subject: %w", err)) //nolint:errcheck
			rejectUnauthorized(c)
			return
		}

		profile, err := profiles.GetByID(c.Request.Context(), userID)
		if err != nil {
			_ = c.Error(fmt.Errorf("failed to load caller profile: %w", err)) //nolint:errcheck
			rejectUnauthorized(c)
			return
		}

		c.Set(CallerContextKey, profile)
		c.Next()
	}
}

// GetCaller extracts the authenticated caller's profile from context
func GetCaller(c *gin.Context) (*models.Profile, error) {
	val, exists := c.Get(CallerContextKey)
	if !exists {
		return nil, ErrCallerNotFound
	}

	profile, ok := val.(*models.Profile)
	if !ok {
		return nil, ErrInvalidCaller
	}

	return profile, nil
}

// bearerToken extracts the token from the Authorization header
func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}

	if !strings.HasPrefix(header, AuthHeaderPrefix) {
		return "", false
	}

	token := strings.TrimSpace(strings.TrimPrefix(header, AuthHeaderPrefix))
	if token == "" {
		return "", false
	}

	return token, true
}

func rejectUnauthorized(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error":   "Unauthorized: Invalid token",
	})
	c.Abort()
}
