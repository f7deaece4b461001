package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/internal/models"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/pkg/jwt"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/pkg/logger"
)

func init() {
	// Set Gin to test mode
	gin.SetMode(gin.TestMode)

	// Initialize logger for tests
	if err := logger.Initialize(logger.Config{
		Level:       "debug",
		Environment: "development",
	}); err != nil {
		panic(err)
	}
}

// stubProfileStore serves a fixed set of profiles keyed by ID.
type stubProfileStore struct {
	profiles map[uuid.UUID]*models.Profile
}

func (s *stubProfileStore) Create(ctx context.Context, p *models.Profile) error { return nil }

func (s *stubProfileStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	if p, ok := s.profiles[id]; ok {
		return p, nil
	}
	return nil, pgx.ErrNoRows
}

func (s *stubProfileStore) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	return nil, pgx.ErrNoRows
}

func (s *stubProfileStore) Update(ctx context.Context, id uuid.UUID, fullName, bio string) error {
	return nil
}

func (s *stubProfileStore) UpdateAvatar(ctx context.Context, id uuid.UUID, avatarURL string) error {
	return nil
}

func newAuthFixture(t *testing.T) (*jwt.TokenManager, *models.Profile, *stubProfileStore) {
	t.Helper()

	profile := &models.Profile{
		ID:       uuid.New(),
		Email:    "ana@example.com",
		FullName: "Ana Torres",
		Role:     models.RoleCreator,
	}
	store := &stubProfileStore{
		profiles: map[uuid.UUID]*models.Profile{profile.ID: profile},
	}
	tm := jwt.NewTokenManager("test-secret", "test-issuer", 1)

	return tm, profile, store
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	tm, profile, store := newAuthFixture(t)

	token, err := tm.GenerateToken(profile.ID.String(), profile.Email, profile.FullName)
	require.NoError(t, err)

	var caller *models.Profile
	router := gin.New()
	router.Use(AuthMiddleware(tm, store))
	router.GET("/test", func(c *gin.Context) {
		caller, err = GetCaller(c)
		require.NoError(t, err)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, caller)
	assert.Equal(t, profile.ID, caller.ID)
	assert.Equal(t, models.RoleCreator, caller.Role)
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	tm, _, store := newAuthFixture(t)

	handlerCalled := false
	router := gin.New()
	router.Use(AuthMiddleware(tm, store))
	router.GET("/test", func(c *gin.Context) {
		handlerCalled = true
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/test", nil)

	router.ServeHTTP(w, req)

	assert.False(t, handlerCalled, "Handler should not be called when token is missing")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Unauthorized: Invalid token")
}

func TestAuthMiddleware_MalformedHeader(t *testing.T) {
	tm, profile, store := newAuthFixture(t)

	token, err := tm.GenerateToken(profile.ID.String(), profile.Email, profile.FullName)
	require.NoError(t, err)

	handlerCalled := false
	router := gin.New()
	router.Use(AuthMiddleware(tm, store))
	router.GET("/test", func(c *gin.Context) {
		handlerCalled = true
		c.Status(http.StatusOK)
	})

	// Token without the Bearer scheme
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", token)

	router.ServeHTTP(w, req)

	assert.False(t, handlerCalled, "Handler should not be called for a malformed header")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	tm, _, store := newAuthFixture(t)

	handlerCalled := false
	router := gin.New()
	router.Use(AuthMiddleware(tm, store))
	router.GET("/test", func(c *gin.Context) {
		handlerCalled = true
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")

	router.ServeHTTP(w, req)

	assert.False(t, handlerCalled, "Handler should not be called for an invalid token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Unauthorized: Invalid token")
}

func TestAuthMiddleware_WrongSigningSecret(t *testing.T) {
	tm, profile, store := newAuthFixture(t)

	otherManager := jwt.NewTokenManager("other-secret", "test-issuer", 1)
	token, err := otherManager.GenerateToken(profile.ID.String(), profile.Email, profile.FullName)
	require.NoError(t, err)

	handlerCalled := false
	router := gin.New()
	router.Use(AuthMiddleware(tm, store))
	router.GET("/test", func(c *gin.Context) {
		handlerCalled = true
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	router.ServeHTTP(w, req)

	assert.False(t, handlerCalled, "Handler should not be called for a token signed with the wrong secret")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_UnknownUser(t *testing.T) {
	tm, _, store := newAuthFixture(t)

	// Valid token for a user with no profile row
	token, err := tm.GenerateToken(uuid.NewString(), "ghost@example.com", "Ghost")
	require.NoError(t, err)

	handlerCalled := false
	router := gin.New()
	router.Use(AuthMiddleware(tm, store))
	router.GET("/test", func(c *gin.Context) {
		handlerCalled = true
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	router.ServeHTTP(w, req)

	assert.False(t, handlerCalled, "Handler should not be called when the caller has no profile")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetCaller_NotSet(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	caller, err := GetCaller(c)

	assert.Nil(t, caller)
	assert.ErrorIs(t, err, ErrCallerNotFound)
}
