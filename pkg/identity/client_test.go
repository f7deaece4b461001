package identity

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	if err := logger.Initialize(logger.Config{
		Level:       "debug",
		Environment: "development",
	}); err != nil {
		panic(err)
	}
}

// stubHTTPClient answers every request with a canned response
type stubHTTPClient struct {
	status   int
	body     string
	err      error
	lastReq  *http.Request
	lastBody []byte
}

func (s *stubHTTPClient) Do(req *http.Request) (*http.Response, error) {
	s.lastReq = req
	if req.Body != nil {
		s.lastBody, _ = io.ReadAll(req.Body) //nolint:errcheck
	}
	if s.err != nil {
		return nil, s.err
	}
	return &http.Response{
		StatusCode: s.status,
		Body:       io.NopCloser(bytes.NewBufferString(s.body)),
	}, nil
}

func TestNewClient_RequiresConfig(t *testing.T) {
	_, err := NewClient("", "key", &stubHTTPClient{})
	assert.Error(t, err)

	_, err = NewClient("https://auth.example.com", "", &stubHTTPClient{})
	assert.Error(t, err)
}

func TestAdminCreateUser_Success(t *testing.T) {
	stub := &stubHTTPClient{
		status: http.StatusOK,
		body:   `{"id":"d8f1c2aa-0000-4000-8000-111122223333","email":"ana@example.com"}`,
	}
	client, err := NewClient("https://auth.example.com", "service-key", stub)
	require.NoError(t, err)

	user, err := client.AdminCreateUser(context.Background(), CreateUserParams{
		Email:        "ana@example.com",
		Password:     "irrelevant",
		EmailConfirm: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "d8f1c2aa-0000-4000-8000-111122223333", user.ID)
	assert.Equal(t, "ana@example.com", user.Email)
	assert.Equal(t, "Bearer service-key", stub.lastReq.Header.Get("Authorization"))
	assert.Contains(t, string(stub.lastBody), `"email_confirm":true`)
}

func TestAdminCreateUser_EmailExists(t *testing.T) {
	stub := &stubHTTPClient{
		status: http.StatusUnprocessableEntity,
		body:   `{"msg":"A user with this email address has already been registered"}`,
	}
	client, err := NewClient("https://auth.example.com", "service-key", stub)
	require.NoError(t, err)

	_, err = client.AdminCreateUser(context.Background(), CreateUserParams{Email: "dup@example.com", Password: "x"})
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestAdminCreateUser_GatewayError(t *testing.T) {
	stub := &stubHTTPClient{
		status: http.StatusInternalServerError,
		body:   `{"msg":"database unavailable"}`,
	}
	client, err := NewClient("https://auth.example.com", "service-key", stub)
	require.NoError(t, err)

	_, err = client.AdminCreateUser(context.Background(), CreateUserParams{Email: "x@example.com", Password: "x"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrEmailExists)
	assert.Contains(t, err.Error(), "database unavailable")
}

func TestFindUserByEmail_Found(t *testing.T) {
	stub := &stubHTTPClient{
		status: http.StatusOK,
		body:   `{"users":[{"id":"aaaa1111-0000-4000-8000-222233334444","email":"Luis@Example.com"}]}`,
	}
	client, err := NewClient("https://auth.example.com", "service-key", stub)
	require.NoError(t, err)

	user, err := client.FindUserByEmail(context.Background(), "luis@example.com")
	require.NoError(t, err)
	assert.Equal(t, "aaaa1111-0000-4000-8000-222233334444", user.ID)
}

func TestFindUserByEmail_NotFound(t *testing.T) {
	stub := &stubHTTPClient{
		status: http.StatusOK,
		body:   `{"users":[]}`,
	}
	client, err := NewClient("https://auth.example.com", "service-key", stub)
	require.NoError(t, err)

	_, err = client.FindUserByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestSendRecoveryEmail(t *testing.T) {
	stub := &stubHTTPClient{status: http.StatusOK, body: `{}`}
	client, err := NewClient("https://auth.example.com", "service-key", stub)
	require.NoError(t, err)

	err = client.SendRecoveryEmail(context.Background(), "ana@example.com", "https://aulanexo.com/reset-password")
	require.NoError(t, err)
	assert.Contains(t, stub.lastReq.URL.String(), "redirect_to=https%3A%2F%2Faulanexo.com%2Freset-password")
}

func TestIsEmailExists(t *testing.T) {
	assert.True(t, isEmailExists(422, "A user with this email address has already been registered"))
	assert.True(t, isEmailExists(400, "Email already exists"))
	assert.False(t, isEmailExists(500, "already registered"))
	assert.False(t, isEmailExists(422, "password too weak"))
}

func TestFindUserByEmail_TransportError(t *testing.T) {
	stub := &stubHTTPClient{err: errors.New("connection refused")}
	client, err := NewClient("https://auth.example.com", "service-key", stub)
	require.NoError(t, err)

	_, err = client.FindUserByEmail(context.Background(), "x@example.com")
	assert.Error(t, err)
}
