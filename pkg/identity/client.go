package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/pkg/httpclient"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/pkg/logger"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/pkg/metrics"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/pkg/retry"
	"go.uber.org/zap"
)

var (
	// ErrEmailExists indicates the address is already registered with the gateway
	ErrEmailExists = errors.New("email address is already registered")

	// ErrUserNotFound indicates no identity matches the lookup
	ErrUserNotFound = errors.New("user not found")
)

// User is the subset of the gateway's user record the platform cares about
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// CreateUserParams are the inputs for administrative user creation
type CreateUserParams struct {
	Email        string                 `json:"email"`
	Password     string                 `json:"password"`
	EmailConfirm bool                   `json:"email_confirm"`
	UserMetadata map[string]interface{} `json:"user_metadata,omitempty"`
}

// Gateway is the administrative surface of the external identity provider.
// Defined as an interface so services can be tested against a mock.
type Gateway interface {
	// AdminCreateUser creates a pre-confirmed identity. Returns ErrEmailExists
	// when the address is already registered.
	AdminCreateUser(ctx context.Context, params CreateUserParams) (*User, error)

	// FindUserByEmail resolves an existing identity via the admin listing API.
	// Returns ErrUserNotFound when no identity matches.
	FindUserByEmail(ctx context.Context, email string) (*User, error)

	// SendRecoveryEmail triggers the gateway's password-reset email flow,
	// redirecting the user to redirectTo after the reset.
	SendRecoveryEmail(ctx context.Context, email, redirectTo string) error
}

// Client talks to the identity gateway's REST admin API
type Client struct {
	baseURL        string
	serviceRoleKey string
	httpClient     httpclient.Client
}

var _ Gateway = (*Client)(nil)

// NewClient creates a new identity gateway client
func NewClient(baseURL, serviceRoleKey string, httpClient httpclient.Client) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("empty identity gateway base URL provided")
	}
	if serviceRoleKey == "" {
		return nil, fmt.Errorf("empty service role key provided")
	}

	logger.Info("Identity gateway client initialized",
		zap.String("base_url", baseURL))

	return &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		serviceRoleKey: serviceRoleKey,
		httpClient:     httpClient,
	}, nil
}

// gatewayError is the error envelope returned by the gateway
type gatewayError struct {
	Message   string `json:"msg"`
	Error     string `json:"error"`
	ErrorDesc string `json:"error_description"`
}

func (e *gatewayError) text() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.ErrorDesc != "":
		return e.ErrorDesc
	default:
		return e.Error
	}
}

// AdminCreateUser creates a pre-confirmed identity via POST /admin/users
func (c *Client) AdminCreateUser(ctx context.Context, params CreateUserParams) (*User, error) {
	start := time.Now()
	operation := "adminCreateUser"

	payload, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("failed to encode create user payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/admin/users", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build create user request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		recordMetrics(operation, "error", start)
		return nil, fmt.Errorf("identity gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		recordMetrics(operation, "error", start)
		return nil, fmt.Errorf("failed to read identity gateway response: %w", err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		var user User
		if err := json.Unmarshal(body, &user); err != nil {
			recordMetrics(operation, "error", start)
			return nil, fmt.Errorf("failed to decode created user: %w", err)
		}
		recordMetrics(operation, "success", start)
		return &user, nil
	}

	var gw gatewayError
	_ = json.Unmarshal(body, &gw) //nolint:errcheck // error text is best effort

	if isEmailExists(resp.StatusCode, gw.text()) {
		recordMetrics(operation, "email_exists", start)
		return nil, ErrEmailExists
	}

	recordMetrics(operation, "error", start)
	return nil, fmt.Errorf("identity gateway returned %d: %s", resp.StatusCode, gw.text())
}

// isEmailExists detects the gateway's already-registered rejection. The gateway
// answers 422 with a message naming the conflict; older versions answer 400.
func isEmailExists(status int, message string) bool {
	if status != http.StatusUnprocessableEntity && status != http.StatusBadRequest && status != http.StatusConflict {
		return false
	}
	lower := strings.ToLower(message)
	return strings.Contains(lower, "already registered") ||
		strings.Contains(lower, "already been registered") ||
		strings.Contains(lower, "already exists")
}

// FindUserByEmail resolves an existing identity via GET /admin/users?email=
func (c *Client) FindUserByEmail(ctx context.Context, email string) (*User, error) {
	operation := "findUserByEmail"

	// Lookups are read-only and safe to retry on transient gateway failures
	return retry.DoWithResult(ctx, lookupRetryConfig(), operation, func() (*User, error) {
		return c.findUserByEmail(ctx, email, operation)
	})
}

func (c *Client) findUserByEmail(ctx context.Context, email, operation string) (*User, error) {
	start := time.Now()

	endpoint := fmt.Sprintf("%s/admin/users?email=%s&per_page=1", c.baseURL, url.QueryEscape(email))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build user lookup request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		recordMetrics(operation, "error", start)
		return nil, fmt.Errorf("identity gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		recordMetrics(operation, "error", start)
		return nil, fmt.Errorf("failed to read identity gateway response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var gw gatewayError
		_ = json.Unmarshal(body, &gw) //nolint:errcheck
		recordMetrics(operation, "error", start)
		return nil, fmt.Errorf("identity gateway returned %d: %s", resp.StatusCode, gw.text())
	}

	var listing struct {
		Users []User `json:"users"`
	}
	if err := json.Unmarshal(body, &listing); err != nil {
		recordMetrics(operation, "error", start)
		return nil, fmt.Errorf("failed to decode user listing: %w", err)
	}

	for _, u := range listing.Users {
		if strings.EqualFold(u.Email, email) {
			recordMetrics(operation, "success", start)
			return &u, nil
		}
	}

	recordMetrics(operation, "not_found", start)
	return nil, ErrUserNotFound
}

// SendRecoveryEmail triggers the password-reset flow via POST /recover
func (c *Client) SendRecoveryEmail(ctx context.Context, email, redirectTo string) error {
	start := time.Now()
	operation := "sendRecoveryEmail"

	payload, err := json.Marshal(map[string]string{"email": email})
	if err != nil {
		return fmt.Errorf("failed to encode recovery payload: %w", err)
	}

	endpoint := c.baseURL + "/recover"
	if redirectTo != "" {
		endpoint += "?redirect_to=" + url.QueryEscape(redirectTo)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build recovery request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		recordMetrics(operation, "error", start)
		return fmt.Errorf("identity gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) //nolint:errcheck
		var gw gatewayError
		_ = json.Unmarshal(body, &gw) //nolint:errcheck
		recordMetrics(operation, "error", start)
		return fmt.Errorf("identity gateway returned %d: %s", resp.StatusCode, gw.text())
	}

	recordMetrics(operation, "success", start)
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.serviceRoleKey)
	req.Header.Set("apikey", c.serviceRoleKey)
	req.Header.Set("Content-Type", "application/json")
}

// lookupRetryConfig retries transient failures only; a definitive not-found
// answer must come back immediately.
func lookupRetryConfig() retry.Config {
	config := retry.IdentityConfig()
	config.RetryableErrors = func(err error) bool {
		return !errors.Is(err, ErrUserNotFound)
	}
	return config
}

func recordMetrics(operation, status string, start time.Time) {
	duration := metrics.MeasureDuration(start)
	metrics.IdentityRequestDuration.WithLabelValues(operation, status).Observe(duration)
	metrics.IdentityRequestTotal.WithLabelValues(operation, status).Inc()
}
