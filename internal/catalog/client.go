package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/glefebvre/catalog-console/internal/errors"
	"github.com/glefebvre/catalog-console/internal/logger"
)

const serviceName = "catalog"

// Client talks to the media catalog REST API. A Client without a token can
// only log in; use WithToken for authenticated calls.
type Client struct {
	baseURL    string
	token      string
	userLimit  int
	httpClient *http.Client
	retry      retryPolicy
	// shared by every WithToken copy
	breaker *breaker
}

// Config holds catalog client configuration
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	UserLimit int
	// RetryAttempts bounds how often a read is sent while the API is
	// unavailable. The default of 1 sends each call once. Writes are never
	// retried.
	RetryAttempts int
	// BreakerFailures consecutive unavailable answers stop all calls for
	// BreakerCooldown
	BreakerFailures int
	BreakerCooldown time.Duration
}

// Result is the status body returned by update endpoints
type Result struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Changed reports whether the API applied any change
func (r Result) Changed() bool {
	return r.Status != "no_changes"
}

// AuthStatus is the answer of the auth-check endpoint
type AuthStatus struct {
	Authenticated bool   `json:"authenticated"`
	User          string `json:"user"`
}

// New creates a new catalog client
func New(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.UserLimit <= 0 {
		cfg.UserLimit = 500
	}
	if cfg.RetryAttempts <= 0 {
		cfg.RetryAttempts = defaultRetryAttempts
	}

	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userLimit: cfg.UserLimit,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		retry: retryPolicy{
			attempts:       cfg.RetryAttempts,
			initialBackoff: defaultInitialBackoff,
			maxBackoff:     defaultMaxBackoff,
		},
		breaker: newBreaker(cfg.BreakerFailures, cfg.BreakerCooldown),
	}
}

// WithToken returns a copy of the client sending the given bearer token
func (c *Client) WithToken(token string) *Client {
	clone := *c
	clone.token = token
	return &clone
}

// Login exchanges operator credentials for a bearer token
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/login", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.ExternalServiceError(serviceName, "Failed to reach the catalog API", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return "", errors.RequestFailedError(resp.StatusCode, errorText(body, "Invalid credentials"))
	}

	var token struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return "", errors.ParseError("Invalid response from the catalog API", err)
	}
	if token.AccessToken == "" {
		return "", errors.MalformedDataError("Login response carries no token")
	}

	return token.AccessToken, nil
}

// AuthCheck verifies that the current token is accepted
func (c *Client) AuthCheck(ctx context.Context) (*AuthStatus, error) {
	var status AuthStatus
	if err := c.do(ctx, http.MethodGet, "/api/v1/auth-check", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// do sends a JSON request and decodes a JSON answer into out when non-nil
func (c *Client) do(ctx context.Context, method, endpoint string, body, out interface{}) error {
	raw, err := c.doRaw(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return errors.ParseError("Invalid response from the catalog API", err)
	}
	return nil
}

// doRaw sends a JSON request and returns the raw answer of a 2xx response
func (c *Client) doRaw(ctx context.Context, method, endpoint string, body interface{}) ([]byte, error) {
	return c.guarded(ctx, method, endpoint, func() ([]byte, error) {
		return c.send(ctx, method, endpoint, body)
	})
}

func (c *Client) send(ctx context.Context, method, endpoint string, body interface{}) ([]byte, error) {
	req, err := c.newRequest(ctx, method, endpoint, body)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			logger.AppLogger().WithFields(map[string]interface{}{
				"method":   method,
				"endpoint": endpoint,
			}).DebugContext(ctx, "catalog request cancelled")
			return nil, ctx.Err()
		}
		logger.AppLogger().WithFields(map[string]interface{}{
			"method":   method,
			"endpoint": endpoint,
		}).ErrorContext(ctx, "catalog request failed", err)
		return nil, errors.ExternalServiceError(serviceName, "Failed to reach the catalog API", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errors.ExternalServiceError(serviceName, "Failed to read the catalog API response", err)
	}

	logger.AppLogger().WithFields(map[string]interface{}{
		"method":      method,
		"endpoint":    endpoint,
		"status":      resp.StatusCode,
		"duration_ms": time.Since(started).Milliseconds(),
	}).DebugContext(ctx, "catalog request")

	if err := checkStatus(resp.StatusCode, data); err != nil {
		return nil, err
	}
	return data, nil
}

func (c *Client) newRequest(ctx context.Context, method, endpoint string, body interface{}) (*http.Request, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	return req, nil
}

// checkStatus maps a non-2xx answer to an application error. 401 means the
// session expired; other answers expose the body's detail or message.
func checkStatus(status int, body []byte) error {
	if status >= 200 && status <= 299 {
		return nil
	}

	switch status {
	case http.StatusUnauthorized:
		return errors.UnauthorizedError("Session expired. Please log in again.")
	case http.StatusNotFound:
		return errors.New(errors.CodeNotFound, errorText(body, "Not found")).
			WithStatus(status)
	default:
		return errors.RequestFailedError(status, errorText(body, fmt.Sprintf("Request failed with status %d", status)))
	}
}

// errorText extracts the operator-facing message from an error body
func errorText(body []byte, fallback string) string {
	var payload struct {
		Detail  json.RawMessage `json:"detail"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return fallback
	}

	var detail string
	if len(payload.Detail) > 0 && json.Unmarshal(payload.Detail, &detail) == nil && detail != "" {
		return detail
	}
	if payload.Message != "" {
		return payload.Message
	}
	return fallback
}
