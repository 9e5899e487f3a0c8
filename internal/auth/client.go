// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

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
)

const (
	// DefaultTimeout bounds a single API request.
	DefaultTimeout = 15 * time.Second

	// MaxResponseSize caps how much of a response body is read.
	MaxResponseSize = 1 << 20
)

var (
	// ErrInvalidBaseURL is returned when the API base URL cannot be parsed.
	ErrInvalidBaseURL = errors.New("invalid API base URL")

	// ErrMalformedResponse is returned when a 2xx response has an unexpected shape.
	ErrMalformedResponse = errors.New("malformed API response")
)

// APIError is a non-2xx response from the backend.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("API error (HTTP %d)", e.StatusCode)
	}
	return fmt.Sprintf("API error (HTTP %d): %s", e.StatusCode, e.Message)
}

// IsUnauthorized reports whether err is a 401 from the backend.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// Client talks to the task backend. It is safe for concurrent use.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
}

// NewClient creates a client for baseURL, e.g. http://localhost:5001/api.
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, baseURL)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// BaseURL returns the API root.
func (c *Client) BaseURL() string { return c.baseURL.String() }

// Do sends a JSON request to path below the base URL. A non-empty token is
// sent as a bearer credential. When out is non-nil the response body is
// decoded into it.
func (c *Client) Do(ctx context.Context, method, path, token string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Message: errorMessage(data)}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

// errorMessage extracts {message} or {error} from an error body.
func errorMessage(data []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	return strings.TrimSpace(string(data))
}

// =============================================================================
// AUTH ENDPOINTS
// =============================================================================

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Username      string `json:"username"`
	Password      string `json:"password"`
	ExpiresInMins int    `json:"expiresInMins,omitempty"`
}

// SignupRequest is the body of POST /auth/register.
type SignupRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type authResponse struct {
	User         *User  `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

func (r authResponse) credentials() (Credentials, error) {
	if r.User == nil || r.AccessToken == "" {
		return Credentials{}, fmt.Errorf("%w: missing user or access token", ErrMalformedResponse)
	}
	return Credentials{User: *r.User, AccessToken: r.AccessToken, RefreshToken: r.RefreshToken}, nil
}

// Login exchanges a username and password for credentials.
func (c *Client) Login(ctx context.Context, req LoginRequest) (Credentials, error) {
	var resp authResponse
	if err := c.Do(ctx, http.MethodPost, "/auth/login", "", req, &resp); err != nil {
		return Credentials{}, err
	}
	return resp.credentials()
}

// Register creates an account and returns its credentials.
func (c *Client) Register(ctx context.Context, req SignupRequest) (Credentials, error) {
	var resp authResponse
	if err := c.Do(ctx, http.MethodPost, "/auth/register", "", req, &resp); err != nil {
		return Credentials{}, err
	}
	return resp.credentials()
}

// Me returns the user owning accessToken.
func (c *Client) Me(ctx context.Context, accessToken string) (User, error) {
	var resp authResponse
	if err := c.Do(ctx, http.MethodGet, "/auth/me", accessToken, nil, &resp); err != nil {
		return User{}, err
	}
	if resp.User == nil {
		return User{}, fmt.Errorf("%w: missing user", ErrMalformedResponse)
	}
	return *resp.User, nil
}

// Refresh trades a refresh token for a new token pair. The returned
// credentials carry no user.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (Credentials, error) {
	var resp authResponse
	body := map[string]string{"refreshToken": refreshToken}
	if err := c.Do(ctx, http.MethodPost, "/auth/refresh", "", body, &resp); err != nil {
		return Credentials{}, err
	}
	if resp.AccessToken == "" {
		return Credentials{}, fmt.Errorf("%w: missing access token", ErrMalformedResponse)
	}
	return Credentials{AccessToken: resp.AccessToken, RefreshToken: resp.RefreshToken}, nil
}
