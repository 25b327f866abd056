// Package identity talks to the Supabase Auth admin API.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	domainerrors "github.com/mymichiganlake/lakes-server/internal/errors"
)

const serviceName = "identity provider"

// Sentinel errors for admin API operations.
var (
	ErrNotConfigured = errors.New("identity: service role key not configured")
	ErrUserExists    = errors.New("identity: user already exists")
)

// Config holds admin client settings.
type Config struct {
	BaseURL        string
	ServiceRoleKey string
	Timeout        time.Duration
}

// Client is a Supabase Auth admin API client.
type Client struct {
	baseURL    string
	serviceKey string
	timeout    time.Duration
	http       *http.Client
	logger     *slog.Logger
}

// New creates a new admin client.
func New(cfg Config, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		serviceKey: cfg.ServiceRoleKey,
		timeout:    cfg.Timeout,
		http:       &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

// CreateUserParams describes a new identity account.
type CreateUserParams struct {
	Email    string
	Password string
	Username string
}

// User is the subset of the provider's user record the server needs.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type createUserRequest struct {
	Email        string         `json:"email"`
	Password     string         `json:"password"`
	EmailConfirm bool           `json:"email_confirm"`
	UserMetadata map[string]any `json:"user_metadata,omitempty"`
}

// providerError covers the error shapes GoTrue has used across versions.
type providerError struct {
	ErrorCode        string `json:"error_code"`
	Msg              string `json:"msg"`
	Message          string `json:"message"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func (e providerError) text() string {
	for _, s := range []string{e.Msg, e.Message, e.ErrorDescription, e.Error} {
		if s != "" {
			return s
		}
	}
	return ""
}

// CreateUser creates a confirmed account with the username in user_metadata.
// An address that is already registered yields a CONFLICT error.
func (c *Client) CreateUser(ctx context.Context, p CreateUserParams) (*User, error) {
	payload := createUserRequest{
		Email:        p.Email,
		Password:     p.Password,
		EmailConfirm: true,
		UserMetadata: map[string]any{"username": p.Username},
	}

	body, status, err := c.do(ctx, http.MethodPost, "/auth/v1/admin/users", payload)
	if err != nil {
		return nil, err
	}

	if status >= 200 && status <= 299 {
		var u User
		if err := json.Unmarshal(body, &u); err != nil {
			return nil, domainerrors.UpstreamUnavailable(serviceName, fmt.Errorf("parse create user response: %w", err))
		}
		if u.ID == "" {
			return nil, domainerrors.UpstreamUnavailable(serviceName, errors.New("create user response has no id"))
		}
		return &u, nil
	}

	return nil, c.mapError(status, body)
}

// DeleteUser removes an account. Used to undo a registration whose local
// writes failed.
func (c *Client) DeleteUser(ctx context.Context, userID string) error {
	body, status, err := c.do(ctx, http.MethodDelete, "/auth/v1/admin/users/"+url.PathEscape(userID), nil)
	if err != nil {
		return err
	}
	if status >= 200 && status <= 299 || status == http.StatusNotFound {
		return nil
	}
	return c.mapError(status, body)
}

func (c *Client) mapError(status int, body []byte) error {
	var perr providerError
	_ = json.Unmarshal(body, &perr)
	msg := perr.text()

	switch {
	case perr.ErrorCode == "email_exists" || perr.ErrorCode == "user_already_exists" ||
		strings.Contains(strings.ToLower(msg), "already"):
		return domainerrors.Conflict("Email already registered").WithCause(ErrUserExists)
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		if msg == "" {
			msg = "identity provider rejected the request"
		}
		return domainerrors.Validation(msg)
	default:
		return domainerrors.UpstreamUnavailable(serviceName, fmt.Errorf("status %d: %s", status, msg))
	}
}

// do executes an authenticated admin request and returns the raw body.
func (c *Client) do(ctx context.Context, method, path string, payload any) ([]byte, int, error) {
	if c.serviceKey == "" {
		return nil, 0, domainerrors.UpstreamUnavailable(serviceName, ErrNotConfigured)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("apikey", c.serviceKey)
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("identity request", "method", method, "path", path)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, domainerrors.UpstreamUnavailable(serviceName, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, 0, domainerrors.UpstreamUnavailable(serviceName, fmt.Errorf("read response: %w", err))
	}
	return body, resp.StatusCode, nil
}
