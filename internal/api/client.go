package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/shindakun/campuslogin/internal/config"
	"github.com/shindakun/campuslogin/internal/models"
)

// maxResponseBytes caps how much of a response body is read
const maxResponseBytes = 1 << 20

// Doer is the part of *http.Client the API client needs
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the campus login API
type Client struct {
	httpClient Doer
	loginURL   string
	logoutURL  string
	userURL    string
	logger     zerolog.Logger
}

// Option customises a Client
type Option func(*Client)

// WithHTTPClient replaces the default pooled, traced HTTP client
func WithHTTPClient(d Doer) Option {
	return func(c *Client) {
		c.httpClient = d
	}
}

// NewClient creates an API client for the endpoints in cfg
func NewClient(cfg *config.Config, logger zerolog.Logger, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(cleanhttp.DefaultPooledTransport()),
			Timeout:   cfg.API.Timeout,
		},
		loginURL:  cfg.LoginURL(),
		logoutURL: cfg.LogoutURL(),
		userURL:   cfg.UserURL(),
		logger:    logger.With().Str("component", "api").Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Login posts creds once and returns the raw success body.
// Failures are *RequestBuildError or *HTTPError; there are no retries.
func (c *Client) Login(ctx context.Context, creds models.Credentials) ([]byte, error) {
	req, err := NewLoginRequest(c.loginURL, creds)
	if err != nil {
		return nil, err
	}
	return c.Do(ctx, req)
}

// Logout revokes token on the server
func (c *Client) Logout(ctx context.Context, token string) error {
	_, err := c.Do(ctx, newAuthorizedRequest(http.MethodPost, c.logoutURL, token))
	return err
}

// CurrentUser returns the profile the server associates with token
func (c *Client) CurrentUser(ctx context.Context, token string) (*models.User, error) {
	body, err := c.Do(ctx, newAuthorizedRequest(http.MethodGet, c.userURL, token))
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("failed to decode user: %w", err)
	}
	return &user, nil
}

// Do sends r and returns the body of a 2xx response
func (c *Client) Do(ctx context.Context, r Request) ([]byte, error) {
	req, err := r.HTTPRequest(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &HTTPError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &HTTPError{StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	c.logger.Debug().
		Str("method", r.Method).
		Str("url", r.URL).
		Int("status", resp.StatusCode).
		Int("bytes", len(body)).
		Msg("api exchange")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if len(body) == 0 {
			body = nil
		}
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: body}
	}

	return body, nil
}
