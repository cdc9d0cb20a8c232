package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"
	"time"

	"github.com/gitmaxhq/gitmax/internal/domain/entities"
)

// Client is the session controller for the GitMax API. It drives the OAuth
// login flow, keeps the token store current, and serves the active user from
// a local cache.
type Client struct {
	baseURL string
	store   *TokenStore

	// http routes through the refresh-and-retry transport; refreshHTTP
	// shares the cookie jar but bypasses it.
	http        *http.Client
	refreshHTTP *http.Client

	mu         sync.Mutex
	cachedUser *entities.User

	log *slog.Logger
}

// Option configures a Client
type Option func(*options)

type options struct {
	timeout time.Duration
	base    http.RoundTripper
}

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithBaseTransport replaces the underlying RoundTripper
func WithBaseTransport(rt http.RoundTripper) Option {
	return func(o *options) { o.base = rt }
}

// NewClient creates a session controller against the given API base URL
func NewClient(baseURL string, store *TokenStore, opts ...Option) (*Client, error) {
	o := options{timeout: 30 * time.Second}
	for _, opt := range opts {
		opt(&o)
	}

	// The jar carries the httponly refresh cookie between the callback and
	// later refreshes.
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	refreshHTTP := &http.Client{
		Jar:       jar,
		Timeout:   o.timeout,
		Transport: o.base,
	}

	c := &Client{
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		store:       store,
		refreshHTTP: refreshHTTP,
		log:         slog.Default().With(slog.String("component", "client")),
	}
	c.http = &http.Client{
		Jar:       jar,
		Timeout:   o.timeout,
		Transport: NewTransport(o.base, store, c.baseURL, refreshHTTP),
	}
	return c, nil
}

// LoginURL asks the API for the GitHub authorization URL that starts the
// OAuth flow.
func (c *Client) LoginURL(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/auth/login", nil)
	if err != nil {
		return "", err
	}

	resp, err := c.refreshHTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("login request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("login rejected with status %d", resp.StatusCode)
	}

	var body struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to decode login response: %w", err)
	}
	return body.URL, nil
}

// HandleCallback completes the OAuth flow with the code GitHub redirected
// back with. On success the access token is stored, the account is recorded
// in the recent list, and the user is cached.
func (c *Client) HandleCallback(ctx context.Context, code string) (*entities.User, error) {
	if strings.TrimSpace(code) == "" {
		return nil, fmt.Errorf("%w: empty authorization code", ErrCallback)
	}

	payload, err := json.Marshal(map[string]string{"code": code})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/auth/callback", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.refreshHTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCallback, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s", ErrCallback, errorDetail(resp))
	}

	var body struct {
		AccessToken string         `json:"access_token"`
		ExpiresAt   time.Time      `json:"expires_at"`
		User        *entities.User `json:"user"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: malformed response", ErrCallback)
	}
	if body.AccessToken == "" || body.User == nil {
		return nil, fmt.Errorf("%w: incomplete response", ErrCallback)
	}

	if err := c.store.SetToken(body.AccessToken); err != nil {
		return nil, fmt.Errorf("failed to store access token: %w", err)
	}

	rec := AccountRecord{
		GitHubID: body.User.GitHubID,
		Username: body.User.Username,
	}
	if body.User.AvatarURL != nil {
		rec.AvatarURL = *body.User.AvatarURL
	}
	if err := c.store.UpsertAccount(rec); err != nil {
		c.log.Warn("failed to record account", slog.String("error", err.Error()))
	}

	c.mu.Lock()
	c.cachedUser = body.User
	c.mu.Unlock()

	c.log.Info("logged in", slog.String("username", body.User.Username))
	return body.User, nil
}

// CurrentUser returns the authenticated user, serving from cache when one
// is available.
func (c *Client) CurrentUser(ctx context.Context) (*entities.User, error) {
	c.mu.Lock()
	if c.cachedUser != nil {
		user := c.cachedUser
		c.mu.Unlock()
		return user, nil
	}
	c.mu.Unlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/auth/me", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch user: %s", errorDetail(resp))
	}

	var user entities.User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("failed to decode user: %w", err)
	}

	c.mu.Lock()
	c.cachedUser = &user
	c.mu.Unlock()
	return &user, nil
}

// Logout ends the session. Local state is cleared first so the user is
// logged out even when the server is unreachable; the server-side revocation
// is best effort.
func (c *Client) Logout(ctx context.Context) error {
	c.mu.Lock()
	c.cachedUser = nil
	c.mu.Unlock()

	if err := c.store.ClearToken(); err != nil {
		return fmt.Errorf("failed to clear token: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/auth/logout", nil)
	if err != nil {
		return nil
	}
	resp, err := c.refreshHTTP.Do(req)
	if err != nil {
		c.log.Warn("server logout failed", slog.String("error", err.Error()))
		return nil
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return nil
}

// HTTP exposes the authenticated HTTP client for API calls beyond the
// session surface.
func (c *Client) HTTP() *http.Client {
	return c.http
}

// BaseURL returns the API base URL the client was built against
func (c *Client) BaseURL() string {
	return c.baseURL
}

// errorDetail extracts the error body shape the API uses, falling back to
// the status code.
func errorDetail(resp *http.Response) string {
	var body struct {
		Detail string `json:"detail"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&body); err == nil && body.Detail != "" {
		return body.Detail
	}
	return fmt.Sprintf("status %d", resp.StatusCode)
}
