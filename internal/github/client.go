// Package github talks to the GitHub REST API on behalf of logged in users.
package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	retry "github.com/appleboy/go-httpretry"
	"golang.org/x/oauth2"
	oauthgithub "golang.org/x/oauth2/github"

	"github.com/gitmaxhq/gitmax/internal/pkg/metrics"
)

const defaultAPIBaseURL = "https://api.github.com"

// ErrTokenExchange indicates the OAuth code could not be exchanged for a token
var ErrTokenExchange = errors.New("github token exchange failed")

// ErrUnauthorized indicates GitHub rejected the access token
var ErrUnauthorized = errors.New("github rejected the access token")

// Config holds the OAuth application credentials and API location.
// Endpoint is only overridden in tests; it defaults to github.com.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	Scopes       []string
	APIBaseURL   string
	Endpoint     oauth2.Endpoint
}

// Client calls the GitHub API. Requests go through a retrying HTTP client so
// transient failures do not surface as user errors.
type Client struct {
	oauth      *oauth2.Config
	apiBaseURL string
	retry      *retry.Client
	log        *slog.Logger
}

// NewClient creates a GitHub client from OAuth application config
func NewClient(cfg Config) (*Client, error) {
	endpoint := cfg.Endpoint
	if endpoint.AuthURL == "" {
		endpoint = oauthgithub.Endpoint
	}

	baseURL := strings.TrimSuffix(cfg.APIBaseURL, "/")
	if baseURL == "" {
		baseURL = defaultAPIBaseURL
	}

	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = []string{"read:user", "user:email"}
	}

	retryClient, err := retry.NewBackgroundClient(
		retry.WithHTTPClient(&http.Client{Timeout: 30 * time.Second}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create retry client: %w", err)
	}

	return &Client{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Scopes:       scopes,
			Endpoint:     endpoint,
		},
		apiBaseURL: baseURL,
		retry:      retryClient,
		log:        slog.Default().With(slog.String("component", "github")),
	}, nil
}

// AuthorizeURL returns the GitHub OAuth authorization URL for a login attempt
func (c *Client) AuthorizeURL(state string) string {
	return c.oauth.AuthCodeURL(state)
}

// ExchangeCode swaps an OAuth authorization code for a GitHub access token
func (c *Client) ExchangeCode(ctx context.Context, code string) (string, error) {
	start := time.Now()
	token, err := c.oauth.Exchange(ctx, code)
	status := http.StatusOK
	if err != nil {
		status = 0
	}
	metrics.RecordGitHubCall("exchange_code", status, time.Since(start))
	if err != nil {
		c.log.Warn("oauth code exchange failed", slog.String("error", err.Error()))
		return "", fmt.Errorf("%w: %v", ErrTokenExchange, err)
	}
	if token.AccessToken == "" {
		return "", ErrTokenExchange
	}
	return token.AccessToken, nil
}

// User fetches the authenticated user's GitHub account data
func (c *Client) User(ctx context.Context, accessToken string) (*AccountData, error) {
	var account AccountData
	if err := c.getJSON(ctx, accessToken, "/user", "get_user", &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// Repositories fetches the user's most recently updated repositories
func (c *Client) Repositories(ctx context.Context, accessToken string) ([]Repository, error) {
	var repos []Repository
	path := "/user/repos?sort=updated&per_page=10"
	if err := c.getJSON(ctx, accessToken, path, "list_repositories", &repos); err != nil {
		return nil, err
	}
	return repos, nil
}

// RepositoryLanguages fetches the language byte counts for a repository
func (c *Client) RepositoryLanguages(ctx context.Context, accessToken, fullName string) (Languages, error) {
	var langs Languages
	path := fmt.Sprintf("/repos/%s/languages", fullName)
	if err := c.getJSON(ctx, accessToken, path, "repository_languages", &langs); err != nil {
		return nil, err
	}
	return langs, nil
}

func (c *Client) getJSON(ctx context.Context, accessToken, path, operation string, out interface{}) error {
	start := time.Now()
	statusCode := 0
	defer func() {
		metrics.RecordGitHubCall(operation, statusCode, time.Since(start))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiBaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build github request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.retry.DoWithContext(ctx, req)
	if err != nil {
		return fmt.Errorf("github request failed: %w", err)
	}
	defer resp.Body.Close()
	statusCode = resp.StatusCode

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return ErrUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("github returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode github response: %w", err)
	}
	return nil
}
