package client

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/sync/singleflight"
)

// requestState tracks where a request is in the refresh-and-retry lifecycle.
// Every request moves through these states exactly once; there is no path
// back from terminal.
type requestState int

const (
	stateDispatched requestState = iota
	stateAuthFailed
	stateRefreshing
	stateReplayed
	stateTerminal
)

func (s requestState) String() string {
	switch s {
	case stateDispatched:
		return "dispatched"
	case stateAuthFailed:
		return "auth_failed"
	case stateRefreshing:
		return "refreshing"
	case stateReplayed:
		return "replayed"
	default:
		return "terminal"
	}
}

// Transport is a RoundTripper that attaches the stored bearer token and
// transparently refreshes it on 401. A 401 triggers at most one refresh and
// one replay per request; concurrent 401s share a single in-flight refresh.
type Transport struct {
	base    http.RoundTripper
	store   *TokenStore
	baseURL string

	// refreshClient carries the ambient refresh cookie. It must share the
	// cookie jar with the outer client but must NOT route through this
	// transport, or a 401 on refresh would recurse.
	refreshClient *http.Client

	group singleflight.Group
	log   *slog.Logger
}

// NewTransport creates the refresh-and-retry transport
func NewTransport(base http.RoundTripper, store *TokenStore, baseURL string, refreshClient *http.Client) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Transport{
		base:          base,
		store:         store,
		baseURL:       strings.TrimSuffix(baseURL, "/"),
		refreshClient: refreshClient,
		log:           slog.Default().With(slog.String("component", "client_transport")),
	}
}

// RoundTrip implements http.RoundTripper
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	state := stateDispatched

	// Attach the stored token unless the caller set an explicit
	// Authorization header.
	explicitAuth := req.Header.Get("Authorization") != ""
	var usedToken string
	if !explicitAuth {
		if token, ok, err := t.store.Token(); err == nil && ok {
			usedToken = token
			req = req.Clone(req.Context())
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized || explicitAuth {
		return resp, nil
	}

	state = stateAuthFailed
	t.log.Debug("request unauthorized",
		slog.String("path", req.URL.Path),
		slog.String("state", state.String()))

	// A consumed body with no way to re-materialize it cannot be replayed.
	if req.Body != nil && req.GetBody == nil {
		return resp, nil
	}

	// The original response is dead either way.
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	state = stateRefreshing
	token, err := t.refresh(usedToken)
	if err != nil {
		state = stateTerminal
		// The session is over; make sure no stale token lingers.
		if clearErr := t.store.ClearToken(); clearErr != nil {
			t.log.Warn("failed to clear token store", slog.String("error", clearErr.Error()))
		}
		t.log.Debug("refresh failed",
			slog.String("path", req.URL.Path),
			slog.String("state", state.String()))
		return nil, ErrSessionExpired
	}

	// Abandoned requests are not replayed.
	if ctxErr := req.Context().Err(); ctxErr != nil {
		return nil, ctxErr
	}

	state = stateReplayed
	retry := req.Clone(req.Context())
	retry.Header.Set("Authorization", "Bearer "+token)
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, fmt.Errorf("failed to rebuild request body: %w", err)
		}
		retry.Body = body
	}

	t.log.Debug("replaying request",
		slog.String("path", req.URL.Path),
		slog.String("state", state.String()))

	resp2, err := t.base.RoundTrip(retry)
	if err != nil {
		return nil, err
	}

	// A second 401 is terminal; the caller sees it as-is.
	if resp2.StatusCode == http.StatusUnauthorized {
		state = stateTerminal
		t.log.Debug("replay unauthorized",
			slog.String("path", req.URL.Path),
			slog.String("state", state.String()))
	}
	return resp2, nil
}

// refresh performs (or joins) the single in-flight token refresh. All
// requests that hit a 401 while a refresh is running share its outcome, and
// a request that raced in after another refresh already landed reuses the
// stored token instead of refreshing again.
func (t *Transport) refresh(staleToken string) (string, error) {
	token, err, _ := t.group.Do("refresh", func() (interface{}, error) {
		if current, ok, err := t.store.Token(); err == nil && ok && current != staleToken {
			return current, nil
		}
		return t.doRefresh()
	})
	if err != nil {
		return "", err
	}
	return token.(string), nil
}

// doRefresh calls the refresh endpoint and stores the new access token
func (t *Transport) doRefresh() (string, error) {
	resp, err := t.refreshClient.Post(t.baseURL+"/api/auth/refresh", "application/json", nil)
	if err != nil {
		return "", fmt.Errorf("refresh request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("refresh rejected with status %d", resp.StatusCode)
	}

	var body struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to decode refresh response: %w", err)
	}
	if body.AccessToken == "" {
		return "", fmt.Errorf("refresh response missing access token")
	}

	if err := t.store.SetToken(body.AccessToken); err != nil {
		return "", fmt.Errorf("failed to store refreshed token: %w", err)
	}

	t.log.Debug("access token refreshed")
	return body.AccessToken, nil
}
