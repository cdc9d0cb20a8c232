// Package session manages the httponly refresh cookie. The browser never sees
// the refresh token as JavaScript-accessible state; it only travels in this
// cookie.
package session

import (
	"net/http"

	"github.com/gorilla/sessions"
)

const (
	// SessionName is the name of the refresh cookie
	SessionName = "gitmax_refresh"

	// refreshTokenKey is the session key for the opaque refresh token
	refreshTokenKey = "refresh_token"
)

// Manager wraps gorilla/sessions for the refresh cookie
type Manager struct {
	store *sessions.CookieStore
}

// NewManager creates a new session manager.
// secretKey should be 32 bytes.
func NewManager(secretKey []byte, secure bool) *Manager {
	store := sessions.NewCookieStore(secretKey)

	store.Options = &sessions.Options{
		Path:     "/api/auth",
		MaxAge:   30 * 24 * 60 * 60, // matches the refresh token TTL
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}

	return &Manager{
		store: store,
	}
}

// SetRefreshToken stores the opaque refresh token in the cookie
func (m *Manager) SetRefreshToken(r *http.Request, w http.ResponseWriter, token string) error {
	session, err := m.store.Get(r, SessionName)
	if err != nil {
		session, _ = m.store.New(r, SessionName)
	}

	session.Values[refreshTokenKey] = token
	return session.Save(r, w)
}

// RefreshToken retrieves the opaque refresh token from the cookie
func (m *Manager) RefreshToken(r *http.Request) (string, error) {
	session, err := m.store.Get(r, SessionName)
	if err != nil {
		return "", err
	}

	token, ok := session.Values[refreshTokenKey].(string)
	if !ok || token == "" {
		return "", http.ErrNoCookie
	}

	return token, nil
}

// Clear removes the refresh cookie (logout)
func (m *Manager) Clear(r *http.Request, w http.ResponseWriter) error {
	session, err := m.store.Get(r, SessionName)
	if err != nil {
		return nil // nothing to clear
	}

	session.Options.MaxAge = -1
	return session.Save(r, w)
}
