package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func testSecret() []byte {
	return []byte("0123456789abcdef0123456789abcdef")
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	m := NewManager(testSecret(), false)

	// Set the token on a response.
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/auth/callback", nil)
	if err := m.SetRefreshToken(r, w, "token-1.secret"); err != nil {
		t.Fatalf("SetRefreshToken: %v", err)
	}

	cookies := w.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected a cookie to be set")
	}
	cookie := cookies[0]
	if cookie.Name != SessionName {
		t.Errorf("expected cookie %q, got %q", SessionName, cookie.Name)
	}
	if !cookie.HttpOnly {
		t.Error("refresh cookie must be httponly")
	}
	if cookie.Path != "/api/auth" {
		t.Errorf("expected path /api/auth, got %q", cookie.Path)
	}

	// Read it back on a subsequent request.
	r2 := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", nil)
	r2.AddCookie(cookie)

	token, err := m.RefreshToken(r2)
	if err != nil {
		t.Fatalf("RefreshToken: %v", err)
	}
	if token != "token-1.secret" {
		t.Errorf("expected token-1.secret, got %q", token)
	}
}

func TestRefreshTokenMissing(t *testing.T) {
	m := NewManager(testSecret(), false)

	r := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", nil)
	if _, err := m.RefreshToken(r); err == nil {
		t.Error("expected an error with no cookie present")
	}
}

func TestClear(t *testing.T) {
	m := NewManager(testSecret(), false)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/auth/callback", nil)
	if err := m.SetRefreshToken(r, w, "token-1.secret"); err != nil {
		t.Fatalf("SetRefreshToken: %v", err)
	}
	cookie := w.Result().Cookies()[0]

	w2 := httptest.NewRecorder()
	r2 := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	r2.AddCookie(cookie)

	if err := m.Clear(r2, w2); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	cleared := w2.Result().Cookies()
	if len(cleared) == 0 {
		t.Fatal("expected a clearing cookie")
	}
	if cleared[0].MaxAge != -1 {
		t.Errorf("expected MaxAge -1, got %d", cleared[0].MaxAge)
	}
}
