package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

type sessionStub struct {
	meHits     int32
	logoutHits int32
}

func (s *sessionStub) handler() http.Handler {
	avatar := "https://avatars.example/u/12345"
	user := map[string]any{
		"id":           "u1",
		"github_id":    "12345",
		"username":     "octocat",
		"avatar_url":   avatar,
		"public_repos": 8,
		"followers":    20,
		"following":    3,
		"is_active":    true,
		"created_at":   time.Now().UTC(),
		"updated_at":   time.Now().UTC(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"url": "https://github.com/login/oauth/authorize?client_id=test",
		})
	})
	mux.HandleFunc("/api/auth/callback", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Code string `json:"code"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		if req.Code != "good-code" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{
				"detail": "Failed to get access token from GitHub",
			})
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "gitmax_refresh", Value: "r1", Path: "/api/auth"})
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "abc123",
			"token_type":   "bearer",
			"expires_at":   time.Now().Add(30 * time.Minute).UTC(),
			"user":         user,
		})
	})
	mux.HandleFunc("/api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&s.meHits, 1)
		if r.Header.Get("Authorization") != "Bearer abc123" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"detail": "could not validate credentials"})
			return
		}
		json.NewEncoder(w).Encode(user)
	})
	mux.HandleFunc("/api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&s.logoutHits, 1)
		json.NewEncoder(w).Encode(map[string]string{"message": "Successfully logged out"})
	})
	return mux
}

func newTestClient(t *testing.T) (*Client, *TokenStore, *sessionStub) {
	t.Helper()
	stub := &sessionStub{}
	srv := httptest.NewServer(stub.handler())
	t.Cleanup(srv.Close)

	store, err := NewTokenStore(filepath.Join(t.TempDir(), "credentials.json"))
	if err != nil {
		t.Fatalf("NewTokenStore: %v", err)
	}
	c, err := NewClient(srv.URL, store)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c, store, stub
}

func TestClientLoginURL(t *testing.T) {
	c, _, _ := newTestClient(t)

	url, err := c.LoginURL(context.Background())
	if err != nil {
		t.Fatalf("LoginURL: %v", err)
	}
	if url != "https://github.com/login/oauth/authorize?client_id=test" {
		t.Errorf("url = %q", url)
	}
}

func TestClientHandleCallback(t *testing.T) {
	c, store, _ := newTestClient(t)

	user, err := c.HandleCallback(context.Background(), "good-code")
	if err != nil {
		t.Fatalf("HandleCallback: %v", err)
	}
	if user.Username != "octocat" {
		t.Errorf("username = %q", user.Username)
	}

	token, ok, err := store.Token()
	if err != nil || !ok || token != "abc123" {
		t.Errorf("stored token = %q ok=%v err=%v", token, ok, err)
	}

	accounts := store.Accounts()
	if len(accounts) != 1 || accounts[0].GitHubID != "12345" {
		t.Fatalf("accounts = %+v", accounts)
	}
	if accounts[0].AvatarURL == "" {
		t.Error("avatar url not recorded")
	}
}

func TestClientHandleCallbackEmptyCode(t *testing.T) {
	c, store, _ := newTestClient(t)

	for _, code := range []string{"", "   "} {
		if _, err := c.HandleCallback(context.Background(), code); !errors.Is(err, ErrCallback) {
			t.Errorf("HandleCallback(%q) = %v, want ErrCallback", code, err)
		}
	}
	if _, ok, _ := store.Token(); ok {
		t.Error("token stored despite failed callback")
	}
}

func TestClientHandleCallbackBadCode(t *testing.T) {
	c, _, _ := newTestClient(t)

	_, err := c.HandleCallback(context.Background(), "bad-code")
	if !errors.Is(err, ErrCallback) {
		t.Fatalf("error = %v, want ErrCallback", err)
	}
}

func TestClientCurrentUserCached(t *testing.T) {
	c, _, stub := newTestClient(t)

	if _, err := c.HandleCallback(context.Background(), "good-code"); err != nil {
		t.Fatalf("HandleCallback: %v", err)
	}

	// The callback already cached the user; no network call needed.
	user, err := c.CurrentUser(context.Background())
	if err != nil {
		t.Fatalf("CurrentUser: %v", err)
	}
	if user.Username != "octocat" {
		t.Errorf("username = %q", user.Username)
	}
	if n := atomic.LoadInt32(&stub.meHits); n != 0 {
		t.Errorf("me hits = %d, want 0 (cache)", n)
	}
}

func TestClientCurrentUserFetchesOnce(t *testing.T) {
	c, store, stub := newTestClient(t)

	// Simulate a restarted process: token on disk, no cached user.
	if err := store.SetToken("abc123"); err != nil {
		t.Fatalf("SetToken: %v", err)
	}

	for i := 0; i < 3; i++ {
		user, err := c.CurrentUser(context.Background())
		if err != nil {
			t.Fatalf("CurrentUser: %v", err)
		}
		if user.GitHubID != "12345" {
			t.Errorf("github id = %q", user.GitHubID)
		}
	}
	if n := atomic.LoadInt32(&stub.meHits); n != 1 {
		t.Errorf("me hits = %d, want 1", n)
	}
}

func TestClientLogout(t *testing.T) {
	c, store, stub := newTestClient(t)

	if _, err := c.HandleCallback(context.Background(), "good-code"); err != nil {
		t.Fatalf("HandleCallback: %v", err)
	}

	if err := c.Logout(context.Background()); err != nil {
		t.Fatalf("Logout: %v", err)
	}

	if _, ok, _ := store.Token(); ok {
		t.Error("token survived logout")
	}
	if n := atomic.LoadInt32(&stub.logoutHits); n != 1 {
		t.Errorf("logout hits = %d, want 1", n)
	}

	// The recent-accounts list is a convenience roster, not a credential;
	// it survives logout.
	if len(store.Accounts()) != 1 {
		t.Error("recent accounts lost on logout")
	}
}

func TestClientLogoutSurvivesDeadServer(t *testing.T) {
	stub := &sessionStub{}
	srv := httptest.NewServer(stub.handler())

	store, err := NewTokenStore(filepath.Join(t.TempDir(), "credentials.json"))
	if err != nil {
		t.Fatalf("NewTokenStore: %v", err)
	}
	c, err := NewClient(srv.URL, store)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if err := store.SetToken("abc123"); err != nil {
		t.Fatalf("SetToken: %v", err)
	}

	srv.Close()

	if err := c.Logout(context.Background()); err != nil {
		t.Fatalf("Logout against dead server: %v", err)
	}
	if _, ok, _ := store.Token(); ok {
		t.Error("token survived logout")
	}
}
