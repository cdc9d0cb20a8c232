package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// apiStub is a scripted API server for transport tests. It rejects any
// bearer token not in validTokens and serves /api/auth/refresh according to
// refreshOK.
type apiStub struct {
	mu           sync.Mutex
	validTokens  map[string]bool
	refreshToken string
	refreshOK    bool
	// refreshValidates controls whether a successful refresh also makes the
	// issued token acceptable to the resource endpoint.
	refreshValidates bool
	refreshCount     int32
	hits             int32
	lastBody         string
}

func newAPIStub() *apiStub {
	return &apiStub{
		validTokens:      map[string]bool{},
		refreshToken:     "xyz789",
		refreshOK:        true,
		refreshValidates: true,
	}
}

func (a *apiStub) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&a.refreshCount, 1)
		a.mu.Lock()
		ok := a.refreshOK
		token := a.refreshToken
		if ok && a.refreshValidates {
			a.validTokens[token] = true
		}
		a.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"detail": "session expired"})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"access_token": token})
	})
	mux.HandleFunc("/api/resource", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&a.hits, 1)
		body, _ := io.ReadAll(r.Body)
		a.mu.Lock()
		a.lastBody = string(body)
		a.mu.Unlock()

		bearer := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		a.mu.Lock()
		ok := a.validTokens[bearer]
		a.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"detail": "could not validate credentials"})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})
	return mux
}

func newTestTransport(t *testing.T, api *apiStub) (*TokenStore, *http.Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(api.handler())
	t.Cleanup(srv.Close)

	store, err := NewTokenStore(filepath.Join(t.TempDir(), "credentials.json"))
	if err != nil {
		t.Fatalf("NewTokenStore: %v", err)
	}

	transport := NewTransport(nil, store, srv.URL, srv.Client())
	return store, &http.Client{Transport: transport}, srv
}

func TestTransportRefreshesAndReplays(t *testing.T) {
	api := newAPIStub()
	store, client, srv := newTestTransport(t, api)

	// The stored token is stale; only the refreshed one is accepted.
	if err := store.SetToken("abc123"); err != nil {
		t.Fatalf("SetToken: %v", err)
	}

	resp, err := client.Get(srv.URL + "/api/resource")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if n := atomic.LoadInt32(&api.refreshCount); n != 1 {
		t.Errorf("refresh count = %d, want 1", n)
	}
	if n := atomic.LoadInt32(&api.hits); n != 2 {
		t.Errorf("resource hits = %d, want 2 (original + replay)", n)
	}

	token, ok, err := store.Token()
	if err != nil || !ok || token != "xyz789" {
		t.Errorf("stored token = %q ok=%v err=%v, want xyz789", token, ok, err)
	}
}

func TestTransportValidTokenNoRefresh(t *testing.T) {
	api := newAPIStub()
	api.validTokens["abc123"] = true
	store, client, srv := newTestTransport(t, api)

	if err := store.SetToken("abc123"); err != nil {
		t.Fatalf("SetToken: %v", err)
	}

	resp, err := client.Get(srv.URL + "/api/resource")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	if n := atomic.LoadInt32(&api.refreshCount); n != 0 {
		t.Errorf("refresh count = %d, want 0", n)
	}
}

func TestTransportReplayedUnauthorizedIsTerminal(t *testing.T) {
	api := newAPIStub()
	// The refresh succeeds but hands back a token the resource rejects.
	api.refreshToken = "still-bad"
	api.refreshValidates = false
	store, client, srv := newTestTransport(t, api)

	if err := store.SetToken("abc123"); err != nil {
		t.Fatalf("SetToken: %v", err)
	}

	resp, err := client.Get(srv.URL + "/api/resource")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
	// One original, one replay, never a third attempt.
	if n := atomic.LoadInt32(&api.hits); n != 2 {
		t.Errorf("resource hits = %d, want 2", n)
	}
	if n := atomic.LoadInt32(&api.refreshCount); n != 1 {
		t.Errorf("refresh count = %d, want 1", n)
	}
}

func TestTransportRefreshFailureClearsStore(t *testing.T) {
	api := newAPIStub()
	api.refreshOK = false
	store, client, srv := newTestTransport(t, api)

	if err := store.SetToken("abc123"); err != nil {
		t.Fatalf("SetToken: %v", err)
	}

	_, err := client.Get(srv.URL + "/api/resource")
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, ErrSessionExpired) {
		t.Errorf("error = %v, want ErrSessionExpired", err)
	}

	if _, ok, _ := store.Token(); ok {
		t.Error("token not cleared after failed refresh")
	}
}

func TestTransportConcurrentRefreshIsShared(t *testing.T) {
	api := newAPIStub()
	store, client, srv := newTestTransport(t, api)

	if err := store.SetToken("abc123"); err != nil {
		t.Fatalf("SetToken: %v", err)
	}

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := client.Get(srv.URL + "/api/resource")
			if err != nil {
				errs <- err
				return
			}
			resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				errs <- errors.New("unexpected status")
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("worker: %v", err)
	}

	// Workers that raced into the 401 share one refresh; stragglers that
	// ran after the store was updated never ask for one.
	if n := atomic.LoadInt32(&api.refreshCount); n != 1 {
		t.Errorf("refresh count = %d, want 1", n)
	}
}

func TestTransportReplaysRequestBody(t *testing.T) {
	api := newAPIStub()
	store, client, srv := newTestTransport(t, api)

	if err := store.SetToken("abc123"); err != nil {
		t.Fatalf("SetToken: %v", err)
	}

	resp, err := client.Post(srv.URL+"/api/resource", "application/json",
		strings.NewReader(`{"job_role":"backend developer"}`))
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	api.mu.Lock()
	body := api.lastBody
	api.mu.Unlock()
	if body != `{"job_role":"backend developer"}` {
		t.Errorf("replayed body = %q", body)
	}
}

func TestTransportBodyWithoutGetBodyNotReplayed(t *testing.T) {
	api := newAPIStub()
	store, client, srv := newTestTransport(t, api)

	if err := store.SetToken("abc123"); err != nil {
		t.Fatalf("SetToken: %v", err)
	}

	// A raw io.Reader body with no GetBody cannot be re-materialized.
	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/resource",
		io.NopCloser(strings.NewReader("one-shot")))
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	req.GetBody = nil

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want the original 401", resp.StatusCode)
	}
	if n := atomic.LoadInt32(&api.refreshCount); n != 0 {
		t.Errorf("refresh count = %d, want 0", n)
	}
	if n := atomic.LoadInt32(&api.hits); n != 1 {
		t.Errorf("resource hits = %d, want 1", n)
	}
}

func TestTransportExplicitAuthorizationUntouched(t *testing.T) {
	api := newAPIStub()
	store, client, srv := newTestTransport(t, api)

	if err := store.SetToken("abc123"); err != nil {
		t.Fatalf("SetToken: %v", err)
	}

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/resource", nil)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	req.Header.Set("Authorization", "Bearer caller-chosen")

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	resp.Body.Close()

	// The caller opted out of token management; the 401 passes through.
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
	if n := atomic.LoadInt32(&api.refreshCount); n != 0 {
		t.Errorf("refresh count = %d, want 0", n)
	}
}

func TestTransportCancelledContextNotReplayed(t *testing.T) {
	api := newAPIStub()

	// Cancel the context as soon as the first request lands, while the
	// refresh endpoint keeps working.
	ctx, cancel := context.WithCancel(context.Background())
	wrapped := api.handler()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/resource" {
			cancel()
		}
		wrapped.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)

	store, err := NewTokenStore(filepath.Join(t.TempDir(), "credentials.json"))
	if err != nil {
		t.Fatalf("NewTokenStore: %v", err)
	}
	if err := store.SetToken("abc123"); err != nil {
		t.Fatalf("SetToken: %v", err)
	}
	client := &http.Client{Transport: NewTransport(nil, store, srv.URL, srv.Client())}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/resource", nil)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}

	_, err = client.Do(req)
	if err == nil {
		t.Fatal("expected error from cancelled context")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}

	// Wait briefly so a buggy replay would have landed.
	time.Sleep(50 * time.Millisecond)
	if n := atomic.LoadInt32(&api.hits); n != 1 {
		t.Errorf("resource hits = %d, want 1 (no replay after cancel)", n)
	}
}
