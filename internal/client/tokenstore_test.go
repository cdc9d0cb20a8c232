package client

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *TokenStore {
	t.Helper()
	store, err := NewTokenStore(filepath.Join(t.TempDir(), "credentials.json"))
	if err != nil {
		t.Fatalf("NewTokenStore: %v", err)
	}
	return store
}

func TestTokenRoundTrip(t *testing.T) {
	store := newTestStore(t)

	if _, ok, err := store.Token(); err != nil || ok {
		t.Fatalf("expected empty store, got ok=%v err=%v", ok, err)
	}

	if err := store.SetToken("abc123"); err != nil {
		t.Fatalf("SetToken: %v", err)
	}

	token, ok, err := store.Token()
	if err != nil {
		t.Fatalf("Token: %v", err)
	}
	if !ok || token != "abc123" {
		t.Errorf("got token=%q ok=%v, want abc123", token, ok)
	}

	if err := store.ClearToken(); err != nil {
		t.Fatalf("ClearToken: %v", err)
	}
	if _, ok, _ := store.Token(); ok {
		t.Error("token still present after clear")
	}

	// Clearing again is a no-op.
	if err := store.ClearToken(); err != nil {
		t.Errorf("second ClearToken: %v", err)
	}
}

func TestTokenPersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")

	first, err := NewTokenStore(path)
	if err != nil {
		t.Fatalf("NewTokenStore: %v", err)
	}
	if err := first.SetToken("abc123"); err != nil {
		t.Fatalf("SetToken: %v", err)
	}
	if err := first.UpsertAccount(AccountRecord{GitHubID: "1", Username: "octocat"}); err != nil {
		t.Fatalf("UpsertAccount: %v", err)
	}

	second, err := NewTokenStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	token, ok, err := second.Token()
	if err != nil || !ok || token != "abc123" {
		t.Errorf("reopened store: token=%q ok=%v err=%v", token, ok, err)
	}
	accounts := second.Accounts()
	if len(accounts) != 1 || accounts[0].Username != "octocat" {
		t.Errorf("reopened store accounts = %+v", accounts)
	}
}

func TestTokenFilePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "credentials.json")
	store, err := NewTokenStore(path)
	if err != nil {
		t.Fatalf("NewTokenStore: %v", err)
	}
	if err := store.SetToken("abc123"); err != nil {
		t.Fatalf("SetToken: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("credentials file mode = %o, want 600", perm)
	}
}

func TestSetTokenRejectsInvalid(t *testing.T) {
	store := newTestStore(t)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"whitespace", "abc 123"},
		{"leading space", " abc123"},
		{"newline", "abc\n123"},
		{"control char", "abc\x07123"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := store.SetToken(tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("SetToken(%q) = %v, want ErrInvalidToken", tt.token, err)
			}
		})
	}

	if _, ok, _ := store.Token(); ok {
		t.Error("invalid token was stored")
	}
}

func TestUpsertAccountDedupes(t *testing.T) {
	store := newTestStore(t)

	if err := store.UpsertAccount(AccountRecord{GitHubID: "1", Username: "octocat"}); err != nil {
		t.Fatalf("UpsertAccount: %v", err)
	}
	if err := store.UpsertAccount(AccountRecord{GitHubID: "1", Username: "octocat-renamed"}); err != nil {
		t.Fatalf("UpsertAccount: %v", err)
	}

	accounts := store.Accounts()
	if len(accounts) != 1 {
		t.Fatalf("got %d accounts, want 1", len(accounts))
	}
	if accounts[0].Username != "octocat-renamed" {
		t.Errorf("username = %q, want octocat-renamed", accounts[0].Username)
	}
}

func TestUpsertAccountRequiresID(t *testing.T) {
	store := newTestStore(t)
	if err := store.UpsertAccount(AccountRecord{Username: "ghost"}); err == nil {
		t.Error("expected error for account without github id")
	}
}

func TestUpsertAccountEvictsOldest(t *testing.T) {
	store := newTestStore(t)
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	// Six accounts; the second one is the oldest-seen and must go.
	seen := []time.Duration{
		5 * time.Hour,
		1 * time.Hour, // oldest
		9 * time.Hour,
		3 * time.Hour,
		7 * time.Hour,
		11 * time.Hour,
	}
	for i, d := range seen {
		err := store.UpsertAccount(AccountRecord{
			GitHubID: fmt.Sprintf("%d", i+1),
			Username: fmt.Sprintf("user%d", i+1),
			LastSeen: base.Add(d),
		})
		if err != nil {
			t.Fatalf("UpsertAccount %d: %v", i+1, err)
		}
	}

	accounts := store.Accounts()
	if len(accounts) != maxRecentAccounts {
		t.Fatalf("got %d accounts, want %d", len(accounts), maxRecentAccounts)
	}
	for _, acc := range accounts {
		if acc.GitHubID == "2" {
			t.Error("oldest-seen account was not evicted")
		}
	}
}

func TestAccountsOrderedAndRelative(t *testing.T) {
	store := newTestStore(t)
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	records := []AccountRecord{
		{GitHubID: "1", Username: "old", LastSeen: now.Add(-48 * time.Hour)},
		{GitHubID: "2", Username: "recent", LastSeen: now.Add(-5 * time.Minute)},
		{GitHubID: "3", Username: "middle", LastSeen: now.Add(-3 * time.Hour)},
	}
	for _, rec := range records {
		if err := store.UpsertAccount(rec); err != nil {
			t.Fatalf("UpsertAccount: %v", err)
		}
	}

	accounts := store.Accounts()
	wantOrder := []string{"recent", "middle", "old"}
	for i, want := range wantOrder {
		if accounts[i].Username != want {
			t.Errorf("accounts[%d] = %q, want %q", i, accounts[i].Username, want)
		}
	}

	if accounts[0].LastSeen != "5 minutes ago" {
		t.Errorf("recent LastSeen = %q, want %q", accounts[0].LastSeen, "5 minutes ago")
	}
	if accounts[1].LastSeen != "3 hours ago" {
		t.Errorf("middle LastSeen = %q, want %q", accounts[1].LastSeen, "3 hours ago")
	}
	if accounts[2].LastSeen != "2 days ago" {
		t.Errorf("old LastSeen = %q, want %q", accounts[2].LastSeen, "2 days ago")
	}
}

func TestUpsertAccountStampsLastSeen(t *testing.T) {
	store := newTestStore(t)
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	if err := store.UpsertAccount(AccountRecord{GitHubID: "1", Username: "octocat"}); err != nil {
		t.Fatalf("UpsertAccount: %v", err)
	}
	accounts := store.Accounts()
	if accounts[0].LastSeen != "just now" {
		t.Errorf("LastSeen = %q, want %q", accounts[0].LastSeen, "just now")
	}
}
