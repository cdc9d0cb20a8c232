// Package client is the programmatic consumer of the GitMax API: it owns the
// credential store, the refresh-and-retry HTTP transport, and the session
// controller the CLI is built on.
package client

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
	"unicode"

	"github.com/gitmaxhq/gitmax/internal/pkg/timeutil"
)

// maxRecentAccounts bounds the recent-accounts list; the oldest-seen entry
// is evicted when a sixth account appears.
const maxRecentAccounts = 5

// AccountRecord is one remembered GitHub account
type AccountRecord struct {
	GitHubID  string    `json:"github_id"`
	Username  string    `json:"username"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	LastSeen  time.Time `json:"last_seen"`
}

// AccountView is an AccountRecord prepared for display. LastSeen is rendered
// as a relative time at read time, never stored.
type AccountView struct {
	GitHubID  string `json:"github_id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url,omitempty"`
	LastSeen  string `json:"last_seen"`
}

// storeData is the persisted shape of the credentials file
type storeData struct {
	Token          string          `json:"token,omitempty"`
	RecentAccounts []AccountRecord `json:"recent_accounts,omitempty"`
}

// TokenStore is the single source of truth for the active access token and
// the recent-accounts list. It is file backed so credentials survive process
// restarts, and safe for concurrent use.
type TokenStore struct {
	mu   sync.Mutex
	path string
	data storeData
	now  func() time.Time
}

// NewTokenStore creates a token store backed by the given file path. The
// file is created lazily on first write; a missing file means an empty store.
func NewTokenStore(path string) (*TokenStore, error) {
	s := &TokenStore{
		path: path,
		now:  time.Now,
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// DefaultStorePath returns the credentials file location under the user
// config dir.
func DefaultStorePath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve config directory: %w", err)
	}
	return filepath.Join(configDir, "gitmax", "credentials.json"), nil
}

// SetToken stores the active access token, replacing any previous one
func (s *TokenStore) SetToken(token string) error {
	if !validToken(token) {
		return ErrInvalidToken
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data.Token = token
	return s.save()
}

// Token returns the active token. Absence is not an error: ok is false when
// no token is stored.
func (s *TokenStore) Token() (token string, ok bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data.Token == "" {
		return "", false, nil
	}
	return s.data.Token, true, nil
}

// ClearToken removes the active token. Clearing an empty store is a no-op.
func (s *TokenStore) ClearToken() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data.Token == "" {
		return nil
	}
	s.data.Token = ""
	return s.save()
}

// UpsertAccount records a login for an account. Accounts are deduplicated by
// GitHub ID; a repeat login refreshes the existing entry in place. The list
// is bounded; the oldest-seen account is evicted to make room.
func (s *TokenStore) UpsertAccount(rec AccountRecord) error {
	if rec.GitHubID == "" {
		return fmt.Errorf("account record missing github id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.LastSeen.IsZero() {
		rec.LastSeen = s.now()
	}

	for i := range s.data.RecentAccounts {
		if s.data.RecentAccounts[i].GitHubID == rec.GitHubID {
			s.data.RecentAccounts[i] = rec
			return s.save()
		}
	}

	s.data.RecentAccounts = append(s.data.RecentAccounts, rec)

	if len(s.data.RecentAccounts) > maxRecentAccounts {
		// Evict the account seen longest ago.
		oldest := 0
		for i := range s.data.RecentAccounts {
			if s.data.RecentAccounts[i].LastSeen.Before(s.data.RecentAccounts[oldest].LastSeen) {
				oldest = i
			}
		}
		s.data.RecentAccounts = append(
			s.data.RecentAccounts[:oldest],
			s.data.RecentAccounts[oldest+1:]...)
	}

	return s.save()
}

// Accounts returns the remembered accounts, most recently seen first, with
// LastSeen rendered relative to now.
func (s *TokenStore) Accounts() []AccountView {
	s.mu.Lock()
	defer s.mu.Unlock()

	sorted := make([]AccountRecord, len(s.data.RecentAccounts))
	copy(sorted, s.data.RecentAccounts)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].LastSeen.After(sorted[j].LastSeen)
	})

	now := s.now()
	views := make([]AccountView, len(sorted))
	for i, rec := range sorted {
		views[i] = AccountView{
			GitHubID:  rec.GitHubID,
			Username:  rec.Username,
			AvatarURL: rec.AvatarURL,
			LastSeen:  timeutil.Relative(rec.LastSeen, now),
		}
	}
	return views
}

// load reads the credentials file into memory. A missing file is an empty
// store.
func (s *TokenStore) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read credentials: %w", err)
	}

	if err := json.Unmarshal(data, &s.data); err != nil {
		return fmt.Errorf("failed to parse credentials: %w", err)
	}
	return nil
}

// save writes the store to disk with owner-only permissions.
// Callers must hold the mutex.
func (s *TokenStore) save() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write credentials: %w", err)
	}
	return nil
}

// validToken rejects empty tokens and anything carrying whitespace or
// control characters, which could corrupt an Authorization header.
func validToken(token string) bool {
	if token == "" {
		return false
	}
	for _, r := range token {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return false
		}
	}
	return true
}
