package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gitmaxhq/gitmax/internal/domain/entities"
	"github.com/gitmaxhq/gitmax/internal/domain/repositories"
	"github.com/gitmaxhq/gitmax/internal/github"
)

// fakeUserRepo is an in-memory UserRepository for service tests
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*entities.User // by ID
	seq   int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*entities.User)}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *entities.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user.ID == "" {
		f.seq++
		user.ID = fmt.Sprintf("user-%d", f.seq)
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*entities.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	if !user.IsActive {
		return nil, repositories.ErrUserInactive
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserRepo) GetByGitHubID(ctx context.Context, githubID string) (*entities.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.GitHubID == githubID {
			if !user.IsActive {
				return nil, repositories.ErrUserInactive
			}
			copied := *user
			return &copied, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (f *fakeUserRepo) Update(ctx context.Context, user *entities.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[user.ID]; !ok {
		return repositories.ErrUserNotFound
	}
	user.UpdatedAt = time.Now()
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserRepo) UpdateLastSeen(ctx context.Context, userID string, seenAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[userID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	user.LastSeen = &seenAt
	return nil
}

func (f *fakeUserRepo) ExistsByGitHubID(ctx context.Context, githubID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.GitHubID == githubID {
			return true, nil
		}
	}
	return false, nil
}

// fakeTokenRepo is an in-memory RefreshTokenRepository for service tests
type fakeTokenRepo struct {
	mu     sync.Mutex
	tokens map[string]*entities.RefreshToken
	seq    int
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{tokens: make(map[string]*entities.RefreshToken)}
}

func (f *fakeTokenRepo) Create(ctx context.Context, token *entities.RefreshToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if token.ID == "" {
		f.seq++
		token.ID = fmt.Sprintf("token-%d", f.seq)
	}
	token.CreatedAt = time.Now()
	copied := *token
	f.tokens[token.ID] = &copied
	return nil
}

func (f *fakeTokenRepo) GetByID(ctx context.Context, id string) (*entities.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	token, ok := f.tokens[id]
	if !ok {
		return nil, repositories.ErrTokenNotFound
	}
	copied := *token
	return &copied, nil
}

func (f *fakeTokenRepo) Revoke(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if token, ok := f.tokens[id]; ok {
		token.Revoked = true
	}
	return nil
}

func (f *fakeTokenRepo) RevokeAllForUser(ctx context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, token := range f.tokens {
		if token.UserID == userID {
			token.Revoked = true
		}
	}
	return nil
}

func (f *fakeTokenRepo) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var deleted int64
	for id, token := range f.tokens {
		if token.ExpiresAt.Before(before) {
			delete(f.tokens, id)
			deleted++
		}
	}
	return deleted, nil
}

// fakeGitHub is a scripted GitHubAPI for service tests
type fakeGitHub struct {
	account    *github.AccountData
	repos      []github.Repository
	languages  map[string]github.Languages
	exchangeFn func(code string) (string, error)
}

func newFakeGitHub() *fakeGitHub {
	email := "octocat@example.com"
	avatar := "https://avatars.example.com/u/12345"
	return &fakeGitHub{
		account: &github.AccountData{
			ID:          12345,
			Login:       "octocat",
			Email:       &email,
			AvatarURL:   &avatar,
			HTMLURL:     "https://github.com/octocat",
			PublicRepos: 8,
			Followers:   20,
			Following:   5,
		},
		languages: make(map[string]github.Languages),
	}
}

func (f *fakeGitHub) AuthorizeURL(state string) string {
	return "https://github.com/login/oauth/authorize?state=" + state
}

func (f *fakeGitHub) ExchangeCode(ctx context.Context, code string) (string, error) {
	if f.exchangeFn != nil {
		return f.exchangeFn(code)
	}
	if code == "good-code" {
		return "gho_abc123", nil
	}
	return "", github.ErrTokenExchange
}

func (f *fakeGitHub) User(ctx context.Context, accessToken string) (*github.AccountData, error) {
	if accessToken != "gho_abc123" {
		return nil, github.ErrUnauthorized
	}
	return f.account, nil
}

func (f *fakeGitHub) Repositories(ctx context.Context, accessToken string) ([]github.Repository, error) {
	if accessToken != "gho_abc123" {
		return nil, github.ErrUnauthorized
	}
	return f.repos, nil
}

func (f *fakeGitHub) RepositoryLanguages(ctx context.Context, accessToken, fullName string) (github.Languages, error) {
	if accessToken != "gho_abc123" {
		return nil, github.ErrUnauthorized
	}
	return f.languages[fullName], nil
}
