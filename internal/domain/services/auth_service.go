package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/gitmaxhq/gitmax/internal/auth"
	"github.com/gitmaxhq/gitmax/internal/domain/entities"
	"github.com/gitmaxhq/gitmax/internal/domain/repositories"
	"github.com/gitmaxhq/gitmax/internal/github"
	"github.com/gitmaxhq/gitmax/internal/pkg/metrics"
)

// AuthResult is the outcome of a successful login or refresh
type AuthResult struct {
	AccessToken  string
	ExpiresAt    time.Time
	RefreshToken string // opaque "id.secret" value for the refresh cookie
	User         *entities.User
}

// AuthService provides business logic for the GitHub login flow and
// access token lifecycle
type AuthService struct {
	userRepo   repositories.UserRepository
	tokenRepo  repositories.RefreshTokenRepository
	githubAPI  GitHubAPI
	jwtManager *auth.JWTManager
	refreshTTL time.Duration
	log        *slog.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo repositories.UserRepository,
	tokenRepo repositories.RefreshTokenRepository,
	githubAPI GitHubAPI,
	jwtManager *auth.JWTManager,
	refreshTTL time.Duration,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		tokenRepo:  tokenRepo,
		githubAPI:  githubAPI,
		jwtManager: jwtManager,
		refreshTTL: refreshTTL,
		log:        slog.Default().With(slog.String("service", "auth")),
	}
}

// LoginURL returns the GitHub authorization URL to send the user to
func (s *AuthService) LoginURL(ctx context.Context) (string, error) {
	state, err := generateSecureToken(16)
	if err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	return s.githubAPI.AuthorizeURL(state), nil
}

// HandleCallback completes the OAuth flow: it exchanges the authorization
// code, upserts the user record from GitHub account data, and issues an
// access token plus a refresh token.
func (s *AuthService) HandleCallback(ctx context.Context, code string) (*AuthResult, error) {
	if code == "" {
		metrics.AuthLogins.WithLabelValues("failure").Inc()
		return nil, fmt.Errorf("%w: missing code", ErrCallbackFailed)
	}

	providerToken, err := s.githubAPI.ExchangeCode(ctx, code)
	if err != nil {
		metrics.AuthLogins.WithLabelValues("failure").Inc()
		s.log.Warn("code exchange failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %v", ErrCallbackFailed, err)
	}

	account, err := s.githubAPI.User(ctx, providerToken)
	if err != nil {
		metrics.AuthLogins.WithLabelValues("failure").Inc()
		return nil, fmt.Errorf("%w: %v", ErrCallbackFailed, err)
	}

	user, err := s.upsertUser(ctx, account, providerToken)
	if err != nil {
		metrics.AuthLogins.WithLabelValues("failure").Inc()
		return nil, err
	}

	metrics.AuthLogins.WithLabelValues("success").Inc()
	s.log.Info("user logged in",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username))

	return s.issueTokens(ctx, user)
}

// Refresh exchanges a valid refresh token for a fresh access token. The used
// refresh token is revoked and a new one issued, so each value works once.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	id, secret, ok := splitRefreshToken(refreshToken)
	if !ok {
		metrics.AuthRefreshes.WithLabelValues("failure").Inc()
		return nil, ErrInvalidRefreshToken
	}

	record, err := s.tokenRepo.GetByID(ctx, id)
	if err != nil {
		metrics.AuthRefreshes.WithLabelValues("failure").Inc()
		return nil, ErrInvalidRefreshToken
	}

	if !record.VerifySecret(secret) {
		metrics.AuthRefreshes.WithLabelValues("failure").Inc()
		return nil, ErrInvalidRefreshToken
	}
	if !record.Usable() {
		metrics.AuthRefreshes.WithLabelValues("failure").Inc()
		if record.Revoked {
			return nil, ErrInvalidRefreshToken
		}
		return nil, ErrRefreshTokenExpired
	}

	user, err := s.userRepo.GetByID(ctx, record.UserID)
	if err != nil {
		metrics.AuthRefreshes.WithLabelValues("failure").Inc()
		return nil, ErrInvalidRefreshToken
	}

	// Rotate: the old token is dead as soon as the new one exists.
	if err := s.tokenRepo.Revoke(ctx, record.ID); err != nil {
		return nil, fmt.Errorf("failed to rotate refresh token: %w", err)
	}

	metrics.AuthRefreshes.WithLabelValues("success").Inc()
	s.log.Debug("access token refreshed", slog.String("user_id", user.ID))

	return s.issueTokens(ctx, user)
}

// Logout revokes the presented refresh token. Unknown or already revoked
// tokens are not an error; logout must always succeed locally.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	id, _, ok := splitRefreshToken(refreshToken)
	if !ok {
		return nil
	}
	if err := s.tokenRepo.Revoke(ctx, id); err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return nil
}

// CurrentUser loads the user for a validated access token's claims and
// stamps their last seen time.
func (s *AuthService) CurrentUser(ctx context.Context, githubID string) (*entities.User, error) {
	user, err := s.userRepo.GetByGitHubID(ctx, githubID)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.UpdateLastSeen(ctx, user.ID, time.Now()); err != nil {
		// Last seen is best effort; the lookup already succeeded.
		s.log.Debug("failed to update last seen", slog.String("user_id", user.ID))
	}

	return user, nil
}

// UpdateProfile applies a partial update to the user's profile
func (s *AuthService) UpdateProfile(ctx context.Context, githubID string, update entities.UserUpdate) (*entities.User, error) {
	user, err := s.userRepo.GetByGitHubID(ctx, githubID)
	if err != nil {
		return nil, err
	}

	user.Apply(update)

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return user, nil
}

// CleanupExpiredTokens removes refresh tokens past their expiry
func (s *AuthService) CleanupExpiredTokens(ctx context.Context) (int64, error) {
	deleted, err := s.tokenRepo.DeleteExpired(ctx, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup expired tokens: %w", err)
	}
	if deleted > 0 {
		s.log.Info("cleaned up expired refresh tokens", slog.Int64("deleted", deleted))
	}
	return deleted, nil
}

// upsertUser creates or refreshes the local user record from GitHub data
func (s *AuthService) upsertUser(ctx context.Context, account *github.AccountData, providerToken string) (*entities.User, error) {
	githubID := strconv.FormatInt(account.ID, 10)

	user, err := s.userRepo.GetByGitHubID(ctx, githubID)
	if err != nil {
		if !IsUserNotFound(err) {
			return nil, fmt.Errorf("failed to look up user: %w", err)
		}

		user = &entities.User{
			GitHubID: githubID,
			IsActive: true,
		}
		applyAccountData(user, account, providerToken)

		if err := s.userRepo.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		return user, nil
	}

	applyAccountData(user, account, providerToken)
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

func applyAccountData(user *entities.User, account *github.AccountData, providerToken string) {
	user.Username = account.Login
	user.Email = account.Email
	user.AvatarURL = account.AvatarURL
	if account.HTMLURL != "" {
		user.GitHubURL = &account.HTMLURL
	}
	user.PublicRepos = account.PublicRepos
	user.Followers = account.Followers
	user.Following = account.Following
	user.GitHubToken = &providerToken
}

// issueTokens mints a JWT access token and a fresh refresh token for a user
func (s *AuthService) issueTokens(ctx context.Context, user *entities.User) (*AuthResult, error) {
	avatarURL := ""
	if user.AvatarURL != nil {
		avatarURL = *user.AvatarURL
	}

	accessToken, expiresAt, err := s.jwtManager.GenerateToken(user.GitHubID, user.Username, avatarURL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	secret, err := generateSecureToken(32)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh secret: %w", err)
	}

	hash, err := entities.HashRefreshSecret(secret)
	if err != nil {
		return nil, fmt.Errorf("failed to hash refresh secret: %w", err)
	}

	record := &entities.RefreshToken{
		UserID:    user.ID,
		TokenHash: hash,
		ExpiresAt: time.Now().Add(s.refreshTTL),
	}
	if err := s.tokenRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &AuthResult{
		AccessToken:  accessToken,
		ExpiresAt:    expiresAt,
		RefreshToken: record.ID + "." + secret,
		User:         user,
	}, nil
}

// splitRefreshToken splits an opaque "id.secret" refresh token value
func splitRefreshToken(token string) (id, secret string, ok bool) {
	id, secret, found := strings.Cut(token, ".")
	if !found || id == "" || secret == "" {
		return "", "", false
	}
	return id, secret, true
}

// generateSecureToken returns a URL-safe random token of n bytes entropy
func generateSecureToken(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
