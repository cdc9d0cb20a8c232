package services

import (
	"context"

	"github.com/gitmaxhq/gitmax/internal/github"
)

// GitHubAPI is the surface of the GitHub client the services depend on
type GitHubAPI interface {
	AuthorizeURL(state string) string
	ExchangeCode(ctx context.Context, code string) (string, error)
	User(ctx context.Context, accessToken string) (*github.AccountData, error)
	Repositories(ctx context.Context, accessToken string) ([]github.Repository, error)
	RepositoryLanguages(ctx context.Context, accessToken, fullName string) (github.Languages, error)
}
