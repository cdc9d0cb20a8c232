package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gitmaxhq/gitmax/internal/domain/entities"
	"github.com/gitmaxhq/gitmax/internal/github"
	"github.com/gitmaxhq/gitmax/internal/scoring"
)

// ErrNoProviderToken indicates the user has no stored GitHub token, so the
// GitHub API cannot be called on their behalf.
var ErrNoProviderToken = fmt.Errorf("no github token on file")

// ErrRepositoryNotFound indicates the named repository is not among the
// user's recent repositories.
var ErrRepositoryNotFound = fmt.Errorf("repository not found")

// AnalysisService builds repository analyses from GitHub data
type AnalysisService struct {
	githubAPI GitHubAPI
	log       *slog.Logger
}

// NewAnalysisService creates a new analysis service
func NewAnalysisService(githubAPI GitHubAPI) *AnalysisService {
	return &AnalysisService{
		githubAPI: githubAPI,
		log:       slog.Default().With(slog.String("service", "analysis")),
	}
}

// AnalyzeRepositories analyzes the user's most recently updated repositories
func (s *AnalysisService) AnalyzeRepositories(ctx context.Context, user *entities.User) ([]entities.RepositoryAnalysis, error) {
	token := user.ProviderToken()
	if token == "" {
		return nil, ErrNoProviderToken
	}

	repos, err := s.githubAPI.Repositories(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch repositories: %w", err)
	}

	now := time.Now()
	analyses := make([]entities.RepositoryAnalysis, 0, len(repos))
	for _, repo := range repos {
		analysis, err := s.analyzeOne(ctx, token, repo, now)
		if err != nil {
			// One bad repository should not sink the whole analysis.
			s.log.Warn("skipping repository",
				slog.String("repository", repo.FullName),
				slog.String("error", err.Error()))
			continue
		}
		analyses = append(analyses, *analysis)
	}

	return analyses, nil
}

// AnalyzeRepository analyzes a single repository by name
func (s *AnalysisService) AnalyzeRepository(ctx context.Context, user *entities.User, repoName string) (*entities.RepositoryAnalysis, error) {
	token := user.ProviderToken()
	if token == "" {
		return nil, ErrNoProviderToken
	}

	repos, err := s.githubAPI.Repositories(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch repositories: %w", err)
	}

	for _, repo := range repos {
		if repo.Name == repoName {
			return s.analyzeOne(ctx, token, repo, time.Now())
		}
	}

	return nil, ErrRepositoryNotFound
}

func (s *AnalysisService) analyzeOne(ctx context.Context, token string, repo github.Repository, now time.Time) (*entities.RepositoryAnalysis, error) {
	languages, err := s.githubAPI.RepositoryLanguages(ctx, token, repo.FullName)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch languages: %w", err)
	}

	analysis := entities.RepositoryAnalysis{
		Repository: repo.Name,
		FullName:   repo.FullName,
		Languages:  languages,
		Topics:     repo.Topics,
		PushedAt:   repo.PushedAt,
		Metrics: entities.RepositoryMetrics{
			Stars:  repo.StargazersCount,
			Forks:  repo.ForksCount,
			Issues: repo.OpenIssuesCount,
		},
	}
	if repo.Description != nil {
		analysis.Description = *repo.Description
	}
	analysis.Insights = scoring.Insights(analysis, now)

	return &analysis, nil
}
