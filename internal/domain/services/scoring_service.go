package services

import (
	"context"
	"log/slog"

	"github.com/gitmaxhq/gitmax/internal/domain/entities"
	"github.com/gitmaxhq/gitmax/internal/scoring"
)

// ScoringService scores profiles against job roles and produces
// recommendations
type ScoringService struct {
	analysis *AnalysisService
	log      *slog.Logger
}

// NewScoringService creates a new scoring service
func NewScoringService(analysis *AnalysisService) *ScoringService {
	return &ScoringService{
		analysis: analysis,
		log:      slog.Default().With(slog.String("service", "scoring")),
	}
}

// ScoreProfile scores the user's profile for a target job role
func (s *ScoringService) ScoreProfile(ctx context.Context, user *entities.User, jobRole string) (*entities.ProfileScore, error) {
	analyses, err := s.analysis.AnalyzeRepositories(ctx, user)
	if err != nil {
		return nil, err
	}

	score := scoring.Score(user, analyses, jobRole)
	s.log.Debug("scored profile",
		slog.String("user_id", user.ID),
		slog.String("job_role", score.JobRole),
		slog.Int("overall_score", score.OverallScore))

	return score, nil
}

// Recommendations produces suggestions to improve the profile for a role
func (s *ScoringService) Recommendations(ctx context.Context, user *entities.User, jobRole string) ([]entities.Recommendation, error) {
	analyses, err := s.analysis.AnalyzeRepositories(ctx, user)
	if err != nil {
		return nil, err
	}

	return scoring.Recommend(user, analyses, jobRole), nil
}
