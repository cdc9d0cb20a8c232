package scoring

import (
	"fmt"

	"github.com/gitmaxhq/gitmax/internal/domain/entities"
)

// Category weights sum to 1.0.
const (
	weightActivity      = 0.30
	weightPopularity    = 0.25
	weightLanguageFit   = 0.30
	weightDocumentation = 0.15
)

// Score rates a profile against a job role. The result is deterministic for
// the same inputs. The overall score never drops below the simple
// repos-and-followers floor, so sparse repository data cannot zero out an
// otherwise active account.
func Score(user *entities.User, analyses []entities.RepositoryAnalysis, jobRole string) *entities.ProfileScore {
	role, _ := RoleFor(jobRole)

	activity := scoreActivity(user, analyses)
	popularity := scorePopularity(user, analyses)
	languageFit := scoreLanguageFit(role, analyses)
	documentation := scoreDocumentation(analyses)

	categories := []entities.CategoryScore{
		{
			Name:   "activity",
			Score:  activity,
			Weight: weightActivity,
			Detail: fmt.Sprintf("%d public repositories", user.PublicRepos),
		},
		{
			Name:   "popularity",
			Score:  popularity,
			Weight: weightPopularity,
			Detail: fmt.Sprintf("%d followers, %d stars across analyzed repositories", user.Followers, totalStars(analyses)),
		},
		{
			Name:   "language_fit",
			Score:  languageFit,
			Weight: weightLanguageFit,
			Detail: fmt.Sprintf("language mix matched against the %s role", role.Title),
		},
		{
			Name:   "documentation",
			Score:  documentation,
			Weight: weightDocumentation,
			Detail: "descriptions and topics on analyzed repositories",
		},
	}

	weighted := 0.0
	for _, c := range categories {
		weighted += float64(c.Score) * c.Weight
	}
	overall := int(weighted + 0.5)

	// Floor at the simple formula so a thin analysis never undercuts an
	// active account.
	floor := min(100, user.PublicRepos*5+user.Followers*2)
	if overall < floor {
		overall = floor
	}
	if overall > 100 {
		overall = 100
	}

	return &entities.ProfileScore{
		JobRole:           role.Title,
		OverallScore:      overall,
		Categories:        categories,
		RepositoriesCount: len(analyses),
		FollowersCount:    user.Followers,
	}
}

// scoreActivity rewards repository volume and recent pushes
func scoreActivity(user *entities.User, analyses []entities.RepositoryAnalysis) int {
	score := user.PublicRepos * 5
	for _, a := range analyses {
		if a.PushedAt != nil {
			score += 2
		}
	}
	return clamp(score)
}

// scorePopularity rewards followers, stars and forks
func scorePopularity(user *entities.User, analyses []entities.RepositoryAnalysis) int {
	score := user.Followers * 2
	for _, a := range analyses {
		score += a.Metrics.Stars + a.Metrics.Forks*2
	}
	return clamp(score)
}

// scoreLanguageFit measures how much of the repository code is written in
// languages the role values, weighted by bytes.
func scoreLanguageFit(role RoleProfile, analyses []entities.RepositoryAnalysis) int {
	if len(role.Languages) == 0 {
		// Generic role: any code at all counts.
		for _, a := range analyses {
			if len(a.Languages) > 0 {
				return 60
			}
		}
		return 0
	}

	var total, matched float64
	for _, a := range analyses {
		for lang, bytes := range a.Languages {
			total += float64(bytes)
			if weight, ok := role.Languages[lang]; ok {
				matched += float64(bytes) * weight
			}
		}
	}
	if total == 0 {
		return 0
	}

	score := int(matched / total * 100)
	score += topicBonus(role, analyses)
	return clamp(score)
}

// topicBonus adds a small boost for repositories tagged with role topics
func topicBonus(role RoleProfile, analyses []entities.RepositoryAnalysis) int {
	bonus := 0
	for _, a := range analyses {
		for _, topic := range a.Topics {
			for _, want := range role.Topics {
				if topic == want {
					bonus += 5
				}
			}
		}
	}
	if bonus > 20 {
		bonus = 20
	}
	return bonus
}

// scoreDocumentation rewards repositories with descriptions and topics
func scoreDocumentation(analyses []entities.RepositoryAnalysis) int {
	if len(analyses) == 0 {
		return 0
	}
	documented := 0
	for _, a := range analyses {
		if a.Description != "" {
			documented++
		}
		if len(a.Topics) > 0 {
			documented++
		}
	}
	// Two points available per repository.
	return clamp(documented * 100 / (len(analyses) * 2))
}

func totalStars(analyses []entities.RepositoryAnalysis) int {
	stars := 0
	for _, a := range analyses {
		stars += a.Metrics.Stars
	}
	return stars
}

func clamp(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
