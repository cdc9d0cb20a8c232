package scoring

import (
	"testing"
	"time"

	"github.com/gitmaxhq/gitmax/internal/domain/entities"
)

func testUser(repos, followers int) *entities.User {
	return &entities.User{
		ID:          "u1",
		GitHubID:    "12345",
		Username:    "octocat",
		PublicRepos: repos,
		Followers:   followers,
		IsActive:    true,
	}
}

func TestRoleFor(t *testing.T) {
	tests := []struct {
		input   string
		wantKey string
		known   bool
	}{
		{"Backend Developer", "backend-developer", true},
		{"backend developer", "backend-developer", true},
		{"Backend Engineer", "backend-developer", true},
		{"Frontend Developer", "frontend-developer", true},
		{"Full Stack Developer", "fullstack-developer", true},
		{"SRE", "devops-engineer", true},
		{"Data Scientist", "data-engineer", true},
		{"Underwater Basket Weaver", "underwater-basket-weaver", false},
		{"", "software-engineer", false},
	}

	for _, tc := range tests {
		role, known := RoleFor(tc.input)
		if role.Key != tc.wantKey {
			t.Errorf("RoleFor(%q) key = %q, want %q", tc.input, role.Key, tc.wantKey)
		}
		if known != tc.known {
			t.Errorf("RoleFor(%q) known = %v, want %v", tc.input, known, tc.known)
		}
	}
}

func TestScoreFallbackFloor(t *testing.T) {
	// With no repository analyses, the score still reflects repos and
	// followers through the floor formula.
	user := testUser(8, 20)

	score := Score(user, nil, "Backend Developer")

	want := 8*5 + 20*2 // 80
	if score.OverallScore < want {
		t.Errorf("overall score %d below floor %d", score.OverallScore, want)
	}
	if score.RepositoriesCount != 0 {
		t.Errorf("expected 0 repositories counted, got %d", score.RepositoriesCount)
	}
	if score.FollowersCount != 20 {
		t.Errorf("expected 20 followers, got %d", score.FollowersCount)
	}
}

func TestScoreFloorCapsAtHundred(t *testing.T) {
	user := testUser(50, 100)

	score := Score(user, nil, "Backend Developer")

	if score.OverallScore != 100 {
		t.Errorf("expected capped score 100, got %d", score.OverallScore)
	}
}

func TestScoreLanguageFit(t *testing.T) {
	user := testUser(2, 0)
	pushed := time.Now().Add(-24 * time.Hour)
	analyses := []entities.RepositoryAnalysis{
		{
			Repository: "api-server",
			FullName:   "octocat/api-server",
			Languages:  map[string]int64{"Go": 90000, "Makefile": 10000},
			Metrics:    entities.RepositoryMetrics{Stars: 5},
			PushedAt:   &pushed,
		},
	}

	backend := Score(user, analyses, "Backend Developer")
	frontend := Score(user, analyses, "Frontend Developer")

	backendFit := categoryScore(t, backend, "language_fit")
	frontendFit := categoryScore(t, frontend, "language_fit")
	if backendFit <= frontendFit {
		t.Errorf("Go-heavy profile should fit backend (%d) better than frontend (%d)", backendFit, frontendFit)
	}
}

func TestScoreDeterministic(t *testing.T) {
	user := testUser(3, 7)
	analyses := []entities.RepositoryAnalysis{
		{
			Repository:  "widget",
			Description: "a widget",
			Languages:   map[string]int64{"Go": 1000, "Shell": 1000},
			Topics:      []string{"api"},
			Metrics:     entities.RepositoryMetrics{Stars: 3, Forks: 1},
		},
	}

	first := Score(user, analyses, "Backend Developer")
	second := Score(user, analyses, "Backend Developer")

	if first.OverallScore != second.OverallScore {
		t.Errorf("score not deterministic: %d vs %d", first.OverallScore, second.OverallScore)
	}
	if len(first.Categories) != 4 {
		t.Errorf("expected 4 categories, got %d", len(first.Categories))
	}
}

func TestScoreCategoryWeightsSumToOne(t *testing.T) {
	score := Score(testUser(1, 1), nil, "Backend Developer")

	var sum float64
	for _, c := range score.Categories {
		sum += c.Weight
	}
	if sum < 0.999 || sum > 1.001 {
		t.Errorf("category weights sum to %f, want 1.0", sum)
	}
}

func categoryScore(t *testing.T, score *entities.ProfileScore, name string) int {
	t.Helper()
	for _, c := range score.Categories {
		if c.Name == name {
			return c.Score
		}
	}
	t.Fatalf("category %q not found", name)
	return 0
}

func TestRecommendDefaultsWhenSparse(t *testing.T) {
	// A thin profile gets five recommendations with defaults topping up.
	user := testUser(1, 0)

	recs := Recommend(user, nil, "Backend Developer")

	if len(recs) != 5 {
		t.Fatalf("expected 5 recommendations, got %d", len(recs))
	}
	for i, r := range recs {
		if r.ID != i+1 {
			t.Errorf("recommendation %d has id %d", i, r.ID)
		}
		if r.Text == "" || r.Category == "" {
			t.Errorf("recommendation %d is incomplete: %+v", i, r)
		}
	}
}

func TestRecommendFlagsUndocumentedRepos(t *testing.T) {
	user := testUser(10, 50)
	analyses := []entities.RepositoryAnalysis{
		{Repository: "a", Languages: map[string]int64{"Go": 1000}},
		{Repository: "b", Description: "documented", Topics: []string{"go"}, Languages: map[string]int64{"Go": 1000}},
	}

	recs := Recommend(user, analyses, "Backend Developer")

	found := false
	for _, r := range recs {
		if r.Category == "documentation" {
			found = true
		}
	}
	if !found {
		t.Error("expected a documentation recommendation for undocumented repos")
	}
}

func TestInsights(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	pushed := now.Add(-7 * 24 * time.Hour)

	a := entities.RepositoryAnalysis{
		Repository:  "widget",
		Description: "a widget",
		Languages:   map[string]int64{"Go": 75000, "Makefile": 25000},
		Topics:      []string{"go"},
		Metrics:     entities.RepositoryMetrics{Stars: 150, Forks: 12},
		PushedAt:    &pushed,
	}

	insights := Insights(a, now)

	if len(insights) == 0 {
		t.Fatal("expected insights for a rich repository")
	}
	if insights[0] != "Primarily written in Go (75% of the codebase)." {
		t.Errorf("unexpected first insight: %q", insights[0])
	}
}

func TestInsightsEmptyRepository(t *testing.T) {
	now := time.Now()

	insights := Insights(entities.RepositoryAnalysis{Repository: "empty"}, now)

	// An empty repository still yields the missing-metadata observations.
	if len(insights) != 2 {
		t.Fatalf("expected 2 insights, got %d: %v", len(insights), insights)
	}
}
