package entities

import "time"

// RepositoryMetrics are the headline numbers for a repository
type RepositoryMetrics struct {
	Stars  int `json:"stars"`
	Forks  int `json:"forks"`
	Issues int `json:"issues"`
}

// RepositoryAnalysis is the per-repository view served by the analysis endpoints
type RepositoryAnalysis struct {
	Repository  string            `json:"repository"`
	FullName    string            `json:"full_name"`
	Description string            `json:"description,omitempty"`
	Languages   map[string]int64  `json:"languages"`
	Metrics     RepositoryMetrics `json:"metrics"`
	Topics      []string          `json:"topics,omitempty"`
	PushedAt    *time.Time        `json:"pushed_at,omitempty"`
	Insights    []string          `json:"insights,omitempty"`
}

// CategoryScore is one weighted component of a profile score
type CategoryScore struct {
	Name   string  `json:"name"`
	Score  int     `json:"score"`  // 0-100 within the category
	Weight float64 `json:"weight"` // contribution to the overall score
	Detail string  `json:"detail,omitempty"`
}

// ProfileScore is the scored view of a profile against a job role
type ProfileScore struct {
	JobRole           string          `json:"job_role"`
	OverallScore      int             `json:"overall_score"` // 0-100
	Categories        []CategoryScore `json:"categories"`
	RepositoriesCount int             `json:"repositories_count"`
	FollowersCount    int             `json:"followers_count"`
}

// Recommendation is one actionable suggestion for improving a profile
type Recommendation struct {
	ID       int    `json:"id"`
	Text     string `json:"text"`
	Category string `json:"category"`
}
