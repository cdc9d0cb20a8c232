package github

import "time"

// AccountData is the subset of the GitHub /user payload we care about
type AccountData struct {
	ID          int64   `json:"id"`
	Login       string  `json:"login"`
	Email       *string `json:"email"`
	AvatarURL   *string `json:"avatar_url"`
	HTMLURL     string  `json:"html_url"`
	PublicRepos int     `json:"public_repos"`
	Followers   int     `json:"followers"`
	Following   int     `json:"following"`
}

// Repository is the subset of the GitHub repository payload we care about
type Repository struct {
	Name            string     `json:"name"`
	FullName        string     `json:"full_name"`
	Description     *string    `json:"description"`
	StargazersCount int        `json:"stargazers_count"`
	ForksCount      int        `json:"forks_count"`
	OpenIssuesCount int        `json:"open_issues_count"`
	Topics          []string   `json:"topics"`
	Fork            bool       `json:"fork"`
	PushedAt        *time.Time `json:"pushed_at"`
	CreatedAt       *time.Time `json:"created_at"`
	UpdatedAt       *time.Time `json:"updated_at"`
}

// Languages maps language name to bytes of code, as returned by the
// repository languages endpoint.
type Languages map[string]int64
