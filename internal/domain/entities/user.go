package entities

import (
	"time"
)

// User represents a GitHub-backed user account
type User struct {
	ID          string     `json:"id" db:"id"`
	GitHubID    string     `json:"github_id" db:"github_id"`
	Username    string     `json:"username" db:"username"`
	Email       *string    `json:"email,omitempty" db:"email"`
	AvatarURL   *string    `json:"avatar_url,omitempty" db:"avatar_url"`
	GitHubURL   *string    `json:"github_url,omitempty" db:"github_url"`
	PublicRepos int        `json:"public_repos" db:"public_repos"`
	Followers   int        `json:"followers" db:"followers"`
	Following   int        `json:"following" db:"following"`
	GitHubToken *string    `json:"-" db:"github_token"` // provider access token, never serialized
	IsActive    bool       `json:"is_active" db:"disabled"` // db column is 'disabled' (inverted)
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
	LastSeen    *time.Time `json:"last_seen,omitempty" db:"last_seen"`
}

// Active returns true if the user is active
func (u *User) Active() bool {
	return u.IsActive
}

// ProviderToken returns the stored GitHub access token, or empty if none
func (u *User) ProviderToken() string {
	if u.GitHubToken == nil {
		return ""
	}
	return *u.GitHubToken
}

// UserUpdate carries the mutable profile fields for a partial update.
// Nil pointers leave the stored value untouched.
type UserUpdate struct {
	Username    *string `json:"username,omitempty"`
	Email       *string `json:"email,omitempty"`
	AvatarURL   *string `json:"avatar_url,omitempty"`
	GitHubURL   *string `json:"github_url,omitempty"`
	PublicRepos *int    `json:"public_repos,omitempty"`
	Followers   *int    `json:"followers,omitempty"`
	Following   *int    `json:"following,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

// Apply merges the update into the user
func (u *User) Apply(update UserUpdate) {
	if update.Username != nil {
		u.Username = *update.Username
	}
	if update.Email != nil {
		u.Email = update.Email
	}
	if update.AvatarURL != nil {
		u.AvatarURL = update.AvatarURL
	}
	if update.GitHubURL != nil {
		u.GitHubURL = update.GitHubURL
	}
	if update.PublicRepos != nil {
		u.PublicRepos = *update.PublicRepos
	}
	if update.Followers != nil {
		u.Followers = *update.Followers
	}
	if update.Following != nil {
		u.Following = *update.Following
	}
	if update.IsActive != nil {
		u.IsActive = *update.IsActive
	}
}
