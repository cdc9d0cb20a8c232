package config

import (
	"fmt"
	"time"
)

// Config represents the application configuration
type Config struct {
	HTTP        HTTPConfig     `yaml:"http"`
	Database    DatabaseConfig `yaml:"database"`
	Auth        AuthConfig     `yaml:"auth"`
	GitHub      GitHubConfig   `yaml:"github"`
	Frontend    FrontendConfig `yaml:"frontend"`
	Environment string         `yaml:"environment" default:"local"` // local, dev, prod
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	Host string `yaml:"host" default:"localhost"`
	Port int    `yaml:"port" default:"8000"`
}

// Address returns the listen address for the HTTP server
func (h *HTTPConfig) Address() string {
	return fmt.Sprintf("%s:%d", h.Host, h.Port)
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Postgres PostgresConfig `yaml:"postgres"`
}

// PostgresConfig holds PostgreSQL-specific configuration
type PostgresConfig struct {
	Host     string `yaml:"host" default:"localhost"`
	Port     int    `yaml:"port" default:"5432"`
	Database string `yaml:"database" default:"gitmax"`
	User     string `yaml:"user" default:"postgres"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode" default:"disable"` // disable, require, verify-ca, verify-full
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWT           JWTConfig     `yaml:"jwt"`
	SessionSecret string        `yaml:"session_secret"`                  // base64 key for the refresh cookie store
	RefreshTTL    time.Duration `yaml:"refresh_lifetime" default:"720h"` // refresh credential lifetime, default 30 days
}

// JWTConfig holds JWT token configuration
type JWTConfig struct {
	SigningKey string        `yaml:"signing_key"`            // Secret key for signing JWTs
	Lifetime   time.Duration `yaml:"lifetime" default:"30m"` // Access token lifetime
}

// GitHubConfig holds GitHub OAuth application configuration
type GitHubConfig struct {
	ClientID     string   `yaml:"client_id"`
	ClientSecret string   `yaml:"client_secret"`
	RedirectURI  string   `yaml:"redirect_uri"`
	Scopes       []string `yaml:"scopes,omitempty"` // defaults to ["read:user", "user:email"]
	APIBaseURL   string   `yaml:"api_base_url,omitempty"`
}

// FrontendConfig holds settings for the browser-facing side of the flow
type FrontendConfig struct {
	URL         string   `yaml:"url" default:"http://localhost:3000"`
	CORSOrigins []string `yaml:"cors_origins,omitempty"`
}

// ConnectionString returns the PostgreSQL connection string
func (p *PostgresConfig) ConnectionString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode)
}
