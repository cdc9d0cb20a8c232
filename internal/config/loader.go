package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// expandEnvVars expands environment variables in the format ${VAR} or $VAR
func expandEnvVars(data []byte) []byte {
	return []byte(os.ExpandEnv(string(data)))
}

// DefaultConfigPaths defines the default locations to search for configuration files
var DefaultConfigPaths = []string{
	"./config.yaml",
	"./config.yml",
	"./configs/config.yaml",
	"./configs/config.yml",
	"./configs/development.yaml",
	"/etc/gitmax/config.yaml",
	"/etc/gitmax/config.yml",
}

// Load loads the configuration from the specified file or default locations.
// A .env file in the working directory is read first so ${VAR} references in
// the yaml resolve against it.
func Load(configPath string) (*Config, error) {
	_ = godotenv.Load()

	// Set default values
	config := &Config{
		HTTP: HTTPConfig{
			Host: "localhost",
			Port: 8000,
		},
		Database: DatabaseConfig{
			Postgres: PostgresConfig{
				Host:     "localhost",
				Port:     5432,
				Database: "gitmax",
				User:     "postgres",
				SSLMode:  "disable",
			},
		},
		Auth: AuthConfig{
			JWT: JWTConfig{
				Lifetime: 30 * time.Minute,
			},
			RefreshTTL: 30 * 24 * time.Hour,
		},
		Frontend: FrontendConfig{
			URL: "http://localhost:3000",
		},
		Environment: "local",
	}

	// If no config path is provided, search in default locations
	if configPath == "" {
		configPath = findConfigFile()
	}

	// Load configuration from file if it exists
	if configPath != "" && fileExists(configPath) {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		// Expand environment variables in the config
		data = expandEnvVars(data)

		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnvOverrides(config)

	// Validate configuration
	if err := validate(config); err != nil {
		return nil, err
	}

	return config, nil
}

// LoadFromDefaults loads configuration using only defaults and environment variables
func LoadFromDefaults() (*Config, error) {
	return Load("")
}

// applyEnvOverrides lets the well-known env vars win over file values, mirroring
// how the deployment sets secrets without a config file.
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("GITHUB_CLIENT_ID"); v != "" {
		config.GitHub.ClientID = v
	}
	if v := os.Getenv("GITHUB_CLIENT_SECRET"); v != "" {
		config.GitHub.ClientSecret = v
	}
	if v := os.Getenv("GITHUB_REDIRECT_URI"); v != "" {
		config.GitHub.RedirectURI = v
	}
	if v := os.Getenv("SECRET_KEY"); v != "" {
		config.Auth.JWT.SigningKey = v
	}
	if v := os.Getenv("SESSION_SECRET"); v != "" {
		config.Auth.SessionSecret = v
	}
	if v := os.Getenv("FRONTEND_URL"); v != "" {
		config.Frontend.URL = v
	}
	if v := os.Getenv("DATABASE_PASSWORD"); v != "" {
		config.Database.Postgres.Password = v
	}
}

// findConfigFile searches for a configuration file in default locations
func findConfigFile() string {
	for _, path := range DefaultConfigPaths {
		if fileExists(path) {
			return path
		}
	}
	return ""
}

// fileExists checks if a file exists and is not a directory
func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	if os.IsNotExist(err) {
		return false
	}
	return !info.IsDir()
}

// validate performs basic validation on the configuration
func validate(config *Config) error {
	if config.Database.Postgres.Host == "" {
		return fmt.Errorf("postgres host is required")
	}
	if config.Database.Postgres.Database == "" {
		return fmt.Errorf("postgres database name is required")
	}
	if config.Database.Postgres.User == "" {
		return fmt.Errorf("postgres user is required")
	}

	if config.HTTP.Port < 1 || config.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535")
	}

	if config.Auth.JWT.Lifetime <= 0 {
		return fmt.Errorf("auth.jwt.lifetime must be positive")
	}

	return nil
}
