package main

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/gitmaxhq/gitmax/internal/auth"
	"github.com/gitmaxhq/gitmax/internal/config"
	"github.com/gitmaxhq/gitmax/internal/domain/services"
	"github.com/gitmaxhq/gitmax/internal/github"
	"github.com/gitmaxhq/gitmax/internal/infrastructure/database/postgres"
	"github.com/gitmaxhq/gitmax/internal/pkg/idgen"
	"github.com/gitmaxhq/gitmax/internal/pkg/logger"
	"github.com/gitmaxhq/gitmax/migrations"
	"github.com/gitmaxhq/gitmax/server/internal/http/handlers"
	"github.com/gitmaxhq/gitmax/server/internal/http/middleware"
	"github.com/gitmaxhq/gitmax/server/internal/session"
)

func main() {
	rootCmd := newRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var (
		forceVersion  int
		configPath    string
		logLevel      string
		logFile       string
		logToStderr   bool
		alsoLogStderr bool
		logFormat     string
	)

	cmd := &cobra.Command{
		Use:   "server",
		Short: "GitMax API server",
		Long:  "The REST API server for the GitMax service",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return setupServerLogging(logLevel, logFile, logToStderr, alsoLogStderr, logFormat)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(configPath, forceVersion)
		},
	}

	cmd.Flags().IntVar(&forceVersion, "force-migration", -1, "Force migration version (use to fix dirty migration state)")
	cmd.Flags().StringVar(&configPath, "config", "", "Path to config file (optional)")

	// Add logging flags
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	cmd.Flags().StringVar(&logFile, "log-file", "", "Log file path (if specified, logs to file instead of stderr)")
	cmd.Flags().BoolVar(&logToStderr, "logtostderr", false, "Log to stderr (default behavior unless --log-file specified)")
	cmd.Flags().BoolVar(&alsoLogStderr, "alsologtostderr", false, "Log to both file and stderr")
	cmd.Flags().StringVar(&logFormat, "log-format", "json", "Log format (text, json)")

	return cmd
}

// setupServerLogging configures the global logger for the server
func setupServerLogging(logLevel, logFile string, logToStderr, alsoLogStderr bool, logFormat string) error {
	// Default to stderr logging unless file is specified
	if logFile == "" {
		logToStderr = true
	}

	cfg := logger.Config{
		Level:         logger.ParseLevel(logLevel),
		LogFile:       logFile,
		LogToStderr:   logToStderr,
		AlsoLogStderr: alsoLogStderr,
		Format:        logFormat,
	}

	globalLogger, err := logger.SetupLogger(cfg)
	if err != nil {
		return err
	}

	slog.SetDefault(globalLogger)

	return nil
}

func runServer(configPath string, forceVersion int) error {
	log := slog.Default().With("component", "server")
	log.Info("Starting server initialization")

	// Initialize Snowflake ID generator
	if err := idgen.Initialize(1); err != nil {
		return fmt.Errorf("failed to initialize ID generator: %w", err)
	}

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log.Info("Initializing PostgreSQL database",
		"user", cfg.Database.Postgres.User,
		"host", cfg.Database.Postgres.Host,
		"database", cfg.Database.Postgres.Database)

	connString := cfg.Database.Postgres.ConnectionString()

	// Connect to PostgreSQL with retries (for container startup ordering)
	var pgConn *postgres.Connection
	maxRetries := 10
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		var err error
		pgConn, err = postgres.NewConnection(connString)
		if err == nil {
			log.Info("Successfully connected to PostgreSQL")
			break
		}

		if i < maxRetries-1 {
			log.Warn("Failed to connect to PostgreSQL",
				"attempt", i+1,
				"max_retries", maxRetries,
				"error", err,
				"retry_delay", retryDelay)
			time.Sleep(retryDelay)
			retryDelay *= 2
			if retryDelay > 30*time.Second {
				retryDelay = 30 * time.Second
			}
		} else {
			return fmt.Errorf("failed to connect to PostgreSQL after %d attempts: %w", maxRetries, err)
		}
	}
	defer pgConn.Close()

	// Handle force migration if requested
	if forceVersion >= 0 {
		log.Info("Force setting migration version", "version", forceVersion)
		if err := pgConn.ForceMigrationVersion(migrations.FS, forceVersion); err != nil {
			return fmt.Errorf("failed to force migration version: %w", err)
		}
		log.Info("Migration version forced, exiting", "version", forceVersion)
		return nil
	}

	// Run migrations
	if err := pgConn.RunMigrations(migrations.FS); err != nil {
		return fmt.Errorf("failed to run PostgreSQL migrations: %w", err)
	}

	// Initialize repositories
	userRepo := postgres.NewUserRepository(pgConn.DB)
	tokenRepo := postgres.NewRefreshTokenRepository(pgConn.DB)

	// Initialize JWT manager from config
	if cfg.Auth.JWT.SigningKey == "" {
		return fmt.Errorf("JWT signing key not configured")
	}
	if cfg.Auth.JWT.Lifetime == 0 {
		return fmt.Errorf("JWT lifetime not configured")
	}
	jwtManager := auth.NewJWTManager(cfg.Auth.JWT.SigningKey, cfg.Auth.JWT.Lifetime)

	// Initialize GitHub client
	githubClient, err := github.NewClient(github.Config{
		ClientID:     cfg.GitHub.ClientID,
		ClientSecret: cfg.GitHub.ClientSecret,
		RedirectURI:  cfg.GitHub.RedirectURI,
		Scopes:       cfg.GitHub.Scopes,
		APIBaseURL:   cfg.GitHub.APIBaseURL,
	})
	if err != nil {
		return fmt.Errorf("failed to create GitHub client: %w", err)
	}

	// Initialize services
	authService := services.NewAuthService(userRepo, tokenRepo, githubClient, jwtManager, cfg.Auth.RefreshTTL)
	analysisService := services.NewAnalysisService(githubClient)
	scoringService := services.NewScoringService(analysisService)

	// Initialize refresh cookie session manager
	sessionSecret, err := loadSessionSecret(cfg, log)
	if err != nil {
		return err
	}
	sessionMgr := session.NewManager(sessionSecret, cfg.Environment == "prod")

	// Build HTTP stack
	authMw := middleware.NewAuthMiddleware(jwtManager, authService)
	h := handlers.New(authService, analysisService, scoringService, sessionMgr, pgConn)

	corsOrigins := cfg.Frontend.CORSOrigins
	if len(corsOrigins) == 0 && cfg.Frontend.URL != "" {
		corsOrigins = []string{cfg.Frontend.URL}
	}
	router := handlers.NewRouter(h, authMw, corsOrigins)

	server := &http.Server{
		Addr:         cfg.HTTP.Address(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  90 * time.Second,
	}

	// Periodically clear out expired refresh tokens.
	cleanupCtx, cancelCleanup := context.WithCancel(context.Background())
	defer cancelCleanup()
	go runTokenCleanup(cleanupCtx, authService, log)

	// Serve until interrupted.
	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("HTTP server failed: %w", err)
	case sig := <-stop:
		log.Info("Shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}

// loadSessionSecret resolves the refresh cookie key.
// Priority: env var, config file, random (dev only).
func loadSessionSecret(cfg *config.Config, log *slog.Logger) ([]byte, error) {
	if envSecret := os.Getenv("SESSION_SECRET"); envSecret != "" {
		secret, err := base64.StdEncoding.DecodeString(envSecret)
		if err == nil {
			log.Info("using session secret from environment")
			return secret, nil
		}
		log.Warn("failed to decode SESSION_SECRET env var, trying config", "error", err)
	}

	if cfg.Auth.SessionSecret != "" {
		secret, err := base64.StdEncoding.DecodeString(cfg.Auth.SessionSecret)
		if err == nil {
			log.Info("using session secret from config")
			return secret, nil
		}
		log.Warn("failed to decode session secret from config", "error", err)
	}

	log.Warn("no session secret configured, generating random one (sessions won't survive restarts)")
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("failed to generate session secret: %w", err)
	}
	return secret, nil
}

// runTokenCleanup deletes expired refresh tokens once an hour
func runTokenCleanup(ctx context.Context, authService *services.AuthService, log *slog.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := authService.CleanupExpiredTokens(ctx); err != nil {
				log.Warn("refresh token cleanup failed", "error", err)
			}
		}
	}
}
