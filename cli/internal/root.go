package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/gitmaxhq/gitmax/internal/client"
	"github.com/gitmaxhq/gitmax/internal/pkg/logger"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const cliContextKey contextKey = "cliContext"

// CliContext holds shared CLI context
type CliContext struct {
	Config *Config
	Client *client.Client
	Store  *client.TokenStore
	Logger *slog.Logger
}

// Global logging flags
var (
	logLevel      string
	logFile       string
	logToStderr   bool
	alsoLogStderr bool
	logFormat     string
)

// NewRootCommand creates the root cobra command
func NewRootCommand() *cobra.Command {
	var ctx CliContext

	rootCmd := &cobra.Command{
		Use:           "gitmax",
		Short:         "CLI for the GitMax career coach",
		Long:          `A command line interface for analyzing and scoring GitHub profiles via the GitMax API.`,
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors (main.go handles it)
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := setupLogging(); err != nil {
				return fmt.Errorf("failed to setup logging: %w", err)
			}

			ctx.Logger = slog.Default().With("component", "cli")
			ctx.Logger.Debug("CLI started", "command", cmd.Name())

			config, err := LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			ctx.Config = config

			// Config commands work without an API client.
			if cmd.Name() == "config" || (cmd.Parent() != nil && cmd.Parent().Name() == "config") {
				cmd.SetContext(context.WithValue(cmd.Context(), cliContextKey, &ctx))
				return nil
			}

			apiURL, err := config.APIURL()
			if err != nil {
				return fmt.Errorf("failed to resolve API URL: %w", err)
			}

			storePath, err := client.DefaultStorePath()
			if err != nil {
				return fmt.Errorf("failed to resolve credentials path: %w", err)
			}
			store, err := client.NewTokenStore(storePath)
			if err != nil {
				return fmt.Errorf("failed to open credentials: %w", err)
			}
			ctx.Store = store

			apiClient, err := client.NewClient(apiURL, store)
			if err != nil {
				return fmt.Errorf("failed to create client: %w", err)
			}
			ctx.Client = apiClient

			cmd.SetContext(context.WithValue(cmd.Context(), cliContextKey, &ctx))
			return nil
		},
	}

	// Add subcommands
	rootCmd.AddCommand(newAuthCommand())
	rootCmd.AddCommand(newAccountsCommand())
	rootCmd.AddCommand(newConfigCommand())
	rootCmd.AddCommand(newProfileCommand())
	rootCmd.AddCommand(newAnalyzeCommand())
	rootCmd.AddCommand(newScoreCommand())
	rootCmd.AddCommand(newRecommendCommand())

	// Add logging flags
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn",
		"Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "",
		"Log file path (if specified, logs to file instead of stderr)")
	rootCmd.PersistentFlags().BoolVar(&logToStderr, "logtostderr", false,
		"Log to stderr (default behavior unless --log-file specified)")
	rootCmd.PersistentFlags().BoolVar(&alsoLogStderr, "alsologtostderr", false,
		"Log to both file and stderr")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text",
		"Log format (text, json)")

	return rootCmd
}

// setupLogging configures the global logger based on CLI flags
func setupLogging() error {
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

// getCliContext extracts the CLI context from the command context
func getCliContext(cmd *cobra.Command) *CliContext {
	return cmd.Context().Value(cliContextKey).(*CliContext)
}
