package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"content-scoring-service/internal/config"
	"content-scoring-service/internal/infra/postgres"
	"content-scoring-service/internal/logger"
)

// env holds what database-backed commands share.
type env struct {
	cfg *config.Config
	log *logger.Logger
	db  *gorm.DB
}

func (e *env) close() {
	if e.db != nil {
		_ = postgres.Close(e.db)
	}
	_ = e.log.Sync()
}

// newRootCmd builds the command tree.
func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "scoringctl",
		Short: "Operate the content scoring service.",
		Long: `scoringctl runs maintenance tasks against the scoring database.

Subcommands:
  migrate  - Apply pending schema migrations
  rollback - Revert the last migration
  audit    - Compare point balances with item scores
  cache    - Manage the earnings cache
  score    - Compute the points of a hypothetical item`,
		SilenceErrors:      true,
		SilenceUsage:       true,
		DisableSuggestions: true,
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file")

	connect := func(ctx context.Context) (*env, error) {
		return connectEnv(ctx, configPath)
	}
	load := func(context.Context) (*env, error) {
		return loadEnv(configPath)
	}

	root.AddCommand(
		newMigrateCmd(connect),
		newRollbackCmd(connect),
		newAuditCmd(connect),
		newCacheCmd(load),
		newScoreCmd(),
	)

	return root
}

type connectFunc func(ctx context.Context) (*env, error)

// connectEnv loads config, builds the logger and opens the database.
func connectEnv(ctx context.Context, configPath string) (*env, error) {
	e, err := loadEnv(configPath)
	if err != nil {
		return nil, err
	}

	e.db, err = postgres.NewConnection(ctx, e.cfg.Database.Postgres(), e.log.Logger)
	if err != nil {
		_ = e.log.Sync()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	return e, nil
}

// loadEnv loads config and builds the logger without touching the database.
func loadEnv(configPath string) (*env, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(
		logger.Config{
			Level:  cfg.Logger.Level,
			Format: "console",
			Output: "stderr",
		},
		logger.SentryConfig{
			Enabled:     cfg.Sentry.Enabled,
			DSN:         cfg.Sentry.DSN,
			Environment: cfg.Sentry.Environment,
			SampleRate:  cfg.Sentry.SampleRate,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}

	return &env{cfg: cfg, log: log}, nil
}
