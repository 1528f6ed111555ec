package main

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/persistence"
)

type migrationStep func(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) error

func newMigrateCmd() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}
	migrateCmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runMigrate(cmd, persistence.MigrateUp)
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the latest migration",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runMigrate(cmd, persistence.MigrateDown)
			},
		},
	)
	return migrateCmd
}

func runMigrate(cmd *cobra.Command, step migrationStep) error {
	rt, err := bootstrap(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer rt.Close()
	if rt.cfg.App.Store != config.StorePostgres {
		return errors.New("migrations require APP_STORE=postgres")
	}
	return step(cmd.Context(), rt.postgres.Pool, rt.logger)
}
