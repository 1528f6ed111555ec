package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/app"
	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/persistence"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "helpdesk",
		Short:         "Helpdesk API: clients, technicians and tickets",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}
	root.AddCommand(newServeCmd(), newMigrateCmd(), newSeedCmd())
	return root
}

// bootstrapped holds what every subcommand needs: config, logger and stores.
type bootstrapped struct {
	cfg      *config.Config
	logger   *zap.Logger
	postgres *persistence.Postgres
	stores   app.Stores
}

func (r *bootstrapped) Close() {
	r.postgres.Close()
	_ = r.logger.Sync()
}

// bootstrap loads configuration and opens the configured store. Postgres
// schemas are migrated when POSTGRES_RUN_MIGRATIONS is set and migrate is true.
func bootstrap(ctx context.Context, migrate bool) (*bootstrapped, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	rt := &bootstrapped{cfg: cfg, logger: logger}
	switch cfg.App.Store {
	case config.StoreMemory:
		logger.Warn("using in-memory store; data is lost on exit")
		rt.stores = app.MemoryStores()
	default:
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		rt.postgres = pg
		if migrate && cfg.Postgres.RunMigrations {
			if err := persistence.MigrateUp(ctx, pg.Pool, logger); err != nil {
				pg.Close()
				return nil, err
			}
		}
		rt.stores = app.PostgresStores(pg)
	}
	return rt, nil
}
