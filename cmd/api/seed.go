package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load demo clients, technicians and tickets into an empty store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := bootstrap(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer rt.Close()

			seeder := service.NewSeedService(rt.stores.Persons, rt.stores.Tickets,
				auth.NewBcryptHasher(rt.cfg.Auth.BcryptCost), rt.logger)
			ran, err := seeder.Seed(cmd.Context(), rt.cfg.Seed.Password)
			if err != nil {
				return err
			}
			rt.logger.Info("seed finished", zap.Bool("loaded", ran))
			return nil
		},
	}
}
