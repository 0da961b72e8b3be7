package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/clinicdesk/backend/internal/adapters/database"
	"github.com/zatekoja/clinicdesk/backend/internal/application/services"
	"github.com/zatekoja/clinicdesk/backend/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/clinicdesk/backend/internal/infrastructure/observability"
	"github.com/zatekoja/clinicdesk/backend/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	observability.InitLogger("clinicctl", cfg.App.Env, cfg.App.LogLevel)

	rootCmd := newRootCmd(func(ctx context.Context) (*backend, error) {
		return openBackend(ctx, cfg)
	})
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// openBackend connects to PostgreSQL and builds the services the commands need
func openBackend(ctx context.Context, cfg *config.Config) (*backend, error) {
	pgClient, err := postgres.NewClient(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	doctors := database.NewDoctorAdapter(pgClient)
	return &backend{
		migrator:   pgClient,
		reports:    services.NewReportService(database.NewReportAdapter(pgClient)),
		incentives: services.NewIncentiveService(database.NewIncentiveAdapter(pgClient), doctors),
		close: func() {
			if err := pgClient.Close(); err != nil {
				log.Warn().Err(err).Msg("failed to close database")
			}
		},
	}, nil
}
