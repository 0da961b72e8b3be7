package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/clinicdesk/backend/internal/adapters/cache"
	"github.com/zatekoja/clinicdesk/backend/internal/adapters/database"
	"github.com/zatekoja/clinicdesk/backend/internal/adapters/events"
	"github.com/zatekoja/clinicdesk/backend/internal/adapters/printing"
	"github.com/zatekoja/clinicdesk/backend/internal/adapters/storage"
	"github.com/zatekoja/clinicdesk/backend/internal/api/handlers"
	"github.com/zatekoja/clinicdesk/backend/internal/api/routes"
	"github.com/zatekoja/clinicdesk/backend/internal/application/services"
	"github.com/zatekoja/clinicdesk/backend/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/clinicdesk/backend/internal/infrastructure/clients/redis"
	"github.com/zatekoja/clinicdesk/backend/internal/infrastructure/observability"
	"github.com/zatekoja/clinicdesk/backend/pkg/config"
)

const draftKeyPrefix = "clinicdesk:"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.App.Name, cfg.App.Env, cfg.App.LogLevel)

	if err := run(cfg); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func run(cfg *config.Config) error {
	ctx := context.Background()

	if cfg.OTEL.Enabled {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			log.Warn().Err(err).Msg("failed to setup OpenTelemetry, continuing without it")
		} else {
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(shutdownCtx); err != nil {
					log.Error().Err(err).Msg("error shutting down OpenTelemetry")
				}
			}()
			log.Info().Str("endpoint", cfg.OTEL.Endpoint).Msg("OpenTelemetry initialized")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Warn().Err(err).Msg("failed to initialize metrics")
		metrics = nil
	}

	pgClient, err := postgres.NewClient(ctx, &cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	defer pgClient.Close()

	// Drafts live only in Redis, so the desk cannot bill without it
	redisClient, err := redis.NewClient(ctx, &cfg.Redis)
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	defer redisClient.Close()

	eventBus := events.NewRedisEventBus(redisClient)
	defer eventBus.Close()

	docStorage, err := storage.NewLocalStorage(cfg.Storage.DocumentDir)
	if err != nil {
		return err
	}

	// Repositories
	patientRepo := database.NewPatientAdapter(pgClient)
	doctorRepo := database.NewDoctorAdapter(pgClient)
	visitRepo := database.NewVisitAdapter(pgClient)
	catalogRepo := database.NewCatalogAdapter(pgClient)
	invoiceRepo := database.NewInvoiceAdapter(pgClient)
	documentRepo := database.NewDocumentAdapter(pgClient)
	incentiveRepo := database.NewIncentiveAdapter(pgClient)
	reportRepo := database.NewReportAdapter(pgClient)

	drafts := cache.NewDraftStore(cache.NewRedisAdapter(redisClient, draftKeyPrefix), cfg.Billing.DraftTTL)

	// Services
	registryService := services.NewRegistryService(patientRepo, doctorRepo, visitRepo)
	catalogService := services.NewCatalogService(catalogRepo)
	billingService := services.NewBillingService(
		drafts, catalogRepo, invoiceRepo, visitRepo, doctorRepo,
		eventBus, metrics, cfg.Billing.InvoicePrefix,
	)
	invoiceService := services.NewInvoiceService(
		invoiceRepo, visitRepo, visitRepo, patientRepo, doctorRepo,
		printing.NewPDFRenderer(), eventBus, cfg.App.ClinicName,
	)
	documentService := services.NewDocumentService(documentRepo, visitRepo, docStorage, eventBus)
	workflowService := services.NewWorkflowService(visitRepo, visitRepo, invoiceRepo, documentRepo, metrics)
	incentiveService := services.NewIncentiveService(incentiveRepo, doctorRepo)
	reportService := services.NewReportService(reportRepo)

	router := routes.NewRouter(
		handlers.NewRegistryHandler(registryService, billingService),
		handlers.NewBillingHandler(billingService),
		handlers.NewInvoiceHandler(invoiceService),
		handlers.NewDocumentHandler(documentService, cfg.Storage.MaxUploadSize),
		handlers.NewCatalogHandler(catalogService),
		handlers.NewIncentiveHandler(incentiveService),
		handlers.NewReportHandler(reportService),
		handlers.NewWorkflowHandler(workflowService),
		handlers.NewSSEHandler(eventBus, workflowService),
		cfg.Server.AllowedOrigins,
		metrics,
	)

	// Cancelled on shutdown so open visit streams return
	baseCtx, cancelBase := context.WithCancel(ctx)
	defer cancelBase()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	// No WriteTimeout: visit streams stay open
	srv := &http.Server{
		Addr:              addr,
		Handler:           router.SetupRoutes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		IdleTimeout:       120 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
	}
	srv.RegisterOnShutdown(cancelBase)

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Str("env", cfg.App.Env).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("server exited")
	return nil
}
