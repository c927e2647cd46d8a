package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/codedrop/relay/internal/config"
	"github.com/codedrop/relay/internal/infrastructure/janitor"
	"github.com/codedrop/relay/internal/infrastructure/logger"
	"github.com/codedrop/relay/internal/infrastructure/observability"
	"github.com/codedrop/relay/internal/interfaces/httpserver"
)

// @title Codedrop Relay API
// @version 1.0
// @description Share files through short-lived 8 character codes.
// @BasePath /
type Application struct {
	httpServer *httpserver.HttpServer
	janitor    *janitor.Janitor
	log        zerolog.Logger
}

func NewApplication(httpServer *httpserver.HttpServer, janitor *janitor.Janitor, log zerolog.Logger) *Application {
	return &Application{
		httpServer: httpServer,
		janitor:    janitor,
		log:        log,
	}
}

func (a *Application) Start(ctx context.Context) error {
	a.janitor.Start(ctx)
	defer a.janitor.Stop()
	return a.httpServer.Run(ctx)
}

func main() {
	loadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observability.Setup(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize observability")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown telemetry")
		}
	}()

	app, cleanup, err := buildApplication(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("build application")
	}
	defer cleanup()

	log.Info().
		Str("storage_backend", cfg.StorageBackend).
		Str("record_store_backend", cfg.RecordStoreBackend).
		Str("feedback_store_backend", cfg.FeedbackStoreBackend).
		Msg("relay configured")

	if err := app.Start(ctx); err != nil {
		log.Error().Err(err).Msg("application stopped with error")
		return
	}

	log.Info().Msg("application exited cleanly")
}

// buildApplication wires the relay by hand. wire.go describes the same graph
// for the Wire code generator.
func buildApplication(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Application, func(), error) {
	awsCfg, err := provideAWSConfig(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	blobs, err := provideBlobBackend(cfg, awsCfg, log)
	if err != nil {
		return nil, nil, fmt.Errorf("initialize blob store: %w", err)
	}

	records, cleanupRecords, err := provideRecordBackend(ctx, cfg, awsCfg, log)
	if err != nil {
		return nil, nil, fmt.Errorf("initialize record store: %w", err)
	}

	fb, cleanupFeedback, err := provideFeedbackBackend(ctx, cfg, awsCfg, log)
	if err != nil {
		cleanupRecords()
		return nil, nil, fmt.Errorf("initialize feedback store: %w", err)
	}

	transferService := provideTransferService(cfg, records, blobs, log)
	feedbackService := provideFeedbackService(fb, log)
	handlerProvider := provideHandlers(cfg, transferService, feedbackService, blobs, log)
	httpServer := httpserver.New(cfg, log, handlerProvider, provideHealthChecks(blobs, records, fb))
	app := NewApplication(httpServer, provideJanitor(cfg, blobs, records, log), log)

	cleanup := func() {
		cleanupFeedback()
		cleanupRecords()
	}
	return app, cleanup, nil
}

func loadEnvFiles() {
	paths := []string{".env", "../.env"}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}
