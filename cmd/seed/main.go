package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"drugapi/internal/app"
	"drugapi/internal/config"
	"drugapi/internal/observability"
)

func main() {
	fixture := flag.String("fixture", "", "Fixture file to load (overrides seed.fixture_path)")
	flag.Parse()

	config.LoadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	if *fixture != "" {
		cfg.Seed.FixturePath = *fixture
	}

	logger := observability.NewLogger(observability.LoggingConfig(cfg.Logging))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	container, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize application")
	}
	defer container.Close()

	start := time.Now()
	count, err := container.Service.Reseed(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("seed failed")
		container.Close()
		os.Exit(1)
	}

	logger.Info().
		Int("count", count).
		Dur("elapsed", time.Since(start)).
		Msg("database seeded successfully")
}
