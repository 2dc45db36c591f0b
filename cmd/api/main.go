package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/rs/zerolog/log"

	"drugapi/internal/app"
	"drugapi/internal/config"
	"drugapi/internal/drug"
	"drugapi/internal/httpx"
	"drugapi/internal/observability"
	"drugapi/internal/server"
)

func main() {
	config.LoadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger := observability.NewLogger(observability.LoggingConfig(cfg.Logging))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	container, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize application")
	}
	defer container.Close()

	deps := server.Deps{
		Drugs:   drug.NewHTTPHandler(container.Service, container.HandlerOptions(), logger),
		Ping:    container.Ping,
		Metrics: container.Metrics,
		Logger:  logger,
	}
	if cfg.Server.RateLimitRPS > 0 {
		limiter := httpx.NewRateLimitMiddleware(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst)
		defer limiter.Close()
		deps.RateLimiter = limiter
	}
	router := server.NewRouter(cfg.Server, cfg.Metrics, deps)

	deployment := cfg.ResolveDeployment()
	logger.Info().
		Str("deployment", deployment).
		Str("driver", cfg.Database.Driver).
		Str("list_mode", cfg.API.ListMode).
		Msg("drug catalog starting")

	if deployment == config.DeploymentLambda {
		lambda.StartWithOptions(server.LambdaHandler(router, logger), lambda.WithContext(ctx))
		return
	}

	if err := server.New(cfg.Server, router, logger).Run(ctx); err != nil {
		logger.Error().Err(err).Msg("http server stopped")
		container.Close()
		os.Exit(1)
	}
	logger.Info().Msg("server exited")
}
