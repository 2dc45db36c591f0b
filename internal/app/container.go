// Package app wires configuration, the record store and the drug service
// together for the command entry points.
package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"drugapi/internal/config"
	"drugapi/internal/database"
	"drugapi/internal/drug"
	"drugapi/internal/observability"
	"drugapi/internal/server"
)

// Container holds the long-lived collaborators built at startup.
type Container struct {
	Config  *config.Config
	Logger  zerolog.Logger
	Metrics *observability.Metrics
	Repo    drug.Repository
	Service *drug.Service
	Ping    server.PingFunc

	closers []func()
}

// New opens the configured store and builds the drug service.
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*Container, error) {
	c := &Container{
		Config:  cfg,
		Logger:  logger,
		Metrics: observability.NewMetrics("drugapi"),
	}

	if err := c.openStore(ctx); err != nil {
		c.Close()
		return nil, err
	}

	fixture := drug.ResolveFixturePath(cfg.Seed.FixturePath)
	c.Service = drug.NewService(c.Repo, fixture, c.Metrics)
	logger.Debug().Str("fixture", fixture).Msg("fixture path resolved")
	return c, nil
}

func (c *Container) openStore(ctx context.Context) error {
	cfg := c.Config.Database
	switch cfg.Driver {
	case config.DriverPostgres:
		pool, err := database.OpenPostgres(ctx, cfg, c.Logger)
		if err != nil {
			return err
		}
		c.closers = append(c.closers, pool.Close)

		if cfg.AutoMigrate {
			if err := database.Migrate(ctx, pool, database.MigrateUp, c.Logger); err != nil {
				return err
			}
		}
		c.Repo = drug.NewPostgresRepo(pool, cfg.QueryTimeout)
		c.Ping = pool.Ping

	case config.DriverSQLite:
		db, err := database.OpenSQLite(ctx, cfg.URL)
		if err != nil {
			return err
		}
		c.closers = append(c.closers, func() { _ = db.Close() })

		repo := drug.NewSQLiteRepo(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			return err
		}
		c.Repo = repo
		c.Ping = db.PingContext
		c.Logger.Info().Str("url", cfg.URL).Msg("sqlite store opened")

	default:
		return fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	return nil
}

// HandlerOptions translates the API configuration for the HTTP handler.
func (c *Container) HandlerOptions() drug.HandlerOptions {
	api := c.Config.API
	return drug.HandlerOptions{
		ListMode: drug.ListMode(api.ListMode),
		Pagination: drug.PaginationRules{
			DefaultPage:  api.DefaultPage,
			DefaultLimit: api.DefaultLimit,
			MaxLimit:     api.MaxLimit,
			Strict:       api.StrictQuery,
		},
	}
}

// Close releases the store in reverse order of acquisition.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}
