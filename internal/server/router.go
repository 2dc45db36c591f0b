// Package server assembles the HTTP router and runs it behind a listener or
// the AWS Lambda runtime.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"drugapi/internal/config"
	"drugapi/internal/drug"
	"drugapi/internal/httpx"
	"drugapi/internal/observability"
)

const readyTimeout = 500 * time.Millisecond

// PingFunc reports whether the record store is reachable.
type PingFunc func(ctx context.Context) error

// Deps are the collaborators wired into the router.
type Deps struct {
	Drugs   *drug.HTTPHandler
	Ping    PingFunc
	Metrics *observability.Metrics
	// RateLimiter is optional. The caller owns its lifetime.
	RateLimiter *httpx.RateLimitMiddleware
	Logger      zerolog.Logger
}

// NewRouter builds the chi router serving the drug catalog.
func NewRouter(cfg config.ServerConfig, metricsCfg config.MetricsConfig, deps Deps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(httpx.RequestIDMiddleware)
	r.Use(httpx.RecoveryMiddleware(deps.Logger))
	r.Use(httpx.AccessLogMiddleware(deps.Logger))
	if deps.Metrics != nil {
		r.Use(httpx.MetricsMiddleware(deps.Metrics))
	}
	r.Use(httpx.CORSMiddleware(cfg.CORSOrigins))
	r.Use(httpx.SecurityHeadersMiddleware(cfg.EnableHSTS))
	r.Use(httpx.RequestSizeLimitMiddleware(cfg.MaxBodyBytes))
	if deps.RateLimiter != nil {
		r.Use(deps.RateLimiter.Middleware)
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.JSONError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpx.JSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if deps.Ping != nil {
			ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
			defer cancel()
			if err := deps.Ping(ctx); err != nil {
				httpx.JSONError(w, http.StatusServiceUnavailable, "store not ready")
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	if deps.Metrics != nil && metricsCfg.Enabled {
		r.Method(http.MethodGet, metricsCfg.Path, deps.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/drugs", deps.Drugs.List)
		r.Get("/drugs/{code}", deps.Drugs.GetByCode)
		r.Post("/seed", deps.Drugs.Seed)
	})

	return r
}
