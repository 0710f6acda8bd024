package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iho/goassets/internal/adapter/http/handler"
	"github.com/iho/goassets/internal/adapter/http/middleware"
	"github.com/iho/goassets/internal/infrastructure/metrics"
	"github.com/iho/goassets/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	RunHandler       *handler.RunHandler
	EntryHandler     *handler.EntryHandler
	AssetHandler     *handler.AssetHandler
	HealthHandler    *handler.HealthHandler
	Metrics          *metrics.Metrics
	RateLimiter      *middleware.RateLimiter
	IdempotencyStore usecase.IdempotencyStore
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(middleware.Recovery)

	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}
	if cfg.Metrics != nil {
		metricsMiddleware := middleware.NewMetricsMiddleware(cfg.Metrics)
		r.Use(metricsMiddleware.Wrap)
	}

	// Health and observability endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Runs
		r.Route("/runs", func(r chi.Router) {
			r.Post("/", cfg.RunHandler.Create)
			r.Get("/", cfg.RunHandler.List)
			r.Get("/{id}", cfg.RunHandler.Get)
			r.Post("/{id}/post", cfg.RunHandler.Post)
			r.Post("/{id}/cancel", cfg.RunHandler.Cancel)
			r.Post("/{id}/reverse", cfg.RunHandler.Reverse)
			r.Get("/{id}/entries", cfg.EntryHandler.ListByRun)
		})

		// Entries
		r.Get("/entries", cfg.EntryHandler.List)

		// Preview
		r.Post("/depreciation/preview", cfg.RunHandler.Preview)

		// Assets
		r.Route("/assets", func(r chi.Router) {
			r.Get("/{id}", cfg.AssetHandler.Get)
			r.Post("/{id}/units", cfg.AssetHandler.RecordUnits)
			r.Get("/{id}/schedule", cfg.AssetHandler.GetSchedule)
		})
	})

	return r
}
