package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/iho/goassets/internal/adapter/http"
	"github.com/iho/goassets/internal/adapter/http/handler"
	"github.com/iho/goassets/internal/adapter/http/middleware"
	postgresRepo "github.com/iho/goassets/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/goassets/internal/adapter/repository/redis"
	"github.com/iho/goassets/internal/infrastructure/config"
	"github.com/iho/goassets/internal/infrastructure/eventpublisher"
	"github.com/iho/goassets/internal/infrastructure/logger"
	"github.com/iho/goassets/internal/infrastructure/metrics"
	"github.com/iho/goassets/internal/infrastructure/postgres"
	"github.com/iho/goassets/internal/infrastructure/redis"
	"github.com/iho/goassets/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Setup logger
	log.Logger = logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	zerolog.DefaultContextLogger = &log.Logger

	ctx := context.Background()

	// Run migrations when enabled
	if cfg.RunMigrations {
		if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations")
		}
		log.Info().Msg("migrations applied")
	}

	// Connect to PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	runRepo := postgresRepo.NewRunRepository(pool)
	entryRepo := postgresRepo.NewEntryRepository(pool)
	assetRepo := postgresRepo.NewAssetRepository(pool)
	categoryRepo := postgresRepo.NewCategoryRepository(pool)
	unitsRepo := postgresRepo.NewUnitsRepository(pool)
	outboxRepo := postgresRepo.NewOutboxRepository(pool)
	idGen := postgresRepo.NewULIDGenerator()
	retrier := postgresRepo.NewRetrier()
	cache := redisRepo.NewCache(redisClient)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)

	appMetrics := metrics.New()

	// Initialize use cases
	runUC := usecase.NewRunUseCase(txManager, runRepo, entryRepo, assetRepo, categoryRepo, unitsRepo, outboxRepo, idGen).
		WithRetrier(retrier).
		WithCache(cache).
		WithMetrics(appMetrics)
	entryUC := usecase.NewEntryUseCase(entryRepo, runRepo)
	assetUC := usecase.NewAssetUseCase(txManager, assetRepo, unitsRepo).
		WithMetrics(appMetrics)

	// Initialize handlers
	runHandler := handler.NewRunHandler(runUC)
	entryHandler := handler.NewEntryHandler(entryUC)
	assetHandler := handler.NewAssetHandler(assetUC)
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	// Start the outbox publisher
	publisherCtx, stopPublisher := context.WithCancel(ctx)
	defer stopPublisher()

	slogger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	publisher := eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: outboxRepo,
		Publisher:  eventpublisher.NewLogPublisher(slogger),
		Logger:     slogger,
		Metrics:    appMetrics,
		BatchSize:  cfg.OutboxBatchSize,
		Interval:   cfg.OutboxPollInterval,
	})
	go func() {
		if err := publisher.Start(publisherCtx); err != nil && publisherCtx.Err() == nil {
			log.Error().Err(err).Msg("event publisher stopped")
		}
	}()

	var rateLimiter *middleware.RateLimiter
	if cfg.RateLimitEnabled {
		rateLimiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	}

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		RunHandler:       runHandler,
		EntryHandler:     entryHandler,
		AssetHandler:     assetHandler,
		HealthHandler:    healthHandler,
		Metrics:          appMetrics,
		RateLimiter:      rateLimiter,
		IdempotencyStore: idempotencyStore,
	})

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")
	stopPublisher()

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
