package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/saturnino-fabrica-de-software/mirada/internal/api"
	"github.com/saturnino-fabrica-de-software/mirada/internal/api/handler"
	"github.com/saturnino-fabrica-de-software/mirada/internal/audit"
	"github.com/saturnino-fabrica-de-software/mirada/internal/cache"
	"github.com/saturnino-fabrica-de-software/mirada/internal/config"
	"github.com/saturnino-fabrica-de-software/mirada/internal/database"
	"github.com/saturnino-fabrica-de-software/mirada/internal/face"
	"github.com/saturnino-fabrica-de-software/mirada/internal/gaze"
	"github.com/saturnino-fabrica-de-software/mirada/internal/service"
	"github.com/saturnino-fabrica-de-software/mirada/internal/upload"
)

const cacheCleanupInterval = 5 * time.Minute

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Environment)
	slog.SetDefault(logger)

	logger.Info("starting Mirada API",
		slog.String("environment", cfg.Environment),
		slog.Int("port", cfg.Port),
		slog.String("provider", cfg.LandmarkProvider),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// One detector for the whole process
	detector, err := face.NewLandmarkDetector(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create landmark detector: %w", err)
	}

	store, err := upload.NewStore(cfg.UploadDir)
	if err != nil {
		return err
	}

	checks := map[string]handler.Pinger{}
	if p, ok := detector.(handler.Pinger); ok {
		checks["detector"] = p
	}

	var (
		auditLogger audit.Logger = audit.NewSlogLogger(logger)
		resultCache cache.Cache  = cache.NewMemoryCache(cfg.ResultCacheSize)
	)

	// Optional Postgres for the audit table and a shared result cache
	var pool *pgxpool.Pool
	if cfg.HasDatabase() {
		pool, err = database.NewPool(ctx, database.DefaultPoolConfig(cfg.DatabaseURL))
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()

		auditLogger = audit.MultiLogger{audit.NewPostgresLogger(pool), auditLogger}

		pgCache := cache.NewPGCache(pool)
		resultCache = pgCache
		go pgCache.RunCleanup(ctx, cacheCleanupInterval, logger)

		checks["database"] = pingFunc(func(ctx context.Context) error {
			return database.HealthCheck(ctx, pool)
		})
		logger.Info("database connected")
	}

	classifier := gaze.NewClassifier(gaze.Thresholds{
		EyelidGap:      cfg.EyelidGapThreshold,
		IrisHorizontal: cfg.IrisHorizontalThreshold,
		IrisVertical:   cfg.IrisVerticalThreshold,
	})
	svc := service.NewGazeService(detector, classifier, auditLogger, logger).
		WithCache(resultCache, cfg.ResultCacheTTL)

	// Setup router
	router := api.NewRouter(logger, cfg, &api.Dependencies{
		Analyzer: svc,
		Store:    store,
		Checks:   checks,
	})
	router.Setup()

	// Start server in goroutine
	errChan := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		logger.Info("server listening", slog.String("addr", addr))
		if err := router.Listen(addr); err != nil {
			errChan <- err
		}
	}()

	// Wait for shutdown signal or error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}

	logger.Info("shutting down server...")
	if err := router.Shutdown(); err != nil {
		logger.Error("shutdown error", slog.Any("error", err))
	}

	// Flush audit events still in flight before the pool closes
	svc.Wait()
	logger.Info("server stopped")

	return nil
}
