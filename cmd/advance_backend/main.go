package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	portsrepo "github.com/SscSPs/cash_advance_app/internal/core/ports/repositories"
	"github.com/SscSPs/cash_advance_app/internal/core/services"
	"github.com/SscSPs/cash_advance_app/internal/handlers"
	"github.com/SscSPs/cash_advance_app/internal/jobs"
	"github.com/SscSPs/cash_advance_app/internal/middleware"
	"github.com/SscSPs/cash_advance_app/internal/platform/config"
	"github.com/SscSPs/cash_advance_app/internal/platform/metrics"
	"github.com/SscSPs/cash_advance_app/internal/repositories/database/pgsql"
	"github.com/SscSPs/cash_advance_app/internal/repositories/memory"
	"github.com/SscSPs/cash_advance_app/pkg/database"
	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
)

// @title Cash Advance Backend API
// @version 1.0
// @description Cash advance requests, approvals, disbursement and retirement.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx := context.Background()
	repos, cleanup, err := setupRepositories(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize storage", slog.String("error", err.Error()), slog.String("backend", cfg.StorageBackend))
		os.Exit(1)
	}
	defer cleanup()

	collector := metrics.NewCollector("")
	serviceContainer := services.NewServiceContainer(cfg, repos, collector)

	scheduler, err := setupScheduler(cfg, serviceContainer.Advance, collector, logger)
	if err != nil {
		logger.Error("Failed to schedule overdue scan", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if scheduler != nil {
		scheduler.Start()
		defer scheduler.Stop()
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware (logging, recovery, metrics)
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery(), collector.GinMiddleware())

	err = r.SetTrustedProxies(nil)
	if err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := handlers.RegisterRoutes(r, cfg, serviceContainer, collector.Handler()); err != nil {
		logger.Error("Failed to register routes", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("Server starting", slog.String("port", cfg.Port), slog.String("storage", cfg.StorageBackend))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("Server failed to run", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// setupRepositories builds the configured storage backend. The returned
// cleanup func is always safe to call.
func setupRepositories(ctx context.Context, cfg *config.Config, logger *slog.Logger) (portsrepo.RepositoryProvider, func(), error) {
	if cfg.StorageBackend == config.StorageMemory {
		store := memory.NewStore()
		if cfg.SeedDemoData {
			if err := store.SeedDemoData(ctx, time.Now().UTC()); err != nil {
				return portsrepo.RepositoryProvider{}, func() {}, err
			}
			logger.Info("Seeded demo data into the in-memory store.")
		}
		logger.Warn("Using in-memory storage; data is lost on restart.")
		return memory.NewRepositoryProvider(store), func() {}, nil
	}

	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
	if err != nil {
		return portsrepo.RepositoryProvider{}, func() {}, err
	}
	logger.Info("Database connection pool established.")

	logger.Info("Running database migrations...")
	if err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, logger); err != nil {
		dbPool.Close()
		return portsrepo.RepositoryProvider{}, func() {}, err
	}

	return pgsql.NewRepositoryProvider(dbPool), dbPool.Close, nil
}

// setupScheduler registers the overdue scan. It returns nil when the scan is disabled.
func setupScheduler(cfg *config.Config, advanceService jobs.AdvanceService, collector *metrics.Collector, logger *slog.Logger) (*cron.Cron, error) {
	if cfg.OverdueScanSchedule == "" || cfg.OverdueAfterDays <= 0 {
		logger.Info("Overdue scan disabled.")
		return nil, nil
	}
	scanner := jobs.NewOverdueScanner(advanceService, cfg.OverdueAfterDays, logger, jobs.WithRunRecorder(collector))

	c := cron.New()
	if _, err := scanner.Schedule(c, cfg.OverdueScanSchedule); err != nil {
		return nil, err
	}
	logger.Info("Overdue scan scheduled",
		slog.String("schedule", cfg.OverdueScanSchedule),
		slog.Int("after_days", cfg.OverdueAfterDays))
	return c, nil
}
