package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"csvstats/docs"
	"csvstats/internal/config"
	"csvstats/internal/database"
	"csvstats/internal/database/migration"
	handlers "csvstats/internal/http/handler"
	"csvstats/internal/http/middleware"
	"csvstats/internal/logging"
	"csvstats/internal/otel"
	"csvstats/internal/repository"
	"csvstats/internal/repository/memory"
	"csvstats/internal/repository/postgres"
	"csvstats/internal/service"
	"csvstats/internal/storage"
)

// @title CSV Stats API
// @version 1.0
// @description Upload semicolon-separated CSV files and query per-file statistics.
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	loc := cfg.Location()
	logger := logging.New(os.Stdout, loc)
	slog.SetDefault(logger)

	if err := run(cfg, loc, logger); err != nil {
		logger.Error("server_exit", "error", err.Error())
		os.Exit(1)
	}
}

func run(cfg *config.AppConfig, loc *time.Location, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, logger)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			logger.Warn("tracing_shutdown_failed", "error", err.Error())
		}
	}()

	db, repo, err := openRepository(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	// Raw uploads are archived only when an object store is configured.
	var archive storage.Storage
	if cfg.MinIOEnabled() {
		archive, err = storage.NewMinIO(ctx, cfg.MinIO)
		if err != nil {
			return fmt.Errorf("init object storage: %w", err)
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	promMiddleware, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		return fmt.Errorf("init http metrics: %w", err)
	}
	ingestMetrics, err := service.NewIngestMetrics(reg)
	if err != nil {
		return fmt.Errorf("init ingest metrics: %w", err)
	}

	datasetSvc := service.NewDatasetService(repo, archive, service.Options{
		Workers: cfg.Upload.Workers,
		Logger:  logger,
		Metrics: ingestMetrics,
	})

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		BodyLimit:    cfg.Upload.MaxBodyMB * 1024 * 1024,
	})

	// RequestID first so every later middleware sees the id.
	app.Use(middleware.RequestID())
	app.Use(otelfiber.Middleware())
	app.Use(middleware.LoggerWithWriter(os.Stdout, loc))
	app.Use(promMiddleware.Handler())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host", cfg.AppHost)
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	handlers.RegisterRoutes(app, db, datasetSvc)

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Port
		logger.Info("server_started", "addr", addr, "storage_driver", cfg.StorageDriver, "archive_enabled", archive != nil)
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	logger.Info("server_stopping")
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return app.ShutdownWithContext(sctx)
}

// openRepository returns the dataset repository selected by STORAGE_DRIVER.
// db is nil for the in-memory driver.
func openRepository(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) (*sql.DB, repository.DatasetRepository, error) {
	switch cfg.StorageDriver {
	case config.StorageDriverMemory:
		logger.Warn("storage_driver_memory", "detail", "datasets are lost on restart")
		return nil, memory.NewDatasetMemory(), nil
	case config.StorageDriverPostgres:
		db, err := database.NewPostgres(ctx, cfg.Database, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to database: %w", err)
		}
		if err := migration.EnsureMigrated(ctx, db, logger, cfg.Database.Host); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("migrate database: %w", err)
		}
		return db, postgres.NewDatasetPostgres(db), nil
	default:
		return nil, nil, errors.New("unknown STORAGE_DRIVER " + cfg.StorageDriver)
	}
}
