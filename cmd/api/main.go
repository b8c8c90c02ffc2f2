package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/larderhq/larder-backend/api/routes"
	"github.com/larderhq/larder-backend/internal/audit"
	"github.com/larderhq/larder-backend/internal/catalog"
	"github.com/larderhq/larder-backend/internal/reports"
	"github.com/larderhq/larder-backend/internal/stockledger"
	"github.com/larderhq/larder-backend/pkg/config"
	"github.com/larderhq/larder-backend/pkg/db"
	"github.com/larderhq/larder-backend/pkg/logger"
	"github.com/larderhq/larder-backend/pkg/metrics"
	"github.com/larderhq/larder-backend/pkg/migrate"
	"github.com/larderhq/larder-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	ledgerMetrics := metrics.NewLedgerMetrics(registry)

	reader := catalog.NewRepository(dbClient.DB())
	audits := audit.NewRepository(dbClient.DB())
	ledgerService := stockledger.NewService(
		dbClient,
		reader,
		stockledger.NewRepository(dbClient.DB()),
		audits,
		ledgerMetrics,
		logg,
	)
	reportService := reports.NewService(
		reader,
		audits,
		reports.NewRepository(dbClient.DB()),
		ledgerMetrics,
		logg,
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, ledgerService, reportService, registry),
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case sig := <-shutdown:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}

	if err := multierr.Combine(redisClient.Close(), dbClient.Close()); err != nil {
		logg.Error(ctx, "error closing resources", err)
		os.Exit(1)
	}
}
