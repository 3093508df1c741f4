package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Brazilnut78/streaming-sales-kafka-postgres/internal/application/factories/infrastructure"
	"github.com/Brazilnut78/streaming-sales-kafka-postgres/internal/config"
	"github.com/Brazilnut78/streaming-sales-kafka-postgres/internal/dashboard"
	"github.com/Brazilnut78/streaming-sales-kafka-postgres/internal/infrastructure/postgres"
	redisInfra "github.com/Brazilnut78/streaming-sales-kafka-postgres/internal/infrastructure/redis"
)

func main() {
	// Initialize structured JSON logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.New()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	infraFactory := infrastructure.NewFactory(cfg)
	defer infraFactory.Close()

	pgPool, err := infraFactory.Postgres(ctx)
	if err != nil {
		logger.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}

	redisClient, err := infraFactory.Redis(ctx)
	if err != nil {
		logger.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}

	refreshInterval := time.Duration(cfg.Dashboard.RefreshSeconds) * time.Second

	statsRepo := postgres.NewStatsRepository(pgPool)
	cache := redisInfra.NewSnapshotCache(redisClient, refreshInterval)

	reader := dashboard.NewReader(statsRepo, cache, dashboard.Config{
		RefreshInterval:  refreshInterval,
		RecentLimit:      cfg.Dashboard.RecentLimit,
		TrendWindowHours: cfg.Dashboard.TrendWindowHours,
	}, logger)

	go func() {
		if err := reader.Run(ctx); err != nil {
			logger.Error("reader stopped with error", "error", err)
		}
	}()

	handlers := dashboard.NewHandlers(cache)
	srv := &http.Server{
		Addr:    ":" + cfg.HTTP.Port,
		Handler: dashboard.NewRouter(handlers),
	}

	go func() {
		logger.Info("Dashboard listening", "port", cfg.HTTP.Port, "refresh", refreshInterval.String())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("listen failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}

	logger.Info("Dashboard stopped")
}
