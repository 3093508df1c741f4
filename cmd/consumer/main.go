package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Brazilnut78/streaming-sales-kafka-postgres/internal/application/factories/infrastructure"
	"github.com/Brazilnut78/streaming-sales-kafka-postgres/internal/config"
	"github.com/Brazilnut78/streaming-sales-kafka-postgres/internal/infrastructure/kafka"
	"github.com/Brazilnut78/streaming-sales-kafka-postgres/internal/infrastructure/postgres"
	"github.com/Brazilnut78/streaming-sales-kafka-postgres/internal/ingest"
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

	// Metrics Server
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		logger.Info("Consumer metrics listening on :9091")
		http.ListenAndServe(":9091", mux)
	}()

	// Infrastructure (Postgres)
	infraFactory := infrastructure.NewFactory(cfg)
	defer infraFactory.Close()

	pgPool, err := infraFactory.Postgres(ctx)
	if err != nil {
		logger.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}

	if err := postgres.EnsureSchema(ctx, pgPool); err != nil {
		logger.Error("failed to ensure schema", "error", err)
		os.Exit(1)
	}

	saleRepo := postgres.NewSaleRepository(pgPool)
	applier := postgres.NewSaleApplier(pgPool, saleRepo)

	// Kafka Consumer (manual offsets only)
	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.GroupID, cfg.Kafka.StartOffset)
	defer consumer.Close()

	logger.Info("Sales consumer started",
		"topic", cfg.Kafka.Topic,
		"group_id", cfg.Kafka.GroupID)

	pipeline := ingest.NewPipeline(consumer, applier, logger)
	if err := pipeline.Run(ctx); err != nil {
		logger.Error("pipeline stopped with error", "error", err)
		os.Exit(1)
	}

	logger.Info("Sales consumer stopped")
}
