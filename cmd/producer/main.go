package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Brazilnut78/streaming-sales-kafka-postgres/internal/config"
	"github.com/Brazilnut78/streaming-sales-kafka-postgres/internal/generator"
	"github.com/Brazilnut78/streaming-sales-kafka-postgres/internal/infrastructure/kafka"
)

const flushTimeout = 10 * time.Second

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
		logger.Info("Producer metrics listening on :9094")
		http.ListenAndServe(":9094", mux)
	}()

	producer := kafka.NewProducer(kafka.Config{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.Topic,
	}, logger)

	gen := generator.New(generator.DefaultConfig(), time.Now().UnixNano())

	interval := time.Second / time.Duration(cfg.Producer.RatePerSec)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Info("Sales producer started",
		"topic", producer.GetTopic(),
		"rate_per_sec", cfg.Producer.RatePerSec)

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case <-ticker.C:
			s := gen.Sale()
			payload, err := s.Encode()
			if err != nil {
				logger.Error("failed to encode sale", "error", err, "id", s.ID)
				continue
			}
			if err := producer.Publish(ctx, payload); err != nil {
				if ctx.Err() != nil {
					break loop
				}
				logger.Error("failed to publish sale", "error", err, "id", s.ID)
			}
		}
	}

	// Bounded flush so in-flight sends are not silently dropped.
	logger.Info("Stopping producer, flushing in-flight sends", "timeout", flushTimeout)
	done := make(chan struct{})
	go func() {
		if err := producer.Close(); err != nil {
			logger.Error("failed to close producer", "error", err)
		}
		close(done)
	}()
	select {
	case <-done:
		logger.Info("Producer stopped")
	case <-time.After(flushTimeout):
		logger.Error("flush timed out, some in-flight sends may be lost")
	}
}
