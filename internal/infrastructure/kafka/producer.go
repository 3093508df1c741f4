package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/segmentio/kafka-go"
)

var (
	salesDelivered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "producer_sales_delivered_total",
		Help: "The total number of sales acknowledged by the broker",
	})
	deliveryErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "producer_delivery_errors_total",
		Help: "The total number of failed deliveries reported by the broker",
	})
)

type Config struct {
	Brokers []string
	Topic   string
}

// Producer appends sale payloads to the log asynchronously. Delivery
// outcomes arrive on the writer's completion callback; failures are logged
// and counted, not retried here (the writer retries up to MaxAttempts on
// its own).
type Producer struct {
	writer *kafka.Writer
}

func NewProducer(cfg Config, logger *slog.Logger) *Producer {
	w := &kafka.Writer{
		Addr:  kafka.TCP(cfg.Brokers...),
		Topic: cfg.Topic,
		// Messages carry no key: ordering across sales is not required.
		Balancer:               &kafka.RoundRobin{},
		MaxAttempts:            5,
		BatchTimeout:           50 * time.Millisecond,
		ReadTimeout:            10 * time.Second,
		WriteTimeout:           10 * time.Second,
		Async:                  true,
		AllowAutoTopicCreation: true,
	}
	w.Completion = func(messages []kafka.Message, err error) {
		if err != nil {
			deliveryErrors.Add(float64(len(messages)))
			logger.Error("delivery failed", "error", err, "count", len(messages))
			return
		}
		salesDelivered.Add(float64(len(messages)))
	}

	return &Producer{writer: w}
}

// Publish submits one payload. With an async writer this returns as soon as
// the message is enqueued; the outcome surfaces on the completion callback.
func (p *Producer) Publish(ctx context.Context, payload []byte) error {
	err := p.writer.WriteMessages(ctx, kafka.Message{Value: payload})
	if err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	return nil
}

func (p *Producer) GetTopic() string {
	return p.writer.Topic
}

// Close flushes in-flight sends and releases the writer. Callers that need
// a bound on shutdown time should race it against a timer.
func (p *Producer) Close() error {
	return p.writer.Close()
}
