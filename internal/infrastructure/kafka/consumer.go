package kafka

import (
	"context"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Brazilnut78/streaming-sales-kafka-postgres/internal/ingest"
)

// Consumer adapts a kafka-go Reader to the ingest.Source contract.
// Offsets are committed manually and only on Commit; the reader's
// auto-commit is never enabled (CommitInterval stays zero).
type Consumer struct {
	reader *kafka.Reader
}

func NewConsumer(brokers []string, topic, groupID, startOffset string) *Consumer {
	first := kafka.FirstOffset
	if strings.EqualFold(strings.TrimSpace(startOffset), "latest") {
		first = kafka.LastOffset
	}

	dialer := &kafka.Dialer{
		Timeout:   10 * time.Second,
		DualStack: false, // Force IPv4
	}

	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     brokers,
		Topic:       topic,
		GroupID:     groupID,
		MinBytes:    1,    // Process immediately
		MaxBytes:    10e6, // 10MB
		MaxWait:     1 * time.Second,
		Dialer:      dialer,
		StartOffset: first,
	})
	return &Consumer{reader: r}
}

func (c *Consumer) Fetch(ctx context.Context) (ingest.Record, error) {
	msg, err := c.reader.FetchMessage(ctx)
	if err != nil {
		return ingest.Record{}, err
	}
	return ingest.Record{
		Topic:     msg.Topic,
		Partition: msg.Partition,
		Offset:    msg.Offset,
		Key:       msg.Key,
		Value:     msg.Value,
	}, nil
}

func (c *Consumer) Commit(ctx context.Context, rec ingest.Record) error {
	return c.reader.CommitMessages(ctx, kafka.Message{
		Topic:     rec.Topic,
		Partition: rec.Partition,
		Offset:    rec.Offset,
	})
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
