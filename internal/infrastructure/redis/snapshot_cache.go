package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Brazilnut78/streaming-sales-kafka-postgres/internal/dashboard"
)

const snapshotKey = "dashboard:snapshot"

// SnapshotCache hands the reader's latest aggregate snapshot to the HTTP
// layer. The TTL is sized to a couple of refresh intervals so a stalled
// reader surfaces as "no data" instead of stale numbers.
type SnapshotCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSnapshotCache(client *redis.Client, refreshInterval time.Duration) *SnapshotCache {
	return &SnapshotCache{
		client: client,
		ttl:    2 * refreshInterval,
	}
}

func (c *SnapshotCache) Put(ctx context.Context, snap *dashboard.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := c.client.Set(ctx, snapshotKey, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("set snapshot: %w", err)
	}
	return nil
}

// Get returns (nil, nil) on a cache miss.
func (c *SnapshotCache) Get(ctx context.Context) (*dashboard.Snapshot, error) {
	val, err := c.client.Get(ctx, snapshotKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get snapshot: %w", err)
	}

	var snap dashboard.Snapshot
	if err := json.Unmarshal([]byte(val), &snap); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return &snap, nil
}
