package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS sales_events (
	id         TEXT PRIMARY KEY,
	ts         TIMESTAMPTZ   NOT NULL,
	store_id   INTEGER       NOT NULL,
	amount_usd NUMERIC(12,2) NOT NULL,
	channel    TEXT          NOT NULL
);

CREATE INDEX IF NOT EXISTS sales_events_ts_idx ON sales_events (ts DESC);

CREATE TABLE IF NOT EXISTS poison_events (
	seq         BIGSERIAL PRIMARY KEY,
	topic       TEXT        NOT NULL,
	log_partition INTEGER   NOT NULL,
	log_offset  BIGINT      NOT NULL,
	payload     BYTEA,
	reason      TEXT        NOT NULL,
	received_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

// EnsureSchema bootstraps the tables at startup so the pipeline has no
// external migration step. All statements are idempotent.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
