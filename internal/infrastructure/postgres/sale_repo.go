package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Brazilnut78/streaming-sales-kafka-postgres/internal/domain/sale"
	"github.com/Brazilnut78/streaming-sales-kafka-postgres/internal/ingest"
)

type SaleRepository struct {
	pool *pgxpool.Pool
}

func NewSaleRepository(pool *pgxpool.Pool) *SaleRepository {
	return &SaleRepository{pool: pool}
}

// Upsert returns true if the row was inserted, false if a row with the same
// id already existed. Conflict on id is a no-op, never an error, which is
// what makes redelivery safe.
func (r *SaleRepository) Upsert(ctx context.Context, tx pgx.Tx, s sale.Sale) (bool, error) {
	const query = `
		INSERT INTO sales_events (id, ts, store_id, amount_usd, channel)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING
	`

	tag, err := tx.Exec(ctx, query, s.ID, s.TS, s.StoreID, s.AmountUSD, s.Channel)
	if err != nil {
		return false, fmt.Errorf("insert sale: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// Quarantine stores a payload that could not be decoded, keyed by its log
// position, so dropped records stay inspectable.
func (r *SaleRepository) Quarantine(ctx context.Context, rec ingest.Record, reason string) error {
	const query = `
		INSERT INTO poison_events (topic, log_partition, log_offset, payload, reason)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.pool.Exec(ctx, query, rec.Topic, rec.Partition, rec.Offset, rec.Value, reason)
	if err != nil {
		return fmt.Errorf("insert poison event: %w", err)
	}
	return nil
}
