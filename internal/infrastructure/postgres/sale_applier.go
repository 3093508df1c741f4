package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Brazilnut78/streaming-sales-kafka-postgres/internal/domain/sale"
	"github.com/Brazilnut78/streaming-sales-kafka-postgres/internal/ingest"
)

// SaleApplier implements ingest.Applier against Postgres. Each record is
// applied inside its own transaction; returning nil means the effect is
// durable and the caller may acknowledge the offset.
type SaleApplier struct {
	pool  *pgxpool.Pool
	sales *SaleRepository
}

func NewSaleApplier(pool *pgxpool.Pool, sales *SaleRepository) *SaleApplier {
	return &SaleApplier{pool: pool, sales: sales}
}

func (a *SaleApplier) Apply(ctx context.Context, rec ingest.Record) (ingest.Outcome, error) {
	s, err := sale.Decode(rec.Value)
	if err != nil {
		// Poison: quarantine first, advance only if the quarantine insert
		// itself is durable. A failed quarantine keeps the offset in place
		// so the record is redelivered rather than silently lost.
		if qErr := a.sales.Quarantine(ctx, rec, err.Error()); qErr != nil {
			return 0, fmt.Errorf("quarantine poison record: %w", qErr)
		}
		return ingest.OutcomePoison, nil
	}

	tx, err := a.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	inserted, err := a.sales.Upsert(ctx, tx, s)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}

	if !inserted {
		return ingest.OutcomeDuplicate, nil
	}
	return ingest.OutcomeApplied, nil
}
