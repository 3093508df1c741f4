package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Brazilnut78/streaming-sales-kafka-postgres/internal/dashboard"
	"github.com/Brazilnut78/streaming-sales-kafka-postgres/internal/domain/sale"
)

// StatsRepository serves the read side. Every query is independent and
// read-only; the caller decides how to react to individual failures.
type StatsRepository struct {
	pool *pgxpool.Pool
}

func NewStatsRepository(pool *pgxpool.Pool) *StatsRepository {
	return &StatsRepository{pool: pool}
}

func (r *StatsRepository) Summary(ctx context.Context) (*dashboard.Summary, error) {
	const query = `
		SELECT
			COUNT(*)::bigint,
			COALESCE(SUM(amount_usd), 0)::float8,
			COALESCE(AVG(amount_usd), 0)::float8,
			MAX(ts),
			COUNT(DISTINCT store_id)::bigint,
			COUNT(DISTINCT channel)::bigint
		FROM sales_events
	`

	var s dashboard.Summary
	row := r.pool.QueryRow(ctx, query)
	if err := row.Scan(&s.TotalSales, &s.TotalRevenue, &s.AvgSale, &s.LatestSale, &s.TotalStores, &s.TotalChannels); err != nil {
		return nil, fmt.Errorf("scan summary: %w", err)
	}
	return &s, nil
}

func (r *StatsRepository) RevenueByChannel(ctx context.Context) ([]dashboard.ChannelStat, error) {
	const query = `
		SELECT channel, COUNT(*)::bigint, SUM(amount_usd)::float8 AS revenue
		FROM sales_events
		GROUP BY channel
		ORDER BY revenue DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query channels: %w", err)
	}
	defer rows.Close()

	var out []dashboard.ChannelStat
	for rows.Next() {
		var c dashboard.ChannelStat
		if err := rows.Scan(&c.Channel, &c.Count, &c.Revenue); err != nil {
			return nil, fmt.Errorf("scan channel stat: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *StatsRepository) TopStores(ctx context.Context, limit int) ([]dashboard.StoreStat, error) {
	const query = `
		SELECT store_id, COUNT(*)::bigint, SUM(amount_usd)::float8 AS revenue
		FROM sales_events
		GROUP BY store_id
		ORDER BY revenue DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query top stores: %w", err)
	}
	defer rows.Close()

	var out []dashboard.StoreStat
	for rows.Next() {
		var s dashboard.StoreStat
		if err := rows.Scan(&s.StoreID, &s.Count, &s.Revenue); err != nil {
			return nil, fmt.Errorf("scan store stat: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *StatsRepository) HourlyTrend(ctx context.Context, windowHours int) ([]dashboard.TrendBucket, error) {
	const query = `
		SELECT DATE_TRUNC('hour', ts) AS hour, COUNT(*)::bigint, SUM(amount_usd)::float8
		FROM sales_events
		WHERE ts >= NOW() - make_interval(hours => $1)
		GROUP BY hour
		ORDER BY hour
	`

	rows, err := r.pool.Query(ctx, query, windowHours)
	if err != nil {
		return nil, fmt.Errorf("query trend: %w", err)
	}
	defer rows.Close()

	var out []dashboard.TrendBucket
	for rows.Next() {
		var b dashboard.TrendBucket
		if err := rows.Scan(&b.Hour, &b.Count, &b.Revenue); err != nil {
			return nil, fmt.Errorf("scan trend bucket: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *StatsRepository) RecentSales(ctx context.Context, limit int) ([]sale.Sale, error) {
	const query = `
		SELECT id, ts, store_id, amount_usd::float8, channel
		FROM sales_events
		ORDER BY ts DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent sales: %w", err)
	}
	defer rows.Close()

	var out []sale.Sale
	for rows.Next() {
		var s sale.Sale
		if err := rows.Scan(&s.ID, &s.TS, &s.StoreID, &s.AmountUSD, &s.Channel); err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
