package dashboard

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Brazilnut78/streaming-sales-kafka-postgres/internal/domain/sale"
)

var (
	refreshCycles = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dashboard_refresh_cycles_total",
		Help: "The total number of completed refresh cycles",
	})
	queryErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dashboard_query_errors_total",
		Help: "The total number of failed read queries, by section",
	}, []string{"section"})
)

// Stats is the read-only query set the reader issues every cycle.
type Stats interface {
	Summary(ctx context.Context) (*Summary, error)
	RevenueByChannel(ctx context.Context) ([]ChannelStat, error)
	TopStores(ctx context.Context, limit int) ([]StoreStat, error)
	HourlyTrend(ctx context.Context, windowHours int) ([]TrendBucket, error)
	RecentSales(ctx context.Context, limit int) ([]sale.Sale, error)
}

// Cache hands finished snapshots to the presentation layer.
type Cache interface {
	Put(ctx context.Context, snap *Snapshot) error
	Get(ctx context.Context) (*Snapshot, error)
}

type Config struct {
	RefreshInterval  time.Duration
	RecentLimit      int
	TrendWindowHours int
	TopStoresLimit   int
}

// Reader polls the store on a fixed interval, independent of ingestion.
// The two sides interact only through committed store state, so the reader
// may observe partially ingested batches; that is accepted.
type Reader struct {
	stats  Stats
	cache  Cache
	cfg    Config
	logger *slog.Logger
}

func NewReader(stats Stats, cache Cache, cfg Config, logger *slog.Logger) *Reader {
	if cfg.TopStoresLimit <= 0 {
		cfg.TopStoresLimit = 10
	}
	return &Reader{
		stats:  stats,
		cache:  cache,
		cfg:    cfg,
		logger: logger,
	}
}

// Run refreshes immediately, then on every tick until ctx is cancelled.
func (r *Reader) Run(ctx context.Context) error {
	r.Refresh(ctx)

	ticker := time.NewTicker(r.cfg.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			r.Refresh(ctx)
		}
	}
}

// Refresh runs the full query set. Each query is isolated: a failure is
// logged and its section left nil, never aborting the other queries or the
// cycle.
func (r *Reader) Refresh(ctx context.Context) *Snapshot {
	snap := &Snapshot{RefreshedAt: time.Now().UTC()}

	var err error
	if snap.Summary, err = r.stats.Summary(ctx); err != nil {
		r.sectionFailed("summary", err)
	}
	if snap.Channels, err = r.stats.RevenueByChannel(ctx); err != nil {
		r.sectionFailed("channels", err)
	}
	if snap.TopStores, err = r.stats.TopStores(ctx, r.cfg.TopStoresLimit); err != nil {
		r.sectionFailed("top_stores", err)
	}
	if snap.Trend, err = r.stats.HourlyTrend(ctx, r.cfg.TrendWindowHours); err != nil {
		r.sectionFailed("trend", err)
	}
	if snap.Recent, err = r.stats.RecentSales(ctx, r.cfg.RecentLimit); err != nil {
		r.sectionFailed("recent", err)
	}

	if err := r.cache.Put(ctx, snap); err != nil {
		r.logger.Error("failed to cache snapshot", "error", err)
	}

	refreshCycles.Inc()
	if snap.Summary != nil {
		r.logger.Info("dashboard refreshed",
			"total_sales", snap.Summary.TotalSales,
			"total_revenue", snap.Summary.TotalRevenue,
			"stores", snap.Summary.TotalStores,
			"channels", snap.Summary.TotalChannels)
	}

	return snap
}

func (r *Reader) sectionFailed(section string, err error) {
	queryErrors.WithLabelValues(section).Inc()
	r.logger.Error("read query failed", "section", section, "error", err)
}
