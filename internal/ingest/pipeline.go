package ingest

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	recordsApplied = promauto.NewCounter(prometheus.CounterOpts{
		Name: "consumer_sales_applied_total",
		Help: "The total number of sales durably applied to the store",
	})
	recordsDuplicate = promauto.NewCounter(prometheus.CounterOpts{
		Name: "consumer_sales_duplicate_total",
		Help: "The total number of redelivered sales absorbed by the upsert",
	})
	recordsPoison = promauto.NewCounter(prometheus.CounterOpts{
		Name: "consumer_sales_poison_total",
		Help: "The total number of malformed payloads quarantined",
	})
	applyErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "consumer_apply_errors_total",
		Help: "The total number of failed apply attempts (record will be redelivered)",
	})
	applyDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "consumer_apply_duration_seconds",
		Help:    "Time taken to apply one record to the store",
		Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2},
	})
)

// Record is one entry pulled from the log: an opaque payload plus the
// positional metadata needed to acknowledge it. Business logic never
// interprets the position.
type Record struct {
	Topic     string
	Partition int
	Offset    int64
	Key       []byte
	Value     []byte
}

// Outcome classifies a successful Apply.
type Outcome int

const (
	// OutcomeApplied means the record was durably written to the store.
	OutcomeApplied Outcome = iota
	// OutcomeDuplicate means the store already held a row for this id;
	// a redelivery was absorbed by the upsert's conflict target.
	OutcomeDuplicate
	// OutcomePoison means the payload could not be decoded and was
	// quarantined; the position must advance past it.
	OutcomePoison
)

// Source is the pull side of the durable log. Fetch blocks until a record
// arrives or ctx is done. Commit durably acknowledges a record's position;
// it must only be called after the record has been applied.
type Source interface {
	Fetch(ctx context.Context) (Record, error)
	Commit(ctx context.Context, rec Record) error
	Close() error
}

// Applier makes one record durable in the store. A nil error means the
// record's effect is committed (or quarantined, for poison) and its position
// may be acknowledged. Any error means the caller must NOT acknowledge, so
// the record is redelivered.
type Applier interface {
	Apply(ctx context.Context, rec Record) (Outcome, error)
}

// Pipeline pulls records from a Source and drives them through apply-then-
// acknowledge. The delivery guarantee is at-least-once on the wire;
// exactly-once in effect comes from the Applier's idempotency.
type Pipeline struct {
	source  Source
	applier Applier
	logger  *slog.Logger

	// fetchBackoff throttles retries after a broker-side fetch error.
	fetchBackoff time.Duration
	// retryBackoff is the initial delay between apply retries for one
	// record; it doubles per attempt up to maxBackoff.
	retryBackoff time.Duration
	maxBackoff   time.Duration
}

func NewPipeline(source Source, applier Applier, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		source:       source,
		applier:      applier,
		logger:       logger,
		fetchBackoff: time.Second,
		retryBackoff: time.Second,
		maxBackoff:   30 * time.Second,
	}
}

// Run consumes until ctx is cancelled. An in-flight record is finished
// (applied and acknowledged, or left unacknowledged on failure) before Run
// returns.
func (p *Pipeline) Run(ctx context.Context) error {
	for {
		rec, err := p.source.Fetch(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			p.logger.Error("failed to fetch record", "error", err)
			sleep(ctx, p.fetchBackoff)
			continue
		}

		started := time.Now()
		outcome, err := p.applyWithRetry(ctx, rec)
		if err != nil {
			// Only cancellation ends the retry loop. The record stays
			// unacknowledged, so a restart redelivers it.
			return nil
		}
		applyDuration.Observe(time.Since(started).Seconds())

		switch outcome {
		case OutcomeApplied:
			recordsApplied.Inc()
		case OutcomeDuplicate:
			recordsDuplicate.Inc()
			p.logger.Info("duplicate sale absorbed", "offset", rec.Offset)
		case OutcomePoison:
			recordsPoison.Inc()
			p.logger.Warn("poison payload quarantined",
				"offset", rec.Offset,
				"payload", string(rec.Value))
		}

		// The record is durable by now, so a failed acknowledge only means
		// one extra redelivery after a restart.
		if err := p.source.Commit(ctx, rec); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			p.logger.Error("failed to commit offset", "error", err, "offset", rec.Offset)
		}
	}
}

// applyWithRetry drives one record to a durable outcome. The source only
// redelivers unacknowledged records across restarts, never within a running
// fetch sequence, so skipping ahead here would lose the record for good:
// the record is retried in place, with growing backoff, until the store
// accepts it or ctx is cancelled. The upsert makes a retry a no-op if a
// previous attempt actually committed.
func (p *Pipeline) applyWithRetry(ctx context.Context, rec Record) (Outcome, error) {
	backoff := p.retryBackoff
	for attempt := 0; ; attempt++ {
		outcome, err := p.applier.Apply(ctx, rec)
		if err == nil {
			return outcome, nil
		}

		applyErrors.Inc()
		p.logger.Error("failed to apply record, retrying in place",
			"error", err,
			"attempt", attempt,
			"backoff", backoff,
			"topic", rec.Topic,
			"partition", rec.Partition,
			"offset", rec.Offset,
			"payload", string(rec.Value))

		sleep(ctx, backoff)
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		if backoff *= 2; backoff > p.maxBackoff {
			backoff = p.maxBackoff
		}
	}
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
