package ingest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedSource delivers a fixed sequence of records, then cancels the run.
// Fetch errors can be injected before any position in the script.
type scriptedSource struct {
	records   []Record
	fetchErrs map[int]error // script index -> one-shot error before delivery
	cancel    context.CancelFunc

	next    int
	commits []int64
	closed  bool
}

func (s *scriptedSource) Fetch(ctx context.Context) (Record, error) {
	if err, ok := s.fetchErrs[s.next]; ok {
		delete(s.fetchErrs, s.next)
		return Record{}, err
	}
	if s.next >= len(s.records) {
		s.cancel()
		<-ctx.Done()
		return Record{}, ctx.Err()
	}
	rec := s.records[s.next]
	s.next++
	return rec, nil
}

func (s *scriptedSource) Commit(_ context.Context, rec Record) error {
	s.commits = append(s.commits, rec.Offset)
	return nil
}

func (s *scriptedSource) Close() error {
	s.closed = true
	return nil
}

// scriptedApplier returns per-offset outcomes; failures counts how many
// transient store errors an offset reports before it succeeds.
type scriptedApplier struct {
	outcomes map[int64]Outcome
	failures map[int64]int

	applied []int64
}

func (a *scriptedApplier) Apply(_ context.Context, rec Record) (Outcome, error) {
	if a.failures[rec.Offset] > 0 {
		a.failures[rec.Offset]--
		return 0, errors.New("connection reset")
	}
	a.applied = append(a.applied, rec.Offset)
	if out, ok := a.outcomes[rec.Offset]; ok {
		return out, nil
	}
	return OutcomeApplied, nil
}

func rec(offset int64, payload string) Record {
	return Record{Topic: "sales", Partition: 0, Offset: offset, Value: []byte(payload)}
}

func run(t *testing.T, src *scriptedSource, app *scriptedApplier) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	src.cancel = cancel

	p := NewPipeline(src, app, slog.New(slog.NewTextHandler(io.Discard, nil)))
	p.fetchBackoff = time.Millisecond
	p.retryBackoff = time.Millisecond
	p.maxBackoff = 10 * time.Millisecond

	require.NoError(t, p.Run(ctx))
}

func TestPipelineCommitsAfterApply(t *testing.T) {
	src := &scriptedSource{records: []Record{rec(0, "a"), rec(1, "b"), rec(2, "c")}}
	app := &scriptedApplier{}

	run(t, src, app)

	assert.Equal(t, []int64{0, 1, 2}, app.applied)
	assert.Equal(t, []int64{0, 1, 2}, src.commits)
}

func TestPipelineRetriesFailedApplyInPlace(t *testing.T) {
	// The source delivers strictly sequentially, like a live broker fetch:
	// an unacknowledged record is never replayed within a running process.
	// The store rejects offset 7 twice before accepting it; the pipeline
	// must hold position 7 until it sticks rather than fetch offset 8.
	src := &scriptedSource{records: []Record{rec(7, "x"), rec(8, "y")}}
	app := &scriptedApplier{failures: map[int64]int{7: 2}}

	run(t, src, app)

	// Offset 7 lands exactly once and is committed before anything newer.
	assert.Equal(t, []int64{7, 8}, app.applied)
	assert.Equal(t, []int64{7, 8}, src.commits)
}

func TestPipelineHoldsOffsetAcrossCancellation(t *testing.T) {
	// A record that keeps failing is never skipped: if the process stops
	// mid-retry, nothing newer was committed, so a restart redelivers it.
	ctx, cancel := context.WithCancel(context.Background())
	src := &scriptedSource{records: []Record{rec(7, "x"), rec(8, "y")}, cancel: cancel}
	app := &scriptedApplier{failures: map[int64]int{7: 1 << 30}}

	p := NewPipeline(src, app, slog.New(slog.NewTextHandler(io.Discard, nil)))
	p.retryBackoff = time.Millisecond
	p.maxBackoff = time.Millisecond

	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("pipeline did not stop on cancellation")
	}

	assert.Empty(t, app.applied)
	assert.Empty(t, src.commits)
}

func TestPipelineAdvancesPastPoison(t *testing.T) {
	src := &scriptedSource{records: []Record{rec(5, "not-json"), rec(6, "ok"), rec(7, "ok")}}
	app := &scriptedApplier{outcomes: map[int64]Outcome{5: OutcomePoison}}

	run(t, src, app)

	// A quarantined payload at offset 5 must not block 6 and 7.
	assert.Equal(t, []int64{5, 6, 7}, src.commits)
}

func TestPipelineCommitsDuplicateOutcome(t *testing.T) {
	// Restart after a crash between store commit and offset commit: the
	// redelivered record is a duplicate, and the offset must still advance.
	src := &scriptedSource{records: []Record{rec(7, "replay")}}
	app := &scriptedApplier{outcomes: map[int64]Outcome{7: OutcomeDuplicate}}

	run(t, src, app)

	assert.Equal(t, []int64{7}, src.commits)
}

func TestPipelineRetriesAfterFetchError(t *testing.T) {
	src := &scriptedSource{
		records:   []Record{rec(0, "a")},
		fetchErrs: map[int]error{0: errors.New("broker unavailable")},
	}
	app := &scriptedApplier{}

	run(t, src, app)

	assert.Equal(t, []int64{0}, src.commits)
}

func TestPipelineStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	src := &scriptedSource{cancel: cancel}
	app := &scriptedApplier{}

	p := NewPipeline(src, app, slog.New(slog.NewTextHandler(io.Discard, nil)))

	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("pipeline did not stop on cancellation")
	}
	assert.Empty(t, src.commits)
}
