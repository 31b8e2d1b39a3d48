package async

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shikshalabs/qpaper/internal/ocr"
	"github.com/shikshalabs/qpaper/internal/pipeline"
)

type recordingRunner struct {
	mu   sync.Mutex
	seen []uuid.UUID
}

func (r *recordingRunner) ProcessJob(_ context.Context, jobID uuid.UUID, _ pipeline.Strategy, _ []ocr.Shard) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, jobID)
	return nil
}

func (r *recordingRunner) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.seen)
}

// gatedRunner holds every job until the gate is closed, keeping the queue
// buffer full for as long as a test needs.
type gatedRunner struct {
	rec  *recordingRunner
	gate chan struct{}
}

func (g *gatedRunner) ProcessJob(ctx context.Context, jobID uuid.UUID, strategy pipeline.Strategy, shards []ocr.Shard) error {
	<-g.gate
	return g.rec.ProcessJob(ctx, jobID, strategy, shards)
}

func TestQueueProcessesJobs(t *testing.T) {
	runner := &recordingRunner{}
	q := NewWorkerQueue(runner, slog.New(slog.NewTextHandler(io.Discard, nil)), WithWorkers(2))

	for i := 0; i < 5; i++ {
		require.NoError(t, q.Enqueue(context.Background(), Job{
			JobID:       uuid.New(),
			Strategy:    pipeline.StrategyHeuristic,
			SubmittedAt: time.Now(),
		}))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	q.Shutdown(ctx)

	assert.Equal(t, 5, runner.count())
}

func TestEnqueueAfterShutdownFails(t *testing.T) {
	runner := &recordingRunner{}
	q := NewWorkerQueue(runner, slog.New(slog.NewTextHandler(io.Discard, nil)))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	q.Shutdown(ctx)

	err := q.Enqueue(context.Background(), Job{JobID: uuid.New()})
	require.ErrorIs(t, err, ErrQueueClosed)
}

func TestShutdownNotBlockedByBackpressuredEnqueue(t *testing.T) {
	rec := &recordingRunner{}
	gate := make(chan struct{})
	q := NewWorkerQueue(&gatedRunner{rec: rec, gate: gate}, slog.New(slog.NewTextHandler(io.Discard, nil)),
		WithWorkers(1), WithQueueSize(1))

	// first job occupies the worker, second fills the buffer
	require.NoError(t, q.Enqueue(context.Background(), Job{JobID: uuid.New()}))
	require.NoError(t, q.Enqueue(context.Background(), Job{JobID: uuid.New()}))

	enqueued := make(chan error, 1)
	go func() {
		enqueued <- q.Enqueue(context.Background(), Job{JobID: uuid.New()})
	}()
	time.Sleep(50 * time.Millisecond) // let the third enqueue block on the full buffer

	shutdownDone := make(chan struct{})
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()
		q.Shutdown(ctx)
		close(shutdownDone)
	}()

	select {
	case <-shutdownDone:
	case <-time.After(2 * time.Second):
		t.Fatal("shutdown stalled behind a blocked enqueue")
	}

	close(gate)
	require.NoError(t, <-enqueued, "blocked enqueue completes once the buffer drains")
	require.Eventually(t, func() bool { return rec.count() == 3 }, 5*time.Second, 10*time.Millisecond)
}

func TestShutdownIsIdempotent(t *testing.T) {
	runner := &recordingRunner{}
	q := NewWorkerQueue(runner, slog.New(slog.NewTextHandler(io.Discard, nil)))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	q.Shutdown(ctx)
	q.Shutdown(ctx)
}
