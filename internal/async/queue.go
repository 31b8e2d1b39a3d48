// Package async is the in-process job queue: a bounded channel drained by a
// fixed worker pool. Jobs carry their own payload, so workers never reach
// back into the request that enqueued them.
package async

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shikshalabs/qpaper/internal/ocr"
	"github.com/shikshalabs/qpaper/internal/pipeline"
)

// Job is one queued extraction run.
type Job struct {
	JobID       uuid.UUID
	Strategy    pipeline.Strategy
	Shards      []ocr.Shard
	SubmittedAt time.Time
	TraceID     string
}

// Runner processes one job to completion. Implemented by the extract service.
type Runner interface {
	ProcessJob(ctx context.Context, jobID uuid.UUID, strategy pipeline.Strategy, shards []ocr.Shard) error
}

// ErrQueueClosed is returned by Enqueue after Shutdown has begun.
var ErrQueueClosed = errors.New("queue is shutting down")

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}

type WorkerQueue struct {
	runner  Runner
	logger  *slog.Logger
	workers int
	timeout time.Duration

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	mu      sync.Mutex
	closed  bool
	pending sync.WaitGroup // enqueuers blocked in a backpressure send
}

type Option func(*WorkerQueue)

func WithWorkers(n int) Option {
	return func(q *WorkerQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}

func WithQueueSize(n int) Option {
	return func(q *WorkerQueue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}

func WithJobTimeout(d time.Duration) Option {
	return func(q *WorkerQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

func NewWorkerQueue(runner Runner, logger *slog.Logger, opts ...Option) *WorkerQueue {
	q := &WorkerQueue{
		runner:  runner,
		logger:  logger,
		workers: 4,
		timeout: 5 * time.Minute,
		ch:      make(chan Job, 256),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *WorkerQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Info("worker started", "worker_id", workerID)

				for job := range q.ch {
					ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
					err := q.runner.ProcessJob(ctx, job.JobID, job.Strategy, job.Shards)
					cancel()

					if err != nil {
						q.logger.Error("job failed", "worker_id", workerID, "job_id", job.JobID, "error", err)
					} else {
						q.logger.Info("job processed", "worker_id", workerID, "job_id", job.JobID,
							"wait_ms", time.Since(job.SubmittedAt).Milliseconds())
					}
				}

				q.logger.Info("worker stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

// Enqueue queues one job. When the buffer is full the send blocks, but the
// caller never holds the queue mutex while blocked, so other enqueuers and
// Shutdown are not stalled behind a full queue.
func (q *WorkerQueue) Enqueue(_ context.Context, job Job) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		q.logger.Warn("cannot enqueue: queue is shutting down", "job_id", job.JobID)
		return ErrQueueClosed
	}
	select {
	case q.ch <- job:
		q.mu.Unlock()
		q.logger.Info("job queued", "job_id", job.JobID, "strategy", string(job.Strategy))
		return nil
	default:
	}

	// Registered before releasing the mutex, so Shutdown cannot close the
	// channel underneath a blocked sender.
	q.pending.Add(1)
	q.mu.Unlock()
	defer q.pending.Done()

	q.logger.Warn("queue full, applying backpressure", "job_id", job.JobID)
	q.ch <- job
	q.logger.Info("job queued", "job_id", job.JobID, "strategy", string(job.Strategy))
	return nil
}

// Shutdown stops intake, then waits for blocked enqueuers and in-flight
// jobs until ctx expires.
func (q *WorkerQueue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		q.pending.Wait()
		close(q.ch)
		q.wg.Wait()
	}()

	select {
	case <-done:
		q.logger.Info("queue drained")
	case <-ctx.Done():
		q.logger.Warn("shutdown timed out with jobs in flight")
	}
}
