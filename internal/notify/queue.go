package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/iliyamo/stagebook/internal/logger"
	"github.com/iliyamo/stagebook/internal/metrics"
)

// ErrClosed is returned by Close when called twice.
var ErrClosed = errors.New("notify: queue closed")

// QueueOptions sizes a Queue.
type QueueOptions struct {
	Workers    int
	Size       int
	Policy     RetryPolicy
	JobTimeout time.Duration
}

type queued struct {
	ctx context.Context
	job Job
}

// Queue runs jobs on a fixed pool of workers.  When the buffer is full
// new jobs are dropped and counted instead of blocking the request.
type Queue struct {
	opts QueueOptions
	jobs chan queued

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewQueue starts the workers.  Call Close to drain them.
func NewQueue(opts QueueOptions) *Queue {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Size < 1 {
		opts.Size = 1
	}
	q := &Queue{opts: opts, jobs: make(chan queued, opts.Size)}
	for i := 0; i < opts.Workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}
	return q
}

// Dispatch enqueues job.  The request context is detached so that the
// job outlives the request, but its values (request id) are kept for logs.
func (q *Queue) Dispatch(ctx context.Context, job Job) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		metrics.SideEffects.WithLabelValues(job.Kind, "dropped").Inc()
		logger.WithContext(ctx).Warn("side effect dropped, queue closed", "kind", job.Kind, "job", job.Name)
		return
	}
	select {
	case q.jobs <- queued{ctx: context.WithoutCancel(ctx), job: job}:
	default:
		metrics.SideEffects.WithLabelValues(job.Kind, "dropped").Inc()
		logger.WithContext(ctx).Warn("side effect dropped, queue full", "kind", job.Kind, "job", job.Name)
	}
}

func (q *Queue) worker() {
	defer q.wg.Done()
	for item := range q.jobs {
		attempts, err := run(item.ctx, q.opts.Policy, q.opts.JobTimeout, item.job)
		report(item.ctx, item.job, attempts, err)
	}
}

// Close stops accepting jobs and waits for queued ones to finish or for
// ctx to expire.
func (q *Queue) Close(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrClosed
	}
	q.closed = true
	close(q.jobs)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
