// Package notify runs best-effort side effects (in-app notifications,
// outbound mail, cache revalidation) after the primary write has
// committed.  Failures are logged and counted, never returned to the
// caller that scheduled them.
package notify

import (
	"context"
	"time"

	"github.com/iliyamo/stagebook/internal/logger"
	"github.com/iliyamo/stagebook/internal/metrics"
)

// Job is one side effect.  Kind labels logs and metrics.
type Job struct {
	Kind string
	Name string
	Run  func(ctx context.Context) error
}

// Dispatcher accepts jobs for execution.  Dispatch never blocks on the
// job itself and never reports its outcome.
type Dispatcher interface {
	Dispatch(ctx context.Context, job Job)
}

// RetryPolicy configures attempts for a single job.
type RetryPolicy struct {
	// MaxAttempts is the maximum number of attempts (including initial).
	MaxAttempts int

	// InitialBackoff is the delay before the second attempt.
	InitialBackoff time.Duration

	// MaxBackoff caps the delay between attempts.
	MaxBackoff time.Duration

	// BackoffFactor multiplies the delay after each attempt.
	BackoffFactor float64
}

// NoRetry runs each job once.
var NoRetry = RetryPolicy{MaxAttempts: 1}

// DefaultRetry retries transient failures a few times.
var DefaultRetry = RetryPolicy{
	MaxAttempts:    3,
	InitialBackoff: 500 * time.Millisecond,
	MaxBackoff:     10 * time.Second,
	BackoffFactor:  2.0,
}

// run executes job under policy and returns the last error.  Each
// attempt gets its own timeout when timeout > 0.
func run(ctx context.Context, policy RetryPolicy, timeout time.Duration, job Job) (attempts int, err error) {
	maxAttempts := policy.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	backoff := policy.InitialBackoff

	for attempts = 1; attempts <= maxAttempts; attempts++ {
		err = attempt(ctx, timeout, job)
		if err == nil {
			return attempts, nil
		}
		if attempts == maxAttempts || ctx.Err() != nil {
			break
		}
		logger.WithContext(ctx).Warn("side effect failed, retrying",
			"kind", job.Kind, "job", job.Name, "attempt", attempts, "error", err)

		select {
		case <-ctx.Done():
			return attempts, err
		case <-time.After(backoff):
		}
		if policy.BackoffFactor > 1 {
			backoff = time.Duration(float64(backoff) * policy.BackoffFactor)
		}
		if policy.MaxBackoff > 0 && backoff > policy.MaxBackoff {
			backoff = policy.MaxBackoff
		}
	}
	return min(attempts, maxAttempts), err
}

func attempt(ctx context.Context, timeout time.Duration, job Job) (err error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	defer func() {
		if r := recover(); r != nil {
			err = panicError{value: r}
		}
	}()
	return job.Run(ctx)
}

type panicError struct{ value any }

func (p panicError) Error() string { return "panic in side effect" }

// report logs and counts the final outcome of a job.
func report(ctx context.Context, job Job, attempts int, err error) {
	if err != nil {
		metrics.SideEffects.WithLabelValues(job.Kind, "failed").Inc()
		logger.WithContext(ctx).Error("side effect failed",
			"kind", job.Kind, "job", job.Name, "attempts", attempts, "error", err)
		return
	}
	metrics.SideEffects.WithLabelValues(job.Kind, "ok").Inc()
}

// Inline runs jobs synchronously on the caller's goroutine.  It is used
// in tests and in tooling where ordering matters more than latency.
type Inline struct {
	Policy RetryPolicy
}

// Dispatch runs job to completion before returning.
func (d Inline) Dispatch(ctx context.Context, job Job) {
	attempts, err := run(context.WithoutCancel(ctx), d.Policy, 0, job)
	report(ctx, job, attempts, err)
}
