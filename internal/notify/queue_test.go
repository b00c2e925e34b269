package notify

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueRunsJobs(t *testing.T) {
	q := NewQueue(QueueOptions{Workers: 2, Size: 8, Policy: NoRetry})
	var n atomic.Int32
	for i := 0; i < 5; i++ {
		q.Dispatch(context.Background(), Job{Kind: "test", Name: "count", Run: func(context.Context) error {
			n.Add(1)
			return nil
		}})
	}
	require.NoError(t, q.Close(context.Background()))
	assert.Equal(t, int32(5), n.Load())
}

func TestQueueRetriesUntilSuccess(t *testing.T) {
	q := NewQueue(QueueOptions{Workers: 1, Size: 1, Policy: RetryPolicy{MaxAttempts: 3, InitialBackoff: time.Millisecond}})
	var calls atomic.Int32
	q.Dispatch(context.Background(), Job{Kind: "test", Name: "flaky", Run: func(context.Context) error {
		if calls.Add(1) < 3 {
			return errors.New("transient")
		}
		return nil
	}})
	require.NoError(t, q.Close(context.Background()))
	assert.Equal(t, int32(3), calls.Load())
}

func TestQueueDropsWhenFull(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	q := NewQueue(QueueOptions{Workers: 1, Size: 1, Policy: NoRetry})

	var once sync.Once
	block := Job{Kind: "test", Name: "block", Run: func(context.Context) error {
		once.Do(func() { close(started) })
		<-release
		return nil
	}}
	q.Dispatch(context.Background(), block)
	<-started

	var ran atomic.Int32
	counted := Job{Kind: "test", Name: "counted", Run: func(context.Context) error { ran.Add(1); return nil }}
	q.Dispatch(context.Background(), counted) // fills the buffer
	q.Dispatch(context.Background(), counted) // dropped

	close(release)
	require.NoError(t, q.Close(context.Background()))
	assert.Equal(t, int32(1), ran.Load())
}

func TestQueueCloseTwice(t *testing.T) {
	q := NewQueue(QueueOptions{})
	require.NoError(t, q.Close(context.Background()))
	assert.ErrorIs(t, q.Close(context.Background()), ErrClosed)
	// Dispatch after close must not panic.
	q.Dispatch(context.Background(), Job{Kind: "test", Run: func(context.Context) error { return nil }})
}

func TestInlineSwallowsFailuresAndPanics(t *testing.T) {
	var calls int
	Inline{Policy: RetryPolicy{MaxAttempts: 2}}.Dispatch(context.Background(), Job{Kind: "test", Run: func(context.Context) error {
		calls++
		return errors.New("boom")
	}})
	assert.Equal(t, 2, calls)

	assert.NotPanics(t, func() {
		Inline{}.Dispatch(context.Background(), Job{Kind: "test", Run: func(context.Context) error { panic("x") }})
	})
}

func TestJobTimeoutIsApplied(t *testing.T) {
	q := NewQueue(QueueOptions{Workers: 1, Size: 1, Policy: NoRetry, JobTimeout: 10 * time.Millisecond})
	var sawDeadline atomic.Bool
	q.Dispatch(context.Background(), Job{Kind: "test", Run: func(ctx context.Context) error {
		<-ctx.Done()
		sawDeadline.Store(errors.Is(ctx.Err(), context.DeadlineExceeded))
		return ctx.Err()
	}})
	require.NoError(t, q.Close(context.Background()))
	assert.True(t, sawDeadline.Load())
}
