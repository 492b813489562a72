package jobs

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

func TestQueueProcessesAndDrainsOnStop(t *testing.T) {
	var mu sync.Mutex
	seen := map[string]bool{}
	q := NewQueue("test", func(_ context.Context, job Job) error {
		mu.Lock()
		seen[job.ID] = true
		mu.Unlock()
		return nil
	}, QueueConfig{Workers: 2, BufferSize: 16})
	q.Start(context.Background())

	for _, id := range []string{"a", "b", "c", "d"} {
		require.NoError(t, q.Enqueue(Job{ID: id, Type: "noop"}))
	}
	q.Stop()

	assert.Len(t, seen, 4)
	assert.Equal(t, int64(4), q.Stats().Processed)
}

func TestQueueRetriesUntilSuccess(t *testing.T) {
	var calls atomic.Int32
	done := make(chan struct{})
	q := NewQueue("retry", func(_ context.Context, job Job) error {
		if calls.Add(1) < 3 {
			return errors.New("redis unavailable")
		}
		close(done)
		return nil
	}, QueueConfig{MaxRetries: 3, RetryDelay: time.Millisecond})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "1"}))
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job was not retried")
	}
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, int64(2), q.Stats().Retried)
}

func TestQueueDropsAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	q := NewQueue("drop", func(context.Context, Job) error {
		calls.Add(1)
		return errors.New("boom")
	}, QueueConfig{MaxRetries: 1, RetryDelay: time.Millisecond})
	q.Start(context.Background())

	require.NoError(t, q.Enqueue(Job{ID: "1"}))
	require.Eventually(t, func() bool { return q.Stats().Dropped == 1 }, 2*time.Second, 5*time.Millisecond)
	q.Stop()
	assert.Equal(t, int32(2), calls.Load())
}

func TestQueueRejectsWhenNotRunning(t *testing.T) {
	q := NewQueue("idle", func(context.Context, Job) error { return nil }, QueueConfig{})
	assert.Error(t, q.Enqueue(Job{ID: "1"}))

	q.Start(context.Background())
	q.Stop()
	assert.Error(t, q.Enqueue(Job{ID: "2"}))
	q.Stop()
}

func TestQueueRejectsWhenFull(t *testing.T) {
	release := make(chan struct{})
	q := NewQueue("full", func(context.Context, Job) error {
		<-release
		return nil
	}, QueueConfig{Workers: 1, BufferSize: 1})
	q.Start(context.Background())

	require.NoError(t, q.Enqueue(Job{ID: "1"}))
	// the worker may or may not have picked up job 1 yet
	var err error
	for i := 0; i < 3 && err == nil; i++ {
		err = q.Enqueue(Job{ID: "x"})
	}
	assert.Error(t, err)
	close(release)
	q.Stop()
	assert.GreaterOrEqual(t, q.Stats().Dropped, int64(1))
}
