package queue

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnqueueDequeue(t *testing.T) {
	q := NewMemoryPipelineJobQueue(4)
	ctx := context.Background()

	job := &PipelineJob{AssetUUID: "a1", UserUUID: "u1", Filename: "clip.mp4"}
	require.NoError(t, q.Enqueue(ctx, job))
	assert.Equal(t, 1, q.Size())
	assert.False(t, q.IsEmpty())

	got, err := q.Dequeue(ctx)
	require.NoError(t, err)
	assert.Equal(t, job, got)
	assert.True(t, q.IsEmpty())
}

func TestEnqueuePreservesOrder(t *testing.T) {
	q := NewMemoryPipelineJobQueue(8)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, q.Enqueue(ctx, &PipelineJob{AssetUUID: fmt.Sprintf("a%d", i)}))
	}
	for i := 0; i < 3; i++ {
		job, err := q.Dequeue(ctx)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("a%d", i), job.AssetUUID)
	}
}

func TestEnqueueNilJob(t *testing.T) {
	q := NewMemoryPipelineJobQueue(4)
	assert.Error(t, q.Enqueue(context.Background(), nil))
}

func TestEnqueueFullQueue(t *testing.T) {
	q := NewMemoryPipelineJobQueue(1)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, &PipelineJob{AssetUUID: "a1"}))
	err := q.Enqueue(ctx, &PipelineJob{AssetUUID: "a2"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "full")
}

func TestTryDequeueEmpty(t *testing.T) {
	q := NewMemoryPipelineJobQueue(4)

	job, err := q.TryDequeue(context.Background())
	require.NoError(t, err)
	assert.Nil(t, job)
}

func TestDequeueBlocksUntilEnqueue(t *testing.T) {
	q := NewMemoryPipelineJobQueue(4)
	ctx := context.Background()

	done := make(chan *PipelineJob, 1)
	go func() {
		job, err := q.Dequeue(ctx)
		if err == nil {
			done <- job
		}
	}()

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, q.Enqueue(ctx, &PipelineJob{AssetUUID: "a1"}))

	select {
	case job := <-done:
		assert.Equal(t, "a1", job.AssetUUID)
	case <-time.After(time.Second):
		t.Fatal("dequeue never returned")
	}
}

func TestDequeueCanceledContext(t *testing.T) {
	q := NewMemoryPipelineJobQueue(4)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := q.Dequeue(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClosedQueue(t *testing.T) {
	q := NewMemoryPipelineJobQueue(4)
	require.NoError(t, q.Close())
	assert.True(t, q.IsClosed())

	assert.Error(t, q.Enqueue(context.Background(), &PipelineJob{AssetUUID: "a1"}))
	_, err := q.Dequeue(context.Background())
	assert.Error(t, err)
	_, err = q.TryDequeue(context.Background())
	assert.Error(t, err)
	assert.Zero(t, q.Size())

	// Closing twice is harmless.
	assert.NoError(t, q.Close())
}
