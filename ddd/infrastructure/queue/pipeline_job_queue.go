package queue

import (
	"context"
	"fmt"
	"sync"

	"video-pipeline-service/pkg/config"
)

// PipelineJob is one unit of ingest work. ObjectKey is set when the source
// sits in object storage and still needs downloading; a job with an empty
// ObjectKey refers to an already-stored original.
type PipelineJob struct {
	AssetUUID string `json:"asset_uuid"`
	UserUUID  string `json:"user_uuid"`
	ObjectKey string `json:"object_key,omitempty"`
	Filename  string `json:"filename"`
	// Retry re-runs a finished asset instead of a first ingest.
	Retry bool `json:"retry,omitempty"`
}

type PipelineJobQueue interface {
	Enqueue(ctx context.Context, job *PipelineJob) error
	Dequeue(ctx context.Context) (*PipelineJob, error)
	TryDequeue(ctx context.Context) (*PipelineJob, error)
	Size() int
	IsEmpty() bool
	Close() error
	IsClosed() bool
}

type memoryPipelineJobQueue struct {
	queue  chan *PipelineJob
	closed bool
	mu     sync.RWMutex
}

func NewMemoryPipelineJobQueue(capacity int) PipelineJobQueue {
	if capacity <= 0 {
		capacity = 100
	}
	return &memoryPipelineJobQueue{queue: make(chan *PipelineJob, capacity)}
}

func (q *memoryPipelineJobQueue) Enqueue(ctx context.Context, job *PipelineJob) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return fmt.Errorf("queue is closed")
	}
	if job == nil {
		return fmt.Errorf("job cannot be nil")
	}
	select {
	case q.queue <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return fmt.Errorf("queue is full")
	}
}

func (q *memoryPipelineJobQueue) Dequeue(ctx context.Context) (*PipelineJob, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return nil, fmt.Errorf("queue is closed")
	}
	select {
	case job := <-q.queue:
		return job, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (q *memoryPipelineJobQueue) TryDequeue(ctx context.Context) (*PipelineJob, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return nil, fmt.Errorf("queue is closed")
	}
	select {
	case job := <-q.queue:
		return job, nil
	default:
		return nil, nil
	}
}

func (q *memoryPipelineJobQueue) Size() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return 0
	}
	return len(q.queue)
}

func (q *memoryPipelineJobQueue) IsEmpty() bool { return q.Size() == 0 }

func (q *memoryPipelineJobQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil
	}
	q.closed = true
	close(q.queue)
	return nil
}

func (q *memoryPipelineJobQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}

var (
	pipelineQueueOnce    sync.Once
	defaultPipelineQueue PipelineJobQueue
)

func DefaultPipelineJobQueue() PipelineJobQueue {
	pipelineQueueOnce.Do(func() {
		capacity := 100
		if cfg := config.GetGlobalConfig(); cfg != nil && cfg.Worker.QueueCapacity > 0 {
			capacity = cfg.Worker.QueueCapacity
		}
		defaultPipelineQueue = NewMemoryPipelineJobQueue(capacity)
	})
	return defaultPipelineQueue
}

func CloseDefaultPipelineJobQueue() {
	if defaultPipelineQueue != nil {
		_ = defaultPipelineQueue.Close()
	}
}
