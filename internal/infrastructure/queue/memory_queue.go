package queue

import (
	"context"
	"fmt"

	"sourcehub/internal/core/domain"
	"sourcehub/internal/core/ports"
)

// MemoryQueue is an in-process fetch-job queue used when Redis is disabled.
// Jobs do not survive a restart.
type MemoryQueue struct {
	jobs chan domain.FetchJob
}

func NewMemoryQueue(capacity int) ports.FetchQueue {
	if capacity <= 0 {
		capacity = 256
	}
	return &MemoryQueue{
		jobs: make(chan domain.FetchJob, capacity),
	}
}

func (q *MemoryQueue) Enqueue(ctx context.Context, job domain.FetchJob) error {
	select {
	case q.jobs <- job:
		return nil
	default:
		return fmt.Errorf("fetch queue is full")
	}
}

func (q *MemoryQueue) Dequeue(ctx context.Context) (*domain.FetchJob, error) {
	select {
	case job := <-q.jobs:
		return &job, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
