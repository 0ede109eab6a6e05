package queue

import (
	"context"
	"testing"
	"time"

	"sourcehub/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryQueue_EnqueueDequeue(t *testing.T) {
	q := NewMemoryQueue(4)
	ctx := context.Background()

	job := domain.FetchJob{SourceID: "src-1", ChannelID: "UCabc123", EnqueuedAt: time.Now()}
	require.NoError(t, q.Enqueue(ctx, job))

	got, err := q.Dequeue(ctx)
	require.NoError(t, err)
	assert.Equal(t, job.SourceID, got.SourceID)
	assert.Equal(t, job.ChannelID, got.ChannelID)
}

func TestMemoryQueue_EnqueueFullQueue(t *testing.T) {
	q := NewMemoryQueue(1)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, domain.FetchJob{SourceID: "src-1"}))

	err := q.Enqueue(ctx, domain.FetchJob{SourceID: "src-2"})
	assert.Error(t, err, "enqueue must not block when the queue is full")
}

func TestMemoryQueue_DequeueRespectsContext(t *testing.T) {
	q := NewMemoryQueue(1)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := q.Dequeue(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMemoryQueue_FIFO(t *testing.T) {
	q := NewMemoryQueue(4)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, q.Enqueue(ctx, domain.FetchJob{SourceID: domain.SourceID(id)}))
	}

	for _, want := range []string{"a", "b", "c"} {
		got, err := q.Dequeue(ctx)
		require.NoError(t, err)
		assert.Equal(t, domain.SourceID(want), got.SourceID)
	}
}
