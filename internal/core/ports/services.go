package ports

import (
	"context"

	"sourcehub/internal/core/domain"
)

// Severity classifies user-facing notifications.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// Notifier delivers (title, description, severity) triples to whatever
// surface is configured. Fire-and-forget, no return value.
type Notifier interface {
	Notify(ctx context.Context, severity Severity, title, description string)
}

// FetchQueue carries video-fetch jobs from the API to the fetch worker.
type FetchQueue interface {
	Enqueue(ctx context.Context, job domain.FetchJob) error
	// Dequeue blocks until a job is available or ctx is done.
	Dequeue(ctx context.Context) (*domain.FetchJob, error)
}

// FeedClient pulls the published uploads of a channel.
type FeedClient interface {
	FetchUploads(ctx context.Context, channelID string) ([]domain.FeedEntry, error)
}
