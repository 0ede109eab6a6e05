package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"sourcehub/internal/core/domain"
	"sourcehub/internal/core/ports"
	"sourcehub/pkg/tracing"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// FetchMetrics records fetch worker activity. Implemented by
// monitoring.PrometheusCollector.
type FetchMetrics interface {
	RecordFetchCompleted(duration time.Duration, videos int)
	RecordFetchFailed()
}

// FetchService consumes video-fetch jobs and ingests channel uploads into
// the store.
type FetchService struct {
	sources ports.SourceRepository
	videos  ports.VideoRepository
	queue   ports.FetchQueue
	feed    ports.FeedClient
	metrics FetchMetrics
	log     *zap.SugaredLogger
}

func NewFetchService(
	sources ports.SourceRepository,
	videos ports.VideoRepository,
	queue ports.FetchQueue,
	feed ports.FeedClient,
	metrics FetchMetrics,
	log *zap.SugaredLogger,
) *FetchService {
	return &FetchService{
		sources: sources,
		videos:  videos,
		queue:   queue,
		feed:    feed,
		metrics: metrics,
		log:     log,
	}
}

// Run dequeues and processes jobs until ctx is done. Job failures are logged
// and dropped; delivery is at most once.
func (s *FetchService) Run(ctx context.Context) error {
	for {
		job, err := s.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.log.Errorw("failed to dequeue fetch job", "error", err)
			continue
		}

		if err := s.Process(ctx, *job); err != nil {
			s.metrics.RecordFetchFailed()
			s.log.Errorw("fetch job failed",
				"source_id", job.SourceID,
				"channel_id", job.ChannelID,
				"error", err,
			)
		}
	}
}

// Process fetches the channel's uploads feed and upserts its entries.
func (s *FetchService) Process(ctx context.Context, job domain.FetchJob) error {
	if strings.HasPrefix(job.ChannelID, "@") {
		// TODO: resolve @handles to channel IDs once a lookup client is wired.
		s.log.Infow("skipping handle-based source, no feed URL",
			"source_id", job.SourceID,
			"channel_id", job.ChannelID,
		)
		return nil
	}

	start := time.Now()

	ctx, span := tracing.TraceFeedFetch(ctx, string(job.SourceID), job.ChannelID)
	defer span.End()

	entries, err := s.feed.FetchUploads(ctx, job.ChannelID)
	if err != nil {
		tracing.RecordError(ctx, err)
		return fmt.Errorf("failed to fetch uploads for %s: %w", job.ChannelID, err)
	}

	inserted := 0
	for _, entry := range entries {
		video := &domain.Video{
			ID:          domain.VideoID(uuid.New().String()),
			SourceID:    job.SourceID,
			YouTubeID:   entry.YouTubeID,
			Title:       entry.Title,
			URL:         entry.URL,
			PublishedAt: entry.PublishedAt,
			CreatedAt:   time.Now(),
		}
		created, err := s.videos.Upsert(ctx, video)
		if err != nil {
			return fmt.Errorf("failed to upsert video %s: %w", entry.YouTubeID, err)
		}
		if created {
			inserted++
		}
	}

	if err := s.sources.MarkFetched(ctx, job.SourceID); err != nil {
		// The source may have disappeared between enqueue and fetch.
		if errors.Is(err, domain.ErrSourceNotFound) {
			s.log.Warnw("source vanished during fetch", "source_id", job.SourceID)
			return nil
		}
		return fmt.Errorf("failed to mark source fetched: %w", err)
	}

	s.metrics.RecordFetchCompleted(time.Since(start), inserted)
	s.log.Infow("fetch completed",
		"source_id", job.SourceID,
		"channel_id", job.ChannelID,
		"entries", len(entries),
		"new_videos", inserted,
	)
	return nil
}
