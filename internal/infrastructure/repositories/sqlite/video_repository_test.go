package sqlite

import (
	"context"
	"testing"
	"time"

	"sourcehub/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVideoRepository_UpsertIgnoresDuplicates(t *testing.T) {
	db := newTestDB(t)
	sources := NewSourceRepository(db)
	videos := NewVideoRepository(db)
	ctx := context.Background()

	source := testSource("UCabc123")
	require.NoError(t, sources.Create(ctx, source))

	video := &domain.Video{
		ID:          "vid-row-1",
		SourceID:    source.ID,
		YouTubeID:   "yt-1",
		Title:       "First upload",
		URL:         "https://www.youtube.com/watch?v=yt-1",
		PublishedAt: time.Now().Add(-time.Hour),
		CreatedAt:   time.Now(),
	}

	created, err := videos.Upsert(ctx, video)
	require.NoError(t, err)
	assert.True(t, created)

	// Same (source_id, youtube_id) again under a fresh row ID.
	dup := *video
	dup.ID = "vid-row-2"
	created, err = videos.Upsert(ctx, &dup)
	require.NoError(t, err)
	assert.False(t, created)

	stored, err := videos.ListBySource(ctx, source.ID)
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestVideoRepository_ListBySourceOrdersByPublished(t *testing.T) {
	db := newTestDB(t)
	sources := NewSourceRepository(db)
	videos := NewVideoRepository(db)
	ctx := context.Background()

	source := testSource("UCabc123")
	require.NoError(t, sources.Create(ctx, source))

	older := &domain.Video{
		ID: "vid-1", SourceID: source.ID, YouTubeID: "yt-1",
		Title: "Older", URL: "u1",
		PublishedAt: time.Now().Add(-2 * time.Hour), CreatedAt: time.Now(),
	}
	newer := &domain.Video{
		ID: "vid-2", SourceID: source.ID, YouTubeID: "yt-2",
		Title: "Newer", URL: "u2",
		PublishedAt: time.Now().Add(-time.Hour), CreatedAt: time.Now(),
	}

	_, err := videos.Upsert(ctx, older)
	require.NoError(t, err)
	_, err = videos.Upsert(ctx, newer)
	require.NoError(t, err)

	stored, err := videos.ListBySource(ctx, source.ID)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, "yt-2", stored[0].YouTubeID)
	assert.Equal(t, "yt-1", stored[1].YouTubeID)
}

func TestVideoRepository_ListBySourceEmpty(t *testing.T) {
	db := newTestDB(t)
	sources := NewSourceRepository(db)
	videos := NewVideoRepository(db)
	ctx := context.Background()

	source := testSource("UCabc123")
	require.NoError(t, sources.Create(ctx, source))

	stored, err := videos.ListBySource(ctx, source.ID)
	require.NoError(t, err)
	assert.Empty(t, stored)
}
