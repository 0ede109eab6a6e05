package memory

import (
	"context"
	"sort"
	"sync"

	"sourcehub/internal/core/domain"
	"sourcehub/internal/core/ports"
)

type videoKey struct {
	sourceID  domain.SourceID
	youtubeID string
}

type MemoryVideoRepository struct {
	videos map[videoKey]*domain.Video
	mu     sync.RWMutex
}

func NewMemoryVideoRepository() ports.VideoRepository {
	return &MemoryVideoRepository{
		videos: make(map[videoKey]*domain.Video),
	}
}

func (r *MemoryVideoRepository) Upsert(ctx context.Context, video *domain.Video) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := videoKey{sourceID: video.SourceID, youtubeID: video.YouTubeID}
	if _, exists := r.videos[key]; exists {
		return false, nil
	}

	copied := *video
	r.videos[key] = &copied
	return true, nil
}

func (r *MemoryVideoRepository) ListBySource(ctx context.Context, sourceID domain.SourceID) ([]*domain.Video, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var videos []*domain.Video
	for _, video := range r.videos {
		if video.SourceID == sourceID {
			copied := *video
			videos = append(videos, &copied)
		}
	}

	sort.Slice(videos, func(i, j int) bool {
		return videos[i].PublishedAt.After(videos[j].PublishedAt)
	})
	return videos, nil
}
