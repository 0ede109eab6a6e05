package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"sourcehub/internal/core/domain"
	"sourcehub/internal/core/ports"
)

type MemorySourceRepository struct {
	sources map[domain.SourceID]*domain.ContentSource
	mu      sync.RWMutex
}

func NewMemorySourceRepository() ports.SourceRepository {
	return &MemorySourceRepository{
		sources: make(map[domain.SourceID]*domain.ContentSource),
	}
}

func (r *MemorySourceRepository) Create(ctx context.Context, source *domain.ContentSource) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.sources {
		if existing.Type == source.Type && existing.ChannelID == source.ChannelID {
			return domain.ErrDuplicateSource
		}
	}

	copied := *source
	r.sources[source.ID] = &copied
	return nil
}

func (r *MemorySourceRepository) GetByID(ctx context.Context, id domain.SourceID) (*domain.ContentSource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	source, exists := r.sources[id]
	if !exists {
		return nil, domain.ErrSourceNotFound
	}

	copied := *source
	return &copied, nil
}

func (r *MemorySourceRepository) FindByChannelID(ctx context.Context, sourceType domain.SourceType, channelID string) (*domain.ContentSource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, source := range r.sources {
		if source.Type == sourceType && source.ChannelID == channelID {
			copied := *source
			return &copied, nil
		}
	}
	return nil, domain.ErrSourceNotFound
}

func (r *MemorySourceRepository) List(ctx context.Context) ([]*domain.ContentSource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sources := make([]*domain.ContentSource, 0, len(r.sources))
	for _, source := range r.sources {
		copied := *source
		sources = append(sources, &copied)
	}

	sort.Slice(sources, func(i, j int) bool {
		return sources[i].CreatedAt.After(sources[j].CreatedAt)
	})
	return sources, nil
}

func (r *MemorySourceRepository) MarkFetched(ctx context.Context, id domain.SourceID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	source, exists := r.sources[id]
	if !exists {
		return domain.ErrSourceNotFound
	}

	now := time.Now()
	source.LastFetchedAt = &now
	return nil
}
