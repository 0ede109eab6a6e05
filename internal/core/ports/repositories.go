package ports

import (
	"context"

	"sourcehub/internal/core/domain"
)

type SourceRepository interface {
	// Create inserts a new content source. Returns domain.ErrDuplicateSource
	// when the store's (type, source_id) unique constraint rejects the insert
	// and domain.ErrPermissionDenied when the store refuses the write.
	Create(ctx context.Context, source *domain.ContentSource) error
	GetByID(ctx context.Context, id domain.SourceID) (*domain.ContentSource, error)
	FindByChannelID(ctx context.Context, sourceType domain.SourceType, channelID string) (*domain.ContentSource, error)
	List(ctx context.Context) ([]*domain.ContentSource, error)
	MarkFetched(ctx context.Context, id domain.SourceID) error
}

type VideoRepository interface {
	// Upsert inserts a video, ignoring duplicates of (source_id, youtube_id).
	// Returns true when a new row was written.
	Upsert(ctx context.Context, video *domain.Video) (bool, error)
	ListBySource(ctx context.Context, sourceID domain.SourceID) ([]*domain.Video, error)
}

type AccountRepository interface {
	// Create inserts a new account. Returns domain.ErrDuplicateAccount when
	// the email is already taken.
	Create(ctx context.Context, account *domain.Account) error
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
}
