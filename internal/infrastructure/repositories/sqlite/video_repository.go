package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"sourcehub/internal/core/domain"
	"sourcehub/internal/core/ports"
)

type VideoRepository struct {
	db *sql.DB
}

func NewVideoRepository(db *sql.DB) ports.VideoRepository {
	return &VideoRepository{db: db}
}

func (r *VideoRepository) Upsert(ctx context.Context, video *domain.Video) (bool, error) {
	query := `
		INSERT INTO videos (id, source_id, youtube_id, title, url, published_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (source_id, youtube_id) DO NOTHING
	`

	result, err := r.db.ExecContext(ctx, query,
		string(video.ID),
		string(video.SourceID),
		video.YouTubeID,
		video.Title,
		video.URL,
		video.PublishedAt,
		video.CreatedAt,
	)
	if err != nil {
		if isPermissionDenied(err) {
			return false, domain.ErrPermissionDenied
		}
		return false, fmt.Errorf("failed to upsert video: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return rows > 0, nil
}

func (r *VideoRepository) ListBySource(ctx context.Context, sourceID domain.SourceID) ([]*domain.Video, error) {
	query := `
		SELECT id, source_id, youtube_id, title, url, published_at, created_at
		FROM videos
		WHERE source_id = ?
		ORDER BY published_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, string(sourceID))
	if err != nil {
		return nil, fmt.Errorf("failed to query videos: %w", err)
	}
	defer rows.Close()

	var videos []*domain.Video
	for rows.Next() {
		var (
			video domain.Video
			id    string
			srcID string
		)
		if err := rows.Scan(&id, &srcID, &video.YouTubeID, &video.Title, &video.URL, &video.PublishedAt, &video.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan video: %w", err)
		}
		video.ID = domain.VideoID(id)
		video.SourceID = domain.SourceID(srcID)
		videos = append(videos, &video)
	}
	return videos, rows.Err()
}
