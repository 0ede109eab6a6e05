package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"sourcehub/internal/core/domain"
	"sourcehub/internal/core/ports"
)

type SourceRepository struct {
	db *sql.DB
}

func NewSourceRepository(db *sql.DB) ports.SourceRepository {
	return &SourceRepository{db: db}
}

func (r *SourceRepository) Create(ctx context.Context, source *domain.ContentSource) error {
	query := `
		INSERT INTO content_sources (id, type, name, source_id, source_url, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		string(source.ID),
		string(source.Type),
		source.Name,
		source.ChannelID,
		source.SourceURL,
		source.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateSource
		}
		if isPermissionDenied(err) {
			return domain.ErrPermissionDenied
		}
		return fmt.Errorf("failed to insert source: %w", err)
	}
	return nil
}

func (r *SourceRepository) GetByID(ctx context.Context, id domain.SourceID) (*domain.ContentSource, error) {
	query := `
		SELECT id, type, name, source_id, source_url, created_at, last_fetched_at
		FROM content_sources
		WHERE id = ?
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, string(id)))
}

func (r *SourceRepository) FindByChannelID(ctx context.Context, sourceType domain.SourceType, channelID string) (*domain.ContentSource, error) {
	query := `
		SELECT id, type, name, source_id, source_url, created_at, last_fetched_at
		FROM content_sources
		WHERE type = ? AND source_id = ?
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, string(sourceType), channelID))
}

func (r *SourceRepository) List(ctx context.Context) ([]*domain.ContentSource, error) {
	query := `
		SELECT id, type, name, source_id, source_url, created_at, last_fetched_at
		FROM content_sources
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query sources: %w", err)
	}
	defer rows.Close()

	var sources []*domain.ContentSource
	for rows.Next() {
		source, err := scanSource(rows)
		if err != nil {
			return nil, err
		}
		sources = append(sources, source)
	}
	return sources, rows.Err()
}

func (r *SourceRepository) MarkFetched(ctx context.Context, id domain.SourceID) error {
	query := `UPDATE content_sources SET last_fetched_at = ? WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, time.Now(), string(id))
	if err != nil {
		return fmt.Errorf("failed to mark source fetched: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return domain.ErrSourceNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *SourceRepository) scanOne(row *sql.Row) (*domain.ContentSource, error) {
	source, err := scanSource(row)
	if err == sql.ErrNoRows {
		return nil, domain.ErrSourceNotFound
	}
	return source, err
}

func scanSource(row rowScanner) (*domain.ContentSource, error) {
	var (
		source        domain.ContentSource
		id            string
		sourceType    string
		lastFetchedAt sql.NullTime
	)

	err := row.Scan(&id, &sourceType, &source.Name, &source.ChannelID, &source.SourceURL, &source.CreatedAt, &lastFetchedAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan source: %w", err)
	}

	source.ID = domain.SourceID(id)
	source.Type = domain.SourceType(sourceType)
	if lastFetchedAt.Valid {
		source.LastFetchedAt = &lastFetchedAt.Time
	}
	return &source, nil
}
