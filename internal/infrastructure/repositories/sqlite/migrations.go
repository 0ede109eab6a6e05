package sqlite

import (
	"database/sql"
	"fmt"
)

// migrations run in order inside one transaction. Statements must stay
// idempotent; there is no version table.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS content_sources (
		id              TEXT PRIMARY KEY,
		type            TEXT NOT NULL,
		name            TEXT NOT NULL,
		source_id       TEXT NOT NULL,
		source_url      TEXT NOT NULL,
		created_at      TIMESTAMP NOT NULL,
		last_fetched_at TIMESTAMP,
		UNIQUE (type, source_id)
	)`,
	`CREATE TABLE IF NOT EXISTS videos (
		id           TEXT PRIMARY KEY,
		source_id    TEXT NOT NULL REFERENCES content_sources(id),
		youtube_id   TEXT NOT NULL,
		title        TEXT NOT NULL,
		url          TEXT NOT NULL,
		published_at TIMESTAMP NOT NULL,
		created_at   TIMESTAMP NOT NULL,
		UNIQUE (source_id, youtube_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_videos_source_id ON videos (source_id)`,
	`CREATE TABLE IF NOT EXISTS accounts (
		id            TEXT PRIMARY KEY,
		email         TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at    TIMESTAMP NOT NULL
	)`,
}

// Migrate applies the schema.
func Migrate(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin migration transaction: %w", err)
	}
	defer tx.Rollback()

	for i, stmt := range migrations {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d failed: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migrations: %w", err)
	}
	return nil
}
