package domain

import "time"

type VideoID string

// Video is a single ingested item from a content source.
type Video struct {
	ID          VideoID   `json:"id"`
	SourceID    SourceID  `json:"source_id"`
	YouTubeID   string    `json:"youtube_id"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"published_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// FeedEntry is one item parsed from a channel's uploads feed.
type FeedEntry struct {
	YouTubeID   string
	Title       string
	URL         string
	PublishedAt time.Time
}

// FetchJob asks the fetch worker to ingest the uploads of one source.
type FetchJob struct {
	SourceID   SourceID  `json:"source_id"`
	ChannelID  string    `json:"channel_id"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}
