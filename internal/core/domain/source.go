package domain

import (
	"strings"
	"time"
)

type SourceID string

type SourceType string

const (
	SourceTypeYouTube SourceType = "youtube"
)

const youtubeBaseURL = "https://www.youtube.com"

// ContentSource is a registered origin from which videos are ingested.
// (Type, ChannelID) pairs are unique, enforced by the backing store.
type ContentSource struct {
	ID            SourceID   `json:"id"`
	Type          SourceType `json:"type"`
	Name          string     `json:"name"`
	ChannelID     string     `json:"source_id"`
	SourceURL     string     `json:"source_url"`
	CreatedAt     time.Time  `json:"created_at"`
	LastFetchedAt *time.Time `json:"last_fetched_at,omitempty"`
}

// ChannelURL derives the public channel URL from a channel identifier.
// "@handle" identifiers map directly under the site root, bare channel IDs
// go under the channel/ path segment.
func ChannelURL(channelID string) string {
	if strings.HasPrefix(channelID, "@") {
		return youtubeBaseURL + "/" + channelID
	}
	return youtubeBaseURL + "/channel/" + channelID
}

// FeedURL derives the uploads RSS feed URL for a bare channel ID.
// Handle-based sources have no stable feed URL until the handle is
// resolved to a channel ID.
func FeedURL(channelID string) (string, bool) {
	if strings.HasPrefix(channelID, "@") {
		return "", false
	}
	return youtubeBaseURL + "/feeds/videos.xml?channel_id=" + channelID, true
}
