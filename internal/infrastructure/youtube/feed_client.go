package youtube

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"sourcehub/internal/core/domain"
	"sourcehub/internal/core/ports"
	"sourcehub/pkg/cache"
	"sourcehub/pkg/circuitbreaker"
	"sourcehub/pkg/retry"
)

const (
	defaultFeedBaseURL = "https://www.youtube.com/feeds/videos.xml"

	// Feeds only refresh every few minutes upstream, so short caching costs
	// nothing in freshness.
	feedCacheTTL = 5 * time.Minute
)

// FeedClient fetches a channel's uploads from the public RSS feed. Requests
// run through a retry loop and a circuit breaker; parsed feeds are cached
// briefly per channel.
type FeedClient struct {
	baseURL    string
	httpClient *http.Client
	retryCfg   retry.Config
	breaker    *circuitbreaker.CircuitBreaker
	feedCache  *cache.CacheWithFallback
}

type Option func(*FeedClient)

// WithBaseURL overrides the feed endpoint, mainly for tests.
func WithBaseURL(baseURL string) Option {
	return func(c *FeedClient) {
		c.baseURL = baseURL
	}
}

func NewFeedClient(timeout time.Duration, retryAttempts int, opts ...Option) ports.FeedClient {
	retryCfg := retry.DefaultConfig()
	retryCfg.MaxAttempts = retryAttempts

	client := &FeedClient{
		baseURL:    defaultFeedBaseURL,
		httpClient: &http.Client{Timeout: timeout},
		retryCfg:   retryCfg,
		breaker:    circuitbreaker.New(circuitbreaker.DefaultConfig()),
		feedCache:  cache.NewCacheWithFallback(feedCacheTTL),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// uploads feed document, Atom with the yt extension namespace
type feedDocument struct {
	Entries []feedEntry `xml:"entry"`
}

type feedEntry struct {
	VideoID   string    `xml:"videoId"`
	Title     string    `xml:"title"`
	Link      feedLink  `xml:"link"`
	Published time.Time `xml:"published"`
}

type feedLink struct {
	Href string `xml:"href,attr"`
}

func (c *FeedClient) FetchUploads(ctx context.Context, channelID string) ([]domain.FeedEntry, error) {
	cached, err := c.feedCache.GetOrSet(ctx, "feed:"+channelID, func(ctx context.Context) (interface{}, error) {
		return c.fetchUploads(ctx, channelID)
	}, feedCacheTTL)
	if err != nil {
		return nil, err
	}
	return cached.([]domain.FeedEntry), nil
}

func (c *FeedClient) fetchUploads(ctx context.Context, channelID string) ([]domain.FeedEntry, error) {
	feedURL := c.baseURL + "?channel_id=" + url.QueryEscape(channelID)

	var body []byte
	err := c.breaker.Execute(ctx, func() error {
		return retry.Retry(ctx, c.retryCfg, func() error {
			var fetchErr error
			body, fetchErr = c.get(ctx, feedURL)
			return fetchErr
		})
	})
	if err != nil {
		return nil, err
	}

	var doc feedDocument
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse uploads feed: %w", err)
	}

	entries := make([]domain.FeedEntry, 0, len(doc.Entries))
	for _, entry := range doc.Entries {
		if entry.VideoID == "" {
			continue
		}
		link := entry.Link.Href
		if link == "" {
			link = "https://www.youtube.com/watch?v=" + entry.VideoID
		}
		entries = append(entries, domain.FeedEntry{
			YouTubeID:   entry.VideoID,
			Title:       entry.Title,
			URL:         link,
			PublishedAt: entry.Published,
		})
	}
	return entries, nil
}

func (c *FeedClient) get(ctx context.Context, feedURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build feed request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feed request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed request returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read feed response: %w", err)
	}
	return body, nil
}
