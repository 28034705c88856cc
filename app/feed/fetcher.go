package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
)

const maxFeedWindow = 15

var ErrFetch = errors.New("feed unavailable")

type Fetcher struct {
	httpClient *http.Client
	parser     *Parser
	baseURL    string
	userAgent  string
	window     int
}

func NewFetcher(httpClient *http.Client, parser *Parser, baseURL, userAgent string, window int) *Fetcher {
	return &Fetcher{
		httpClient: httpClient,
		parser:     parser,
		baseURL:    baseURL,
		userAgent:  userAgent,
		window:     min(max(window, 1), maxFeedWindow),
	}
}

// Fetch returns the newest videos of a channel, most recent first, capped at the window size.
// An empty feed is not an error.
func (f *Fetcher) Fetch(ctx context.Context, channelKey, channelName string) ([]Item, error) {
	data, err := f.fetchFeed(ctx, channelKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}

	items, err := f.parser.Run(data, channelName)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}

	// Zero timestamps sort last and keep their feed order.
	slices.SortStableFunc(items, func(a, b Item) int {
		return b.PublishedAt.Compare(a.PublishedAt)
	})

	if len(items) > f.window {
		items = items[:f.window]
	}

	return items, nil
}

func (f *Fetcher) fetchFeed(ctx context.Context, channelKey string) ([]byte, error) {
	feedURL, err := url.Parse(f.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid feed base URL: %w", err)
	}
	query := feedURL.Query()
	query.Set("channel_id", channelKey)
	feedURL.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}
