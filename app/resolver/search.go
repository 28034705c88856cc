package resolver

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/lysyi3m/tube-comb/app/feed"
)

const searchMaxResults = 3

type searchResponse struct {
	Items []struct {
		ID struct {
			Kind      string `json:"kind"`
			ChannelID string `json:"channelId"`
		} `json:"id"`
		Snippet struct {
			ChannelID string `json:"channelId"`
			Title     string `json:"title"`
		} `json:"snippet"`
	} `json:"items"`
}

// SearchStrategy queries the platform's search API for channels matching the display name.
// It is inert without an API key.
type SearchStrategy struct {
	client  client
	baseURL string
	apiKey  string
}

func NewSearchStrategy(httpClient *http.Client, baseURL, apiKey string) *SearchStrategy {
	return &SearchStrategy{
		client:  client{httpClient: httpClient},
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

func (s *SearchStrategy) Name() string {
	return "search"
}

func (s *SearchStrategy) Resolve(ctx context.Context, channelConfig *feed.Config) (string, error) {
	query := channelConfig.Query()
	if s.apiKey == "" || query == "" {
		return "", errNotConfigured
	}

	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("type", "channel")
	params.Set("maxResults", strconv.Itoa(searchMaxResults))
	params.Set("q", query)
	params.Set("key", s.apiKey)

	body, err := s.client.get(ctx, s.baseURL+"?"+params.Encode(), "application/json")
	if err != nil {
		return "", fmt.Errorf("search channels: %w", err)
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decode search response: %w", err)
	}

	for _, item := range resp.Items {
		if key := cmp.Or(item.Snippet.ChannelID, item.ID.ChannelID); ValidKey(key) {
			return key, nil
		}
	}
	return "", ErrNotFound
}
