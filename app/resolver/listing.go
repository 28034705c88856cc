package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/lysyi3m/tube-comb/app/feed"
)

// maxListingEntries bounds how far into a listing the owner id is searched.
const maxListingEntries = 5

type listingEntry struct {
	VideoID  string `json:"videoId"`
	Title    string `json:"title"`
	Author   string `json:"author"`
	AuthorID string `json:"authorId"`
}

type listingPage struct {
	Videos []listingEntry `json:"videos"`
}

// ListingStrategy reads the owner id from a public JSON listing of a channel's uploads.
type ListingStrategy struct {
	client client
}

func NewListingStrategy(httpClient *http.Client, userAgent string) *ListingStrategy {
	return &ListingStrategy{client: client{httpClient: httpClient, userAgent: userAgent}}
}

func (s *ListingStrategy) Name() string {
	return "listing"
}

func (s *ListingStrategy) Resolve(ctx context.Context, channelConfig *feed.Config) (string, error) {
	if channelConfig.ListingURL == "" {
		return "", errNotConfigured
	}

	body, err := s.client.get(ctx, channelConfig.ListingURL, "application/json")
	if err != nil {
		return "", fmt.Errorf("fetch listing: %w", err)
	}

	entries, err := decodeListing(body)
	if err != nil {
		return "", err
	}

	for i, entry := range entries {
		if i == maxListingEntries {
			break
		}
		if ValidKey(entry.AuthorID) {
			return entry.AuthorID, nil
		}
	}
	return "", ErrNotFound
}

// decodeListing accepts either a paginated object or a bare array of entries.
func decodeListing(body []byte) ([]listingEntry, error) {
	var page listingPage
	if err := json.Unmarshal(body, &page); err == nil {
		return page.Videos, nil
	}

	var entries []listingEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("decode listing: %w", err)
	}
	return entries, nil
}
