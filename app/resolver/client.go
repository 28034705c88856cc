package resolver

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

const maxBodyBytes = 10 * 1024 * 1024

// client issues GET requests that look like a desktop browser.
type client struct {
	httpClient     *http.Client
	userAgent      string
	acceptLanguage string
}

func (c *client) get(ctx context.Context, url, accept string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", accept)
	if c.acceptLanguage != "" {
		req.Header.Set("Accept-Language", c.acceptLanguage)
	}
	// Skips the EU consent interstitial, which carries no channel metadata.
	req.Header.Set("Cookie", "CONSENT=YES+cb")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}
