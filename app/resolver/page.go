package resolver

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/lysyi3m/tube-comb/app/feed"
)

const channelBaseURL = "https://www.youtube.com/"

var (
	canonicalPattern  = regexp.MustCompile(`/channel/(UC[0-9A-Za-z_-]+)`)
	feedLinkPattern   = regexp.MustCompile(`channel_id=(UC[0-9A-Za-z_-]+)`)
	externalIDPattern = regexp.MustCompile(`"externalId"\s*:\s*"(UC[0-9A-Za-z_-]+)"`)
	channelIDPattern  = regexp.MustCompile(`"channelId"\s*:\s*"(UC[0-9A-Za-z_-]+)"`)
	browseIDPattern   = regexp.MustCompile(`"browseId"\s*:\s*"(UC[0-9A-Za-z_-]+)"`)
)

// pagePattern is one known embedding of the channel id in channel page markup.
type pagePattern struct {
	name string
	find func(doc *goquery.Document, raw []byte) []string
}

var pagePatterns = []pagePattern{
	{"meta identifier", metaContent(`meta[itemprop="identifier"]`)},
	{"meta channelId", metaContent(`meta[itemprop="channelId"]`)},
	{"canonical link", linkHref(`link[rel="canonical"]`, canonicalPattern)},
	{"feed link", linkHref(`link[type="application/rss+xml"]`, feedLinkPattern)},
	{"externalId", rawMatch(externalIDPattern)},
	{"channelId", rawMatch(channelIDPattern)},
	{"browseId", rawMatch(browseIDPattern)},
}

type PageStrategy struct {
	client client
}

func NewPageStrategy(httpClient *http.Client, userAgent, acceptLanguage string) *PageStrategy {
	return &PageStrategy{client: client{httpClient: httpClient, userAgent: userAgent, acceptLanguage: acceptLanguage}}
}

func (s *PageStrategy) Name() string {
	return "page"
}

func (s *PageStrategy) Resolve(ctx context.Context, channelConfig *feed.Config) (string, error) {
	body, err := s.client.get(ctx, ChannelURL(channelConfig.Reference), "text/html,application/xhtml+xml")
	if err != nil {
		return "", fmt.Errorf("fetch channel page: %w", err)
	}

	key, pattern := ScanPage(body)
	if key == "" {
		return "", ErrNotFound
	}
	slog.Debug("Channel id found on page", "channel", channelConfig.ID, "pattern", pattern)
	return key, nil
}

// ChannelURL expands a bare handle into a channel page URL.
func ChannelURL(reference string) string {
	reference = strings.TrimSpace(reference)
	switch {
	case strings.HasPrefix(reference, "@"):
		return channelBaseURL + reference
	case strings.HasPrefix(reference, "http://"), strings.HasPrefix(reference, "https://"):
		return reference
	default:
		return "https://" + strings.TrimPrefix(reference, "//")
	}
}

// ScanPage checks every known embedding in order and returns the first well-formed id
// together with the name of the pattern that produced it.
func ScanPage(raw []byte) (string, string) {
	// Markup that fails to parse still gets the raw patterns.
	doc, _ := goquery.NewDocumentFromReader(bytes.NewReader(raw))

	for _, pattern := range pagePatterns {
		for _, candidate := range pattern.find(doc, raw) {
			if ValidKey(candidate) {
				return candidate, pattern.name
			}
		}
	}
	return "", ""
}

func metaContent(selector string) func(*goquery.Document, []byte) []string {
	return func(doc *goquery.Document, _ []byte) []string {
		if doc == nil {
			return nil
		}
		var out []string
		doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
			if content, ok := sel.Attr("content"); ok {
				out = append(out, strings.TrimSpace(content))
			}
		})
		return out
	}
}

func linkHref(selector string, re *regexp.Regexp) func(*goquery.Document, []byte) []string {
	return func(doc *goquery.Document, _ []byte) []string {
		if doc == nil {
			return nil
		}
		var out []string
		doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
			href, _ := sel.Attr("href")
			if m := re.FindStringSubmatch(href); m != nil {
				out = append(out, m[1])
			}
		})
		return out
	}
}

func rawMatch(re *regexp.Regexp) func(*goquery.Document, []byte) []string {
	return func(_ *goquery.Document, raw []byte) []string {
		var out []string
		for _, m := range re.FindAllSubmatch(raw, -1) {
			out = append(out, string(m[1]))
		}
		return out
	}
}
