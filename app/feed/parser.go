package feed

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed"
)

const permalinkBase = "https://youtu.be/"

type Parser struct {
	gofeedParser *gofeed.Parser
}

func NewParser() *Parser {
	return &Parser{
		gofeedParser: gofeed.NewParser(),
	}
}

// Run parses a channel Atom feed into candidate items in document order.
func (p *Parser) Run(data []byte, channelName string) ([]Item, error) {
	parsed, err := p.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	items := make([]Item, 0, len(parsed.Items))
	for _, entry := range parsed.Items {
		item, ok := p.normalizeItem(entry, channelName)
		if !ok {
			continue
		}
		items = append(items, item)
	}

	return items, nil
}

func (p *Parser) normalizeItem(entry *gofeed.Item, channelName string) (Item, bool) {
	videoID := p.videoID(entry)
	if videoID == "" {
		return Item{}, false
	}

	item := Item{
		ID:      videoID,
		Title:   strings.TrimSpace(entry.Title),
		Link:    permalinkBase + videoID,
		Channel: channelName,
	}

	if entry.PublishedParsed != nil {
		item.PublishedAt = *entry.PublishedParsed
	}

	return item, true
}

func (p *Parser) videoID(entry *gofeed.Item) string {
	if yt, ok := entry.Extensions["yt"]; ok {
		if values := yt["videoId"]; len(values) > 0 && values[0].Value != "" {
			return strings.TrimSpace(values[0].Value)
		}
	}
	return strings.TrimPrefix(entry.GUID, "yt:video:")
}
