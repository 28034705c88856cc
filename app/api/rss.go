package api

import (
	"bytes"
	"cmp"
	"encoding/xml"
	"fmt"
	"html"
	"time"

	"github.com/lysyi3m/tube-comb/app/database"
)

const permalinkBase = "https://youtu.be/"

// renderProcessedFeed writes the recorded videos as an RSS 2.0 channel, newest first.
func renderProcessedFeed(entries []database.Entry, selfLink, version string, now time.Time) string {
	var buf bytes.Buffer

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n")
	buf.WriteString(`<rss version="2.0" xmlns:atom="http://www.w3.org/2005/Atom">`)
	buf.WriteString("\n  <channel>\n")

	writeElement(&buf, "title", "Tube Comb: processed videos", 4)
	writeElement(&buf, "link", selfLink, 4)
	writeElement(&buf, "description", "Videos that have been reported and recorded", 4)
	buf.WriteString(fmt.Sprintf("    <atom:link href=\"%s\" rel=\"self\" type=\"application/rss+xml\" />\n",
		html.EscapeString(selfLink)))

	lastBuildDate := now
	if len(entries) > 0 && entries[0].RecordedAt != nil {
		lastBuildDate = *entries[0].RecordedAt
	}
	writeElement(&buf, "lastBuildDate", lastBuildDate.Format(time.RFC1123Z), 4)
	writeElement(&buf, "generator", fmt.Sprintf("Tube-Comb/%s", version), 4)

	for _, entry := range entries {
		writeItem(&buf, entry)
	}

	buf.WriteString("  </channel>\n</rss>")

	return buf.String()
}

func writeItem(buf *bytes.Buffer, entry database.Entry) {
	buf.WriteString("    <item>\n")

	buf.WriteString("      <guid isPermaLink=\"false\">")
	xml.EscapeText(buf, []byte(entry.ItemID))
	buf.WriteString("</guid>\n")

	title := entry.ItemID
	if entry.Channel != "" {
		title = fmt.Sprintf("%s: %s", entry.Channel, entry.ItemID)
	}
	writeElement(buf, "title", title, 6)
	writeElement(buf, "link", permalinkBase+entry.ItemID, 6)
	writeElement(buf, "description", cmp.Or(entry.Channel, "Recorded video"), 6)

	if entry.RecordedAt != nil {
		writeElement(buf, "pubDate", entry.RecordedAt.Format(time.RFC1123Z), 6)
	}
	if entry.Channel != "" {
		writeElement(buf, "category", entry.Channel, 6)
	}

	buf.WriteString("    </item>\n")
}

func writeElement(buf *bytes.Buffer, tag, content string, indent int) {
	if content == "" {
		return
	}

	for range indent {
		buf.WriteByte(' ')
	}

	buf.WriteString("<")
	buf.WriteString(tag)
	buf.WriteString(">")
	xml.EscapeText(buf, []byte(content))
	buf.WriteString("</")
	buf.WriteString(tag)
	buf.WriteString(">\n")
}
