package transcript

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"html"
	"strings"
)

type timedText struct {
	Segments []struct {
		Start string `xml:"start,attr"`
		Dur   string `xml:"dur,attr"`
		Text  string `xml:",chardata"`
	} `xml:"text"`
}

// parseTimedText joins caption segments with single spaces.
// Segment bodies arrive entity-escaped twice, so they are unescaped again after XML decoding.
func parseTimedText(data []byte) (string, error) {
	var doc timedText
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = false
	if err := dec.Decode(&doc); err != nil {
		return "", fmt.Errorf("decode timedtext: %w", err)
	}

	parts := make([]string, 0, len(doc.Segments))
	for _, seg := range doc.Segments {
		text := normalizeSpace(html.UnescapeString(seg.Text))
		if text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " "), nil
}
