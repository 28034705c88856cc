package notify

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"
)

var ErrDelivery = errors.New("report delivery failed")

type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// split cuts text into chunks of at most max runes, breaking after a newline when one is
// available in the second half of the chunk.
func split(text string, max int) []string {
	var chunks []string
	for utf8.RuneCountInString(text) > max {
		cut := byteOffset(text, max)
		if nl := strings.LastIndexByte(text[:cut], '\n'); nl >= cut/2 {
			cut = nl + 1
		}
		chunks = append(chunks, text[:cut])
		text = text[cut:]
	}
	if text != "" {
		chunks = append(chunks, text)
	}
	return chunks
}

// byteOffset returns the byte index just past the first n runes of s.
func byteOffset(s string, n int) int {
	for i := range s {
		if n == 0 {
			return i
		}
		n--
	}
	return len(s)
}
