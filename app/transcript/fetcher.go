package transcript

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/kkdai/youtube/v2"
	"golang.org/x/text/language"
)

var ErrUnavailable = errors.New("transcript unavailable")

const maxBodyBytes = 10 * 1024 * 1024

// captionSource is the part of the YouTube client the fetcher needs.
type captionSource interface {
	GetVideoContext(ctx context.Context, id string) (*youtube.Video, error)
	GetTranscriptCtx(ctx context.Context, video *youtube.Video, lang string) (youtube.VideoTranscript, error)
}

type Options struct {
	UserAgent      string
	AcceptLanguage string
	Preferred      string // language of the first attempt
	Secondary      string // added on the second attempt
	MaxChars       int    // rune budget; 0 disables truncation
}

type Fetcher struct {
	videos     captionSource
	httpClient *http.Client
	opts       Options
	preferred  language.Tag
	secondary  language.Tag
}

func NewFetcher(httpClient *http.Client, opts Options) *Fetcher {
	return newFetcher(&youtube.Client{HTTPClient: httpClient}, httpClient, opts)
}

func newFetcher(videos captionSource, httpClient *http.Client, opts Options) *Fetcher {
	return &Fetcher{
		videos:     videos,
		httpClient: httpClient,
		opts:       opts,
		preferred:  language.Make(opts.Preferred),
		secondary:  language.Make(opts.Secondary),
	}
}

// Fetch tries the preferred language alone, then the preferred and secondary languages.
// It returns ErrUnavailable once both attempts fail.
func (f *Fetcher) Fetch(ctx context.Context, videoID string) (string, error) {
	attempts := [][]language.Tag{
		{f.preferred},
		{f.preferred, f.secondary},
	}

	var lastErr error
	for i, langs := range attempts {
		text, err := f.fetch(ctx, videoID, langs)
		if err == nil {
			return Truncate(text, f.opts.MaxChars), nil
		}
		lastErr = err
		slog.Debug("Transcript attempt failed", "video_id", videoID, "attempt", i+1, "error", err)

		if ctx.Err() != nil {
			break
		}
	}

	return "", fmt.Errorf("%w: %s: %w", ErrUnavailable, videoID, lastErr)
}

func (f *Fetcher) fetch(ctx context.Context, videoID string, langs []language.Tag) (string, error) {
	video, err := f.videos.GetVideoContext(ctx, videoID)
	if err != nil {
		return "", fmt.Errorf("load video: %w", err)
	}

	track, ok := pickTrack(video.CaptionTracks, langs)
	if !ok {
		return "", fmt.Errorf("no caption track for %v", langs)
	}

	segments, err := f.videos.GetTranscriptCtx(ctx, video, track.LanguageCode)
	if err == nil {
		if text := joinSegments(segments); text != "" {
			return text, nil
		}
		err = errors.New("empty transcript")
	}
	if track.BaseURL == "" {
		return "", err
	}

	// The caption track itself is still downloadable when the transcript panel is not.
	slog.Debug("Transcript panel failed, using caption track", "video_id", videoID, "lang", track.LanguageCode, "error", err)
	return f.fetchTrack(ctx, track.BaseURL)
}

func (f *Fetcher) fetchTrack(ctx context.Context, rawURL string) (string, error) {
	data, err := f.get(ctx, rawURL)
	if err != nil {
		return "", fmt.Errorf("fetch timedtext: %w", err)
	}

	text, err := parseTimedText(data)
	if err != nil {
		return "", err
	}
	if text == "" {
		return "", errors.New("empty transcript")
	}
	return text, nil
}

func (f *Fetcher) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)
	if f.opts.AcceptLanguage != "" {
		req.Header.Set("Accept-Language", f.opts.AcceptLanguage)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	return io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
}

func joinSegments(segments youtube.VideoTranscript) string {
	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		if text := normalizeSpace(seg.Text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// pickTrack walks langs in order and prefers manual captions over auto-generated ones.
func pickTrack(tracks []youtube.CaptionTrack, langs []language.Tag) (youtube.CaptionTrack, bool) {
	for _, want := range langs {
		if want == language.Und {
			continue
		}
		var generated *youtube.CaptionTrack
		for i := range tracks {
			if !sameLanguage(language.Make(tracks[i].LanguageCode), want) {
				continue
			}
			if tracks[i].Kind != "asr" {
				return tracks[i], true
			}
			if generated == nil {
				generated = &tracks[i]
			}
		}
		if generated != nil {
			return *generated, true
		}
	}
	return youtube.CaptionTrack{}, false
}

func sameLanguage(a, b language.Tag) bool {
	ab, _ := a.Base()
	bb, _ := b.Base()
	return ab == bb
}

// Truncate cuts text to at most maxChars runes.
func Truncate(text string, maxChars int) string {
	if maxChars <= 0 || utf8.RuneCountInString(text) <= maxChars {
		return text
	}

	n := 0
	for i := range text {
		if n == maxChars {
			return text[:i]
		}
		n++
	}
	return text
}
