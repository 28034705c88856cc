package transcript

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/kkdai/youtube/v2"
	"golang.org/x/text/language"
)

type fakeVideos struct {
	tracks      []youtube.CaptionTrack
	transcripts map[string]youtube.VideoTranscript
	videoErrs   int // initial GetVideoContext calls that fail

	videoCalls int
	langs      []string
}

func (f *fakeVideos) GetVideoContext(_ context.Context, id string) (*youtube.Video, error) {
	f.videoCalls++
	if f.videoCalls <= f.videoErrs {
		return nil, errors.New("player response: 500")
	}
	return &youtube.Video{ID: id, CaptionTracks: f.tracks}, nil
}

func (f *fakeVideos) GetTranscriptCtx(_ context.Context, _ *youtube.Video, lang string) (youtube.VideoTranscript, error) {
	f.langs = append(f.langs, lang)
	segments, ok := f.transcripts[lang]
	if !ok {
		return nil, errors.New("transcript is disabled on this video")
	}
	return segments, nil
}

func newTestFetcher(videos captionSource, httpClient *http.Client, maxChars int) *Fetcher {
	return newFetcher(videos, httpClient, Options{
		UserAgent: "TestAgent/1.0",
		Preferred: "ja",
		Secondary: "en",
		MaxChars:  maxChars,
	})
}

func segments(texts ...string) youtube.VideoTranscript {
	out := make(youtube.VideoTranscript, 0, len(texts))
	for _, text := range texts {
		out = append(out, youtube.TranscriptSegment{Text: text})
	}
	return out
}

func TestFetcher_FetchPreferred(t *testing.T) {
	videos := &fakeVideos{
		tracks: []youtube.CaptionTrack{{LanguageCode: "ja"}, {LanguageCode: "en"}},
		transcripts: map[string]youtube.VideoTranscript{
			"ja": segments("ドル円は", "  上昇 &  反落  ", ""),
			"en": segments("unused"),
		},
	}

	text, err := newTestFetcher(videos, http.DefaultClient, 20000).Fetch(context.Background(), "vid00000001")
	if err != nil {
		t.Fatal(err)
	}
	if text != "ドル円は 上昇 & 反落" {
		t.Errorf("Expected joined text, got '%s'", text)
	}
	if len(videos.langs) != 1 || videos.langs[0] != "ja" {
		t.Errorf("Expected only the Japanese transcript requested, got %v", videos.langs)
	}
}

func TestFetcher_FetchSecondaryTruncated(t *testing.T) {
	long := strings.Repeat("円", 30000)
	videos := &fakeVideos{
		tracks:      []youtube.CaptionTrack{{LanguageCode: "en"}},
		transcripts: map[string]youtube.VideoTranscript{"en": segments(long)},
	}

	text, err := newTestFetcher(videos, http.DefaultClient, 20000).Fetch(context.Background(), "vid00000001")
	if err != nil {
		t.Fatalf("Expected secondary language to succeed, got %v", err)
	}
	if n := utf8.RuneCountInString(text); n != 20000 {
		t.Errorf("Expected exactly 20000 characters, got %d", n)
	}
	if text != long[:len(text)] {
		t.Error("Expected a prefix of the original text")
	}
	if videos.videoCalls != 2 {
		t.Errorf("Expected 2 attempts, got %d", videos.videoCalls)
	}
}

func TestFetcher_FetchRetriesAfterFailure(t *testing.T) {
	videos := &fakeVideos{
		tracks:      []youtube.CaptionTrack{{LanguageCode: "ja"}},
		transcripts: map[string]youtube.VideoTranscript{"ja": segments("再試行")},
		videoErrs:   1,
	}

	text, err := newTestFetcher(videos, http.DefaultClient, 100).Fetch(context.Background(), "vid00000001")
	if err != nil {
		t.Fatal(err)
	}
	if text != "再試行" {
		t.Errorf("Expected text from second attempt, got '%s'", text)
	}
	if videos.videoCalls != 2 {
		t.Errorf("Expected 2 video lookups, got %d", videos.videoCalls)
	}
}

func TestFetcher_FetchFallsBackToCaptionTrack(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		if r.URL.Query().Get("lang") != "ja" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(`<?xml version="1.0" encoding="utf-8" ?><transcript><text start="0" dur="1.2">ドル円は</text><text start="1.2" dur="2">  上昇 &amp;amp; 反落  </text><text start="3" dur="1"></text></transcript>`))
	}))
	defer server.Close()

	videos := &fakeVideos{
		tracks: []youtube.CaptionTrack{{LanguageCode: "ja", Kind: "asr", BaseURL: server.URL + "/timedtext?lang=ja"}},
	}

	text, err := newTestFetcher(videos, server.Client(), 20000).Fetch(context.Background(), "vid00000001")
	if err != nil {
		t.Fatal(err)
	}
	if text != "ドル円は 上昇 & 反落" {
		t.Errorf("Expected joined and unescaped text, got '%s'", text)
	}
	if gotUA != "TestAgent/1.0" {
		t.Errorf("Expected user agent on timedtext request, got '%s'", gotUA)
	}
}

func TestFetcher_FetchUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/blank" {
			w.Write([]byte(`<transcript><text>   </text></transcript>`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	tests := []struct {
		name   string
		videos *fakeVideos
	}{
		{"no caption tracks", &fakeVideos{}},
		{"unacceptable language only", &fakeVideos{
			tracks:      []youtube.CaptionTrack{{LanguageCode: "de"}},
			transcripts: map[string]youtube.VideoTranscript{"de": segments("Dollar")},
		}},
		{"empty transcript", &fakeVideos{
			tracks:      []youtube.CaptionTrack{{LanguageCode: "ja"}},
			transcripts: map[string]youtube.VideoTranscript{"ja": segments(" ", "")},
		}},
		{"blank caption track", &fakeVideos{
			tracks: []youtube.CaptionTrack{{LanguageCode: "ja", BaseURL: server.URL + "/blank"}},
		}},
		{"caption track missing", &fakeVideos{
			tracks: []youtube.CaptionTrack{{LanguageCode: "en", BaseURL: server.URL + "/missing"}},
		}},
		{"video lookup keeps failing", &fakeVideos{videoErrs: 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, err := newTestFetcher(tt.videos, server.Client(), 100).Fetch(context.Background(), "vid00000001")
			if !errors.Is(err, ErrUnavailable) {
				t.Errorf("Expected ErrUnavailable, got %v", err)
			}
			if text != "" {
				t.Errorf("Expected no text, got '%s'", text)
			}
		})
	}
}

func TestFetcher_FetchCancelled(t *testing.T) {
	videos := &fakeVideos{videoErrs: 5}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := newTestFetcher(videos, http.DefaultClient, 100).Fetch(ctx, "vid00000001"); !errors.Is(err, ErrUnavailable) {
		t.Errorf("Expected ErrUnavailable, got %v", err)
	}
	if videos.videoCalls != 1 {
		t.Errorf("Expected no second attempt after cancellation, got %d lookups", videos.videoCalls)
	}
}

func TestPickTrack(t *testing.T) {
	tracks := []youtube.CaptionTrack{
		{BaseURL: "ja-asr", LanguageCode: "ja", Kind: "asr"},
		{BaseURL: "en", LanguageCode: "en"},
		{BaseURL: "ja-manual", LanguageCode: "ja-JP"},
	}

	track, ok := pickTrack(tracks, []language.Tag{language.Japanese, language.English})
	if !ok || track.BaseURL != "ja-manual" {
		t.Errorf("Expected manual Japanese track, got %+v", track)
	}

	track, ok = pickTrack(tracks[:2], []language.Tag{language.Japanese})
	if !ok || track.BaseURL != "ja-asr" {
		t.Errorf("Expected auto-generated Japanese track, got %+v", track)
	}

	track, ok = pickTrack(tracks[1:2], []language.Tag{language.Japanese, language.English})
	if !ok || track.BaseURL != "en" {
		t.Errorf("Expected English track as second choice, got %+v", track)
	}

	if _, ok := pickTrack(tracks, []language.Tag{language.German}); ok {
		t.Error("Expected no track for German")
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		text     string
		maxChars int
		want     string
	}{
		{"abcdef", 3, "abc"},
		{"ドル円相場", 2, "ドル"},
		{"short", 10, "short"},
		{"exact", 5, "exact"},
		{"unbounded", 0, "unbounded"},
	}

	for _, tt := range tests {
		if got := Truncate(tt.text, tt.maxChars); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.text, tt.maxChars, got, tt.want)
		}
	}
}
