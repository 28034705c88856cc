package tasks

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/lysyi3m/tube-comb/app/database"
	"github.com/lysyi3m/tube-comb/app/feed"
	"github.com/lysyi3m/tube-comb/app/notify"
	"github.com/lysyi3m/tube-comb/app/report"
	"github.com/lysyi3m/tube-comb/app/resolver"
	"github.com/lysyi3m/tube-comb/app/transcript"
)

type fakeChannels struct {
	configs []*feed.Config
	err     error
}

func (f *fakeChannels) Run() error { return f.err }

func (f *fakeChannels) GetEnabledConfigs() []*feed.Config { return f.configs }

type fakeResolver struct {
	err   error
	calls int
}

func (f *fakeResolver) Resolve(_ context.Context, _ *feed.Config) (resolver.Resolution, error) {
	f.calls++
	if f.err != nil {
		return resolver.Resolution{}, f.err
	}
	return resolver.Resolution{Key: "UCabcdefghijklmnopqrstuv", Strategy: "page"}, nil
}

type fakeFetcher struct {
	mu      sync.Mutex
	items   map[string][]feed.Item // by channel name
	err     error
	panicOn string
	started chan struct{}
	block   chan struct{}
	calls   int
}

func (f *fakeFetcher) Fetch(_ context.Context, _, channelName string) ([]feed.Item, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
	if channelName == f.panicOn {
		panic("feed exploded")
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.items[channelName], nil
}

type fakeTranscripts struct {
	err   error
	calls int
}

func (f *fakeTranscripts) Fetch(_ context.Context, videoID string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return "transcript of " + videoID, nil
}

type fakeGenerator struct {
	err   error
	facts []report.Facts
}

func (f *fakeGenerator) Generate(_ context.Context, facts report.Facts) (string, error) {
	f.facts = append(f.facts, facts)
	if f.err != nil {
		return "", f.err
	}
	return "report: " + facts.Title, nil
}

type fakeNotifier struct {
	err       error
	texts     []string
	delivered func() // runs after a successful delivery
}

func (f *fakeNotifier) Notify(_ context.Context, text string) error {
	f.texts = append(f.texts, text)
	if f.err == nil && f.delivered != nil {
		f.delivered()
	}
	return f.err
}

// countingLog counts Record calls on top of a real file log. Like the SQL backends, it
// refuses to write under a cancelled context.
type countingLog struct {
	database.ProcessedLog
	records map[string]int
}

func (l *countingLog) Record(ctx context.Context, id, channel string) error {
	l.records[id]++
	if err := ctx.Err(); err != nil {
		return err
	}
	return l.ProcessedLog.Record(ctx, id, channel)
}

type fixture struct {
	resolver    *fakeResolver
	fetcher     *fakeFetcher
	transcripts *fakeTranscripts
	generator   *fakeGenerator
	notifier    *fakeNotifier
	processed   *countingLog
	logPath     string
}

func newFixture(t *testing.T, items ...feed.Item) *fixture {
	t.Helper()

	logPath := filepath.Join(t.TempDir(), "processed_videos.txt")
	log, err := database.OpenFileLog(logPath)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { log.Close() })

	return &fixture{
		resolver:    &fakeResolver{},
		fetcher:     &fakeFetcher{items: map[string][]feed.Item{"FX Channel": items}},
		transcripts: &fakeTranscripts{},
		generator:   &fakeGenerator{},
		notifier:    &fakeNotifier{},
		processed:   &countingLog{ProcessedLog: log, records: make(map[string]int)},
		logPath:     logPath,
	}
}

func (f *fixture) deps() Dependencies {
	return Dependencies{
		Resolver:    f.resolver,
		Fetcher:     f.fetcher,
		Selector:    feed.NewFilterer(),
		Transcripts: f.transcripts,
		Generator:   f.generator,
		Notifier:    f.notifier,
		Processed:   f.processed,
	}
}

func channelConfig(id, name string) *feed.Config {
	return &feed.Config{
		ID:        id,
		Name:      name,
		Reference: "@" + id,
		Policy:    feed.Policy{Type: feed.PolicyLatest},
		Markers:   feed.DefaultMarkers,
	}
}

func video(id, title string) feed.Item {
	return feed.Item{
		ID:          id,
		Title:       title,
		Link:        "https://youtu.be/" + id,
		Channel:     "FX Channel",
		PublishedAt: time.Date(2026, 10, 16, 10, 0, 0, 0, time.UTC),
	}
}

var (
	errResolve    = errors.Join(resolver.ErrNotFound, errors.New("all strategies missed"))
	errFetch      = errors.Join(feed.ErrFetch, errors.New("HTTP error: 500"))
	errTranscript = errors.Join(transcript.ErrUnavailable, errors.New("no caption tracks"))
	errGenerate   = errors.Join(report.ErrGeneration, errors.New("quota exceeded"))
	errDeliver    = errors.Join(notify.ErrDelivery, errors.New("LINE push: 401"))
)
