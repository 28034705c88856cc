package tasks

import (
	"context"

	"github.com/lysyi3m/tube-comb/app/feed"
	"github.com/lysyi3m/tube-comb/app/resolver"
)

// TaskSchedulerInterface is what the daemon and the status API need from the scheduler.
//
//	scheduler, err := NewScheduler(runner, "0 7 * * *", loc)
//	scheduler.Start()
//	defer scheduler.Stop()
//	scheduler.Trigger()
type TaskSchedulerInterface interface {
	Start()
	Stop()
	Trigger() bool
}

// ChannelSource supplies the channel list; Run reloads it from disk.
type ChannelSource interface {
	Run() error
	GetEnabledConfigs() []*feed.Config
}

type ChannelResolver interface {
	Resolve(ctx context.Context, channelConfig *feed.Config) (resolver.Resolution, error)
}

type FeedFetcher interface {
	Fetch(ctx context.Context, channelKey, channelName string) ([]feed.Item, error)
}

type ItemSelector interface {
	Select(items []feed.Item, channelConfig *feed.Config) (feed.Item, bool)
}

type TranscriptFetcher interface {
	Fetch(ctx context.Context, videoID string) (string, error)
}
