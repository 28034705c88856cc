package tasks

import (
	"context"
	"log/slog"

	"github.com/lysyi3m/tube-comb/app/database"
	"github.com/lysyi3m/tube-comb/app/feed"
	"github.com/lysyi3m/tube-comb/app/notify"
	"github.com/lysyi3m/tube-comb/app/report"
)

// ProcessChannelTask walks one channel through resolve, fetch, classify, dedup check,
// transcript, generation, delivery and record. Any step may end the pass with a skip.
// Only a delivered report causes a record.
type ProcessChannelTask struct {
	Task
	ChannelConfig *feed.Config
	deps          Dependencies
	dryRun        bool
	logger        *slog.Logger
}

func NewProcessChannelTask(channelConfig *feed.Config, deps Dependencies, dryRun bool, logger *slog.Logger) *ProcessChannelTask {
	return &ProcessChannelTask{
		Task:          NewTask(TaskTypeProcessChannel, channelConfig.ID),
		ChannelConfig: channelConfig,
		deps:          deps,
		dryRun:        dryRun,
		logger:        logger.With("channel", channelConfig.ID),
	}
}

func (t *ProcessChannelTask) Execute(ctx context.Context) Outcome {
	out := Outcome{Channel: t.Channel}

	if ctx.Err() != nil {
		return t.skip(out, StateResolving, SkipCancelled, ctx.Err())
	}

	resolution, err := t.deps.Resolver.Resolve(ctx, t.ChannelConfig)
	if err != nil {
		return t.skip(out, StateResolving, SkipResolutionFailure, err)
	}
	out.Strategy = resolution.Strategy
	t.logger.Debug("Channel resolved", "key", resolution.Key, "strategy", resolution.Strategy)

	items, err := t.deps.Fetcher.Fetch(ctx, resolution.Key, t.ChannelConfig.Name)
	if err != nil {
		return t.skip(out, StateFetching, SkipFetchFailure, err)
	}
	if len(items) == 0 {
		return t.skip(out, StateFetching, SkipEmptyFeed, nil)
	}

	item, ok := t.deps.Selector.Select(items, t.ChannelConfig)
	if !ok {
		return t.skip(out, StateClassifying, SkipNoMatch, nil)
	}
	out.VideoID = item.ID
	out.Title = item.Title

	if t.deps.Processed.Contains(item.ID) {
		return t.skip(out, StateDedupCheck, SkipAlreadyProcessed, nil)
	}

	text, err := t.deps.Transcripts.Fetch(ctx, item.ID)
	if err != nil {
		return t.skip(out, StateTranscriptFetching, SkipContentUnavailable, err)
	}

	reportText, err := t.deps.Generator.Generate(ctx, report.Facts{
		Channel:     t.ChannelConfig.Name,
		Title:       item.Title,
		Link:        item.Link,
		PublishedAt: item.PublishedAt,
		Transcript:  text,
	})
	if err != nil {
		return t.skip(out, StateGenerating, SkipGenerationFailure, err)
	}

	if t.dryRun {
		t.logger.Info("Dry run, report not delivered", "video_id", item.ID, "report", reportText)
		return t.skip(out, StateDelivering, SkipDryRun, nil)
	}

	if err := t.deps.Notifier.Notify(ctx, reportText); err != nil {
		return t.skip(out, StateDelivering, SkipDeliveryFailure, err)
	}

	// A delivered report is recorded even when the run is being cancelled.
	if err := t.deps.Processed.Record(context.WithoutCancel(ctx), item.ID, t.ChannelConfig.Name); err != nil {
		return t.skip(out, StateRecording, SkipRecordFailure, err)
	}

	out.State = StateRecorded
	t.logger.Info("Task completed",
		"type", string(t.Type),
		"video_id", item.ID,
		"title", item.Title,
		"strategy", out.Strategy,
		"duration", t.GetDuration())

	return out
}

func (t *ProcessChannelTask) skip(out Outcome, at State, reason SkipReason, err error) Outcome {
	out.State = StateSkip
	out.SkippedAt = at
	out.Reason = reason

	attrs := []any{"reason", string(reason), "state", string(at)}
	if out.VideoID != "" {
		attrs = append(attrs, "video_id", out.VideoID)
	}
	if err != nil {
		out.Error = err.Error()
		attrs = append(attrs, "error", err)
	}

	switch reason {
	case SkipGenerationFailure, SkipDeliveryFailure, SkipRecordFailure:
		t.logger.Error("Channel skipped", attrs...)
	case SkipAlreadyProcessed:
		t.logger.Debug("Channel skipped", attrs...)
	default:
		t.logger.Info("Channel skipped", attrs...)
	}
	return out
}

// Dependencies are the collaborators one channel pass needs.
type Dependencies struct {
	Resolver    ChannelResolver
	Fetcher     FeedFetcher
	Selector    ItemSelector
	Transcripts TranscriptFetcher
	Generator   report.Generator
	Notifier    notify.Notifier
	Processed   database.ProcessedLog
}
