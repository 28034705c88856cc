package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Runner processes every enabled channel once, one after another.
type Runner struct {
	channels ChannelSource
	deps     Dependencies
	dryRun   bool

	mu   sync.RWMutex
	last *RunSummary
}

func NewRunner(channels ChannelSource, deps Dependencies, dryRun bool) *Runner {
	return &Runner{channels: channels, deps: deps, dryRun: dryRun}
}

// Run executes one batch. Channel failures end up in the summary; they never abort the batch.
func (r *Runner) Run(ctx context.Context) RunSummary {
	summary := RunSummary{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
		Skipped:   make(map[SkipReason]int),
	}
	logger := slog.With("run_id", summary.RunID)

	if err := r.channels.Run(); err != nil {
		logger.Error("Failed to reload channel configurations, using previous set", "error", err)
	}

	channelConfigs := r.channels.GetEnabledConfigs()
	logger.Info("Run started", "channels", len(channelConfigs), "dry_run", r.dryRun)

	for _, channelConfig := range channelConfigs {
		task := NewProcessChannelTask(channelConfig, r.deps, r.dryRun, logger)
		task.Start()
		summary.add(r.execute(ctx, task, logger))
	}

	summary.FinishedAt = time.Now().UTC()
	logger.Info("Run completed",
		"channels", summary.Channels,
		"recorded", summary.Recorded,
		"skipped", summary.Channels-summary.Recorded,
		"duration", summary.FinishedAt.Sub(summary.StartedAt))

	r.mu.Lock()
	r.last = &summary
	r.mu.Unlock()

	return summary
}

// execute contains a panic to the channel that raised it.
func (r *Runner) execute(ctx context.Context, task TaskInterface, logger *slog.Logger) (out Outcome) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("Task panicked", "channel", task.GetChannel(), "id", task.GetID(), "panic", rec, "stack", string(debug.Stack()))
			out = Outcome{
				Channel: task.GetChannel(),
				State:   StateSkip,
				Reason:  SkipPanic,
				Error:   fmt.Sprint(rec),
			}
		}
	}()

	return task.Execute(ctx)
}

// LastSummary returns the most recent completed run, if any.
func (r *Runner) LastSummary() (RunSummary, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.last == nil {
		return RunSummary{}, false
	}
	return *r.last, true
}
