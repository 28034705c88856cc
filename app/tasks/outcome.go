package tasks

import (
	"time"
)

type State string

const (
	StateResolving          State = "resolving"
	StateFetching           State = "fetching"
	StateClassifying        State = "classifying"
	StateDedupCheck         State = "dedup_check"
	StateTranscriptFetching State = "transcript_fetching"
	StateGenerating         State = "generating"
	StateDelivering         State = "delivering"
	StateRecording          State = "recording"
	StateRecorded           State = "recorded"
	StateSkip               State = "skip"
)

type SkipReason string

const (
	SkipResolutionFailure  SkipReason = "resolution_failure"
	SkipFetchFailure       SkipReason = "fetch_failure"
	SkipEmptyFeed          SkipReason = "empty_feed"
	SkipNoMatch            SkipReason = "no_match"
	SkipAlreadyProcessed   SkipReason = "already_processed"
	SkipContentUnavailable SkipReason = "content_unavailable"
	SkipGenerationFailure  SkipReason = "generation_failure"
	SkipDeliveryFailure    SkipReason = "delivery_failure"
	SkipRecordFailure      SkipReason = "record_failure" // delivered, will be delivered again next run
	SkipDryRun             SkipReason = "dry_run"
	SkipCancelled          SkipReason = "cancelled"
	SkipPanic              SkipReason = "panic"
)

// Outcome is how one channel's pass through the pipeline ended.
type Outcome struct {
	Channel   string     `json:"channel"`
	State     State      `json:"state"`
	SkippedAt State      `json:"skipped_at,omitempty"`
	Reason    SkipReason `json:"reason,omitempty"`
	Strategy  string     `json:"strategy,omitempty"`
	VideoID   string     `json:"video_id,omitempty"`
	Title     string     `json:"title,omitempty"`
	Error     string     `json:"error,omitempty"`
}

func (o Outcome) Recorded() bool {
	return o.State == StateRecorded
}

type RunSummary struct {
	RunID      string             `json:"run_id"`
	StartedAt  time.Time          `json:"started_at"`
	FinishedAt time.Time          `json:"finished_at"`
	Channels   int                `json:"channels"`
	Recorded   int                `json:"recorded"`
	Skipped    map[SkipReason]int `json:"skipped"`
	Outcomes   []Outcome          `json:"outcomes"`
}

func (s *RunSummary) add(o Outcome) {
	s.Channels++
	s.Outcomes = append(s.Outcomes, o)
	if o.Recorded() {
		s.Recorded++
		return
	}
	if s.Skipped == nil {
		s.Skipped = make(map[SkipReason]int)
	}
	s.Skipped[o.Reason]++
}
