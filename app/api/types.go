package api

import (
	"time"

	"github.com/lysyi3m/tube-comb/app/database"
	"github.com/lysyi3m/tube-comb/app/feed"
	"github.com/lysyi3m/tube-comb/app/tasks"
)

type SummarySource interface {
	LastSummary() (tasks.RunSummary, bool)
}

type RunTrigger interface {
	Trigger() bool
}

var (
	_ SummarySource = (*tasks.Runner)(nil)
	_ RunTrigger    = (*tasks.Scheduler)(nil)
)

type Handler struct {
	configCache *feed.ConfigCache
	processed   database.ProcessedLog
	summaries   SummarySource
	trigger     RunTrigger
	version     string
	startedAt   time.Time
}
