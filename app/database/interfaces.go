package database

import (
	"context"
	"time"
)

// ProcessedLog is the durable set of video ids that already produced a delivered report.
// Ids are only ever added.
type ProcessedLog interface {
	Contains(id string) bool
	Record(ctx context.Context, id, channel string) error
	Count() int
	Recorded(ctx context.Context, limit int) ([]Entry, error)
	Close() error
}

type Entry struct {
	ItemID     string     `json:"item_id"`
	Channel    string     `json:"channel,omitempty"`
	RecordedAt *time.Time `json:"recorded_at,omitempty"` // nil for the file backend
}
