package tasks

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type TaskType string

const (
	TaskTypeProcessChannel TaskType = "process_channel"
)

type TaskInterface interface {
	Execute(ctx context.Context) Outcome
	GetID() string
	GetType() TaskType
	GetChannel() string
	Start()
	GetDuration() time.Duration
}

type Task struct {
	ID        string
	Type      TaskType
	Channel   string
	StartedAt *time.Time
}

func (t *Task) GetID() string {
	return t.ID
}

func (t *Task) GetType() TaskType {
	return t.Type
}

func (t *Task) GetChannel() string {
	return t.Channel
}

func (t *Task) Start() {
	now := time.Now()
	t.StartedAt = &now
}

func (t *Task) GetDuration() time.Duration {
	if t.StartedAt == nil {
		return 0
	}
	return time.Since(*t.StartedAt)
}

func NewTask(taskType TaskType, channel string) Task {
	return Task{
		ID:      uuid.NewString(),
		Type:    taskType,
		Channel: channel,
	}
}
