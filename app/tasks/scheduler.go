package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

// Scheduler runs batches on a cron schedule. At most one batch runs at a time.
type Scheduler struct {
	runner  *Runner
	cron    *cron.Cron
	running sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func NewScheduler(runner *Runner, schedule string, loc *time.Location) (*Scheduler, error) {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		runner: runner,
		cron:   cron.New(cron.WithLocation(loc)),
		ctx:    ctx,
		cancel: cancel,
	}

	if _, err := s.cron.AddFunc(schedule, s.tick); err != nil {
		cancel()
		return nil, fmt.Errorf("invalid schedule %q: %w", schedule, err)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	for _, entry := range s.cron.Entries() {
		slog.Info("Scheduler started", "next_run", entry.Next)
	}
}

// Stop halts the schedule, cancels a running batch and waits for it to return.
func (s *Scheduler) Stop() {
	stopped := s.cron.Stop()
	s.cancel()
	<-stopped.Done()
	s.wg.Wait()
}

// Trigger starts a batch in the background. It reports false when one is already running.
func (s *Scheduler) Trigger() bool {
	if !s.running.TryLock() {
		return false
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.running.Unlock()
		s.runner.Run(s.ctx)
	}()
	return true
}

func (s *Scheduler) tick() {
	if !s.running.TryLock() {
		slog.Warn("Previous run still in progress, skipping scheduled run")
		return
	}
	defer s.running.Unlock()

	s.runner.Run(s.ctx)
}
