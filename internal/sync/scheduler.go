package sync

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/akolanti/DocsBot/pkg/logger_i"
)

// Scheduler drives the engine on a fixed interval. On-demand syncs go
// through Trigger and share the engine's own serialization, so a manual
// trigger overlapping the timer is safe.
type Scheduler struct {
	engine    *Engine
	scheduler *gocron.Scheduler
	interval  time.Duration
	logger    *logger_i.Logger
}

func NewScheduler(engine *Engine, interval time.Duration) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	s.TagsUnique()
	return &Scheduler{
		engine:    engine,
		scheduler: s,
		interval:  interval,
		logger:    logger_i.NewLogger("SyncScheduler"),
	}
}

// Start registers the periodic job and runs the first sync immediately so
// the index is populated before traffic arrives. The initial run's error is
// returned so the caller can decide whether to boot without an index.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.scheduler.Every(s.interval).Tag("document-sync").Do(func() {
		if err := s.engine.RunOnce(ctx); err != nil {
			s.logger.Warn("Scheduled sync failed, will retry next interval", "err", err)
		}
	})
	if err != nil {
		return err
	}

	firstRunErr := s.engine.RunOnce(ctx)
	s.scheduler.StartAsync()
	s.logger.Info("Sync scheduler started", "interval", s.interval.String())
	return firstRunErr
}

// Trigger runs one sync cycle outside the schedule.
func (s *Scheduler) Trigger(ctx context.Context) error {
	return s.engine.RunOnce(ctx)
}

func (s *Scheduler) Stop() {
	s.scheduler.Stop()
	s.logger.Info("Sync scheduler stopped")
}
