package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/hotelops/roomboard/pkg/storage"
)

// Scheduler runs the periodic cleanup of generated files. Uploaded
// reports and projected sheets are transient artifacts; anything older
// than the retention window is removed on every tick.
type Scheduler struct {
	cron      *cron.Cron
	logger    *slog.Logger
	store     storage.Storage
	retention time.Duration
}

func NewScheduler(logger *slog.Logger, store storage.Storage, retention time.Duration) *Scheduler {
	cronLogger := cron.VerbosePrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))
	return &Scheduler{
		cron:      cron.New(cron.WithLogger(cronLogger)),
		logger:    logger,
		store:     store,
		retention: retention,
	}
}

// Start registers the cleanup job with the given cron schedule and
// starts the scheduler in its own goroutine.
func (s *Scheduler) Start(schedule string) error {
	_, err := s.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := s.RunNow(ctx); err != nil {
			s.logger.Error("storage cleanup failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to register cleanup job: %w", err)
	}

	s.cron.Start()
	s.logger.Info("cleanup scheduler started", "schedule", schedule, "retention", s.retention)
	return nil
}

// RunNow performs one cleanup pass immediately.
func (s *Scheduler) RunNow(ctx context.Context) error {
	cutoff := time.Now().Add(-s.retention)
	removed, err := s.store.RemoveOlderThan(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to remove expired files: %w", err)
	}
	if removed > 0 {
		s.logger.Info("removed expired files", "count", removed, "cutoff", cutoff)
	}
	return nil
}

// Stop halts the scheduler and waits for any running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("cleanup scheduler stopped")
}
