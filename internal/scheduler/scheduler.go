package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"
)

// Recomputer refreshes every user's overall score
type Recomputer interface {
	RecomputeAll(ctx context.Context) error
}

// Scheduler manages scheduled tasks for the application
type Scheduler struct {
	scheduler  *gocron.Scheduler
	recomputer Recomputer
	interval   time.Duration
	logger     logrus.FieldLogger
}

// New creates a new scheduler instance. A zero interval disables the
// periodic recompute.
func New(recomputer Recomputer, interval time.Duration, logger logrus.FieldLogger) *Scheduler {
	return &Scheduler{
		scheduler:  gocron.NewScheduler(time.UTC),
		recomputer: recomputer,
		interval:   interval,
		logger:     logger,
	}
}

// Start schedules the recompute job and runs it once immediately. Runs never
// overlap; ctx bounds every run.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.interval <= 0 {
		s.logger.Info("score recompute schedule disabled")
		return nil
	}
	_, err := s.scheduler.Every(s.interval).SingletonMode().Do(s.RunNow, ctx)
	if err != nil {
		return fmt.Errorf("failed to schedule score recompute: %w", err)
	}

	s.scheduler.StartAsync()
	s.logger.WithField("interval", s.interval.String()).Info("score recompute scheduled")
	return nil
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// RunNow recomputes all scores once
func (s *Scheduler) RunNow(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	start := time.Now()
	if err := s.recomputer.RecomputeAll(ctx); err != nil {
		s.logger.WithError(err).Error("scheduled score recompute failed")
		return
	}
	s.logger.WithField("duration", time.Since(start).String()).Debug("scheduled score recompute finished")
}
