package scheduler

import (
	"context"
	"fmt"

	"github.com/jonboulle/clockwork"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler drives the periodic epoch finalization and expiry sweep jobs.
// Both jobs are idempotent, so overlapping or re-run invocations are safe.
type Scheduler struct {
	logs      *zap.SugaredLogger
	cron      *cron.Cron
	clock     clockwork.Clock
	finalizer Finalizer
	sweeper   Sweeper
}

func New(logs *zap.SugaredLogger, finalizer Finalizer, sweeper Sweeper, clock clockwork.Clock) *Scheduler {
	return &Scheduler{
		logs:      logs,
		cron:      cron.New(),
		clock:     clock,
		finalizer: finalizer,
		sweeper:   sweeper,
	}
}

func (s *Scheduler) Start(finalizeSpec, sweepSpec string) error {
	if _, err := s.cron.AddFunc(finalizeSpec, s.runFinalize); err != nil {
		return fmt.Errorf("schedule finalize job: %w", err)
	}
	if _, err := s.cron.AddFunc(sweepSpec, s.runSweep); err != nil {
		return fmt.Errorf("schedule sweep job: %w", err)
	}

	s.cron.Start()
	s.logs.Infow("scheduler started",
		"finalize_cron", finalizeSpec,
		"sweep_cron", sweepSpec)
	return nil
}

func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logs.Infow("scheduler stopped")
}

func (s *Scheduler) runFinalize() {
	now := s.clock.Now().UTC()
	if err := s.finalizer.FinalizeDue(context.Background(), now); err != nil {
		s.logs.Errorw("finalize run failed", "error", err)
		return
	}
	s.logs.Infow("finalize run completed", "as_of", now)
}

func (s *Scheduler) runSweep() {
	now := s.clock.Now().UTC()
	if err := s.sweeper.SweepExpired(context.Background(), now); err != nil {
		s.logs.Errorw("sweep run failed", "error", err)
		return
	}
	s.logs.Infow("sweep run completed", "as_of", now)
}
