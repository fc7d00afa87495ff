package scheduler

import (
	"context"
	"fmt"
	"time"

	"review_cycle_service/internal/app" // For Sweeper interface

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// CycleScheduler owns the cron timer that triggers the cycle transition sweep.
// It assumes it is the only scheduler instance running against the database.
type CycleScheduler struct {
	cronEngine    *cron.Cron
	sweeper       app.Sweeper
	logger        *logrus.Entry
	cronSpecSweep string
	sweepTimeout  time.Duration
}

func NewCycleScheduler(
	sweeper app.Sweeper,
	logger *logrus.Entry,
	cronSpecSweep string, // e.g., "0 6 * * *" (06:00 daily)
	location *time.Location,
	sweepTimeout time.Duration,
) *CycleScheduler {
	cronLogger := cron.PrintfLogger(logger.WithField("component", "cron"))
	return &CycleScheduler{
		cronEngine: cron.New(
			cron.WithLocation(location),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		sweeper:       sweeper,
		logger:        logger.WithField("component", "scheduler"),
		cronSpecSweep: cronSpecSweep,
		sweepTimeout:  sweepTimeout,
	}
}

// Start registers the sweep job and starts the cron engine.
func (s *CycleScheduler) Start() error {
	s.logger.Info("Starting cycle scheduler...")

	if _, err := s.cronEngine.AddFunc(s.cronSpecSweep, func() {
		s.logger.Info("Cron job triggered for cycle transition sweep.")
		s.RunSweep()
	}); err != nil {
		return fmt.Errorf("could not add cycle sweep cron job %q: %w", s.cronSpecSweep, err)
	}

	s.cronEngine.Start()
	s.logger.WithField("spec", s.cronSpecSweep).Info("Cycle scheduler started.")
	return nil
}

// RunSweep executes one sweep with the configured timeout. It is what the cron job calls.
func (s *CycleScheduler) RunSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), s.sweepTimeout)
	defer cancel()

	report, err := s.sweeper.Tick(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Cycle transition sweep failed")
		return
	}
	s.logger.WithFields(logrus.Fields{
		"checked":      report.Checked,
		"transitioned": report.Transitioned,
		"failed":       report.Failed,
	}).Info("Cycle transition sweep completed")
}

func (s *CycleScheduler) Stop() {
	s.logger.Info("Stopping cycle scheduler...")
	ctx := s.cronEngine.Stop() // Stops the scheduler from adding new jobs, waits for running jobs.
	<-ctx.Done()
	s.logger.Info("Cycle scheduler gracefully stopped.")
}
