// internal/app/transition_service.go
package app

import (
	"context"
	"fmt"
	"time"

	"review_cycle_service/internal/domain/cycle"
	"review_cycle_service/internal/domain/equalization"

	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc/panics"
)

// EvaluationLauncher is the part of EvaluationDispatcher the sweep depends on.
type EvaluationLauncher interface {
	Launch(ctx context.Context, cycleID int64) (*DispatchResult, error)
	LaunchLeaderCollaborator(ctx context.Context, cycleID int64) (*DispatchResult, error)
}

// TickReport summarises one sweep.
type TickReport struct {
	Now          time.Time
	Checked      int
	Transitioned int
	Failed       int
}

// TransitionSweeper moves every cycle to the phase dictated by the calendar and fires phase-entry side effects.
type TransitionSweeper struct {
	cycleRepo cycle.Repository
	launcher  EvaluationLauncher
	runner    TaskSubmitter
	equalizer equalization.Trigger
	clock     Clock
	logger    *logrus.Entry
}

func NewTransitionSweeper(
	cr cycle.Repository,
	launcher EvaluationLauncher,
	runner TaskSubmitter,
	equalizer equalization.Trigger,
	clock Clock,
	logger *logrus.Entry,
) *TransitionSweeper {
	return &TransitionSweeper{
		cycleRepo: cr,
		launcher:  launcher,
		runner:    runner,
		equalizer: equalizer,
		clock:     clock,
		logger:    logger.WithField("component", "transition_sweeper"),
	}
}

// Tick runs one sweep over all cycles. Cycles are processed one after another and a
// failure on one cycle never stops the others; only a failure to list cycles is returned.
func (s *TransitionSweeper) Tick(ctx context.Context) (*TickReport, error) {
	report := &TickReport{Now: s.clock.Now()}
	s.logger.WithField("now", report.Now.Format(time.RFC3339)).Info("Starting cycle transition sweep")

	cycles, err := s.cycleRepo.ListAll(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list cycles")
		return report, fmt.Errorf("failed to list cycles: %w", err)
	}

	for _, c := range cycles {
		report.Checked++

		var transitioned bool
		var advanceErr error
		recovered := panics.Try(func() {
			transitioned, advanceErr = s.advance(ctx, c, report.Now)
		})
		if recovered != nil {
			advanceErr = fmt.Errorf("cycle %d: %w", c.ID, recovered.AsError())
		}

		if transitioned {
			report.Transitioned++
		}
		if advanceErr != nil {
			report.Failed++
			s.logger.WithError(advanceErr).WithField("cycle_id", c.ID).Error("Cycle transition did not complete")
		}
	}

	s.logger.WithFields(logrus.Fields{
		"checked":      report.Checked,
		"transitioned": report.Transitioned,
		"failed":       report.Failed,
	}).Info("Cycle transition sweep finished")
	return report, nil
}

// advance persists the desired status when it differs from the stored one and then runs the entry side effect.
// The status write is never rolled back.
func (s *TransitionSweeper) advance(ctx context.Context, c *cycle.Cycle, now time.Time) (bool, error) {
	desired := cycle.DesiredStatus(c, now)
	if desired == c.Status {
		return false, nil
	}

	log := s.logger.WithFields(logrus.Fields{
		"cycle_id": c.ID,
		"cycle":    c.Name,
		"from":     c.Status,
		"to":       desired,
	})

	if err := s.cycleRepo.UpdateStatus(ctx, c.ID, desired); err != nil {
		return false, fmt.Errorf("failed to persist status %s for cycle %d: %w", desired, c.ID, err)
	}
	log.Info("Cycle status updated")

	if err := s.enterPhase(ctx, c.ID, desired); err != nil {
		sideErr := &SideEffectError{CycleID: c.ID, From: c.Status, To: desired, Err: err}
		log.WithError(err).Error("Phase entry side effect failed; it will not be retried automatically")
		return true, sideErr
	}
	return true, nil
}

func (s *TransitionSweeper) enterPhase(ctx context.Context, cycleID int64, status cycle.Status) error {
	switch status {
	case cycle.StatusInProgress:
		s.runner.Submit(ctx, TaskLaunchEvaluations, cycleID, func(ctx context.Context) error {
			_, err := s.launcher.Launch(ctx, cycleID)
			return err
		})
		return nil
	case cycle.StatusInReview:
		s.runner.Submit(ctx, TaskLaunchLeaderEvaluations, cycleID, func(ctx context.Context) error {
			_, err := s.launcher.LaunchLeaderCollaborator(ctx, cycleID)
			return err
		})
		return nil
	case cycle.StatusInEqualization:
		return s.equalizer.Create(ctx, cycleID)
	case cycle.StatusScheduled, cycle.StatusClosed:
		return nil
	default:
		return fmt.Errorf("no phase entry defined for status %q", status)
	}
}
