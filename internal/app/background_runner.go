// internal/app/background_runner.go
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"
)

// TaskKind names the kind of work a background task performs.
type TaskKind string

const (
	TaskLaunchEvaluations       TaskKind = "launch_evaluations"
	TaskLaunchLeaderEvaluations TaskKind = "launch_leader_evaluations"
)

// Task describes a submitted background task.
type Task struct {
	ID          string
	Kind        TaskKind
	CycleID     int64
	SubmittedAt time.Time
}

// Accepted is returned to callers that submit work: the task is queued, not finished.
type Accepted struct {
	TaskID  string
	CycleID int64
	Kind    TaskKind
}

type TaskFunc func(ctx context.Context) error

// ErrorHandler receives every error (including recovered panics) raised by a background task.
type ErrorHandler func(task Task, err error)

// TaskSubmitter runs work detached from the caller.
type TaskSubmitter interface {
	Submit(ctx context.Context, kind TaskKind, cycleID int64, fn TaskFunc) Accepted
}

// BackgroundRunner executes tasks on supervised goroutines.
// The caller's context values are kept but its cancellation is not propagated.
type BackgroundRunner struct {
	wg      conc.WaitGroup
	clock   Clock
	logger  *logrus.Entry
	onError ErrorHandler
}

func NewBackgroundRunner(logger *logrus.Entry, clock Clock, onError ErrorHandler) *BackgroundRunner {
	return &BackgroundRunner{
		clock:   clock,
		logger:  logger.WithField("component", "background_runner"),
		onError: onError,
	}
}

// Submit starts fn in the background and returns immediately.
func (r *BackgroundRunner) Submit(ctx context.Context, kind TaskKind, cycleID int64, fn TaskFunc) Accepted {
	task := Task{
		ID:          uuid.NewString(),
		Kind:        kind,
		CycleID:     cycleID,
		SubmittedAt: r.clock.Now(),
	}
	taskCtx := context.WithoutCancel(ctx)

	r.logger.WithFields(logrus.Fields{
		"task_id":  task.ID,
		"kind":     task.Kind,
		"cycle_id": task.CycleID,
	}).Info("Background task submitted")

	r.wg.Go(func() {
		r.run(taskCtx, task, fn)
	})

	return Accepted{TaskID: task.ID, CycleID: cycleID, Kind: kind}
}

func (r *BackgroundRunner) run(ctx context.Context, task Task, fn TaskFunc) {
	taskLogger := r.logger.WithFields(logrus.Fields{
		"task_id":  task.ID,
		"kind":     task.Kind,
		"cycle_id": task.CycleID,
	})

	var err error
	var catcher panics.Catcher
	catcher.Try(func() {
		err = fn(ctx)
	})
	if recovered := catcher.Recovered(); recovered != nil {
		err = fmt.Errorf("background task panicked: %w", recovered.AsError())
	}

	elapsed := r.clock.Now().Sub(task.SubmittedAt)
	if err != nil {
		taskLogger.WithError(err).WithField("elapsed", elapsed.String()).Error("Background task failed")
		if r.onError != nil {
			r.onError(task, err)
		}
		return
	}
	taskLogger.WithField("elapsed", elapsed.String()).Info("Background task completed")
}

// Wait blocks until every submitted task has finished.
func (r *BackgroundRunner) Wait() {
	r.wg.Wait()
}

// Alerter forwards operator-facing messages, e.g. to the admin chat.
type Alerter interface {
	Alert(ctx context.Context, text string) error
}

// NewAlertingErrorHandler forwards background failures to alerter.
// Conflicts are expected when a launch is repeated and are only logged.
func NewAlertingErrorHandler(alerter Alerter, logger *logrus.Entry) ErrorHandler {
	return func(task Task, err error) {
		if errors.Is(err, ErrEvaluationsAlreadyLaunched) {
			logger.WithField("cycle_id", task.CycleID).Warn("Evaluations were already launched; nothing to alert")
			return
		}
		text := fmt.Sprintf("Task %s for cycle %d failed: %v", task.Kind, task.CycleID, err)
		if alertErr := alerter.Alert(context.Background(), text); alertErr != nil {
			logger.WithError(alertErr).WithField("cycle_id", task.CycleID).Error("Failed to send failure alert")
		}
	}
}
