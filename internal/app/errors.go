// internal/app/errors.go
package app

import (
	"fmt"

	"review_cycle_service/internal/domain/cycle"
)

// Application-level errors returned by the lifecycle services.
var ErrCycleNotFound = fmt.Errorf("review cycle not found")
var ErrEvaluationsAlreadyLaunched = fmt.Errorf("evaluations already launched for this cycle")
var ErrAdminNotAuthorized = fmt.Errorf("performing user is not authorized as an admin")

// SideEffectError reports a phase-entry side effect that failed after the status change was persisted.
// The status is not rolled back and the side effect is not retried by later sweeps.
type SideEffectError struct {
	CycleID int64
	From    cycle.Status
	To      cycle.Status
	Err     error
}

func (e *SideEffectError) Error() string {
	return fmt.Sprintf("side effect for cycle %d (%s -> %s) failed: %v", e.CycleID, e.From, e.To, e.Err)
}

func (e *SideEffectError) Unwrap() error {
	return e.Err
}
