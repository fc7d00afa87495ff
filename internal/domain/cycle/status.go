// internal/domain/cycle/status.go
package cycle

import "fmt"

// Status is the lifecycle phase stored on a review cycle.
// Only the values declared below are valid; use ParseStatus for anything read from outside.
type Status string

const (
	StatusScheduled      Status = "SCHEDULED"
	StatusInProgress     Status = "IN_PROGRESS"
	StatusInReview       Status = "IN_REVIEW"
	StatusInEqualization Status = "IN_EQUALIZATION"
	StatusClosed         Status = "CLOSED"
)

// Statuses lists every phase in lifecycle order.
var Statuses = []Status{
	StatusScheduled,
	StatusInProgress,
	StatusInReview,
	StatusInEqualization,
	StatusClosed,
}

// Valid reports whether s is one of the declared phases.
func (s Status) Valid() bool {
	switch s {
	case StatusScheduled, StatusInProgress, StatusInReview, StatusInEqualization, StatusClosed:
		return true
	default:
		return false
	}
}

func (s Status) String() string {
	return string(s)
}

// ParseStatus converts a stored value into a Status.
func ParseStatus(v string) (Status, error) {
	s := Status(v)
	if !s.Valid() {
		return "", fmt.Errorf("unknown cycle status %q", v)
	}
	return s, nil
}
