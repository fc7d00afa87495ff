// internal/domain/cycle/cycle.go
package cycle

import "time"

// Cycle is a bounded period of review activity.
// Corresponds to the 'review_cycles' table.
type Cycle struct {
	ID               int64
	Name             string
	StartDate        time.Time // DATE in DB
	EndDate          time.Time // DATE in DB
	InProgressDays   int
	ReviewDays       int
	EqualizationDays int
	Status           Status
	UpdatedAt        time.Time
}
