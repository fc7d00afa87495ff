// internal/domain/equalization/trigger.go
package equalization

import "context"

// Trigger creates the equalization record for a cycle. The record's content is owned elsewhere.
// Implementations must not create a second record for the same cycle.
type Trigger interface {
	Create(ctx context.Context, cycleID int64) error
}
