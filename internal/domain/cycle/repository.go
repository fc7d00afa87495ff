package cycle

import "context"

// Repository defines the persistence operations the lifecycle core needs for cycles.
// Creating, editing and deleting cycles belongs to the cycle-management service.
type Repository interface {
	ListAll(ctx context.Context) ([]*Cycle, error)
	GetByID(ctx context.Context, id int64) (*Cycle, error)
	// UpdateStatus is a plain single-row write; concurrent edits resolve last-write-wins.
	UpdateStatus(ctx context.Context, id int64, status Status) error
}
