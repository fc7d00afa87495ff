package evaluation

import "context"

// Repository persists generated evaluations. Records are never updated or deleted by the lifecycle core.
type Repository interface {
	// Count returns how many evaluations exist for the cycle, restricted to types when any are given.
	Count(ctx context.Context, cycleID int64, types ...Type) (int, error)
	// CountByType returns per-type evaluation counts for each of the given cycles in one round trip.
	// Cycles or types without evaluations are absent from the result.
	CountByType(ctx context.Context, cycleIDs ...int64) (map[int64]map[Type]int, error)
	// BulkInsert writes all records in one atomic batch and returns the number inserted.
	BulkInsert(ctx context.Context, records []*Evaluation) (int, error)
}
