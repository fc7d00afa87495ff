package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// foreignKeyViolation is the SQLSTATE Postgres reports when the referenced cycle does not exist.
const foreignKeyViolation = pq.ErrorCode("23503")

// PostgresEqualizationRepository creates the single equalization record of a cycle.
type PostgresEqualizationRepository struct {
	db *sql.DB
}

func NewPostgresEqualizationRepository(db *sql.DB) *PostgresEqualizationRepository {
	return &PostgresEqualizationRepository{db: db}
}

// Create inserts the equalization record for cycleID. A second call for the same cycle is a no-op.
func (r *PostgresEqualizationRepository) Create(ctx context.Context, cycleID int64) error {
	query := `INSERT INTO equalizations (cycle_id) VALUES ($1)
               ON CONFLICT (cycle_id) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, cycleID); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == foreignKeyViolation {
			return ErrCycleNotFound
		}
		return fmt.Errorf("error creating equalization record: %w", err)
	}
	return nil
}
