// internal/infra/database/postgres_cycle_repository.go
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"review_cycle_service/internal/domain/cycle"

	"github.com/sirupsen/logrus"
)

// Custom errors specific to cycle repository
var (
	ErrCycleNotFound      = fmt.Errorf("review cycle not found")
	ErrInvalidCycleStatus = fmt.Errorf("invalid stored cycle status")
)

const cycleColumns = `id, name, start_date, end_date, in_progress_days, review_days, equalization_days, status, updated_at`

type PostgresCycleRepository struct {
	db     *sql.DB
	logger *logrus.Entry
}

func NewPostgresCycleRepository(db *sql.DB, logger *logrus.Entry) *PostgresCycleRepository {
	return &PostgresCycleRepository{db: db, logger: logger.WithField("component", "cycle_repository")}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCycle(row rowScanner) (*cycle.Cycle, error) {
	c := &cycle.Cycle{}
	var status string
	if err := row.Scan(
		&c.ID, &c.Name, &c.StartDate, &c.EndDate,
		&c.InProgressDays, &c.ReviewDays, &c.EqualizationDays,
		&status, &c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	parsed, err := cycle.ParseStatus(status)
	if err != nil {
		return nil, fmt.Errorf("cycle %d: %w: %w", c.ID, ErrInvalidCycleStatus, err)
	}
	c.Status = parsed
	return c, nil
}

// ListAll returns every cycle ordered by id. Rows whose status is not a known phase are logged and skipped.
func (r *PostgresCycleRepository) ListAll(ctx context.Context) ([]*cycle.Cycle, error) {
	query := `SELECT ` + cycleColumns + ` FROM review_cycles ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing review cycles: %w", err)
	}
	defer rows.Close()

	cycles := make([]*cycle.Cycle, 0)
	for rows.Next() {
		c, err := scanCycle(rows)
		if errors.Is(err, ErrInvalidCycleStatus) {
			r.logger.WithError(err).Error("Skipping review cycle with invalid status")
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("error scanning review cycle: %w", err)
		}
		cycles = append(cycles, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating review cycles: %w", err)
	}
	return cycles, nil
}

func (r *PostgresCycleRepository) GetByID(ctx context.Context, id int64) (*cycle.Cycle, error) {
	query := `SELECT ` + cycleColumns + ` FROM review_cycles WHERE id = $1`
	c, err := scanCycle(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCycleNotFound
		}
		return nil, fmt.Errorf("error getting review cycle by ID: %w", err)
	}
	return c, nil
}

func (r *PostgresCycleRepository) UpdateStatus(ctx context.Context, id int64, status cycle.Status) error {
	if !status.Valid() {
		return fmt.Errorf("refusing to store invalid cycle status %q", status)
	}
	query := `UPDATE review_cycles SET status = $1, updated_at = NOW() WHERE id = $2`
	res, err := r.db.ExecContext(ctx, query, string(status), id)
	if err != nil {
		return fmt.Errorf("error updating review cycle status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading affected rows for review cycle status update: %w", err)
	}
	if affected == 0 {
		return ErrCycleNotFound
	}
	return nil
}
