// internal/infra/database/postgres_evaluation_repository.go
package database

import (
	"context"
	"database/sql"
	"fmt"

	"review_cycle_service/internal/domain/evaluation"

	"github.com/lib/pq" // For pq.Array and pq.CopyIn
)

type PostgresEvaluationRepository struct {
	db *sql.DB
}

func NewPostgresEvaluationRepository(db *sql.DB) *PostgresEvaluationRepository {
	return &PostgresEvaluationRepository{db: db}
}

func (r *PostgresEvaluationRepository) Count(ctx context.Context, cycleID int64, types ...evaluation.Type) (int, error) {
	var count int
	if len(types) == 0 {
		query := `SELECT COUNT(*) FROM evaluations WHERE cycle_id = $1`
		if err := r.db.QueryRowContext(ctx, query, cycleID).Scan(&count); err != nil {
			return 0, fmt.Errorf("error counting evaluations: %w", err)
		}
		return count, nil
	}

	typesAsStrings := make([]string, len(types))
	for i, t := range types {
		typesAsStrings[i] = string(t)
	}
	query := `SELECT COUNT(*) FROM evaluations WHERE cycle_id = $1 AND type = ANY($2::varchar[])`
	if err := r.db.QueryRowContext(ctx, query, cycleID, pq.Array(typesAsStrings)).Scan(&count); err != nil {
		return 0, fmt.Errorf("error counting evaluations by type: %w", err)
	}
	return count, nil
}

func (r *PostgresEvaluationRepository) CountByType(ctx context.Context, cycleIDs ...int64) (map[int64]map[evaluation.Type]int, error) {
	counts := make(map[int64]map[evaluation.Type]int, len(cycleIDs))
	if len(cycleIDs) == 0 {
		return counts, nil
	}

	query := `SELECT cycle_id, type, COUNT(*) FROM evaluations
               WHERE cycle_id = ANY($1::bigint[])
               GROUP BY cycle_id, type`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(cycleIDs))
	if err != nil {
		return nil, fmt.Errorf("error counting evaluations by type: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var cycleID int64
		var t string
		var n int
		if err := rows.Scan(&cycleID, &t, &n); err != nil {
			return nil, fmt.Errorf("error scanning evaluation count: %w", err)
		}
		if counts[cycleID] == nil {
			counts[cycleID] = make(map[evaluation.Type]int)
		}
		counts[cycleID][evaluation.Type(t)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating evaluation counts: %w", err)
	}
	return counts, nil
}

// BulkInsert streams all records with COPY inside one transaction: either every row is stored or none is.
func (r *PostgresEvaluationRepository) BulkInsert(ctx context.Context, records []*evaluation.Evaluation) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	txn, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction for evaluation bulk insert: %w", err)
	}
	defer txn.Rollback() // Rollback if not committed

	stmt, err := txn.PrepareContext(ctx, pq.CopyIn("evaluations", "cycle_id", "evaluator_id", "evaluated_id", "type", "status"))
	if err != nil {
		return 0, fmt.Errorf("failed to prepare copy for evaluation bulk insert: %w", err)
	}

	for _, e := range records {
		if _, err := stmt.ExecContext(ctx, e.CycleID, e.EvaluatorID, e.EvaluatedID, string(e.Type), string(e.Status)); err != nil {
			stmt.Close()
			return 0, fmt.Errorf("error copying evaluation (C:%d, %d->%d, %s): %w", e.CycleID, e.EvaluatorID, e.EvaluatedID, e.Type, err)
		}
	}
	if _, err := stmt.ExecContext(ctx); err != nil {
		stmt.Close()
		return 0, fmt.Errorf("error flushing evaluation copy: %w", err)
	}
	if err := stmt.Close(); err != nil {
		return 0, fmt.Errorf("error closing evaluation copy: %w", err)
	}

	if err := txn.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit evaluation bulk insert: %w", err)
	}
	return len(records), nil
}
