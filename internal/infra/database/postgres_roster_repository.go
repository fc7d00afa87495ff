package database

import (
	"context"
	"database/sql"
	"fmt"

	"review_cycle_service/internal/domain/roster"
)

type PostgresRosterRepository struct {
	db *sql.DB
}

func NewPostgresRosterRepository(db *sql.DB) *PostgresRosterRepository {
	return &PostgresRosterRepository{db: db}
}

func (r *PostgresRosterRepository) ListParticipants(ctx context.Context, cycleID int64) ([]*roster.Participant, error) {
	query := `SELECT cp.cycle_id, cp.collaborator_id, c.name
               FROM cycle_participants cp
               JOIN collaborators c ON c.id = cp.collaborator_id
               WHERE cp.cycle_id = $1
               ORDER BY cp.collaborator_id`
	rows, err := r.db.QueryContext(ctx, query, cycleID)
	if err != nil {
		return nil, fmt.Errorf("error listing cycle participants: %w", err)
	}
	defer rows.Close()

	participants := make([]*roster.Participant, 0)
	for rows.Next() {
		p := &roster.Participant{}
		if err := rows.Scan(&p.CycleID, &p.CollaboratorID, &p.Name); err != nil {
			return nil, fmt.Errorf("error scanning cycle participant: %w", err)
		}
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cycle participants: %w", err)
	}
	return participants, nil
}

// ListManagerRelations returns every relation row for the cycle, duplicates included, in insertion order.
func (r *PostgresRosterRepository) ListManagerRelations(ctx context.Context, cycleID int64) ([]*roster.ManagerRelation, error) {
	query := `SELECT cycle_id, manager_id, collaborator_id
               FROM manager_relations
               WHERE cycle_id = $1
               ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, cycleID)
	if err != nil {
		return nil, fmt.Errorf("error listing manager relations: %w", err)
	}
	defer rows.Close()

	relations := make([]*roster.ManagerRelation, 0)
	for rows.Next() {
		rel := &roster.ManagerRelation{}
		if err := rows.Scan(&rel.CycleID, &rel.ManagerID, &rel.CollaboratorID); err != nil {
			return nil, fmt.Errorf("error scanning manager relation: %w", err)
		}
		relations = append(relations, rel)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating manager relations: %w", err)
	}
	return relations, nil
}

func (r *PostgresRosterRepository) ListLeaderRelations(ctx context.Context, cycleID int64) ([]*roster.LeaderRelation, error) {
	query := `SELECT cycle_id, leader_id, collaborator_id
               FROM leader_relations
               WHERE cycle_id = $1
               ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, cycleID)
	if err != nil {
		return nil, fmt.Errorf("error listing leader relations: %w", err)
	}
	defer rows.Close()

	relations := make([]*roster.LeaderRelation, 0)
	for rows.Next() {
		rel := &roster.LeaderRelation{}
		if err := rows.Scan(&rel.CycleID, &rel.LeaderID, &rel.CollaboratorID); err != nil {
			return nil, fmt.Errorf("error scanning leader relation: %w", err)
		}
		relations = append(relations, rel)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating leader relations: %w", err)
	}
	return relations, nil
}
