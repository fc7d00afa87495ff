package roster

import "context"

// Repository lists a cycle's roster and its cycle-scoped relationships.
// Roster membership is maintained by the collaborator-management service.
type Repository interface {
	ListParticipants(ctx context.Context, cycleID int64) ([]*Participant, error)
	ListManagerRelations(ctx context.Context, cycleID int64) ([]*ManagerRelation, error)
	ListLeaderRelations(ctx context.Context, cycleID int64) ([]*LeaderRelation, error)
}
