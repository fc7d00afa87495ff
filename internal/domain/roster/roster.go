// internal/domain/roster/roster.go
package roster

// Participant is a collaborator enrolled in a review cycle.
// Corresponds to the 'cycle_participants' table joined with 'collaborators'.
type Participant struct {
	CycleID        int64
	CollaboratorID int64
	Name           string
}

// ManagerRelation says ManagerID manages CollaboratorID within one cycle.
// The same pair may have different relations in other cycles.
type ManagerRelation struct {
	CycleID        int64
	ManagerID      int64
	CollaboratorID int64
}

// LeaderRelation says LeaderID leads CollaboratorID within one cycle.
type LeaderRelation struct {
	CycleID        int64
	LeaderID       int64
	CollaboratorID int64
}
