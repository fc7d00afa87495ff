// internal/domain/evaluation/evaluation.go
package evaluation

import "time"

// Type identifies who evaluates whom.
type Type string

const (
	TypeSelf                        Type = "SELF"
	TypeManagerEvaluatesSubordinate Type = "MANAGER_EVALUATES_SUBORDINATE"
	TypeSubordinateEvaluatesManager Type = "SUBORDINATE_EVALUATES_MANAGER"
	TypeLeaderEvaluatesCollaborator Type = "LEADER_EVALUATES_COLLABORATOR"
)

// PeerTypes are the evaluation types generated when a cycle enters IN_PROGRESS.
var PeerTypes = []Type{
	TypeSelf,
	TypeManagerEvaluatesSubordinate,
	TypeSubordinateEvaluatesManager,
}

// LeaderTypes are the evaluation types generated when a cycle enters IN_REVIEW.
var LeaderTypes = []Type{
	TypeLeaderEvaluatesCollaborator,
}

// FulfillmentStatus is owned by the evaluation-filling service; the lifecycle core only sets the initial value.
type FulfillmentStatus string

const (
	FulfillmentPending   FulfillmentStatus = "PENDING"
	FulfillmentSubmitted FulfillmentStatus = "SUBMITTED"
)

// Evaluation is one evaluation obligation inside a cycle.
// Corresponds to the 'evaluations' table.
type Evaluation struct {
	ID          int64
	CycleID     int64
	EvaluatorID int64
	EvaluatedID int64
	Type        Type
	Status      FulfillmentStatus
	CreatedAt   time.Time
}

// New builds a pending evaluation record ready for insertion.
func New(cycleID, evaluatorID, evaluatedID int64, t Type) *Evaluation {
	return &Evaluation{
		CycleID:     cycleID,
		EvaluatorID: evaluatorID,
		EvaluatedID: evaluatedID,
		Type:        t,
		Status:      FulfillmentPending,
	}
}
