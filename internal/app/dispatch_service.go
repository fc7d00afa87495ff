// internal/app/dispatch_service.go
package app

import (
	"context"
	"errors"
	"fmt"

	"review_cycle_service/internal/domain/cycle"
	"review_cycle_service/internal/domain/evaluation"
	"review_cycle_service/internal/domain/roster"
	idb "review_cycle_service/internal/infra/database"

	"github.com/sirupsen/logrus"
)

// DispatchResult summarises one dispatch run.
type DispatchResult struct {
	CycleID  int64
	Inserted int
}

// EvaluationDispatcher generates the evaluation obligations of a cycle.
// Each entry point runs at most once per cycle: a second call is rejected with ErrEvaluationsAlreadyLaunched.
type EvaluationDispatcher struct {
	cycleRepo      cycle.Repository
	rosterRepo     roster.Repository
	evaluationRepo evaluation.Repository
	logger         *logrus.Entry
}

func NewEvaluationDispatcher(
	cr cycle.Repository,
	rr roster.Repository,
	er evaluation.Repository,
	logger *logrus.Entry,
) *EvaluationDispatcher {
	return &EvaluationDispatcher{
		cycleRepo:      cr,
		rosterRepo:     rr,
		evaluationRepo: er,
		logger:         logger.WithField("component", "evaluation_dispatcher"),
	}
}

// Launch creates SELF evaluations for every participant plus both manager-pair
// evaluations for every manager relation of a participant.
func (d *EvaluationDispatcher) Launch(ctx context.Context, cycleID int64) (*DispatchResult, error) {
	log := d.logger.WithFields(logrus.Fields{"cycle_id": cycleID, "dispatch": "peer"})

	participants, err := d.prepare(ctx, log, cycleID, evaluation.PeerTypes)
	if err != nil {
		return nil, err
	}
	if len(participants) == 0 {
		return &DispatchResult{CycleID: cycleID}, nil
	}

	relations, err := d.rosterRepo.ListManagerRelations(ctx, cycleID)
	if err != nil {
		log.WithError(err).Error("Failed to list manager relations")
		return nil, fmt.Errorf("failed to list manager relations for cycle %d: %w", cycleID, err)
	}

	managersOf := make(map[int64][]int64)
	for _, rel := range relations {
		managersOf[rel.CollaboratorID] = append(managersOf[rel.CollaboratorID], rel.ManagerID)
	}

	records := make([]*evaluation.Evaluation, 0, len(participants)+2*len(relations))
	for _, p := range participants {
		records = append(records, evaluation.New(cycleID, p.CollaboratorID, p.CollaboratorID, evaluation.TypeSelf))
		for _, managerID := range managersOf[p.CollaboratorID] {
			records = append(records,
				evaluation.New(cycleID, managerID, p.CollaboratorID, evaluation.TypeManagerEvaluatesSubordinate),
				evaluation.New(cycleID, p.CollaboratorID, managerID, evaluation.TypeSubordinateEvaluatesManager),
			)
		}
	}

	return d.insert(ctx, log, cycleID, records)
}

// LaunchLeaderCollaborator creates one LEADER_EVALUATES_COLLABORATOR evaluation for each
// participant that has a leader relation. When several relation rows exist for a participant
// the first one recorded wins.
func (d *EvaluationDispatcher) LaunchLeaderCollaborator(ctx context.Context, cycleID int64) (*DispatchResult, error) {
	log := d.logger.WithFields(logrus.Fields{"cycle_id": cycleID, "dispatch": "leader"})

	participants, err := d.prepare(ctx, log, cycleID, evaluation.LeaderTypes)
	if err != nil {
		return nil, err
	}
	if len(participants) == 0 {
		return &DispatchResult{CycleID: cycleID}, nil
	}

	relations, err := d.rosterRepo.ListLeaderRelations(ctx, cycleID)
	if err != nil {
		log.WithError(err).Error("Failed to list leader relations")
		return nil, fmt.Errorf("failed to list leader relations for cycle %d: %w", cycleID, err)
	}

	leaderOf := make(map[int64]int64, len(relations))
	for _, rel := range relations {
		if current, ok := leaderOf[rel.CollaboratorID]; ok {
			log.WithFields(logrus.Fields{
				"collaborator_id": rel.CollaboratorID,
				"leader_id":       current,
				"ignored_leader":  rel.LeaderID,
			}).Warn("Collaborator has more than one leader relation; keeping the first")
			continue
		}
		leaderOf[rel.CollaboratorID] = rel.LeaderID
	}

	records := make([]*evaluation.Evaluation, 0, len(leaderOf))
	for _, p := range participants {
		if leaderID, ok := leaderOf[p.CollaboratorID]; ok {
			records = append(records, evaluation.New(cycleID, leaderID, p.CollaboratorID, evaluation.TypeLeaderEvaluatesCollaborator))
		}
	}

	return d.insert(ctx, log, cycleID, records)
}

// prepare runs the checks shared by both entry points and returns the cycle roster.
// An empty roster is returned without error.
func (d *EvaluationDispatcher) prepare(ctx context.Context, log *logrus.Entry, cycleID int64, types []evaluation.Type) ([]*roster.Participant, error) {
	if _, err := d.cycleRepo.GetByID(ctx, cycleID); err != nil {
		if errors.Is(err, idb.ErrCycleNotFound) {
			log.Warn("Cycle not found; nothing to launch")
			return nil, ErrCycleNotFound
		}
		log.WithError(err).Error("Failed to load cycle")
		return nil, fmt.Errorf("failed to load cycle %d: %w", cycleID, err)
	}

	existing, err := d.evaluationRepo.Count(ctx, cycleID, types...)
	if err != nil {
		log.WithError(err).Error("Failed to count existing evaluations")
		return nil, fmt.Errorf("failed to count evaluations for cycle %d: %w", cycleID, err)
	}
	if existing > 0 {
		log.WithField("existing", existing).Warn("Evaluations already launched for cycle")
		return nil, ErrEvaluationsAlreadyLaunched
	}

	participants, err := d.rosterRepo.ListParticipants(ctx, cycleID)
	if err != nil {
		log.WithError(err).Error("Failed to list participants")
		return nil, fmt.Errorf("failed to list participants for cycle %d: %w", cycleID, err)
	}
	if len(participants) == 0 {
		log.Info("Cycle has no participants; no evaluations generated")
		return nil, nil
	}
	log.WithField("participants", len(participants)).Debug("Roster loaded")
	return participants, nil
}

func (d *EvaluationDispatcher) insert(ctx context.Context, log *logrus.Entry, cycleID int64, records []*evaluation.Evaluation) (*DispatchResult, error) {
	if len(records) == 0 {
		log.Info("No evaluations to generate for cycle")
		return &DispatchResult{CycleID: cycleID}, nil
	}

	inserted, err := d.evaluationRepo.BulkInsert(ctx, records)
	if err != nil {
		log.WithError(err).WithField("records", len(records)).Error("Failed to bulk insert evaluations")
		return nil, fmt.Errorf("failed to insert evaluations for cycle %d: %w", cycleID, err)
	}
	log.WithField("inserted", inserted).Info("Evaluations generated")
	return &DispatchResult{CycleID: cycleID, Inserted: inserted}, nil
}
