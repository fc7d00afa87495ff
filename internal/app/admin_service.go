package app

import (
	"context"
	"errors"
	"fmt"

	"review_cycle_service/internal/domain/cycle"
	"review_cycle_service/internal/domain/evaluation"
	idb "review_cycle_service/internal/infra/database"
)

// Sweeper runs one transition sweep.
type Sweeper interface {
	Tick(ctx context.Context) (*TickReport, error)
}

// TypeCount is the number of evaluations of one type in a cycle.
type TypeCount struct {
	Type  evaluation.Type
	Count int
}

// CycleOverview is what an admin sees for one cycle.
type CycleOverview struct {
	Cycle      *cycle.Cycle
	Boundaries cycle.Boundaries
	Desired    cycle.Status
	// Evaluations holds one entry per evaluation type, in declaration order.
	Evaluations []TypeCount
}

// AdminService exposes the manual entry points of the lifecycle core to administrators.
type AdminService struct {
	cycleRepo       cycle.Repository
	evaluationRepo  evaluation.Repository
	launcher        EvaluationLauncher
	runner          TaskSubmitter
	sweeper         Sweeper
	clock           Clock
	adminTelegramID int64
}

func NewAdminService(
	cr cycle.Repository,
	er evaluation.Repository,
	launcher EvaluationLauncher,
	runner TaskSubmitter,
	sweeper Sweeper,
	clock Clock,
	adminID int64,
) *AdminService {
	return &AdminService{
		cycleRepo:       cr,
		evaluationRepo:  er,
		launcher:        launcher,
		runner:          runner,
		sweeper:         sweeper,
		clock:           clock,
		adminTelegramID: adminID,
	}
}

// LaunchEvaluations queues the peer evaluation dispatch for a cycle and returns immediately.
// The outcome is only visible in logs, alerts and evaluation counts.
func (s *AdminService) LaunchEvaluations(ctx context.Context, performingAdminID int64, cycleID int64) (Accepted, error) {
	if performingAdminID != s.adminTelegramID {
		return Accepted{}, ErrAdminNotAuthorized
	}
	return s.runner.Submit(ctx, TaskLaunchEvaluations, cycleID, func(ctx context.Context) error {
		_, err := s.launcher.Launch(ctx, cycleID)
		return err
	}), nil
}

// LaunchLeaderEvaluations queues the leader evaluation dispatch for a cycle and returns immediately.
func (s *AdminService) LaunchLeaderEvaluations(ctx context.Context, performingAdminID int64, cycleID int64) (Accepted, error) {
	if performingAdminID != s.adminTelegramID {
		return Accepted{}, ErrAdminNotAuthorized
	}
	return s.runner.Submit(ctx, TaskLaunchLeaderEvaluations, cycleID, func(ctx context.Context) error {
		_, err := s.launcher.LaunchLeaderCollaborator(ctx, cycleID)
		return err
	}), nil
}

// RunSweep runs one sweep immediately, outside the cron schedule.
func (s *AdminService) RunSweep(ctx context.Context, performingAdminID int64) (*TickReport, error) {
	if performingAdminID != s.adminTelegramID {
		return nil, ErrAdminNotAuthorized
	}
	return s.sweeper.Tick(ctx)
}

// ListCycles returns every cycle with its computed phase windows and evaluation counts.
func (s *AdminService) ListCycles(ctx context.Context, performingAdminID int64) ([]*CycleOverview, error) {
	if performingAdminID != s.adminTelegramID {
		return nil, ErrAdminNotAuthorized
	}

	cycles, err := s.cycleRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list cycles: %w", err)
	}

	ids := make([]int64, len(cycles))
	for i, c := range cycles {
		ids[i] = c.ID
	}
	counts, err := s.evaluationRepo.CountByType(ctx, ids...)
	if err != nil {
		return nil, fmt.Errorf("failed to count evaluations: %w", err)
	}

	now := s.clock.Now()
	overviews := make([]*CycleOverview, 0, len(cycles))
	for _, c := range cycles {
		overviews = append(overviews, &CycleOverview{
			Cycle:       c,
			Boundaries:  cycle.ComputeBoundaries(c),
			Desired:     cycle.DesiredStatus(c, now),
			Evaluations: orderedCounts(counts[c.ID]),
		})
	}
	return overviews, nil
}

// GetCycle returns the overview of a single cycle.
func (s *AdminService) GetCycle(ctx context.Context, performingAdminID int64, cycleID int64) (*CycleOverview, error) {
	if performingAdminID != s.adminTelegramID {
		return nil, ErrAdminNotAuthorized
	}

	c, err := s.cycleRepo.GetByID(ctx, cycleID)
	if err != nil {
		if errors.Is(err, idb.ErrCycleNotFound) {
			return nil, ErrCycleNotFound
		}
		return nil, fmt.Errorf("failed to get cycle %d: %w", cycleID, err)
	}

	counts, err := s.evaluationRepo.CountByType(ctx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count evaluations for cycle %d: %w", c.ID, err)
	}
	return &CycleOverview{
		Cycle:       c,
		Boundaries:  cycle.ComputeBoundaries(c),
		Desired:     cycle.DesiredStatus(c, s.clock.Now()),
		Evaluations: orderedCounts(counts[c.ID]),
	}, nil
}

// orderedCounts lists every known evaluation type with its count, zero included.
func orderedCounts(byType map[evaluation.Type]int) []TypeCount {
	allTypes := append(append([]evaluation.Type{}, evaluation.PeerTypes...), evaluation.LeaderTypes...)
	counts := make([]TypeCount, 0, len(allTypes))
	for _, t := range allTypes {
		counts = append(counts, TypeCount{Type: t, Count: byType[t]})
	}
	return counts
}
