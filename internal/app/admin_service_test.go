package app

import (
	"context"
	"testing"

	"review_cycle_service/internal/domain/cycle"
	"review_cycle_service/internal/domain/evaluation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAdminID int64 = 777

func newAdminFixture() (*AdminService, *sweepFixture) {
	f := newSweepFixture(day(2024, 1, 3), januaryCycle(1, cycle.StatusScheduled))
	f.roster.enroll(1, 10, 11)
	f.roster.manage(1, 100, 11)
	dispatcher := NewEvaluationDispatcher(f.cycles, f.roster, f.evaluations, quietLogger())
	svc := NewAdminService(f.cycles, f.evaluations, dispatcher, f.runner, f.sweeper, f.clock, testAdminID)
	return svc, f
}

func TestAdminService_RejectsNonAdmin(t *testing.T) {
	svc, f := newAdminFixture()
	ctx := context.Background()

	_, err := svc.LaunchEvaluations(ctx, 1, 1)
	assert.ErrorIs(t, err, ErrAdminNotAuthorized)
	_, err = svc.LaunchLeaderEvaluations(ctx, 1, 1)
	assert.ErrorIs(t, err, ErrAdminNotAuthorized)
	_, err = svc.RunSweep(ctx, 1)
	assert.ErrorIs(t, err, ErrAdminNotAuthorized)
	_, err = svc.ListCycles(ctx, 1)
	assert.ErrorIs(t, err, ErrAdminNotAuthorized)
	_, err = svc.GetCycle(ctx, 1, 1)
	assert.ErrorIs(t, err, ErrAdminNotAuthorized)

	assert.Empty(t, f.runner.tasks)
}

func TestAdminService_LaunchIsAcceptedEvenWhenDispatchFails(t *testing.T) {
	svc, f := newAdminFixture()

	accepted, err := svc.LaunchEvaluations(context.Background(), testAdminID, 42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), accepted.CycleID)
	assert.Equal(t, TaskLaunchEvaluations, accepted.Kind)
	assert.ErrorIs(t, f.runner.errors[42], ErrCycleNotFound)
}

func TestAdminService_LaunchEvaluations(t *testing.T) {
	svc, f := newAdminFixture()

	_, err := svc.LaunchEvaluations(context.Background(), testAdminID, 1)
	require.NoError(t, err)
	assert.Len(t, f.evaluations.byType(1, evaluation.TypeSelf), 2)

	accepted, err := svc.LaunchLeaderEvaluations(context.Background(), testAdminID, 1)
	require.NoError(t, err)
	assert.Equal(t, TaskLaunchLeaderEvaluations, accepted.Kind)
}

func TestAdminService_GetCycleOverview(t *testing.T) {
	svc, _ := newAdminFixture()
	_, err := svc.LaunchEvaluations(context.Background(), testAdminID, 1)
	require.NoError(t, err)

	overview, err := svc.GetCycle(context.Background(), testAdminID, 1)
	require.NoError(t, err)

	assert.Equal(t, cycle.StatusScheduled, overview.Cycle.Status)
	assert.Equal(t, cycle.StatusInProgress, overview.Desired)
	assert.Equal(t, day(2024, 1, 5), overview.Boundaries.InProgressEnd)
	assert.Equal(t, []TypeCount{
		{Type: evaluation.TypeSelf, Count: 2},
		{Type: evaluation.TypeManagerEvaluatesSubordinate, Count: 1},
		{Type: evaluation.TypeSubordinateEvaluatesManager, Count: 1},
		{Type: evaluation.TypeLeaderEvaluatesCollaborator, Count: 0},
	}, overview.Evaluations)

	_, err = svc.GetCycle(context.Background(), testAdminID, 99)
	assert.ErrorIs(t, err, ErrCycleNotFound)
}

func TestAdminService_RunSweepAndList(t *testing.T) {
	svc, f := newAdminFixture()

	report, err := svc.RunSweep(context.Background(), testAdminID)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Transitioned)
	assert.Equal(t, cycle.StatusInProgress, f.cycles.status(1))

	overviews, err := svc.ListCycles(context.Background(), testAdminID)
	require.NoError(t, err)
	require.Len(t, overviews, 1)
	assert.Equal(t, overviews[0].Cycle.Status, overviews[0].Desired)
}

func TestAdminService_ListCyclesCountsInOneQuery(t *testing.T) {
	f := newSweepFixture(day(2024, 1, 3),
		januaryCycle(1, cycle.StatusInProgress),
		januaryCycle(2, cycle.StatusInProgress),
		januaryCycle(3, cycle.StatusScheduled),
	)
	f.evaluations.records = append(f.evaluations.records,
		evaluation.New(1, 10, 10, evaluation.TypeSelf),
		evaluation.New(2, 20, 20, evaluation.TypeSelf),
		evaluation.New(2, 21, 20, evaluation.TypeManagerEvaluatesSubordinate),
	)
	dispatcher := NewEvaluationDispatcher(f.cycles, f.roster, f.evaluations, quietLogger())
	svc := NewAdminService(f.cycles, f.evaluations, dispatcher, f.runner, f.sweeper, f.clock, testAdminID)

	overviews, err := svc.ListCycles(context.Background(), testAdminID)
	require.NoError(t, err)
	require.Len(t, overviews, 3)

	assert.Equal(t, 1, f.evaluations.countByTypeCalls)
	assert.Equal(t, TypeCount{Type: evaluation.TypeSelf, Count: 1}, overviews[0].Evaluations[0])
	assert.Equal(t, TypeCount{Type: evaluation.TypeManagerEvaluatesSubordinate, Count: 1}, overviews[1].Evaluations[1])
	for _, tc := range overviews[2].Evaluations {
		assert.Zero(t, tc.Count, tc.Type)
	}
}
