package app

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"review_cycle_service/internal/domain/cycle"
	"review_cycle_service/internal/domain/evaluation"
	"review_cycle_service/internal/domain/roster"
	idb "review_cycle_service/internal/infra/database"

	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type memCycleRepo struct {
	mu        sync.Mutex
	cycles    map[int64]*cycle.Cycle
	order     []int64
	listErr   error
	updateErr map[int64]error
	updates   []statusUpdate
}

type statusUpdate struct {
	ID     int64
	Status cycle.Status
}

func newMemCycleRepo(cycles ...*cycle.Cycle) *memCycleRepo {
	r := &memCycleRepo{cycles: make(map[int64]*cycle.Cycle), updateErr: make(map[int64]error)}
	for _, c := range cycles {
		r.cycles[c.ID] = c
		r.order = append(r.order, c.ID)
	}
	return r
}

func (r *memCycleRepo) ListAll(_ context.Context) ([]*cycle.Cycle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]*cycle.Cycle, 0, len(r.order))
	for _, id := range r.order {
		c := *r.cycles[id]
		out = append(out, &c)
	}
	return out, nil
}

func (r *memCycleRepo) GetByID(_ context.Context, id int64) (*cycle.Cycle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.cycles[id]
	if !ok {
		return nil, idb.ErrCycleNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *memCycleRepo) UpdateStatus(_ context.Context, id int64, status cycle.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.updateErr[id]; err != nil {
		return err
	}
	c, ok := r.cycles[id]
	if !ok {
		return idb.ErrCycleNotFound
	}
	c.Status = status
	r.updates = append(r.updates, statusUpdate{ID: id, Status: status})
	return nil
}

func (r *memCycleRepo) status(id int64) cycle.Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cycles[id].Status
}

type memRosterRepo struct {
	participants map[int64][]*roster.Participant
	managers     map[int64][]*roster.ManagerRelation
	leaders      map[int64][]*roster.LeaderRelation
	err          error
}

func newMemRosterRepo() *memRosterRepo {
	return &memRosterRepo{
		participants: make(map[int64][]*roster.Participant),
		managers:     make(map[int64][]*roster.ManagerRelation),
		leaders:      make(map[int64][]*roster.LeaderRelation),
	}
}

func (r *memRosterRepo) enroll(cycleID int64, collaboratorIDs ...int64) {
	for _, id := range collaboratorIDs {
		r.participants[cycleID] = append(r.participants[cycleID], &roster.Participant{
			CycleID: cycleID, CollaboratorID: id, Name: fmt.Sprintf("collaborator-%d", id),
		})
	}
}

func (r *memRosterRepo) manage(cycleID, managerID, collaboratorID int64) {
	r.managers[cycleID] = append(r.managers[cycleID], &roster.ManagerRelation{
		CycleID: cycleID, ManagerID: managerID, CollaboratorID: collaboratorID,
	})
}

func (r *memRosterRepo) lead(cycleID, leaderID, collaboratorID int64) {
	r.leaders[cycleID] = append(r.leaders[cycleID], &roster.LeaderRelation{
		CycleID: cycleID, LeaderID: leaderID, CollaboratorID: collaboratorID,
	})
}

func (r *memRosterRepo) ListParticipants(_ context.Context, cycleID int64) ([]*roster.Participant, error) {
	return r.participants[cycleID], r.err
}

func (r *memRosterRepo) ListManagerRelations(_ context.Context, cycleID int64) ([]*roster.ManagerRelation, error) {
	return r.managers[cycleID], r.err
}

func (r *memRosterRepo) ListLeaderRelations(_ context.Context, cycleID int64) ([]*roster.LeaderRelation, error) {
	return r.leaders[cycleID], r.err
}

type memEvaluationRepo struct {
	mu        sync.Mutex
	records   []*evaluation.Evaluation
	insertErr error
	inserts   int

	countByTypeCalls int
}

func (r *memEvaluationRepo) Count(_ context.Context, cycleID int64, types ...evaluation.Type) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.records {
		if e.CycleID != cycleID {
			continue
		}
		if len(types) == 0 || containsType(types, e.Type) {
			n++
		}
	}
	return n, nil
}

func (r *memEvaluationRepo) CountByType(_ context.Context, cycleIDs ...int64) (map[int64]map[evaluation.Type]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.countByTypeCalls++
	out := make(map[int64]map[evaluation.Type]int)
	for _, e := range r.records {
		for _, id := range cycleIDs {
			if e.CycleID != id {
				continue
			}
			if out[id] == nil {
				out[id] = make(map[evaluation.Type]int)
			}
			out[id][e.Type]++
		}
	}
	return out, nil
}

func (r *memEvaluationRepo) BulkInsert(_ context.Context, records []*evaluation.Evaluation) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inserts++
	if r.insertErr != nil {
		return 0, r.insertErr
	}
	r.records = append(r.records, records...)
	return len(records), nil
}

func (r *memEvaluationRepo) byType(cycleID int64, t evaluation.Type) []*evaluation.Evaluation {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*evaluation.Evaluation
	for _, e := range r.records {
		if e.CycleID == cycleID && e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

func containsType(types []evaluation.Type, t evaluation.Type) bool {
	for _, candidate := range types {
		if candidate == t {
			return true
		}
	}
	return false
}

type fakeEqualizer struct {
	mu      sync.Mutex
	created []int64
	failFor map[int64]error
}

func (f *fakeEqualizer) Create(_ context.Context, cycleID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failFor[cycleID]; err != nil {
		return err
	}
	f.created = append(f.created, cycleID)
	return nil
}

// inlineRunner runs submitted tasks synchronously and records their errors.
type inlineRunner struct {
	mu     sync.Mutex
	tasks  []Task
	errors map[int64]error
}

func (r *inlineRunner) Submit(ctx context.Context, kind TaskKind, cycleID int64, fn TaskFunc) Accepted {
	r.mu.Lock()
	r.tasks = append(r.tasks, Task{ID: fmt.Sprintf("task-%d", len(r.tasks)+1), Kind: kind, CycleID: cycleID})
	id := r.tasks[len(r.tasks)-1].ID
	r.mu.Unlock()

	if err := fn(ctx); err != nil {
		r.mu.Lock()
		if r.errors == nil {
			r.errors = make(map[int64]error)
		}
		r.errors[cycleID] = err
		r.mu.Unlock()
	}
	return Accepted{TaskID: id, CycleID: cycleID, Kind: kind}
}
