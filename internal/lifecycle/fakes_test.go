package lifecycle_test

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gosuda/plano/internal/domain"
	"github.com/gosuda/plano/internal/lifecycle"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// memRepo is an in-memory TrackedRepository with compare-and-set semantics.
type memRepo struct {
	mu       sync.Mutex
	entities map[uuid.UUID]*domain.Tracked
	order    []uuid.UUID
	writes   int

	// applyErr, when set, fails ApplyStatus for the ids it returns an error for.
	applyErr func(id uuid.UUID) error
	listErr  error
}

func newMemRepo(ents ...*domain.Tracked) *memRepo {
	r := &memRepo{entities: make(map[uuid.UUID]*domain.Tracked)}
	for _, e := range ents {
		r.put(e)
	}
	return r
}

func (r *memRepo) put(e *domain.Tracked) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entities[e.ID]; !ok {
		r.order = append(r.order, e.ID)
	}
	cp := *e
	cp.StatusLogs = slices.Clone(e.StatusLogs)
	r.entities[e.ID] = &cp
}

func (r *memRepo) get(id uuid.UUID) *domain.Tracked {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *r.entities[id]
	cp.StatusLogs = slices.Clone(cp.StatusLogs)
	return &cp
}

func (r *memRepo) writeCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.writes
}

func (r *memRepo) ListTracked(_ context.Context) ([]*domain.Tracked, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	r.mu.Lock()
	ids := slices.Clone(r.order)
	r.mu.Unlock()

	out := make([]*domain.Tracked, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.get(id))
	}
	return out, nil
}

func (r *memRepo) GetTracked(_ context.Context, id uuid.UUID) (*domain.Tracked, error) {
	r.mu.Lock()
	_, ok := r.entities[id]
	r.mu.Unlock()
	if !ok {
		return nil, domain.ErrNotFound
	}
	return r.get(id), nil
}

func (r *memRepo) ApplyStatus(_ context.Context, id uuid.UUID, u domain.StatusUpdate) error {
	if r.applyErr != nil {
		if err := r.applyErr(id); err != nil {
			return err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entities[id]
	if !ok {
		return domain.ErrNotFound
	}
	if e.Status != u.From {
		return domain.ErrConflict
	}
	r.entities[id] = e.WithStatus(u)
	r.writes++
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []lifecycle.StatusChanged
	err    error
}

func (p *recordingPublisher) PublishStatusChanged(_ context.Context, ev lifecycle.StatusChanged) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) published() []lifecycle.StatusChanged {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.events)
}

type recordingStore struct {
	mu   sync.Mutex
	puts []*domain.Tracked
}

func (s *recordingStore) Put(t *domain.Tracked) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.puts = append(s.puts, t)
}

func (s *recordingStore) stored() []*domain.Tracked {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.puts)
}

func tracked(kind domain.Kind, status domain.Status, start, end time.Time) *domain.Tracked {
	return &domain.Tracked{
		ID:         uuid.New(),
		Kind:       kind,
		Name:       string(kind) + "-" + string(status),
		Status:     status,
		StartDate:  start,
		EndDate:    end,
		StatusLogs: []domain.StatusLogEntry{},
		Active:     true,
	}
}

func newTestExecutor(clock domain.Clock, tasks, plans *memRepo, opts ...lifecycle.ExecutorOption) *lifecycle.Executor {
	repos := map[domain.Kind]domain.TrackedRepository{}
	if tasks != nil {
		repos[domain.KindTask] = tasks
	}
	if plans != nil {
		repos[domain.KindActionPlan] = plans
	}
	return lifecycle.NewExecutor(repos, append([]lifecycle.ExecutorOption{lifecycle.WithClock(clock)}, opts...)...)
}
