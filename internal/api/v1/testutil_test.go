package v1_test

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gosuda/plano/internal/domain"
	"github.com/gosuda/plano/internal/lifecycle"
	"github.com/gosuda/plano/internal/server/middleware"
)

// ---------------------------------------------------------------------------
// Context helpers: inject the acting user into context for DoCtx
// ---------------------------------------------------------------------------

func userCtx(actor domain.Actor) context.Context {
	return middleware.WithActor(context.Background(), actor, middleware.RoleMember)
}

func adminCtx(actor domain.Actor) context.Context {
	return middleware.WithActor(context.Background(), actor, middleware.RoleAdmin)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ---------------------------------------------------------------------------
// Mock DataStore
// ---------------------------------------------------------------------------

type mockDataStore struct {
	tasks          domain.TaskRepository
	actionPlans    domain.ActionPlanRepository
	timeExtensions domain.TimeExtensionRepository
}

func (m *mockDataStore) Tasks() domain.TaskRepository                   { return m.tasks }
func (m *mockDataStore) ActionPlans() domain.ActionPlanRepository       { return m.actionPlans }
func (m *mockDataStore) TimeExtensions() domain.TimeExtensionRepository { return m.timeExtensions }

// ---------------------------------------------------------------------------
// Mock TaskRepository
// ---------------------------------------------------------------------------

type mockTaskRepo struct {
	createFunc    func(ctx context.Context, t *domain.Task) error
	getByIDFunc   func(ctx context.Context, id uuid.UUID) (*domain.Task, error)
	listFunc      func(ctx context.Context, f domain.TaskFilter) ([]*domain.Task, error)
	updateFunc    func(ctx context.Context, t *domain.Task) error
	setActiveFunc func(ctx context.Context, id uuid.UUID, active bool) error
	deleteFunc    func(ctx context.Context, id uuid.UUID) error
}

func (m *mockTaskRepo) ListTracked(context.Context) ([]*domain.Tracked, error) {
	panic("not implemented")
}

func (m *mockTaskRepo) GetTracked(context.Context, uuid.UUID) (*domain.Tracked, error) {
	panic("not implemented")
}

func (m *mockTaskRepo) ApplyStatus(context.Context, uuid.UUID, domain.StatusUpdate) error {
	panic("not implemented")
}

func (m *mockTaskRepo) Create(ctx context.Context, t *domain.Task) error {
	return m.createFunc(ctx, t)
}

func (m *mockTaskRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockTaskRepo) List(ctx context.Context, f domain.TaskFilter) ([]*domain.Task, error) {
	return m.listFunc(ctx, f)
}

func (m *mockTaskRepo) Update(ctx context.Context, t *domain.Task) error {
	return m.updateFunc(ctx, t)
}

func (m *mockTaskRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return m.setActiveFunc(ctx, id, active)
}

func (m *mockTaskRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.deleteFunc(ctx, id)
}

// ---------------------------------------------------------------------------
// Mock ActionPlanRepository
// ---------------------------------------------------------------------------

type mockActionPlanRepo struct {
	createFunc    func(ctx context.Context, p *domain.ActionPlan) error
	getByIDFunc   func(ctx context.Context, id uuid.UUID) (*domain.ActionPlan, error)
	listFunc      func(ctx context.Context, f domain.ActionPlanFilter) ([]*domain.ActionPlan, error)
	updateFunc    func(ctx context.Context, p *domain.ActionPlan) error
	setActiveFunc func(ctx context.Context, id uuid.UUID, active bool) error
	deleteFunc    func(ctx context.Context, id uuid.UUID) error
}

func (m *mockActionPlanRepo) ListTracked(context.Context) ([]*domain.Tracked, error) {
	panic("not implemented")
}

func (m *mockActionPlanRepo) GetTracked(context.Context, uuid.UUID) (*domain.Tracked, error) {
	panic("not implemented")
}

func (m *mockActionPlanRepo) ApplyStatus(context.Context, uuid.UUID, domain.StatusUpdate) error {
	panic("not implemented")
}

func (m *mockActionPlanRepo) Create(ctx context.Context, p *domain.ActionPlan) error {
	return m.createFunc(ctx, p)
}

func (m *mockActionPlanRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.ActionPlan, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockActionPlanRepo) List(ctx context.Context, f domain.ActionPlanFilter) ([]*domain.ActionPlan, error) {
	return m.listFunc(ctx, f)
}

func (m *mockActionPlanRepo) Update(ctx context.Context, p *domain.ActionPlan) error {
	return m.updateFunc(ctx, p)
}

func (m *mockActionPlanRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return m.setActiveFunc(ctx, id, active)
}

func (m *mockActionPlanRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.deleteFunc(ctx, id)
}

// ---------------------------------------------------------------------------
// Mock TimeExtensionRepository
// ---------------------------------------------------------------------------

type mockTimeExtensionRepo struct {
	createFunc           func(ctx context.Context, e *domain.TimeExtension) error
	getByIDFunc          func(ctx context.Context, id uuid.UUID) (*domain.TimeExtension, error)
	listByActionPlanFunc func(ctx context.Context, planID uuid.UUID) ([]*domain.TimeExtension, error)
	decideFunc           func(ctx context.Context, e *domain.TimeExtension) error
}

func (m *mockTimeExtensionRepo) Create(ctx context.Context, e *domain.TimeExtension) error {
	return m.createFunc(ctx, e)
}

func (m *mockTimeExtensionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.TimeExtension, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockTimeExtensionRepo) ListByActionPlan(ctx context.Context, planID uuid.UUID) ([]*domain.TimeExtension, error) {
	return m.listByActionPlanFunc(ctx, planID)
}

func (m *mockTimeExtensionRepo) Decide(ctx context.Context, e *domain.TimeExtension) error {
	return m.decideFunc(ctx, e)
}

// ---------------------------------------------------------------------------
// Mock StatusService
// ---------------------------------------------------------------------------

type mockStatusService struct {
	checkFunc func(ctx context.Context, kind domain.Kind, id uuid.UUID, to domain.Status) (domain.Validation, error)
	applyFunc func(ctx context.Context, kind domain.Kind, id uuid.UUID, req lifecycle.TransitionRequest) (*lifecycle.Result, error)
}

func (m *mockStatusService) Check(ctx context.Context, kind domain.Kind, id uuid.UUID, to domain.Status) (domain.Validation, error) {
	return m.checkFunc(ctx, kind, id, to)
}

func (m *mockStatusService) Apply(ctx context.Context, kind domain.Kind, id uuid.UUID, req lifecycle.TransitionRequest) (*lifecycle.Result, error) {
	return m.applyFunc(ctx, kind, id, req)
}

// ---------------------------------------------------------------------------
// Mock StatusReader
// ---------------------------------------------------------------------------

type mockReader struct {
	listFunc func(ctx context.Context, kind domain.Kind) ([]*domain.Tracked, error)
	getFunc  func(ctx context.Context, kind domain.Kind, id uuid.UUID) (*domain.Tracked, error)

	mu          sync.Mutex
	invalidated []domain.Kind
}

func (m *mockReader) List(ctx context.Context, kind domain.Kind) ([]*domain.Tracked, error) {
	return m.listFunc(ctx, kind)
}

func (m *mockReader) Get(ctx context.Context, kind domain.Kind, id uuid.UUID) (*domain.Tracked, error) {
	return m.getFunc(ctx, kind, id)
}

func (m *mockReader) Invalidate(kind domain.Kind) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invalidated = append(m.invalidated, kind)
}

func (m *mockReader) invalidatedKinds() []domain.Kind {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Kind(nil), m.invalidated...)
}

// ---------------------------------------------------------------------------
// Mock MonitorRunner
// ---------------------------------------------------------------------------

type mockMonitorRunner struct {
	scanFunc func(ctx context.Context, kind domain.Kind) []lifecycle.ScanReport
}

func (m *mockMonitorRunner) Scan(ctx context.Context, kind domain.Kind) []lifecycle.ScanReport {
	return m.scanFunc(ctx, kind)
}
