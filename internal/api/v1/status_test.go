package v1_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1 "github.com/gosuda/plano/internal/api/v1"
	"github.com/gosuda/plano/internal/domain"
	"github.com/gosuda/plano/internal/lifecycle"
)

func trackedEntity(kind domain.Kind, status domain.Status) *domain.Tracked {
	return &domain.Tracked{
		ID:         uuid.New(),
		Kind:       kind,
		Name:       "entity",
		Status:     status,
		StartDate:  date(2024, 1, 1),
		EndDate:    date(2024, 1, 10),
		StatusLogs: []domain.StatusLogEntry{},
		Active:     true,
	}
}

// ---------------------------------------------------------------------------
// TestChangeStatus
// ---------------------------------------------------------------------------

func TestChangeStatus(t *testing.T) {
	t.Parallel()

	actor := domain.Actor{ID: uuid.New(), Name: "jane"}

	t.Run("applies_with_actor", func(t *testing.T) {
		t.Parallel()

		plan := trackedEntity(domain.KindActionPlan, domain.StatusNotStarted)
		var got lifecycle.TransitionRequest
		_, api := humatest.New(t)
		svc := &mockStatusService{
			applyFunc: func(_ context.Context, kind domain.Kind, id uuid.UUID, req lifecycle.TransitionRequest) (*lifecycle.Result, error) {
				assert.Equal(t, domain.KindActionPlan, kind)
				assert.Equal(t, plan.ID, id)
				got = req
				entry := domain.StatusLogEntry{ID: uuid.New(), FromStatus: plan.Status, ToStatus: req.To, Justification: req.Justification}
				next := *plan
				next.Status = req.To
				next.StatusLogs = []domain.StatusLogEntry{entry}
				return &lifecycle.Result{Entity: &next, Entry: entry}, nil
			},
		}
		v1.RegisterStatusRoutes(api, svc, &mockReader{})

		resp := api.PatchCtx(userCtx(actor), "/action_plan/"+plan.ID.String()+"/status", map[string]any{
			"status":        "cancelled",
			"justification": "budget cut",
		})

		require.Equal(t, http.StatusOK, resp.Code)
		assert.Equal(t, domain.StatusCancelled, got.To)
		assert.Equal(t, "budget cut", got.Justification)
		assert.False(t, got.Automatic)
		require.NotNil(t, got.Actor)
		assert.Equal(t, actor, *got.Actor)

		var body v1.StatusChangeBody
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, domain.StatusCancelled, body.Entity.Status)
		assert.Len(t, body.Entity.StatusLogs, 1)
		assert.Equal(t, "budget cut", body.Entry.Justification)
	})

	t.Run("overdue_flag", func(t *testing.T) {
		t.Parallel()

		task := trackedEntity(domain.KindTask, domain.StatusInProgress)
		_, api := humatest.New(t)
		svc := &mockStatusService{
			applyFunc: func(_ context.Context, _ domain.Kind, _ uuid.UUID, req lifecycle.TransitionRequest) (*lifecycle.Result, error) {
				entry := domain.StatusLogEntry{ID: uuid.New(), FromStatus: task.Status, ToStatus: req.To, Justification: req.Justification}
				next := *task
				next.Status = req.To
				next.StatusLogs = []domain.StatusLogEntry{entry}
				return &lifecycle.Result{Entity: &next, Entry: entry, Note: domain.MsgAutomaticallyDelay, Overdue: true}, nil
			},
		}
		v1.RegisterStatusRoutes(api, svc, &mockReader{})

		resp := api.PatchCtx(userCtx(actor), "/task/"+task.ID.String()+"/status", map[string]any{
			"status":        "in_review",
			"justification": "ready",
		})

		require.Equal(t, http.StatusOK, resp.Code)
		var body v1.StatusChangeBody
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.True(t, body.Overdue)
		assert.Equal(t, domain.MsgAutomaticallyDelay, body.Note)
		assert.Equal(t, domain.StatusInReview, body.Entity.Status)
		assert.Len(t, body.Entity.StatusLogs, 1)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterStatusRoutes(api, &mockStatusService{}, &mockReader{})

		resp := api.PatchCtx(context.Background(), "/task/"+uuid.NewString()+"/status", map[string]any{
			"status":        "in_progress",
			"justification": "starting",
		})

		assert.Equal(t, http.StatusUnauthorized, resp.Code)
	})

	t.Run("missing_justification", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterStatusRoutes(api, &mockStatusService{}, &mockReader{})

		resp := api.PatchCtx(userCtx(actor), "/task/"+uuid.NewString()+"/status", map[string]any{
			"status": "in_progress",
		})

		assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	})

	t.Run("unknown_kind", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterStatusRoutes(api, &mockStatusService{}, &mockReader{})

		resp := api.PatchCtx(userCtx(actor), "/meeting/"+uuid.NewString()+"/status", map[string]any{
			"status":        "in_progress",
			"justification": "x",
		})

		assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	})

	errorCases := []struct {
		name       string
		err        error
		wantStatus int
		wantDetail string
	}{
		{
			name:       "rejected",
			err:        fmt.Errorf("executor.Apply: %w", &lifecycle.RejectionError{Kind: domain.KindTask, From: domain.StatusCompleted, To: domain.StatusInProgress, Message: domain.MsgNotPermitted}),
			wantStatus: http.StatusUnprocessableEntity,
			wantDetail: domain.MsgNotPermitted,
		},
		{
			name:       "unknown status",
			err:        fmt.Errorf("executor.Apply: %w", domain.ErrUnknownStatus),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "blank justification",
			err:        fmt.Errorf("executor.Apply: %w", domain.ErrJustificationRequired),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "not found",
			err:        fmt.Errorf("executor.Apply: %w", domain.ErrNotFound),
			wantStatus: http.StatusNotFound,
			wantDetail: "Task not found",
		},
		{
			name:       "concurrent change",
			err:        fmt.Errorf("executor.Apply: %w", domain.ErrConflict),
			wantStatus: http.StatusConflict,
		},
		{
			name:       "store failure",
			err:        errors.New("db down"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tc := range errorCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, api := humatest.New(t)
			svc := &mockStatusService{
				applyFunc: func(context.Context, domain.Kind, uuid.UUID, lifecycle.TransitionRequest) (*lifecycle.Result, error) {
					return nil, tc.err
				},
			}
			v1.RegisterStatusRoutes(api, svc, &mockReader{})

			resp := api.PatchCtx(userCtx(actor), "/task/"+uuid.NewString()+"/status", map[string]any{
				"status":        "in_progress",
				"justification": "go",
			})

			assert.Equal(t, tc.wantStatus, resp.Code)
			if tc.wantDetail != "" {
				var errBody map[string]any
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&errBody))
				assert.Contains(t, errBody["detail"], tc.wantDetail)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestCheckStatus
// ---------------------------------------------------------------------------

func TestCheckStatus(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	_, api := humatest.New(t)
	svc := &mockStatusService{
		checkFunc: func(_ context.Context, kind domain.Kind, gotID uuid.UUID, to domain.Status) (domain.Validation, error) {
			assert.Equal(t, domain.KindTask, kind)
			assert.Equal(t, id, gotID)
			assert.Equal(t, domain.StatusDelayed, to)
			return domain.Validation{Message: domain.MsgDelayedTooEarly}, nil
		},
	}
	v1.RegisterStatusRoutes(api, svc, &mockReader{})

	resp := api.GetCtx(userCtx(domain.Actor{ID: uuid.New()}), "/task/"+id.String()+"/status/check?to=delayed")

	require.Equal(t, http.StatusOK, resp.Code)
	var body domain.Validation
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.False(t, body.Valid)
	assert.Equal(t, domain.MsgDelayedTooEarly, body.Message)
}

// ---------------------------------------------------------------------------
// TestAvailableStatuses
// ---------------------------------------------------------------------------

func TestAvailableStatuses(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		kind    domain.Kind
		status  domain.Status
		want    []domain.Status
		current string
	}{
		{
			name:    "task in progress",
			kind:    domain.KindTask,
			status:  domain.StatusInProgress,
			want:    []domain.Status{domain.StatusInReview, domain.StatusBlocked, domain.StatusCompleted, domain.StatusDelayed},
			current: "In Progress",
		},
		{
			name:    "completed task is terminal",
			kind:    domain.KindTask,
			status:  domain.StatusCompleted,
			want:    []domain.Status{},
			current: "Completed",
		},
		{
			name:    "cancelled plan can restart",
			kind:    domain.KindActionPlan,
			status:  domain.StatusCancelled,
			want:    []domain.Status{domain.StatusNotStarted},
			current: "Cancelled",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ent := trackedEntity(tt.kind, tt.status)
			_, api := humatest.New(t)
			reader := &mockReader{
				getFunc: func(_ context.Context, kind domain.Kind, id uuid.UUID) (*domain.Tracked, error) {
					assert.Equal(t, tt.kind, kind)
					assert.Equal(t, ent.ID, id)
					return ent, nil
				},
			}
			v1.RegisterStatusRoutes(api, &mockStatusService{}, reader)

			resp := api.GetCtx(userCtx(domain.Actor{ID: uuid.New()}), "/"+string(tt.kind)+"/"+ent.ID.String()+"/available-statuses")

			require.Equal(t, http.StatusOK, resp.Code)
			var body v1.AvailableStatusesBody
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.current, body.Current.Label)

			got := make([]domain.Status, 0, len(body.Statuses))
			for _, s := range body.Statuses {
				got = append(got, s.Status)
				assert.NotEmpty(t, s.Label)
				assert.NotEmpty(t, s.Color.Background)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

// ---------------------------------------------------------------------------
// TestHistory
// ---------------------------------------------------------------------------

func TestEntityHistory(t *testing.T) {
	t.Parallel()

	ent := trackedEntity(domain.KindTask, domain.StatusInReview)
	ent.StatusLogs = []domain.StatusLogEntry{
		{ID: uuid.New(), FromStatus: domain.StatusNotStarted, ToStatus: domain.StatusInProgress, Timestamp: "2024-01-02T09:00:00Z", UserName: "jane", Justification: "kickoff"},
		{ID: uuid.New(), FromStatus: domain.StatusInProgress, ToStatus: domain.StatusInReview, Timestamp: "2024-01-05T09:00:00Z", UserName: "jane", Justification: "ready"},
	}

	_, api := humatest.New(t)
	reader := &mockReader{
		getFunc: func(_ context.Context, _ domain.Kind, _ uuid.UUID) (*domain.Tracked, error) {
			return ent, nil
		},
	}
	v1.RegisterStatusRoutes(api, &mockStatusService{}, reader)

	resp := api.GetCtx(userCtx(domain.Actor{ID: uuid.New()}), "/task/"+ent.ID.String()+"/history")

	require.Equal(t, http.StatusOK, resp.Code)
	var lines []lifecycle.HistoryLine
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&lines))
	require.Len(t, lines, 2)
	assert.Equal(t, "In Review", lines[0].To)
	assert.Equal(t, "2024-01-05 09:00", lines[0].Date)
	assert.Equal(t, "Not Started", lines[1].From)
	assert.Equal(t, "jane", lines[1].Actor)
}

func TestListHistory(t *testing.T) {
	t.Parallel()

	task := trackedEntity(domain.KindTask, domain.StatusInProgress)
	task.StatusLogs = []domain.StatusLogEntry{
		{ID: uuid.New(), FromStatus: domain.StatusNotStarted, ToStatus: domain.StatusInProgress, Timestamp: "2024-01-02T09:00:00Z"},
	}
	plan := trackedEntity(domain.KindActionPlan, domain.StatusDelayed)
	plan.StatusLogs = []domain.StatusLogEntry{
		{ID: uuid.New(), FromStatus: domain.StatusInProgress, ToStatus: domain.StatusDelayed, Timestamp: "2024-01-11T00:00:00Z", Automatic: true, SystemNotes: domain.AutomaticSystemNotes},
	}

	reader := &mockReader{
		listFunc: func(_ context.Context, kind domain.Kind) ([]*domain.Tracked, error) {
			if kind == domain.KindTask {
				return []*domain.Tracked{task}, nil
			}
			return []*domain.Tracked{plan}, nil
		},
	}

	t.Run("all_kinds", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterStatusRoutes(api, &mockStatusService{}, reader)

		resp := api.GetCtx(userCtx(domain.Actor{ID: uuid.New()}), "/history")

		require.Equal(t, http.StatusOK, resp.Code)
		var lines []lifecycle.HistoryLine
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&lines))
		require.Len(t, lines, 2)
		assert.Equal(t, domain.KindActionPlan, lines[0].Kind)
		assert.True(t, lines[0].Automatic)
		assert.Equal(t, domain.KindTask, lines[1].Kind)
	})

	t.Run("one_kind", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterStatusRoutes(api, &mockStatusService{}, reader)

		resp := api.GetCtx(userCtx(domain.Actor{ID: uuid.New()}), "/history?kind=task")

		require.Equal(t, http.StatusOK, resp.Code)
		var lines []lifecycle.HistoryLine
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&lines))
		require.Len(t, lines, 1)
		assert.Equal(t, task.ID, lines[0].EntityID)
	})
}

// ---------------------------------------------------------------------------
// TestStatusRules
// ---------------------------------------------------------------------------

func TestStatusRules(t *testing.T) {
	t.Parallel()

	_, api := humatest.New(t)
	v1.RegisterStatusRoutes(api, &mockStatusService{}, &mockReader{})

	resp := api.GetCtx(userCtx(domain.Actor{ID: uuid.New()}), "/status-rules/action_plan")

	require.Equal(t, http.StatusOK, resp.Code)
	var body v1.StatusRulesBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, domain.KindActionPlan, body.Kind)
	assert.Equal(t, "Action Plan", body.Label)

	byStatus := make(map[domain.Status]v1.StatusRule, len(body.Statuses))
	for _, r := range body.Statuses {
		byStatus[r.Status] = r
	}
	assert.Len(t, byStatus, len(domain.ActionPlanRules.Statuses()))
	assert.False(t, byStatus[domain.StatusCompleted].Terminal)
	assert.Equal(t, []domain.Status{domain.StatusInProgress}, byStatus[domain.StatusCompleted].Next)
	assert.Equal(t, []domain.Status{domain.StatusNotStarted}, byStatus[domain.StatusCancelled].Next)
	assert.NotContains(t, byStatus, domain.StatusRescheduled)
}
