package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/gosuda/plano/internal/domain"
)

type CreateActionPlanInput struct {
	Body struct {
		Name          string      `json:"name" minLength:"1" maxLength:"500" doc:"Action plan name"`
		StartDate     time.Time   `json:"start_date" doc:"Planned start"`
		EndDate       time.Time   `json:"end_date" doc:"Planned end, not before start_date"`
		CoordinatorID *uuid.UUID  `json:"coordinator_id,omitempty" doc:"Coordinating user ID"`
		TeamIDs       []uuid.UUID `json:"team_ids,omitempty" doc:"Participating team IDs"`
	}
}

type ActionPlanOutput struct {
	Body *domain.ActionPlan
}

type ListActionPlansInput struct {
	Status        string    `query:"status" doc:"Filter by status"`
	CoordinatorID uuid.UUID `query:"coordinator_id" doc:"Filter by coordinator"`
	From          string    `query:"from" format:"date-time" doc:"Only plans still running at or after this instant"`
	To            string    `query:"to" format:"date-time" doc:"Only plans starting at or before this instant"`
}

type ListActionPlansOutput struct {
	Body []*domain.ActionPlan
}

type ActionPlanIDInput struct {
	ID uuid.UUID `path:"id" doc:"Action plan ID"`
}

type UpdateActionPlanInput struct {
	ID   uuid.UUID `path:"id" doc:"Action plan ID"`
	Body struct {
		Name          string       `json:"name,omitempty" maxLength:"500" doc:"Action plan name"`
		StartDate     *time.Time   `json:"start_date,omitempty" doc:"Planned start"`
		EndDate       *time.Time   `json:"end_date,omitempty" doc:"Planned end"`
		CoordinatorID *uuid.UUID   `json:"coordinator_id,omitempty" doc:"Coordinating user ID"`
		TeamIDs       *[]uuid.UUID `json:"team_ids,omitempty" doc:"Participating team IDs"`
	}
}

func parseInstant(raw, name string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, huma.Error400BadRequest("invalid " + name + ": expected RFC 3339")
	}
	return t, nil
}

func RegisterActionPlanRoutes(api huma.API, store DataStore, reader StatusReader) {
	huma.Register(api, huma.Operation{
		OperationID: "create-action-plan",
		Method:      http.MethodPost,
		Path:        "/action-plans",
		Summary:     "Create a new action plan",
		Tags:        []string{"Action Plans"},
	}, func(ctx context.Context, input *CreateActionPlanInput) (*ActionPlanOutput, error) {
		p, err := domain.NewActionPlan(input.Body.Name, input.Body.StartDate, input.Body.EndDate,
			input.Body.CoordinatorID, input.Body.TeamIDs, time.Now())
		if err != nil {
			return nil, toHumaError(err, "action plan", "create action plan")
		}

		if err := store.ActionPlans().Create(ctx, p); err != nil {
			return nil, toHumaError(err, "action plan", "create action plan")
		}
		reader.Invalidate(domain.KindActionPlan)

		return &ActionPlanOutput{Body: p}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-action-plans",
		Method:      http.MethodGet,
		Path:        "/action-plans",
		Summary:     "List action plans",
		Tags:        []string{"Action Plans"},
	}, func(ctx context.Context, input *ListActionPlansInput) (*ListActionPlansOutput, error) {
		var f domain.ActionPlanFilter
		if input.Status != "" {
			status, err := domain.ActionPlanRules.ParseStatus(input.Status)
			if err != nil {
				return nil, huma.Error400BadRequest("unknown action plan status: " + input.Status)
			}
			f.Status = status
		}
		if input.CoordinatorID != uuid.Nil {
			f.CoordinatorID = &input.CoordinatorID
		}

		var err error
		if f.From, err = parseInstant(input.From, "from"); err != nil {
			return nil, err
		}
		if f.To, err = parseInstant(input.To, "to"); err != nil {
			return nil, err
		}

		plans, err := store.ActionPlans().List(ctx, f)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list action plans", err)
		}

		return &ListActionPlansOutput{Body: plans}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-action-plan",
		Method:      http.MethodGet,
		Path:        "/action-plans/{id}",
		Summary:     "Get an action plan by ID",
		Tags:        []string{"Action Plans"},
	}, func(ctx context.Context, input *ActionPlanIDInput) (*ActionPlanOutput, error) {
		p, err := store.ActionPlans().GetByID(ctx, input.ID)
		if err != nil {
			return nil, toHumaError(err, "action plan", "get action plan")
		}

		return &ActionPlanOutput{Body: p}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-action-plan",
		Method:      http.MethodPut,
		Path:        "/action-plans/{id}",
		Summary:     "Update an action plan",
		Description: "Status and status history are not editable here; use the status endpoint.",
		Tags:        []string{"Action Plans"},
	}, func(ctx context.Context, input *UpdateActionPlanInput) (*ActionPlanOutput, error) {
		existing, err := store.ActionPlans().GetByID(ctx, input.ID)
		if err != nil {
			return nil, toHumaError(err, "action plan", "get action plan")
		}

		if input.Body.Name != "" {
			existing.Name = input.Body.Name
		}
		if input.Body.StartDate != nil {
			existing.StartDate = *input.Body.StartDate
		}
		if input.Body.EndDate != nil {
			existing.EndDate = *input.Body.EndDate
		}
		if existing.EndDate.Before(existing.StartDate) {
			return nil, toHumaError(domain.ErrInvalidDateRange, "action plan", "update action plan")
		}
		if input.Body.CoordinatorID != nil {
			existing.CoordinatorID = input.Body.CoordinatorID
		}
		if input.Body.TeamIDs != nil {
			existing.TeamIDs = *input.Body.TeamIDs
		}
		existing.UpdatedAt = time.Now()

		if err := store.ActionPlans().Update(ctx, existing); err != nil {
			return nil, toHumaError(err, "action plan", "update action plan")
		}
		reader.Invalidate(domain.KindActionPlan)

		return &ActionPlanOutput{Body: existing}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "set-action-plan-active",
		Method:      http.MethodPatch,
		Path:        "/action-plans/{id}/active",
		Summary:     "Activate or deactivate an action plan",
		Tags:        []string{"Action Plans"},
	}, func(ctx context.Context, input *SetActiveInput) (*ActionPlanOutput, error) {
		if err := store.ActionPlans().SetActive(ctx, input.ID, input.Body.Active); err != nil {
			return nil, toHumaError(err, "action plan", "update action plan")
		}
		reader.Invalidate(domain.KindActionPlan)

		p, err := store.ActionPlans().GetByID(ctx, input.ID)
		if err != nil {
			return nil, toHumaError(err, "action plan", "get action plan")
		}

		return &ActionPlanOutput{Body: p}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-action-plan",
		Method:      http.MethodDelete,
		Path:        "/action-plans/{id}",
		Summary:     "Delete an action plan and its status history",
		Tags:        []string{"Action Plans"},
	}, func(ctx context.Context, input *ActionPlanIDInput) (*struct{}, error) {
		if err := store.ActionPlans().Delete(ctx, input.ID); err != nil {
			return nil, toHumaError(err, "action plan", "delete action plan")
		}
		reader.Invalidate(domain.KindActionPlan)

		return nil, nil
	})
}
