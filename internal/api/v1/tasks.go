package v1

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/gosuda/plano/internal/domain"
)

type CreateTaskInput struct {
	Body struct {
		Name         string     `json:"name" minLength:"1" maxLength:"500" doc:"Task name"`
		Description  string     `json:"description,omitempty" doc:"Task description"`
		StartDate    time.Time  `json:"start_date" doc:"Planned start"`
		EndDate      time.Time  `json:"end_date" doc:"Planned end, not before start_date"`
		AssigneeID   *uuid.UUID `json:"assignee_id,omitempty" doc:"Assigned user ID"`
		ActionPlanID *uuid.UUID `json:"action_plan_id,omitempty" doc:"Parent action plan ID"`
	}
}

type TaskOutput struct {
	Body *domain.Task
}

type ListTasksInput struct {
	Status       string    `query:"status" doc:"Filter by status"`
	AssigneeID   uuid.UUID `query:"assignee_id" doc:"Filter by assignee"`
	ActionPlanID uuid.UUID `query:"action_plan_id" doc:"Filter by action plan"`
}

type ListTasksOutput struct {
	Body []*domain.Task
}

type TaskIDInput struct {
	ID uuid.UUID `path:"id" doc:"Task ID"`
}

type UpdateTaskInput struct {
	ID   uuid.UUID `path:"id" doc:"Task ID"`
	Body struct {
		Name         string     `json:"name,omitempty" maxLength:"500" doc:"Task name"`
		Description  *string    `json:"description,omitempty" doc:"Task description"`
		StartDate    *time.Time `json:"start_date,omitempty" doc:"Planned start"`
		EndDate      *time.Time `json:"end_date,omitempty" doc:"Planned end"`
		AssigneeID   *uuid.UUID `json:"assignee_id,omitempty" doc:"Assigned user ID"`
		ActionPlanID *uuid.UUID `json:"action_plan_id,omitempty" doc:"Parent action plan ID"`
	}
}

type SetActiveInput struct {
	ID   uuid.UUID `path:"id" doc:"Entity ID"`
	Body struct {
		Active bool `json:"active" doc:"Whether the entity is active"`
	}
}

func RegisterTaskRoutes(api huma.API, store DataStore, reader StatusReader) {
	huma.Register(api, huma.Operation{
		OperationID: "create-task",
		Method:      http.MethodPost,
		Path:        "/tasks",
		Summary:     "Create a new task",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *CreateTaskInput) (*TaskOutput, error) {
		if input.Body.ActionPlanID != nil {
			if _, err := store.ActionPlans().GetByID(ctx, *input.Body.ActionPlanID); err != nil {
				return nil, toHumaError(err, "action plan", "validate action plan")
			}
		}

		t, err := domain.NewTask(input.Body.Name, input.Body.Description,
			input.Body.StartDate, input.Body.EndDate,
			input.Body.AssigneeID, input.Body.ActionPlanID, time.Now())
		if err != nil {
			return nil, toHumaError(err, "task", "create task")
		}

		if err := store.Tasks().Create(ctx, t); err != nil {
			return nil, toHumaError(err, "task", "create task")
		}
		reader.Invalidate(domain.KindTask)

		return &TaskOutput{Body: t}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-tasks",
		Method:      http.MethodGet,
		Path:        "/tasks",
		Summary:     "List tasks",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *ListTasksInput) (*ListTasksOutput, error) {
		var f domain.TaskFilter
		if input.Status != "" {
			status, err := domain.TaskRules.ParseStatus(input.Status)
			if err != nil {
				return nil, huma.Error400BadRequest("unknown task status: " + input.Status)
			}
			f.Status = status
		}
		if input.AssigneeID != uuid.Nil {
			f.AssigneeID = &input.AssigneeID
		}
		if input.ActionPlanID != uuid.Nil {
			f.ActionPlanID = &input.ActionPlanID
		}

		tasks, err := store.Tasks().List(ctx, f)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list tasks", err)
		}

		return &ListTasksOutput{Body: tasks}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-task",
		Method:      http.MethodGet,
		Path:        "/tasks/{id}",
		Summary:     "Get a task by ID",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *TaskIDInput) (*TaskOutput, error) {
		t, err := store.Tasks().GetByID(ctx, input.ID)
		if err != nil {
			return nil, toHumaError(err, "task", "get task")
		}

		return &TaskOutput{Body: t}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-task",
		Method:      http.MethodPut,
		Path:        "/tasks/{id}",
		Summary:     "Update a task",
		Description: "Status and status history are not editable here; use the status endpoint.",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *UpdateTaskInput) (*TaskOutput, error) {
		existing, err := store.Tasks().GetByID(ctx, input.ID)
		if err != nil {
			return nil, toHumaError(err, "task", "get task")
		}
		if !existing.Editable() {
			return nil, toHumaError(domain.ErrTerminalStatus, "task", "update task")
		}

		if input.Body.Name != "" {
			existing.Name = input.Body.Name
		}
		if input.Body.Description != nil {
			existing.Description = *input.Body.Description
		}
		if input.Body.StartDate != nil {
			existing.StartDate = *input.Body.StartDate
		}
		if input.Body.EndDate != nil {
			existing.EndDate = *input.Body.EndDate
		}
		if existing.EndDate.Before(existing.StartDate) {
			return nil, toHumaError(domain.ErrInvalidDateRange, "task", "update task")
		}
		if input.Body.AssigneeID != nil {
			existing.AssigneeID = input.Body.AssigneeID
		}
		if input.Body.ActionPlanID != nil {
			if _, err := store.ActionPlans().GetByID(ctx, *input.Body.ActionPlanID); err != nil {
				return nil, toHumaError(err, "action plan", "validate action plan")
			}
			existing.ActionPlanID = input.Body.ActionPlanID
		}
		existing.UpdatedAt = time.Now()

		if err := store.Tasks().Update(ctx, existing); err != nil {
			return nil, toHumaError(err, "task", "update task")
		}
		reader.Invalidate(domain.KindTask)

		return &TaskOutput{Body: existing}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "set-task-active",
		Method:      http.MethodPatch,
		Path:        "/tasks/{id}/active",
		Summary:     "Activate or deactivate a task",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *SetActiveInput) (*TaskOutput, error) {
		if err := store.Tasks().SetActive(ctx, input.ID, input.Body.Active); err != nil {
			return nil, toHumaError(err, "task", "update task")
		}
		reader.Invalidate(domain.KindTask)

		t, err := store.Tasks().GetByID(ctx, input.ID)
		if err != nil {
			return nil, toHumaError(err, "task", "get task")
		}

		return &TaskOutput{Body: t}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-task",
		Method:      http.MethodDelete,
		Path:        "/tasks/{id}",
		Summary:     "Delete a task and its status history",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *TaskIDInput) (*struct{}, error) {
		existing, err := store.Tasks().GetByID(ctx, input.ID)
		if err != nil {
			return nil, toHumaError(err, "task", "get task")
		}
		if !existing.Editable() {
			return nil, toHumaError(domain.ErrTerminalStatus, "task", "delete task")
		}

		if err := store.Tasks().Delete(ctx, input.ID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("task not found")
			}
			return nil, huma.Error500InternalServerError("failed to delete task", err)
		}
		reader.Invalidate(domain.KindTask)

		return nil, nil
	})
}
