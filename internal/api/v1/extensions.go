package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/gosuda/plano/internal/domain"
)

type RequestExtensionInput struct {
	ID   uuid.UUID `path:"id" doc:"Action plan ID"`
	Body struct {
		NewEndDate time.Time `json:"new_end_date" doc:"Requested end date, after the current one"`
		Reason     string    `json:"reason" minLength:"1" maxLength:"2000" doc:"Why more time is needed"`
		Comments   string    `json:"comments,omitempty" maxLength:"2000" doc:"Additional comments"`
	}
}

type ExtensionOutput struct {
	Body *domain.TimeExtension
}

type ListExtensionsOutput struct {
	Body []*domain.TimeExtension
}

type DecideExtensionInput struct {
	ID       uuid.UUID `path:"id" doc:"Time extension ID"`
	Decision string    `path:"decision" enum:"approve,reject" doc:"Decision"`
}

func RegisterExtensionRoutes(api huma.API, store DataStore, reader StatusReader) {
	huma.Register(api, huma.Operation{
		OperationID: "request-extension",
		Method:      http.MethodPost,
		Path:        "/action-plans/{id}/extensions",
		Summary:     "Request more time for an action plan",
		Tags:        []string{"Time Extensions"},
	}, func(ctx context.Context, input *RequestExtensionInput) (*ExtensionOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, err
		}

		plan, err := store.ActionPlans().GetByID(ctx, input.ID)
		if err != nil {
			return nil, toHumaError(err, "action plan", "get action plan")
		}

		ext, err := domain.NewTimeExtension(plan, input.Body.NewEndDate,
			input.Body.Reason, input.Body.Comments, actor.ID, time.Now())
		if err != nil {
			return nil, toHumaError(err, "time extension", "request extension")
		}

		if err := store.TimeExtensions().Create(ctx, ext); err != nil {
			return nil, toHumaError(err, "time extension", "request extension")
		}

		return &ExtensionOutput{Body: ext}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-extensions",
		Method:      http.MethodGet,
		Path:        "/action-plans/{id}/extensions",
		Summary:     "List time extension requests of an action plan",
		Tags:        []string{"Time Extensions"},
	}, func(ctx context.Context, input *ActionPlanIDInput) (*ListExtensionsOutput, error) {
		exts, err := store.TimeExtensions().ListByActionPlan(ctx, input.ID)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list time extensions", err)
		}
		if exts == nil {
			exts = []*domain.TimeExtension{}
		}

		return &ListExtensionsOutput{Body: exts}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "decide-extension",
		Method:      http.MethodPost,
		Path:        "/extensions/{id}/{decision}",
		Summary:     "Approve or reject a time extension",
		Description: "Only admins and the plan's coordinator may decide. Approval moves the plan's end date; its status is left alone.",
		Tags:        []string{"Time Extensions"},
	}, func(ctx context.Context, input *DecideExtensionInput) (*ExtensionOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, err
		}

		ext, err := store.TimeExtensions().GetByID(ctx, input.ID)
		if err != nil {
			return nil, toHumaError(err, "time extension", "get time extension")
		}

		plan, err := store.ActionPlans().GetByID(ctx, ext.ActionPlanID)
		if err != nil {
			return nil, toHumaError(err, "action plan", "get action plan")
		}
		coordinator := plan.CoordinatorID != nil && *plan.CoordinatorID == actor.ID
		if !coordinator && !isAdmin(ctx) {
			return nil, toHumaError(domain.ErrForbidden, "time extension", "decide extension")
		}

		if err := ext.Decide(input.Decision == "approve", actor.ID, time.Now()); err != nil {
			return nil, huma.Error409Conflict("time extension is already " + string(ext.Status))
		}

		if err := store.TimeExtensions().Decide(ctx, ext); err != nil {
			return nil, toHumaError(err, "time extension", "decide extension")
		}
		if ext.Status == domain.ExtensionApproved {
			reader.Invalidate(domain.KindActionPlan)
		}

		return &ExtensionOutput{Body: ext}, nil
	})
}
