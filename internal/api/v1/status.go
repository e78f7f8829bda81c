package v1

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/gosuda/plano/internal/domain"
	"github.com/gosuda/plano/internal/lifecycle"
)

type EntityInput struct {
	Kind string    `path:"kind" enum:"task,action_plan" doc:"Entity kind"`
	ID   uuid.UUID `path:"id" doc:"Entity ID"`
}

type ChangeStatusInput struct {
	Kind string    `path:"kind" enum:"task,action_plan" doc:"Entity kind"`
	ID   uuid.UUID `path:"id" doc:"Entity ID"`
	Body struct {
		Status        string `json:"status" minLength:"1" doc:"Target status"`
		Justification string `json:"justification" minLength:"1" maxLength:"2000" doc:"Why the status changes"`
	}
}

type StatusChangeBody struct {
	Entity  *domain.Tracked       `json:"entity"`
	Entry   domain.StatusLogEntry `json:"entry"`
	Note    string                `json:"note,omitempty"`
	Overdue bool                  `json:"overdue,omitempty"`
}

type ChangeStatusOutput struct {
	Body StatusChangeBody
}

type CheckStatusInput struct {
	Kind string    `path:"kind" enum:"task,action_plan" doc:"Entity kind"`
	ID   uuid.UUID `path:"id" doc:"Entity ID"`
	To   string    `query:"to" required:"true" doc:"Proposed status"`
}

type CheckStatusOutput struct {
	Body domain.Validation
}

type StatusOption struct {
	Status domain.Status `json:"status"`
	Label  string        `json:"label"`
	Color  domain.Color  `json:"color"`
}

type AvailableStatusesBody struct {
	Current  StatusOption   `json:"current"`
	Statuses []StatusOption `json:"statuses"`
}

type AvailableStatusesOutput struct {
	Body AvailableStatusesBody
}

type HistoryOutput struct {
	Body []lifecycle.HistoryLine
}

type ListHistoryInput struct {
	Kind string `query:"kind" enum:"task,action_plan" doc:"Restrict to one entity kind"`
}

type StatusRulesInput struct {
	Kind string `path:"kind" enum:"task,action_plan" doc:"Entity kind"`
}

type StatusRule struct {
	StatusOption
	Terminal bool            `json:"terminal"`
	Next     []domain.Status `json:"next"`
}

type StatusRulesBody struct {
	Kind     domain.Kind  `json:"kind"`
	Label    string       `json:"label"`
	Statuses []StatusRule `json:"statuses"`
}

type StatusRulesOutput struct {
	Body StatusRulesBody
}

func optionOf(rules *domain.Rules, s domain.Status) StatusOption {
	return StatusOption{Status: s, Label: rules.Label(s), Color: rules.Color(s)}
}

// kindsOf resolves an optional kind filter; empty means every kind.
func kindsOf(raw string) ([]domain.Kind, error) {
	if raw == "" {
		return domain.Kinds(), nil
	}
	kind, err := domain.ParseKind(raw)
	if err != nil {
		return nil, huma.Error400BadRequest("unknown kind: " + raw)
	}
	return []domain.Kind{kind}, nil
}

func RegisterStatusRoutes(api huma.API, svc StatusService, reader StatusReader) {
	huma.Register(api, huma.Operation{
		OperationID: "change-status",
		Method:      http.MethodPatch,
		Path:        "/{kind}/{id}/status",
		Summary:     "Change the status of a task or action plan",
		Description: "Validates the transition, appends an entry to the status log and notifies subscribers. " +
			"An in-progress entity past its end date is first marked delayed automatically.",
		Tags: []string{"Status"},
	}, func(ctx context.Context, input *ChangeStatusInput) (*ChangeStatusOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, err
		}

		kind := domain.Kind(input.Kind)
		res, err := svc.Apply(ctx, kind, input.ID, lifecycle.TransitionRequest{
			To:            domain.Status(input.Body.Status),
			Justification: input.Body.Justification,
			Actor:         actor,
		})
		if err != nil {
			return nil, toHumaError(err, kind.Label(), "change status")
		}

		return &ChangeStatusOutput{Body: StatusChangeBody{
			Entity:  res.Entity,
			Entry:   res.Entry,
			Note:    res.Note,
			Overdue: res.Overdue,
		}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "check-status",
		Method:      http.MethodGet,
		Path:        "/{kind}/{id}/status/check",
		Summary:     "Check whether a status change would be accepted",
		Tags:        []string{"Status"},
	}, func(ctx context.Context, input *CheckStatusInput) (*CheckStatusOutput, error) {
		kind := domain.Kind(input.Kind)
		v, err := svc.Check(ctx, kind, input.ID, domain.Status(input.To))
		if err != nil {
			return nil, toHumaError(err, kind.Label(), "check status")
		}

		return &CheckStatusOutput{Body: v}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "available-statuses",
		Method:      http.MethodGet,
		Path:        "/{kind}/{id}/available-statuses",
		Summary:     "List the statuses reachable from the current one",
		Tags:        []string{"Status"},
	}, func(ctx context.Context, input *EntityInput) (*AvailableStatusesOutput, error) {
		kind := domain.Kind(input.Kind)
		rules, ok := domain.RulesFor(kind)
		if !ok {
			return nil, huma.Error404NotFound("unknown kind")
		}

		ent, err := reader.Get(ctx, kind, input.ID)
		if err != nil {
			return nil, toHumaError(err, kind.Label(), "get status")
		}

		next := rules.AvailableStatuses(ent.Status)
		body := AvailableStatusesBody{
			Current:  optionOf(rules, ent.Status),
			Statuses: make([]StatusOption, 0, len(next)),
		}
		for _, s := range next {
			body.Statuses = append(body.Statuses, optionOf(rules, s))
		}

		return &AvailableStatusesOutput{Body: body}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-entity-history",
		Method:      http.MethodGet,
		Path:        "/{kind}/{id}/history",
		Summary:     "Status history of one entity, newest first",
		Tags:        []string{"Status"},
	}, func(ctx context.Context, input *EntityInput) (*HistoryOutput, error) {
		kind := domain.Kind(input.Kind)
		ent, err := reader.Get(ctx, kind, input.ID)
		if err != nil {
			return nil, toHumaError(err, kind.Label(), "get history")
		}

		lines := lifecycle.BuildHistory(lifecycle.SourceOf(ent))
		if lines == nil {
			lines = []lifecycle.HistoryLine{}
		}

		return &HistoryOutput{Body: lines}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-history",
		Method:      http.MethodGet,
		Path:        "/history",
		Summary:     "Pooled status history across entities, newest first",
		Tags:        []string{"Status"},
	}, func(ctx context.Context, input *ListHistoryInput) (*HistoryOutput, error) {
		kinds, err := kindsOf(input.Kind)
		if err != nil {
			return nil, err
		}

		var sources []lifecycle.HistorySource
		for _, kind := range kinds {
			ents, err := reader.List(ctx, kind)
			if err != nil {
				return nil, huma.Error500InternalServerError("failed to list "+kind.Label(), err)
			}
			for _, ent := range ents {
				sources = append(sources, lifecycle.SourceOf(ent))
			}
		}

		lines := lifecycle.BuildHistory(sources...)
		if lines == nil {
			lines = []lifecycle.HistoryLine{}
		}

		return &HistoryOutput{Body: lines}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-status-rules",
		Method:      http.MethodGet,
		Path:        "/status-rules/{kind}",
		Summary:     "Status labels, colors and transition graph of a kind",
		Tags:        []string{"Status"},
	}, func(_ context.Context, input *StatusRulesInput) (*StatusRulesOutput, error) {
		kind := domain.Kind(input.Kind)
		rules, ok := domain.RulesFor(kind)
		if !ok {
			return nil, huma.Error404NotFound("unknown kind")
		}

		body := StatusRulesBody{Kind: kind, Label: kind.Label()}
		for _, s := range rules.Statuses() {
			body.Statuses = append(body.Statuses, StatusRule{
				StatusOption: optionOf(rules, s),
				Terminal:     rules.IsTerminal(s),
				Next:         rules.AvailableStatuses(s),
			})
		}

		return &StatusRulesOutput{Body: body}, nil
	})
}
