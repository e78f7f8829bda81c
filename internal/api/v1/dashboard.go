package v1

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gosuda/plano/internal/domain"
	"github.com/gosuda/plano/internal/lifecycle"
)

type StatusCountsInput struct {
	Kind string `query:"kind" enum:"task,action_plan" doc:"Restrict to one entity kind"`
}

type KindCounts struct {
	Kind   domain.Kind             `json:"kind"`
	Label  string                  `json:"label"`
	Total  int                     `json:"total"`
	Counts []lifecycle.StatusCount `json:"counts"`
}

type StatusCountsOutput struct {
	Body []KindCounts
}

func RegisterDashboardRoutes(api huma.API, reader StatusReader) {
	huma.Register(api, huma.Operation{
		OperationID: "status-counts",
		Method:      http.MethodGet,
		Path:        "/dashboard/status-counts",
		Summary:     "Count active entities per status",
		Description: "Dashboards refetch this when a status_changed event arrives on /ws/status.",
		Tags:        []string{"Dashboard"},
	}, func(ctx context.Context, input *StatusCountsInput) (*StatusCountsOutput, error) {
		kinds, err := kindsOf(input.Kind)
		if err != nil {
			return nil, err
		}

		out := make([]KindCounts, 0, len(kinds))
		for _, kind := range kinds {
			rules, _ := domain.RulesFor(kind)
			ents, err := reader.List(ctx, kind)
			if err != nil {
				return nil, huma.Error500InternalServerError("failed to list "+kind.Label(), err)
			}

			kc := KindCounts{Kind: kind, Label: kind.Label(), Counts: lifecycle.CountByStatus(rules, ents)}
			for _, c := range kc.Counts {
				kc.Total += c.Count
			}
			out = append(out, kc)
		}

		return &StatusCountsOutput{Body: out}, nil
	})
}
