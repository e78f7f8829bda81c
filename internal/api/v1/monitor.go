package v1

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gosuda/plano/internal/domain"
	"github.com/gosuda/plano/internal/lifecycle"
)

type ScanInput struct {
	Kind string `path:"kind" enum:"task,action_plan,all" doc:"Entity kind, or all"`
}

type ScanOutput struct {
	Body []lifecycle.ScanReport
}

func RegisterMonitorRoutes(api huma.API, monitors MonitorRunner) {
	huma.Register(api, huma.Operation{
		OperationID: "run-monitor-scan",
		Method:      http.MethodPost,
		Path:        "/monitor/{kind}/scan",
		Summary:     "Run a delay scan now",
		Tags:        []string{"Monitor"},
	}, func(ctx context.Context, input *ScanInput) (*ScanOutput, error) {
		if !isAdmin(ctx) {
			return nil, huma.Error403Forbidden("admin role required")
		}

		var kind domain.Kind
		if input.Kind != "all" {
			kind = domain.Kind(input.Kind)
		}

		reports := monitors.Scan(ctx, kind)
		if reports == nil {
			reports = []lifecycle.ScanReport{}
		}

		return &ScanOutput{Body: reports}, nil
	})
}
