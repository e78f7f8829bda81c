package server

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	v1 "github.com/gosuda/plano/internal/api/v1"
	"github.com/gosuda/plano/internal/api/ws"
)

func registerAPIRoutes(api huma.API, deps Deps) {
	v1.RegisterTaskRoutes(api, deps.Store, deps.Reader)
	v1.RegisterActionPlanRoutes(api, deps.Store, deps.Reader)
	v1.RegisterExtensionRoutes(api, deps.Store, deps.Reader)
	v1.RegisterStatusRoutes(api, deps.Status, deps.Reader)
	v1.RegisterDashboardRoutes(api, deps.Reader)
	v1.RegisterMonitorRoutes(api, deps.Monitors)
}

func registerWSRoutes(r chi.Router, hub *ws.Hub) {
	r.Get("/status", hub.ServeStatus)
}
