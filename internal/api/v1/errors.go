package v1

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gosuda/plano/internal/domain"
	"github.com/gosuda/plano/internal/lifecycle"
	"github.com/gosuda/plano/internal/server/middleware"
)

// toHumaError maps domain failures to HTTP problems. what names the resource
// in not-found messages; action describes the operation in 500 messages.
func toHumaError(err error, what, action string) error {
	var rejection *lifecycle.RejectionError
	switch {
	case errors.As(err, &rejection):
		return huma.Error422UnprocessableEntity(rejection.Message)
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrUnknownKind):
		return huma.Error404NotFound(what + " not found")
	case errors.Is(err, domain.ErrConflict):
		return huma.Error409Conflict(what + " was modified concurrently, reload and retry")
	case errors.Is(err, domain.ErrTerminalStatus):
		return huma.Error409Conflict(what + " is in a terminal status")
	case errors.Is(err, domain.ErrUnknownStatus),
		errors.Is(err, domain.ErrJustificationRequired),
		errors.Is(err, domain.ErrInvalidDateRange):
		return huma.Error400BadRequest(err.Error())
	case errors.Is(err, domain.ErrForbidden):
		return huma.Error403Forbidden("insufficient permissions")
	default:
		return huma.Error500InternalServerError("failed to "+action, err)
	}
}

// actorFrom returns the authenticated user or a 401.
func actorFrom(ctx context.Context) (*domain.Actor, error) {
	actor, ok := middleware.ActorFromContext(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("authentication required")
	}
	return actor, nil
}

func isAdmin(ctx context.Context) bool {
	role, ok := middleware.RoleFromContext(ctx)
	return ok && role == middleware.RoleAdmin
}
