package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/gosuda/plano/internal/domain"
)

type contextKey string

const (
	ContextKeyUserID   contextKey = "user_id"
	ContextKeyUserName contextKey = "user_name"
	ContextKeyUserRole contextKey = "role"
)

func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	v, ok := ctx.Value(ContextKeyUserID).(uuid.UUID)
	return v, ok
}

func UserNameFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ContextKeyUserName).(string)
	return v, ok
}

func RoleFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ContextKeyUserRole).(string)
	return v, ok
}

// ActorFromContext returns the authenticated user as a transition actor.
func ActorFromContext(ctx context.Context) (*domain.Actor, bool) {
	id, ok := UserIDFromContext(ctx)
	if !ok || id == uuid.Nil {
		return nil, false
	}
	name, _ := UserNameFromContext(ctx)
	return &domain.Actor{ID: id, Name: name}, true
}

// WithActor stores the acting user in ctx the way Auth does.
func WithActor(ctx context.Context, actor domain.Actor, role string) context.Context {
	ctx = context.WithValue(ctx, ContextKeyUserID, actor.ID)
	ctx = context.WithValue(ctx, ContextKeyUserName, actor.Name)
	ctx = context.WithValue(ctx, ContextKeyUserRole, role)
	return ctx
}
