package api

import (
	"context"

	"github.com/terra-clan/roadmap-engine/internal/models"
)

type contextKey string

const userContextKey contextKey = "session_user"

// UserFromContext extracts the session user from context
func UserFromContext(ctx context.Context) *models.User {
	user, ok := ctx.Value(userContextKey).(*models.User)
	if !ok {
		return nil
	}
	return user
}

// ContextWithUser adds the session user to context
func ContextWithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}
