package auth

import (
	"context"
	"errors"

	"github.com/gitmaxhq/gitmax/internal/domain/entities"
)

// ErrUnauthorized indicates no authenticated user is present
var ErrUnauthorized = errors.New("unauthorized")

// contextKey is the key for storing user info in context
type contextKey string

const userContextKey contextKey = "user"

// GetUserFromContext extracts the authenticated user from the context
func GetUserFromContext(ctx context.Context) (*entities.User, error) {
	user, ok := ctx.Value(userContextKey).(*entities.User)
	if !ok || user == nil {
		return nil, ErrUnauthorized
	}
	return user, nil
}

// SetUserInContext stores the authenticated user in the context
func SetUserInContext(ctx context.Context, user *entities.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}
