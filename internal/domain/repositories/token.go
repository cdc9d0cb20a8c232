package repositories

import (
	"context"
	"time"

	"github.com/gitmaxhq/gitmax/internal/domain/entities"
)

// RefreshTokenRepository provides access to refresh token records
type RefreshTokenRepository interface {
	// Create stores a new refresh token record
	Create(ctx context.Context, token *entities.RefreshToken) error

	// GetByID retrieves a refresh token record by ID
	GetByID(ctx context.Context, id string) (*entities.RefreshToken, error)

	// Revoke marks a refresh token record as revoked; revoking an already
	// revoked or missing record is not an error
	Revoke(ctx context.Context, id string) error

	// RevokeAllForUser revokes every refresh token record for a user
	RevokeAllForUser(ctx context.Context, userID string) error

	// DeleteExpired removes records that expired before the cutoff and
	// returns the number deleted
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}
