package repositories

import (
	"context"
	"time"

	"github.com/gitmaxhq/gitmax/internal/domain/entities"
)

// UserRepository provides access to user storage
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *entities.User) error

	// GetByID retrieves a user by internal ID
	GetByID(ctx context.Context, id string) (*entities.User, error)

	// GetByGitHubID retrieves a user by their GitHub account ID
	GetByGitHubID(ctx context.Context, githubID string) (*entities.User, error)

	// Update persists changes to an existing user
	Update(ctx context.Context, user *entities.User) error

	// UpdateLastSeen records the user's most recent login
	UpdateLastSeen(ctx context.Context, userID string, seenAt time.Time) error

	// ExistsByGitHubID checks whether a user exists for a GitHub account ID
	ExistsByGitHubID(ctx context.Context, githubID string) (bool, error)
}
