package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/gitmaxhq/gitmax/internal/domain/entities"
	"github.com/gitmaxhq/gitmax/internal/domain/repositories"
	"github.com/gitmaxhq/gitmax/internal/pkg/idgen"
	"github.com/gitmaxhq/gitmax/internal/pkg/metrics"
)

// UserRepository implements the UserRepository interface for PostgreSQL
type UserRepository struct {
	db  *sqlx.DB
	log *slog.Logger
}

// NewUserRepository creates a new PostgreSQL user repository
func NewUserRepository(db *sqlx.DB) repositories.UserRepository {
	return &UserRepository{
		db:  db,
		log: slog.Default().With(slog.String("repo", "user")),
	}
}

// userRow represents a user as stored in the database
type userRow struct {
	ID          string         `db:"id"`
	GitHubID    string         `db:"github_id"`
	Username    string         `db:"username"`
	Email       sql.NullString `db:"email"`
	AvatarURL   sql.NullString `db:"avatar_url"`
	GitHubURL   sql.NullString `db:"github_url"`
	PublicRepos int            `db:"public_repos"`
	Followers   int            `db:"followers"`
	Following   int            `db:"following"`
	GitHubToken sql.NullString `db:"github_token"`
	Disabled    bool           `db:"disabled"` // database stores 'disabled', not 'is_active'
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
	LastSeen    sql.NullTime   `db:"last_seen"`
}

// toEntity converts a userRow to a domain entity
func (r *userRow) toEntity() *entities.User {
	user := &entities.User{
		ID:          r.ID,
		GitHubID:    r.GitHubID,
		Username:    r.Username,
		PublicRepos: r.PublicRepos,
		Followers:   r.Followers,
		Following:   r.Following,
		IsActive:    !r.Disabled, // invert the disabled flag to get IsActive
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}

	if r.Email.Valid {
		user.Email = &r.Email.String
	}

	if r.AvatarURL.Valid {
		user.AvatarURL = &r.AvatarURL.String
	}

	if r.GitHubURL.Valid {
		user.GitHubURL = &r.GitHubURL.String
	}

	if r.GitHubToken.Valid {
		user.GitHubToken = &r.GitHubToken.String
	}

	if r.LastSeen.Valid {
		user.LastSeen = &r.LastSeen.Time
	}

	return user
}

// userRowFromEntity converts a domain entity to a userRow
func userRowFromEntity(user *entities.User) *userRow {
	row := &userRow{
		ID:          user.ID,
		GitHubID:    user.GitHubID,
		Username:    user.Username,
		PublicRepos: user.PublicRepos,
		Followers:   user.Followers,
		Following:   user.Following,
		Disabled:    !user.IsActive, // invert IsActive to get disabled flag
		CreatedAt:   user.CreatedAt,
		UpdatedAt:   user.UpdatedAt,
	}

	if user.Email != nil {
		row.Email = sql.NullString{String: *user.Email, Valid: true}
	}

	if user.AvatarURL != nil {
		row.AvatarURL = sql.NullString{String: *user.AvatarURL, Valid: true}
	}

	if user.GitHubURL != nil {
		row.GitHubURL = sql.NullString{String: *user.GitHubURL, Valid: true}
	}

	if user.GitHubToken != nil {
		row.GitHubToken = sql.NullString{String: *user.GitHubToken, Valid: true}
	}

	if user.LastSeen != nil {
		row.LastSeen = sql.NullTime{Time: *user.LastSeen, Valid: true}
	}

	return row
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *entities.User) error {
	start := time.Now()
	var err error
	defer func() {
		metrics.RecordDBOperation("user", "create", time.Since(start), 1, err)
	}()

	if user.ID == "" {
		user.ID = idgen.GenerateID()
	}

	r.log.Debug("creating user",
		slog.String("id", user.ID),
		slog.String("github_id", user.GitHubID),
		slog.String("username", user.Username))

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	row := userRowFromEntity(user)

	query := `INSERT INTO users (
			id, github_id, username, email, avatar_url, github_url,
			public_repos, followers, following, github_token,
			disabled, created_at, updated_at, last_seen
		) VALUES (
			:id, :github_id, :username, :email, :avatar_url, :github_url,
			:public_repos, :followers, :following, :github_token,
			:disabled, :created_at, :updated_at, :last_seen
		)`

	_, err = r.db.NamedExecContext(ctx, query, row)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by their ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*entities.User, error) {
	start := time.Now()
	var err error
	var rowCount int64
	defer func() {
		metrics.RecordDBOperation("user", "get_by_id", time.Since(start), rowCount, err)
	}()

	var row userRow
	query := `
		SELECT id, github_id, username, email, avatar_url, github_url,
		       public_repos, followers, following, github_token,
		       disabled, created_at, updated_at, last_seen
		FROM users
		WHERE id = $1`

	err = r.db.GetContext(ctx, &row, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			err = repositories.ErrUserNotFound
			return nil, err
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if row.Disabled {
		err = repositories.ErrUserInactive
		return nil, err
	}

	rowCount = 1
	return row.toEntity(), nil
}

// GetByGitHubID retrieves a user by their GitHub account ID
func (r *UserRepository) GetByGitHubID(ctx context.Context, githubID string) (*entities.User, error) {
	start := time.Now()
	var err error
	var rowCount int64
	defer func() {
		metrics.RecordDBOperation("user", "get_by_github_id", time.Since(start), rowCount, err)
	}()

	var row userRow
	query := `
		SELECT id, github_id, username, email, avatar_url, github_url,
		       public_repos, followers, following, github_token,
		       disabled, created_at, updated_at, last_seen
		FROM users
		WHERE github_id = $1`

	err = r.db.GetContext(ctx, &row, query, githubID)
	if err != nil {
		if err == sql.ErrNoRows {
			err = repositories.ErrUserNotFound
			return nil, err
		}
		return nil, fmt.Errorf("failed to get user by github id: %w", err)
	}

	if row.Disabled {
		err = repositories.ErrUserInactive
		return nil, err
	}

	rowCount = 1
	return row.toEntity(), nil
}

// Update an existing user
func (r *UserRepository) Update(ctx context.Context, user *entities.User) error {
	start := time.Now()
	var err error
	var rowsAffected int64
	defer func() {
		metrics.RecordDBOperation("user", "update", time.Since(start), rowsAffected, err)
	}()

	r.log.Debug("updating user",
		slog.String("id", user.ID),
		slog.String("username", user.Username))

	user.UpdatedAt = time.Now()

	row := userRowFromEntity(user)

	query := `
		UPDATE users SET
			username = :username,
			email = :email,
			avatar_url = :avatar_url,
			github_url = :github_url,
			public_repos = :public_repos,
			followers = :followers,
			following = :following,
			github_token = :github_token,
			disabled = :disabled,
			updated_at = :updated_at
		WHERE id = :id`

	result, err := r.db.NamedExecContext(ctx, query, row)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	rowsAffected, err = result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		err = repositories.ErrUserNotFound
		return err
	}

	return nil
}

// UpdateLastSeen updates the user's last seen timestamp
func (r *UserRepository) UpdateLastSeen(ctx context.Context, userID string, seenAt time.Time) error {
	start := time.Now()
	var err error
	var rowsAffected int64
	defer func() {
		metrics.RecordDBOperation("user", "update_last_seen", time.Since(start), rowsAffected, err)
	}()

	query := `UPDATE users SET last_seen = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.ExecContext(ctx, query, seenAt, time.Now(), userID)
	if err != nil {
		return fmt.Errorf("failed to update last seen: %w", err)
	}

	rowsAffected, err = result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		err = repositories.ErrUserNotFound
		return err
	}

	return nil
}

// ExistsByGitHubID checks if a user exists for a GitHub account ID
func (r *UserRepository) ExistsByGitHubID(ctx context.Context, githubID string) (bool, error) {
	start := time.Now()
	var err error
	var rowCount int64
	defer func() {
		metrics.RecordDBOperation("user", "exists_by_github_id", time.Since(start), rowCount, err)
	}()

	var count int
	query := `SELECT COUNT(*) FROM users WHERE github_id = $1`

	err = r.db.GetContext(ctx, &count, query, githubID)
	if err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}

	rowCount = int64(count)
	return count > 0, nil
}
