package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/gitmaxhq/gitmax/internal/domain/entities"
	"github.com/gitmaxhq/gitmax/internal/domain/repositories"
	"github.com/gitmaxhq/gitmax/internal/pkg/metrics"
)

// RefreshTokenRepository implements the RefreshTokenRepository interface for PostgreSQL
type RefreshTokenRepository struct {
	db *sqlx.DB
}

// NewRefreshTokenRepository creates a new PostgreSQL refresh token repository
func NewRefreshTokenRepository(db *sqlx.DB) repositories.RefreshTokenRepository {
	return &RefreshTokenRepository{
		db: db,
	}
}

// refreshTokenRow represents a refresh token as stored in the database
type refreshTokenRow struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	TokenHash string    `db:"token_hash"`
	ExpiresAt time.Time `db:"expires_at"`
	Revoked   bool      `db:"revoked"`
	CreatedAt time.Time `db:"created_at"`
}

// toEntity converts a refreshTokenRow to a domain entity
func (r *refreshTokenRow) toEntity() *entities.RefreshToken {
	return &entities.RefreshToken{
		ID:        r.ID,
		UserID:    r.UserID,
		TokenHash: r.TokenHash,
		ExpiresAt: r.ExpiresAt,
		Revoked:   r.Revoked,
		CreatedAt: r.CreatedAt,
	}
}

// Create creates a new refresh token record
func (r *RefreshTokenRepository) Create(ctx context.Context, token *entities.RefreshToken) error {
	start := time.Now()
	var err error
	defer func() {
		metrics.RecordDBOperation("refresh_token", "create", time.Since(start), 1, err)
	}()

	if token.ID == "" {
		token.ID = uuid.NewString()
	}

	token.CreatedAt = time.Now()

	row := &refreshTokenRow{
		ID:        token.ID,
		UserID:    token.UserID,
		TokenHash: token.TokenHash,
		ExpiresAt: token.ExpiresAt,
		Revoked:   token.Revoked,
		CreatedAt: token.CreatedAt,
	}

	query := `INSERT INTO refresh_tokens (
			id, user_id, token_hash, expires_at, revoked, created_at
		) VALUES (
			:id, :user_id, :token_hash, :expires_at, :revoked, :created_at
		)`

	_, err = r.db.NamedExecContext(ctx, query, row)
	if err != nil {
		return fmt.Errorf("failed to create refresh token: %w", err)
	}

	return nil
}

// GetByID retrieves a refresh token by its ID
func (r *RefreshTokenRepository) GetByID(ctx context.Context, id string) (*entities.RefreshToken, error) {
	start := time.Now()
	var err error
	var rowCount int64
	defer func() {
		metrics.RecordDBOperation("refresh_token", "get_by_id", time.Since(start), rowCount, err)
	}()

	var row refreshTokenRow
	query := `
		SELECT id, user_id, token_hash, expires_at, revoked, created_at
		FROM refresh_tokens
		WHERE id = $1`

	err = r.db.GetContext(ctx, &row, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			err = repositories.ErrTokenNotFound
			return nil, err
		}
		return nil, fmt.Errorf("failed to get refresh token: %w", err)
	}

	rowCount = 1
	return row.toEntity(), nil
}

// Revoke marks a refresh token as revoked. Revoking an already revoked or
// missing token is not an error.
func (r *RefreshTokenRepository) Revoke(ctx context.Context, id string) error {
	start := time.Now()
	var err error
	var rowsAffected int64
	defer func() {
		metrics.RecordDBOperation("refresh_token", "revoke", time.Since(start), rowsAffected, err)
	}()

	query := `UPDATE refresh_tokens SET revoked = true WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}

	rowsAffected, _ = result.RowsAffected()
	return nil
}

// RevokeAllForUser revokes every live refresh token belonging to a user
func (r *RefreshTokenRepository) RevokeAllForUser(ctx context.Context, userID string) error {
	start := time.Now()
	var err error
	var rowsAffected int64
	defer func() {
		metrics.RecordDBOperation("refresh_token", "revoke_all_for_user", time.Since(start), rowsAffected, err)
	}()

	query := `UPDATE refresh_tokens SET revoked = true WHERE user_id = $1 AND revoked = false`

	result, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("failed to revoke refresh tokens for user: %w", err)
	}

	rowsAffected, _ = result.RowsAffected()
	return nil
}

// DeleteExpired removes refresh tokens that expired before the cutoff
func (r *RefreshTokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	start := time.Now()
	var err error
	var rowsAffected int64
	defer func() {
		metrics.RecordDBOperation("refresh_token", "delete_expired", time.Since(start), rowsAffected, err)
	}()

	query := `DELETE FROM refresh_tokens WHERE expires_at < $1`

	result, err := r.db.ExecContext(ctx, query, before)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired refresh tokens: %w", err)
	}

	rowsAffected, _ = result.RowsAffected()
	return rowsAffected, nil
}
