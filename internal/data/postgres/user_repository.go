// Package postgres provides PostgreSQL implementations of the domain
// repositories. Every statement that touches user-owned data is scoped by the
// owning user id so that one user can never read or write another's rows.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/spendwise-platform/internal/domain/user"
	"github.com/spendwise-platform/internal/platform/persistence"
)

// UserRepository implements the user.Repository interface for PostgreSQL
type UserRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewUserRepository creates a new PostgreSQL user repository
func NewUserRepository(logger *slog.Logger, db *persistence.PostgresDB) user.Repository {
	return &UserRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// GetByExternalID resolves the local user for an external identity subject.
// The subject is treated as an opaque key.
func (r *UserRepository) GetByExternalID(ctx context.Context, externalID string) (*user.User, error) {
	if externalID == "" {
		return nil, user.ErrEmptyExternalID
	}

	query := `
		SELECT id, external_id, email, name, created_at, updated_at
		FROM users
		WHERE external_id = $1
	`

	var u user.User
	err := r.querier.QueryRow(ctx, query, externalID).Scan(
		&u.ID,
		&u.ExternalID,
		&u.Email,
		&u.Name,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrUserNotFound{ExternalID: externalID}
		}
		r.logger.Error("Failed to get user by external ID", "error", err)
		return nil, fmt.Errorf("failed to get user by external ID: %w", err)
	}

	return &u, nil
}

// GetByID retrieves a user by its local ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	query := `
		SELECT id, external_id, email, name, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	var u user.User
	err := r.querier.QueryRow(ctx, query, id).Scan(
		&u.ID,
		&u.ExternalID,
		&u.Email,
		&u.Name,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrUserNotFound{ExternalID: id.String()}
		}
		r.logger.Error("Failed to get user", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &u, nil
}
