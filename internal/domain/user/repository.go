package user

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines user persistence operations. Users are created by the
// identity-sync flow outside this core and read-only here.
type Repository interface {
	GetByExternalID(ctx context.Context, externalID string) (*User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
}
