package account

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository defines account persistence operations. Every read is scoped by
// the owning user; balance writes go through the ledger, never through here.
type Repository interface {
	Create(ctx context.Context, account *Account) error
	GetByID(ctx context.Context, id, userID uuid.UUID) (*Account, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Account, error)
	WithTx(tx pgx.Tx) Repository
}
