package transaction

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/spendwise-platform/internal/domain/shared"
)

// Filter restricts List to rows matching every set field exactly
type Filter struct {
	AccountID   *uuid.UUID
	Type        *shared.TransactionType
	Category    *string
	IsRecurring *bool
}

// Repository defines transaction persistence operations. All reads and writes
// are scoped by the owning user id; a valid transaction id belonging to
// another user behaves as absent.
type Repository interface {
	Create(ctx context.Context, t *Transaction) error
	GetByID(ctx context.Context, id, userID uuid.UUID) (*Transaction, error)

	// GetByIDForUpdate locks the row for the remainder of the enclosing
	// transaction. Deltas must be computed from the amount/type it returns.
	GetByIDForUpdate(ctx context.Context, id, userID uuid.UUID) (*Transaction, error)

	Update(ctx context.Context, t *Transaction) error
	List(ctx context.Context, userID uuid.UUID, filter Filter) ([]*WithAccount, error)

	// ListDueRecurring returns recurring transactions whose next occurrence
	// is due at or before the given instant.
	ListDueRecurring(ctx context.Context, due time.Time, limit int) ([]*Transaction, error)

	// AdvanceRecurring moves a recurring transaction's schedule forward after
	// an instance has been materialized.
	AdvanceRecurring(ctx context.Context, id uuid.UUID, nextDate, processedAt time.Time) error

	WithTx(tx pgx.Tx) Repository
}
