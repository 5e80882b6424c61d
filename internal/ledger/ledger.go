// Package ledger is the single authority for keeping an account's cached
// balance consistent with its transactions. All balance writes go through
// Apply; nothing else in the system touches the balance column.
package ledger

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spendwise-platform/internal/domain/account"
	"github.com/spendwise-platform/internal/domain/shared"
	"github.com/spendwise-platform/internal/platform/persistence"
)

// SignedAmount applies the sign convention: EXPENSE contributes negatively,
// INCOME positively.
func SignedAmount(txType shared.TransactionType, amount decimal.Decimal) decimal.Decimal {
	if txType == shared.TransactionTypeExpense {
		return amount.Neg()
	}
	return amount
}

// CreateDelta is the balance change caused by inserting a transaction
func CreateDelta(signedAmount decimal.Decimal) decimal.Decimal {
	return signedAmount
}

// UpdateDelta is the net balance change caused by replacing a transaction's
// signed amount. oldSigned must come from the previously persisted row, read
// under lock in the same atomic unit as the update.
func UpdateDelta(oldSigned, newSigned decimal.Decimal) decimal.Decimal {
	return newSigned.Sub(oldSigned)
}

// Applier applies balance deltas inside a caller-provided atomic unit
type Applier interface {
	Apply(ctx context.Context, q persistence.Querier, accountID, userID uuid.UUID, delta decimal.Decimal) error
}

// Ledger implements Applier against the relational store
type Ledger struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Ledger {
	return &Ledger{logger: logger}
}

// Apply adds delta to the account balance. The querier must be the pgx.Tx of
// the atomic unit that also writes the transaction row, so that a failed unit
// rolls back both writes. The increment happens store-side; concurrent units
// serialize on the row lock rather than computing from a stale read.
func (l *Ledger) Apply(ctx context.Context, q persistence.Querier, accountID, userID uuid.UUID, delta decimal.Decimal) error {
	query := `
		UPDATE accounts
		SET balance = balance + $1, updated_at = NOW()
		WHERE id = $2 AND user_id = $3
	`

	result, err := q.Exec(ctx, query, delta, accountID, userID)
	if err != nil {
		l.logger.Error("Failed to apply balance delta", "account_id", accountID.String(), "error", err)
		return fmt.Errorf("failed to apply balance delta: %w", err)
	}

	if result.RowsAffected() == 0 {
		return account.ErrAccountNotFound{AccountID: accountID}
	}

	return nil
}

var _ Applier = (*Ledger)(nil)
