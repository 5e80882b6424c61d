package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spendwise-platform/internal/domain/account"
	"github.com/spendwise-platform/internal/domain/receipt"
	"github.com/spendwise-platform/internal/domain/shared"
	"github.com/spendwise-platform/internal/domain/transaction"
)

// TransactionInput carries the caller-supplied fields of a transaction.
// Amounts arrive non-negative; the sign convention is applied internally.
type TransactionInput struct {
	AccountID         uuid.UUID
	Type              shared.TransactionType
	Amount            decimal.Decimal
	Date              time.Time
	Category          string
	Description       string
	IsRecurring       bool
	RecurringInterval *shared.RecurringInterval
	CorrelationID     string
}

// TransactionService is the facade for all transaction reads and writes.
// Every operation resolves the local user from the external subject first:
// an empty subject returns user.ErrUnauthorized, an unknown one
// user.ErrUserNotFound. All persistence is scoped by the resolved user id.
type TransactionService interface {
	// Create inserts a transaction and applies its balance delta in one
	// atomic unit. Returns shared.ErrRateLimited when admission is denied
	// and account.ErrAccountNotFound when the account is absent or owned
	// by another user.
	Create(ctx context.Context, subject string, in TransactionInput) (*transaction.Transaction, error)

	// Update replaces a transaction's fields and applies the net balance
	// delta computed from the previously persisted row. The account a
	// transaction belongs to is immutable.
	Update(ctx context.Context, subject string, id uuid.UUID, in TransactionInput) (*transaction.Transaction, error)

	// Get retrieves one transaction. Absent or foreign rows return
	// transaction.ErrTransactionNotFound.
	Get(ctx context.Context, subject string, id uuid.UUID) (*transaction.Transaction, error)

	// List retrieves the user's transactions matching the filter, newest
	// date first with stable ties.
	List(ctx context.Context, subject string, filter transaction.Filter) ([]*transaction.WithAccount, error)
}

// AccountService defines the interface for account operations
type AccountService interface {
	// CreateAccount creates a new account owned by the resolved user
	CreateAccount(ctx context.Context, subject string, name string, accountType shared.AccountType, initialBalance decimal.Decimal, isDefault bool) (*account.Account, error)

	// GetAccount retrieves an account with its transactions
	// Returns ErrAccountNotFound if absent or owned by another user
	GetAccount(ctx context.Context, subject string, id uuid.UUID) (*account.Account, []*transaction.WithAccount, error)

	// ListAccounts retrieves all accounts owned by the resolved user
	ListAccounts(ctx context.Context, subject string) ([]*account.Account, error)
}

// ReceiptService extracts transaction drafts from receipt images
type ReceiptService interface {
	// Scan runs extraction on the image and records an audit entry for the
	// attempt. The draft is a suggestion only; nothing is persisted to the
	// ledger here.
	Scan(ctx context.Context, subject string, image []byte, mimeType string) (*receipt.Draft, error)

	// ListScans returns the user's most recent scan audits
	ListScans(ctx context.Context, subject string, limit int) ([]*receipt.ScanAudit, error)
}
