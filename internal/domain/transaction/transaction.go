package transaction

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spendwise-platform/internal/domain/shared"
)

// Common errors
var (
	ErrInvalidType     = errors.New("transaction type must be INCOME or EXPENSE")
	ErrNegativeAmount  = errors.New("amount cannot be negative")
	ErrInvalidInterval = errors.New("invalid recurring interval")
	ErrMissingInterval = errors.New("recurring transaction requires an interval")
)

// Transaction is a single income or expense entry on an account. Amount is
// stored non-negative; the sign is implied by Type and applied by the ledger.
type Transaction struct {
	ID                uuid.UUID                 `json:"id"`
	UserID            uuid.UUID                 `json:"user_id"`
	AccountID         uuid.UUID                 `json:"account_id"`
	Type              shared.TransactionType    `json:"type"`
	Amount            decimal.Decimal           `json:"amount"`
	Date              time.Time                 `json:"date"`
	Category          string                    `json:"category"`
	Description       string                    `json:"description"`
	IsRecurring       bool                      `json:"is_recurring"`
	RecurringInterval *shared.RecurringInterval `json:"recurring_interval,omitempty"`
	NextRecurringDate *time.Time                `json:"next_recurring_date,omitempty"`
	LastProcessed     *time.Time                `json:"last_processed,omitempty"`
	Status            shared.TransactionStatus  `json:"status"`
	CreatedAt         time.Time                 `json:"created_at"`
	UpdatedAt         time.Time                 `json:"updated_at"`
}

// New creates a transaction after validating type, amount and recurrence
// fields. NextRecurringDate is left unset; the facade computes it.
func New(userID, accountID uuid.UUID, txType shared.TransactionType, amount decimal.Decimal, date time.Time, category, description string, isRecurring bool, interval *shared.RecurringInterval) (*Transaction, error) {
	if !txType.Valid() {
		return nil, ErrInvalidType
	}
	if amount.IsNegative() {
		return nil, ErrNegativeAmount
	}
	if isRecurring {
		if interval == nil {
			return nil, ErrMissingInterval
		}
		if !interval.Valid() {
			return nil, ErrInvalidInterval
		}
	} else {
		// A non-recurring transaction carries no interval.
		interval = nil
	}

	now := time.Now()
	return &Transaction{
		ID:                uuid.New(),
		UserID:            userID,
		AccountID:         accountID,
		Type:              txType,
		Amount:            amount,
		Date:              date,
		Category:          category,
		Description:       description,
		IsRecurring:       isRecurring,
		RecurringInterval: interval,
		Status:            shared.TransactionStatusCompleted,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

// NormalizeAmount converts a stored decimal to a plain number for transport.
// Lossy at display precision only; balance math never uses it.
func NormalizeAmount(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

// WithAccount is a transaction joined with its account for listing views
type WithAccount struct {
	Transaction
	AccountName string `json:"account_name"`
}

// ErrTransactionNotFound indicates a missing transaction, or one owned by
// another user
type ErrTransactionNotFound struct {
	TransactionID uuid.UUID
}

func (e ErrTransactionNotFound) Error() string {
	return "transaction not found: " + e.TransactionID.String()
}
