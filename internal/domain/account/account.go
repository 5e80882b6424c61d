package account

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spendwise-platform/internal/domain/shared"
)

// Common errors
var (
	ErrEmptyName          = errors.New("account name cannot be empty")
	ErrInvalidAccountType = errors.New("account type must be CURRENT or SAVINGS")
	ErrNegativeBalance    = errors.New("initial balance cannot be negative")
)

// Account groups a user's transactions and caches their running balance.
// The balance is maintained incrementally by the ledger, never recomputed
// from the transaction set on the hot path.
type Account struct {
	ID        uuid.UUID          `json:"id"`
	UserID    uuid.UUID          `json:"user_id"`
	Name      string             `json:"name"`
	Type      shared.AccountType `json:"type"`
	Balance   decimal.Decimal    `json:"balance"`
	IsDefault bool               `json:"is_default"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// NewAccount creates a new account owned by the given user
func NewAccount(userID uuid.UUID, name string, accountType shared.AccountType, initialBalance decimal.Decimal, isDefault bool) (*Account, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	if !accountType.Valid() {
		return nil, ErrInvalidAccountType
	}
	if initialBalance.IsNegative() {
		return nil, ErrNegativeBalance
	}

	now := time.Now()
	return &Account{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      name,
		Type:      accountType,
		Balance:   initialBalance,
		IsDefault: isDefault,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// ErrAccountNotFound indicates a missing account, or one owned by another
// user. Ownership misses deliberately look identical to absence.
type ErrAccountNotFound struct {
	AccountID uuid.UUID
}

func (e ErrAccountNotFound) Error() string {
	return "account not found: " + e.AccountID.String()
}
