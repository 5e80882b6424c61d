package shared

import (
	"fmt"
	"time"
)

// TransactionType defines the direction of a transaction
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "INCOME"
	TransactionTypeExpense TransactionType = "EXPENSE"
)

// Valid reports whether the transaction type is a known value
func (t TransactionType) Valid() bool {
	return t == TransactionTypeIncome || t == TransactionTypeExpense
}

// TransactionStatus defines transaction processing states
type TransactionStatus string

const (
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusPending   TransactionStatus = "PENDING"
)

// AccountType defines the kind of account
type AccountType string

const (
	AccountTypeCurrent AccountType = "CURRENT"
	AccountTypeSavings AccountType = "SAVINGS"
)

// Valid reports whether the account type is a known value
func (t AccountType) Valid() bool {
	return t == AccountTypeCurrent || t == AccountTypeSavings
}

// RecurringInterval defines how often a recurring transaction repeats
type RecurringInterval string

const (
	RecurringIntervalDaily   RecurringInterval = "DAILY"
	RecurringIntervalWeekly  RecurringInterval = "WEEKLY"
	RecurringIntervalMonthly RecurringInterval = "MONTHLY"
	RecurringIntervalYearly  RecurringInterval = "YEARLY"
)

// Valid reports whether the recurring interval is a known value
func (i RecurringInterval) Valid() bool {
	switch i {
	case RecurringIntervalDaily, RecurringIntervalWeekly, RecurringIntervalMonthly, RecurringIntervalYearly:
		return true
	}
	return false
}

// ErrRateLimited indicates the admission controller denied the request.
// RetryAfter carries the hint surfaced to the caller.
type ErrRateLimited struct {
	RetryAfter time.Duration
	Remaining  int
}

func (e ErrRateLimited) Error() string {
	return fmt.Sprintf("too many requests, retry in %s", e.RetryAfter)
}
