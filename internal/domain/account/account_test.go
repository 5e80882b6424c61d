package account

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spendwise-platform/internal/domain/shared"
)

func TestNewAccount(t *testing.T) {
	userID := uuid.New()

	t.Run("SuccessfulCreation", func(t *testing.T) {
		initialBalance := decimal.RequireFromString("100.00")

		beforeCreation := time.Now()
		acc, err := NewAccount(userID, "Everyday", shared.AccountTypeCurrent, initialBalance, true)
		afterCreation := time.Now()

		require.NoError(t, err)
		require.NotNil(t, acc)

		assert.NotEqual(t, uuid.Nil, acc.ID)
		assert.Equal(t, userID, acc.UserID)
		assert.Equal(t, "Everyday", acc.Name)
		assert.Equal(t, shared.AccountTypeCurrent, acc.Type)
		assert.True(t, acc.Balance.Equal(initialBalance))
		assert.True(t, acc.IsDefault)

		assert.WithinDuration(t, beforeCreation, acc.CreatedAt, afterCreation.Sub(beforeCreation)+time.Millisecond)
		assert.Equal(t, acc.CreatedAt, acc.UpdatedAt)
	})

	t.Run("ZeroBalanceAllowed", func(t *testing.T) {
		acc, err := NewAccount(userID, "Savings", shared.AccountTypeSavings, decimal.Zero, false)
		require.NoError(t, err)
		assert.True(t, acc.Balance.IsZero())
	})

	t.Run("EmptyName", func(t *testing.T) {
		_, err := NewAccount(userID, "", shared.AccountTypeCurrent, decimal.Zero, false)
		assert.ErrorIs(t, err, ErrEmptyName)
	})

	t.Run("UnknownType", func(t *testing.T) {
		_, err := NewAccount(userID, "Everyday", shared.AccountType("CHECKING"), decimal.Zero, false)
		assert.ErrorIs(t, err, ErrInvalidAccountType)
	})

	t.Run("NegativeBalance", func(t *testing.T) {
		_, err := NewAccount(userID, "Everyday", shared.AccountTypeCurrent, decimal.RequireFromString("-0.01"), false)
		assert.ErrorIs(t, err, ErrNegativeBalance)
	})
}
