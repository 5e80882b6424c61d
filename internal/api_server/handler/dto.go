package handler

import (
	"time"

	"github.com/spendwise-platform/internal/domain/account"
	"github.com/spendwise-platform/internal/domain/receipt"
	"github.com/spendwise-platform/internal/domain/transaction"
)

// CreateAccountRequest represents a request to create a new account
type CreateAccountRequest struct {
	Name           string  `json:"name" binding:"required"`
	Type           string  `json:"type" binding:"required,oneof=CURRENT SAVINGS"`
	InitialBalance float64 `json:"initial_balance" binding:"min=0"`
	IsDefault      bool    `json:"is_default"`
}

// AccountResponse represents an account in API responses
type AccountResponse struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Type      string  `json:"type"`
	Balance   float64 `json:"balance"`
	IsDefault bool    `json:"is_default"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

// TransactionRequest represents a request to create a transaction
type TransactionRequest struct {
	AccountID         string    `json:"account_id" binding:"required,uuid"`
	Type              string    `json:"type" binding:"required,oneof=INCOME EXPENSE"`
	Amount            float64   `json:"amount" binding:"gte=0"`
	Date              time.Time `json:"date" binding:"required"`
	Category          string    `json:"category" binding:"required"`
	Description       string    `json:"description"`
	IsRecurring       bool      `json:"is_recurring"`
	RecurringInterval string    `json:"recurring_interval" binding:"omitempty,oneof=DAILY WEEKLY MONTHLY YEARLY"`
}

// UpdateTransactionRequest represents a request to update an existing transaction.
// The owning account is immutable, so no account_id is accepted.
type UpdateTransactionRequest struct {
	Type              string    `json:"type" binding:"required,oneof=INCOME EXPENSE"`
	Amount            float64   `json:"amount" binding:"gte=0"`
	Date              time.Time `json:"date" binding:"required"`
	Category          string    `json:"category" binding:"required"`
	Description       string    `json:"description"`
	IsRecurring       bool      `json:"is_recurring"`
	RecurringInterval string    `json:"recurring_interval" binding:"omitempty,oneof=DAILY WEEKLY MONTHLY YEARLY"`
}

// TransactionResponse represents a transaction in API responses
type TransactionResponse struct {
	ID                string  `json:"id"`
	AccountID         string  `json:"account_id"`
	AccountName       string  `json:"account_name,omitempty"`
	Type              string  `json:"type"`
	Amount            float64 `json:"amount"`
	Date              string  `json:"date"`
	Category          string  `json:"category"`
	Description       string  `json:"description,omitempty"`
	IsRecurring       bool    `json:"is_recurring"`
	RecurringInterval string  `json:"recurring_interval,omitempty"`
	NextRecurringDate string  `json:"next_recurring_date,omitempty"`
	Status            string  `json:"status"`
	CreatedAt         string  `json:"created_at"`
}

// ListTransactionsParams represents filter parameters for the list endpoint
type ListTransactionsParams struct {
	AccountID   string `form:"account_id" binding:"omitempty,uuid"`
	Type        string `form:"type" binding:"omitempty,oneof=INCOME EXPENSE"`
	Category    string `form:"category"`
	IsRecurring *bool  `form:"is_recurring"`
}

// ReceiptDraftResponse represents an extracted transaction draft
type ReceiptDraftResponse struct {
	Amount       float64 `json:"amount"`
	Date         string  `json:"date"`
	Description  string  `json:"description"`
	Category     string  `json:"category"`
	MerchantName string  `json:"merchant_name"`
}

// ScanAuditResponse represents one recorded scan attempt
type ScanAuditResponse struct {
	ID        string                `json:"id"`
	Model     string                `json:"model,omitempty"`
	Outcome   string                `json:"outcome"`
	Draft     *ReceiptDraftResponse `json:"draft,omitempty"`
	Error     string                `json:"error,omitempty"`
	CreatedAt string                `json:"created_at"`
}

func mapAccountToResponse(acc *account.Account) AccountResponse {
	return AccountResponse{
		ID:        acc.ID.String(),
		Name:      acc.Name,
		Type:      string(acc.Type),
		Balance:   acc.Balance.InexactFloat64(),
		IsDefault: acc.IsDefault,
		CreatedAt: acc.CreatedAt.Format(time.RFC3339),
		UpdatedAt: acc.UpdatedAt.Format(time.RFC3339),
	}
}

func mapTransactionToResponse(t *transaction.Transaction) TransactionResponse {
	response := TransactionResponse{
		ID:          t.ID.String(),
		AccountID:   t.AccountID.String(),
		Type:        string(t.Type),
		Amount:      transaction.NormalizeAmount(t.Amount),
		Date:        t.Date.Format(time.RFC3339),
		Category:    t.Category,
		Description: t.Description,
		IsRecurring: t.IsRecurring,
		Status:      string(t.Status),
		CreatedAt:   t.CreatedAt.Format(time.RFC3339),
	}

	if t.RecurringInterval != nil {
		response.RecurringInterval = string(*t.RecurringInterval)
	}
	if t.NextRecurringDate != nil {
		response.NextRecurringDate = t.NextRecurringDate.Format(time.RFC3339)
	}

	return response
}

func mapDraftToResponse(draft *receipt.Draft) ReceiptDraftResponse {
	return ReceiptDraftResponse{
		Amount:       draft.Amount,
		Date:         draft.Date.Format("2006-01-02"),
		Description:  draft.Description,
		Category:     draft.Category,
		MerchantName: draft.MerchantName,
	}
}
