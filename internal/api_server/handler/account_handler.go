package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spendwise-platform/internal/api_server/middleware"
	"github.com/spendwise-platform/internal/api_server/service"
	"github.com/spendwise-platform/internal/domain/shared"
)

// AccountHandler handles HTTP requests for account operations
type AccountHandler struct {
	accountService service.AccountService
	logger         *slog.Logger
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(logger *slog.Logger, accountService service.AccountService) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
		logger:         logger,
	}
}

// Create creates a new account for the caller
func (h *AccountHandler) Create(c *gin.Context) {
	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	acc, err := h.accountService.CreateAccount(
		c.Request.Context(),
		middleware.GetSubject(c),
		req.Name,
		shared.AccountType(req.Type),
		decimal.NewFromFloat(req.InitialBalance),
		req.IsDefault,
	)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	RespondCreated(c, mapAccountToResponse(acc))
}

// GetByID retrieves an account with its transactions
func (h *AccountHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondBadRequest(c, "Invalid account ID")
		return
	}

	acc, transactions, err := h.accountService.GetAccount(c.Request.Context(), middleware.GetSubject(c), id)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	txResponses := make([]TransactionResponse, 0, len(transactions))
	for _, t := range transactions {
		response := mapTransactionToResponse(&t.Transaction)
		response.AccountName = t.AccountName
		txResponses = append(txResponses, response)
	}

	RespondOK(c, gin.H{
		"account":      mapAccountToResponse(acc),
		"transactions": txResponses,
	})
}

// List retrieves all accounts owned by the caller
func (h *AccountHandler) List(c *gin.Context) {
	accounts, err := h.accountService.ListAccounts(c.Request.Context(), middleware.GetSubject(c))
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	responses := make([]AccountResponse, 0, len(accounts))
	for _, acc := range accounts {
		responses = append(responses, mapAccountToResponse(acc))
	}

	RespondOK(c, responses)
}
