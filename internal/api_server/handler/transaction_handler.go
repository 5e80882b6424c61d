package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spendwise-platform/internal/api_server/middleware"
	"github.com/spendwise-platform/internal/api_server/service"
	"github.com/spendwise-platform/internal/domain/shared"
	"github.com/spendwise-platform/internal/domain/transaction"
)

// TransactionHandler handles HTTP requests for transaction operations
type TransactionHandler struct {
	transactionService service.TransactionService
	logger             *slog.Logger
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(logger *slog.Logger, transactionService service.TransactionService) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
		logger:             logger,
	}
}

// Create records a new income or expense transaction
func (h *TransactionHandler) Create(c *gin.Context) {
	var req TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	accountID, err := uuid.Parse(req.AccountID)
	if err != nil {
		RespondBadRequest(c, "Invalid account ID")
		return
	}

	in := service.TransactionInput{
		AccountID:         accountID,
		Type:              shared.TransactionType(req.Type),
		Amount:            decimal.NewFromFloat(req.Amount),
		Date:              req.Date,
		Category:          req.Category,
		Description:       req.Description,
		IsRecurring:       req.IsRecurring,
		RecurringInterval: intervalPtr(req.RecurringInterval),
		CorrelationID:     middleware.GetCorrelationID(c),
	}

	t, err := h.transactionService.Create(c.Request.Context(), middleware.GetSubject(c), in)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	RespondCreated(c, mapTransactionToResponse(t))
}

// Update replaces a transaction's fields. The owning account stays fixed.
func (h *TransactionHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondBadRequest(c, "Invalid transaction ID")
		return
	}

	var req UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	in := service.TransactionInput{
		Type:              shared.TransactionType(req.Type),
		Amount:            decimal.NewFromFloat(req.Amount),
		Date:              req.Date,
		Category:          req.Category,
		Description:       req.Description,
		IsRecurring:       req.IsRecurring,
		RecurringInterval: intervalPtr(req.RecurringInterval),
		CorrelationID:     middleware.GetCorrelationID(c),
	}

	t, err := h.transactionService.Update(c.Request.Context(), middleware.GetSubject(c), id, in)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	RespondOK(c, mapTransactionToResponse(t))
}

// GetByID retrieves transaction details by its ID
func (h *TransactionHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondBadRequest(c, "Invalid transaction ID")
		return
	}

	t, err := h.transactionService.Get(c.Request.Context(), middleware.GetSubject(c), id)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	RespondOK(c, mapTransactionToResponse(t))
}

// List retrieves the caller's transactions matching the query filters
func (h *TransactionHandler) List(c *gin.Context) {
	var params ListTransactionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		RespondBadRequest(c, "Invalid filter parameters: "+err.Error())
		return
	}

	var filter transaction.Filter
	if params.AccountID != "" {
		accountID, err := uuid.Parse(params.AccountID)
		if err != nil {
			RespondBadRequest(c, "Invalid account ID")
			return
		}
		filter.AccountID = &accountID
	}
	if params.Type != "" {
		txType := shared.TransactionType(params.Type)
		filter.Type = &txType
	}
	if params.Category != "" {
		filter.Category = &params.Category
	}
	filter.IsRecurring = params.IsRecurring

	transactions, err := h.transactionService.List(c.Request.Context(), middleware.GetSubject(c), filter)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	responses := make([]TransactionResponse, 0, len(transactions))
	for _, t := range transactions {
		response := mapTransactionToResponse(&t.Transaction)
		response.AccountName = t.AccountName
		responses = append(responses, response)
	}

	RespondOK(c, responses)
}

func intervalPtr(raw string) *shared.RecurringInterval {
	if raw == "" {
		return nil
	}
	interval := shared.RecurringInterval(raw)
	return &interval
}
