package handler

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/spendwise-platform/internal/domain/account"
	"github.com/spendwise-platform/internal/domain/receipt"
	"github.com/spendwise-platform/internal/domain/shared"
	"github.com/spendwise-platform/internal/domain/transaction"
	"github.com/spendwise-platform/internal/domain/user"
)

// respondServiceError maps domain errors to HTTP status codes. Anything not
// in the taxonomy is a 500 and gets logged; domain errors speak for
// themselves and do not.
func respondServiceError(c *gin.Context, logger *slog.Logger, err error) {
	var (
		rateLimited shared.ErrRateLimited
		userMissing user.ErrUserNotFound
		accMissing  account.ErrAccountNotFound
		txMissing   transaction.ErrTransactionNotFound
		allFailed   receipt.ErrAllModelsFailed
	)

	switch {
	case errors.Is(err, user.ErrUnauthorized):
		RespondUnauthorized(c, "")
	case errors.As(err, &userMissing):
		RespondNotFound(c, "User not found")
	case errors.As(err, &accMissing):
		RespondNotFound(c, "Account not found")
	case errors.As(err, &txMissing):
		RespondNotFound(c, "Transaction not found")
	case errors.As(err, &rateLimited):
		RespondTooManyRequests(c, rateLimited.RetryAfter)
	case errors.Is(err, transaction.ErrInvalidType),
		errors.Is(err, transaction.ErrNegativeAmount),
		errors.Is(err, transaction.ErrInvalidInterval),
		errors.Is(err, transaction.ErrMissingInterval),
		errors.Is(err, account.ErrEmptyName),
		errors.Is(err, account.ErrInvalidAccountType),
		errors.Is(err, account.ErrNegativeBalance),
		errors.Is(err, receipt.ErrInvalidImage):
		RespondBadRequest(c, err.Error())
	case errors.Is(err, receipt.ErrNoReceiptData),
		errors.Is(err, receipt.ErrIncompleteData):
		RespondUnprocessable(c, err.Error())
	case errors.As(err, &allFailed):
		RespondBadGateway(c, "Receipt extraction is temporarily unavailable")
	default:
		logger.Error("Unhandled service error", "error", err)
		RespondInternalError(c)
	}
}
