package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/spendwise-platform/internal/api_server/middleware"
	"github.com/spendwise-platform/internal/api_server/service"
	"github.com/spendwise-platform/internal/domain/shared"
	"github.com/spendwise-platform/internal/domain/transaction"
	"github.com/spendwise-platform/internal/domain/user"
	"github.com/spendwise-platform/internal/platform/identity"
)

type MockTransactionService struct {
	mock.Mock
}

func (m *MockTransactionService) Create(ctx context.Context, subject string, in service.TransactionInput) (*transaction.Transaction, error) {
	args := m.Called(ctx, subject, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transaction.Transaction), args.Error(1)
}

func (m *MockTransactionService) Update(ctx context.Context, subject string, id uuid.UUID, in service.TransactionInput) (*transaction.Transaction, error) {
	args := m.Called(ctx, subject, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transaction.Transaction), args.Error(1)
}

func (m *MockTransactionService) Get(ctx context.Context, subject string, id uuid.UUID) (*transaction.Transaction, error) {
	args := m.Called(ctx, subject, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transaction.Transaction), args.Error(1)
}

func (m *MockTransactionService) List(ctx context.Context, subject string, filter transaction.Filter) ([]*transaction.WithAccount, error) {
	args := m.Called(ctx, subject, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*transaction.WithAccount), args.Error(1)
}

const testSubject = "auth0|user-123"

// setupTestRouter wires the middleware the real server uses so tests cover
// subject resolution end to end.
func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.CorrelationID())
	r.Use(middleware.Auth(identity.NewHeaderProvider()))
	return r
}

func performRequest(r *gin.Engine, method, path string, body []byte, subject string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	if subject != "" {
		req.Header.Set(identity.SubjectHeader, subject)
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func decodeData[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var topLevel Response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &topLevel))
	require.NotNil(t, topLevel.Data, "'data' field should not be nil")

	dataBytes, err := json.Marshal(topLevel.Data)
	require.NoError(t, err)
	var out T
	require.NoError(t, json.Unmarshal(dataBytes, &out))
	return out
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) *ErrorInfo {
	t.Helper()
	var topLevel Response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &topLevel))
	require.NotNil(t, topLevel.Error, "'error' field should not be nil")
	return topLevel.Error
}

func sampleTransaction(accountID uuid.UUID) *transaction.Transaction {
	now := time.Now().UTC().Truncate(time.Second)
	return &transaction.Transaction{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		AccountID: accountID,
		Type:      shared.TransactionTypeExpense,
		Amount:    decimal.RequireFromString("42.50"),
		Date:      now,
		Category:  "groceries",
		Status:    shared.TransactionStatusCompleted,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestTransactionHandler_Create(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	accountID := uuid.New()

	validBody := func() []byte {
		body, _ := json.Marshal(TransactionRequest{
			AccountID: accountID.String(),
			Type:      "EXPENSE",
			Amount:    42.50,
			Date:      time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC),
			Category:  "groceries",
		})
		return body
	}

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockTransactionService)
		handler := NewTransactionHandler(logger, mockService)

		expected := sampleTransaction(accountID)
		mockService.On("Create", mock.Anything, testSubject, mock.MatchedBy(func(in service.TransactionInput) bool {
			return in.AccountID == accountID &&
				in.Type == shared.TransactionTypeExpense &&
				in.Amount.Equal(decimal.RequireFromString("42.5")) &&
				in.Category == "groceries" &&
				in.CorrelationID != ""
		})).Return(expected, nil)

		router := setupTestRouter()
		router.POST("/transactions", handler.Create)

		rr := performRequest(router, http.MethodPost, "/transactions", validBody(), testSubject)

		assert.Equal(t, http.StatusCreated, rr.Code)
		body := decodeData[TransactionResponse](t, rr)
		assert.Equal(t, expected.ID.String(), body.ID)
		assert.Equal(t, accountID.String(), body.AccountID)
		assert.Equal(t, "EXPENSE", body.Type)
		assert.InDelta(t, 42.50, body.Amount, 0.001)
		mockService.AssertExpectations(t)
	})

	t.Run("InvalidRequestBody", func(t *testing.T) {
		mockService := new(MockTransactionService)
		handler := NewTransactionHandler(logger, mockService)

		router := setupTestRouter()
		router.POST("/transactions", handler.Create)

		rr := performRequest(router, http.MethodPost, "/transactions", []byte(`{"invalid`), testSubject)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertNotCalled(t, "Create")
	})

	t.Run("ZeroAmountAccepted", func(t *testing.T) {
		mockService := new(MockTransactionService)
		handler := NewTransactionHandler(logger, mockService)

		expected := sampleTransaction(accountID)
		expected.Amount = decimal.Zero
		mockService.On("Create", mock.Anything, testSubject, mock.MatchedBy(func(in service.TransactionInput) bool {
			return in.Amount.IsZero()
		})).Return(expected, nil)

		router := setupTestRouter()
		router.POST("/transactions", handler.Create)

		body, _ := json.Marshal(map[string]interface{}{
			"account_id": accountID.String(),
			"type":       "EXPENSE",
			"amount":     0,
			"date":       "2024-03-15T00:00:00Z",
			"category":   "groceries",
		})
		rr := performRequest(router, http.MethodPost, "/transactions", body, testSubject)

		assert.Equal(t, http.StatusCreated, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("NegativeAmountRejected", func(t *testing.T) {
		mockService := new(MockTransactionService)
		handler := NewTransactionHandler(logger, mockService)

		router := setupTestRouter()
		router.POST("/transactions", handler.Create)

		body, _ := json.Marshal(map[string]interface{}{
			"account_id": accountID.String(),
			"type":       "EXPENSE",
			"amount":     -1.50,
			"date":       "2024-03-15T00:00:00Z",
			"category":   "groceries",
		})
		rr := performRequest(router, http.MethodPost, "/transactions", body, testSubject)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertNotCalled(t, "Create")
	})

	t.Run("NoSubject", func(t *testing.T) {
		mockService := new(MockTransactionService)
		handler := NewTransactionHandler(logger, mockService)

		mockService.On("Create", mock.Anything, "", mock.Anything).Return(nil, user.ErrUnauthorized)

		router := setupTestRouter()
		router.POST("/transactions", handler.Create)

		rr := performRequest(router, http.MethodPost, "/transactions", validBody(), "")

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		errInfo := decodeError(t, rr)
		assert.Equal(t, "UNAUTHORIZED", errInfo.Code)
	})

	t.Run("RateLimited", func(t *testing.T) {
		mockService := new(MockTransactionService)
		handler := NewTransactionHandler(logger, mockService)

		mockService.On("Create", mock.Anything, testSubject, mock.Anything).
			Return(nil, shared.ErrRateLimited{RetryAfter: 30 * time.Second})

		router := setupTestRouter()
		router.POST("/transactions", handler.Create)

		rr := performRequest(router, http.MethodPost, "/transactions", validBody(), testSubject)

		assert.Equal(t, http.StatusTooManyRequests, rr.Code)
		assert.Equal(t, "30", rr.Header().Get("Retry-After"))
		errInfo := decodeError(t, rr)
		assert.Equal(t, "RATE_LIMITED", errInfo.Code)
	})
}

func TestTransactionHandler_Update(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	accountID := uuid.New()

	body := func() []byte {
		b, _ := json.Marshal(UpdateTransactionRequest{
			Type:     "INCOME",
			Amount:   100,
			Date:     time.Date(2024, time.March, 20, 0, 0, 0, 0, time.UTC),
			Category: "salary",
		})
		return b
	}

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockTransactionService)
		handler := NewTransactionHandler(logger, mockService)

		expected := sampleTransaction(accountID)
		expected.Type = shared.TransactionTypeIncome
		expected.Amount = decimal.RequireFromString("100")
		mockService.On("Update", mock.Anything, testSubject, expected.ID, mock.MatchedBy(func(in service.TransactionInput) bool {
			// The wire contract carries no account_id on update.
			return in.AccountID == uuid.Nil && in.Type == shared.TransactionTypeIncome
		})).Return(expected, nil)

		router := setupTestRouter()
		router.PUT("/transactions/:id", handler.Update)

		rr := performRequest(router, http.MethodPut, "/transactions/"+expected.ID.String(), body(), testSubject)

		assert.Equal(t, http.StatusOK, rr.Code)
		resp := decodeData[TransactionResponse](t, rr)
		assert.Equal(t, "INCOME", resp.Type)
		mockService.AssertExpectations(t)
	})

	t.Run("InvalidID", func(t *testing.T) {
		mockService := new(MockTransactionService)
		handler := NewTransactionHandler(logger, mockService)

		router := setupTestRouter()
		router.PUT("/transactions/:id", handler.Update)

		rr := performRequest(router, http.MethodPut, "/transactions/not-a-uuid", body(), testSubject)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertNotCalled(t, "Update")
	})

	t.Run("NotFound", func(t *testing.T) {
		mockService := new(MockTransactionService)
		handler := NewTransactionHandler(logger, mockService)

		id := uuid.New()
		mockService.On("Update", mock.Anything, testSubject, id, mock.Anything).
			Return(nil, transaction.ErrTransactionNotFound{TransactionID: id})

		router := setupTestRouter()
		router.PUT("/transactions/:id", handler.Update)

		rr := performRequest(router, http.MethodPut, "/transactions/"+id.String(), body(), testSubject)

		assert.Equal(t, http.StatusNotFound, rr.Code)
		errInfo := decodeError(t, rr)
		assert.Equal(t, "NOT_FOUND", errInfo.Code)
	})
}

func TestTransactionHandler_GetByID(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockTransactionService)
		handler := NewTransactionHandler(logger, mockService)

		expected := sampleTransaction(uuid.New())
		mockService.On("Get", mock.Anything, testSubject, expected.ID).Return(expected, nil)

		router := setupTestRouter()
		router.GET("/transactions/:id", handler.GetByID)

		rr := performRequest(router, http.MethodGet, "/transactions/"+expected.ID.String(), nil, testSubject)

		assert.Equal(t, http.StatusOK, rr.Code)
		resp := decodeData[TransactionResponse](t, rr)
		assert.Equal(t, expected.ID.String(), resp.ID)
		mockService.AssertExpectations(t)
	})

	t.Run("NotFound", func(t *testing.T) {
		mockService := new(MockTransactionService)
		handler := NewTransactionHandler(logger, mockService)

		id := uuid.New()
		mockService.On("Get", mock.Anything, testSubject, id).
			Return(nil, transaction.ErrTransactionNotFound{TransactionID: id})

		router := setupTestRouter()
		router.GET("/transactions/:id", handler.GetByID)

		rr := performRequest(router, http.MethodGet, "/transactions/"+id.String(), nil, testSubject)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestTransactionHandler_List(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockTransactionService)
		handler := NewTransactionHandler(logger, mockService)

		first := sampleTransaction(uuid.New())
		results := []*transaction.WithAccount{
			{Transaction: *first, AccountName: "Everyday"},
		}
		mockService.On("List", mock.Anything, testSubject, mock.MatchedBy(func(f transaction.Filter) bool {
			return f.AccountID == nil && f.Type == nil && f.Category == nil && f.IsRecurring == nil
		})).Return(results, nil)

		router := setupTestRouter()
		router.GET("/transactions", handler.List)

		rr := performRequest(router, http.MethodGet, "/transactions", nil, testSubject)

		assert.Equal(t, http.StatusOK, rr.Code)
		resp := decodeData[[]TransactionResponse](t, rr)
		require.Len(t, resp, 1)
		assert.Equal(t, first.ID.String(), resp[0].ID)
		assert.Equal(t, "Everyday", resp[0].AccountName)
		mockService.AssertExpectations(t)
	})

	t.Run("FiltersForwarded", func(t *testing.T) {
		mockService := new(MockTransactionService)
		handler := NewTransactionHandler(logger, mockService)

		accountID := uuid.New()
		mockService.On("List", mock.Anything, testSubject, mock.MatchedBy(func(f transaction.Filter) bool {
			return f.AccountID != nil && *f.AccountID == accountID &&
				f.Type != nil && *f.Type == shared.TransactionTypeExpense &&
				f.IsRecurring != nil && *f.IsRecurring
		})).Return([]*transaction.WithAccount{}, nil)

		router := setupTestRouter()
		router.GET("/transactions", handler.List)

		path := "/transactions?account_id=" + accountID.String() + "&type=EXPENSE&is_recurring=true"
		rr := performRequest(router, http.MethodGet, path, nil, testSubject)

		assert.Equal(t, http.StatusOK, rr.Code)
		resp := decodeData[[]TransactionResponse](t, rr)
		assert.Empty(t, resp)
		mockService.AssertExpectations(t)
	})

	t.Run("InvalidTypeFilter", func(t *testing.T) {
		mockService := new(MockTransactionService)
		handler := NewTransactionHandler(logger, mockService)

		router := setupTestRouter()
		router.GET("/transactions", handler.List)

		rr := performRequest(router, http.MethodGet, "/transactions?type=TRANSFER", nil, testSubject)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertNotCalled(t, "List")
	})
}
