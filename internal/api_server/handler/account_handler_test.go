package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/spendwise-platform/internal/domain/account"
	"github.com/spendwise-platform/internal/domain/shared"
	"github.com/spendwise-platform/internal/domain/transaction"
	"github.com/spendwise-platform/internal/domain/user"
)

type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) CreateAccount(ctx context.Context, subject string, name string, accountType shared.AccountType, initialBalance decimal.Decimal, isDefault bool) (*account.Account, error) {
	args := m.Called(ctx, subject, name, accountType, initialBalance, isDefault)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockAccountService) GetAccount(ctx context.Context, subject string, id uuid.UUID) (*account.Account, []*transaction.WithAccount, error) {
	args := m.Called(ctx, subject, id)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*account.Account), args.Get(1).([]*transaction.WithAccount), args.Error(2)
}

func (m *MockAccountService) ListAccounts(ctx context.Context, subject string) ([]*account.Account, error) {
	args := m.Called(ctx, subject)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*account.Account), args.Error(1)
}

func sampleAccount() *account.Account {
	now := time.Now().UTC().Truncate(time.Second)
	return &account.Account{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		Name:      "Everyday",
		Type:      shared.AccountTypeCurrent,
		Balance:   decimal.RequireFromString("150.00"),
		IsDefault: true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestAccountHandler_Create(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockAccountService)
		handler := NewAccountHandler(logger, mockService)

		expected := sampleAccount()
		mockService.On("CreateAccount", mock.Anything, testSubject, "Everyday", shared.AccountTypeCurrent,
			mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(decimal.RequireFromString("150")) }),
			true,
		).Return(expected, nil)

		router := setupTestRouter()
		router.POST("/accounts", handler.Create)

		body, _ := json.Marshal(CreateAccountRequest{
			Name:           "Everyday",
			Type:           "CURRENT",
			InitialBalance: 150,
			IsDefault:      true,
		})
		rr := performRequest(router, http.MethodPost, "/accounts", body, testSubject)

		assert.Equal(t, http.StatusCreated, rr.Code)
		resp := decodeData[AccountResponse](t, rr)
		assert.Equal(t, expected.ID.String(), resp.ID)
		assert.Equal(t, "Everyday", resp.Name)
		assert.Equal(t, "CURRENT", resp.Type)
		assert.InDelta(t, 150.00, resp.Balance, 0.001)
		mockService.AssertExpectations(t)
	})

	t.Run("UnknownType", func(t *testing.T) {
		mockService := new(MockAccountService)
		handler := NewAccountHandler(logger, mockService)

		router := setupTestRouter()
		router.POST("/accounts", handler.Create)

		body, _ := json.Marshal(CreateAccountRequest{Name: "Everyday", Type: "CHECKING"})
		rr := performRequest(router, http.MethodPost, "/accounts", body, testSubject)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertNotCalled(t, "CreateAccount")
	})

	t.Run("NoSubject", func(t *testing.T) {
		mockService := new(MockAccountService)
		handler := NewAccountHandler(logger, mockService)

		mockService.On("CreateAccount", mock.Anything, "", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(nil, user.ErrUnauthorized)

		router := setupTestRouter()
		router.POST("/accounts", handler.Create)

		body, _ := json.Marshal(CreateAccountRequest{Name: "Everyday", Type: "CURRENT"})
		rr := performRequest(router, http.MethodPost, "/accounts", body, "")

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestAccountHandler_GetByID(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockAccountService)
		handler := NewAccountHandler(logger, mockService)

		acc := sampleAccount()
		tx := sampleTransaction(acc.ID)
		transactions := []*transaction.WithAccount{{Transaction: *tx, AccountName: acc.Name}}
		mockService.On("GetAccount", mock.Anything, testSubject, acc.ID).Return(acc, transactions, nil)

		router := setupTestRouter()
		router.GET("/accounts/:id", handler.GetByID)

		rr := performRequest(router, http.MethodGet, "/accounts/"+acc.ID.String(), nil, testSubject)

		assert.Equal(t, http.StatusOK, rr.Code)
		resp := decodeData[struct {
			Account      AccountResponse       `json:"account"`
			Transactions []TransactionResponse `json:"transactions"`
		}](t, rr)
		assert.Equal(t, acc.ID.String(), resp.Account.ID)
		require.Len(t, resp.Transactions, 1)
		assert.Equal(t, tx.ID.String(), resp.Transactions[0].ID)
		assert.Equal(t, acc.Name, resp.Transactions[0].AccountName)
		mockService.AssertExpectations(t)
	})

	t.Run("NotFound", func(t *testing.T) {
		mockService := new(MockAccountService)
		handler := NewAccountHandler(logger, mockService)

		id := uuid.New()
		mockService.On("GetAccount", mock.Anything, testSubject, id).
			Return(nil, nil, account.ErrAccountNotFound{AccountID: id})

		router := setupTestRouter()
		router.GET("/accounts/:id", handler.GetByID)

		rr := performRequest(router, http.MethodGet, "/accounts/"+id.String(), nil, testSubject)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("InvalidID", func(t *testing.T) {
		mockService := new(MockAccountService)
		handler := NewAccountHandler(logger, mockService)

		router := setupTestRouter()
		router.GET("/accounts/:id", handler.GetByID)

		rr := performRequest(router, http.MethodGet, "/accounts/xyz", nil, testSubject)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertNotCalled(t, "GetAccount")
	})
}

func TestAccountHandler_List(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockAccountService)
		handler := NewAccountHandler(logger, mockService)

		accounts := []*account.Account{sampleAccount(), sampleAccount()}
		mockService.On("ListAccounts", mock.Anything, testSubject).Return(accounts, nil)

		router := setupTestRouter()
		router.GET("/accounts", handler.List)

		rr := performRequest(router, http.MethodGet, "/accounts", nil, testSubject)

		assert.Equal(t, http.StatusOK, rr.Code)
		resp := decodeData[[]AccountResponse](t, rr)
		assert.Len(t, resp, 2)
		mockService.AssertExpectations(t)
	})

	t.Run("Empty", func(t *testing.T) {
		mockService := new(MockAccountService)
		handler := NewAccountHandler(logger, mockService)

		mockService.On("ListAccounts", mock.Anything, testSubject).Return([]*account.Account{}, nil)

		router := setupTestRouter()
		router.GET("/accounts", handler.List)

		rr := performRequest(router, http.MethodGet, "/accounts", nil, testSubject)

		assert.Equal(t, http.StatusOK, rr.Code)
		resp := decodeData[[]AccountResponse](t, rr)
		assert.Empty(t, resp)
	})
}
