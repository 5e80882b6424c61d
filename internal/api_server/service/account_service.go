package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spendwise-platform/internal/domain/account"
	"github.com/spendwise-platform/internal/domain/shared"
	"github.com/spendwise-platform/internal/domain/transaction"
	"github.com/spendwise-platform/internal/domain/user"
)

// AccountServiceImpl implements the AccountService interface
type AccountServiceImpl struct {
	resolver    subjectResolver
	accountRepo account.Repository
	txRepo      transaction.Repository
	logger      *slog.Logger
}

// NewAccountService creates a new account service
func NewAccountService(logger *slog.Logger, userRepo user.Repository, accountRepo account.Repository, txRepo transaction.Repository) AccountService {
	return &AccountServiceImpl{
		resolver:    subjectResolver{userRepo: userRepo},
		accountRepo: accountRepo,
		txRepo:      txRepo,
		logger:      logger,
	}
}

// CreateAccount creates a new account owned by the resolved user
func (s *AccountServiceImpl) CreateAccount(ctx context.Context, subject string, name string, accountType shared.AccountType, initialBalance decimal.Decimal, isDefault bool) (*account.Account, error) {
	u, err := s.resolver.resolve(ctx, subject)
	if err != nil {
		return nil, err
	}

	acc, err := account.NewAccount(u.ID, name, accountType, initialBalance, isDefault)
	if err != nil {
		return nil, err
	}

	if err := s.accountRepo.Create(ctx, acc); err != nil {
		s.logger.Error("Failed to create account", "user_id", u.ID.String(), "error", err)
		return nil, err
	}

	s.logger.Info("Account created", "account_id", acc.ID.String(), "user_id", u.ID.String())
	return acc, nil
}

// GetAccount retrieves an account with its transactions, scoped to the
// resolved user
func (s *AccountServiceImpl) GetAccount(ctx context.Context, subject string, id uuid.UUID) (*account.Account, []*transaction.WithAccount, error) {
	u, err := s.resolver.resolve(ctx, subject)
	if err != nil {
		return nil, nil, err
	}

	acc, err := s.accountRepo.GetByID(ctx, id, u.ID)
	if err != nil {
		return nil, nil, err
	}

	transactions, err := s.txRepo.List(ctx, u.ID, transaction.Filter{AccountID: &id})
	if err != nil {
		return nil, nil, err
	}

	return acc, transactions, nil
}

// ListAccounts retrieves all accounts owned by the resolved user
func (s *AccountServiceImpl) ListAccounts(ctx context.Context, subject string) ([]*account.Account, error) {
	u, err := s.resolver.resolve(ctx, subject)
	if err != nil {
		return nil, err
	}
	return s.accountRepo.ListByUser(ctx, u.ID)
}
