package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/spendwise-platform/internal/domain/account"
	"github.com/spendwise-platform/internal/domain/shared"
	"github.com/spendwise-platform/internal/domain/transaction"
	"github.com/spendwise-platform/internal/domain/user"
	"github.com/spendwise-platform/internal/ledger"
	"github.com/spendwise-platform/internal/platform/admission"
	"github.com/spendwise-platform/internal/platform/messaging/producers"
	"github.com/spendwise-platform/internal/platform/view"
	"github.com/spendwise-platform/internal/recurrence"
)

// TransactionServiceImpl implements the TransactionService interface
type TransactionServiceImpl struct {
	resolver    subjectResolver
	accountRepo account.Repository
	txRepo      transaction.Repository
	db          persistenceTxRunner
	applier     ledger.Applier
	limiter     admission.Limiter
	invalidator view.Invalidator
	publisher   producers.MessagePublisher
	logger      *slog.Logger
}

// persistenceTxRunner is the slice of the database the facade needs: the
// ability to run a function inside one atomic unit.
type persistenceTxRunner interface {
	ExecuteTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}

// NewTransactionService creates a new transaction service
func NewTransactionService(
	logger *slog.Logger,
	userRepo user.Repository,
	accountRepo account.Repository,
	txRepo transaction.Repository,
	db persistenceTxRunner,
	applier ledger.Applier,
	limiter admission.Limiter,
	invalidator view.Invalidator,
	publisher producers.MessagePublisher,
) TransactionService {
	return &TransactionServiceImpl{
		resolver:    subjectResolver{userRepo: userRepo},
		accountRepo: accountRepo,
		txRepo:      txRepo,
		db:          db,
		applier:     applier,
		limiter:     limiter,
		invalidator: invalidator,
		publisher:   publisher,
		logger:      logger,
	}
}

// Create inserts a transaction and applies its signed amount to the account
// balance in one atomic unit. Either both writes land or neither does.
func (s *TransactionServiceImpl) Create(ctx context.Context, subject string, in TransactionInput) (*transaction.Transaction, error) {
	u, err := s.resolver.resolve(ctx, subject)
	if err != nil {
		return nil, err
	}

	decision := s.limiter.Allow(u.ID.String())
	if !decision.Allowed {
		s.logger.Warn("Transaction create rate limited",
			"user_id", u.ID.String(),
			"retry_after", decision.RetryAfter,
		)
		return nil, shared.ErrRateLimited{RetryAfter: decision.RetryAfter, Remaining: decision.Remaining}
	}

	// Ownership check; a foreign account id reads as absent.
	if _, err := s.accountRepo.GetByID(ctx, in.AccountID, u.ID); err != nil {
		return nil, err
	}

	t, err := transaction.New(u.ID, in.AccountID, in.Type, in.Amount, in.Date, in.Category, in.Description, in.IsRecurring, in.RecurringInterval)
	if err != nil {
		return nil, err
	}

	if t.IsRecurring {
		next, err := recurrence.Next(t.Date, *t.RecurringInterval)
		if err != nil {
			return nil, err
		}
		t.NextRecurringDate = &next
	}

	delta := ledger.CreateDelta(ledger.SignedAmount(t.Type, t.Amount))

	err = s.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		if err := s.txRepo.WithTx(tx).Create(ctx, t); err != nil {
			return err
		}
		return s.applier.Apply(ctx, tx, t.AccountID, u.ID, delta)
	})
	if err != nil {
		s.logger.Error("Failed to create transaction",
			"user_id", u.ID.String(),
			"account_id", t.AccountID.String(),
			"error", err,
		)
		return nil, err
	}

	s.afterMutation(ctx, shared.EventTransactionCreated, t, in.CorrelationID)

	s.logger.Info("Transaction created",
		"transaction_id", t.ID.String(),
		"account_id", t.AccountID.String(),
		"type", string(t.Type),
	)
	return t, nil
}

// Update replaces a transaction's fields and shifts the account balance by
// the net delta between the new signed amount and the one previously
// persisted. The prior row is read under lock inside the same atomic unit,
// so a concurrent update cannot interleave between read and write.
func (s *TransactionServiceImpl) Update(ctx context.Context, subject string, id uuid.UUID, in TransactionInput) (*transaction.Transaction, error) {
	u, err := s.resolver.resolve(ctx, subject)
	if err != nil {
		return nil, err
	}

	var updated *transaction.Transaction
	err = s.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		repo := s.txRepo.WithTx(tx)

		prior, err := repo.GetByIDForUpdate(ctx, id, u.ID)
		if err != nil {
			return err
		}

		// Re-validate through the constructor, then restore identity.
		// The owning account never changes on update.
		candidate, err := transaction.New(u.ID, prior.AccountID, in.Type, in.Amount, in.Date, in.Category, in.Description, in.IsRecurring, in.RecurringInterval)
		if err != nil {
			return err
		}
		candidate.ID = prior.ID
		candidate.CreatedAt = prior.CreatedAt
		candidate.Status = prior.Status
		candidate.LastProcessed = prior.LastProcessed

		if candidate.IsRecurring {
			next, err := recurrence.Next(candidate.Date, *candidate.RecurringInterval)
			if err != nil {
				return err
			}
			candidate.NextRecurringDate = &next
		}

		if err := repo.Update(ctx, candidate); err != nil {
			return err
		}

		delta := ledger.UpdateDelta(
			ledger.SignedAmount(prior.Type, prior.Amount),
			ledger.SignedAmount(candidate.Type, candidate.Amount),
		)
		if err := s.applier.Apply(ctx, tx, candidate.AccountID, u.ID, delta); err != nil {
			return err
		}

		updated = candidate
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterMutation(ctx, shared.EventTransactionUpdated, updated, in.CorrelationID)

	s.logger.Info("Transaction updated",
		"transaction_id", updated.ID.String(),
		"account_id", updated.AccountID.String(),
	)
	return updated, nil
}

// Get retrieves one transaction scoped to the resolved user
func (s *TransactionServiceImpl) Get(ctx context.Context, subject string, id uuid.UUID) (*transaction.Transaction, error) {
	u, err := s.resolver.resolve(ctx, subject)
	if err != nil {
		return nil, err
	}
	return s.txRepo.GetByID(ctx, id, u.ID)
}

// List retrieves the user's transactions matching the filter
func (s *TransactionServiceImpl) List(ctx context.Context, subject string, filter transaction.Filter) ([]*transaction.WithAccount, error) {
	u, err := s.resolver.resolve(ctx, subject)
	if err != nil {
		return nil, err
	}
	return s.txRepo.List(ctx, u.ID, filter)
}

// afterMutation runs the non-transactional side effects of a successful
// write: view invalidation and the notification event. Both are best-effort
// and never fail the mutation that already committed.
func (s *TransactionServiceImpl) afterMutation(ctx context.Context, eventType shared.EventType, t *transaction.Transaction, correlationID string) {
	s.invalidator.Invalidate(ctx, view.DashboardPath, view.AccountPathPrefix+t.AccountID.String())

	event := shared.TransactionEvent{
		Event:         eventType,
		TransactionID: t.ID,
		AccountID:     t.AccountID,
		UserID:        t.UserID,
		Type:          t.Type,
		Amount:        transaction.NormalizeAmount(t.Amount),
		CorrelationID: correlationID,
		OccurredAt:    time.Now(),
	}
	if err := s.publisher.Publish(ctx, t.AccountID.String(), event); err != nil {
		s.logger.Error("Failed to publish transaction event",
			"event", string(eventType),
			"transaction_id", t.ID.String(),
			"error", err,
		)
	}
}
