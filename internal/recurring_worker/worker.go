// Package recurring_worker materializes due recurring transactions. Each due
// template yields one concrete transaction instance, applied to the account
// balance in the same atomic unit that advances the template's schedule.
package recurring_worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/panjf2000/ants/v2"

	"github.com/spendwise-platform/internal/config"
	"github.com/spendwise-platform/internal/domain/shared"
	"github.com/spendwise-platform/internal/domain/transaction"
	"github.com/spendwise-platform/internal/ledger"
	"github.com/spendwise-platform/internal/platform/messaging/producers"
	"github.com/spendwise-platform/internal/recurrence"
)

// txRunner is the slice of the database the worker needs
type txRunner interface {
	ExecuteTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}

// Worker polls for due recurring transactions and processes each batch on a
// worker pool
type Worker struct {
	txRepo       transaction.Repository
	db           txRunner
	applier      ledger.Applier
	publisher    producers.MessagePublisher
	pool         *ants.Pool
	logger       *slog.Logger
	pollInterval time.Duration
	batchSize    int
	now          func() time.Time
}

func NewWorker(
	cfg *config.RecurringConfig,
	logger *slog.Logger,
	txRepo transaction.Repository,
	db txRunner,
	applier ledger.Applier,
	publisher producers.MessagePublisher,
) (*Worker, error) {
	pool, err := ants.NewPool(cfg.PoolSize)
	if err != nil {
		return nil, err
	}

	return &Worker{
		txRepo:       txRepo,
		db:           db,
		applier:      applier,
		publisher:    publisher,
		pool:         pool,
		logger:       logger,
		pollInterval: cfg.PollingInterval,
		batchSize:    cfg.BatchSize,
		now:          time.Now,
	}, nil
}

// Start begins polling until context is canceled
func (w *Worker) Start(ctx context.Context) {
	w.logger.Info("Starting recurring transaction worker",
		"poll_interval", w.pollInterval.String(),
		"batch_size", w.batchSize,
		"pool_size", w.pool.Cap(),
	)
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Recurring worker stopping due to context cancellation")
			return
		case <-ticker.C:
			if err := w.processDue(ctx); err != nil {
				w.logger.Error("Error during batch processing of due recurring transactions", "error", err)
			}
		}
	}
}

// processDue fetches one batch of due templates and processes them on the
// pool, waiting for the batch to drain before returning. A template with
// more than one occurrence overdue is advanced one step per tick.
func (w *Worker) processDue(ctx context.Context) error {
	due, err := w.txRepo.ListDueRecurring(ctx, w.now(), w.batchSize)
	if err != nil {
		return err
	}

	if len(due) == 0 {
		w.logger.Debug("No due recurring transactions found")
		return nil
	}

	w.logger.Info("Fetched due recurring transactions", "count", len(due))

	var wg sync.WaitGroup
	for _, template := range due {
		template := template
		wg.Add(1)
		submitErr := w.pool.Submit(func() {
			defer wg.Done()
			if err := w.processOne(ctx, template); err != nil {
				w.logger.Error("Failed to process recurring transaction",
					"transaction_id", template.ID.String(),
					"error", err,
				)
			}
		})
		if submitErr != nil {
			wg.Done()
			w.logger.Error("Failed to submit recurring transaction to worker pool",
				"transaction_id", template.ID.String(),
				"error", submitErr,
			)
		}
	}
	wg.Wait()

	return nil
}

// processOne materializes the next occurrence of one recurring template.
// Insert, balance apply, and schedule advance commit together or not at all,
// so a crash mid-processing never double-counts an occurrence.
func (w *Worker) processOne(ctx context.Context, template *transaction.Transaction) error {
	if template.RecurringInterval == nil || template.NextRecurringDate == nil {
		w.logger.Warn("Skipping malformed recurring transaction",
			"transaction_id", template.ID.String(),
		)
		return nil
	}

	occurredOn := *template.NextRecurringDate

	instance, err := transaction.New(
		template.UserID,
		template.AccountID,
		template.Type,
		template.Amount,
		occurredOn,
		template.Category,
		template.Description,
		false,
		nil,
	)
	if err != nil {
		return err
	}

	next, err := recurrence.Next(occurredOn, *template.RecurringInterval)
	if err != nil {
		return err
	}

	delta := ledger.CreateDelta(ledger.SignedAmount(instance.Type, instance.Amount))
	processedAt := w.now()

	err = w.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		repo := w.txRepo.WithTx(tx)
		if err := repo.Create(ctx, instance); err != nil {
			return err
		}
		if err := w.applier.Apply(ctx, tx, instance.AccountID, instance.UserID, delta); err != nil {
			return err
		}
		return repo.AdvanceRecurring(ctx, template.ID, next, processedAt)
	})
	if err != nil {
		return err
	}

	event := shared.TransactionEvent{
		Event:         shared.EventRecurringProcessed,
		TransactionID: instance.ID,
		AccountID:     instance.AccountID,
		UserID:        instance.UserID,
		Type:          instance.Type,
		Amount:        transaction.NormalizeAmount(instance.Amount),
		OccurredAt:    processedAt,
	}
	if err := w.publisher.Publish(ctx, instance.AccountID.String(), event); err != nil {
		w.logger.Error("Failed to publish recurring processed event",
			"transaction_id", instance.ID.String(),
			"error", err,
		)
	}

	w.logger.Info("Recurring transaction processed",
		"template_id", template.ID.String(),
		"instance_id", instance.ID.String(),
		"next_recurring_date", next.Format(time.RFC3339),
	)
	return nil
}

// Shutdown gracefully shuts down the worker pool
func (w *Worker) Shutdown() {
	w.logger.Info("Shutting down recurring worker pool", "running_workers", w.pool.Running())
	w.pool.Release()
}
