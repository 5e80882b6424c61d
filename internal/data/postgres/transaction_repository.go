package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/spendwise-platform/internal/domain/shared"
	"github.com/spendwise-platform/internal/domain/transaction"
	"github.com/spendwise-platform/internal/platform/persistence"
)

const transactionColumns = `id, user_id, account_id, type, amount, date, category, description,
		is_recurring, recurring_interval, next_recurring_date, last_processed, status, created_at, updated_at`

// TransactionRepository implements the transaction.Repository interface for PostgreSQL
type TransactionRepository struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// NewTransactionRepository creates a new PostgreSQL transaction repository
func NewTransactionRepository(logger *slog.Logger, db *persistence.PostgresDB) transaction.Repository {
	return &TransactionRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction so that row writes and the
// ledger's balance write share one atomic unit
func (r *TransactionRepository) WithTx(tx pgx.Tx) transaction.Repository {
	return &TransactionRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create inserts a transaction row. The caller is responsible for pairing
// this with a ledger balance apply in the same atomic unit.
func (r *TransactionRepository) Create(ctx context.Context, t *transaction.Transaction) error {
	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := r.querier.Exec(ctx, query,
		t.ID,
		t.UserID,
		t.AccountID,
		t.Type,
		t.Amount,
		t.Date,
		t.Category,
		t.Description,
		t.IsRecurring,
		intervalValue(t.RecurringInterval),
		t.NextRecurringDate,
		t.LastProcessed,
		t.Status,
		t.CreatedAt,
		t.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create transaction", "id", t.ID.String(), "error", err)
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	return nil
}

// GetByID retrieves a transaction scoped to its owner
func (r *TransactionRepository) GetByID(ctx context.Context, id, userID uuid.UUID) (*transaction.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE id = $1 AND user_id = $2
	`

	t, err := r.scanOne(r.querier.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, transaction.ErrTransactionNotFound{TransactionID: id}
		}
		r.logger.Error("Failed to get transaction", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	return t, nil
}

// GetByIDForUpdate retrieves a transaction scoped to its owner and locks the
// row for the remainder of the enclosing atomic unit. Update deltas must be
// computed from the amount and type this returns.
func (r *TransactionRepository) GetByIDForUpdate(ctx context.Context, id, userID uuid.UUID) (*transaction.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE id = $1 AND user_id = $2
		FOR UPDATE
	`

	t, err := r.scanOne(r.querier.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, transaction.ErrTransactionNotFound{TransactionID: id}
		}
		r.logger.Error("Failed to lock transaction for update", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to lock transaction for update: %w", err)
	}

	return t, nil
}

// Update rewrites a transaction row, scoped to its owner
func (r *TransactionRepository) Update(ctx context.Context, t *transaction.Transaction) error {
	query := `
		UPDATE transactions
		SET type = $1, amount = $2, date = $3, category = $4, description = $5,
			is_recurring = $6, recurring_interval = $7, next_recurring_date = $8,
			status = $9, updated_at = $10
		WHERE id = $11 AND user_id = $12
	`

	result, err := r.querier.Exec(ctx, query,
		t.Type,
		t.Amount,
		t.Date,
		t.Category,
		t.Description,
		t.IsRecurring,
		intervalValue(t.RecurringInterval),
		t.NextRecurringDate,
		t.Status,
		t.UpdatedAt,
		t.ID,
		t.UserID,
	)
	if err != nil {
		r.logger.Error("Failed to update transaction", "id", t.ID.String(), "error", err)
		return fmt.Errorf("failed to update transaction: %w", err)
	}

	if result.RowsAffected() == 0 {
		return transaction.ErrTransactionNotFound{TransactionID: t.ID}
	}

	return nil
}

// List retrieves the user's transactions matching the filter, joined with
// their account, newest date first. Ties on date keep insertion order so
// repeated listings are stable.
func (r *TransactionRepository) List(ctx context.Context, userID uuid.UUID, filter transaction.Filter) ([]*transaction.WithAccount, error) {
	var sb strings.Builder
	sb.WriteString(`
		SELECT t.id, t.user_id, t.account_id, t.type, t.amount, t.date, t.category, t.description,
			t.is_recurring, t.recurring_interval, t.next_recurring_date, t.last_processed, t.status,
			t.created_at, t.updated_at, a.name
		FROM transactions t
		JOIN accounts a ON a.id = t.account_id
		WHERE t.user_id = $1`)

	args := []interface{}{userID}
	addCond := func(column string, value interface{}) {
		args = append(args, value)
		fmt.Fprintf(&sb, " AND %s = $%d", column, len(args))
	}

	if filter.AccountID != nil {
		addCond("t.account_id", *filter.AccountID)
	}
	if filter.Type != nil {
		addCond("t.type", *filter.Type)
	}
	if filter.Category != nil {
		addCond("t.category", *filter.Category)
	}
	if filter.IsRecurring != nil {
		addCond("t.is_recurring", *filter.IsRecurring)
	}

	sb.WriteString(`
		ORDER BY t.date DESC, t.created_at ASC, t.id ASC`)

	rows, err := r.querier.Query(ctx, sb.String(), args...)
	if err != nil {
		r.logger.Error("Failed to list transactions", "user_id", userID.String(), "error", err)
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var results []*transaction.WithAccount
	for rows.Next() {
		var (
			wa       transaction.WithAccount
			interval *string
		)
		if err := rows.Scan(
			&wa.ID,
			&wa.UserID,
			&wa.AccountID,
			&wa.Type,
			&wa.Amount,
			&wa.Date,
			&wa.Category,
			&wa.Description,
			&wa.IsRecurring,
			&interval,
			&wa.NextRecurringDate,
			&wa.LastProcessed,
			&wa.Status,
			&wa.CreatedAt,
			&wa.UpdatedAt,
			&wa.AccountName,
		); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		wa.RecurringInterval = intervalFromValue(interval)
		results = append(results, &wa)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	return results, nil
}

// ListDueRecurring retrieves recurring transactions whose next occurrence is
// due at or before the given instant, oldest due first
func (r *TransactionRepository) ListDueRecurring(ctx context.Context, due time.Time, limit int) ([]*transaction.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE is_recurring = TRUE AND next_recurring_date IS NOT NULL AND next_recurring_date <= $1
		ORDER BY next_recurring_date ASC
		LIMIT $2
	`

	rows, err := r.querier.Query(ctx, query, due, limit)
	if err != nil {
		r.logger.Error("Failed to list due recurring transactions", "error", err)
		return nil, fmt.Errorf("failed to list due recurring transactions: %w", err)
	}
	defer rows.Close()

	var results []*transaction.Transaction
	for rows.Next() {
		t, err := r.scanOne(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		results = append(results, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list due recurring transactions: %w", err)
	}

	return results, nil
}

// AdvanceRecurring moves a recurring transaction's schedule forward after an
// instance has been materialized
func (r *TransactionRepository) AdvanceRecurring(ctx context.Context, id uuid.UUID, nextDate, processedAt time.Time) error {
	query := `
		UPDATE transactions
		SET next_recurring_date = $1, last_processed = $2, updated_at = NOW()
		WHERE id = $3
	`

	result, err := r.querier.Exec(ctx, query, nextDate, processedAt, id)
	if err != nil {
		r.logger.Error("Failed to advance recurring transaction", "id", id.String(), "error", err)
		return fmt.Errorf("failed to advance recurring transaction: %w", err)
	}

	if result.RowsAffected() == 0 {
		return transaction.ErrTransactionNotFound{TransactionID: id}
	}

	return nil
}

// scanOne reads a full transaction row from a pgx.Row or pgx.Rows
func (r *TransactionRepository) scanOne(row pgx.Row) (*transaction.Transaction, error) {
	var (
		t        transaction.Transaction
		interval *string
	)
	err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.AccountID,
		&t.Type,
		&t.Amount,
		&t.Date,
		&t.Category,
		&t.Description,
		&t.IsRecurring,
		&interval,
		&t.NextRecurringDate,
		&t.LastProcessed,
		&t.Status,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.RecurringInterval = intervalFromValue(interval)
	return &t, nil
}

func intervalValue(i *shared.RecurringInterval) *string {
	if i == nil {
		return nil
	}
	s := string(*i)
	return &s
}

func intervalFromValue(s *string) *shared.RecurringInterval {
	if s == nil {
		return nil
	}
	i := shared.RecurringInterval(*s)
	return &i
}
