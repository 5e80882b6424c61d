package shared

import (
	"time"

	"github.com/google/uuid"
)

// EventType labels a transaction notification event
type EventType string

const (
	EventTransactionCreated EventType = "TRANSACTION_CREATED"
	EventTransactionUpdated EventType = "TRANSACTION_UPDATED"
	EventRecurringProcessed EventType = "RECURRING_PROCESSED"
)

// TransactionEvent is published to the notification topic after a successful
// ledger mutation. Delivery is fire-and-forget: consumers drive emails and
// alerts, ledger correctness never depends on it.
type TransactionEvent struct {
	Event         EventType       `json:"event"`
	TransactionID uuid.UUID       `json:"transaction_id"`
	AccountID     uuid.UUID       `json:"account_id"`
	UserID        uuid.UUID       `json:"user_id"`
	Type          TransactionType `json:"type"`
	Amount        float64         `json:"amount"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	OccurredAt    time.Time       `json:"occurred_at"`
}
