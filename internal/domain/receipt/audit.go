package receipt

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ScanOutcome labels the result of one extraction attempt
type ScanOutcome string

const (
	ScanOutcomeExtracted  ScanOutcome = "EXTRACTED"
	ScanOutcomeNoData     ScanOutcome = "NO_DATA"
	ScanOutcomeIncomplete ScanOutcome = "INCOMPLETE"
	ScanOutcomeFailed     ScanOutcome = "FAILED"
)

// ScanAudit records one receipt scan for later review: which model answered,
// what was extracted, or why extraction failed.
type ScanAudit struct {
	ID        uuid.UUID   `bson:"scan_id" json:"id"`
	UserID    uuid.UUID   `bson:"user_id" json:"user_id"`
	Model     string      `bson:"model,omitempty" json:"model,omitempty"`
	Outcome   ScanOutcome `bson:"outcome" json:"outcome"`
	Draft     *Draft      `bson:"draft,omitempty" json:"draft,omitempty"`
	Error     string      `bson:"error,omitempty" json:"error,omitempty"`
	MimeType  string      `bson:"mime_type" json:"mime_type"`
	CreatedAt time.Time   `bson:"created_at" json:"created_at"`
}

// AuditRepository stores scan audits in the document store
type AuditRepository interface {
	Record(ctx context.Context, audit *ScanAudit) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*ScanAudit, error)
}
