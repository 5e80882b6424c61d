package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/spendwise-platform/internal/domain/receipt"
	"github.com/spendwise-platform/internal/domain/user"
)

// ReceiptExtractor runs extraction on a receipt image and reports which
// model produced the draft
type ReceiptExtractor interface {
	Scan(ctx context.Context, image []byte, mimeType string) (*receipt.Draft, string, error)
}

// ReceiptServiceImpl implements the ReceiptService interface
type ReceiptServiceImpl struct {
	resolver  subjectResolver
	extractor ReceiptExtractor
	auditRepo receipt.AuditRepository
	logger    *slog.Logger
}

// NewReceiptService creates a new receipt service
func NewReceiptService(logger *slog.Logger, userRepo user.Repository, extractor ReceiptExtractor, auditRepo receipt.AuditRepository) ReceiptService {
	return &ReceiptServiceImpl{
		resolver:  subjectResolver{userRepo: userRepo},
		extractor: extractor,
		auditRepo: auditRepo,
		logger:    logger,
	}
}

// Scan extracts a draft from the image and records an audit entry for the
// attempt, successful or not. Audit write failures are logged and never
// surface to the caller.
func (s *ReceiptServiceImpl) Scan(ctx context.Context, subject string, image []byte, mimeType string) (*receipt.Draft, error) {
	u, err := s.resolver.resolve(ctx, subject)
	if err != nil {
		return nil, err
	}

	draft, model, err := s.extractor.Scan(ctx, image, mimeType)

	audit := &receipt.ScanAudit{
		ID:        uuid.New(),
		UserID:    u.ID,
		Model:     model,
		Outcome:   scanOutcome(draft, err),
		Draft:     draft,
		MimeType:  mimeType,
		CreatedAt: time.Now(),
	}
	if err != nil {
		audit.Error = err.Error()
	}
	if recordErr := s.auditRepo.Record(ctx, audit); recordErr != nil {
		s.logger.Error("Failed to record scan audit", "user_id", u.ID.String(), "error", recordErr)
	}

	if err != nil {
		s.logger.Warn("Receipt scan failed", "user_id", u.ID.String(), "outcome", string(audit.Outcome), "error", err)
		return nil, err
	}

	s.logger.Info("Receipt scanned", "user_id", u.ID.String(), "model", model)
	return draft, nil
}

// ListScans returns the user's most recent scan audits
func (s *ReceiptServiceImpl) ListScans(ctx context.Context, subject string, limit int) ([]*receipt.ScanAudit, error) {
	u, err := s.resolver.resolve(ctx, subject)
	if err != nil {
		return nil, err
	}
	return s.auditRepo.ListByUser(ctx, u.ID, limit)
}

func scanOutcome(draft *receipt.Draft, err error) receipt.ScanOutcome {
	switch {
	case err == nil && draft != nil:
		return receipt.ScanOutcomeExtracted
	case errors.Is(err, receipt.ErrNoReceiptData):
		return receipt.ScanOutcomeNoData
	case errors.Is(err, receipt.ErrIncompleteData):
		return receipt.ScanOutcomeIncomplete
	default:
		return receipt.ScanOutcomeFailed
	}
}
