package mongo

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/spendwise-platform/internal/domain/receipt"
)

const (
	// ScanAuditCollectionName is the name of the scan audit collection in MongoDB
	ScanAuditCollectionName = "receipt_scans"
)

// ScanAuditRepository implements the receipt.AuditRepository interface for MongoDB
type ScanAuditRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewScanAuditRepository creates a new MongoDB scan audit repository
func NewScanAuditRepository(logger *slog.Logger, db *mongo.Database) receipt.AuditRepository {
	return &ScanAuditRepository{
		db:     db,
		logger: logger,
	}
}

// Record stores one receipt scan attempt
func (r *ScanAuditRepository) Record(ctx context.Context, audit *receipt.ScanAudit) error {
	collection := r.db.Collection(ScanAuditCollectionName)

	_, err := collection.InsertOne(ctx, audit)
	if err != nil {
		r.logger.Error("Failed to record receipt scan",
			"scan_id", audit.ID.String(),
			"error", err)
		return fmt.Errorf("failed to record receipt scan: %w", err)
	}

	return nil
}

// ListByUser retrieves a user's most recent scans, newest first
func (r *ScanAuditRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*receipt.ScanAudit, error) {
	collection := r.db.Collection(ScanAuditCollectionName)

	filter := bson.M{"user_id": userID}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to list receipt scans",
			"user_id", userID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to list receipt scans: %w", err)
	}
	defer cursor.Close(ctx)

	var audits []*receipt.ScanAudit
	if err := cursor.All(ctx, &audits); err != nil {
		return nil, fmt.Errorf("failed to decode receipt scans: %w", err)
	}

	return audits, nil
}
