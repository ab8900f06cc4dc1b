package db

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"thumblytic-backend-go/internal/models"
)

const auditLogsCollection = "audit_logs"

type firestoreAuditRepository struct {
	client *firestore.Client
}

// NewFirestoreAuditRepository creates an AuditRepository writing to the audit_logs collection.
func NewFirestoreAuditRepository(client *firestore.Client) AuditRepository {
	return &firestoreAuditRepository{client: client}
}

func (r *firestoreAuditRepository) Create(ctx context.Context, logEntry models.AuditLog) error {
	if logEntry.Action == "" {
		return errors.New("audit log action cannot be empty")
	}
	if _, _, err := r.client.Collection(auditLogsCollection).Add(ctx, logEntry); err != nil {
		return fmt.Errorf("failed to write audit log '%s': %w", logEntry.Action, err)
	}
	return nil
}

func (r *firestoreAuditRepository) ListRecent(ctx context.Context, limit int) ([]*models.AuditLog, error) {
	if limit <= 0 {
		limit = 100
	}
	iter := r.client.Collection(auditLogsCollection).
		OrderBy("timestamp", firestore.Desc).
		Limit(limit).
		Documents(ctx)
	defer iter.Stop()

	logs := []*models.AuditLog{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return logs, nil
			}
			return nil, fmt.Errorf("failed to iterate audit logs: %w", err)
		}
		var entry models.AuditLog
		if err := doc.DataTo(&entry); err != nil {
			return nil, fmt.Errorf("failed to decode audit log '%s': %w", doc.Ref.ID, err)
		}
		entry.ID = doc.Ref.ID
		logs = append(logs, &entry)
	}
	return logs, nil
}
