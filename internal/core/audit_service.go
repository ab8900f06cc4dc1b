package core

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"thumblytic-backend-go/internal/db"
	"thumblytic-backend-go/internal/models"
)

// auditService implements the AuditService interface.
type auditService struct {
	auditRepo db.AuditRepository
	logger    *zap.Logger
}

// NewAuditService creates a new AuditService instance.
// A nil repository turns every write into a log line only.
func NewAuditService(auditRepo db.AuditRepository, logger *zap.Logger) AuditService {
	return &auditService{
		auditRepo: auditRepo,
		logger:    logger.Named("audit"),
	}
}

// CreateAuditLog creates a new audit log entry.
func (s *auditService) CreateAuditLog(ctx context.Context, logEntry models.AuditLog) error {
	if s.auditRepo == nil {
		return fmt.Errorf("AuditRepository not initialized in AuditService")
	}
	if err := s.auditRepo.Create(ctx, logEntry); err != nil {
		return fmt.Errorf("failed to create audit log via repository: %w", err)
	}
	return nil
}

func (s *auditService) Record(ctx context.Context, actorID, action, targetType, targetID string, details map[string]interface{}) {
	entry := models.AuditLog{
		UserID:     actorID,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Details:    details,
	}
	if err := s.CreateAuditLog(ctx, entry); err != nil {
		s.logger.Warn("audit write failed",
			zap.String("action", action),
			zap.String("actor", actorID),
			zap.String("target", targetID),
			zap.Error(err))
	}
}

func (s *auditService) ListRecent(ctx context.Context, limit int) ([]*models.AuditLog, error) {
	if s.auditRepo == nil {
		return []*models.AuditLog{}, nil
	}
	logs, err := s.auditRepo.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit logs: %w", err)
	}
	return logs, nil
}
