package core

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"thumblytic-backend-go/internal/db"
	"thumblytic-backend-go/internal/events"
	"thumblytic-backend-go/internal/metrics"
	"thumblytic-backend-go/internal/models"
)

// MaxAppealMessageLength caps the free-text payment reference.
const MaxAppealMessageLength = 2000

type appealService struct {
	appeals   db.AppealRepository
	audit     AuditService
	publisher EventPublisher
	sealer    messageSealer
	logger    *zap.Logger
}

// NewAppealService creates an AppealService. When encryptionKey is non-empty,
// messages are encrypted at rest.
func NewAppealService(
	appeals db.AppealRepository,
	audit AuditService,
	publisher EventPublisher,
	enc EncryptionService,
	encryptionKey []byte,
	logger *zap.Logger,
) AppealService {
	return &appealService{
		appeals:   appeals,
		audit:     audit,
		publisher: publisher,
		sealer:    messageSealer{enc: enc, key: encryptionKey},
		logger:    logger.Named("appeal"),
	}
}

func (s *appealService) Submit(ctx context.Context, identity models.Identity, plan models.RequestedPlan, message string) (*models.Appeal, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrEmptyAppealMessage
	}
	if len(message) > MaxAppealMessageLength {
		return nil, ErrAppealMessageTooLong
	}
	if !plan.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPlan, plan)
	}

	stored, err := s.sealer.seal(message)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt appeal message: %w", err)
	}
	appeal, err := s.appeals.Create(ctx, &models.Appeal{
		UserID:        identity.UID,
		UserEmail:     identity.Email,
		RequestedPlan: plan,
		Message:       stored,
		Status:        models.AppealPending,
	})
	if err != nil {
		if db.IsSchemaMissing(err) {
			return nil, fmt.Errorf("%w: %v", ErrSchemaMissing, err)
		}
		return nil, fmt.Errorf("failed to submit appeal: %w", err)
	}
	appeal.Message = message

	metrics.RecordAppeal(string(models.AppealPending))
	s.audit.Record(ctx, identity.UID, models.AuditAppealSubmit, "APPEAL", appeal.ID,
		map[string]interface{}{"requestedPlan": string(plan)})
	s.publish(ctx, events.New(models.EventAppealSubmitted, identity.UID, identity.Email, map[string]string{
		"appealId":      appeal.ID,
		"requestedPlan": string(plan),
	}))
	return appeal, nil
}

func (s *appealService) ListMine(ctx context.Context, userID string) ([]*models.Appeal, error) {
	appeals, err := s.appeals.ListByUser(ctx, userID)
	if err != nil {
		if db.IsSchemaMissing(err) {
			return nil, fmt.Errorf("%w: %v", ErrSchemaMissing, err)
		}
		return nil, err
	}
	s.openAll(appeals)
	return appeals, nil
}

// grantFor resolves the plan and credits an approval applies.
// "custom" is granted as elite unless the approver overrides it.
func grantFor(requested models.RequestedPlan, opts models.ApprovalOptions) (models.Plan, int, error) {
	plan := models.PlanElite
	if requested == models.RequestedPro {
		plan = models.PlanPro
	}
	if opts.Plan != nil {
		if *opts.Plan != models.PlanPro && *opts.Plan != models.PlanElite {
			return "", 0, fmt.Errorf("%w: approval can grant pro or elite, got %q", ErrInvalidPlan, *opts.Plan)
		}
		plan = *opts.Plan
	}
	credits := models.CreditsForPlan(plan)
	if opts.Credits != nil {
		if *opts.Credits < 0 {
			return "", 0, ErrInvalidCredits
		}
		credits = *opts.Credits
	}
	return plan, credits, nil
}

func (s *appealService) Approve(ctx context.Context, actor models.Identity, appealID string, opts models.ApprovalOptions) (*models.Appeal, error) {
	if _, err := uuid.Parse(appealID); err != nil {
		return nil, ErrAppealNotFound
	}
	current, err := s.appeals.GetByID(ctx, appealID)
	if err != nil {
		return nil, s.mapRepoErr(err)
	}
	plan, credits, err := grantFor(current.RequestedPlan, opts)
	if err != nil {
		return nil, err
	}

	appeal, err := s.appeals.Decide(ctx, appealID, db.AppealDecision{
		Status:       models.AppealApproved,
		GrantPlan:    plan,
		GrantCredits: credits,
	})
	if err != nil {
		if errors.Is(err, db.ErrAlreadyDecided) && appeal != nil && appeal.Status == models.AppealApproved {
			s.openOne(appeal)
			return appeal, nil
		}
		return nil, s.mapRepoErr(err)
	}
	s.openOne(appeal)

	metrics.RecordAppeal(string(models.AppealApproved))
	s.audit.Record(ctx, actor.UID, models.AuditAppealApprove, "APPEAL", appealID, map[string]interface{}{
		"userId":  appeal.UserID,
		"plan":    string(plan),
		"credits": credits,
	})
	s.publish(ctx, events.New(models.EventAppealApproved, appeal.UserID, appeal.UserEmail, map[string]string{
		"appealId": appealID,
		"plan":     string(plan),
		"credits":  strconv.Itoa(credits),
	}))
	return appeal, nil
}

func (s *appealService) Reject(ctx context.Context, actor models.Identity, appealID string) (*models.Appeal, error) {
	if _, err := uuid.Parse(appealID); err != nil {
		return nil, ErrAppealNotFound
	}
	appeal, err := s.appeals.Decide(ctx, appealID, db.AppealDecision{Status: models.AppealRejected})
	if err != nil {
		if errors.Is(err, db.ErrAlreadyDecided) && appeal != nil && appeal.Status == models.AppealRejected {
			s.openOne(appeal)
			return appeal, nil
		}
		return nil, s.mapRepoErr(err)
	}
	s.openOne(appeal)

	metrics.RecordAppeal(string(models.AppealRejected))
	s.audit.Record(ctx, actor.UID, models.AuditAppealReject, "APPEAL", appealID, map[string]interface{}{
		"userId": appeal.UserID,
	})
	s.publish(ctx, events.New(models.EventAppealRejected, appeal.UserID, appeal.UserEmail, map[string]string{
		"appealId": appealID,
	}))
	return appeal, nil
}

func (s *appealService) mapRepoErr(err error) error {
	switch {
	case errors.Is(err, db.ErrNotFound):
		return fmt.Errorf("%w: %v", ErrAppealNotFound, err)
	case errors.Is(err, db.ErrAlreadyDecided):
		return ErrAppealNotPending
	case db.IsSchemaMissing(err):
		return fmt.Errorf("%w: %v", ErrSchemaMissing, err)
	}
	return err
}

func (s *appealService) publish(ctx context.Context, event models.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("event publish failed", zap.String("type", event.Type), zap.Error(err))
	}
}

func (s *appealService) openOne(a *models.Appeal) {
	plain, err := s.sealer.open(a.Message)
	if err != nil {
		s.logger.Warn("appeal message decrypt failed", zap.String("appealID", a.ID), zap.Error(err))
		a.Message = ""
		return
	}
	a.Message = plain
}

func (s *appealService) openAll(appeals []*models.Appeal) {
	for _, a := range appeals {
		s.openOne(a)
	}
}
