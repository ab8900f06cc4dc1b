package core

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"thumblytic-backend-go/internal/db"
	"thumblytic-backend-go/internal/models"
)

// Migrator applies pending schema migrations.
type Migrator func(ctx context.Context) (version uint, applied bool, err error)

type adminService struct {
	profiles    db.ProfileRepository
	generations db.GenerationRepository
	appeals     db.AppealRepository
	audit       AuditService
	sealer      messageSealer
	migrate     Migrator
	logger      *zap.Logger
}

// AdminDeps groups AdminService collaborators.
type AdminDeps struct {
	Profiles      db.ProfileRepository
	Generations   db.GenerationRepository
	Appeals       db.AppealRepository
	Audit         AuditService
	Encryption    EncryptionService
	EncryptionKey []byte
	Migrate       Migrator
}

// NewAdminService creates an AdminService.
func NewAdminService(deps AdminDeps, logger *zap.Logger) AdminService {
	return &adminService{
		profiles:    deps.Profiles,
		generations: deps.Generations,
		appeals:     deps.Appeals,
		audit:       deps.Audit,
		sealer:      messageSealer{enc: deps.Encryption, key: deps.EncryptionKey},
		migrate:     deps.Migrate,
		logger:      logger.Named("admin"),
	}
}

// schemaOr converts missing-table errors into ErrSchemaMissing.
func schemaOr(err error, msg string) error {
	if db.IsSchemaMissing(err) {
		return fmt.Errorf("%w: %v", ErrSchemaMissing, err)
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func (s *adminService) Overview(ctx context.Context) (*Overview, error) {
	profiles, err := s.profiles.ListAll(ctx)
	if err != nil {
		return nil, schemaOr(err, "failed to load profiles")
	}
	appeals, err := s.appeals.ListAll(ctx)
	if err != nil {
		return nil, schemaOr(err, "failed to load appeals")
	}
	count, err := s.generations.Count(ctx)
	if err != nil {
		return nil, schemaOr(err, "failed to count generations")
	}

	out := &Overview{Profiles: profiles, Appeals: appeals, GenerationCount: count}
	for _, a := range appeals {
		plain, err := s.sealer.open(a.Message)
		if err != nil {
			s.logger.Warn("appeal message decrypt failed", zap.String("appealID", a.ID), zap.Error(err))
			plain = ""
		}
		a.Message = plain
		if a.Status == models.AppealPending {
			out.PendingAppeals++
		}
	}
	for _, p := range profiles {
		if p.Plan != models.PlanFree {
			out.PaidProfiles++
		}
	}
	return out, nil
}

func (s *adminService) SetSuspended(ctx context.Context, actor models.Identity, userID string, suspended bool) (*models.Profile, error) {
	profile, err := s.profiles.SetSuspended(ctx, userID, suspended)
	if err != nil {
		return nil, s.profileErr(err)
	}
	s.audit.Record(ctx, actor.UID, models.AuditUserSuspend, "PROFILE", userID,
		map[string]interface{}{"suspended": profile.IsSuspended})
	return profile, nil
}

func (s *adminService) ToggleSuspension(ctx context.Context, actor models.Identity, userID string) (*models.Profile, error) {
	profile, err := s.profiles.ToggleSuspended(ctx, userID)
	if err != nil {
		return nil, s.profileErr(err)
	}
	s.audit.Record(ctx, actor.UID, models.AuditUserSuspend, "PROFILE", userID,
		map[string]interface{}{"suspended": profile.IsSuspended, "toggle": true})
	return profile, nil
}

func (s *adminService) OverridePlan(ctx context.Context, actor models.Identity, userID string, plan models.Plan) (*models.Profile, error) {
	if !plan.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPlan, plan)
	}
	credits := models.CreditsForPlan(plan)
	profile, err := s.profiles.UpdatePlan(ctx, userID, plan, credits)
	if err != nil {
		return nil, s.profileErr(err)
	}
	s.audit.Record(ctx, actor.UID, models.AuditUserPlanOverride, "PROFILE", userID,
		map[string]interface{}{"plan": string(plan), "credits": credits})
	return profile, nil
}

func (s *adminService) ResetAllPlans(ctx context.Context, actor models.Identity, confirmation string) (int64, error) {
	if confirmation != ResetConfirmationPhrase {
		return 0, ErrConfirmationRequired
	}
	n, err := s.profiles.ResetAllToFree(ctx, models.FreeDailyCredits)
	if err != nil {
		return 0, schemaOr(err, "failed to reset plans")
	}
	s.logger.Warn("all plans reset to free", zap.String("actor", actor.UID), zap.Int64("profiles", n))
	s.audit.Record(ctx, actor.UID, models.AuditPlansReset, "PROFILE", "*",
		map[string]interface{}{"affected": n})
	return n, nil
}

func (s *adminService) ApplySchema(ctx context.Context, actor models.Identity) (*MigrationResult, error) {
	if s.migrate == nil {
		return nil, ErrMigrationUnavailable
	}
	version, applied, err := s.migrate(ctx)
	if err != nil {
		return nil, fmt.Errorf("schema migration failed: %w", err)
	}
	s.audit.Record(ctx, actor.UID, models.AuditSchemaMigrate, "SCHEMA", fmt.Sprint(version),
		map[string]interface{}{"applied": applied})
	return &MigrationResult{Version: version, Applied: applied}, nil
}

func (s *adminService) AuditLogs(ctx context.Context, limit int) ([]*models.AuditLog, error) {
	return s.audit.ListRecent(ctx, limit)
}

func (s *adminService) profileErr(err error) error {
	if errors.Is(err, db.ErrNotFound) {
		return fmt.Errorf("%w: %v", ErrProfileNotFound, err)
	}
	return schemaOr(err, "failed to update profile")
}
