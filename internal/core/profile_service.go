package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"thumblytic-backend-go/internal/db"
	"thumblytic-backend-go/internal/models"
)

// DailyRefill decides the daily free-plan top-up. Paid plans and profiles already
// refilled today are returned unchanged.
func DailyRefill(today, lastReset models.Date, plan models.Plan, credits int) (int, models.Date, bool) {
	if plan != models.PlanFree {
		return credits, lastReset, false
	}
	if lastReset.Equal(today) {
		return credits, lastReset, false
	}
	return models.FreeDailyCredits, today, true
}

// unavailable marks a soft profile failure. A missing table is additionally tagged
// ErrSchemaMissing so callers can tell an uninitialized store from an outage.
func unavailable(err error) error {
	if db.IsSchemaMissing(err) {
		return fmt.Errorf("%w: %w: %v", ErrProfileUnavailable, ErrSchemaMissing, err)
	}
	return fmt.Errorf("%w: %v", ErrProfileUnavailable, err)
}

type profileService struct {
	profiles db.ProfileRepository
	now      Clock
	logger   *zap.Logger
}

// NewProfileService creates a ProfileService. A nil clock defaults to time.Now.
func NewProfileService(profiles db.ProfileRepository, now Clock, logger *zap.Logger) ProfileService {
	if now == nil {
		now = time.Now
	}
	return &profileService{profiles: profiles, now: now, logger: logger.Named("profile")}
}

func (s *profileService) Sync(ctx context.Context, identity models.Identity) (*models.Profile, error) {
	if identity.UID == "" {
		return nil, errors.New("identity UID cannot be empty")
	}
	today := models.DateOf(s.now())

	profile, err := s.profiles.GetByID(ctx, identity.UID)
	if err != nil {
		if !errors.Is(err, db.ErrNotFound) && !db.IsSchemaMissing(err) {
			s.logger.Warn("profile read failed", zap.String("userID", identity.UID), zap.Error(err))
			return nil, unavailable(err)
		}
		created, createErr := s.profiles.Create(ctx, models.NewDefaultProfile(identity, today))
		if createErr != nil {
			s.logger.Warn("profile initialization failed",
				zap.String("userID", identity.UID), zap.Bool("schemaMissing", db.IsSchemaMissing(createErr)), zap.Error(createErr))
			return nil, unavailable(createErr)
		}
		s.logger.Info("profile created", zap.String("userID", identity.UID))
		return created, nil
	}

	credits, reset, changed := DailyRefill(today, profile.LastCreditReset, profile.Plan, profile.Credits)
	if !changed {
		return profile, nil
	}
	refilled, err := s.profiles.RefillDaily(ctx, profile.ID, credits, reset)
	if errors.Is(err, db.ErrNoRowsAffected) {
		// A concurrent session already refilled; read the winner's row.
		return s.GetByID(ctx, profile.ID)
	}
	if err != nil {
		// The stored balance is stale and must not be used for gating.
		s.logger.Warn("daily refill failed", zap.String("userID", profile.ID), zap.Error(err))
		return nil, unavailable(err)
	}
	return refilled, nil
}

func (s *profileService) GetByID(ctx context.Context, userID string) (*models.Profile, error) {
	profile, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrProfileNotFound, userID)
		}
		return nil, fmt.Errorf("failed to get profile '%s': %w", userID, err)
	}
	return profile, nil
}
