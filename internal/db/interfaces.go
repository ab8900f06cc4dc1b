package db

import (
	"context"

	"thumblytic-backend-go/internal/models"
)

// ProfileRepository defines storage operations on the profiles table.
type ProfileRepository interface {
	GetByID(ctx context.Context, userID string) (*models.Profile, error)
	// Create inserts a new profile. An existing row with the same id is left untouched
	// and returned instead.
	Create(ctx context.Context, profile *models.Profile) (*models.Profile, error)
	// RefillDaily resets a free profile's credits if its last reset is not today.
	// Returns ErrNoRowsAffected when the row was already refilled or is not free.
	RefillDaily(ctx context.Context, userID string, credits int, today models.Date) (*models.Profile, error)
	ListAll(ctx context.Context) ([]*models.Profile, error)
	SetSuspended(ctx context.Context, userID string, suspended bool) (*models.Profile, error)
	ToggleSuspended(ctx context.Context, userID string) (*models.Profile, error)
	UpdatePlan(ctx context.Context, userID string, plan models.Plan, credits int) (*models.Profile, error)
	// ResetAllToFree downgrades every non-free profile and returns how many rows changed.
	ResetAllToFree(ctx context.Context, credits int) (int64, error)
}

// GenerationRepository defines storage operations on the generations table.
type GenerationRepository interface {
	// CreateAndSpend inserts the record and, when spend is true, decrements the owner's
	// credits (floored at zero) in the same transaction.
	CreateAndSpend(ctx context.Context, gen *models.Generation, spend bool) (*models.Generation, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]*models.Generation, error)
	Count(ctx context.Context) (int64, error)
}

// AppealDecision describes a pending→final transition applied by AppealRepository.Decide.
type AppealDecision struct {
	Status models.AppealStatus
	// GrantPlan and GrantCredits are applied to the appeal owner's profile when GrantPlan is set.
	GrantPlan    models.Plan
	GrantCredits int
}

// AppealRepository defines storage operations on the appeals table.
type AppealRepository interface {
	Create(ctx context.Context, appeal *models.Appeal) (*models.Appeal, error)
	GetByID(ctx context.Context, appealID string) (*models.Appeal, error)
	ListAll(ctx context.Context) ([]*models.Appeal, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Appeal, error)
	// Decide locks the appeal, and if it is pending applies the decision atomically.
	// A non-pending appeal is returned unchanged together with ErrAlreadyDecided.
	Decide(ctx context.Context, appealID string, decision AppealDecision) (*models.Appeal, error)
}

// AuditRepository defines the interface for audit log data storage operations.
type AuditRepository interface {
	Create(ctx context.Context, logEntry models.AuditLog) error
	ListRecent(ctx context.Context, limit int) ([]*models.AuditLog, error)
}
