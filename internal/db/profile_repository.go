package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"thumblytic-backend-go/internal/models"
)

// Nullable columns are coalesced so rows created outside the app still scan.
const profileColumns = `id,
	COALESCE(full_name, '') AS full_name,
	COALESCE(email, '') AS email,
	credits,
	plan,
	is_suspended,
	last_credit_reset,
	created_at`

type postgresProfileRepository struct {
	db *sqlx.DB
}

// NewPostgresProfileRepository creates a ProfileRepository backed by Postgres.
func NewPostgresProfileRepository(conn *sqlx.DB) ProfileRepository {
	return &postgresProfileRepository{db: conn}
}

func (r *postgresProfileRepository) GetByID(ctx context.Context, userID string) (*models.Profile, error) {
	if userID == "" {
		return nil, errors.New("userID cannot be empty for GetByID operation")
	}
	var p models.Profile
	err := r.db.GetContext(ctx, &p, `SELECT `+profileColumns+` FROM profiles WHERE id = $1`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("profile '%s': %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get profile '%s': %w", userID, err)
	}
	return &p, nil
}

func (r *postgresProfileRepository) Create(ctx context.Context, profile *models.Profile) (*models.Profile, error) {
	if profile == nil || profile.ID == "" {
		return nil, errors.New("profile ID cannot be empty for Create operation")
	}
	var out models.Profile
	err := r.db.GetContext(ctx, &out, `
		INSERT INTO profiles (id, full_name, email, credits, plan, is_suspended, last_credit_reset)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING
		RETURNING `+profileColumns,
		profile.ID, profile.FullName, profile.Email, profile.Credits, profile.Plan, profile.IsSuspended, profile.LastCreditReset)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Another session inserted it first.
			return r.GetByID(ctx, profile.ID)
		}
		return nil, fmt.Errorf("failed to create profile '%s': %w", profile.ID, err)
	}
	return &out, nil
}

func (r *postgresProfileRepository) RefillDaily(ctx context.Context, userID string, credits int, today models.Date) (*models.Profile, error) {
	var out models.Profile
	err := r.db.GetContext(ctx, &out, `
		UPDATE profiles
		SET credits = $2, last_credit_reset = $3
		WHERE id = $1
		  AND plan = 'free'
		  AND (last_credit_reset IS NULL OR last_credit_reset <> $3)
		RETURNING `+profileColumns,
		userID, credits, today)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoRowsAffected
		}
		return nil, fmt.Errorf("failed to refill credits for profile '%s': %w", userID, err)
	}
	return &out, nil
}

func (r *postgresProfileRepository) ListAll(ctx context.Context) ([]*models.Profile, error) {
	profiles := []*models.Profile{}
	if err := r.db.SelectContext(ctx, &profiles, `SELECT `+profileColumns+` FROM profiles ORDER BY full_name`); err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	return profiles, nil
}

func (r *postgresProfileRepository) SetSuspended(ctx context.Context, userID string, suspended bool) (*models.Profile, error) {
	return r.updateReturning(ctx, userID,
		`UPDATE profiles SET is_suspended = $2 WHERE id = $1 RETURNING `+profileColumns, userID, suspended)
}

func (r *postgresProfileRepository) ToggleSuspended(ctx context.Context, userID string) (*models.Profile, error) {
	return r.updateReturning(ctx, userID,
		`UPDATE profiles SET is_suspended = NOT is_suspended WHERE id = $1 RETURNING `+profileColumns, userID)
}

func (r *postgresProfileRepository) UpdatePlan(ctx context.Context, userID string, plan models.Plan, credits int) (*models.Profile, error) {
	return r.updateReturning(ctx, userID,
		`UPDATE profiles SET plan = $2, credits = $3 WHERE id = $1 RETURNING `+profileColumns, userID, plan, credits)
}

func (r *postgresProfileRepository) ResetAllToFree(ctx context.Context, credits int) (int64, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE profiles SET plan = 'free', credits = $1 WHERE plan <> 'free'`, credits)
	if err != nil {
		return 0, fmt.Errorf("failed to reset plans: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read reset row count: %w", err)
	}
	return n, nil
}

func (r *postgresProfileRepository) updateReturning(ctx context.Context, userID, query string, args ...interface{}) (*models.Profile, error) {
	var out models.Profile
	if err := r.db.GetContext(ctx, &out, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("profile '%s': %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update profile '%s': %w", userID, err)
	}
	return &out, nil
}
