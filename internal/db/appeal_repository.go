package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"thumblytic-backend-go/internal/models"
)

// ErrAlreadyDecided is returned by Decide when the appeal is no longer pending.
var ErrAlreadyDecided = errors.New("appeal already decided")

const appealColumns = `id, user_id, user_email, requested_plan, message, status, created_at`

type postgresAppealRepository struct {
	db *sqlx.DB
}

// NewPostgresAppealRepository creates an AppealRepository backed by Postgres.
func NewPostgresAppealRepository(conn *sqlx.DB) AppealRepository {
	return &postgresAppealRepository{db: conn}
}

func (r *postgresAppealRepository) Create(ctx context.Context, appeal *models.Appeal) (*models.Appeal, error) {
	if appeal == nil || appeal.UserID == "" {
		return nil, errors.New("appeal must have a user ID")
	}
	if appeal.ID == "" {
		appeal.ID = uuid.NewString()
	}
	if appeal.Status == "" {
		appeal.Status = models.AppealPending
	}
	var out models.Appeal
	err := r.db.GetContext(ctx, &out, `
		INSERT INTO appeals (id, user_id, user_email, requested_plan, message, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+appealColumns,
		appeal.ID, appeal.UserID, appeal.UserEmail, appeal.RequestedPlan, appeal.Message, appeal.Status)
	if err != nil {
		return nil, fmt.Errorf("failed to create appeal for user '%s': %w", appeal.UserID, err)
	}
	return &out, nil
}

func (r *postgresAppealRepository) GetByID(ctx context.Context, appealID string) (*models.Appeal, error) {
	var out models.Appeal
	if err := r.db.GetContext(ctx, &out, `SELECT `+appealColumns+` FROM appeals WHERE id = $1`, appealID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("appeal '%s': %w", appealID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get appeal '%s': %w", appealID, err)
	}
	return &out, nil
}

func (r *postgresAppealRepository) ListAll(ctx context.Context) ([]*models.Appeal, error) {
	appeals := []*models.Appeal{}
	if err := r.db.SelectContext(ctx, &appeals, `SELECT `+appealColumns+` FROM appeals ORDER BY created_at DESC`); err != nil {
		return nil, fmt.Errorf("failed to list appeals: %w", err)
	}
	return appeals, nil
}

func (r *postgresAppealRepository) ListByUser(ctx context.Context, userID string) ([]*models.Appeal, error) {
	appeals := []*models.Appeal{}
	err := r.db.SelectContext(ctx, &appeals,
		`SELECT `+appealColumns+` FROM appeals WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list appeals for user '%s': %w", userID, err)
	}
	return appeals, nil
}

func (r *postgresAppealRepository) Decide(ctx context.Context, appealID string, decision AppealDecision) (*models.Appeal, error) {
	var appeal models.Appeal
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := tx.GetContext(ctx, &appeal,
			`SELECT `+appealColumns+` FROM appeals WHERE id = $1 FOR UPDATE`, appealID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("appeal '%s': %w", appealID, ErrNotFound)
			}
			return fmt.Errorf("lock appeal: %w", err)
		}
		if appeal.Status != models.AppealPending {
			return ErrAlreadyDecided
		}

		if decision.GrantPlan != "" {
			res, err := tx.ExecContext(ctx,
				`UPDATE profiles SET plan = $1, credits = $2 WHERE id = $3`,
				decision.GrantPlan, decision.GrantCredits, appeal.UserID)
			if err != nil {
				return fmt.Errorf("grant plan: %w", err)
			}
			if n, err := res.RowsAffected(); err == nil && n == 0 {
				return fmt.Errorf("profile '%s' for appeal '%s': %w", appeal.UserID, appealID, ErrNotFound)
			}
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE appeals SET status = $1 WHERE id = $2`, decision.Status, appealID); err != nil {
			return fmt.Errorf("update appeal status: %w", err)
		}
		appeal.Status = decision.Status
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyDecided) {
			return &appeal, err
		}
		return nil, fmt.Errorf("failed to decide appeal '%s': %w", appealID, err)
	}
	return &appeal, nil
}
