package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"thumblytic-backend-go/internal/models"
)

const generationColumns = `id, user_id, topic, image_url, config, created_at`

// DefaultHistoryLimit caps history reads when the caller does not pass a limit.
const DefaultHistoryLimit = 50

type postgresGenerationRepository struct {
	db *sqlx.DB
}

// NewPostgresGenerationRepository creates a GenerationRepository backed by Postgres.
func NewPostgresGenerationRepository(conn *sqlx.DB) GenerationRepository {
	return &postgresGenerationRepository{db: conn}
}

func (r *postgresGenerationRepository) CreateAndSpend(ctx context.Context, gen *models.Generation, spend bool) (*models.Generation, error) {
	if gen == nil || gen.UserID == "" {
		return nil, errors.New("generation must have a user ID")
	}
	if gen.ID == "" {
		gen.ID = uuid.NewString()
	}
	if gen.Config == nil {
		gen.Config = models.JSONMap{}
	}

	var out models.Generation
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := tx.QueryRowxContext(ctx, `
			INSERT INTO generations (id, user_id, topic, image_url, config)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING `+generationColumns,
			gen.ID, gen.UserID, gen.Topic, gen.ImageURL, gen.Config).StructScan(&out); err != nil {
			return fmt.Errorf("insert generation: %w", err)
		}
		if !spend {
			return nil
		}
		// Floor at zero; only free profiles are metered.
		if _, err := tx.ExecContext(ctx, `
			UPDATE profiles
			SET credits = GREATEST(credits - 1, 0)
			WHERE id = $1 AND plan = 'free'`, gen.UserID); err != nil {
			return fmt.Errorf("spend credit: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save generation for user '%s': %w", gen.UserID, err)
	}
	return &out, nil
}

func (r *postgresGenerationRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*models.Generation, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	gens := []*models.Generation{}
	err := r.db.SelectContext(ctx, &gens, `
		SELECT `+generationColumns+`
		FROM generations
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list generations for user '%s': %w", userID, err)
	}
	return gens, nil
}

func (r *postgresGenerationRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.GetContext(ctx, &n, `SELECT count(*) FROM generations`); err != nil {
		return 0, fmt.Errorf("failed to count generations: %w", err)
	}
	return n, nil
}
