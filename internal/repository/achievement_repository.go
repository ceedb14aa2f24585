package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/luoxi-lab/hanyu-arena-backend/internal/model"
)

// AchievementRepository handles achievement unlock rows. The unique
// (player_id, type) constraint is the idempotency guard; unlocks are
// append-only and never revoked.
type AchievementRepository struct {
	pool *pgxpool.Pool
}

// NewAchievementRepository creates a new AchievementRepository.
func NewAchievementRepository(pool *pgxpool.Pool) *AchievementRepository {
	return &AchievementRepository{pool: pool}
}

// Exists reports whether the player already unlocked the given type.
func (r *AchievementRepository) Exists(ctx context.Context, playerID uuid.UUID, t model.AchievementType) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM achievements WHERE player_id = $1 AND type = $2)`,
		playerID, t).Scan(&exists)
	return exists, err
}

// Insert creates the unlock row. Returns false without error when the
// (player, type) pair already exists — a concurrent unlock simply loses.
func (r *AchievementRepository) Insert(ctx context.Context, a *model.Achievement) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`INSERT INTO achievements (id, player_id, type, unlocked_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (player_id, type) DO NOTHING`,
		a.ID, a.PlayerID, a.Type, a.UnlockedAt)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ListByPlayer returns all of a player's unlocked achievements, oldest
// first.
func (r *AchievementRepository) ListByPlayer(ctx context.Context, playerID uuid.UUID) ([]model.Achievement, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, player_id, type, unlocked_at
		 FROM achievements WHERE player_id = $1 ORDER BY unlocked_at ASC`, playerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var achievements []model.Achievement
	for rows.Next() {
		var a model.Achievement
		if err := rows.Scan(&a.ID, &a.PlayerID, &a.Type, &a.UnlockedAt); err != nil {
			return nil, err
		}
		achievements = append(achievements, a)
	}
	return achievements, rows.Err()
}
