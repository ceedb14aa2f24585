package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/luoxi-lab/hanyu-arena-backend/internal/model"
)

// PlayerRepository handles player data access.
type PlayerRepository struct {
	pool *pgxpool.Pool
}

// NewPlayerRepository creates a new PlayerRepository.
func NewPlayerRepository(pool *pgxpool.Pool) *PlayerRepository {
	return &PlayerRepository{pool: pool}
}

// GetByID retrieves a player. Returns pgx.ErrNoRows for unknown IDs.
func (r *PlayerRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Player, error) {
	p := &model.Player{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, username, display_name, created_at FROM players WHERE id = $1`, id,
	).Scan(&p.ID, &p.Username, &p.DisplayName, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// GetByUsername retrieves a player by unique username.
func (r *PlayerRepository) GetByUsername(ctx context.Context, username string) (*model.Player, error) {
	p := &model.Player{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, username, display_name, created_at FROM players WHERE username = $1`, username,
	).Scan(&p.ID, &p.Username, &p.DisplayName, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Create inserts a new player.
func (r *PlayerRepository) Create(ctx context.Context, p *model.Player) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO players (id, username, display_name)
		 VALUES ($1, $2, $3)
		 RETURNING created_at`,
		p.ID, p.Username, p.DisplayName,
	).Scan(&p.CreatedAt)
}
