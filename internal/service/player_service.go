package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/luoxi-lab/hanyu-arena-backend/internal/model"
)

// playerStore is the persistence surface PlayerService needs. Implemented
// by repository.PlayerRepository.
type playerStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Player, error)
	GetByUsername(ctx context.Context, username string) (*model.Player, error)
	Create(ctx context.Context, p *model.Player) error
}

// PlayerService is the player directory: it resolves existence and
// registers players. There is deliberately no credential surface.
type PlayerService struct {
	store playerStore
}

// NewPlayerService creates a new PlayerService.
func NewPlayerService(store playerStore) *PlayerService {
	return &PlayerService{store: store}
}

// GetByID resolves a player, mapping an unknown ID to ErrNotFound.
func (s *PlayerService) GetByID(ctx context.Context, id uuid.UUID) (*model.Player, error) {
	p, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: player %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("get player: %w", err)
	}
	return p, nil
}

// Create registers a new player with a unique username.
func (s *PlayerService) Create(ctx context.Context, req model.CreatePlayerRequest) (*model.Player, error) {
	if existing, err := s.store.GetByUsername(ctx, req.Username); err == nil && existing != nil {
		return nil, fmt.Errorf("%w: username %s", ErrConflict, req.Username)
	} else if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("check username: %w", err)
	}

	p := &model.Player{
		ID:          uuid.New(),
		Username:    req.Username,
		DisplayName: req.DisplayName,
	}
	if err := s.store.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create player: %w", err)
	}
	return p, nil
}
