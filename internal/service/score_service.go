package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/luoxi-lab/hanyu-arena-backend/internal/model"
)

// scoreLedger reads the persisted score history.
type scoreLedger interface {
	ListByPlayer(ctx context.Context, playerID uuid.UUID, page, perPage int) ([]model.ScoreRecord, int64, error)
}

// ScoreService exposes the per-player score ledger. Writes go through the
// persist queue; this service only reads.
type ScoreService struct {
	ledger scoreLedger
}

// NewScoreService creates a new ScoreService.
func NewScoreService(ledger scoreLedger) *ScoreService {
	return &ScoreService{ledger: ledger}
}

// PlayerHistory returns one page of a player's score records, newest
// first, plus the total record count.
func (s *ScoreService) PlayerHistory(ctx context.Context, playerID uuid.UUID, page, perPage int) ([]model.ScoreRecord, int64, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 10
	}
	return s.ledger.ListByPlayer(ctx, playerID, page, perPage)
}
