package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/luoxi-lab/hanyu-arena-backend/internal/config"
	"github.com/luoxi-lab/hanyu-arena-backend/internal/model"
	"github.com/luoxi-lab/hanyu-arena-backend/internal/repository"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// topCacheTTL bounds staleness of the cached top-N payload between
// invalidating updates.
const topCacheTTL = 30 * time.Second

// leaderboardStore is the persistence surface LeaderboardService needs.
// Implemented by repository.LeaderboardRepository.
type leaderboardStore interface {
	UpsertAfterGame(ctx context.Context, playerID uuid.UUID, gameType model.GameType, difficulty model.Difficulty, score int, accuracy float64) (*model.LeaderboardEntry, error)
	ListPartition(ctx context.Context, gameType model.GameType, difficulty model.Difficulty) ([]model.LeaderboardEntry, error)
	UpdateRanks(ctx context.Context, gameType model.GameType, difficulty model.Difficulty, updates []repository.RankUpdate) error
	TopN(ctx context.Context, gameType model.GameType, difficulty model.Difficulty, limit int) ([]model.LeaderboardEntry, error)
}

// LeaderboardService maintains the per (player, game type, difficulty)
// aggregates and computes competition ranks: tied total scores share a
// rank, and the next distinct score's rank skips the consumed slots.
type LeaderboardService struct {
	store leaderboardStore
	rdb   *redis.Client // nil disables the top-N cache
	log   zerolog.Logger
}

// NewLeaderboardService creates a new LeaderboardService.
func NewLeaderboardService(store leaderboardStore, rdb *redis.Client, log zerolog.Logger) *LeaderboardService {
	return &LeaderboardService{
		store: store,
		rdb:   rdb,
		log:   log.With().Str("component", "leaderboard_service").Logger(),
	}
}

// UpdateAfterGame folds one finished game into the player's aggregate and
// recomputes the partition's ranks. Returns the player's updated entry
// with its fresh rank.
func (s *LeaderboardService) UpdateAfterGame(ctx context.Context, playerID uuid.UUID, gameType model.GameType, difficulty model.Difficulty, score int, accuracy float64) (*model.LeaderboardEntry, error) {
	entry, err := s.store.UpsertAfterGame(ctx, playerID, gameType, difficulty, score, accuracy)
	if err != nil {
		return nil, fmt.Errorf("upsert leaderboard entry: %w", err)
	}

	ranks, err := s.RecalculateRanks(ctx, gameType, difficulty)
	if err != nil {
		return nil, err
	}
	for _, u := range ranks {
		if u.PlayerID == playerID {
			entry.Rank = u.Rank
			break
		}
	}

	s.invalidateTopCache(ctx, gameType, difficulty)
	return entry, nil
}

// RecalculateRanks recomputes and persists competition ranks for one
// partition in a single batch write, returning the assignments.
func (s *LeaderboardService) RecalculateRanks(ctx context.Context, gameType model.GameType, difficulty model.Difficulty) ([]repository.RankUpdate, error) {
	entries, err := s.store.ListPartition(ctx, gameType, difficulty)
	if err != nil {
		return nil, fmt.Errorf("list partition: %w", err)
	}

	updates := CompetitionRanks(entries)
	if err := s.store.UpdateRanks(ctx, gameType, difficulty, updates); err != nil {
		return nil, fmt.Errorf("update ranks: %w", err)
	}
	return updates, nil
}

// CompetitionRanks assigns competition ranking over entries sorted by
// total score descending: equal scores share a rank, and a strictly lower
// score's rank equals the count of entries ranked at-or-above it plus one.
func CompetitionRanks(entries []model.LeaderboardEntry) []repository.RankUpdate {
	updates := make([]repository.RankUpdate, 0, len(entries))
	rank := 0
	var prevScore int64
	for i, e := range entries {
		if i == 0 || e.TotalScore != prevScore {
			rank = i + 1
			prevScore = e.TotalScore
		}
		updates = append(updates, repository.RankUpdate{PlayerID: e.PlayerID, Rank: rank})
	}
	return updates
}

// TopPlayers returns the partition's best entries by ascending rank,
// serving from the Redis cache when warm.
func (s *LeaderboardService) TopPlayers(ctx context.Context, gameType model.GameType, difficulty model.Difficulty, limit int) ([]model.LeaderboardEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	cacheKey := ""
	if s.rdb != nil {
		cacheKey = config.CacheKey.LeaderboardTopKey(string(gameType), string(difficulty))
		if raw, err := s.rdb.Get(ctx, cacheKey).Result(); err == nil {
			var cached []model.LeaderboardEntry
			if json.Unmarshal([]byte(raw), &cached) == nil && len(cached) >= limit {
				return cached[:limit], nil
			}
		}
	}

	entries, err := s.store.TopN(ctx, gameType, difficulty, 100)
	if err != nil {
		return nil, fmt.Errorf("top players: %w", err)
	}

	if s.rdb != nil {
		if raw, err := json.Marshal(entries); err == nil {
			_ = s.rdb.Set(ctx, cacheKey, raw, topCacheTTL).Err()
		}
	}

	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// RecalculateAll sweeps every (game type, difficulty) partition. Run
// periodically as a drift-correcting safety net; a rank transiently
// overwritten by a concurrent game converges on the next pass.
func (s *LeaderboardService) RecalculateAll(ctx context.Context) error {
	for _, gt := range []model.GameType{model.GameTypeIdiom, model.GameTypeSentence} {
		for _, d := range []model.Difficulty{model.DifficultyEasy, model.DifficultyMedium, model.DifficultyHard, model.DifficultyExpert} {
			if _, err := s.RecalculateRanks(ctx, gt, d); err != nil {
				return fmt.Errorf("recalculate %s/%s: %w", gt, d, err)
			}
			s.invalidateTopCache(ctx, gt, d)
		}
	}
	return nil
}

func (s *LeaderboardService) invalidateTopCache(ctx context.Context, gameType model.GameType, difficulty model.Difficulty) {
	if s.rdb == nil {
		return
	}
	key := config.CacheKey.LeaderboardTopKey(string(gameType), string(difficulty))
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Top cache invalidation failed")
	}
}
