package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/luoxi-lab/hanyu-arena-backend/internal/model"
	"github.com/rs/zerolog"
)

// achievementStore is the persistence surface AchievementService needs.
// Implemented by repository.AchievementRepository.
type achievementStore interface {
	Exists(ctx context.Context, playerID uuid.UUID, t model.AchievementType) (bool, error)
	Insert(ctx context.Context, a *model.Achievement) (bool, error)
	ListByPlayer(ctx context.Context, playerID uuid.UUID) ([]model.Achievement, error)
}

// GameOutcome is the just-finished result the unlock predicates evaluate,
// alongside the player's lifetime counters.
type GameOutcome struct {
	Score            int
	TimeTakenSeconds int
	AccuracyRate     float64
	HintsUsed        int
	// Rank is the player's rank in the partition just updated by this game.
	Rank int
}

// AchievementService evaluates the fixed, ordered unlock predicate set.
// The (player, type) existence check makes every unlock idempotent;
// unlocking is append-only and terminal.
type AchievementService struct {
	store    achievementStore
	sessions sessionStore
	log      zerolog.Logger
}

// NewAchievementService creates a new AchievementService.
func NewAchievementService(store achievementStore, sessions sessionStore, log zerolog.Logger) *AchievementService {
	return &AchievementService{
		store:    store,
		sessions: sessions,
		log:      log.With().Str("component", "achievement_service").Logger(),
	}
}

// CheckAndUnlock evaluates all predicates against the outcome and the
// player's lifetime counters, creating exactly one Achievement row per
// newly satisfied predicate. Returns only the newly unlocked achievements.
func (s *AchievementService) CheckAndUnlock(ctx context.Context, playerID uuid.UUID, outcome GameOutcome) ([]model.Achievement, error) {
	// Lifetime count already includes the game that triggered this check;
	// the session is completed before achievements run.
	completed, err := s.sessions.CountCompleted(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("count completed games: %w", err)
	}

	// Predicate order is fixed so multi-unlock responses list achievements
	// in a stable, meaningful order (milestones first).
	checks := []struct {
		achievementType model.AchievementType
		satisfied       func() (bool, error)
	}{
		{model.AchievementFirstWin, func() (bool, error) {
			return completed == 1, nil
		}},
		{model.AchievementSpeedDemon, func() (bool, error) {
			return outcome.TimeTakenSeconds < 30, nil
		}},
		{model.AchievementPerfectScore, func() (bool, error) {
			return outcome.AccuracyRate >= 1.0 && outcome.HintsUsed == 0, nil
		}},
		{model.AchievementHighScorer, func() (bool, error) {
			return outcome.Score > 1000, nil
		}},
		{model.AchievementHundredGames, func() (bool, error) {
			return completed >= 100, nil
		}},
		{model.AchievementLeaderboardChampion, func() (bool, error) {
			return outcome.Rank == 1, nil
		}},
		{model.AchievementWeekStreak, func() (bool, error) {
			return s.sessions.HasCompletionStreak(ctx, playerID, 7)
		}},
	}

	var unlocked []model.Achievement
	for _, check := range checks {
		exists, err := s.store.Exists(ctx, playerID, check.achievementType)
		if err != nil {
			return nil, fmt.Errorf("check %s: %w", check.achievementType, err)
		}
		if exists {
			continue
		}

		ok, err := check.satisfied()
		if err != nil {
			return nil, fmt.Errorf("evaluate %s: %w", check.achievementType, err)
		}
		if !ok {
			continue
		}

		a := model.Achievement{
			ID:         uuid.New(),
			PlayerID:   playerID,
			Type:       check.achievementType,
			UnlockedAt: time.Now(),
		}
		created, err := s.store.Insert(ctx, &a)
		if err != nil {
			return nil, fmt.Errorf("unlock %s: %w", check.achievementType, err)
		}
		if !created {
			continue // Concurrent unlock won; idempotency holds.
		}

		s.log.Info().
			Str("player_id", playerID.String()).
			Str("type", string(check.achievementType)).
			Msg("Achievement unlocked")
		unlocked = append(unlocked, a)
	}

	return unlocked, nil
}

// PlayerAchievements lists everything the player has unlocked.
func (s *AchievementService) PlayerAchievements(ctx context.Context, playerID uuid.UUID) ([]model.Achievement, error) {
	return s.store.ListByPlayer(ctx, playerID)
}
