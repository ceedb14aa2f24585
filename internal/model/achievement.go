package model

import (
	"time"

	"github.com/google/uuid"
)

// AchievementType identifies an unlockable achievement. The (player, type)
// pair is unique; unlocking is terminal and never revoked.
type AchievementType string

const (
	AchievementFirstWin            AchievementType = "FIRST_WIN"
	AchievementSpeedDemon          AchievementType = "SPEED_DEMON"
	AchievementPerfectScore        AchievementType = "PERFECT_SCORE"
	AchievementHighScorer          AchievementType = "HIGH_SCORER"
	AchievementHundredGames        AchievementType = "HUNDRED_GAMES"
	AchievementLeaderboardChampion AchievementType = "LEADERBOARD_CHAMPION"
	AchievementWeekStreak          AchievementType = "WEEK_STREAK"
)

// Achievement is one unlocked achievement row.
type Achievement struct {
	ID         uuid.UUID       `json:"id"`
	PlayerID   uuid.UUID       `json:"player_id"`
	Type       AchievementType `json:"type"`
	UnlockedAt time.Time       `json:"unlocked_at"`
}
