package model

import (
	"time"

	"github.com/google/uuid"
)

// LeaderboardEntry is the per (player, game type, difficulty) aggregate.
// TotalScore is cumulative and never decreases; Rank is derived and
// recomputed in batch using competition ranking (ties share a rank, the
// next distinct score skips the consumed slots).
type LeaderboardEntry struct {
	PlayerID     uuid.UUID  `json:"player_id"`
	PlayerName   string     `json:"player_name,omitempty"`
	GameType     GameType   `json:"game_type"`
	Difficulty   Difficulty `json:"difficulty"`
	TotalScore   int64      `json:"total_score"`
	GamesPlayed  int        `json:"games_played"`
	AverageScore float64    `json:"average_score"`
	AccuracyRate float64    `json:"accuracy_rate"`
	Rank         int        `json:"rank"`
	LastUpdated  time.Time  `json:"last_updated"`
}
