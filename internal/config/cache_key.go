package config

import (
	"fmt"

	"github.com/google/uuid"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// QuestionHistoryKey returns the Redis list key holding the bounded
// recently-served question IDs for a player and game type.
func (r *CacheKeyStruct) QuestionHistoryKey(playerID uuid.UUID, gameType string) string {
	return fmt.Sprintf("player:%s:history:%s", playerID, gameType)
}

// LeaderboardTopKey returns the cache key for a partition's top-N payload.
func (r *CacheKeyStruct) LeaderboardTopKey(gameType, difficulty string) string {
	return fmt.Sprintf("leaderboard:%s:%s:top", gameType, difficulty)
}

// GameFeedChannel returns the Redis PubSub channel carrying completion,
// achievement-unlock and rank-change events for the live feed.
func (r *CacheKeyStruct) GameFeedChannel() string {
	return "game:feed"
}

var CacheKey = NewCacheKeyStruct()
