package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/luoxi-lab/hanyu-arena-backend/internal/config"
	"github.com/luoxi-lab/hanyu-arena-backend/internal/model"
	"github.com/redis/go-redis/v9"
)

// FeedEventType enumerates live feed event kinds.
type FeedEventType string

const (
	FeedGameCompleted       FeedEventType = "GAME_COMPLETED"
	FeedAchievementUnlocked FeedEventType = "ACHIEVEMENT_UNLOCKED"
	FeedRankChanged         FeedEventType = "RANK_CHANGED"
)

// FeedEvent is one message on the live feed channel.
type FeedEvent struct {
	Type        FeedEventType         `json:"type"`
	PlayerID    uuid.UUID             `json:"player_id"`
	GameType    model.GameType        `json:"game_type,omitempty"`
	Difficulty  model.Difficulty      `json:"difficulty,omitempty"`
	Score       int                   `json:"score,omitempty"`
	Rank        int                   `json:"rank,omitempty"`
	Achievement model.AchievementType `json:"achievement,omitempty"`
	At          time.Time             `json:"at"`
}

// feedPublisher fans game events out to live feed subscribers. A nil-safe
// no-op implementation exists for tests.
type feedPublisher interface {
	Publish(ctx context.Context, event FeedEvent) error
}

// RedisFeedPublisher publishes feed events on the shared PubSub channel
// the websocket handler relays to clients.
type RedisFeedPublisher struct {
	rdb *redis.Client
}

// NewRedisFeedPublisher creates a Redis-backed feed publisher.
func NewRedisFeedPublisher(rdb *redis.Client) *RedisFeedPublisher {
	return &RedisFeedPublisher{rdb: rdb}
}

func (p *RedisFeedPublisher) Publish(ctx context.Context, event FeedEvent) error {
	raw, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.rdb.Publish(ctx, config.CacheKey.GameFeedChannel(), raw).Err()
}

// NopFeedPublisher discards events. Used when Redis is unavailable and in
// tests.
type NopFeedPublisher struct{}

func (NopFeedPublisher) Publish(context.Context, FeedEvent) error { return nil }
