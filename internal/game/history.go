package game

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/luoxi-lab/hanyu-arena-backend/internal/config"
	"github.com/luoxi-lab/hanyu-arena-backend/internal/model"
	"github.com/redis/go-redis/v9"
)

// HistoryCapacity bounds the per (player, game type) exclusion set. The
// 11th tracked question evicts the 1st.
const HistoryCapacity = 10

// historyTTL keeps abandoned histories from accumulating in Redis forever.
// Refreshed on every push, so an active player never loses history.
const historyTTL = 30 * 24 * time.Hour

// HistoryStore is the keyed storage behind the tracker. The production
// implementation is Redis-backed; an in-memory one serves tests and
// single-node dev without Redis.
type HistoryStore interface {
	// Push appends a question ID and trims the list to HistoryCapacity,
	// evicting the oldest entries.
	Push(ctx context.Context, playerID uuid.UUID, gameType model.GameType, questionID string) error
	// List returns the current exclusion set, most recent first.
	List(ctx context.Context, playerID uuid.UUID, gameType model.GameType) ([]string, error)
	// Clear resets one game type, or both when gameType is empty.
	Clear(ctx context.Context, playerID uuid.UUID, gameType model.GameType) error
}

// ─── Redis store ────────────────────────────────────────────────────

// RedisHistoryStore keeps each exclusion set in a bounded Redis list.
type RedisHistoryStore struct {
	rdb *redis.Client
}

// NewRedisHistoryStore creates a Redis-backed history store.
func NewRedisHistoryStore(rdb *redis.Client) *RedisHistoryStore {
	return &RedisHistoryStore{rdb: rdb}
}

func (s *RedisHistoryStore) Push(ctx context.Context, playerID uuid.UUID, gameType model.GameType, questionID string) error {
	key := config.CacheKey.QuestionHistoryKey(playerID, string(gameType))
	pipe := s.rdb.TxPipeline()
	pipe.LPush(ctx, key, questionID)
	pipe.LTrim(ctx, key, 0, HistoryCapacity-1)
	pipe.Expire(ctx, key, historyTTL)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisHistoryStore) List(ctx context.Context, playerID uuid.UUID, gameType model.GameType) ([]string, error) {
	key := config.CacheKey.QuestionHistoryKey(playerID, string(gameType))
	ids, err := s.rdb.LRange(ctx, key, 0, HistoryCapacity-1).Result()
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *RedisHistoryStore) Clear(ctx context.Context, playerID uuid.UUID, gameType model.GameType) error {
	if gameType == "" {
		return s.rdb.Del(ctx,
			config.CacheKey.QuestionHistoryKey(playerID, string(model.GameTypeIdiom)),
			config.CacheKey.QuestionHistoryKey(playerID, string(model.GameTypeSentence)),
		).Err()
	}
	return s.rdb.Del(ctx, config.CacheKey.QuestionHistoryKey(playerID, string(gameType))).Err()
}

// ─── In-memory store ────────────────────────────────────────────────

type historyKey struct {
	playerID uuid.UUID
	gameType model.GameType
}

// MemoryHistoryStore is a mutex-guarded map store with the same FIFO
// semantics as the Redis implementation.
type MemoryHistoryStore struct {
	mu    sync.Mutex
	lists map[historyKey][]string
}

// NewMemoryHistoryStore creates an empty in-memory history store.
func NewMemoryHistoryStore() *MemoryHistoryStore {
	return &MemoryHistoryStore{lists: make(map[historyKey][]string)}
}

func (s *MemoryHistoryStore) Push(_ context.Context, playerID uuid.UUID, gameType model.GameType, questionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := historyKey{playerID, gameType}
	list := append([]string{questionID}, s.lists[k]...)
	if len(list) > HistoryCapacity {
		list = list[:HistoryCapacity]
	}
	s.lists[k] = list
	return nil
}

func (s *MemoryHistoryStore) List(_ context.Context, playerID uuid.UUID, gameType model.GameType) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.lists[historyKey{playerID, gameType}]
	out := make([]string, len(list))
	copy(out, list)
	return out, nil
}

func (s *MemoryHistoryStore) Clear(_ context.Context, playerID uuid.UUID, gameType model.GameType) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gameType == "" {
		delete(s.lists, historyKey{playerID, model.GameTypeIdiom})
		delete(s.lists, historyKey{playerID, model.GameTypeSentence})
		return nil
	}
	delete(s.lists, historyKey{playerID, gameType})
	return nil
}

// ─── Tracker ────────────────────────────────────────────────────────

// HistoryTracker records recently served questions per (player, game type)
// so selection can avoid repeats and detect an exhausted pool. It is an
// explicitly owned instance passed by reference, not a package global.
type HistoryTracker struct {
	store HistoryStore
}

// NewHistoryTracker wraps a HistoryStore.
func NewHistoryTracker(store HistoryStore) *HistoryTracker {
	return &HistoryTracker{store: store}
}

// Add records a served question, evicting the oldest beyond capacity.
func (t *HistoryTracker) Add(ctx context.Context, playerID uuid.UUID, gameType model.GameType, questionID string) error {
	return t.store.Push(ctx, playerID, gameType, questionID)
}

// Excluded returns the question IDs to exclude from selection.
func (t *HistoryTracker) Excluded(ctx context.Context, playerID uuid.UUID, gameType model.GameType) ([]string, error) {
	return t.store.List(ctx, playerID, gameType)
}

// Clear resets tracking for one game type, or for both when gameType is
// empty. Used by the explicit restart action.
func (t *HistoryTracker) Clear(ctx context.Context, playerID uuid.UUID, gameType model.GameType) error {
	return t.store.Clear(ctx, playerID, gameType)
}
