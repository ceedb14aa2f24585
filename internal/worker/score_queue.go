package worker

import (
	"context"
	"encoding/json"

	"github.com/luoxi-lab/hanyu-arena-backend/internal/config"
	"github.com/luoxi-lab/hanyu-arena-backend/internal/model"
	"github.com/redis/go-redis/v9"
)

// RedisScoreQueue is the producer side of persist_scores_queue. The game
// service enqueues here; ScoreWorker consumes.
type RedisScoreQueue struct {
	rdb *redis.Client
}

func NewRedisScoreQueue(rdb *redis.Client) *RedisScoreQueue {
	return &RedisScoreQueue{rdb: rdb}
}

func (q *RedisScoreQueue) Enqueue(ctx context.Context, rec *model.ScoreRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return q.rdb.RPush(ctx, config.WorkerKey.PersistScoresQueue, raw).Err()
}
