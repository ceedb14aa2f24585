package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/luoxi-lab/hanyu-arena-backend/internal/config"
	"github.com/luoxi-lab/hanyu-arena-backend/internal/model"
	"github.com/luoxi-lab/hanyu-arena-backend/internal/repository"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	ScoreBatchSize    = 50
	ScoreBatchTimeout = 2 * time.Second
	ScorePollTimeout  = 1 * time.Second
)

// ScoreWorker consumes persist_scores_queue and writes score records to
// PostgreSQL in batches. Records are idempotent on their UUID, so a
// requeued batch never double-counts.
type ScoreWorker struct {
	scores *repository.ScoreRepository
	rdb    *redis.Client
	log    zerolog.Logger
}

func NewScoreWorker(scores *repository.ScoreRepository, rdb *redis.Client, log zerolog.Logger) *ScoreWorker {
	return &ScoreWorker{
		scores: scores,
		rdb:    rdb,
		log:    log.With().Str("component", "score_worker").Logger(),
	}
}

// ----------------------------------------------------------------
// Worker loop with batching
// ----------------------------------------------------------------

func (w *ScoreWorker) Start(ctx context.Context) {
	w.log.Info().Msg("ScoreWorker started")

	batch := make([]*model.ScoreRecord, 0, ScoreBatchSize)
	lastFlush := time.Now()

	for {
		// Should flush?
		if len(batch) > 0 &&
			(len(batch) >= ScoreBatchSize || time.Since(lastFlush) >= ScoreBatchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.Background(), batch)
			w.drain(context.Background())
			return

		default:
			item, err := w.rdb.BLPop(ctx, ScorePollTimeout, config.WorkerKey.PersistScoresQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			var rec model.ScoreRecord
			if err := json.Unmarshal([]byte(item[1]), &rec); err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}

			batch = append(batch, &rec)
		}
	}
}

// ----------------------------------------------------------------
// Batch insert wrapper with per-record fallback
// ----------------------------------------------------------------

func (w *ScoreWorker) flushSafe(ctx context.Context, batch []*model.ScoreRecord) {
	if len(batch) == 0 {
		return
	}

	if err := w.scores.InsertBatch(ctx, batch); err != nil {
		w.log.Warn().Err(err).Msg("bulk score insert failed, using fallback")

		for _, rec := range batch {
			if err := w.scores.Insert(ctx, rec); err != nil {
				w.log.Error().Err(err).Str("record_id", rec.ID.String()).Msg("single insert failed — requeueing")
				raw, _ := json.Marshal(rec)
				w.rdb.RPush(ctx, config.WorkerKey.PersistScoresQueue, raw)
			}
		}
	}
}

// ----------------------------------------------------------------
// Shutdown drain
// ----------------------------------------------------------------

// drain empties whatever is left in the queue before exit.
func (w *ScoreWorker) drain(ctx context.Context) {
	drained := 0
	for {
		result, err := w.rdb.LPop(ctx, config.WorkerKey.PersistScoresQueue).Result()
		if err != nil {
			break
		}

		var rec model.ScoreRecord
		if err := json.Unmarshal([]byte(result), &rec); err != nil {
			w.log.Error().Err(err).Msg("Drain unmarshal error")
			continue
		}

		if err := w.scores.Insert(ctx, &rec); err != nil {
			w.log.Error().Err(err).Msg("Drain insert error")
			w.rdb.RPush(ctx, config.WorkerKey.PersistScoresQueue, result)
			break
		}
		drained++
	}

	if drained > 0 {
		w.log.Info().Int("count", drained).Msg("Drained remaining score records")
	}
}
