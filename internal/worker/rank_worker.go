package worker

import (
	"context"
	"time"

	"github.com/luoxi-lab/hanyu-arena-backend/internal/service"
	"github.com/rs/zerolog"
)

// RankWorker recomputes competition ranks across every leaderboard
// partition on a fixed cadence. Per-game updates already rank their own
// partition; this sweep repairs drift after crashes or manual edits.
type RankWorker struct {
	leaderboard *service.LeaderboardService
	interval    time.Duration
	log         zerolog.Logger
}

func NewRankWorker(leaderboard *service.LeaderboardService, interval time.Duration, log zerolog.Logger) *RankWorker {
	return &RankWorker{
		leaderboard: leaderboard,
		interval:    interval,
		log:         log.With().Str("component", "rank_worker").Logger(),
	}
}

// Start begins the recalculation loop. Call in a goroutine.
func (w *RankWorker) Start(ctx context.Context) {
	w.log.Info().Dur("interval", w.interval).Msg("RankWorker started")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("RankWorker stopped")
			return
		case <-ticker.C:
			if err := w.leaderboard.RecalculateAll(ctx); err != nil {
				w.log.Error().Err(err).Msg("Rank recalculation failed")
			}
		}
	}
}
