package worker

import (
	"context"
	"time"

	"github.com/luoxi-lab/hanyu-arena-backend/internal/service"
	"github.com/rs/zerolog"
)

// ExpiryWorker periodically marks stale ACTIVE sessions as EXPIRED. The
// update is status-guarded, so a session completing mid-sweep wins.
type ExpiryWorker struct {
	sessions *service.SessionService
	interval time.Duration
	log      zerolog.Logger
}

func NewExpiryWorker(sessions *service.SessionService, interval time.Duration, log zerolog.Logger) *ExpiryWorker {
	return &ExpiryWorker{
		sessions: sessions,
		interval: interval,
		log:      log.With().Str("component", "expiry_worker").Logger(),
	}
}

// Start begins the sweep loop. Call in a goroutine.
func (w *ExpiryWorker) Start(ctx context.Context) {
	w.log.Info().Dur("interval", w.interval).Msg("ExpiryWorker started")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("ExpiryWorker stopped")
			return
		case <-ticker.C:
			expired, err := w.sessions.ExpireInactiveSessions(ctx)
			if err != nil {
				w.log.Error().Err(err).Msg("Expiry sweep failed")
				continue
			}
			if expired > 0 {
				w.log.Info().Int64("count", expired).Msg("Expired stale sessions")
			}
		}
	}
}
