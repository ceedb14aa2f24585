package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/luoxi-lab/hanyu-arena-backend/internal/config"
	"github.com/luoxi-lab/hanyu-arena-backend/internal/database"
	"github.com/luoxi-lab/hanyu-arena-backend/internal/game"
	"github.com/luoxi-lab/hanyu-arena-backend/internal/handler"
	"github.com/luoxi-lab/hanyu-arena-backend/internal/logger"
	"github.com/luoxi-lab/hanyu-arena-backend/internal/questionbank"
	"github.com/luoxi-lab/hanyu-arena-backend/internal/repository"
	"github.com/luoxi-lab/hanyu-arena-backend/internal/router"
	"github.com/luoxi-lab/hanyu-arena-backend/internal/service"
	"github.com/luoxi-lab/hanyu-arena-backend/internal/validator"
	"github.com/luoxi-lab/hanyu-arena-backend/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting Hanyu Arena Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Load Question Banks ───────────────────────────────────────────
	// Banks are immutable after startup; a bad bank is a deploy error.
	bank, err := questionbank.Load(cfg.QuestionBankDir, log)
	if err != nil {
		log.Fatal().Err(err).Str("dir", cfg.QuestionBankDir).Msg("Failed to load question banks")
	}

	// ─── Initialize Repositories ───────────────────────────────────────
	playerRepo := repository.NewPlayerRepository(pool)
	sessionRepo := repository.NewGameSessionRepository(pool)
	scoreRepo := repository.NewScoreRepository(pool)
	leaderboardRepo := repository.NewLeaderboardRepository(pool)
	achievementRepo := repository.NewAchievementRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	tracker := game.NewHistoryTracker(game.NewRedisHistoryStore(rdb))
	playerService := service.NewPlayerService(playerRepo)
	sessionService := service.NewSessionService(sessionRepo, cfg.SessionTTL, log)
	leaderboardService := service.NewLeaderboardService(leaderboardRepo, rdb, log)
	achievementService := service.NewAchievementService(achievementRepo, sessionRepo, log)
	scoreService := service.NewScoreService(scoreRepo)
	gameService := service.NewGameService(
		playerService,
		sessionService,
		bank,
		tracker,
		leaderboardService,
		achievementService,
		worker.NewRedisScoreQueue(rdb),
		service.NewRedisFeedPublisher(rdb),
		log,
	)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Player:      handler.NewPlayerHandler(playerService, achievementService, scoreService),
		Game:        handler.NewGameHandler(gameService),
		Leaderboard: handler.NewLeaderboardHandler(leaderboardService),
		WS:          handler.NewWSHandler(rdb, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	scoreWorker := worker.NewScoreWorker(scoreRepo, rdb, log)
	expiryWorker := worker.NewExpiryWorker(sessionService, cfg.ExpirySweepInterval, log)
	rankWorker := worker.NewRankWorker(leaderboardService, cfg.RankSweepInterval, log)

	go scoreWorker.Start(workerCtx)
	go expiryWorker.Start(workerCtx)
	go rankWorker.Start(workerCtx)

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop background workers and wait for the score queue to drain.
	workerCancel()
	time.Sleep(2 * time.Second)

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
