package main

import (
	"context"
	"fmt"
	"time"

	"github.com/luoxi-lab/hanyu-arena-backend/internal/config"
	"github.com/luoxi-lab/hanyu-arena-backend/internal/database"
	"github.com/luoxi-lab/hanyu-arena-backend/internal/logger"
	"github.com/luoxi-lab/hanyu-arena-backend/internal/model"
	"github.com/luoxi-lab/hanyu-arena-backend/internal/repository"
	"github.com/luoxi-lab/hanyu-arena-backend/internal/service"
)

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	playerService := service.NewPlayerService(repository.NewPlayerRepository(pool))

	fmt.Println("=== Seeding 20 Players ===")

	created := 0
	for i := 1; i <= 20; i++ {
		req := model.CreatePlayerRequest{
			Username:    fmt.Sprintf("player%02d", i),
			DisplayName: fmt.Sprintf("Test Player %02d", i),
		}

		player, err := playerService.Create(ctx, req)
		if err != nil {
			// Re-running the seeder hits username conflicts; skip them.
			fmt.Printf("skip %s: %v\n", req.Username, err)
			continue
		}
		fmt.Printf("created %s (%s)\n", player.Username, player.ID)
		created++
	}

	fmt.Printf("=== Done: %d players created ===\n", created)
}
