package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/luoxi-lab/hanyu-arena-backend/internal/config"
	"github.com/luoxi-lab/hanyu-arena-backend/internal/handler"
	"github.com/luoxi-lab/hanyu-arena-backend/internal/middleware"
	"github.com/luoxi-lab/hanyu-arena-backend/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Player      *handler.PlayerHandler
	Game        *handler.GameHandler
	Leaderboard *handler.LeaderboardHandler
	WS          *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(handlers *Handlers, cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// ─── 1. Players Group ──────────────────────────────────────────────
	players := router.Group("/api/v1/players")
	{
		players.POST("", handlers.Player.CreatePlayer)
		players.GET("/:player_id", handlers.Player.GetPlayer)
		players.GET("/:player_id/achievements", handlers.Player.GetAchievements)
		players.GET("/:player_id/history", handlers.Player.GetHistory)
	}

	// ─── 2. Game Group (Rate Limited) ──────────────────────────────────
	// 60 requests per minute per IP keeps a single client from grinding
	// through the question bank.
	gameLimiter := middleware.NewRateLimiter(60, time.Minute)
	game := router.Group("/api/v1/game")
	game.Use(gameLimiter.Middleware())
	{
		game.POST("/start", handlers.Game.StartGame)
		game.POST("/answer", handlers.Game.SubmitAnswer)
		game.POST("/hint", handlers.Game.GetHint)
		game.POST("/restart", handlers.Game.RestartQuiz)
		game.GET("/session", handlers.Game.GetSession)
	}

	// ─── 3. Leaderboard Group (Cacheable) ──────────────────────────────
	leaderboard := router.Group("/api/v1/leaderboard")
	leaderboard.Use(middleware.CacheControl(30))
	{
		leaderboard.GET("", handlers.Leaderboard.GetLeaderboard)
	}

	// ─── 4. WebSocket Group ────────────────────────────────────────────
	ws := router.Group("/ws/v1")
	{
		ws.GET("/feed", handlers.WS.FeedStream)
	}

	return router
}
