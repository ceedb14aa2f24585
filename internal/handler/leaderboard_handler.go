package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/luoxi-lab/hanyu-arena-backend/internal/model"
	"github.com/luoxi-lab/hanyu-arena-backend/internal/response"
	"github.com/luoxi-lab/hanyu-arena-backend/internal/service"
)

// LeaderboardHandler handles the ranking read surface.
type LeaderboardHandler struct {
	leaderboardService *service.LeaderboardService
}

// NewLeaderboardHandler creates a new LeaderboardHandler.
func NewLeaderboardHandler(leaderboardService *service.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboardService: leaderboardService}
}

// GetLeaderboard godoc
// GET /api/v1/leaderboard?game_type=IDIOM&difficulty=EASY&limit=10
// Returns the top entries of one partition, competition-ranked.
func (h *LeaderboardHandler) GetLeaderboard(c *gin.Context) {
	gameType := model.GameType(c.Query("game_type"))
	difficulty := model.Difficulty(c.Query("difficulty"))
	if !gameType.Valid() || !difficulty.Valid() {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidArgument)
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	entries, err := h.leaderboardService.TopPlayers(c.Request.Context(), gameType, difficulty, limit)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"leaderboard": entries})
}
