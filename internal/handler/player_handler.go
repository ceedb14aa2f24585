package handler

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/luoxi-lab/hanyu-arena-backend/internal/model"
	"github.com/luoxi-lab/hanyu-arena-backend/internal/response"
	"github.com/luoxi-lab/hanyu-arena-backend/internal/service"
	"github.com/luoxi-lab/hanyu-arena-backend/internal/validator"
)

// PlayerHandler handles player registration and profile endpoints.
type PlayerHandler struct {
	playerService      *service.PlayerService
	achievementService *service.AchievementService
	scoreService       *service.ScoreService
}

// NewPlayerHandler creates a new PlayerHandler.
func NewPlayerHandler(playerService *service.PlayerService, achievementService *service.AchievementService, scoreService *service.ScoreService) *PlayerHandler {
	return &PlayerHandler{
		playerService:      playerService,
		achievementService: achievementService,
		scoreService:       scoreService,
	}
}

// CreatePlayer godoc
// POST /api/v1/players
// Registers a new player with a unique username.
func (h *PlayerHandler) CreatePlayer(c *gin.Context) {
	var req model.CreatePlayerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	player, err := h.playerService.Create(c.Request.Context(), req)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"player": player})
}

// GetPlayer godoc
// GET /api/v1/players/:player_id
func (h *PlayerHandler) GetPlayer(c *gin.Context) {
	playerID, err := uuid.Parse(c.Param("player_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	player, err := h.playerService.GetByID(c.Request.Context(), playerID)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"player": player})
}

// GetAchievements godoc
// GET /api/v1/players/:player_id/achievements
// Returns the player's unlocked achievements in unlock order.
func (h *PlayerHandler) GetAchievements(c *gin.Context) {
	playerID, err := uuid.Parse(c.Param("player_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if _, err := h.playerService.GetByID(c.Request.Context(), playerID); err != nil {
		failFromService(c, err)
		return
	}

	achievements, err := h.achievementService.PlayerAchievements(c.Request.Context(), playerID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"achievements": achievements})
}

// GetHistory godoc
// GET /api/v1/players/:player_id/history
// Returns the player's paginated score ledger.
func (h *PlayerHandler) GetHistory(c *gin.Context) {
	playerID, err := uuid.Parse(c.Param("player_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if _, err := h.playerService.GetByID(c.Request.Context(), playerID); err != nil {
		failFromService(c, err)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))

	records, total, err := h.scoreService.PlayerHistory(c.Request.Context(), playerID, page, perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	pagination := &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: int(total),
		TotalPages: int(math.Ceil(float64(total) / float64(perPage))),
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"records": records}, pagination)
}
