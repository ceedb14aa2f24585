package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/luoxi-lab/hanyu-arena-backend/internal/model"
	"github.com/luoxi-lab/hanyu-arena-backend/internal/questionbank"
	"github.com/luoxi-lab/hanyu-arena-backend/internal/response"
	"github.com/luoxi-lab/hanyu-arena-backend/internal/service"
	"github.com/luoxi-lab/hanyu-arena-backend/internal/validator"
)

// GameHandler handles the four game operations plus the session view.
type GameHandler struct {
	gameService *service.GameService
}

// NewGameHandler creates a new GameHandler.
func NewGameHandler(gameService *service.GameService) *GameHandler {
	return &GameHandler{gameService: gameService}
}

// StartGame godoc
// POST /api/v1/game/start
// Opens a session on an unserved question and returns the scrambled puzzle.
// A fully served pool answers 200 with an ALL_QUESTIONS_COMPLETED body
// rather than an error status: finishing every question is an outcome.
func (h *GameHandler) StartGame(c *gin.Context) {
	var req model.StartGameRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	state, err := h.gameService.StartGame(c.Request.Context(), req.PlayerID, req.GameType, req.Difficulty)
	if err != nil {
		var exhausted *questionbank.AllQuestionsCompletedError
		if errors.As(err, &exhausted) {
			response.FailWithMessage(c, http.StatusOK, response.AllQuestionsCompleted, exhausted.Message)
			return
		}
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"game": state})
}

// SubmitAnswer godoc
// POST /api/v1/game/answer
// Grades the answer against the player's active session.
func (h *GameHandler) SubmitAnswer(c *gin.Context) {
	var req model.SubmitAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.gameService.SubmitAnswer(c.Request.Context(), req.PlayerID, req.Answer, req.TimeTakenSeconds)
	if err != nil {
		if errors.Is(err, service.ErrInvalidState) {
			response.Fail(c, http.StatusConflict, response.ErrNoActiveGame)
			return
		}
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"result": result})
}

// GetHint godoc
// POST /api/v1/game/hint
// Returns one hint tier and charges it against the session's hint budget.
func (h *GameHandler) GetHint(c *gin.Context) {
	var req model.HintRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	hint, err := h.gameService.GetHint(c.Request.Context(), req.PlayerID, req.Level)
	if err != nil {
		if errors.Is(err, service.ErrHintsExhausted) {
			response.Fail(c, http.StatusConflict, response.ErrHintExhausted)
			return
		}
		if errors.Is(err, service.ErrInvalidState) {
			response.Fail(c, http.StatusConflict, response.ErrNoActiveGame)
			return
		}
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"hint": hint})
}

// RestartQuiz godoc
// POST /api/v1/game/restart
// Clears the player's question history for a game type so an exhausted
// pool serves again.
func (h *GameHandler) RestartQuiz(c *gin.Context) {
	var req model.RestartRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.gameService.RestartQuiz(c.Request.Context(), req.PlayerID, req.GameType); err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "question history cleared"})
}

func parsePlayerIDQuery(c *gin.Context) (uuid.UUID, error) {
	return uuid.Parse(c.Query("player_id"))
}

// GetSession godoc
// GET /api/v1/game/session?player_id=...
// Returns the player's current ACTIVE session.
func (h *GameHandler) GetSession(c *gin.Context) {
	playerID, err := parsePlayerIDQuery(c)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	session, err := h.gameService.CurrentSession(c.Request.Context(), playerID)
	if err != nil {
		if errors.Is(err, service.ErrInvalidState) {
			response.Fail(c, http.StatusNotFound, response.ErrNoActiveGame)
			return
		}
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": session})
}
