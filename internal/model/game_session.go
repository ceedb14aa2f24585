package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// SessionStatus enumerates game session lifecycle states.
type SessionStatus string

const (
	SessionStatusActive    SessionStatus = "ACTIVE"
	SessionStatusCompleted SessionStatus = "COMPLETED"
	SessionStatusAbandoned SessionStatus = "ABANDONED"
	SessionStatusExpired   SessionStatus = "EXPIRED"
)

// GameSession is one puzzle attempt. A player has at most one ACTIVE
// session at a time; sessions are only ever transitioned, never deleted.
type GameSession struct {
	ID          uuid.UUID       `json:"id"`
	PlayerID    uuid.UUID       `json:"player_id"`
	GameType    GameType        `json:"game_type"`
	Difficulty  Difficulty      `json:"difficulty"`
	Status      SessionStatus   `json:"status"`
	QuestionID  string          `json:"question_id"`
	Payload     json.RawMessage `json:"payload"`
	StartedAt   time.Time       `json:"started_at"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
	FinalScore  *int            `json:"final_score,omitempty"`
	// Version is bumped on every write; writers compare-and-swap on it so
	// two concurrent requests cannot both own the sole ACTIVE session.
	Version int         `json:"-"`
	Hints   []HintUsage `json:"hints,omitempty"`
}

// HintsUsed returns how many hint requests this session has consumed.
func (s *GameSession) HintsUsed() int {
	return len(s.Hints)
}

// HintPenalty returns the summed penalty of all hints actually taken.
func (s *GameSession) HintPenalty() int {
	total := 0
	for _, h := range s.Hints {
		total += h.Penalty
	}
	return total
}

// HintUsage records one hint request inside a session. At most three per
// session; the penalty is fixed per level (10/20/30).
type HintUsage struct {
	ID        uuid.UUID `json:"id"`
	SessionID uuid.UUID `json:"session_id"`
	Level     int       `json:"level"`
	Penalty   int       `json:"penalty"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// HintPenaltyForLevel returns the fixed penalty for a hint level, or 0 for
// a level outside 1..3.
func HintPenaltyForLevel(level int) int {
	switch level {
	case 1:
		return 10
	case 2:
		return 20
	case 3:
		return 30
	}
	return 0
}

// MaxHintsPerSession is the per-session hint budget.
const MaxHintsPerSession = 3

// ─── Request DTOs ───────────────────────────────────────────────────

// StartGameRequest opens a new session for a player.
type StartGameRequest struct {
	PlayerID   uuid.UUID  `json:"player_id" binding:"required"`
	GameType   GameType   `json:"game_type" binding:"required,oneof=IDIOM SENTENCE"`
	Difficulty Difficulty `json:"difficulty" binding:"required,oneof=EASY MEDIUM HARD EXPERT"`
}

// SubmitAnswerRequest submits the player's assembled answer.
type SubmitAnswerRequest struct {
	PlayerID         uuid.UUID `json:"player_id" binding:"required"`
	Answer           string    `json:"answer" binding:"required,max=512"`
	TimeTakenSeconds int       `json:"time_taken_seconds" binding:"min=0"`
}

// HintRequest asks for one of the three hint tiers. The level range is
// validated in the service so an out-of-range level maps to
// INVALID_ARGUMENT rather than a generic binding failure.
type HintRequest struct {
	PlayerID uuid.UUID `json:"player_id" binding:"required"`
	Level    int       `json:"level" binding:"required"`
}

// RestartRequest clears a player's question history for one game type,
// re-enabling replay of an exhausted pool.
type RestartRequest struct {
	PlayerID uuid.UUID `json:"player_id" binding:"required"`
	GameType GameType  `json:"game_type" binding:"required,oneof=IDIOM SENTENCE"`
}
