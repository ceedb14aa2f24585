package model

import (
	"time"

	"github.com/google/uuid"
)

// ScoreRecord is the immutable snapshot appended when an answer is
// submitted. The leaderboard and achievement engines derive from this
// ledger; rows are never updated or deleted.
type ScoreRecord struct {
	ID               uuid.UUID  `json:"id"`
	PlayerID         uuid.UUID  `json:"player_id"`
	GameType         GameType   `json:"game_type"`
	Difficulty       Difficulty `json:"difficulty"`
	QuestionID       string     `json:"question_id"`
	TargetText       string     `json:"target_text"`
	SubmittedText    string     `json:"submitted_text"`
	Score            int        `json:"score"`
	AccuracyRate     float64    `json:"accuracy_rate"`
	HintsUsed        int        `json:"hints_used"`
	TimeTakenSeconds int        `json:"time_taken_seconds"`
	Completed        bool       `json:"completed"`
	// Sentence game only.
	GrammarScore    *float64  `json:"grammar_score,omitempty"`
	SimilarityScore *float64  `json:"similarity_score,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}
