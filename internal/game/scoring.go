// Package game holds the request-independent game core: the deterministic
// scoring formula and the bounded no-repeat question tracker.
package game

import "github.com/luoxi-lab/hanyu-arena-backend/internal/model"

// ScoreInput carries everything the formula needs. HintLevels lists the
// levels of the hints actually taken (repeats allowed); the penalty is the
// sum of their per-level costs, not a flat per-count fee.
type ScoreInput struct {
	Difficulty       model.Difficulty
	TimeTakenSeconds int
	AccuracyRate     float64 // 0.0 .. 1.0
	HintLevels       []int
	// GrammarScore is 0..100 and only consulted by the sentence formula.
	GrammarScore float64
}

// ScoreBreakdown itemizes how a final score was produced.
type ScoreBreakdown struct {
	Base          int     `json:"base"`
	TimeBonus     int     `json:"time_bonus"`
	AccuracyBonus int     `json:"accuracy_bonus"`
	GrammarBonus  int     `json:"grammar_bonus,omitempty"`
	HintPenalty   int     `json:"hint_penalty"`
	Multiplier    float64 `json:"multiplier"`
	Final         int     `json:"final"`
}

// BaseScore returns the difficulty base component.
func BaseScore(d model.Difficulty) int {
	switch d {
	case model.DifficultyEasy:
		return 100
	case model.DifficultyMedium:
		return 200
	case model.DifficultyHard:
		return 300
	case model.DifficultyExpert:
		return 500
	}
	return 0
}

// Multiplier returns the difficulty multiplier. MaxScore uses the same
// table, so threshold checks always agree with the formula.
func Multiplier(d model.Difficulty) float64 {
	switch d {
	case model.DifficultyEasy:
		return 1.0
	case model.DifficultyMedium:
		return 1.5
	case model.DifficultyHard:
		return 2.0
	case model.DifficultyExpert:
		return 3.0
	}
	return 1.0
}

// timeBonus is tiered on the raw time taken, independent of the
// per-difficulty time limit.
func timeBonus(seconds int) int {
	switch {
	case seconds < 30:
		return 50
	case seconds < 60:
		return 30
	case seconds < 90:
		return 15
	}
	return 0
}

func accuracyBonus(rate float64) int {
	switch {
	case rate >= 1.0:
		return 100
	case rate >= 0.95:
		return 50
	case rate >= 0.90:
		return 25
	}
	return 0
}

func grammarBonus(score float64) int {
	switch {
	case score >= 95:
		return 50
	case score >= 85:
		return 25
	}
	return 0
}

func hintPenalty(levels []int) int {
	total := 0
	for _, lvl := range levels {
		total += model.HintPenaltyForLevel(lvl)
	}
	return total
}

// CalculateIdiomScore computes the idiom game score. Pure and
// deterministic; the result is never negative.
func CalculateIdiomScore(in ScoreInput) ScoreBreakdown {
	return calculate(in, false)
}

// CalculateSentenceScore computes the sentence game score, adding the
// grammar bonus on top of the idiom formula.
func CalculateSentenceScore(in ScoreInput) ScoreBreakdown {
	return calculate(in, true)
}

func calculate(in ScoreInput, withGrammar bool) ScoreBreakdown {
	b := ScoreBreakdown{
		Base:          BaseScore(in.Difficulty),
		TimeBonus:     timeBonus(in.TimeTakenSeconds),
		AccuracyBonus: accuracyBonus(in.AccuracyRate),
		HintPenalty:   hintPenalty(in.HintLevels),
		Multiplier:    Multiplier(in.Difficulty),
	}
	if withGrammar {
		b.GrammarBonus = grammarBonus(in.GrammarScore)
	}

	raw := b.Base + b.TimeBonus + b.AccuracyBonus + b.GrammarBonus - b.HintPenalty
	if raw < 0 {
		raw = 0
	}
	b.Final = int(float64(raw) * b.Multiplier)
	return b
}

// MaxScore is the closed-form maximum for a difficulty: full accuracy
// bonus, fastest time tier, no hints. Used by achievement threshold checks
// and the client UI.
func MaxScore(d model.Difficulty) int {
	return int(float64(BaseScore(d)+50+100) * Multiplier(d))
}
