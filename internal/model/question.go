package model

// GameType distinguishes the two Mandarin puzzle games.
type GameType string

const (
	GameTypeIdiom    GameType = "IDIOM"
	GameTypeSentence GameType = "SENTENCE"
)

// Valid reports whether g is a known game type.
func (g GameType) Valid() bool {
	return g == GameTypeIdiom || g == GameTypeSentence
}

// Difficulty governs time limit, base score and score multiplier.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "EASY"
	DifficultyMedium Difficulty = "MEDIUM"
	DifficultyHard   Difficulty = "HARD"
	DifficultyExpert Difficulty = "EXPERT"
)

// Valid reports whether d is a known difficulty.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard, DifficultyExpert:
		return true
	}
	return false
}

// TimeLimitSeconds returns the per-difficulty answer time limit shown to
// the client. The scoring time bonus is tiered independently of it.
func (d Difficulty) TimeLimitSeconds() int {
	switch d {
	case DifficultyEasy:
		return 120
	case DifficultyMedium:
		return 90
	case DifficultyHard:
		return 60
	case DifficultyExpert:
		return 45
	}
	return 120
}

// Question is one entry of the pre-loaded question bank. Idioms carry four
// character tokens; sentences carry word tokens plus grammar points.
type Question struct {
	ID         string     `json:"id"`
	GameType   GameType   `json:"game_type"`
	Difficulty Difficulty `json:"difficulty"`
	TargetText string     `json:"target_text"`
	Tokens     []string   `json:"tokens"`
	Pinyin     string     `json:"pinyin"`
	Meaning    string     `json:"meaning"`
	// Hints holds the three-tier hint text, index 0 = level 1.
	Hints         []string `json:"hints"`
	GrammarPoints []string `json:"grammar_points,omitempty"`
}
