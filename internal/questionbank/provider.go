// Package questionbank pre-loads the idiom and sentence question banks and
// serves exclusion-filtered random selection. Pool exhaustion is a
// distinct, non-error outcome.
package questionbank

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/luoxi-lab/hanyu-arena-backend/internal/model"
	"github.com/rs/zerolog"
)

// CompletionMessage is surfaced to the client when a pool is exhausted.
const CompletionMessage = "Congratulations! You have completed every question in this difficulty. Restart to play again."

// AllQuestionsCompletedError signals that every question in the requested
// pool is in the player's exclusion set. It is a control-flow outcome the
// caller renders as a completion screen, not a failure.
type AllQuestionsCompletedError struct {
	GameType   model.GameType
	Difficulty model.Difficulty
	Message    string
}

func (e *AllQuestionsCompletedError) Error() string {
	return fmt.Sprintf("all %s questions completed for %s", e.GameType, e.Difficulty)
}

type bankKey struct {
	gameType   model.GameType
	difficulty model.Difficulty
}

// Provider holds the in-memory question banks, loaded once at startup.
// The maps are never mutated after Load, so selection is safe from
// concurrent request goroutines; randomness goes through the top-level
// math/rand functions for the same reason.
type Provider struct {
	banks map[bankKey][]model.Question
	byID  map[string]model.Question
}

// bankFile is the on-disk JSON shape, one file per game type.
type bankFile struct {
	GameType  model.GameType   `json:"game_type"`
	Questions []model.Question `json:"questions"`
}

// Load reads idioms.json and sentences.json from dir and builds the
// provider. The server refuses to boot on a missing or malformed bank.
func Load(dir string, log zerolog.Logger) (*Provider, error) {
	p := newProvider()

	for _, name := range []string{"idioms.json", "sentences.json"} {
		path := filepath.Join(dir, name)
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read question bank %s: %w", path, err)
		}

		var bank bankFile
		if err := json.Unmarshal(raw, &bank); err != nil {
			return nil, fmt.Errorf("parse question bank %s: %w", path, err)
		}
		if !bank.GameType.Valid() {
			return nil, fmt.Errorf("question bank %s: unknown game type %q", path, bank.GameType)
		}

		for _, q := range bank.Questions {
			q.GameType = bank.GameType
			if err := p.add(q); err != nil {
				return nil, fmt.Errorf("question bank %s: %w", path, err)
			}
		}
	}

	for key, qs := range p.banks {
		log.Info().
			Str("game_type", string(key.gameType)).
			Str("difficulty", string(key.difficulty)).
			Int("questions", len(qs)).
			Msg("Question bank loaded")
	}

	return p, nil
}

// NewFromQuestions builds a provider from an in-memory slice. Used by tests
// and seed tooling.
func NewFromQuestions(questions []model.Question) (*Provider, error) {
	p := newProvider()
	for _, q := range questions {
		if err := p.add(q); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func newProvider() *Provider {
	return &Provider{
		banks: make(map[bankKey][]model.Question),
		byID:  make(map[string]model.Question),
	}
}

func (p *Provider) add(q model.Question) error {
	if q.ID == "" {
		return fmt.Errorf("question with empty ID (target %q)", q.TargetText)
	}
	if !q.Difficulty.Valid() {
		return fmt.Errorf("question %s: unknown difficulty %q", q.ID, q.Difficulty)
	}
	if len(q.Hints) != 3 {
		return fmt.Errorf("question %s: expected 3 hint tiers, got %d", q.ID, len(q.Hints))
	}
	if _, dup := p.byID[q.ID]; dup {
		return fmt.Errorf("duplicate question ID %s", q.ID)
	}

	key := bankKey{q.GameType, q.Difficulty}
	p.banks[key] = append(p.banks[key], q)
	p.byID[q.ID] = q
	return nil
}

// Get resolves a question by ID.
func (p *Provider) Get(id string) (model.Question, bool) {
	q, ok := p.byID[id]
	return q, ok
}

// PoolSize returns how many questions exist for a game type and difficulty.
func (p *Provider) PoolSize(gameType model.GameType, difficulty model.Difficulty) int {
	return len(p.banks[bankKey{gameType, difficulty}])
}

// Pick selects a random question from the difficulty-scoped pool whose ID
// is not in excluded. An empty filtered pool returns
// *AllQuestionsCompletedError; an empty bank is a configuration error.
func (p *Provider) Pick(gameType model.GameType, difficulty model.Difficulty, excluded []string) (model.Question, error) {
	pool := p.banks[bankKey{gameType, difficulty}]
	if len(pool) == 0 {
		return model.Question{}, fmt.Errorf("no %s questions configured for difficulty %s", gameType, difficulty)
	}

	skip := make(map[string]bool, len(excluded))
	for _, id := range excluded {
		skip[id] = true
	}

	candidates := make([]model.Question, 0, len(pool))
	for _, q := range pool {
		if !skip[q.ID] {
			candidates = append(candidates, q)
		}
	}

	if len(candidates) == 0 {
		return model.Question{}, &AllQuestionsCompletedError{
			GameType:   gameType,
			Difficulty: difficulty,
			Message:    CompletionMessage,
		}
	}

	return candidates[rand.Intn(len(candidates))], nil
}

// Scramble returns a shuffled copy of the question tokens, guaranteed to
// differ from the answer order whenever the token multiset allows it.
func (p *Provider) Scramble(q model.Question) []string {
	tokens := make([]string, len(q.Tokens))
	copy(tokens, q.Tokens)
	if len(tokens) < 2 || allEqual(tokens) {
		return tokens
	}

	for {
		rand.Shuffle(len(tokens), func(i, j int) {
			tokens[i], tokens[j] = tokens[j], tokens[i]
		})
		if !sameOrder(tokens, q.Tokens) {
			return tokens
		}
	}
}

func allEqual(tokens []string) bool {
	for _, tok := range tokens[1:] {
		if tok != tokens[0] {
			return false
		}
	}
	return true
}

func sameOrder(a, b []string) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
