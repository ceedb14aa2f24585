package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/luoxi-lab/hanyu-arena-backend/internal/game"
	"github.com/luoxi-lab/hanyu-arena-backend/internal/model"
	"github.com/luoxi-lab/hanyu-arena-backend/internal/questionbank"
	"github.com/rs/zerolog"
)

// scoreQueue buffers score records for asynchronous ledger persistence.
// The production implementation pushes to the Redis persist queue consumed
// by the score worker.
type scoreQueue interface {
	Enqueue(ctx context.Context, rec *model.ScoreRecord) error
}

// sessionPayload is the opaque puzzle state stored on the session: the
// exact scrambled order served to this player.
type sessionPayload struct {
	ScrambledTokens []string `json:"scrambled_tokens"`
}

// GameState is returned by StartGame.
type GameState struct {
	SessionID        uuid.UUID        `json:"session_id"`
	GameType         model.GameType   `json:"game_type"`
	Difficulty       model.Difficulty `json:"difficulty"`
	ScrambledTokens  []string         `json:"scrambled_tokens"`
	TokenCount       int              `json:"token_count"`
	TimeLimitSeconds int              `json:"time_limit_seconds"`
	Meaning          string           `json:"meaning"`
	Pinyin           string           `json:"pinyin"`
}

// GameResult is returned by SubmitAnswer.
type GameResult struct {
	Correct         bool                    `json:"correct"`
	Score           int                     `json:"score"`
	ScoreBreakdown  game.ScoreBreakdown     `json:"score_breakdown"`
	TargetText      string                  `json:"target_text"`
	NewAchievements []model.Achievement     `json:"new_achievements"`
	Leaderboard     *model.LeaderboardEntry `json:"leaderboard"`
}

// Hint is returned by GetHint.
type Hint struct {
	Level   int    `json:"level"`
	Content string `json:"content"`
	Penalty int    `json:"penalty"`
}

// GameService composes the scoring engine, history tracker, session
// manager, leaderboard and achievement engines behind the four player
// operations.
type GameService struct {
	players      *PlayerService
	sessions     *SessionService
	bank         *questionbank.Provider
	tracker      *game.HistoryTracker
	leaderboard  *LeaderboardService
	achievements *AchievementService
	scores       scoreQueue
	feed         feedPublisher
	log          zerolog.Logger
}

// NewGameService creates a new GameService.
func NewGameService(
	players *PlayerService,
	sessions *SessionService,
	bank *questionbank.Provider,
	tracker *game.HistoryTracker,
	leaderboard *LeaderboardService,
	achievements *AchievementService,
	scores scoreQueue,
	feed feedPublisher,
	log zerolog.Logger,
) *GameService {
	return &GameService{
		players:      players,
		sessions:     sessions,
		bank:         bank,
		tracker:      tracker,
		leaderboard:  leaderboard,
		achievements: achievements,
		scores:       scores,
		feed:         feed,
		log:          log.With().Str("component", "game_service").Logger(),
	}
}

// StartGame picks an unserved question, opens a session for the player and
// returns the scrambled puzzle. A fully served pool surfaces as
// *questionbank.AllQuestionsCompletedError — a completion outcome, not a
// failure.
func (s *GameService) StartGame(ctx context.Context, playerID uuid.UUID, gameType model.GameType, difficulty model.Difficulty) (*GameState, error) {
	if _, err := s.players.GetByID(ctx, playerID); err != nil {
		return nil, err
	}

	excluded, err := s.tracker.Excluded(ctx, playerID, gameType)
	if err != nil {
		return nil, fmt.Errorf("question history: %w", err)
	}

	question, err := s.bank.Pick(gameType, difficulty, excluded)
	if err != nil {
		return nil, err // AllQuestionsCompletedError passes through intact.
	}

	scrambled := s.bank.Scramble(question)
	payload, err := json.Marshal(sessionPayload{ScrambledTokens: scrambled})
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	session, err := s.sessions.CreateSession(ctx, playerID, gameType, difficulty, question.ID, payload)
	if err != nil {
		return nil, err
	}

	if err := s.tracker.Add(ctx, playerID, gameType, question.ID); err != nil {
		// The session is already open; a lost history write only risks one
		// repeat, so log and continue.
		s.log.Warn().Err(err).Str("question_id", question.ID).Msg("History tracking failed")
	}

	return &GameState{
		SessionID:        session.ID,
		GameType:         gameType,
		Difficulty:       difficulty,
		ScrambledTokens:  scrambled,
		TokenCount:       len(scrambled),
		TimeLimitSeconds: difficulty.TimeLimitSeconds(),
		Meaning:          question.Meaning,
		Pinyin:           question.Pinyin,
	}, nil
}

// SubmitAnswer grades the answer against the open session, appends the
// score record, completes the session, updates the leaderboard and runs
// the achievement checks. Fails with ErrInvalidState when the player has
// no ACTIVE session.
func (s *GameService) SubmitAnswer(ctx context.Context, playerID uuid.UUID, answer string, timeTaken int) (*GameResult, error) {
	if _, err := s.players.GetByID(ctx, playerID); err != nil {
		return nil, err
	}

	session, err := s.sessions.ActiveSession(ctx, playerID)
	if err != nil {
		return nil, err
	}

	question, ok := s.bank.Get(session.QuestionID)
	if !ok {
		return nil, fmt.Errorf("question %s missing from bank", session.QuestionID)
	}

	accuracy := answerAccuracy(question.TargetText, answer)
	correct := accuracy >= 1.0

	in := game.ScoreInput{
		Difficulty:       session.Difficulty,
		TimeTakenSeconds: timeTaken,
		AccuracyRate:     accuracy,
		HintLevels:       hintLevels(session.Hints),
	}

	var breakdown game.ScoreBreakdown
	var grammarScore, similarityScore *float64
	if session.GameType == model.GameTypeSentence {
		gs := grammarCoverage(question, answer)
		in.GrammarScore = gs
		breakdown = game.CalculateSentenceScore(in)
		sim := accuracy * 100
		grammarScore, similarityScore = &gs, &sim
	} else {
		breakdown = game.CalculateIdiomScore(in)
	}

	// Complete the session first: it is the lifecycle guard, and every
	// derived write below keys off a COMPLETED session.
	session, err = s.sessions.CompleteSession(ctx, session.ID, breakdown.Final)
	if err != nil {
		return nil, err
	}

	record := &model.ScoreRecord{
		ID:               uuid.New(),
		PlayerID:         playerID,
		GameType:         session.GameType,
		Difficulty:       session.Difficulty,
		QuestionID:       question.ID,
		TargetText:       question.TargetText,
		SubmittedText:    answer,
		Score:            breakdown.Final,
		AccuracyRate:     accuracy,
		HintsUsed:        session.HintsUsed(),
		TimeTakenSeconds: timeTaken,
		Completed:        true,
		GrammarScore:     grammarScore,
		SimilarityScore:  similarityScore,
		CreatedAt:        time.Now(),
	}
	if err := s.scores.Enqueue(ctx, record); err != nil {
		// The ledger is eventually consistent; session and leaderboard are
		// already correct, so surface the loss in logs only.
		s.log.Error().Err(err).Str("record_id", record.ID.String()).Msg("Score enqueue failed")
	}

	entry, err := s.leaderboard.UpdateAfterGame(ctx, playerID, session.GameType, session.Difficulty, breakdown.Final, accuracy)
	if err != nil {
		return nil, err
	}

	unlocked, err := s.achievements.CheckAndUnlock(ctx, playerID, GameOutcome{
		Score:            breakdown.Final,
		TimeTakenSeconds: timeTaken,
		AccuracyRate:     accuracy,
		HintsUsed:        session.HintsUsed(),
		Rank:             entry.Rank,
	})
	if err != nil {
		return nil, err
	}

	s.publishResult(ctx, playerID, session, breakdown.Final, entry, unlocked)

	if unlocked == nil {
		unlocked = []model.Achievement{}
	}
	return &GameResult{
		Correct:         correct,
		Score:           breakdown.Final,
		ScoreBreakdown:  breakdown,
		TargetText:      question.TargetText,
		NewAchievements: unlocked,
		Leaderboard:     entry,
	}, nil
}

// GetHint returns one hint tier and charges it against the session budget.
// The level is validated before any mutation.
func (s *GameService) GetHint(ctx context.Context, playerID uuid.UUID, level int) (*Hint, error) {
	if level < 1 || level > 3 {
		return nil, fmt.Errorf("%w: hint level %d out of range 1..3", ErrInvalidArgument, level)
	}
	if _, err := s.players.GetByID(ctx, playerID); err != nil {
		return nil, err
	}

	session, err := s.sessions.ActiveSession(ctx, playerID)
	if err != nil {
		return nil, err
	}

	question, ok := s.bank.Get(session.QuestionID)
	if !ok {
		return nil, fmt.Errorf("question %s missing from bank", session.QuestionID)
	}
	content := question.Hints[level-1]

	if _, err := s.sessions.AddHint(ctx, session.ID, level, content); err != nil {
		return nil, err
	}

	return &Hint{
		Level:   level,
		Content: content,
		Penalty: model.HintPenaltyForLevel(level),
	}, nil
}

// RestartQuiz clears the player's question history for a game type,
// re-enabling replay of a fully exhausted pool.
func (s *GameService) RestartQuiz(ctx context.Context, playerID uuid.UUID, gameType model.GameType) error {
	if _, err := s.players.GetByID(ctx, playerID); err != nil {
		return err
	}
	if err := s.tracker.Clear(ctx, playerID, gameType); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

// CurrentSession returns the player's open session for the state view.
func (s *GameService) CurrentSession(ctx context.Context, playerID uuid.UUID) (*model.GameSession, error) {
	if _, err := s.players.GetByID(ctx, playerID); err != nil {
		return nil, err
	}
	return s.sessions.ActiveSession(ctx, playerID)
}

func (s *GameService) publishResult(ctx context.Context, playerID uuid.UUID, session *model.GameSession, score int, entry *model.LeaderboardEntry, unlocked []model.Achievement) {
	events := []FeedEvent{{
		Type:       FeedGameCompleted,
		PlayerID:   playerID,
		GameType:   session.GameType,
		Difficulty: session.Difficulty,
		Score:      score,
		Rank:       entry.Rank,
		At:         time.Now(),
	}}
	for _, a := range unlocked {
		events = append(events, FeedEvent{
			Type:        FeedAchievementUnlocked,
			PlayerID:    playerID,
			Achievement: a.Type,
			At:          a.UnlockedAt,
		})
	}
	// Best effort: a failed publish must not swallow the events behind it.
	for _, ev := range events {
		if err := s.feed.Publish(ctx, ev); err != nil {
			s.log.Warn().Err(err).Str("event", string(ev.Type)).Msg("Feed publish failed")
		}
	}
}

// ─── Grading helpers ────────────────────────────────────────────────

// answerAccuracy compares normalized answers rune by rune: an exact match
// is 1.0, otherwise the fraction of positions that agree, over the longer
// of the two texts.
func answerAccuracy(target, submitted string) float64 {
	t := []rune(normalizeAnswer(target))
	a := []rune(normalizeAnswer(submitted))

	if len(t) == 0 {
		return 0
	}
	longest := len(t)
	if len(a) > longest {
		longest = len(a)
	}

	matches := 0
	for i := 0; i < len(t) && i < len(a); i++ {
		if t[i] == a[i] {
			matches++
		}
	}
	return float64(matches) / float64(longest)
}

// grammarCoverage scores 0..100 by the share of the question's grammar
// points present in the answer. Questions without grammar points fall back
// to the positional accuracy.
func grammarCoverage(q model.Question, submitted string) float64 {
	if len(q.GrammarPoints) == 0 {
		return answerAccuracy(q.TargetText, submitted) * 100
	}

	norm := normalizeAnswer(submitted)
	covered := 0
	for _, point := range q.GrammarPoints {
		if strings.Contains(norm, normalizeAnswer(point)) {
			covered++
		}
	}
	return float64(covered) / float64(len(q.GrammarPoints)) * 100
}

// normalizeAnswer strips whitespace so drag-and-drop token joins compare
// equal regardless of separator handling.
func normalizeAnswer(text string) string {
	return strings.Join(strings.Fields(text), "")
}

func hintLevels(hints []model.HintUsage) []int {
	levels := make([]int, 0, len(hints))
	for _, h := range hints {
		levels = append(levels, h.Level)
	}
	return levels
}
