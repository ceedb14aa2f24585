package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/luoxi-lab/hanyu-arena-backend/internal/model"
	"github.com/luoxi-lab/hanyu-arena-backend/internal/repository"
	"github.com/rs/zerolog"
)

// casRetries bounds the optimistic-locking retry loop. Conflicts are rare
// (two requests for the same player in the same instant), so a handful of
// attempts is plenty.
const casRetries = 3

// sessionStore is the persistence surface SessionService needs. Implemented
// by repository.GameSessionRepository; absence of a row is signaled with
// pgx.ErrNoRows.
type sessionStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.GameSession, error)
	GetActiveByPlayer(ctx context.Context, playerID uuid.UUID) (*model.GameSession, error)
	Create(ctx context.Context, s *model.GameSession) error
	AbandonActive(ctx context.Context, playerID uuid.UUID) error
	Abandon(ctx context.Context, sessionID uuid.UUID) error
	Complete(ctx context.Context, sessionID uuid.UUID, score int, version int) error
	AddHint(ctx context.Context, sessionID uuid.UUID, version int, h *model.HintUsage) error
	ExpireOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	CountCompleted(ctx context.Context, playerID uuid.UUID) (int, error)
	HasCompletionStreak(ctx context.Context, playerID uuid.UUID, days int) (bool, error)
}

// SessionService owns the per-player session state machine and the hint
// budget. All transitions go through version compare-and-swap writes so
// concurrent requests for one player serialize instead of both claiming
// the sole ACTIVE session.
type SessionService struct {
	store      sessionStore
	sessionTTL time.Duration
	log        zerolog.Logger
}

// NewSessionService creates a new SessionService.
func NewSessionService(store sessionStore, sessionTTL time.Duration, log zerolog.Logger) *SessionService {
	return &SessionService{
		store:      store,
		sessionTTL: sessionTTL,
		log:        log.With().Str("component", "session_service").Logger(),
	}
}

// CreateSession opens a new ACTIVE session. An existing ACTIVE session for
// the player is first transitioned to ABANDONED, guaranteeing at most one
// ACTIVE session per player.
func (s *SessionService) CreateSession(ctx context.Context, playerID uuid.UUID, gameType model.GameType, difficulty model.Difficulty, questionID string, payload json.RawMessage) (*model.GameSession, error) {
	for attempt := 0; attempt < casRetries; attempt++ {
		if err := s.store.AbandonActive(ctx, playerID); err != nil {
			return nil, fmt.Errorf("abandon previous session: %w", err)
		}

		session := &model.GameSession{
			ID:         uuid.New(),
			PlayerID:   playerID,
			GameType:   gameType,
			Difficulty: difficulty,
			Status:     model.SessionStatusActive,
			QuestionID: questionID,
			Payload:    payload,
		}
		err := s.store.Create(ctx, session)
		if errors.Is(err, repository.ErrActiveSessionExists) {
			// A concurrent request opened a session after our abandon;
			// abandon again and retry.
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("create session: %w", err)
		}
		return session, nil
	}
	return nil, fmt.Errorf("%w: session busy, retry", ErrInvalidState)
}

// ActiveSession returns the player's ACTIVE session or ErrInvalidState when
// the player has no open session.
func (s *SessionService) ActiveSession(ctx context.Context, playerID uuid.UUID) (*model.GameSession, error) {
	session, err := s.store.GetActiveByPlayer(ctx, playerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: no active session", ErrInvalidState)
		}
		return nil, fmt.Errorf("get active session: %w", err)
	}
	return session, nil
}

// AddHint appends a hint usage to the session. Fails with ErrInvalidState
// once three hints have been used, regardless of the requested level.
// Repeated requests for the same level are permitted within the budget;
// each repeat pays that level's penalty again.
func (s *SessionService) AddHint(ctx context.Context, sessionID uuid.UUID, level int, content string) (*model.GameSession, error) {
	if level < 1 || level > model.MaxHintsPerSession {
		return nil, fmt.Errorf("%w: hint level %d out of range 1..3", ErrInvalidArgument, level)
	}

	for attempt := 0; attempt < casRetries; attempt++ {
		session, err := s.store.GetByID(ctx, sessionID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, fmt.Errorf("%w: session %s", ErrNotFound, sessionID)
			}
			return nil, fmt.Errorf("get session: %w", err)
		}
		if session.Status != model.SessionStatusActive {
			return nil, fmt.Errorf("%w: session is %s", ErrInvalidState, session.Status)
		}
		if session.HintsUsed() >= model.MaxHintsPerSession {
			return nil, ErrHintsExhausted
		}

		hint := &model.HintUsage{
			ID:      uuid.New(),
			Level:   level,
			Penalty: model.HintPenaltyForLevel(level),
			Content: content,
		}
		err = s.store.AddHint(ctx, sessionID, session.Version, hint)
		if errors.Is(err, repository.ErrVersionConflict) {
			continue // Lost the race; re-read and re-validate the budget.
		}
		if err != nil {
			return nil, fmt.Errorf("add hint: %w", err)
		}

		hint.SessionID = sessionID
		session.Hints = append(session.Hints, *hint)
		session.Version++
		return session, nil
	}
	return nil, fmt.Errorf("%w: session busy, retry", ErrInvalidState)
}

// CompleteSession transitions an ACTIVE session to COMPLETED with the
// final score. Double completion fails with ErrInvalidState.
func (s *SessionService) CompleteSession(ctx context.Context, sessionID uuid.UUID, score int) (*model.GameSession, error) {
	for attempt := 0; attempt < casRetries; attempt++ {
		session, err := s.store.GetByID(ctx, sessionID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, fmt.Errorf("%w: session %s", ErrNotFound, sessionID)
			}
			return nil, fmt.Errorf("get session: %w", err)
		}
		if session.Status != model.SessionStatusActive {
			return nil, fmt.Errorf("%w: session is %s", ErrInvalidState, session.Status)
		}

		err = s.store.Complete(ctx, sessionID, score, session.Version)
		if errors.Is(err, repository.ErrVersionConflict) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("complete session: %w", err)
		}

		now := time.Now()
		session.Status = model.SessionStatusCompleted
		session.FinalScore = &score
		session.CompletedAt = &now
		session.Version++
		return session, nil
	}
	return nil, fmt.Errorf("%w: session busy, retry", ErrInvalidState)
}

// AbandonSession marks a session ABANDONED. Idempotent no-op when the
// session is already in a terminal state.
func (s *SessionService) AbandonSession(ctx context.Context, sessionID uuid.UUID) error {
	if err := s.store.Abandon(ctx, sessionID); err != nil {
		return fmt.Errorf("abandon session: %w", err)
	}
	return nil
}

// ExpireInactiveSessions transitions every ACTIVE session older than the
// configured TTL to EXPIRED. The underlying update is status-guarded, so a
// session completed between scan and write is never expired.
func (s *SessionService) ExpireInactiveSessions(ctx context.Context) (int64, error) {
	cutoff := time.Now().Add(-s.sessionTTL)
	n, err := s.store.ExpireOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("expire sessions: %w", err)
	}
	if n > 0 {
		s.log.Info().Int64("expired", n).Msg("Expired inactive sessions")
	}
	return n, nil
}

// CompletedGames returns the player's lifetime completed-game count.
func (s *SessionService) CompletedGames(ctx context.Context, playerID uuid.UUID) (int, error) {
	return s.store.CountCompleted(ctx, playerID)
}

// HasCompletionStreak reports a completion on each of the last n days.
func (s *SessionService) HasCompletionStreak(ctx context.Context, playerID uuid.UUID, days int) (bool, error) {
	return s.store.HasCompletionStreak(ctx, playerID, days)
}
