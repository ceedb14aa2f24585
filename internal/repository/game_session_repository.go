package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/luoxi-lab/hanyu-arena-backend/internal/model"
)

// ErrVersionConflict is returned when an optimistic compare-and-swap write
// lost to a concurrent writer. Callers re-read and retry.
var ErrVersionConflict = errors.New("session version conflict")

// ErrActiveSessionExists is returned when an insert hits the partial unique
// index on (player_id) WHERE status = 'ACTIVE': a concurrent request opened
// a session between the caller's abandon and create. Callers retry the
// abandon-then-create cycle.
var ErrActiveSessionExists = errors.New("player already has an active session")

// uniqueViolation is the PostgreSQL error code for a unique constraint hit.
const uniqueViolation = "23505"

// GameSessionRepository handles game session data access. All mutating
// statements are guarded by status and/or version so concurrent writers
// can never both own the sole ACTIVE session.
type GameSessionRepository struct {
	pool *pgxpool.Pool
}

// NewGameSessionRepository creates a new GameSessionRepository.
func NewGameSessionRepository(pool *pgxpool.Pool) *GameSessionRepository {
	return &GameSessionRepository{pool: pool}
}

const sessionColumns = `id, player_id, game_type, difficulty, status, question_id, payload,
	started_at, completed_at, final_score, version`

func scanSession(row pgx.Row) (*model.GameSession, error) {
	s := &model.GameSession{}
	err := row.Scan(&s.ID, &s.PlayerID, &s.GameType, &s.Difficulty, &s.Status,
		&s.QuestionID, &s.Payload, &s.StartedAt, &s.CompletedAt, &s.FinalScore, &s.Version)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// GetByID retrieves a session with its hint usages.
func (r *GameSessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.GameSession, error) {
	s, err := scanSession(r.pool.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM game_sessions WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	if err := r.attachHints(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// GetActiveByPlayer retrieves the player's ACTIVE session, if any.
// Returns pgx.ErrNoRows when the player has no open session.
func (r *GameSessionRepository) GetActiveByPlayer(ctx context.Context, playerID uuid.UUID) (*model.GameSession, error) {
	s, err := scanSession(r.pool.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM game_sessions
		 WHERE player_id = $1 AND status = $2`,
		playerID, model.SessionStatusActive))
	if err != nil {
		return nil, err
	}
	if err := r.attachHints(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *GameSessionRepository) attachHints(ctx context.Context, s *model.GameSession) error {
	rows, err := r.pool.Query(ctx,
		`SELECT id, session_id, level, penalty, content, created_at
		 FROM hint_usages WHERE session_id = $1 ORDER BY created_at ASC`, s.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var h model.HintUsage
		if err := rows.Scan(&h.ID, &h.SessionID, &h.Level, &h.Penalty, &h.Content, &h.CreatedAt); err != nil {
			return err
		}
		s.Hints = append(s.Hints, h)
	}
	return rows.Err()
}

// Create inserts a new ACTIVE session. A concurrent ACTIVE session for the
// same player surfaces as ErrActiveSessionExists.
func (r *GameSessionRepository) Create(ctx context.Context, s *model.GameSession) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO game_sessions (id, player_id, game_type, difficulty, status, question_id, payload)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING started_at, version`,
		s.ID, s.PlayerID, s.GameType, s.Difficulty, model.SessionStatusActive, s.QuestionID, s.Payload,
	).Scan(&s.StartedAt, &s.Version)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrActiveSessionExists
	}
	return err
}

// AbandonActive transitions the player's ACTIVE session (if any) to
// ABANDONED. Idempotent: zero rows affected is not an error.
func (r *GameSessionRepository) AbandonActive(ctx context.Context, playerID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE game_sessions
		 SET status = $1, completed_at = NOW(), version = version + 1
		 WHERE player_id = $2 AND status = $3`,
		model.SessionStatusAbandoned, playerID, model.SessionStatusActive)
	return err
}

// Abandon transitions one session to ABANDONED if it is still ACTIVE.
// A session already in a terminal state is left untouched.
func (r *GameSessionRepository) Abandon(ctx context.Context, sessionID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE game_sessions
		 SET status = $1, completed_at = NOW(), version = version + 1
		 WHERE id = $2 AND status = $3`,
		model.SessionStatusAbandoned, sessionID, model.SessionStatusActive)
	return err
}

// Complete transitions a session to COMPLETED via compare-and-swap on the
// version column. Returns ErrVersionConflict when the guarded update
// matched no row (already completed, expired, or concurrently written).
func (r *GameSessionRepository) Complete(ctx context.Context, sessionID uuid.UUID, score int, version int) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE game_sessions
		 SET status = $1, final_score = $2, completed_at = NOW(), version = version + 1
		 WHERE id = $3 AND status = $4 AND version = $5`,
		model.SessionStatusCompleted, score, sessionID, model.SessionStatusActive, version)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrVersionConflict
	}
	return nil
}

// AddHint appends a hint usage and bumps the session version in one
// transaction. The CAS on version serializes hint writes per session.
func (r *GameSessionRepository) AddHint(ctx context.Context, sessionID uuid.UUID, version int, h *model.HintUsage) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE game_sessions SET version = version + 1
		 WHERE id = $1 AND status = $2 AND version = $3`,
		sessionID, model.SessionStatusActive, version)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrVersionConflict
	}

	err = tx.QueryRow(ctx,
		`INSERT INTO hint_usages (id, session_id, level, penalty, content)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at`,
		h.ID, sessionID, h.Level, h.Penalty, h.Content,
	).Scan(&h.CreatedAt)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// ExpireOlderThan transitions ACTIVE sessions started before cutoff to
// EXPIRED. The status guard makes a concurrent completion win over a
// racing expiry. Returns how many sessions were expired.
func (r *GameSessionRepository) ExpireOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE game_sessions
		 SET status = $1, completed_at = NOW(), version = version + 1
		 WHERE status = $2 AND started_at < $3`,
		model.SessionStatusExpired, model.SessionStatusActive, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// CountCompleted returns the player's lifetime completed-session count
// across both game types.
func (r *GameSessionRepository) CountCompleted(ctx context.Context, playerID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM game_sessions WHERE player_id = $1 AND status = $2`,
		playerID, model.SessionStatusCompleted).Scan(&n)
	return n, err
}

// HasCompletionStreak reports whether the player completed at least one
// session on each of the last `days` consecutive calendar days (UTC),
// today included.
func (r *GameSessionRepository) HasCompletionStreak(ctx context.Context, playerID uuid.UUID, days int) (bool, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(DISTINCT DATE(completed_at AT TIME ZONE 'UTC'))
		 FROM game_sessions
		 WHERE player_id = $1 AND status = $2
		   AND completed_at >= NOW() - ($3 || ' days')::interval`,
		playerID, model.SessionStatusCompleted, days).Scan(&n)
	if err != nil {
		return false, err
	}
	return n >= days, nil
}
