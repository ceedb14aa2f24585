package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/luoxi-lab/hanyu-arena-backend/internal/model"
	"github.com/luoxi-lab/hanyu-arena-backend/internal/repository"
)

// In-memory store fakes mirroring the repository semantics, including the
// version compare-and-swap and status guards.

type fakeSessionStore struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*model.GameSession
	// beforeCreate, when set, runs at the top of Create to simulate a
	// concurrent writer racing the abandon-then-create cycle.
	beforeCreate func()
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: make(map[uuid.UUID]*model.GameSession)}
}

func (f *fakeSessionStore) snapshot(s *model.GameSession) *model.GameSession {
	cp := *s
	cp.Hints = append([]model.HintUsage(nil), s.Hints...)
	return &cp
}

func (f *fakeSessionStore) GetByID(_ context.Context, id uuid.UUID) (*model.GameSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return f.snapshot(s), nil
}

func (f *fakeSessionStore) GetActiveByPlayer(_ context.Context, playerID uuid.UUID) (*model.GameSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.sessions {
		if s.PlayerID == playerID && s.Status == model.SessionStatusActive {
			return f.snapshot(s), nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeSessionStore) Create(_ context.Context, s *model.GameSession) error {
	if f.beforeCreate != nil {
		f.beforeCreate()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	// Mirrors the partial unique index on (player_id) WHERE status = 'ACTIVE'.
	for _, existing := range f.sessions {
		if existing.PlayerID == s.PlayerID && existing.Status == model.SessionStatusActive {
			return repository.ErrActiveSessionExists
		}
	}
	s.StartedAt = time.Now()
	s.Version = 1
	f.sessions[s.ID] = f.snapshot(s)
	return nil
}

func (f *fakeSessionStore) AbandonActive(_ context.Context, playerID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	for _, s := range f.sessions {
		if s.PlayerID == playerID && s.Status == model.SessionStatusActive {
			s.Status = model.SessionStatusAbandoned
			s.CompletedAt = &now
			s.Version++
		}
	}
	return nil
}

func (f *fakeSessionStore) Abandon(_ context.Context, sessionID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.sessions[sessionID]; ok && s.Status == model.SessionStatusActive {
		now := time.Now()
		s.Status = model.SessionStatusAbandoned
		s.CompletedAt = &now
		s.Version++
	}
	return nil
}

func (f *fakeSessionStore) Complete(_ context.Context, sessionID uuid.UUID, score int, version int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[sessionID]
	if !ok || s.Status != model.SessionStatusActive || s.Version != version {
		return repository.ErrVersionConflict
	}
	now := time.Now()
	s.Status = model.SessionStatusCompleted
	s.FinalScore = &score
	s.CompletedAt = &now
	s.Version++
	return nil
}

func (f *fakeSessionStore) AddHint(_ context.Context, sessionID uuid.UUID, version int, h *model.HintUsage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[sessionID]
	if !ok || s.Status != model.SessionStatusActive || s.Version != version {
		return repository.ErrVersionConflict
	}
	h.SessionID = sessionID
	h.CreatedAt = time.Now()
	s.Hints = append(s.Hints, *h)
	s.Version++
	return nil
}

func (f *fakeSessionStore) ExpireOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	now := time.Now()
	for _, s := range f.sessions {
		if s.Status == model.SessionStatusActive && s.StartedAt.Before(cutoff) {
			s.Status = model.SessionStatusExpired
			s.CompletedAt = &now
			s.Version++
			n++
		}
	}
	return n, nil
}

func (f *fakeSessionStore) CountCompleted(_ context.Context, playerID uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, s := range f.sessions {
		if s.PlayerID == playerID && s.Status == model.SessionStatusCompleted {
			n++
		}
	}
	return n, nil
}

func (f *fakeSessionStore) HasCompletionStreak(_ context.Context, playerID uuid.UUID, days int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := make(map[string]bool)
	for _, s := range f.sessions {
		if s.PlayerID == playerID && s.Status == model.SessionStatusCompleted && s.CompletedAt != nil {
			seen[s.CompletedAt.UTC().Format("2006-01-02")] = true
		}
	}
	return len(seen) >= days, nil
}

// ─── Leaderboard fake ───────────────────────────────────────────────

type lbKey struct {
	playerID   uuid.UUID
	gameType   model.GameType
	difficulty model.Difficulty
}

type fakeLeaderboardStore struct {
	mu      sync.Mutex
	entries map[lbKey]*model.LeaderboardEntry
}

func newFakeLeaderboardStore() *fakeLeaderboardStore {
	return &fakeLeaderboardStore{entries: make(map[lbKey]*model.LeaderboardEntry)}
}

func (f *fakeLeaderboardStore) UpsertAfterGame(_ context.Context, playerID uuid.UUID, gameType model.GameType, difficulty model.Difficulty, score int, accuracy float64) (*model.LeaderboardEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := lbKey{playerID, gameType, difficulty}
	e, ok := f.entries[k]
	if !ok {
		e = &model.LeaderboardEntry{
			PlayerID: playerID, GameType: gameType, Difficulty: difficulty,
			TotalScore: int64(score), GamesPlayed: 1,
			AverageScore: float64(score), AccuracyRate: accuracy,
		}
		f.entries[k] = e
	} else {
		prevGames := float64(e.GamesPlayed)
		e.TotalScore += int64(score)
		e.GamesPlayed++
		e.AverageScore = float64(e.TotalScore) / float64(e.GamesPlayed)
		e.AccuracyRate = (e.AccuracyRate*prevGames + accuracy) / float64(e.GamesPlayed)
	}
	e.LastUpdated = time.Now()
	cp := *e
	return &cp, nil
}

func (f *fakeLeaderboardStore) ListPartition(_ context.Context, gameType model.GameType, difficulty model.Difficulty) ([]model.LeaderboardEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.LeaderboardEntry
	for k, e := range f.entries {
		if k.gameType == gameType && k.difficulty == difficulty {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalScore != out[j].TotalScore {
			return out[i].TotalScore > out[j].TotalScore
		}
		return out[i].PlayerID.String() < out[j].PlayerID.String()
	})
	return out, nil
}

func (f *fakeLeaderboardStore) UpdateRanks(_ context.Context, gameType model.GameType, difficulty model.Difficulty, updates []repository.RankUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range updates {
		if e, ok := f.entries[lbKey{u.PlayerID, gameType, difficulty}]; ok {
			e.Rank = u.Rank
		}
	}
	return nil
}

func (f *fakeLeaderboardStore) TopN(_ context.Context, gameType model.GameType, difficulty model.Difficulty, limit int) ([]model.LeaderboardEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.LeaderboardEntry
	for k, e := range f.entries {
		if k.gameType == gameType && k.difficulty == difficulty && e.Rank > 0 {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Rank != out[j].Rank {
			return out[i].Rank < out[j].Rank
		}
		return out[i].PlayerID.String() < out[j].PlayerID.String()
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ─── Achievement fake ───────────────────────────────────────────────

type achKey struct {
	playerID uuid.UUID
	t        model.AchievementType
}

type fakeAchievementStore struct {
	mu       sync.Mutex
	unlocked map[achKey]model.Achievement
}

func newFakeAchievementStore() *fakeAchievementStore {
	return &fakeAchievementStore{unlocked: make(map[achKey]model.Achievement)}
}

func (f *fakeAchievementStore) Exists(_ context.Context, playerID uuid.UUID, t model.AchievementType) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.unlocked[achKey{playerID, t}]
	return ok, nil
}

func (f *fakeAchievementStore) Insert(_ context.Context, a *model.Achievement) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := achKey{a.PlayerID, a.Type}
	if _, ok := f.unlocked[k]; ok {
		return false, nil
	}
	f.unlocked[k] = *a
	return true, nil
}

func (f *fakeAchievementStore) ListByPlayer(_ context.Context, playerID uuid.UUID) ([]model.Achievement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Achievement
	for k, a := range f.unlocked {
		if k.playerID == playerID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UnlockedAt.Before(out[j].UnlockedAt) })
	return out, nil
}

// ─── Player fake ────────────────────────────────────────────────────

type fakePlayerStore struct {
	mu      sync.Mutex
	players map[uuid.UUID]*model.Player
}

func newFakePlayerStore() *fakePlayerStore {
	return &fakePlayerStore{players: make(map[uuid.UUID]*model.Player)}
}

func (f *fakePlayerStore) addPlayer(username string) uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := &model.Player{ID: uuid.New(), Username: username, DisplayName: username, CreatedAt: time.Now()}
	f.players[p.ID] = p
	return p.ID
}

func (f *fakePlayerStore) GetByID(_ context.Context, id uuid.UUID) (*model.Player, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.players[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *p
	return &cp, nil
}

func (f *fakePlayerStore) GetByUsername(_ context.Context, username string) (*model.Player, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.players {
		if p.Username == username {
			cp := *p
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakePlayerStore) Create(_ context.Context, p *model.Player) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p.CreatedAt = time.Now()
	cp := *p
	f.players[p.ID] = &cp
	return nil
}

// ─── Feed fake ──────────────────────────────────────────────────────

type fakeFeedPublisher struct {
	mu sync.Mutex
	// failures makes the next n Publish calls fail.
	failures int
	events   []FeedEvent
}

func (f *fakeFeedPublisher) Publish(_ context.Context, ev FeedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failures > 0 {
		f.failures--
		return errors.New("feed unavailable")
	}
	f.events = append(f.events, ev)
	return nil
}

func (f *fakeFeedPublisher) published() []FeedEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]FeedEvent(nil), f.events...)
}

// ─── Score queue fake ───────────────────────────────────────────────

type fakeScoreQueue struct {
	mu      sync.Mutex
	records []*model.ScoreRecord
}

func (f *fakeScoreQueue) Enqueue(_ context.Context, rec *model.ScoreRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, rec)
	return nil
}

func (f *fakeScoreQueue) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records)
}
