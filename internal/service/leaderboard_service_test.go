package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/luoxi-lab/hanyu-arena-backend/internal/model"
	"github.com/rs/zerolog"
)

func TestCompetitionRanks(t *testing.T) {
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New(), uuid.New(), uuid.New()}
	entries := []model.LeaderboardEntry{
		{PlayerID: ids[0], TotalScore: 900},
		{PlayerID: ids[1], TotalScore: 900},
		{PlayerID: ids[2], TotalScore: 700},
		{PlayerID: ids[3], TotalScore: 700},
		{PlayerID: ids[4], TotalScore: 500},
	}

	updates := CompetitionRanks(entries)

	want := []int{1, 1, 3, 3, 5}
	if len(updates) != len(want) {
		t.Fatalf("got %d updates, want %d", len(updates), len(want))
	}
	for i, u := range updates {
		if u.Rank != want[i] {
			t.Errorf("position %d: rank = %d, want %d", i, u.Rank, want[i])
		}
	}
}

func TestCompetitionRanksEmpty(t *testing.T) {
	if got := CompetitionRanks(nil); len(got) != 0 {
		t.Errorf("got %v, want empty", got)
	}
}

func TestUpdateAfterGameFirstAndSubsequent(t *testing.T) {
	ctx := context.Background()
	store := newFakeLeaderboardStore()
	svc := NewLeaderboardService(store, nil, zerolog.Nop())
	playerID := uuid.New()

	first, err := svc.UpdateAfterGame(ctx, playerID, model.GameTypeIdiom, model.DifficultyEasy, 200, 1.0)
	if err != nil {
		t.Fatal(err)
	}
	if first.TotalScore != 200 || first.GamesPlayed != 1 || first.AverageScore != 200 {
		t.Errorf("first game entry = %+v", first)
	}
	if first.AccuracyRate != 1.0 {
		t.Errorf("accuracy = %f, want 1.0", first.AccuracyRate)
	}
	if first.Rank != 1 {
		t.Errorf("sole player rank = %d, want 1", first.Rank)
	}

	second, err := svc.UpdateAfterGame(ctx, playerID, model.GameTypeIdiom, model.DifficultyEasy, 100, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	if second.TotalScore != 300 {
		t.Errorf("totalScore = %d, want 300", second.TotalScore)
	}
	if second.GamesPlayed != 2 {
		t.Errorf("gamesPlayed = %d, want 2", second.GamesPlayed)
	}
	if second.AverageScore != 150 {
		t.Errorf("averageScore = %f, want 150", second.AverageScore)
	}
	if second.AccuracyRate != 0.75 {
		t.Errorf("accuracyRate = %f, want 0.75 (weighted running average)", second.AccuracyRate)
	}
}

func TestLeaderboardTieBreak(t *testing.T) {
	ctx := context.Background()
	store := newFakeLeaderboardStore()
	svc := NewLeaderboardService(store, nil, zerolog.Nop())

	alice, bob, carol := uuid.New(), uuid.New(), uuid.New()
	if _, err := svc.UpdateAfterGame(ctx, alice, model.GameTypeIdiom, model.DifficultyEasy, 500, 1.0); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.UpdateAfterGame(ctx, bob, model.GameTypeIdiom, model.DifficultyEasy, 500, 1.0); err != nil {
		t.Fatal(err)
	}
	carolEntry, err := svc.UpdateAfterGame(ctx, carol, model.GameTypeIdiom, model.DifficultyEasy, 300, 1.0)
	if err != nil {
		t.Fatal(err)
	}

	// Equal totals share a rank; carol's rank is the count of players
	// at-or-above her plus one.
	top, err := svc.TopPlayers(ctx, model.GameTypeIdiom, model.DifficultyEasy, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(top) != 3 {
		t.Fatalf("got %d entries, want 3", len(top))
	}
	if top[0].Rank != 1 || top[1].Rank != 1 {
		t.Errorf("tied ranks = %d, %d, want 1, 1", top[0].Rank, top[1].Rank)
	}
	if carolEntry.Rank != 3 {
		t.Errorf("carol rank = %d, want 3", carolEntry.Rank)
	}
}

func TestPartitionsIsolated(t *testing.T) {
	ctx := context.Background()
	store := newFakeLeaderboardStore()
	svc := NewLeaderboardService(store, nil, zerolog.Nop())
	playerID := uuid.New()

	if _, err := svc.UpdateAfterGame(ctx, playerID, model.GameTypeIdiom, model.DifficultyEasy, 500, 1.0); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.UpdateAfterGame(ctx, playerID, model.GameTypeIdiom, model.DifficultyHard, 100, 1.0); err != nil {
		t.Fatal(err)
	}

	easy, err := svc.TopPlayers(ctx, model.GameTypeIdiom, model.DifficultyEasy, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(easy) != 1 || easy[0].TotalScore != 500 {
		t.Errorf("easy partition = %+v", easy)
	}
	hard, err := svc.TopPlayers(ctx, model.GameTypeIdiom, model.DifficultyHard, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(hard) != 1 || hard[0].TotalScore != 100 {
		t.Errorf("hard partition = %+v", hard)
	}
}

func TestRecalculateAllConverges(t *testing.T) {
	ctx := context.Background()
	store := newFakeLeaderboardStore()
	svc := NewLeaderboardService(store, nil, zerolog.Nop())

	a, b := uuid.New(), uuid.New()
	if _, err := svc.UpdateAfterGame(ctx, a, model.GameTypeSentence, model.DifficultyMedium, 400, 1.0); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.UpdateAfterGame(ctx, b, model.GameTypeSentence, model.DifficultyMedium, 600, 1.0); err != nil {
		t.Fatal(err)
	}

	// Corrupt a rank, then let the drift-correcting sweep fix it.
	store.mu.Lock()
	store.entries[lbKey{a, model.GameTypeSentence, model.DifficultyMedium}].Rank = 99
	store.mu.Unlock()

	if err := svc.RecalculateAll(ctx); err != nil {
		t.Fatal(err)
	}

	top, err := svc.TopPlayers(ctx, model.GameTypeSentence, model.DifficultyMedium, 10)
	if err != nil {
		t.Fatal(err)
	}
	if top[0].PlayerID != b || top[0].Rank != 1 {
		t.Errorf("top entry = %+v, want player b at rank 1", top[0])
	}
	if top[1].PlayerID != a || top[1].Rank != 2 {
		t.Errorf("second entry = %+v, want player a at rank 2", top[1])
	}
}
