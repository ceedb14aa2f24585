package game

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/luoxi-lab/hanyu-arena-backend/internal/model"
)

func TestHistoryTrackerFIFOEviction(t *testing.T) {
	ctx := context.Background()
	tracker := NewHistoryTracker(NewMemoryHistoryStore())
	playerID := uuid.New()

	// Track 11 questions; the first must be evicted.
	for i := 1; i <= 11; i++ {
		if err := tracker.Add(ctx, playerID, model.GameTypeIdiom, fmt.Sprintf("q%d", i)); err != nil {
			t.Fatalf("Add(q%d): %v", i, err)
		}
	}

	excluded, err := tracker.Excluded(ctx, playerID, model.GameTypeIdiom)
	if err != nil {
		t.Fatalf("Excluded: %v", err)
	}
	if len(excluded) != HistoryCapacity {
		t.Fatalf("got %d excluded IDs, want %d", len(excluded), HistoryCapacity)
	}

	seen := make(map[string]bool, len(excluded))
	for _, id := range excluded {
		seen[id] = true
	}
	if seen["q1"] {
		t.Error("q1 should have been evicted")
	}
	for i := 2; i <= 11; i++ {
		if !seen[fmt.Sprintf("q%d", i)] {
			t.Errorf("q%d missing from exclusion set", i)
		}
	}
}

func TestHistoryTrackerIsolatedPerGameType(t *testing.T) {
	ctx := context.Background()
	tracker := NewHistoryTracker(NewMemoryHistoryStore())
	playerID := uuid.New()

	if err := tracker.Add(ctx, playerID, model.GameTypeIdiom, "idiom-1"); err != nil {
		t.Fatal(err)
	}
	if err := tracker.Add(ctx, playerID, model.GameTypeSentence, "sentence-1"); err != nil {
		t.Fatal(err)
	}

	idioms, _ := tracker.Excluded(ctx, playerID, model.GameTypeIdiom)
	if len(idioms) != 1 || idioms[0] != "idiom-1" {
		t.Errorf("idiom history = %v, want [idiom-1]", idioms)
	}
	sentences, _ := tracker.Excluded(ctx, playerID, model.GameTypeSentence)
	if len(sentences) != 1 || sentences[0] != "sentence-1" {
		t.Errorf("sentence history = %v, want [sentence-1]", sentences)
	}
}

func TestHistoryTrackerIsolatedPerPlayer(t *testing.T) {
	ctx := context.Background()
	tracker := NewHistoryTracker(NewMemoryHistoryStore())
	alice, bob := uuid.New(), uuid.New()

	if err := tracker.Add(ctx, alice, model.GameTypeIdiom, "q1"); err != nil {
		t.Fatal(err)
	}

	got, _ := tracker.Excluded(ctx, bob, model.GameTypeIdiom)
	if len(got) != 0 {
		t.Errorf("bob's history = %v, want empty", got)
	}
}

func TestHistoryTrackerClear(t *testing.T) {
	ctx := context.Background()
	tracker := NewHistoryTracker(NewMemoryHistoryStore())
	playerID := uuid.New()

	for _, gt := range []model.GameType{model.GameTypeIdiom, model.GameTypeSentence} {
		if err := tracker.Add(ctx, playerID, gt, "q1"); err != nil {
			t.Fatal(err)
		}
	}

	// Clearing one game type leaves the other intact.
	if err := tracker.Clear(ctx, playerID, model.GameTypeIdiom); err != nil {
		t.Fatal(err)
	}
	if got, _ := tracker.Excluded(ctx, playerID, model.GameTypeIdiom); len(got) != 0 {
		t.Errorf("idiom history not cleared: %v", got)
	}
	if got, _ := tracker.Excluded(ctx, playerID, model.GameTypeSentence); len(got) != 1 {
		t.Errorf("sentence history should survive, got %v", got)
	}

	// Empty game type clears everything.
	if err := tracker.Add(ctx, playerID, model.GameTypeIdiom, "q2"); err != nil {
		t.Fatal(err)
	}
	if err := tracker.Clear(ctx, playerID, ""); err != nil {
		t.Fatal(err)
	}
	for _, gt := range []model.GameType{model.GameTypeIdiom, model.GameTypeSentence} {
		if got, _ := tracker.Excluded(ctx, playerID, gt); len(got) != 0 {
			t.Errorf("%s history not cleared: %v", gt, got)
		}
	}
}

func TestHistoryTrackerMostRecentFirst(t *testing.T) {
	ctx := context.Background()
	tracker := NewHistoryTracker(NewMemoryHistoryStore())
	playerID := uuid.New()

	for _, id := range []string{"a", "b", "c"} {
		if err := tracker.Add(ctx, playerID, model.GameTypeIdiom, id); err != nil {
			t.Fatal(err)
		}
	}

	got, _ := tracker.Excluded(ctx, playerID, model.GameTypeIdiom)
	want := []string{"c", "b", "a"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: got %s, want %s", i, got[i], want[i])
		}
	}
}
