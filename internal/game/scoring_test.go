package game

import (
	"testing"

	"github.com/luoxi-lab/hanyu-arena-backend/internal/model"
)

func TestCalculateIdiomScore(t *testing.T) {
	tests := []struct {
		name string
		in   ScoreInput
		want int
	}{
		{
			name: "easy fast perfect no hints",
			in: ScoreInput{
				Difficulty:       model.DifficultyEasy,
				TimeTakenSeconds: 25,
				AccuracyRate:     1.0,
			},
			want: 250, // 100 + 50 + 100, x1.0
		},
		{
			name: "easy mid tier with two hints",
			in: ScoreInput{
				Difficulty:       model.DifficultyEasy,
				TimeTakenSeconds: 45,
				AccuracyRate:     0.95,
				HintLevels:       []int{1, 2},
			},
			want: 150, // 100 + 30 + 50 - 30, x1.0
		},
		{
			name: "medium applies multiplier",
			in: ScoreInput{
				Difficulty:       model.DifficultyMedium,
				TimeTakenSeconds: 25,
				AccuracyRate:     1.0,
			},
			want: 525, // (200 + 50 + 100) x 1.5
		},
		{
			name: "expert slow low accuracy",
			in: ScoreInput{
				Difficulty:       model.DifficultyExpert,
				TimeTakenSeconds: 120,
				AccuracyRate:     0.5,
			},
			want: 1500, // 500 x 3.0, no bonuses
		},
		{
			name: "penalty sums per-level costs not a flat fee",
			in: ScoreInput{
				Difficulty:       model.DifficultyEasy,
				TimeTakenSeconds: 95,
				AccuracyRate:     0.5,
				HintLevels:       []int{3, 3},
			},
			want: 40, // 100 - 60
		},
		{
			// The engine itself does not enforce the hint budget, so the
			// penalty can exceed the base; the result must clamp to zero.
			name: "negative raw score clamps to zero",
			in: ScoreInput{
				Difficulty:       model.DifficultyEasy,
				TimeTakenSeconds: 200,
				AccuracyRate:     0.1,
				HintLevels:       []int{3, 3, 3, 3, 3},
			},
			want: 0, // max(0, 100 - 150)
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateIdiomScore(tt.in)
			if got.Final != tt.want {
				t.Errorf("CalculateIdiomScore() = %d, want %d", got.Final, tt.want)
			}
			if got.Final < 0 {
				t.Errorf("score must never be negative, got %d", got.Final)
			}
		})
	}
}

func TestCalculateIdiomScoreDeterministic(t *testing.T) {
	in := ScoreInput{
		Difficulty:       model.DifficultyHard,
		TimeTakenSeconds: 40,
		AccuracyRate:     0.97,
		HintLevels:       []int{2},
	}
	first := CalculateIdiomScore(in)
	for i := 0; i < 100; i++ {
		if got := CalculateIdiomScore(in); got != first {
			t.Fatalf("run %d: got %+v, want %+v", i, got, first)
		}
	}
}

func TestCalculateSentenceScoreGrammarBonus(t *testing.T) {
	tests := []struct {
		name    string
		grammar float64
		want    int
	}{
		{"grammar 95 and above adds 50", 95, 300},  // 100+50+100+50
		{"grammar 85-94 adds 25", 90, 275},         // 100+50+100+25
		{"grammar below 85 adds nothing", 60, 250}, // 100+50+100
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateSentenceScore(ScoreInput{
				Difficulty:       model.DifficultyEasy,
				TimeTakenSeconds: 10,
				AccuracyRate:     1.0,
				GrammarScore:     tt.grammar,
			})
			if got.Final != tt.want {
				t.Errorf("CalculateSentenceScore() = %d, want %d", got.Final, tt.want)
			}
		})
	}
}

func TestMaxScore(t *testing.T) {
	tests := []struct {
		difficulty model.Difficulty
		want       int
	}{
		{model.DifficultyEasy, 250},
		{model.DifficultyMedium, 525},
		{model.DifficultyHard, 900},
		{model.DifficultyExpert, 1950},
	}

	for _, tt := range tests {
		if got := MaxScore(tt.difficulty); got != tt.want {
			t.Errorf("MaxScore(%s) = %d, want %d", tt.difficulty, got, tt.want)
		}
	}
}

func TestMaxScoreMatchesFormula(t *testing.T) {
	// The closed form must agree with the formula at its optimum.
	for _, d := range []model.Difficulty{
		model.DifficultyEasy, model.DifficultyMedium,
		model.DifficultyHard, model.DifficultyExpert,
	} {
		best := CalculateIdiomScore(ScoreInput{
			Difficulty:       d,
			TimeTakenSeconds: 0,
			AccuracyRate:     1.0,
		})
		if best.Final != MaxScore(d) {
			t.Errorf("%s: formula optimum %d != MaxScore %d", d, best.Final, MaxScore(d))
		}
	}
}
