package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/luoxi-lab/hanyu-arena-backend/internal/model"
)

// ScoreRepository handles the append-only score ledger. Rows are inserted
// (singly via the worker fallback, in batch on the happy path) and read;
// never updated.
type ScoreRepository struct {
	pool *pgxpool.Pool
}

// NewScoreRepository creates a new ScoreRepository.
func NewScoreRepository(pool *pgxpool.Pool) *ScoreRepository {
	return &ScoreRepository{pool: pool}
}

// Insert appends a single score record.
func (r *ScoreRepository) Insert(ctx context.Context, rec *model.ScoreRecord) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO score_records
		 (id, player_id, game_type, difficulty, question_id, target_text, submitted_text,
		  score, accuracy_rate, hints_used, time_taken_seconds, completed,
		  grammar_score, similarity_score, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		 ON CONFLICT (id) DO NOTHING`,
		rec.ID, rec.PlayerID, rec.GameType, rec.Difficulty, rec.QuestionID,
		rec.TargetText, rec.SubmittedText, rec.Score, rec.AccuracyRate,
		rec.HintsUsed, rec.TimeTakenSeconds, rec.Completed,
		rec.GrammarScore, rec.SimilarityScore, rec.CreatedAt)
	return err
}

// InsertBatch appends a batch of score records in one statement.
func (r *ScoreRepository) InsertBatch(ctx context.Context, batch []*model.ScoreRecord) error {
	if len(batch) == 0 {
		return nil
	}

	n := len(batch)
	ids := make([]uuid.UUID, 0, n)
	players := make([]uuid.UUID, 0, n)
	gameTypes := make([]string, 0, n)
	difficulties := make([]string, 0, n)
	questionIDs := make([]string, 0, n)
	targets := make([]string, 0, n)
	submitted := make([]string, 0, n)
	scores := make([]int, 0, n)
	accuracies := make([]float64, 0, n)
	hints := make([]int, 0, n)
	times := make([]int, 0, n)
	completeds := make([]bool, 0, n)
	grammars := make([]*float64, 0, n)
	similarities := make([]*float64, 0, n)
	createdAts := make([]interface{}, 0, n)

	for _, rec := range batch {
		ids = append(ids, rec.ID)
		players = append(players, rec.PlayerID)
		gameTypes = append(gameTypes, string(rec.GameType))
		difficulties = append(difficulties, string(rec.Difficulty))
		questionIDs = append(questionIDs, rec.QuestionID)
		targets = append(targets, rec.TargetText)
		submitted = append(submitted, rec.SubmittedText)
		scores = append(scores, rec.Score)
		accuracies = append(accuracies, rec.AccuracyRate)
		hints = append(hints, rec.HintsUsed)
		times = append(times, rec.TimeTakenSeconds)
		completeds = append(completeds, rec.Completed)
		grammars = append(grammars, rec.GrammarScore)
		similarities = append(similarities, rec.SimilarityScore)
		createdAts = append(createdAts, rec.CreatedAt)
	}

	query := `
		INSERT INTO score_records
		(id, player_id, game_type, difficulty, question_id, target_text, submitted_text,
		 score, accuracy_rate, hints_used, time_taken_seconds, completed,
		 grammar_score, similarity_score, created_at)
		SELECT * FROM UNNEST(
			$1::uuid[], $2::uuid[], $3::text[], $4::text[], $5::text[],
			$6::text[], $7::text[], $8::int[], $9::float8[], $10::int[],
			$11::int[], $12::bool[], $13::float8[], $14::float8[], $15::timestamptz[]
		)
		ON CONFLICT (id) DO NOTHING
	`

	_, err := r.pool.Exec(ctx, query,
		ids, players, gameTypes, difficulties, questionIDs, targets, submitted,
		scores, accuracies, hints, times, completeds, grammars, similarities, createdAts)
	return err
}

// ListByPlayer returns the player's score history, newest first.
func (r *ScoreRepository) ListByPlayer(ctx context.Context, playerID uuid.UUID, page, perPage int) ([]model.ScoreRecord, int64, error) {
	var total int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM score_records WHERE player_id = $1`, playerID).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * perPage
	rows, err := r.pool.Query(ctx,
		`SELECT id, player_id, game_type, difficulty, question_id, target_text, submitted_text,
		        score, accuracy_rate, hints_used, time_taken_seconds, completed,
		        grammar_score, similarity_score, created_at
		 FROM score_records
		 WHERE player_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`, playerID, perPage, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var records []model.ScoreRecord
	for rows.Next() {
		var rec model.ScoreRecord
		if err := rows.Scan(&rec.ID, &rec.PlayerID, &rec.GameType, &rec.Difficulty,
			&rec.QuestionID, &rec.TargetText, &rec.SubmittedText, &rec.Score,
			&rec.AccuracyRate, &rec.HintsUsed, &rec.TimeTakenSeconds, &rec.Completed,
			&rec.GrammarScore, &rec.SimilarityScore, &rec.CreatedAt); err != nil {
			return nil, 0, err
		}
		records = append(records, rec)
	}
	return records, total, rows.Err()
}
