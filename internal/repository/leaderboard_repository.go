package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/luoxi-lab/hanyu-arena-backend/internal/model"
)

// RankUpdate carries one recomputed rank for the batch write.
type RankUpdate struct {
	PlayerID uuid.UUID
	Rank     int
}

// LeaderboardRepository handles per (player, game type, difficulty)
// aggregates. The running averages are folded in SQL so the upsert is a
// single atomic statement.
type LeaderboardRepository struct {
	pool *pgxpool.Pool
}

// NewLeaderboardRepository creates a new LeaderboardRepository.
func NewLeaderboardRepository(pool *pgxpool.Pool) *LeaderboardRepository {
	return &LeaderboardRepository{pool: pool}
}

// UpsertAfterGame folds one finished game into the player's aggregate and
// returns the updated entry. First game seeds the row; later games add the
// score, bump games_played and fold accuracy as a weighted running average.
func (r *LeaderboardRepository) UpsertAfterGame(ctx context.Context, playerID uuid.UUID, gameType model.GameType, difficulty model.Difficulty, score int, accuracy float64) (*model.LeaderboardEntry, error) {
	e := &model.LeaderboardEntry{PlayerID: playerID, GameType: gameType, Difficulty: difficulty}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO leaderboard_entries
		 (player_id, game_type, difficulty, total_score, games_played, average_score, accuracy_rate, last_updated)
		 VALUES ($1, $2, $3, $4, 1, $4, $5, NOW())
		 ON CONFLICT (player_id, game_type, difficulty) DO UPDATE SET
		   total_score   = leaderboard_entries.total_score + EXCLUDED.total_score,
		   games_played  = leaderboard_entries.games_played + 1,
		   average_score = (leaderboard_entries.total_score + EXCLUDED.total_score)::float8
		                   / (leaderboard_entries.games_played + 1),
		   accuracy_rate = (leaderboard_entries.accuracy_rate * leaderboard_entries.games_played
		                   + EXCLUDED.accuracy_rate) / (leaderboard_entries.games_played + 1),
		   last_updated  = NOW()
		 RETURNING total_score, games_played, average_score, accuracy_rate, rank, last_updated`,
		playerID, gameType, difficulty, score, accuracy,
	).Scan(&e.TotalScore, &e.GamesPlayed, &e.AverageScore, &e.AccuracyRate, &e.Rank, &e.LastUpdated)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// ListPartition returns every entry of one (game type, difficulty)
// partition ordered by total score descending.
func (r *LeaderboardRepository) ListPartition(ctx context.Context, gameType model.GameType, difficulty model.Difficulty) ([]model.LeaderboardEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT player_id, total_score, games_played, average_score, accuracy_rate, rank, last_updated
		 FROM leaderboard_entries
		 WHERE game_type = $1 AND difficulty = $2
		 ORDER BY total_score DESC, player_id ASC`,
		gameType, difficulty)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []model.LeaderboardEntry
	for rows.Next() {
		e := model.LeaderboardEntry{GameType: gameType, Difficulty: difficulty}
		if err := rows.Scan(&e.PlayerID, &e.TotalScore, &e.GamesPlayed,
			&e.AverageScore, &e.AccuracyRate, &e.Rank, &e.LastUpdated); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// UpdateRanks persists recomputed ranks for a partition in one batch write.
func (r *LeaderboardRepository) UpdateRanks(ctx context.Context, gameType model.GameType, difficulty model.Difficulty, updates []RankUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	players := make([]uuid.UUID, 0, len(updates))
	ranks := make([]int, 0, len(updates))
	for _, u := range updates {
		players = append(players, u.PlayerID)
		ranks = append(ranks, u.Rank)
	}

	_, err := r.pool.Exec(ctx,
		`UPDATE leaderboard_entries AS l
		 SET rank = t.rank
		 FROM (
		   SELECT u.player_id, u.rank
		   FROM UNNEST($1::uuid[], $2::int[]) AS u (player_id, rank)
		 ) AS t
		 WHERE l.player_id = t.player_id
		   AND l.game_type = $3 AND l.difficulty = $4`,
		players, ranks, gameType, difficulty)
	return err
}

// TopN returns the partition's best entries by ascending rank, with the
// players' display names joined in.
func (r *LeaderboardRepository) TopN(ctx context.Context, gameType model.GameType, difficulty model.Difficulty, limit int) ([]model.LeaderboardEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT l.player_id, p.display_name, l.total_score, l.games_played,
		        l.average_score, l.accuracy_rate, l.rank, l.last_updated
		 FROM leaderboard_entries l
		 JOIN players p ON p.id = l.player_id
		 WHERE l.game_type = $1 AND l.difficulty = $2 AND l.rank > 0
		 ORDER BY l.rank ASC, l.player_id ASC
		 LIMIT $3`,
		gameType, difficulty, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []model.LeaderboardEntry
	for rows.Next() {
		e := model.LeaderboardEntry{GameType: gameType, Difficulty: difficulty}
		if err := rows.Scan(&e.PlayerID, &e.PlayerName, &e.TotalScore, &e.GamesPlayed,
			&e.AverageScore, &e.AccuracyRate, &e.Rank, &e.LastUpdated); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
