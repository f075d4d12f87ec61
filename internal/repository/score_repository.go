package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/nanafes/reservation-api/internal/model"
)

// ScoreRepo stores game results for the ranking board. Scores are
// recorded after a session finishes and are independent of the
// reservation that got the team in the door.
type ScoreRepo struct {
	db *sql.DB
}

// NewScoreRepo returns a new ScoreRepo bound to the given database.
func NewScoreRepo(db *sql.DB) *ScoreRepo { return &ScoreRepo{db: db} }

// Create inserts a team score together with its per-player rows in
// one short transaction, populating every generated ID.
func (r *ScoreRepo) Create(ctx context.Context, score *model.TeamScore) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	const q = `INSERT INTO team_scores (team_name, headcount, game_session, description, score) VALUES (?, ?, ?, ?, ?)`
	var desc any
	if score.Description != nil {
		desc = *score.Description
	}
	result, err := tx.ExecContext(ctx, q, score.TeamName, score.Headcount, score.GameSession, desc, score.Score)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	score.ID = uint64(id)
	for i := range score.PlayerScores {
		p := &score.PlayerScores[i]
		p.TeamScoreID = score.ID
		const pq = `INSERT INTO player_scores (team_score_id, player_name, score) VALUES (?, ?, ?)`
		pres, err := tx.ExecContext(ctx, pq, p.TeamScoreID, p.PlayerName, p.Score)
		if err != nil {
			return err
		}
		pid, err := pres.LastInsertId()
		if err != nil {
			return err
		}
		p.ID = uint64(pid)
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// ListRanking returns the top team scores ordered by score descending
// with ties broken by earlier submission. Player rows are populated
// for every returned score.
func (r *ScoreRepo) ListRanking(ctx context.Context, limit int) ([]model.TeamScore, error) {
	const q = `SELECT id, team_name, headcount, game_session, description, score, created_at, updated_at
	           FROM team_scores
	           ORDER BY score DESC, id ASC
	           LIMIT ?`
	return r.list(ctx, q, limit)
}

// ListRecent returns the newest team scores first, for the staff view
// of raw submissions.
func (r *ScoreRepo) ListRecent(ctx context.Context, limit int) ([]model.TeamScore, error) {
	const q = `SELECT id, team_name, headcount, game_session, description, score, created_at, updated_at
	           FROM team_scores
	           ORDER BY id DESC
	           LIMIT ?`
	return r.list(ctx, q, limit)
}

func (r *ScoreRepo) list(ctx context.Context, q string, limit int) ([]model.TeamScore, error) {
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	scores := make([]model.TeamScore, 0)
	index := make(map[uint64]int)
	for rows.Next() {
		var s model.TeamScore
		var desc sql.NullString
		if err := rows.Scan(&s.ID, &s.TeamName, &s.Headcount, &s.GameSession, &desc, &s.Score, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		if desc.Valid {
			v := desc.String
			s.Description = &v
		}
		s.PlayerScores = make([]model.PlayerScore, 0)
		index[s.ID] = len(scores)
		scores = append(scores, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(scores) == 0 {
		return scores, nil
	}
	// Populate players for all scores in one query.
	ids := make([]any, 0, len(scores))
	placeholders := make([]string, 0, len(scores))
	for _, s := range scores {
		ids = append(ids, s.ID)
		placeholders = append(placeholders, "?")
	}
	pq := `SELECT id, team_score_id, player_name, score, created_at
	       FROM player_scores
	       WHERE team_score_id IN (` + strings.Join(placeholders, ",") + `)
	       ORDER BY team_score_id, id`
	prows, err := r.db.QueryContext(ctx, pq, ids...)
	if err != nil {
		return nil, err
	}
	defer prows.Close()
	for prows.Next() {
		var p model.PlayerScore
		if err := prows.Scan(&p.ID, &p.TeamScoreID, &p.PlayerName, &p.Score, &p.CreatedAt); err != nil {
			return nil, err
		}
		idx, ok := index[p.TeamScoreID]
		if !ok {
			continue
		}
		scores[idx].PlayerScores = append(scores[idx].PlayerScores, p)
	}
	if err := prows.Err(); err != nil {
		return nil, err
	}
	return scores, nil
}
