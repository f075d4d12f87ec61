package model

import "time"

// TeamScore records the result a team achieved in one game session.
// Scores are written by the on-site scoring terminal (a machine
// caller) and read by the public ranking page.  They are independent
// of reservations: walk-in teams get scores too.
//
// Fields:
//  ID           – primary key identifier.
//  TeamName     – display name entered at the terminal.
//  Headcount    – number of players in the session.
//  GameSession  – free-form session label ("第1回戦" etc).
//  Description  – optional note (nullable).
//  Score        – total points for the team.
//  PlayerScores – per-player breakdown loaded alongside the score.
//  CreatedAt    – creation timestamp.
//  UpdatedAt    – last update timestamp.
type TeamScore struct {
	ID           uint64        `json:"id"`            // team_scores.id
	TeamName     string        `json:"team_name"`     // team_scores.team_name
	Headcount    int           `json:"headcount"`     // team_scores.headcount
	GameSession  string        `json:"game_session"`  // team_scores.game_session
	Description  *string       `json:"description"`   // team_scores.description (nullable)
	Score        int64         `json:"score"`         // team_scores.score
	PlayerScores []PlayerScore `json:"player_scores"` // player_scores rows
	CreatedAt    time.Time     `json:"created_at"`    // team_scores.created_at
	UpdatedAt    time.Time     `json:"updated_at"`    // team_scores.updated_at
}

// PlayerScore is one player's contribution inside a TeamScore.
type PlayerScore struct {
	ID          uint64    `json:"id"`            // player_scores.id
	TeamScoreID uint64    `json:"team_score_id"` // player_scores.team_score_id
	PlayerName  string    `json:"player_name"`   // player_scores.player_name
	Score       int64     `json:"score"`         // player_scores.score
	CreatedAt   time.Time `json:"created_at"`    // player_scores.created_at
}
