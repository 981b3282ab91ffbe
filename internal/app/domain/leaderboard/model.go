// Package leaderboard defines the score event and rank records at the heart
// of the ranking engine, together with the canonical rank assignment
// algorithm shared by the inline and batch recomputation paths.
package leaderboard

import "time"

// DefaultGameMode is applied when a submission does not name a mode.
const DefaultGameMode = "classic"

// ScoreEvent is one recorded score submission. Events are immutable once
// written; totals are always recomputed from the full event history.
type ScoreEvent struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Score     int64     `json:"score"`
	GameMode  string    `json:"game_mode"`
	CreatedAt time.Time `json:"created_at"`
}

// Entry is one rank table row. TotalScore is the sum of every score event
// recorded for the user; Rank is a dense 1-based position assigned by the
// recomputation engine, or 0 while the entry is awaiting its first pass.
type Entry struct {
	UserID     string    `json:"user_id"`
	TotalScore int64     `json:"total_score"`
	Rank       int64     `json:"rank"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Row is a rank table row joined with the user directory, as served by the
// top-N and single-user read paths.
type Row struct {
	Rank       int64  `json:"rank"`
	UserID     string `json:"user_id"`
	Username   string `json:"username"`
	TotalScore int64  `json:"total_score"`
}
