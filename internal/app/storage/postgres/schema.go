package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// Schema declares the tables and indexes the store relies on. Statements are
// idempotent so EnsureSchema is safe to run on every boot.
const Schema = `
CREATE TABLE IF NOT EXISTS app_users (
	id        TEXT PRIMARY KEY,
	username  TEXT NOT NULL UNIQUE,
	join_date TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS app_score_events (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL REFERENCES app_users (id),
	score      BIGINT NOT NULL CHECK (score >= 0),
	game_mode  TEXT NOT NULL DEFAULT 'classic',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_score_events_user ON app_score_events (user_id);
CREATE INDEX IF NOT EXISTS idx_score_events_created ON app_score_events (created_at);

CREATE TABLE IF NOT EXISTS app_rank_entries (
	user_id     TEXT PRIMARY KEY REFERENCES app_users (id),
	total_score BIGINT NOT NULL DEFAULT 0,
	rank        BIGINT NOT NULL DEFAULT 0,
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_rank_entries_total ON app_rank_entries (total_score DESC);
CREATE INDEX IF NOT EXISTS idx_rank_entries_rank ON app_rank_entries (rank);
`

// EnsureSchema creates the leaderboard tables when they do not exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
