package postgres

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/R3E-Network/leaderboard/internal/app/domain/leaderboard"
	"github.com/R3E-Network/leaderboard/internal/app/domain/user"
	"github.com/R3E-Network/leaderboard/internal/app/storage"
)

func TestStoreIntegration(t *testing.T) {
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set; skipping postgres integration test")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := EnsureSchema(ctx, db); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	if _, err := db.ExecContext(ctx, `TRUNCATE app_rank_entries, app_score_events, app_users`); err != nil {
		t.Fatalf("truncate: %v", err)
	}

	store := New(db)

	// Suffixed usernames keep reruns against a persistent database from
	// tripping the unique constraint.
	suffix := uuid.NewString()[:8]
	alice, err := store.CreateUser(ctx, user.User{Username: "it-alice-" + suffix})
	if err != nil {
		t.Fatalf("create alice: %v", err)
	}
	bob, err := store.CreateUser(ctx, user.User{Username: "it-bob-" + suffix})
	if err != nil {
		t.Fatalf("create bob: %v", err)
	}

	total, err := store.SubmitScore(ctx, alice.ID, 200, leaderboard.DefaultGameMode, leaderboard.AssignRanks)
	if err != nil {
		t.Fatalf("submit alice: %v", err)
	}
	if total != 200 {
		t.Fatalf("expected total 200, got %d", total)
	}
	if _, err := store.SubmitScore(ctx, bob.ID, 150, leaderboard.DefaultGameMode, leaderboard.AssignRanks); err != nil {
		t.Fatalf("submit bob: %v", err)
	}

	row, err := store.UserRank(ctx, alice.ID)
	if err != nil {
		t.Fatalf("rank alice: %v", err)
	}
	if row.Rank != 1 || row.TotalScore != 200 || row.Username != alice.Username {
		t.Fatalf("unexpected alice row: %+v", row)
	}

	if _, err := store.SubmitScore(ctx, bob.ID, 100, leaderboard.DefaultGameMode, leaderboard.AssignRanks); err != nil {
		t.Fatalf("submit bob again: %v", err)
	}
	row, err = store.UserRank(ctx, bob.ID)
	if err != nil {
		t.Fatalf("rank bob: %v", err)
	}
	if row.Rank != 1 || row.TotalScore != 250 {
		t.Fatalf("expected bob at rank 1 with 250, got %+v", row)
	}

	top, err := store.TopLeaderboard(ctx, 10)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if len(top) < 2 || top[0].UserID != bob.ID {
		t.Fatalf("unexpected top: %+v", top)
	}

	if _, err := store.SubmitScore(ctx, "missing", 10, leaderboard.DefaultGameMode, nil); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown user, got %v", err)
	}

	count, err := store.RecomputeRanks(ctx, leaderboard.AssignRanks)
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if count < 2 {
		t.Fatalf("expected at least 2 entries ranked, got %d", count)
	}
}
