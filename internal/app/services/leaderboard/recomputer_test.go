package leaderboard

import (
	"context"
	"testing"
	"time"

	"github.com/R3E-Network/leaderboard/internal/app/cache"
	"github.com/R3E-Network/leaderboard/internal/app/domain/user"
	"github.com/R3E-Network/leaderboard/internal/app/storage/memory"
)

func TestRecomputer_RunsScheduledPasses(t *testing.T) {
	store := memory.New()
	svc := New(store, cache.NewMemory(), Config{Mode: ModeBatch}, nil)
	ctx := context.Background()

	a, err := store.CreateUser(ctx, user.User{Username: "a"})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	b, err := store.CreateUser(ctx, user.User{Username: "b"})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if _, err := svc.SubmitScore(ctx, a.ID, 100, ""); err != nil {
		t.Fatalf("submit a: %v", err)
	}
	if _, err := svc.SubmitScore(ctx, b.ID, 300, ""); err != nil {
		t.Fatalf("submit b: %v", err)
	}

	rec := NewRecomputer(svc, "@every 50ms", nil)
	if err := rec.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := rec.Stop(stopCtx); err != nil {
			t.Fatalf("stop: %v", err)
		}
	}()

	deadline := time.Now().Add(2 * time.Second)
	for {
		row, err := svc.GetUserRank(ctx, b.ID)
		if err != nil {
			t.Fatalf("rank b: %v", err)
		}
		if row.Rank == 1 {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("scheduled pass never ranked entries; last row %+v", row)
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestRecomputer_StartStopIdempotent(t *testing.T) {
	svc := New(memory.New(), cache.NewMemory(), Config{Mode: ModeBatch}, nil)
	rec := NewRecomputer(svc, "", nil)

	ctx := context.Background()
	if err := rec.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := rec.Start(ctx); err != nil {
		t.Fatalf("second start: %v", err)
	}
	if err := rec.Stop(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if err := rec.Stop(ctx); err != nil {
		t.Fatalf("second stop: %v", err)
	}
}

func TestRecomputer_RejectsBadSchedule(t *testing.T) {
	svc := New(memory.New(), cache.NewMemory(), Config{Mode: ModeBatch}, nil)
	rec := NewRecomputer(svc, "not a schedule", nil)

	if err := rec.Start(context.Background()); err == nil {
		t.Fatal("expected schedule parse error")
	}
}
