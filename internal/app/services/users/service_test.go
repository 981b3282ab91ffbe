package users

import (
	"context"
	"errors"
	"testing"

	"github.com/R3E-Network/leaderboard/internal/app/storage"
	"github.com/R3E-Network/leaderboard/internal/app/storage/memory"
)

func TestService_RegisterAndLookup(t *testing.T) {
	svc := New(memory.New(), nil)
	ctx := context.Background()

	created, err := svc.Register(ctx, "  alice  ")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if created.Username != "alice" {
		t.Fatalf("expected trimmed username, got %q", created.Username)
	}

	got, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != created.ID {
		t.Fatalf("expected user %s, got %s", created.ID, got.ID)
	}

	all, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 user, got %d", len(all))
	}
}

func TestService_RegisterRejectsEmptyUsername(t *testing.T) {
	svc := New(memory.New(), nil)
	if _, err := svc.Register(context.Background(), "   "); !errors.Is(err, ErrInvalidUsername) {
		t.Fatalf("expected ErrInvalidUsername, got %v", err)
	}
}

func TestService_GetUnknownUser(t *testing.T) {
	svc := New(memory.New(), nil)
	if _, err := svc.Get(context.Background(), "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
