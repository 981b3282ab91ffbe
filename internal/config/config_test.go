package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("expected default addr :8080, got %q", cfg.HTTPAddr)
	}
	if cfg.RankMode != "inline" {
		t.Fatalf("expected default mode inline, got %q", cfg.RankMode)
	}
	if cfg.TopTTL != 5*time.Second || cfg.RankTTL != 30*time.Second {
		t.Fatalf("unexpected default TTLs: top=%s rank=%s", cfg.TopTTL, cfg.RankTTL)
	}
	if cfg.TopN != 10 {
		t.Fatalf("expected default top n 10, got %d", cfg.TopN)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9999")
	t.Setenv("RANK_MODE", "batch")
	t.Setenv("LEADERBOARD_TOP_TTL", "250ms")
	t.Setenv("LEADERBOARD_TOP_N", "25")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPAddr != ":9999" {
		t.Fatalf("expected :9999, got %q", cfg.HTTPAddr)
	}
	if cfg.RankMode != "batch" {
		t.Fatalf("expected batch, got %q", cfg.RankMode)
	}
	if cfg.TopTTL != 250*time.Millisecond {
		t.Fatalf("expected 250ms, got %s", cfg.TopTTL)
	}
	if cfg.Leaderboard().TopN != 25 {
		t.Fatalf("expected top n 25, got %d", cfg.Leaderboard().TopN)
	}
}

func TestLoadRejectsBadMode(t *testing.T) {
	t.Setenv("RANK_MODE", "eventually")
	if _, err := Load(); err == nil {
		t.Fatal("expected invalid mode error")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	base := Config{RankMode: "inline", TopN: 10}
	if err := base.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	bad := base
	bad.TopN = 0
	if err := bad.Validate(); err == nil {
		t.Fatal("expected top n error")
	}

	bad = base
	bad.RankTTL = -time.Second
	if err := bad.Validate(); err == nil {
		t.Fatal("expected ttl error")
	}
}
