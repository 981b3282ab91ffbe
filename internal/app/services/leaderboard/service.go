// Package leaderboard implements the ranking engine: score submission,
// rank recomputation and the cached read paths.
package leaderboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/R3E-Network/leaderboard/internal/app/cache"
	domain "github.com/R3E-Network/leaderboard/internal/app/domain/leaderboard"
	"github.com/R3E-Network/leaderboard/internal/app/metrics"
	"github.com/R3E-Network/leaderboard/internal/app/storage"
	"github.com/R3E-Network/leaderboard/pkg/logger"
)

// RecomputeMode selects when the rank table is re-ranked.
type RecomputeMode string

const (
	// ModeInline re-ranks within every submission transaction. Reads are
	// consistent immediately after each write at O(N log N) write cost.
	ModeInline RecomputeMode = "inline"
	// ModeBatch defers re-ranking to the scheduled recomputer, accepting a
	// bounded staleness window in exchange for cheap writes.
	ModeBatch RecomputeMode = "batch"
)

// Defaults mirror the behavior the service replaces: a five second top-N
// snapshot and a thirty second per-user rank snapshot.
const (
	DefaultTopTTL  = 5 * time.Second
	DefaultRankTTL = 30 * time.Second
	DefaultTopN    = 10
	MaxTopN        = 100
)

// ErrInvalidScore is returned for submissions with a negative score.
var ErrInvalidScore = errors.New("score must be non-negative")

// Config carries the tunable behavior of the ranking engine.
type Config struct {
	Mode    RecomputeMode
	TopTTL  time.Duration
	RankTTL time.Duration
	TopN    int
}

func (c Config) withDefaults() Config {
	if c.Mode == "" {
		c.Mode = ModeInline
	}
	if c.TopTTL <= 0 {
		c.TopTTL = DefaultTopTTL
	}
	if c.RankTTL <= 0 {
		c.RankTTL = DefaultRankTTL
	}
	if c.TopN <= 0 {
		c.TopN = DefaultTopN
	}
	return c
}

// Service is the ranking engine.
type Service struct {
	store storage.LeaderboardStore
	cache cache.Cache
	cfg   Config
	log   *logger.Logger
}

// New constructs a leaderboard service. A nil cache disables caching and
// every read goes straight to the store.
func New(store storage.LeaderboardStore, c cache.Cache, cfg Config, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("leaderboard")
	}
	return &Service{
		store: store,
		cache: c,
		cfg:   cfg.withDefaults(),
		log:   log,
	}
}

// Mode reports the configured recomputation mode.
func (s *Service) Mode() RecomputeMode { return s.cfg.Mode }

func topKey(n int) string { return fmt.Sprintf("leaderboard:top:%d", n) }

func rankKey(userID string) string { return "leaderboard:rank:" + userID }

// SubmitScore records a score event for the user and returns their new
// total. The event append, the full-sum total recomputation, the rank upsert
// and (in inline mode) the complete re-rank commit as one unit; afterwards
// the cache entries the write may have affected are invalidated.
func (s *Service) SubmitScore(ctx context.Context, userID string, score int64, gameMode string) (int64, error) {
	if score < 0 {
		metrics.RecordSubmission("invalid")
		return 0, ErrInvalidScore
	}
	gameMode = strings.TrimSpace(gameMode)
	if gameMode == "" {
		gameMode = domain.DefaultGameMode
	}

	var assign domain.AssignFunc
	if s.cfg.Mode == ModeInline {
		assign = domain.AssignRanks
	}

	total, err := s.store.SubmitScore(ctx, userID, score, gameMode, assign)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			metrics.RecordSubmission("not_found")
			return 0, err
		}
		metrics.RecordSubmission("error")
		return 0, fmt.Errorf("submit score: %w", err)
	}
	metrics.RecordSubmission("ok")

	// Stale snapshots for other users are left to expire on their own TTL;
	// the write only touched the top ordering and this user's rank.
	s.invalidate(ctx, userID)

	s.log.WithField("user_id", userID).
		WithField("score", score).
		WithField("total_score", total).
		Info("score submitted")
	return total, nil
}

// GetTopLeaderboard returns the best n entries. n falls back to the
// configured default and is capped to keep cache keys and queries bounded.
func (s *Service) GetTopLeaderboard(ctx context.Context, n int) ([]domain.Row, error) {
	if n <= 0 {
		n = s.cfg.TopN
	}
	if n > MaxTopN {
		n = MaxTopN
	}

	key := topKey(n)
	if data := s.cacheGet(ctx, key, "top"); data != nil {
		var rows []domain.Row
		if err := json.Unmarshal(data, &rows); err == nil {
			return rows, nil
		}
	}

	rows, err := s.store.TopLeaderboard(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("top leaderboard: %w", err)
	}
	if rows == nil {
		rows = []domain.Row{}
	}
	s.cacheSet(ctx, key, rows, s.cfg.TopTTL)
	return rows, nil
}

// GetUserRank returns the rank table row for one user. A user with no
// recorded score has no rank entry and reports ErrNotFound, never a default
// rank.
func (s *Service) GetUserRank(ctx context.Context, userID string) (domain.Row, error) {
	key := rankKey(userID)
	if data := s.cacheGet(ctx, key, "rank"); data != nil {
		var row domain.Row
		if err := json.Unmarshal(data, &row); err == nil {
			return row, nil
		}
	}

	row, err := s.store.UserRank(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return domain.Row{}, err
		}
		return domain.Row{}, fmt.Errorf("user rank: %w", err)
	}
	s.cacheSet(ctx, key, row, s.cfg.RankTTL)
	return row, nil
}

// RecomputeAllRanks runs one full recomputation pass over the rank table and
// sweeps the read cache. It is idempotent and safe to invoke from the
// scheduler and the admin endpoint alike.
func (s *Service) RecomputeAllRanks(ctx context.Context) (int, error) {
	start := time.Now()
	count, err := s.store.RecomputeRanks(ctx, domain.AssignRanks)
	metrics.RecordRecompute("batch", time.Since(start), err == nil)
	if err != nil {
		return 0, fmt.Errorf("recompute ranks: %w", err)
	}

	// Every persisted rank may have moved, so sweep both key families.
	if s.cache != nil {
		if err := s.cache.DeletePrefix(ctx, "leaderboard:top:"); err != nil {
			s.log.WithError(err).Warn("cache sweep failed")
		}
		if err := s.cache.DeletePrefix(ctx, "leaderboard:rank:"); err != nil {
			s.log.WithError(err).Warn("cache sweep failed")
		}
	}

	s.log.WithField("entries", count).
		WithField("duration", time.Since(start).String()).
		Info("rank recomputation pass complete")
	return count, nil
}

// Reconcile reports whether a user's rank table total has drifted from the
// sum of their score events. The next submission heals any drift because
// totals are always recomputed from the full event history.
func (s *Service) Reconcile(ctx context.Context, userID string) (bool, error) {
	row, err := s.store.UserRank(ctx, userID)
	if err != nil {
		return false, err
	}
	sum, err := s.store.SumScores(ctx, userID)
	if err != nil {
		return false, err
	}
	if row.TotalScore == sum {
		return false, nil
	}

	s.log.WithField("user_id", userID).
		WithField("rank_total", row.TotalScore).
		WithField("event_sum", sum).
		Warn("rank table total diverged from event history")
	return true, nil
}

// invalidate drops the cache entries a submission may have affected: every
// cached top-N snapshot and the submitting user's rank.
func (s *Service) invalidate(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeletePrefix(ctx, "leaderboard:top:"); err != nil {
		metrics.RecordCacheLookup("top", "error")
		s.log.WithError(err).Warn("cache invalidation failed")
	}
	if err := s.cache.Delete(ctx, rankKey(userID)); err != nil {
		metrics.RecordCacheLookup("rank", "error")
		s.log.WithError(err).Warn("cache invalidation failed")
	}
}

// cacheGet is a non-fatal lookup: any cache failure degrades to a miss so
// the read path falls through to the durable store.
func (s *Service) cacheGet(ctx context.Context, key, kind string) []byte {
	if s.cache == nil {
		return nil
	}
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		metrics.RecordCacheLookup(kind, "error")
		s.log.WithError(err).WithField("key", key).Warn("cache read failed; falling back to store")
		return nil
	}
	if data == nil {
		metrics.RecordCacheLookup(kind, "miss")
		return nil
	}
	metrics.RecordCacheLookup(kind, "hit")
	return data
}

func (s *Service) cacheSet(ctx context.Context, key string, value any, ttl time.Duration) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, ttl); err != nil {
		s.log.WithError(err).WithField("key", key).Warn("cache write failed")
	}
}
