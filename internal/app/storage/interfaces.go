package storage

import (
	"context"

	"github.com/R3E-Network/leaderboard/internal/app/domain/leaderboard"
	"github.com/R3E-Network/leaderboard/internal/app/domain/user"
)

// UserStore persists the player directory.
type UserStore interface {
	CreateUser(ctx context.Context, u user.User) (user.User, error)
	GetUser(ctx context.Context, id string) (user.User, error)
	ListUsers(ctx context.Context) ([]user.User, error)
}

// LeaderboardStore persists score events and the rank table. Implementations
// own the transactional boundary: SubmitScore commits the event append, the
// total upsert and (when requested) the inline re-rank as one atomic unit, so
// a concurrent reader never observes an event without its total.
type LeaderboardStore interface {
	// SubmitScore appends a score event for the user, recomputes the user's
	// total score as the sum of all their events, and upserts the rank table
	// entry, all within a single transaction. Same-user submissions
	// serialize on the user record. When assign is non-nil the complete rank
	// ordering it produces is persisted in the same transaction; when nil,
	// ranks are left to the next batch pass. Returns the new total, or
	// ErrNotFound when the user does not exist.
	SubmitScore(ctx context.Context, userID string, score int64, gameMode string, assign leaderboard.AssignFunc) (int64, error)

	// RecomputeRanks reads a consistent snapshot of every rank entry, runs
	// assign over it, and persists the resulting rank column as a single
	// batch. It returns the number of entries ranked and is idempotent.
	RecomputeRanks(ctx context.Context, assign leaderboard.AssignFunc) (int, error)

	// TopLeaderboard returns up to n rows ordered best first, joined with
	// usernames from the directory.
	TopLeaderboard(ctx context.Context, n int) ([]leaderboard.Row, error)

	// UserRank returns the rank table row for one user, or ErrNotFound when
	// the user has never submitted a score.
	UserRank(ctx context.Context, userID string) (leaderboard.Row, error)

	// ListScoreEvents returns the recorded events for a user, oldest first.
	ListScoreEvents(ctx context.Context, userID string) ([]leaderboard.ScoreEvent, error)

	// SumScores recomputes a user's total directly from the event history.
	// Reconciliation uses it to verify the rank table has not drifted.
	SumScores(ctx context.Context, userID string) (int64, error)
}
