// Package postgres implements the storage interfaces backed by PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/R3E-Network/leaderboard/internal/app/domain/leaderboard"
	"github.com/R3E-Network/leaderboard/internal/app/domain/user"
	"github.com/R3E-Network/leaderboard/internal/app/storage"
)

// Store implements the storage interfaces backed by PostgreSQL.
type Store struct {
	db *sql.DB
}

var _ storage.UserStore = (*Store)(nil)
var _ storage.LeaderboardStore = (*Store)(nil)

// New creates a Store using the provided database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// --- UserStore --------------------------------------------------------------

func (s *Store) CreateUser(ctx context.Context, u user.User) (user.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.JoinDate.IsZero() {
		u.JoinDate = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO app_users (id, username, join_date)
		VALUES ($1, $2, $3)
	`, u.ID, u.Username, u.JoinDate)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return user.User{}, fmt.Errorf("username %s: %w", u.Username, storage.ErrAlreadyExists)
		}
		return user.User{}, err
	}
	return u, nil
}

func (s *Store) GetUser(ctx context.Context, id string) (user.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, username, join_date
		FROM app_users
		WHERE id = $1
	`, id)

	var u user.User
	if err := row.Scan(&u.ID, &u.Username, &u.JoinDate); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return user.User{}, storage.ErrNotFound
		}
		return user.User{}, err
	}
	u.JoinDate = u.JoinDate.UTC()
	return u, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]user.User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, username, join_date
		FROM app_users
		ORDER BY join_date
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []user.User
	for rows.Next() {
		var u user.User
		if err := rows.Scan(&u.ID, &u.Username, &u.JoinDate); err != nil {
			return nil, err
		}
		u.JoinDate = u.JoinDate.UTC()
		result = append(result, u)
	}
	return result, rows.Err()
}

// --- LeaderboardStore -------------------------------------------------------

func (s *Store) SubmitScore(ctx context.Context, userID string, score int64, gameMode string, assign leaderboard.AssignFunc) (total int64, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin submission: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// Locking the user row serializes same-user submissions so both always
	// see the other's event when summing.
	var username string
	err = tx.QueryRowContext(ctx, `
		SELECT username FROM app_users WHERE id = $1 FOR UPDATE
	`, userID).Scan(&username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, storage.ErrNotFound
		}
		return 0, fmt.Errorf("lock user: %w", err)
	}

	now := time.Now().UTC()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO app_score_events (id, user_id, score, game_mode, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, uuid.NewString(), userID, score, gameMode, now)
	if err != nil {
		return 0, fmt.Errorf("append score event: %w", err)
	}

	// Full-sum recomputation rather than an incremental add keeps the total
	// self-healing against any earlier divergence.
	err = tx.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(score), 0) FROM app_score_events WHERE user_id = $1
	`, userID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("aggregate total: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO app_rank_entries (user_id, total_score, rank, updated_at)
		VALUES ($1, $2, 0, $3)
		ON CONFLICT (user_id) DO UPDATE
		SET total_score = EXCLUDED.total_score, updated_at = EXCLUDED.updated_at
	`, userID, total, now)
	if err != nil {
		return 0, fmt.Errorf("upsert rank entry: %w", err)
	}

	if assign != nil {
		if err = persistRanks(ctx, tx, assign); err != nil {
			return 0, err
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit submission: %w", err)
	}
	return total, nil
}

func (s *Store) RecomputeRanks(ctx context.Context, assign leaderboard.AssignFunc) (count int, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin recompute: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	count, err = persistRanksCount(ctx, tx, assign)
	if err != nil {
		return 0, err
	}
	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit recompute: %w", err)
	}
	return count, nil
}

// persistRanks loads a locked snapshot of every rank entry, assigns ranks,
// and writes the whole rank column back in one statement so readers outside
// the transaction never observe a half-updated ordering.
func persistRanks(ctx context.Context, tx *sql.Tx, assign leaderboard.AssignFunc) error {
	_, err := persistRanksCount(ctx, tx, assign)
	return err
}

func persistRanksCount(ctx context.Context, tx *sql.Tx, assign leaderboard.AssignFunc) (int, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT user_id, total_score, rank, updated_at
		FROM app_rank_entries
		ORDER BY total_score DESC, user_id ASC
		FOR UPDATE
	`)
	if err != nil {
		return 0, fmt.Errorf("snapshot rank entries: %w", err)
	}
	defer rows.Close()

	var entries []leaderboard.Entry
	for rows.Next() {
		var e leaderboard.Entry
		if err := rows.Scan(&e.UserID, &e.TotalScore, &e.Rank, &e.UpdatedAt); err != nil {
			return 0, fmt.Errorf("scan rank entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("snapshot rank entries: %w", err)
	}
	if len(entries) == 0 {
		return 0, nil
	}

	ranked := assign(entries)
	ids := make([]string, len(ranked))
	ranks := make([]int64, len(ranked))
	for i, e := range ranked {
		ids[i] = e.UserID
		ranks[i] = e.Rank
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE app_rank_entries AS r
		SET rank = v.rank
		FROM (SELECT unnest($1::text[]) AS user_id, unnest($2::bigint[]) AS rank) v
		WHERE r.user_id = v.user_id
	`, pq.Array(ids), pq.Array(ranks))
	if err != nil {
		return 0, fmt.Errorf("persist ranks: %w", err)
	}
	return len(ranked), nil
}

func (s *Store) TopLeaderboard(ctx context.Context, n int) ([]leaderboard.Row, error) {
	// Ordering by the ranking key itself keeps entries that still hold a
	// provisional rank in score order instead of floating to the top.
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.rank, r.user_id, u.username, r.total_score
		FROM app_rank_entries r
		JOIN app_users u ON u.id = r.user_id
		ORDER BY r.total_score DESC, r.user_id ASC
		LIMIT $1
	`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []leaderboard.Row
	for rows.Next() {
		var row leaderboard.Row
		if err := rows.Scan(&row.Rank, &row.UserID, &row.Username, &row.TotalScore); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func (s *Store) UserRank(ctx context.Context, userID string) (leaderboard.Row, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT r.rank, r.user_id, u.username, r.total_score
		FROM app_rank_entries r
		JOIN app_users u ON u.id = r.user_id
		WHERE r.user_id = $1
	`, userID)

	var result leaderboard.Row
	if err := row.Scan(&result.Rank, &result.UserID, &result.Username, &result.TotalScore); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return leaderboard.Row{}, storage.ErrNotFound
		}
		return leaderboard.Row{}, err
	}
	return result, nil
}

func (s *Store) ListScoreEvents(ctx context.Context, userID string) ([]leaderboard.ScoreEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, score, game_mode, created_at
		FROM app_score_events
		WHERE user_id = $1
		ORDER BY created_at
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []leaderboard.ScoreEvent
	for rows.Next() {
		var ev leaderboard.ScoreEvent
		if err := rows.Scan(&ev.ID, &ev.UserID, &ev.Score, &ev.GameMode, &ev.CreatedAt); err != nil {
			return nil, err
		}
		ev.CreatedAt = ev.CreatedAt.UTC()
		result = append(result, ev)
	}
	return result, rows.Err()
}

func (s *Store) SumScores(ctx context.Context, userID string) (int64, error) {
	var total int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(score), 0) FROM app_score_events WHERE user_id = $1
	`, userID).Scan(&total)
	if err != nil {
		return 0, err
	}
	return total, nil
}
