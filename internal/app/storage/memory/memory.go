// Package memory provides an in-memory implementation of the storage
// interfaces. It is safe for concurrent use and is primarily intended for
// tests and local development.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/R3E-Network/leaderboard/internal/app/domain/leaderboard"
	"github.com/R3E-Network/leaderboard/internal/app/domain/user"
	"github.com/R3E-Network/leaderboard/internal/app/storage"
)

// Store is an in-memory implementation of the storage interfaces. A single
// mutex guards every write, which trivially gives each submission the same
// all-or-nothing visibility the postgres store gets from transactions.
type Store struct {
	mu          sync.RWMutex
	users       map[string]user.User
	events      map[string][]leaderboard.ScoreEvent
	rankEntries map[string]leaderboard.Entry
}

var _ storage.UserStore = (*Store)(nil)
var _ storage.LeaderboardStore = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		users:       make(map[string]user.User),
		events:      make(map[string][]leaderboard.ScoreEvent),
		rankEntries: make(map[string]leaderboard.Entry),
	}
}

// UserStore implementation ----------------------------------------------------

func (s *Store) CreateUser(_ context.Context, u user.User) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u.ID == "" {
		u.ID = uuid.NewString()
	} else if _, exists := s.users[u.ID]; exists {
		return user.User{}, fmt.Errorf("user %s: %w", u.ID, storage.ErrAlreadyExists)
	}
	for _, existing := range s.users {
		if strings.EqualFold(existing.Username, u.Username) {
			return user.User{}, fmt.Errorf("username %s: %w", u.Username, storage.ErrAlreadyExists)
		}
	}

	if u.JoinDate.IsZero() {
		u.JoinDate = time.Now().UTC()
	}
	s.users[u.ID] = u
	return u, nil
}

func (s *Store) GetUser(_ context.Context, id string) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return user.User{}, storage.ErrNotFound
	}
	return u, nil
}

func (s *Store) ListUsers(_ context.Context) ([]user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]user.User, 0, len(s.users))
	for _, u := range s.users {
		result = append(result, u)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].JoinDate.Before(result[j].JoinDate) })
	return result, nil
}

// LeaderboardStore implementation ---------------------------------------------

func (s *Store) SubmitScore(_ context.Context, userID string, score int64, gameMode string, assign leaderboard.AssignFunc) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[userID]; !ok {
		return 0, storage.ErrNotFound
	}

	event := leaderboard.ScoreEvent{
		ID:        uuid.NewString(),
		UserID:    userID,
		Score:     score,
		GameMode:  gameMode,
		CreatedAt: time.Now().UTC(),
	}
	s.events[userID] = append(s.events[userID], event)

	// Full-sum recomputation keeps the total self-healing against any
	// earlier divergence.
	var total int64
	for _, ev := range s.events[userID] {
		total += ev.Score
	}

	entry, ok := s.rankEntries[userID]
	if !ok {
		entry = leaderboard.Entry{UserID: userID}
	}
	entry.TotalScore = total
	entry.UpdatedAt = event.CreatedAt
	s.rankEntries[userID] = entry

	if assign != nil {
		s.assignRanksLocked(assign)
	}
	return total, nil
}

func (s *Store) RecomputeRanks(_ context.Context, assign leaderboard.AssignFunc) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.assignRanksLocked(assign)
	return len(s.rankEntries), nil
}

func (s *Store) assignRanksLocked(assign leaderboard.AssignFunc) {
	entries := make([]leaderboard.Entry, 0, len(s.rankEntries))
	for _, e := range s.rankEntries {
		entries = append(entries, e)
	}
	for _, e := range assign(entries) {
		s.rankEntries[e.UserID] = e
	}
}

func (s *Store) TopLeaderboard(_ context.Context, n int) ([]leaderboard.Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]leaderboard.Entry, 0, len(s.rankEntries))
	for _, e := range s.rankEntries {
		entries = append(entries, e)
	}
	// Order by the ranking key itself so entries still holding a provisional
	// rank sort by their score rather than floating to the top.
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].TotalScore != entries[j].TotalScore {
			return entries[i].TotalScore > entries[j].TotalScore
		}
		return entries[i].UserID < entries[j].UserID
	})
	if n < len(entries) {
		entries = entries[:n]
	}

	rows := make([]leaderboard.Row, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, leaderboard.Row{
			Rank:       e.Rank,
			UserID:     e.UserID,
			Username:   s.users[e.UserID].Username,
			TotalScore: e.TotalScore,
		})
	}
	return rows, nil
}

func (s *Store) UserRank(_ context.Context, userID string) (leaderboard.Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.rankEntries[userID]
	if !ok {
		return leaderboard.Row{}, storage.ErrNotFound
	}
	return leaderboard.Row{
		Rank:       entry.Rank,
		UserID:     entry.UserID,
		Username:   s.users[entry.UserID].Username,
		TotalScore: entry.TotalScore,
	}, nil
}

func (s *Store) ListScoreEvents(_ context.Context, userID string) ([]leaderboard.ScoreEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := s.events[userID]
	result := make([]leaderboard.ScoreEvent, len(events))
	copy(result, events)
	return result, nil
}

func (s *Store) SumScores(_ context.Context, userID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total int64
	for _, ev := range s.events[userID] {
		total += ev.Score
	}
	return total, nil
}
