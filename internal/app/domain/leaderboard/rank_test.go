package leaderboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssignRanks_DensePermutation(t *testing.T) {
	ranked := AssignRanks([]Entry{
		{UserID: "u4", TotalScore: 40},
		{UserID: "u1", TotalScore: 250},
		{UserID: "u3", TotalScore: 40},
		{UserID: "u2", TotalScore: 120},
		{UserID: "u5", TotalScore: 0},
	})

	seen := make(map[int64]bool)
	for _, e := range ranked {
		assert.GreaterOrEqual(t, e.Rank, int64(1))
		assert.LessOrEqual(t, e.Rank, int64(len(ranked)))
		assert.False(t, seen[e.Rank], "rank %d assigned twice", e.Rank)
		seen[e.Rank] = true
	}
	assert.Len(t, seen, len(ranked))
}

func TestAssignRanks_Monotonic(t *testing.T) {
	ranked := AssignRanks([]Entry{
		{UserID: "a", TotalScore: 10},
		{UserID: "b", TotalScore: 300},
		{UserID: "c", TotalScore: 150},
		{UserID: "d", TotalScore: 299},
	})

	for i := range ranked {
		for j := range ranked {
			if ranked[i].TotalScore > ranked[j].TotalScore {
				assert.Less(t, ranked[i].Rank, ranked[j].Rank,
					"%s (score %d) should outrank %s (score %d)",
					ranked[i].UserID, ranked[i].TotalScore, ranked[j].UserID, ranked[j].TotalScore)
			}
		}
	}
}

func TestAssignRanks_TieBreakByUserID(t *testing.T) {
	ranked := AssignRanks([]Entry{
		{UserID: "zoe", TotalScore: 100},
		{UserID: "amy", TotalScore: 100},
		{UserID: "mel", TotalScore: 100},
	})

	want := []string{"amy", "mel", "zoe"}
	for i, id := range want {
		assert.Equal(t, id, ranked[i].UserID, "position %d", i)
		assert.Equal(t, int64(i+1), ranked[i].Rank, "position %d", i)
	}
}

func TestAssignRanks_Idempotent(t *testing.T) {
	entries := []Entry{
		{UserID: "u1", TotalScore: 60},
		{UserID: "u2", TotalScore: 60},
		{UserID: "u3", TotalScore: 10},
	}

	first := AssignRanks(entries)
	snapshot := make([]Entry, len(first))
	copy(snapshot, first)

	second := AssignRanks(first)
	assert.Equal(t, snapshot, second)
}

func TestAssignRanks_Empty(t *testing.T) {
	assert.Empty(t, AssignRanks(nil))
}
