package leaderboard

import "sort"

// AssignFunc orders rank entries and assigns their rank values. The store
// implementations accept an AssignFunc so the inline and batch recomputation
// paths share a single algorithm.
type AssignFunc func([]Entry) []Entry

// AssignRanks is the canonical ranking algorithm: descending by total score,
// ties broken by ascending user ID so repeated passes over unchanged totals
// are deterministic, dense 1-based ranks. The input slice is reordered and
// returned.
func AssignRanks(entries []Entry) []Entry {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].TotalScore != entries[j].TotalScore {
			return entries[i].TotalScore > entries[j].TotalScore
		}
		return entries[i].UserID < entries[j].UserID
	})
	for i := range entries {
		entries[i].Rank = int64(i + 1)
	}
	return entries
}
