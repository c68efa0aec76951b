package round

import (
	"math"
	"slices"

	"github.com/pscheid92/boxvote/internal/domain"
)

// ComputeTotals counts votes per side. Total is always Alive + Dead.
func ComputeTotals(votes []domain.Vote) domain.Totals {
	var totals domain.Totals
	for _, v := range votes {
		switch v.Side {
		case domain.SideAlive:
			totals.Alive++
		case domain.SideDead:
			totals.Dead++
		}
	}
	totals.Total = totals.Alive + totals.Dead
	return totals
}

// ComputePercentages rounds the ALIVE share half away from zero and derives DEAD as the
// complement, so the pair sums to exactly 100. No votes yields (0, 0).
func ComputePercentages(totals domain.Totals) domain.Percentages {
	if totals.Total == 0 {
		return domain.Percentages{}
	}
	alive := int(math.Round(float64(totals.Alive) / float64(totals.Total) * 100))
	return domain.Percentages{Alive: alive, Dead: 100 - alive}
}

// PickOutcome is the majority rule. Ties, including no votes at all, resolve to ALIVE.
func PickOutcome(alive, dead int) domain.Side {
	if alive >= dead {
		return domain.SideAlive
	}
	return domain.SideDead
}

// Leaderboard returns up to limit votes, newest first. Votes with equal timestamps keep
// their insertion order. The input slice is not modified.
func Leaderboard(votes []domain.Vote, limit int) []domain.Vote {
	if len(votes) == 0 || limit <= 0 {
		return []domain.Vote{}
	}

	sorted := slices.Clone(votes)
	slices.SortStableFunc(sorted, func(a, b domain.Vote) int {
		switch {
		case a.Timestamp > b.Timestamp:
			return -1
		case a.Timestamp < b.Timestamp:
			return 1
		default:
			return 0
		}
	})

	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}
