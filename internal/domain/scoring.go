package domain

import (
	"math"
	"sort"
)

// ScoredContributor is a contributor with its relevance score.
// Rank is implied by position in the returned slice.
type ScoredContributor struct {
	ID    int64   `json:"id"`
	Score float64 `json:"score"`
}

// contributorTally accumulates one contributor across entries.
type contributorTally struct {
	id         int64
	raw        float64
	entryCount int
}

// ScoreEntries ranks contributors from an entry history.
//
// Each entry distributes a budget of 1.0 across its entities in proportion
// to their weights, so a large ensemble cannot drown out a small cast.
// Entries whose weights sum to zero are skipped and do not count toward N.
// The accumulated score is then scaled by tf = count/N and
// idf = ln(1 + N/count), which discounts contributors present in nearly
// every entry.
//
// The result is sorted by score descending; ties keep first-appearance order.
func ScoreEntries(entries []Entry) []ScoredContributor {
	tallies := make(map[int64]*contributorTally)
	order := make([]*contributorTally, 0)
	kept := 0

	for _, entry := range entries {
		total := entry.TotalWeight()
		if total == 0 {
			continue
		}
		kept++

		// Duplicate ids inside one entry accumulate per occurrence.
		for _, ent := range entry.Entities {
			t, ok := tallies[ent.ID]
			if !ok {
				t = &contributorTally{id: ent.ID}
				tallies[ent.ID] = t
				order = append(order, t)
			}
			t.raw += ent.Weight / total
			t.entryCount++
		}
	}

	n := float64(max(kept, 1))

	scored := make([]ScoredContributor, 0, len(order))
	for _, t := range order {
		count := float64(t.entryCount)
		tf := count / n
		idf := math.Log(1 + n/count)
		scored = append(scored, ScoredContributor{
			ID:    t.id,
			Score: t.raw * tf * idf,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	return scored
}

// TopContributors truncates a ranking to limit entries; limit <= 0 keeps all.
func TopContributors(scored []ScoredContributor, limit int) []ScoredContributor {
	if limit > 0 && len(scored) > limit {
		return scored[:limit]
	}
	return scored
}
