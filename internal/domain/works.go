package domain

import "sort"

const (
	// DirectBoost is added to a work once per linked direct person.
	DirectBoost = 0.5

	// SelectedWorkPenalty scales works the user already selected.
	SelectedWorkPenalty = 0.1

	// MaxConnectedMembers caps the explainability trail of a work.
	MaxConnectedMembers = 5
)

// Work is a candidate movie or show as described by the metadata provider.
type Work struct {
	ID               int64     `json:"id"`
	MediaType        MediaType `json:"media_type"`
	Title            string    `json:"title"`
	Overview         string    `json:"overview"`
	PosterPath       string    `json:"poster_path"`
	Popularity       float64   `json:"popularity"`
	ReleaseDate      string    `json:"release_date,omitempty"`
	FirstAirDate     string    `json:"first_air_date,omitempty"`
	OriginalLanguage string    `json:"original_language,omitempty"`
}

// ScoredWork is a ranked work with the contributors that led to it.
type ScoredWork struct {
	Work
	Score              float64 `json:"score"`
	ConnectedMemberIDs []int64 `json:"connected_member_ids"`
}

// ContributorWorks is one contributor's filmography as returned by a lookup.
type ContributorWorks struct {
	Contributor ScoredContributor
	Works       []Work
}

// RankContext carries the flock state the works ranker reads.
type RankContext struct {
	DirectPersons map[int64]struct{}
	SelectedWorks map[int64]struct{}
}

type workTally struct {
	work    Work
	links   map[int64]float64 // contributor id -> contributor score
	members []ScoredContributor
}

// RankWorks aggregates contributor filmographies into a work ranking.
//
// Input must be in contributor score order: the first contributor to report
// a work supplies its display fields. A work's score is the sum of its
// linked contributor scores plus DirectBoost per linked direct person,
// multiplied by SelectedWorkPenalty when the work is already selected.
// The full list is returned sorted by score descending.
func RankWorks(lists []ContributorWorks, rc RankContext) []ScoredWork {
	tallies := make(map[int64]*workTally)
	order := make([]*workTally, 0)

	for _, list := range lists {
		c := list.Contributor
		for _, w := range list.Works {
			t, ok := tallies[w.ID]
			if !ok {
				t = &workTally{work: w, links: make(map[int64]float64)}
				tallies[w.ID] = t
				order = append(order, t)
			}
			// A contributor credited twice on one work still links once.
			if _, linked := t.links[c.ID]; !linked {
				t.members = append(t.members, c)
			}
			t.links[c.ID] = c.Score
		}
	}

	ranked := make([]ScoredWork, 0, len(order))
	for _, t := range order {
		var sum, boost float64
		for id, score := range t.links {
			sum += score
			if _, direct := rc.DirectPersons[id]; direct {
				boost += DirectBoost
			}
		}

		penalty := 1.0
		if _, selected := rc.SelectedWorks[t.work.ID]; selected {
			penalty = SelectedWorkPenalty
		}

		ranked = append(ranked, ScoredWork{
			Work:               t.work,
			Score:              (sum + boost) * penalty,
			ConnectedMemberIDs: connectedMembers(t.members),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	return ranked
}

// connectedMembers returns up to MaxConnectedMembers ids by score descending.
func connectedMembers(members []ScoredContributor) []int64 {
	sorted := make([]ScoredContributor, len(members))
	copy(sorted, members)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})

	n := min(len(sorted), MaxConnectedMembers)
	ids := make([]int64, 0, n)
	for _, m := range sorted[:n] {
		ids = append(ids, m.ID)
	}
	return ids
}
