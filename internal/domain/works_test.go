package domain

import (
	"math"
	"testing"
)

func findWork(ranked []ScoredWork, id int64) (ScoredWork, bool) {
	for _, w := range ranked {
		if w.ID == id {
			return w, true
		}
	}
	return ScoredWork{}, false
}

func TestRankWorksAggregatesLinkedScores(t *testing.T) {
	lists := []ContributorWorks{
		{
			Contributor: ScoredContributor{ID: 1, Score: 2.0},
			Works:       []Work{{ID: 100, Title: "First"}, {ID: 101, Title: "Only one"}},
		},
		{
			Contributor: ScoredContributor{ID: 2, Score: 1.0},
			Works:       []Work{{ID: 100, Title: "Overwritten?"}},
		},
	}

	ranked := RankWorks(lists, RankContext{})
	if len(ranked) != 2 {
		t.Fatalf("len(ranked) = %d, want 2", len(ranked))
	}

	shared, _ := findWork(ranked, 100)
	if shared.Score != 3.0 {
		t.Errorf("shared work score = %v, want 3.0", shared.Score)
	}
	if shared.Title != "First" {
		t.Errorf("display fields should be first-writer-wins, got %q", shared.Title)
	}
	if len(shared.ConnectedMemberIDs) != 2 || shared.ConnectedMemberIDs[0] != 1 {
		t.Errorf("ConnectedMemberIDs = %v, want [1 2]", shared.ConnectedMemberIDs)
	}
	if ranked[0].ID != 100 {
		t.Errorf("top work = %d, want 100", ranked[0].ID)
	}
}

func TestRankWorksSelectedPenalty(t *testing.T) {
	lists := []ContributorWorks{{
		Contributor: ScoredContributor{ID: 1, Score: 1.0},
		Works:       []Work{{ID: 99}, {ID: 100}},
	}}

	unpenalized := RankWorks(lists, RankContext{})
	penalized := RankWorks(lists, RankContext{SelectedWorks: map[int64]struct{}{99: {}}})

	base, _ := findWork(unpenalized, 99)
	got, _ := findWork(penalized, 99)
	if got.Score > base.Score*0.1+1e-12 {
		t.Errorf("selected work score %v exceeds 10%% of %v", got.Score, base.Score)
	}
	if penalized[0].ID != 100 {
		t.Errorf("top work = %d, want 100", penalized[0].ID)
	}
	if len(penalized) != 2 {
		t.Errorf("penalized work must not be dropped, got %d works", len(penalized))
	}
}

func TestRankWorksDirectBoost(t *testing.T) {
	lists := []ContributorWorks{
		{Contributor: ScoredContributor{ID: 1, Score: 1.0}, Works: []Work{{ID: 200}}},
		{Contributor: ScoredContributor{ID: 2, Score: 1.0}, Works: []Work{{ID: 300}}},
	}

	ranked := RankWorks(lists, RankContext{DirectPersons: map[int64]struct{}{1: {}}})

	boosted, _ := findWork(ranked, 200)
	plain, _ := findWork(ranked, 300)
	if boosted.Score <= plain.Score {
		t.Errorf("direct-linked work %v should outrank %v", boosted.Score, plain.Score)
	}
	if math.Abs(boosted.Score-(1.0+DirectBoost)) > 1e-12 {
		t.Errorf("boosted score = %v, want %v", boosted.Score, 1.0+DirectBoost)
	}
}

func TestRankWorksBoostThenPenalty(t *testing.T) {
	lists := []ContributorWorks{
		{Contributor: ScoredContributor{ID: 1, Score: 1.0}, Works: []Work{{ID: 5}}},
		{Contributor: ScoredContributor{ID: 2, Score: 0.5}, Works: []Work{{ID: 5}}},
	}
	rc := RankContext{
		DirectPersons: map[int64]struct{}{1: {}, 2: {}},
		SelectedWorks: map[int64]struct{}{5: {}},
	}

	ranked := RankWorks(lists, rc)
	want := (1.0 + 0.5 + 2*DirectBoost) * SelectedWorkPenalty
	if math.Abs(ranked[0].Score-want) > 1e-12 {
		t.Errorf("score = %v, want %v", ranked[0].Score, want)
	}
}

func TestRankWorksDuplicateCreditLinksOnce(t *testing.T) {
	lists := []ContributorWorks{{
		Contributor: ScoredContributor{ID: 1, Score: 1.0},
		Works:       []Work{{ID: 7}, {ID: 7}},
	}}

	ranked := RankWorks(lists, RankContext{DirectPersons: map[int64]struct{}{1: {}}})
	if len(ranked) != 1 {
		t.Fatalf("len(ranked) = %d, want 1", len(ranked))
	}
	if want := 1.0 + DirectBoost; ranked[0].Score != want {
		t.Errorf("score = %v, want %v", ranked[0].Score, want)
	}
	if len(ranked[0].ConnectedMemberIDs) != 1 {
		t.Errorf("ConnectedMemberIDs = %v, want one id", ranked[0].ConnectedMemberIDs)
	}
}

func TestRankWorksConnectedMembersCapped(t *testing.T) {
	lists := make([]ContributorWorks, 0, 8)
	for i := int64(1); i <= 8; i++ {
		lists = append(lists, ContributorWorks{
			Contributor: ScoredContributor{ID: i, Score: float64(i)},
			Works:       []Work{{ID: 42}},
		})
	}

	ranked := RankWorks(lists, RankContext{})
	got := ranked[0].ConnectedMemberIDs
	want := []int64{8, 7, 6, 5, 4}
	if len(got) != len(want) {
		t.Fatalf("ConnectedMemberIDs = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ConnectedMemberIDs = %v, want %v", got, want)
			break
		}
	}
}
