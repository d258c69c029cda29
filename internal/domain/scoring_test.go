package domain

import (
	"math"
	"testing"
)

func entryOf(primary int64, entities ...WeightedEntity) Entry {
	return Entry{Entities: entities, PrimaryID: primary, SourceType: SourceMovie}
}

func we(id int64, weight float64) WeightedEntity {
	return WeightedEntity{ID: id, Weight: weight}
}

func scoreOf(scored []ScoredContributor, id int64) (float64, bool) {
	for _, s := range scored {
		if s.ID == id {
			return s.Score, true
		}
	}
	return 0, false
}

func TestScoreEntriesEmpty(t *testing.T) {
	if got := ScoreEntries(nil); len(got) != 0 {
		t.Errorf("ScoreEntries(nil) = %v, want empty", got)
	}
}

func TestScoreEntriesZeroWeightEntrySkipped(t *testing.T) {
	entries := []Entry{
		entryOf(1, we(10, 0), we(11, 0)),
		entryOf(2), // no entities at all
		entryOf(3, we(20, 1.0)),
	}

	scored := ScoreEntries(entries)
	if len(scored) != 1 {
		t.Fatalf("len(scored) = %d, want 1: %v", len(scored), scored)
	}
	if _, ok := scoreOf(scored, 10); ok {
		t.Error("contributor of zero-weight entry must not be scored")
	}

	// N counts only the kept entry: raw 1, tf 1, idf ln 2.
	got, _ := scoreOf(scored, 20)
	if want := math.Log(2); math.Abs(got-want) > 1e-12 {
		t.Errorf("score = %v, want %v", got, want)
	}
	for _, s := range scored {
		if math.IsNaN(s.Score) || math.IsInf(s.Score, 0) {
			t.Errorf("non-finite score %v", s)
		}
	}
}

func TestScoreEntriesNormalizationSumsToOne(t *testing.T) {
	// With one entry tf = 1 and idf = ln 2 for every contributor, so
	// dividing by ln 2 recovers the normalized contributions.
	scored := ScoreEntries([]Entry{entryOf(1, we(1, 5.0), we(2, 0.3))})

	var sum float64
	for _, s := range scored {
		sum += s.Score / math.Log(2)
	}
	if math.Abs(sum-1.0) > 1e-12 {
		t.Errorf("normalized contributions sum = %v, want 1.0", sum)
	}

	director, _ := scoreOf(scored, 1)
	if want := 5.0 / 5.3 * math.Log(2); math.Abs(director-want) > 1e-12 {
		t.Errorf("director score = %v, want %v", director, want)
	}
}

func TestScoreEntriesTFIDF(t *testing.T) {
	// Contributor 1 appears in both entries, 2 and 3 in one each.
	entries := []Entry{
		entryOf(1, we(1, 1.0), we(2, 1.0)),
		entryOf(2, we(1, 1.0), we(3, 3.0)),
	}
	scored := ScoreEntries(entries)

	n := 2.0
	want1 := (0.5 + 0.25) * (2 / n) * math.Log(1+n/2)
	want2 := 0.5 * (1 / n) * math.Log(1+n/1)
	want3 := 0.75 * (1 / n) * math.Log(1+n/1)

	tests := []struct {
		id   int64
		want float64
	}{
		{1, want1},
		{2, want2},
		{3, want3},
	}
	for _, tt := range tests {
		got, ok := scoreOf(scored, tt.id)
		if !ok {
			t.Fatalf("contributor %d missing", tt.id)
		}
		if math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("score(%d) = %v, want %v", tt.id, got, tt.want)
		}
	}

	for i := 1; i < len(scored); i++ {
		if scored[i-1].Score < scored[i].Score {
			t.Errorf("not sorted descending at %d: %v", i, scored)
		}
	}
}

func TestScoreEntriesDuplicateInEntryAccumulates(t *testing.T) {
	scored := ScoreEntries([]Entry{entryOf(1, we(1, 1.0), we(1, 1.0), we(2, 2.0))})

	// id 1: raw 0.5, count 2, N 1 -> 0.5 * 2 * ln(1.5)
	got, _ := scoreOf(scored, 1)
	if want := 0.5 * 2 * math.Log(1.5); math.Abs(got-want) > 1e-12 {
		t.Errorf("duplicate contributor score = %v, want %v", got, want)
	}
}

func TestScoreEntriesEnsembleDilution(t *testing.T) {
	crew := make([]WeightedEntity, 0, 100)
	for i := int64(0); i < 100; i++ {
		crew = append(crew, we(1000+i, 0.3))
	}

	entries := []Entry{
		entryOf(1, we(1, 5.0), we(2, 0.3)),
		entryOf(2, crew...),
	}
	scored := ScoreEntries(entries)

	director, ok := scoreOf(scored, 1)
	if !ok || director <= 0 {
		t.Fatalf("director score = %v, want > 0", director)
	}

	// Same director in a single small entry on its own.
	alone := ScoreEntries([]Entry{entryOf(1, we(1, 5.0), we(2, 0.3))})
	reference, _ := scoreOf(alone, 1)

	ratio := director / reference
	if ratio < 0.1 || ratio > 10 {
		t.Errorf("director score %v not within an order of magnitude of %v", director, reference)
	}

	if scored[0].ID != 1 {
		t.Errorf("top contributor = %d, want director 1", scored[0].ID)
	}

	crewScore, _ := scoreOf(scored, 1000)
	if crewScore >= director {
		t.Errorf("crew member %v should rank below director %v", crewScore, director)
	}
}

func TestScoreEntriesStableTies(t *testing.T) {
	entries := []Entry{entryOf(1, we(5, 1.0), we(3, 1.0), we(9, 1.0))}

	for i := 0; i < 20; i++ {
		scored := ScoreEntries(entries)
		ids := []int64{scored[0].ID, scored[1].ID, scored[2].ID}
		if ids[0] != 5 || ids[1] != 3 || ids[2] != 9 {
			t.Fatalf("tie order = %v, want first appearance [5 3 9]", ids)
		}
	}
}

func TestTopContributors(t *testing.T) {
	scored := []ScoredContributor{{ID: 1, Score: 3}, {ID: 2, Score: 2}, {ID: 3, Score: 1}}

	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{"no limit", 0, 3},
		{"negative limit", -1, 3},
		{"truncate", 2, 2},
		{"limit above size", 10, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TopContributors(scored, tt.limit)
			if len(got) != tt.want {
				t.Errorf("len(TopContributors()) = %d, want %d", len(got), tt.want)
			}
			if len(got) > 0 && got[0].ID != 1 {
				t.Errorf("order not preserved: %v", got)
			}
		})
	}
}
