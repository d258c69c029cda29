package flock

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/MrSnakeDoc/flickflock/internal/domain"
	"github.com/MrSnakeDoc/flickflock/internal/locks"
	"github.com/MrSnakeDoc/flickflock/internal/logger"
	"github.com/MrSnakeDoc/flickflock/internal/metrics"
	redisstore "github.com/MrSnakeDoc/flickflock/internal/store/redis"
)

type memStore struct {
	mu    sync.Mutex
	data  map[string]domain.FlockSnapshot
	saves int
}

func newMemStore() *memStore {
	return &memStore{data: map[string]domain.FlockSnapshot{}}
}

func (m *memStore) GetFlock(_ context.Context, id string) (*domain.Flock, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap, ok := m.data[id]
	if !ok {
		return nil, redisstore.ErrNotFound
	}
	return domain.RestoreFlock(snap), nil
}

func (m *memStore) SaveFlock(_ context.Context, f *domain.Flock) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[f.ID()] = f.Snapshot()
	m.saves++
	return nil
}

type fakeResolver struct {
	works   map[int64][]domain.Entity
	persons map[int64][]domain.Entity
	fail    map[int64]bool
}

func (r *fakeResolver) WorkContributors(_ context.Context, _ domain.MediaType, id int64) ([]domain.Entity, error) {
	if r.fail[id] {
		return nil, errors.New("upstream down")
	}
	return r.works[id], nil
}

func (r *fakeResolver) PersonRelations(_ context.Context, id int64) ([]domain.Entity, error) {
	if r.fail[id] {
		return nil, errors.New("upstream down")
	}
	return r.persons[id], nil
}

func newTestService(store *memStore, res *fakeResolver) *Service {
	return NewService(store, res, locks.NewKeyedMutex(), metrics.New(), logger.Nop(), Config{
		FlockLimit:        25,
		WorksContributors: 10,
		WorksLimit:        50,
		Fanout:            4,
	})
}

func movie(id int64) domain.Selection {
	return domain.Selection{ID: id, MediaType: domain.MediaMovie}
}

func person(id int64, dept string) domain.Selection {
	return domain.Selection{ID: id, MediaType: domain.MediaPerson, KnownForDepartment: dept}
}

func TestApplySelectionsCreatesFlock(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, &fakeResolver{
		works: map[int64][]domain.Entity{99: domain.PlainEntities(1, 2)},
	})

	name := "friday"
	view, err := svc.ApplySelections(context.Background(), "", &name, []domain.Selection{movie(99)})
	if err != nil {
		t.Fatalf("ApplySelections() error = %v", err)
	}
	if view.ID == "" || view.Name != "friday" {
		t.Fatalf("view = %+v", view)
	}
	if len(view.Contributors) != 2 {
		t.Errorf("contributors = %+v, want 2", view.Contributors)
	}

	f, err := store.GetFlock(context.Background(), view.ID)
	if err != nil {
		t.Fatalf("flock not persisted: %v", err)
	}
	entries := f.Entries()
	if len(entries) != 1 || entries[0].SourceType != domain.SourceMovie || entries[0].PrimaryID != 99 {
		t.Errorf("entries = %+v", entries)
	}
}

func TestApplySelectionsUnknownIDStartsFresh(t *testing.T) {
	svc := newTestService(newMemStore(), &fakeResolver{})

	view, err := svc.ApplySelections(context.Background(), "does-not-exist", nil, []domain.Selection{movie(1)})
	if err != nil {
		t.Fatalf("ApplySelections() error = %v", err)
	}
	if view.ID == "does-not-exist" || view.ID == "" {
		t.Errorf("flock id = %q, want a fresh id", view.ID)
	}
}

func TestApplySelectionsAppendsToExisting(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, &fakeResolver{
		works: map[int64][]domain.Entity{1: domain.PlainEntities(10), 2: domain.PlainEntities(20)},
	})
	ctx := context.Background()

	first, err := svc.ApplySelections(ctx, "", nil, []domain.Selection{movie(1)})
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.ApplySelections(ctx, first.ID, nil, []domain.Selection{movie(2)})
	if err != nil {
		t.Fatal(err)
	}
	if second.ID != first.ID || len(second.Selections) != 2 {
		t.Errorf("second view = %+v", second)
	}
}

func TestApplySelectionsPerson(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, &fakeResolver{
		persons: map[int64][]domain.Entity{
			525: {domain.RoleEntity{ID: 525, Department: "Directing"}, domain.RoleEntity{ID: 6193, KnownForDepartment: "Acting"}},
		},
	})

	view, err := svc.ApplySelections(context.Background(), "", nil, []domain.Selection{person(525, "Directing")})
	if err != nil {
		t.Fatalf("ApplySelections() error = %v", err)
	}

	f, _ := store.GetFlock(context.Background(), view.ID)
	entries := f.Entries()
	if len(entries) != 2 {
		t.Fatalf("entries = %+v, want direct and transitive", entries)
	}
	if entries[0].SourceType != domain.SourcePersonDirect || entries[0].Entities[0].Weight != 5.0 {
		t.Errorf("direct entry = %+v", entries[0])
	}
	if entries[1].SourceType != domain.SourcePersonTransitive || len(entries[1].Entities) != 1 || entries[1].Entities[0].ID != 6193 {
		t.Errorf("transitive entry = %+v, want self excluded", entries[1])
	}
	if !f.IsDirectPerson(525) {
		t.Error("525 should be a direct person")
	}
}

func TestApplySelectionsSkipsInvalidAndFailed(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, &fakeResolver{
		fail: map[int64]bool{7: true, 8: true},
	})

	view, err := svc.ApplySelections(context.Background(), "", nil, []domain.Selection{
		{ID: 0, MediaType: domain.MediaMovie},
		{ID: 3, MediaType: "podcast"},
		movie(7),
		person(8, "Acting"),
	})
	if err != nil {
		t.Fatalf("ApplySelections() error = %v", err)
	}
	if len(view.Selections) != 2 {
		t.Errorf("selections = %+v, want the two valid ones", view.Selections)
	}

	f, _ := store.GetFlock(context.Background(), view.ID)
	entries := f.Entries()
	if len(entries) != 1 || entries[0].SourceType != domain.SourcePersonDirect {
		t.Errorf("entries = %+v, want only the direct person entry", entries)
	}
}

func TestApplySelectionsNothingToDo(t *testing.T) {
	svc := newTestService(newMemStore(), &fakeResolver{})
	if _, err := svc.ApplySelections(context.Background(), "", nil, nil); !errors.Is(err, ErrNoSelections) {
		t.Errorf("error = %v, want ErrNoSelections", err)
	}
}

func TestRemoveSelection(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, &fakeResolver{
		works: map[int64][]domain.Entity{1: domain.PlainEntities(10), 2: domain.PlainEntities(20)},
	})
	ctx := context.Background()

	view, err := svc.ApplySelections(ctx, "", nil, []domain.Selection{movie(1), movie(2)})
	if err != nil {
		t.Fatal(err)
	}
	view, err = svc.RemoveSelection(ctx, view.ID, 1)
	if err != nil {
		t.Fatalf("RemoveSelection() error = %v", err)
	}
	if len(view.Selections) != 1 || len(view.Contributors) != 1 || view.Contributors[0].ID != 20 {
		t.Errorf("view = %+v", view)
	}

	if _, err := svc.RemoveSelection(ctx, "missing", 1); !errors.Is(err, redisstore.ErrNotFound) {
		t.Errorf("RemoveSelection(missing) error = %v, want ErrNotFound", err)
	}
}

func TestGetFlockWritesThrough(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, &fakeResolver{works: map[int64][]domain.Entity{1: domain.PlainEntities(10)}})
	ctx := context.Background()

	view, err := svc.ApplySelections(ctx, "", nil, []domain.Selection{movie(1)})
	if err != nil {
		t.Fatal(err)
	}
	before := store.saves

	if _, err := svc.GetFlock(ctx, view.ID, nil, 0); err != nil {
		t.Fatalf("GetFlock() error = %v", err)
	}
	if store.saves != before+1 {
		t.Errorf("saves = %d, want %d", store.saves, before+1)
	}

	if _, err := svc.GetFlock(ctx, "missing", nil, 0); !errors.Is(err, redisstore.ErrNotFound) {
		t.Errorf("GetFlock(missing) error = %v, want ErrNotFound", err)
	}
}

func TestGetFlockDetails(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, &fakeResolver{
		works: map[int64][]domain.Entity{1: {
			domain.RoleEntity{ID: 10, Department: "Directing"},
			domain.RoleEntity{ID: 20, Department: "Writing"},
			domain.RoleEntity{ID: 30, Department: "Crew"},
		}},
	})
	ctx := context.Background()

	view, err := svc.ApplySelections(ctx, "", nil, []domain.Selection{movie(1)})
	if err != nil {
		t.Fatal(err)
	}

	details := func(_ context.Context, id int64) (any, error) {
		if id == 20 {
			return nil, errors.New("lookup failed")
		}
		return map[string]int64{"id": id}, nil
	}
	got, err := svc.GetFlock(ctx, view.ID, details, 2)
	if err != nil {
		t.Fatalf("GetFlock() error = %v", err)
	}
	if len(got.Contributors) != 2 {
		t.Fatalf("contributors = %+v, want 2", got.Contributors)
	}
	if got.Contributors[0].ID != 10 || got.Contributors[0].Details == nil || got.Contributors[0].LookupFailed {
		t.Errorf("first = %+v", got.Contributors[0])
	}
	if got.Contributors[1].ID != 20 || !got.Contributors[1].LookupFailed || got.Contributors[1].Details != nil {
		t.Errorf("second = %+v, want lookup failure marked", got.Contributors[1])
	}
}

func TestGetFlockWorks(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, &fakeResolver{
		works: map[int64][]domain.Entity{99: domain.PlainEntities(1, 2)},
	})
	ctx := context.Background()

	view, err := svc.ApplySelections(ctx, "", nil, []domain.Selection{movie(99), person(3, "Directing")})
	if err != nil {
		t.Fatal(err)
	}

	filmographies := map[int64][]domain.Work{
		1: {{ID: 99, Title: "Selected"}, {ID: 100, Title: "Shared (low)"}},
		2: {{ID: 100, Title: "Shared (lower)"}},
		3: {{ID: 100, Title: "Shared"}, {ID: 200, Title: "Direct"}},
	}
	lookup := func(_ context.Context, id int64) ([]domain.Work, error) {
		return filmographies[id], nil
	}

	got, err := svc.GetFlockWorks(ctx, view.ID, lookup, 50)
	if err != nil {
		t.Fatalf("GetFlockWorks() error = %v", err)
	}

	want := []int64{100, 200, 99}
	if len(got.Works) != len(want) {
		t.Fatalf("works = %+v", got.Works)
	}
	for i, id := range want {
		if got.Works[i].ID != id {
			t.Fatalf("order = %+v, want %v", got.Works, want)
		}
	}

	// N=2 entries; contributors 1 and 2 share the movie entry, 3 owns the person entry.
	half := 0.5 * 0.5 * math.Log(3)
	full := 1.0 * 0.5 * math.Log(3)
	checks := map[int64]float64{
		100: half + half + full + 0.5,
		200: full + 0.5,
		99:  half * 0.1,
	}
	for _, w := range got.Works {
		if math.Abs(w.Score-checks[w.ID]) > 1e-9 {
			t.Errorf("work %d score = %v, want %v", w.ID, w.Score, checks[w.ID])
		}
	}
	if got.Works[0].Title != "Shared" {
		t.Errorf("display fields should come from the top contributor, got %q", got.Works[0].Title)
	}
	if got.Works[0].ConnectedMemberIDs[0] != 3 {
		t.Errorf("connected members = %v, want 3 first", got.Works[0].ConnectedMemberIDs)
	}
}

func TestGetFlockWorksLimitAndLookupError(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, &fakeResolver{
		works: map[int64][]domain.Entity{1: domain.PlainEntities(10, 20)},
	})
	ctx := context.Background()

	view, err := svc.ApplySelections(ctx, "", nil, []domain.Selection{movie(1)})
	if err != nil {
		t.Fatal(err)
	}

	lookup := func(_ context.Context, id int64) ([]domain.Work, error) {
		return []domain.Work{{ID: id + 1}, {ID: id + 2}}, nil
	}
	got, err := svc.GetFlockWorks(ctx, view.ID, lookup, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Works) != 3 {
		t.Errorf("works = %d, want 3", len(got.Works))
	}

	failing := func(_ context.Context, id int64) ([]domain.Work, error) {
		if id == 20 {
			return nil, errors.New("boom")
		}
		return nil, nil
	}
	if _, err := svc.GetFlockWorks(ctx, view.ID, failing, 50); err == nil {
		t.Error("GetFlockWorks() should fail when a lookup fails")
	}
}

func TestConcurrentApplySelectionsSerialize(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, &fakeResolver{})
	ctx := context.Background()

	view, err := svc.ApplySelections(ctx, "", nil, []domain.Selection{movie(1)})
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for i := int64(2); i < 12; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.ApplySelections(ctx, view.ID, nil, []domain.Selection{movie(i)}); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	f, _ := store.GetFlock(ctx, view.ID)
	if got := len(f.Selections()); got != 11 {
		t.Errorf("selections = %d, want 11 (no lost updates)", got)
	}
}
