package scheduler

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/MrSnakeDoc/flickflock/internal/logger"
	"github.com/MrSnakeDoc/flickflock/internal/metrics"
	"github.com/MrSnakeDoc/flickflock/internal/sources/relations"
)

type filterRecorder struct {
	mu      sync.Mutex
	filters []relations.Filter
}

func (r *filterRecorder) SetRelationFilter(f relations.Filter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.filters = append(r.filters, f)
}

func (r *filterRecorder) last() relations.Filter {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.filters[len(r.filters)-1]
}

func writeRelations(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestRelationsReloader_Reload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "relations.yaml")
	writeRelations(t, path, "person_expansion:\n  max_works: 3\n")

	sink := &filterRecorder{}
	rr := NewRelationsReloader(path, relations.DefaultFilter(), sink, metrics.New(), logger.Nop(), time.Hour, make(chan struct{}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := rr.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer rr.Stop()

	if got := sink.last().MaxWorks; got != 3 {
		t.Errorf("MaxWorks = %d, want 3", got)
	}

	// A broken file keeps the previous filter.
	writeRelations(t, path, "person_expansion:\n  max_works: -1\n")
	if err := rr.Reload(ctx); err == nil {
		t.Error("Reload() should reject negative max_works")
	}
	if got := sink.last().MaxWorks; got != 3 {
		t.Errorf("MaxWorks after failed reload = %d, want 3", got)
	}
}

func TestRelationsReloader_ManualTrigger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "relations.yaml")
	writeRelations(t, path, "person_expansion:\n  max_works: 3\n")

	sink := &filterRecorder{}
	trigger := make(chan struct{})
	rr := NewRelationsReloader(path, relations.DefaultFilter(), sink, metrics.New(), logger.Nop(), time.Hour, trigger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := rr.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer rr.Stop()

	writeRelations(t, path, "person_expansion:\n  max_works: 8\n")
	trigger <- struct{}{}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if sink.last().MaxWorks == 8 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Errorf("MaxWorks = %d after manual trigger, want 8", sink.last().MaxWorks)
}

func TestRelationsReloader_NoFile(t *testing.T) {
	base := relations.DefaultFilter()
	base.MaxCastPerWork = 5

	sink := &filterRecorder{}
	trigger := make(chan struct{})
	rr := NewRelationsReloader("", base, sink, metrics.New(), logger.Nop(), time.Hour, trigger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := rr.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer rr.Stop()

	if got := sink.last().MaxCastPerWork; got != 5 {
		t.Errorf("MaxCastPerWork = %d, want base value 5", got)
	}
	// Must not block.
	trigger <- struct{}{}
}

func TestRelationsReloader_MissingFileFailsStart(t *testing.T) {
	rr := NewRelationsReloader(filepath.Join(t.TempDir(), "absent.yaml"), relations.DefaultFilter(),
		&filterRecorder{}, metrics.New(), logger.Nop(), time.Hour, make(chan struct{}))
	if err := rr.Start(context.Background()); err == nil {
		t.Error("Start() should fail when the relations file cannot be read")
	}
}
