// Package flock orchestrates flock mutations, scoring and work ranking
// on top of the domain model, the aggregate store and the metadata provider.
package flock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MrSnakeDoc/flickflock/internal/domain"
	"github.com/MrSnakeDoc/flickflock/internal/locks"
	"github.com/MrSnakeDoc/flickflock/internal/logger"
	"github.com/MrSnakeDoc/flickflock/internal/metrics"
	redisstore "github.com/MrSnakeDoc/flickflock/internal/store/redis"
)

// ErrNoSelections is returned when a mutation carries nothing to apply.
var ErrNoSelections = errors.New("no selections to apply")

// Store persists flock aggregates.
type Store interface {
	GetFlock(ctx context.Context, id string) (*domain.Flock, error)
	SaveFlock(ctx context.Context, f *domain.Flock) error
}

// Resolver turns selections into contributors.
type Resolver interface {
	WorkContributors(ctx context.Context, mediaType domain.MediaType, id int64) ([]domain.Entity, error)
	PersonRelations(ctx context.Context, personID int64) ([]domain.Entity, error)
}

// DetailsFunc fetches display details of a contributor.
type DetailsFunc func(ctx context.Context, id int64) (any, error)

// WorksFunc fetches the filmography of a contributor.
type WorksFunc func(ctx context.Context, id int64) ([]domain.Work, error)

// Config bounds the rankings.
type Config struct {
	FlockLimit        int // contributors shown for a flock
	WorksContributors int // contributors whose works are fetched
	WorksLimit        int // works returned
	Fanout            int // parallel provider lookups
}

// Service applies selections to flocks and ranks their contributors and works.
type Service struct {
	store    Store
	resolver Resolver
	locks    *locks.KeyedMutex
	metrics  *metrics.Metrics
	log      logger.Logger
	cfg      Config
	now      func() time.Time
}

// NewService wires a Service.
func NewService(store Store, resolver Resolver, km *locks.KeyedMutex, m *metrics.Metrics, log logger.Logger, cfg Config) *Service {
	if cfg.Fanout < 1 {
		cfg.Fanout = 1
	}
	if km == nil {
		km = locks.NewKeyedMutex()
	}
	if m == nil {
		m = metrics.New()
	}
	return &Service{
		store:    store,
		resolver: resolver,
		locks:    km,
		metrics:  m,
		log:      log.Component("flock"),
		cfg:      cfg,
		now:      time.Now,
	}
}

// RankedContributor is a scored contributor, optionally with details.
type RankedContributor struct {
	ID           int64   `json:"id"`
	Score        float64 `json:"score"`
	Details      any     `json:"details,omitempty"`
	LookupFailed bool    `json:"lookup_failed,omitempty"`
}

// View is a flock as returned to clients.
type View struct {
	ID           string              `json:"flock_id"`
	Name         string              `json:"flock_name"`
	Selections   []domain.Selection  `json:"selection"`
	Contributors []RankedContributor `json:"flock"`
}

// WorksView is a flock with its ranked works.
type WorksView struct {
	ID         string              `json:"flock_id"`
	Name       string              `json:"flock_name"`
	Selections []domain.Selection  `json:"selection"`
	Works      []domain.ScoredWork `json:"flock_works"`
}

func newView(f *domain.Flock, ranked []RankedContributor) *View {
	return &View{
		ID:           f.ID(),
		Name:         f.Name(),
		Selections:   f.Selections(),
		Contributors: ranked,
	}
}

func plainRanking(scored []domain.ScoredContributor) []RankedContributor {
	out := make([]RankedContributor, len(scored))
	for i, s := range scored {
		out[i] = RankedContributor{ID: s.ID, Score: s.Score}
	}
	return out
}

// ─────────────────────────────
// Scoring
// ─────────────────────────────

// ScoreFlock persists f and then scores its entries. The caller holds the
// flock's lock.
func (s *Service) ScoreFlock(ctx context.Context, f *domain.Flock) ([]domain.ScoredContributor, error) {
	if err := s.store.SaveFlock(ctx, f); err != nil {
		return nil, fmt.Errorf("persist flock %s: %w", f.ID(), err)
	}

	start := time.Now()
	scored := domain.ScoreEntries(f.Entries())
	s.metrics.ScoringDuration(time.Since(start))
	return scored, nil
}

// Open loads a flock and writes it through under its lock, then returns
// it with its scores. Everything after Open runs unlocked on this copy.
func (s *Service) Open(ctx context.Context, id string) (*domain.Flock, []domain.ScoredContributor, error) {
	unlock, err := s.locks.Lock(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	defer unlock()

	f, err := s.store.GetFlock(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	scored, err := s.ScoreFlock(ctx, f)
	if err != nil {
		return nil, nil, err
	}
	return f, scored, nil
}

// GetFlock returns the top limit contributors of a flock (0 = all). With a
// details func each contributor is enriched; a failed lookup only marks
// that contributor.
func (s *Service) GetFlock(ctx context.Context, id string, details DetailsFunc, limit int) (*View, error) {
	f, scored, err := s.Open(ctx, id)
	if err != nil {
		return nil, err
	}
	top := domain.TopContributors(scored, limit)
	if details == nil {
		return newView(f, plainRanking(top)), nil
	}

	ranked := plainRanking(top)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Fanout)
	for i := range ranked {
		g.Go(func() error {
			d, err := details(gctx, ranked[i].ID)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				s.log.Warn("contributor details lookup failed",
					logger.Int64("contributor_id", ranked[i].ID),
					logger.Error(err))
				ranked[i].LookupFailed = true
				return nil
			}
			ranked[i].Details = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return newView(f, ranked), nil
}

// GetFlockWorks ranks the works of the top contributors. Filmographies are
// fetched in parallel and merged in score order. A lookup error fails the
// whole ranking.
func (s *Service) GetFlockWorks(ctx context.Context, id string, lookup WorksFunc, limit int) (*WorksView, error) {
	f, scored, err := s.Open(ctx, id)
	if err != nil {
		return nil, err
	}

	top := domain.TopContributors(scored, s.cfg.WorksContributors)
	lists := make([]domain.ContributorWorks, len(top))

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Fanout)
	for i, c := range top {
		g.Go(func() error {
			works, err := lookup(gctx, c.ID)
			if err != nil {
				return fmt.Errorf("works of contributor %d: %w", c.ID, err)
			}
			lists[i] = domain.ContributorWorks{Contributor: c, Works: works}
			return nil
		})
	}
	err = g.Wait()
	s.metrics.WorksFanout(time.Since(start))
	if err != nil {
		return nil, err
	}

	ranked := domain.RankWorks(lists, domain.RankContext{
		DirectPersons: f.DirectPersonIDs(),
		SelectedWorks: f.SelectedWorkIDs(),
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}

	return &WorksView{
		ID:         f.ID(),
		Name:       f.Name(),
		Selections: f.Selections(),
		Works:      ranked,
	}, nil
}

// ─────────────────────────────
// Mutations
// ─────────────────────────────

// ApplySelections records selections on the flock id, creating a new flock
// when id is empty or unknown, and returns its top contributors. Invalid
// selections are skipped; a selection whose contributors cannot be fetched
// is recorded without an entry.
func (s *Service) ApplySelections(ctx context.Context, id string, name *string, selections []domain.Selection) (*View, error) {
	if len(selections) == 0 && name == nil {
		return nil, ErrNoSelections
	}

	valid := make([]domain.Selection, 0, len(selections))
	for _, sel := range selections {
		if !sel.Valid() {
			s.log.Warn("skipping invalid selection",
				logger.Int64("id", sel.ID),
				logger.String("media_type", string(sel.MediaType)))
			continue
		}
		valid = append(valid, sel)
	}

	// Provider calls happen before taking the lock.
	resolved := s.resolve(ctx, valid)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, unlock, err := s.loadOrCreate(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if name != nil {
		f.SetName(*name)
	}
	for i, sel := range valid {
		f.UpdateSelection(sel)
		for _, r := range resolved[i] {
			f.AddToFlock(r.entities, sel.ID, r.source)
		}
	}

	scored, err := s.ScoreFlock(ctx, f)
	if err != nil {
		return nil, err
	}
	s.metrics.FlockMutation("add")
	s.log.Info("selections applied",
		logger.String("flock_id", f.ID()),
		logger.Int("selections", len(valid)),
		logger.Int("entries", len(f.Entries())))

	return newView(f, plainRanking(domain.TopContributors(scored, s.cfg.FlockLimit))), nil
}

// RemoveSelection drops a selection and its entries from an existing flock.
func (s *Service) RemoveSelection(ctx context.Context, id string, selectionID int64) (*View, error) {
	unlock, err := s.locks.Lock(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	f, err := s.store.GetFlock(ctx, id)
	if err != nil {
		return nil, err
	}

	if f.RemoveSelection(selectionID) {
		s.metrics.FlockMutation("remove")
	}
	scored, err := s.ScoreFlock(ctx, f)
	if err != nil {
		return nil, err
	}

	return newView(f, plainRanking(domain.TopContributors(scored, s.cfg.FlockLimit))), nil
}

// loadOrCreate returns the flock for id under its lock. Unknown ids get a
// fresh flock with a new id, as does an empty id.
func (s *Service) loadOrCreate(ctx context.Context, id string) (*domain.Flock, func(), error) {
	if id != "" {
		unlock, err := s.locks.Lock(ctx, id)
		if err != nil {
			return nil, nil, err
		}
		f, err := s.store.GetFlock(ctx, id)
		if err == nil {
			return f, unlock, nil
		}
		unlock()
		if !errors.Is(err, redisstore.ErrNotFound) {
			return nil, nil, err
		}
		s.log.Info("unknown flock id, starting a new flock", logger.String("requested_id", id))
	}

	f := domain.NewFlock("")
	unlock, err := s.locks.Lock(ctx, f.ID())
	if err != nil {
		return nil, nil, err
	}
	s.metrics.FlockMutation("create")
	return f, unlock, nil
}

type resolvedEntry struct {
	entities []domain.Entity
	source   domain.SourceType
}

// resolve fetches the entries of each selection in parallel. Slot i holds
// the entries of selections[i] in the order they must be appended.
func (s *Service) resolve(ctx context.Context, selections []domain.Selection) [][]resolvedEntry {
	out := make([][]resolvedEntry, len(selections))

	var g errgroup.Group
	g.SetLimit(s.cfg.Fanout)
	for i, sel := range selections {
		g.Go(func() error {
			out[i] = s.resolveOne(ctx, sel)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (s *Service) resolveOne(ctx context.Context, sel domain.Selection) []resolvedEntry {
	if sel.MediaType == domain.MediaPerson {
		entries := []resolvedEntry{{
			entities: []domain.Entity{domain.RoleEntity{ID: sel.ID, KnownForDepartment: sel.KnownForDepartment}},
			source:   domain.SourcePersonDirect,
		}}

		related, err := s.resolver.PersonRelations(ctx, sel.ID)
		if err != nil {
			s.log.Warn("person relations unavailable",
				logger.Int64("person_id", sel.ID), logger.Error(err))
			return entries
		}
		others := make([]domain.Entity, 0, len(related))
		for _, e := range related {
			if e.EntityID() != sel.ID {
				others = append(others, e)
			}
		}
		if len(others) > 0 {
			entries = append(entries, resolvedEntry{entities: others, source: domain.SourcePersonTransitive})
		}
		return entries
	}

	people, err := s.resolver.WorkContributors(ctx, sel.MediaType, sel.ID)
	if err != nil {
		s.log.Warn("work contributors unavailable",
			logger.Int64("work_id", sel.ID),
			logger.String("media_type", string(sel.MediaType)),
			logger.Error(err))
		return nil
	}
	if len(people) == 0 {
		return nil
	}
	return []resolvedEntry{{entities: people, source: domain.SourceForMedia(sel.MediaType)}}
}
