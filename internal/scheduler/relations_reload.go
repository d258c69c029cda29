package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/flickflock/internal/logger"
	"github.com/MrSnakeDoc/flickflock/internal/metrics"
	"github.com/MrSnakeDoc/flickflock/internal/sources/relations"
)

// FilterSink receives reloaded relation filters.
type FilterSink interface {
	SetRelationFilter(f relations.Filter)
}

// RelationsReloader handles periodic reloading of the person expansion settings
type RelationsReloader struct {
	loader        *relations.Loader
	base          relations.Filter
	sink          FilterSink
	metrics       *metrics.Metrics
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	manualTrigger chan struct{}
}

// NewRelationsReloader creates a new relations reloader. An empty file path
// applies base once and never reloads.
func NewRelationsReloader(
	relationsFile string,
	base relations.Filter,
	sink FilterSink,
	m *metrics.Metrics,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *RelationsReloader {
	var loader *relations.Loader
	if relationsFile != "" {
		loader = relations.NewLoader(relationsFile)
	}
	return &RelationsReloader{
		loader:        loader,
		base:          base,
		sink:          sink,
		metrics:       m,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start applies the settings immediately, then reloads them on every tick
// and on manual trigger.
func (rr *RelationsReloader) Start(ctx context.Context) error {
	rr.sink.SetRelationFilter(rr.base)

	if rr.loader == nil {
		rr.logger.Info("no relations file configured, using built-in expansion settings")
		go rr.drainTriggers(ctx)
		return nil
	}

	if err := rr.Reload(ctx); err != nil {
		return fmt.Errorf("initial relations reload failed: %w", err)
	}

	ticker := time.NewTicker(rr.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := rr.Reload(ctx); err != nil {
					rr.logger.Error("failed to reload relations", logger.Error(err))
				}
			case <-rr.manualTrigger:
				rr.logger.Info("manual relations reload triggered")
				if err := rr.Reload(ctx); err != nil {
					rr.logger.Error("failed to reload relations", logger.Error(err))
				}
			case <-rr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// drainTriggers keeps POST /reload from blocking when there is nothing to reload.
func (rr *RelationsReloader) drainTriggers(ctx context.Context) {
	for {
		select {
		case <-rr.manualTrigger:
			rr.logger.Info("manual reload ignored, no relations file configured")
		case <-rr.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Stop stops the reloader
func (rr *RelationsReloader) Stop() {
	close(rr.stopCh)
}

// Reload reads the relations file and publishes the merged filter. On error
// the previous filter stays in place.
func (rr *RelationsReloader) Reload(_ context.Context) error {
	if rr.loader == nil {
		return nil
	}
	rr.logger.Info("reloading relations", logger.String("file", rr.loader.Path()))

	file, err := rr.loader.Load()
	if err != nil {
		rr.metrics.RelationsReload(false)
		return fmt.Errorf("failed to load relations: %w", err)
	}

	filter, err := relations.Merge(rr.base, file)
	if err != nil {
		rr.metrics.RelationsReload(false)
		return fmt.Errorf("failed to map relations: %w", err)
	}

	rr.sink.SetRelationFilter(filter)
	rr.metrics.RelationsReload(true)

	rr.logger.Info("relations reloaded",
		logger.Int("max_works", filter.MaxWorks),
		logger.Int("max_cast_per_work", filter.MaxCastPerWork),
		logger.String("key_departments", fmt.Sprint(filter.Departments())))

	return nil
}
