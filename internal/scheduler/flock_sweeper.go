package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/flickflock/internal/domain"
	"github.com/MrSnakeDoc/flickflock/internal/logger"
	"github.com/MrSnakeDoc/flickflock/internal/metrics"
	redisstore "github.com/MrSnakeDoc/flickflock/internal/store/redis"
)

// FlockStore is the subset of the aggregate store the sweeper needs.
type FlockStore interface {
	GetAllFlockIDs(ctx context.Context) ([]string, error)
	GetFlock(ctx context.Context, id string) (*domain.Flock, error)
	DeleteFlock(ctx context.Context, id string) error
}

// FlockSweeper deletes flocks that have not been updated within the retention window
type FlockSweeper struct {
	store     FlockStore
	metrics   *metrics.Metrics
	logger    logger.Logger
	interval  time.Duration
	retention time.Duration
	now       func() time.Time
	stopCh    chan struct{}
}

// NewFlockSweeper creates a new sweeper. A zero retention disables sweeping.
func NewFlockSweeper(
	store FlockStore,
	m *metrics.Metrics,
	log logger.Logger,
	interval time.Duration,
	retention time.Duration,
) *FlockSweeper {
	return &FlockSweeper{
		store:     store,
		metrics:   m,
		logger:    log,
		interval:  interval,
		retention: retention,
		now:       time.Now,
		stopCh:    make(chan struct{}),
	}
}

// Start begins the periodic sweep
func (fs *FlockSweeper) Start(ctx context.Context) error {
	if fs.retention <= 0 {
		fs.logger.Info("flock retention disabled")
		return nil
	}

	if _, err := fs.Sweep(ctx); err != nil {
		fs.logger.Warn("initial flock sweep failed", logger.Error(err))
	}

	ticker := time.NewTicker(fs.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if _, err := fs.Sweep(ctx); err != nil {
					fs.logger.Error("flock sweep failed", logger.Error(err))
				}
			case <-fs.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the sweeper
func (fs *FlockSweeper) Stop() {
	close(fs.stopCh)
}

// Sweep removes every flock last updated before now - retention and returns
// how many were deleted. Failures on single flocks are logged and skipped.
func (fs *FlockSweeper) Sweep(ctx context.Context) (int, error) {
	if fs.retention <= 0 {
		return 0, nil
	}

	ids, err := fs.store.GetAllFlockIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list flocks: %w", err)
	}

	cutoff := fs.now().Add(-fs.retention)
	deleted := 0

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return deleted, err
		}

		f, err := fs.store.GetFlock(ctx, id)
		switch {
		case errors.Is(err, redisstore.ErrNotFound):
			// Tracked id without a record, untrack it.
		case err != nil:
			fs.logger.Warn("failed to read flock during sweep",
				logger.String("flock_id", id), logger.Error(err))
			continue
		case f.UpdatedAt().IsZero() || !f.UpdatedAt().Before(cutoff):
			continue
		}

		if err := fs.store.DeleteFlock(ctx, id); err != nil {
			fs.logger.Warn("failed to delete flock",
				logger.String("flock_id", id), logger.Error(err))
			continue
		}
		deleted++
	}

	fs.metrics.FlocksSwept(deleted)
	if deleted > 0 {
		fs.logger.Info("flock sweep completed",
			logger.Int("deleted", deleted),
			logger.Int("scanned", len(ids)))
	} else {
		fs.logger.Debug("no flocks to sweep")
	}

	return deleted, nil
}
