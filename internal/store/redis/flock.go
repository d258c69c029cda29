package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/flickflock/internal/domain"
)

// SaveFlock overwrites the whole flock record. Last write wins.
func (s *Store) SaveFlock(ctx context.Context, f *domain.Flock) error {
	data, err := json.Marshal(f.Snapshot())
	if err != nil {
		return fmt.Errorf("failed to marshal flock: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, FlockKey(f.ID()), data, 0)
	pipe.SAdd(ctx, AllFlocksKey(), f.ID())
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save flock: %w", err)
	}

	return nil
}

// GetFlock loads a flock by ID, returning ErrNotFound when absent.
func (s *Store) GetFlock(ctx context.Context, id string) (*domain.Flock, error) {
	data, err := s.client.Get(ctx, FlockKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("flock %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get flock: %w", err)
	}

	var snap domain.FlockSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal flock: %w", err)
	}
	if snap.ID == "" {
		snap.ID = id
	}

	return domain.RestoreFlock(snap), nil
}

// GetAllFlockIDs returns every tracked flock ID.
func (s *Store) GetAllFlockIDs(ctx context.Context) ([]string, error) {
	ids, err := s.client.SMembers(ctx, AllFlocksKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get flock IDs: %w", err)
	}
	return ids, nil
}

// DeleteFlock removes a flock record and untracks its ID.
func (s *Store) DeleteFlock(ctx context.Context, id string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, FlockKey(id))
	pipe.SRem(ctx, AllFlocksKey(), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete flock: %w", err)
	}
	return nil
}
