package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// CacheResponse stores a provider response body under its request URL.
func (s *Store) CacheResponse(ctx context.Context, requestURL string, body []byte, ttl time.Duration) error {
	if err := s.client.Set(ctx, CacheKey(requestURL), body, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache response: %w", err)
	}
	return nil
}

// GetCachedResponse returns the cached body, or ok=false on a cache miss.
func (s *Store) GetCachedResponse(ctx context.Context, requestURL string) (body []byte, ok bool, err error) {
	body, err = s.client.Get(ctx, CacheKey(requestURL)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil // Cache miss
		}
		return nil, false, fmt.Errorf("failed to get cached response: %w", err)
	}
	return body, true, nil
}

// FlushCache removes all cached provider responses and reports how many were dropped.
func (s *Store) FlushCache(ctx context.Context) (int, error) {
	removed := 0
	iter := s.client.Scan(ctx, 0, KeyPrefixCache+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return removed, fmt.Errorf("failed to delete cache key: %w", err)
		}
		removed++
	}
	if err := iter.Err(); err != nil {
		return removed, fmt.Errorf("failed to flush cache: %w", err)
	}
	return removed, nil
}
