package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/flickflock/internal/domain"
)

// SaveBookmarkList stores a list and indexes it under its owner by update time.
func (s *Store) SaveBookmarkList(ctx context.Context, list *domain.BookmarkList) error {
	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("failed to marshal bookmark list: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, BookmarkListKey(list.ListID), data, 0)
	pipe.ZAdd(ctx, UserListsKey(list.UserID), redis.Z{
		Score:  float64(list.UpdatedAt.UnixMilli()),
		Member: list.ListID,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save bookmark list: %w", err)
	}

	return nil
}

// GetBookmarkList retrieves a list by its shareable ID.
func (s *Store) GetBookmarkList(ctx context.Context, listID string) (*domain.BookmarkList, error) {
	data, err := s.client.Get(ctx, BookmarkListKey(listID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("bookmark list %s: %w", listID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get bookmark list: %w", err)
	}

	var list domain.BookmarkList
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("failed to unmarshal bookmark list: %w", err)
	}
	if list.Items == nil {
		list.Items = []domain.BookmarkItem{}
	}

	return &list, nil
}

// GetLatestBookmarkList returns the most recently updated list of userID.
func (s *Store) GetLatestBookmarkList(ctx context.Context, userID string) (*domain.BookmarkList, error) {
	ids, err := s.client.ZRevRange(ctx, UserListsKey(userID), 0, 0).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get lists of user: %w", err)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("bookmark lists of %s: %w", userID, ErrNotFound)
	}
	return s.GetBookmarkList(ctx, ids[0])
}
