// Package bookmarks manages per-user shareable bookmark lists.
package bookmarks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/flickflock/internal/domain"
	"github.com/MrSnakeDoc/flickflock/internal/locks"
	"github.com/MrSnakeDoc/flickflock/internal/logger"
	redisstore "github.com/MrSnakeDoc/flickflock/internal/store/redis"
)

// ErrInvalidItem is returned for items without an id or a known media type.
var ErrInvalidItem = errors.New("invalid bookmark item")

// Store persists bookmark lists.
type Store interface {
	GetBookmarkList(ctx context.Context, listID string) (*domain.BookmarkList, error)
	GetLatestBookmarkList(ctx context.Context, userID string) (*domain.BookmarkList, error)
	SaveBookmarkList(ctx context.Context, list *domain.BookmarkList) error
}

type Service struct {
	store Store
	locks *locks.KeyedMutex
	log   logger.Logger
	now   func() time.Time
}

func NewService(store Store, km *locks.KeyedMutex, log logger.Logger) *Service {
	if km == nil {
		km = locks.NewKeyedMutex()
	}
	return &Service{
		store: store,
		locks: km,
		log:   log.Component("bookmarks"),
		now:   time.Now,
	}
}

// Get resolves a list: by listID, else the latest list of userID, else a
// new unsaved list. A new list is only persisted by its first mutation.
func (s *Service) Get(ctx context.Context, listID, userID string) (*domain.BookmarkList, error) {
	if listID != "" {
		list, err := s.store.GetBookmarkList(ctx, listID)
		if err == nil {
			return list, nil
		}
		if !errors.Is(err, redisstore.ErrNotFound) {
			return nil, err
		}
	}

	if userID != "" {
		list, err := s.store.GetLatestBookmarkList(ctx, userID)
		if err == nil {
			return list, nil
		}
		if !errors.Is(err, redisstore.ErrNotFound) {
			return nil, err
		}
	}

	return domain.NewBookmarkList(userID), nil
}

// Shared returns a list by id only. Unknown ids yield redisstore.ErrNotFound.
func (s *Service) Shared(ctx context.Context, listID string) (*domain.BookmarkList, error) {
	return s.store.GetBookmarkList(ctx, listID)
}

// Add bookmarks item; duplicates by (id, media type) are ignored.
func (s *Service) Add(ctx context.Context, listID, userID string, item domain.BookmarkItem) (*domain.BookmarkList, error) {
	if item.ID <= 0 || !item.MediaType.Valid() {
		return nil, fmt.Errorf("%w: id=%d media_type=%q", ErrInvalidItem, item.ID, item.MediaType)
	}
	return s.mutate(ctx, listID, userID, func(l *domain.BookmarkList) bool {
		return l.Add(item)
	})
}

// Remove drops the bookmark with the given id and media type.
func (s *Service) Remove(ctx context.Context, listID, userID string, id int64, mediaType domain.MediaType) (*domain.BookmarkList, error) {
	return s.mutate(ctx, listID, userID, func(l *domain.BookmarkList) bool {
		return l.Remove(id, mediaType)
	})
}

func (s *Service) mutate(ctx context.Context, listID, userID string, apply func(*domain.BookmarkList) bool) (*domain.BookmarkList, error) {
	list, err := s.Get(ctx, listID, userID)
	if err != nil {
		return nil, err
	}

	unlock, err := s.locks.Lock(ctx, "bookmarks:"+list.ListID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	// Re-read under the lock so concurrent writers on one list do not lose updates.
	if fresh, err := s.store.GetBookmarkList(ctx, list.ListID); err == nil {
		list = fresh
	} else if !errors.Is(err, redisstore.ErrNotFound) {
		return nil, err
	}

	if !apply(list) && !list.UpdatedAt.IsZero() {
		return list, nil
	}

	list.UpdatedAt = s.now().UTC()
	if err := s.store.SaveBookmarkList(ctx, list); err != nil {
		return nil, err
	}
	s.log.Debug("bookmark list saved",
		logger.String("list_id", list.ListID),
		logger.Int("items", len(list.Items)))
	return list, nil
}
