package domain

import (
	"time"

	"github.com/google/uuid"
)

// BookmarkItem is a bookmarked movie or show. Items are unique by (ID, MediaType).
type BookmarkItem struct {
	ID         int64     `json:"id"`
	MediaType  MediaType `json:"media_type"`
	Title      string    `json:"title,omitempty"`
	PosterPath string    `json:"poster_path,omitempty"`
	Overview   string    `json:"overview,omitempty"`
}

// BookmarkList is a shareable list of bookmarks owned by one user id.
type BookmarkList struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ListID is the shareable identifier of the list.
	ListID string `json:"list_id"`

	// UserID is the anonymous owner id sent by the client.
	UserID string `json:"user_id"`

	// ─────────────────────────────
	// Content
	// ─────────────────────────────

	Items []BookmarkItem `json:"items"`

	// UpdatedAt orders a user's lists, the most recent one is loaded by default.
	UpdatedAt time.Time `json:"updated_at"`
}

// NewBookmarkList creates an empty list. An empty userID gets a fresh one.
func NewBookmarkList(userID string) *BookmarkList {
	if userID == "" {
		userID = uuid.NewString()
	}
	return &BookmarkList{
		ListID: uuid.NewString(),
		UserID: userID,
		Items:  []BookmarkItem{},
	}
}

// Contains reports whether an item with the same id and media type exists.
func (l *BookmarkList) Contains(id int64, mediaType MediaType) bool {
	for _, it := range l.Items {
		if it.ID == id && it.MediaType == mediaType {
			return true
		}
	}
	return false
}

// Add appends item unless already bookmarked. It reports whether the list changed.
func (l *BookmarkList) Add(item BookmarkItem) bool {
	if l.Contains(item.ID, item.MediaType) {
		return false
	}
	l.Items = append(l.Items, item)
	return true
}

// Remove drops the item with the given id and media type. It reports whether the list changed.
func (l *BookmarkList) Remove(id int64, mediaType MediaType) bool {
	items := l.Items[:0:0]
	for _, it := range l.Items {
		if it.ID == id && it.MediaType == mediaType {
			continue
		}
		items = append(items, it)
	}
	changed := len(items) != len(l.Items)
	l.Items = items
	return changed
}
