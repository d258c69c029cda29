package redis

import (
	"strconv"

	"github.com/cespare/xxhash/v2"
)

const (
	// KeyPrefixFlock is the prefix for flock records
	KeyPrefixFlock = "flickflock:flock:"
	// KeyAllFlocks is the key for the set of all flock IDs
	KeyAllFlocks = "flickflock:flocks:all"

	// KeyPrefixBookmarkList is the prefix for bookmark list records
	KeyPrefixBookmarkList = "flickflock:bookmarks:list:"
	// KeyPrefixUserLists is the prefix for a user's lists, scored by update time
	KeyPrefixUserLists = "flickflock:bookmarks:user:"

	// KeyPrefixCache is the prefix for provider response cache keys
	KeyPrefixCache = "flickflock:cache:"
)

// FlockKey returns the Redis key for a flock by ID
func FlockKey(id string) string {
	return KeyPrefixFlock + id
}

// AllFlocksKey returns the key for the set of all flock IDs
func AllFlocksKey() string {
	return KeyAllFlocks
}

// BookmarkListKey returns the Redis key for a bookmark list
func BookmarkListKey(listID string) string {
	return KeyPrefixBookmarkList + listID
}

// UserListsKey returns the sorted set of list ids owned by userID
func UserListsKey(userID string) string {
	return KeyPrefixUserLists + userID
}

// CacheKey returns the Redis key for a cached provider response.
// The request URL is hashed so keys stay short and never leak API keys.
func CacheKey(requestURL string) string {
	return KeyPrefixCache + strconv.FormatUint(xxhash.Sum64String(requestURL), 16)
}
