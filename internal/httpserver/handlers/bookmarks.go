package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/flickflock/internal/domain"
	"github.com/MrSnakeDoc/flickflock/internal/httpserver/deps"
)

func bookmarkOwner(d deps.Deps, r *http.Request) (listID, userID string) {
	return strings.TrimSpace(r.URL.Query().Get("list_id")),
		strings.TrimSpace(r.Header.Get(d.UserHeader))
}

// GetBookmarks returns the caller's list, creating an unsaved one if needed.
func GetBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		listID, userID := bookmarkOwner(d, r)
		list, err := d.Bookmarks.Get(r.Context(), listID, userID)
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// AddBookmark adds the item in the body to the caller's list.
func AddBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var item domain.BookmarkItem
		if err := decodeJSON(r, &item); err != nil {
			writeError(w, r, d.Logger, err)
			return
		}

		listID, userID := bookmarkOwner(d, r)
		list, err := d.Bookmarks.Add(r.Context(), listID, userID, item)
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// RemoveBookmark removes a bookmark by media type and id.
func RemoveBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mt, err := mediaTypeParam(r)
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		id, err := intParam(r, "id")
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}

		listID, userID := bookmarkOwner(d, r)
		list, err := d.Bookmarks.Remove(r.Context(), listID, userID, id, mt)
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// SharedBookmarks returns a list by its shareable id.
func SharedBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := d.Bookmarks.Shared(r.Context(), chi.URLParam(r, "listID"))
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}
