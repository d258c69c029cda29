package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/flickflock/internal/httpserver/deps"
	"github.com/MrSnakeDoc/flickflock/internal/httpserver/handlers"
)

func init() { Register("bookmarks", registerBookmarks) }

func registerBookmarks(r chi.Router, d deps.Deps) {
	r.Get("/api/bookmarks", handlers.GetBookmarks(d))
	r.Get("/api/bookmarks/list/{listID}", handlers.SharedBookmarks(d))

	mut := r.With(mutationLimiter(d)...)
	mut.Post("/api/bookmarks", handlers.AddBookmark(d))
	mut.Delete("/api/bookmarks/{media_type}/{id}", handlers.RemoveBookmark(d))
}

// mutationLimiter returns the shared write limiter, if configured.
func mutationLimiter(d deps.Deps) []Middleware {
	if d.MutationLimiter == nil {
		return nil
	}
	return []Middleware{d.MutationLimiter}
}
