package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/flickflock/internal/httpserver/deps"
	"github.com/MrSnakeDoc/flickflock/internal/httpserver/handlers"
)

func init() { Register("flock", registerFlock) }

func registerFlock(r chi.Router, d deps.Deps) {
	r.Get("/api/flock/{flockID}", handlers.GetFlock(d))
	r.Get("/api/flock/{flockID}/details", handlers.FlockDetails(d))
	r.Get("/api/flock/{flockID}/results", handlers.FlockResults(d))

	mut := r.With(mutationLimiter(d)...)
	mut.Post("/api/flock", handlers.UpdateFlock(d))
	mut.Post("/api/flock/{flockID}", handlers.UpdateFlock(d))
	mut.Post("/api/flock/{flockID}/remove", handlers.RemoveSelection(d))
}
