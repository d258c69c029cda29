package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/flickflock/internal/httpserver/deps"
	"github.com/MrSnakeDoc/flickflock/internal/httpserver/handlers"
)

func init() { Register("catalog", registerCatalog) }

func registerCatalog(r chi.Router, d deps.Deps) {
	r.Get("/api/search", handlers.Search(d))
	r.Get("/api/person/{id}", handlers.Person(d))
	r.Get("/api/{media_type}/{id}", handlers.MediaPeople(d))
	r.Get("/api/{media_type}/{id}/awards", handlers.Awards(d))
}
