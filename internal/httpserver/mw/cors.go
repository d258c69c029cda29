package mw

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS allows the web clients in origins to call the API.
func CORS(origins []string, userHeader string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", userHeader},
		MaxAge:         300,
	})
}
