package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/flickflock/internal/httpserver/deps"
	"github.com/MrSnakeDoc/flickflock/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/flickflock/internal/httpserver/mw"
)

func init() { Register("ops", registerOps) }

// registerOps mounts the operational endpoints. Probes stay open, the
// rest is CIDR-restricted.
func registerOps(r chi.Router, d deps.Deps) {
	r.Get("/healthz", handlers.Healthz(d))
	r.Get("/readyz", handlers.Readyz(d))

	restricted := r.With(mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger))
	restricted.Get("/infra", handlers.Infra(d))
	restricted.Post("/reload", handlers.Reload(d))
	restricted.Post("/cache/flush", handlers.FlushCache(d))
	if d.Metrics != nil {
		restricted.Method("GET", "/metrics", d.Metrics.Handler())
	}
}
