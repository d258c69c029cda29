package routes

import (
	"net/http"
	"slices"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/flickflock/internal/httpserver/deps"
	"github.com/MrSnakeDoc/flickflock/internal/logger"
)

type (
	Registrar  func(r chi.Router, d deps.Deps)
	Middleware = func(http.Handler) http.Handler
)

type entry struct {
	name string
	reg  Registrar
	mws  []Middleware
}

var registry []entry

// Register adds a named group of routes, run with optional middlewares.
// Route files call it from init().
func Register(name string, reg Registrar, mws ...Middleware) {
	registry = append(registry, entry{name: name, reg: reg, mws: mws})
}

// RegisterAll mounts every registered group in name order, so the
// result does not depend on file init order.
func RegisterAll(r chi.Router, d deps.Deps) {
	entries := slices.Clone(registry)
	slices.SortFunc(entries, func(a, b entry) int { return strings.Compare(a.name, b.name) })

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.name)
		if len(e.mws) == 0 {
			e.reg(r, d)
			continue
		}
		e.reg(r.With(e.mws...), d)
	}

	if d.Logger != nil {
		d.Logger.Debug("routes registered", logger.String("groups", strings.Join(names, ",")))
	}
}
