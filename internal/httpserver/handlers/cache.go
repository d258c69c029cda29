package handlers

import (
	"errors"
	"net/http"

	"github.com/MrSnakeDoc/flickflock/internal/httpserver/deps"
	"github.com/MrSnakeDoc/flickflock/internal/logger"
)

type flushResponse struct {
	Removed int `json:"removed"`
}

// FlushCache drops every cached provider response, e.g. after TMDB data fixes.
func FlushCache(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.Cache == nil {
			writeError(w, r, d.Logger, errors.New("response cache not configured"))
			return
		}

		removed, err := d.Cache.FlushCache(r.Context())
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}

		d.Logger.Info("provider cache flushed",
			logger.Int("removed", removed),
			logger.String("remote_ip", r.RemoteAddr))
		writeJSON(w, http.StatusOK, flushResponse{Removed: removed})
	}
}
