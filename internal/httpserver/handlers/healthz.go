package handlers

import (
	"net/http"
	"time"

	"github.com/MrSnakeDoc/flickflock/internal/httpserver/deps"
	"github.com/MrSnakeDoc/flickflock/internal/logger"
)

type healthzResponse struct {
	Status        string  `json:"status"`
	Service       string  `json:"service"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	Version       string  `json:"version,omitempty"`
	Commit        string  `json:"commit,omitempty"`
	BuildDate     string  `json:"build_date,omitempty"`
	GoVersion     string  `json:"go_version,omitempty"`
	TMDBBreaker   string  `json:"tmdb_breaker,omitempty"`
}

// Healthz is the liveness probe. It never touches Redis or the providers;
// the breaker state is read from memory.
func Healthz(d deps.Deps) http.HandlerFunc {
	now := d.TimeNow
	if now == nil {
		now = time.Now
	}
	return func(w http.ResponseWriter, _ *http.Request) {
		resp := healthzResponse{
			Status:        "ok",
			Service:       logger.ServiceName,
			UptimeSeconds: now().Sub(d.StartTime).Round(time.Second).Seconds(),
			Version:       d.Version,
			Commit:        d.Commit,
			BuildDate:     d.BuildDate,
			GoVersion:     d.GoVersion,
		}
		if d.TMDB != nil {
			resp.TMDBBreaker = d.TMDB.BreakerState()
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
