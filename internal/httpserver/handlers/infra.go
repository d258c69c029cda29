package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/flickflock/internal/httpserver/deps"
)

type componentStatus struct {
	OK     bool   `json:"ok"`
	Mode   string `json:"mode,omitempty"`
	Impact string `json:"impact,omitempty"`
	Error  string `json:"error,omitempty"`
}

type relationsStatus struct {
	Source         string   `json:"source"`
	MaxWorks       int      `json:"max_works"`
	MaxCastPerWork int      `json:"max_cast_per_work"`
	KeyDepartments []string `json:"key_departments"`
}

type infraResponse struct {
	Mode       string                     `json:"mode"`
	Components map[string]componentStatus `json:"components"`
	Relations  relationsStatus            `json:"relations"`
}

func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		components := map[string]componentStatus{
			"redis": checkRedis(r.Context(), d),
			"tmdb":  breakerStatus(d.TMDB.BreakerState(), "recommendations-unavailable"),
			"omdb":  checkOMDb(d),
		}

		filter := d.TMDB.RelationFilter()
		source := "built-in"
		if d.RelationsFile != "" {
			source = d.RelationsFile
		}

		writeJSON(w, http.StatusOK, infraResponse{
			Mode:       determineMode(components),
			Components: components,
			Relations: relationsStatus{
				Source:         source,
				MaxWorks:       filter.MaxWorks,
				MaxCastPerWork: filter.MaxCastPerWork,
				KeyDepartments: filter.Departments(),
			},
		})
	}
}

func determineMode(components map[string]componentStatus) string {
	if !components["redis"].OK || !components["tmdb"].OK {
		return "critical"
	}
	if !components["omdb"].OK {
		return "degraded"
	}
	return "optimal"
}

func breakerStatus(state, impact string) componentStatus {
	switch state {
	case "closed":
		return componentStatus{OK: true, Mode: state}
	case "half-open":
		return componentStatus{OK: true, Mode: state, Impact: "probing"}
	default:
		return componentStatus{OK: false, Mode: state, Impact: impact}
	}
}

func checkOMDb(d deps.Deps) componentStatus {
	if d.OMDb == nil || !d.OMDb.Enabled() {
		return componentStatus{OK: false, Mode: "disabled", Impact: "awards-unavailable"}
	}
	return componentStatus{OK: true, Mode: "enabled"}
}

func checkRedis(ctx context.Context, d deps.Deps) componentStatus {
	if d.RedisClient == nil {
		return componentStatus{
			OK:     false,
			Mode:   "down",
			Impact: "flocks-unavailable",
			Error:  "client not initialized",
		}
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := d.RedisClient.Ping(ctx).Err(); err != nil {
		return componentStatus{
			OK:     false,
			Mode:   "down",
			Impact: "flocks-unavailable",
			Error:  "timeout",
		}
	}

	return componentStatus{OK: true, Mode: "optimal"}
}
