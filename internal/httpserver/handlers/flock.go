package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/flickflock/internal/domain"
	"github.com/MrSnakeDoc/flickflock/internal/flock"
	"github.com/MrSnakeDoc/flickflock/internal/httpserver/deps"
	"github.com/MrSnakeDoc/flickflock/internal/provider"
)

type flockRequest struct {
	Data []domain.Selection `json:"data"`
	Name *string            `json:"name"`
}

type removeRequest struct {
	SelectionID int64 `json:"selection_id"`
}

type flockResponse struct {
	*flock.View
	RequestStats provider.StatsSnapshot `json:"request_stats"`
}

type worksResponse struct {
	*flock.WorksView
	RequestStats provider.StatsSnapshot `json:"request_stats"`
}

// UpdateFlock applies selections to a flock, creating it when the id is
// absent or unknown.
func UpdateFlock(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req flockRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, d.Logger, err)
			return
		}

		ctx, stats := provider.WithStats(r.Context())
		view, err := d.Flocks.ApplySelections(ctx, chi.URLParam(r, "flockID"), req.Name, req.Data)
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, flockResponse{View: view, RequestStats: stats.Snapshot()})
	}
}

// GetFlock returns a flock with its top contributors.
func GetFlock(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := d.Flocks.GetFlock(r.Context(), chi.URLParam(r, "flockID"), nil, d.FlockLimit)
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, flockResponse{View: view})
	}
}

// FlockDetails returns the top contributors enriched with person details.
func FlockDetails(d deps.Deps) http.HandlerFunc {
	details := flock.ProviderDetails(d.TMDB)
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, stats := provider.WithStats(r.Context())
		view, err := d.Flocks.GetFlock(ctx, chi.URLParam(r, "flockID"), details, d.FlockLimit)
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, flockResponse{View: view, RequestStats: stats.Snapshot()})
	}
}

// FlockResults returns the works ranked for a flock.
func FlockResults(d deps.Deps) http.HandlerFunc {
	lookup := flock.ProviderWorks(d.TMDB, d.Logger)
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, stats := provider.WithStats(r.Context())
		view, err := d.Flocks.GetFlockWorks(ctx, chi.URLParam(r, "flockID"), lookup, d.WorksLimit)
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, worksResponse{WorksView: view, RequestStats: stats.Snapshot()})
	}
}

// RemoveSelection drops a selection and the entries it produced.
func RemoveSelection(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req removeRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		if req.SelectionID <= 0 {
			writeError(w, r, d.Logger, errBadRequest)
			return
		}

		view, err := d.Flocks.RemoveSelection(r.Context(), chi.URLParam(r, "flockID"), req.SelectionID)
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, flockResponse{View: view})
	}
}
