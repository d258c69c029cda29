package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/MrSnakeDoc/flickflock/internal/domain"
	"github.com/MrSnakeDoc/flickflock/internal/httpserver/deps"
	"github.com/MrSnakeDoc/flickflock/internal/logger"
	"github.com/MrSnakeDoc/flickflock/internal/provider"
	"github.com/MrSnakeDoc/flickflock/internal/provider/omdb"
	"github.com/MrSnakeDoc/flickflock/internal/provider/tmdb"
)

type searchResponse struct {
	Query        string                 `json:"query"`
	Results      []tmdb.SearchResult    `json:"results"`
	RequestStats provider.StatsSnapshot `json:"request_stats"`
}

// Search returns provider search results re-ranked by title match.
func Search(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, stats := provider.WithStats(r.Context())
		query := strings.TrimSpace(r.URL.Query().Get("q"))

		results, err := d.TMDB.Search(ctx, query)
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}

		d.Logger.Debug("search request",
			logger.String("query", query),
			logger.Int("results", len(results)))

		writeJSON(w, http.StatusOK, searchResponse{
			Query:        query,
			Results:      results,
			RequestStats: stats.Snapshot(),
		})
	}
}

type personResponse struct {
	*tmdb.Person
	RequestStats provider.StatsSnapshot `json:"request_stats"`
}

// Person returns a person with combined credits.
func Person(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := intParam(r, "id")
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}

		ctx, stats := provider.WithStats(r.Context())
		p, err := d.TMDB.GetPersonByID(ctx, id)
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}

		writeJSON(w, http.StatusOK, personResponse{Person: p, RequestStats: stats.Snapshot()})
	}
}

type mediaPeopleResponse struct {
	ID           int64                  `json:"id"`
	MediaType    domain.MediaType       `json:"media_type"`
	People       []tmdb.PersonCredit    `json:"people"`
	RequestStats provider.StatsSnapshot `json:"request_stats"`
}

// MediaPeople returns the cast then crew of a movie or show.
func MediaPeople(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mt, err := mediaTypeParam(r)
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		id, err := intParam(r, "id")
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}

		ctx, stats := provider.WithStats(r.Context())
		people, err := d.TMDB.GetPeopleByMedia(ctx, mt, id)
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}

		writeJSON(w, http.StatusOK, mediaPeopleResponse{
			ID:           id,
			MediaType:    mt,
			People:       people,
			RequestStats: stats.Snapshot(),
		})
	}
}

type awardsResponse struct {
	ID           int64                  `json:"id"`
	MediaType    domain.MediaType       `json:"media_type"`
	ImdbID       string                 `json:"imdb_id"`
	Awards       omdb.Awards            `json:"awards"`
	RequestStats provider.StatsSnapshot `json:"request_stats"`
}

// Awards resolves the IMDb id of a work and returns its parsed OMDb awards.
func Awards(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.OMDb == nil || !d.OMDb.Enabled() {
			writeError(w, r, d.Logger, omdb.ErrDisabled)
			return
		}
		mt, err := mediaTypeParam(r)
		if err == nil && !mt.IsWork() {
			err = fmt.Errorf("%w: awards exist for movies and shows only", errBadRequest)
		}
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		id, err := intParam(r, "id")
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}

		ctx, stats := provider.WithStats(r.Context())
		ext, err := d.TMDB.GetExternalIDs(ctx, mt, id)
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		awards, err := d.OMDb.Awards(ctx, ext.ImdbID)
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}

		writeJSON(w, http.StatusOK, awardsResponse{
			ID:           id,
			MediaType:    mt,
			ImdbID:       ext.ImdbID,
			Awards:       awards,
			RequestStats: stats.Snapshot(),
		})
	}
}
