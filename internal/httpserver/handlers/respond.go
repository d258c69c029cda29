package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/MrSnakeDoc/flickflock/internal/bookmarks"
	"github.com/MrSnakeDoc/flickflock/internal/domain"
	"github.com/MrSnakeDoc/flickflock/internal/flock"
	"github.com/MrSnakeDoc/flickflock/internal/logger"
	"github.com/MrSnakeDoc/flickflock/internal/provider"
	"github.com/MrSnakeDoc/flickflock/internal/provider/omdb"
	"github.com/MrSnakeDoc/flickflock/internal/provider/tmdb"
	redisstore "github.com/MrSnakeDoc/flickflock/internal/store/redis"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

var errBadRequest = errors.New("bad request")

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps domain and provider errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, redisstore.ErrNotFound), provider.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, errBadRequest),
		errors.Is(err, flock.ErrNoSelections),
		errors.Is(err, bookmarks.ErrInvalidItem),
		errors.Is(err, tmdb.ErrInvalidMediaType),
		errors.Is(err, tmdb.ErrEmptyQuery):
		return http.StatusBadRequest
	case errors.Is(err, provider.ErrUpstreamUnavailable), errors.Is(err, omdb.ErrDisabled):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, log logger.Logger, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Error("request failed",
			logger.String("path", r.URL.Path),
			logger.Int("status", status),
			logger.Error(err))
	} else {
		log.Debug("request rejected",
			logger.String("path", r.URL.Path),
			logger.Int("status", status),
			logger.Error(err))
	}

	msg := http.StatusText(status)
	if status < http.StatusInternalServerError {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: invalid JSON body: %v", errBadRequest, err)
	}
	return nil
}

func intParam(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid %s %q", errBadRequest, name, raw)
	}
	return id, nil
}

func mediaTypeParam(r *http.Request) (domain.MediaType, error) {
	mt := domain.MediaType(chi.URLParam(r, "media_type"))
	if !mt.Valid() {
		return "", fmt.Errorf("%w: unknown media type %q", errBadRequest, mt)
	}
	return mt, nil
}
