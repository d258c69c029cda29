package deps

import (
	"context"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/flickflock/internal/bookmarks"
	"github.com/MrSnakeDoc/flickflock/internal/flock"
	"github.com/MrSnakeDoc/flickflock/internal/logger"
	"github.com/MrSnakeDoc/flickflock/internal/metrics"
	"github.com/MrSnakeDoc/flickflock/internal/provider/omdb"
	"github.com/MrSnakeDoc/flickflock/internal/provider/tmdb"
)

// CacheFlusher drops cached provider responses.
type CacheFlusher interface {
	FlushCache(ctx context.Context) (int, error)
}

type Deps struct {
	Logger        logger.Logger
	StartTime     time.Time
	Version       string
	Commit        string
	BuildDate     string
	GoVersion     string
	TimeNow       func() time.Time // for testing, defaults to time.Now
	AllowedCIDRS  []string         // IPs allowed to access /infra, /metrics and /reload
	TrustProxy    bool             // true if running behind a trusted reverse proxy (e.g., cloudflared)
	RedisClient   *redis.Client    // Redis client connection, nil makes /readyz fail
	Metrics       *metrics.Metrics
	TMDB          *tmdb.Client
	OMDb          *omdb.Client
	Flocks        *flock.Service
	Bookmarks     *bookmarks.Service
	FlockLimit    int    // contributors returned by flock endpoints
	WorksLimit    int    // works returned by the results endpoint
	UserHeader    string // header carrying the anonymous bookmark owner id
	RelationsFile string // empty when the built-in expansion settings are used
	ReloadTrigger chan struct{}
	Cache         CacheFlusher // nil disables POST /cache/flush

	// MutationLimiter guards POST and DELETE API routes, shared across them.
	MutationLimiter func(http.Handler) http.Handler
}
