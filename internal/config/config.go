package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// defaultAllowedOrigins are the web client origins served out of the box.
var defaultAllowedOrigins = []string{
	"http://localhost:8080",
	"http://localhost:5173",
	"http://localhost:4173",
	"https://flickflock.pages.dev",
}

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s
	RequestTimeout  time.Duration // per-request timeout, provider fan-out included (ex: 60s)

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Metadata providers
	TMDBAPIKey       string        // required
	TMDBBaseURL      string        // ex: https://api.themoviedb.org/3
	OMDbAPIKey       string        // optional, empty = awards enrichment disabled
	OMDbBaseURL      string        // ex: https://www.omdbapi.com/
	ProviderTimeout  time.Duration // HTTP timeout for a single provider call
	ProviderRPS      float64       // sustained provider requests per second
	ProviderBurst    int           // provider burst size
	CacheTTL         time.Duration // provider response cache TTL (default: 7 days)
	RelationsFile    string        // optional YAML relation filter settings
	ReloadInterval   time.Duration // interval to reload the relations file
	FanoutConcurrent int           // max parallel provider lookups per request

	// Ranking
	FlockLimit          int // contributors returned by flock endpoints
	WorksContributors   int // contributors whose filmographies are pulled
	WorksLimit          int // works returned by the results endpoint
	RelationsMaxWorks   int // works expanded per direct person
	RelationsMaxCast    int // cast members kept per expanded work
	GCInterval          time.Duration
	FlockRetention      time.Duration // flocks untouched for longer are swept, 0 = keep forever
	BookmarkHeader      string        // header carrying the anonymous user id
	AllowedOrigins      []string      // CORS origins
	RateLimitBurst      int           // mutation rate limit burst per IP
	RateLimitRefillPerM int           // mutation rate limit refill per IP per minute

	// Redis
	RedisAddr             string        // ex: "localhost:6379"
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => require password, false => allow empty password
	RedisDB               int           // Redis DB number
	RedisDT               time.Duration // Redis dial timeout (ex: 5s)
	RedisRT               time.Duration // Redis read timeout (ex: 3s)
	RedisWT               time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait          time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout      time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize         int           // Redis connection pool size
	RedisConnectTimeout   time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval    time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold    int           // warn after this many attempts

	AllowedCIDRS []string // optional, restrict /infra, /metrics and /reload to specific IPs
	TrustProxy   bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("FLICKFLOCK_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("FLICKFLOCK_SHUTDOWN_TIMEOUT", 5*time.Second),
		RequestTimeout:  mustDuration("FLICKFLOCK_REQUEST_TIMEOUT", 60*time.Second),

		// Logging
		LogLevel:  getenv("FLICKFLOCK_LOG_LEVEL", "info"),
		PrettyLog: mustBool("FLICKFLOCK_PRETTY_LOG", true),

		// Providers
		TMDBAPIKey:       requireEnv("TMDB_API_KEY"),
		TMDBBaseURL:      getenv("TMDB_BASE_URL", "https://api.themoviedb.org/3"),
		OMDbAPIKey:       getenv("OMDB_API_KEY", ""),
		OMDbBaseURL:      getenv("OMDB_BASE_URL", "https://www.omdbapi.com/"),
		ProviderTimeout:  mustDuration("FLICKFLOCK_PROVIDER_TIMEOUT", 10*time.Second),
		ProviderRPS:      getenvFloat("FLICKFLOCK_PROVIDER_RPS", 40),
		ProviderBurst:    getenvInt("FLICKFLOCK_PROVIDER_BURST", 20),
		CacheTTL:         mustDuration("FLICKFLOCK_CACHE_TTL", 7*24*time.Hour),
		RelationsFile:    getenv("FLICKFLOCK_RELATIONS_FILE", ""),
		ReloadInterval:   mustDuration("FLICKFLOCK_RELOAD_INTERVAL", time.Hour),
		FanoutConcurrent: getenvInt("FLICKFLOCK_FANOUT_CONCURRENCY", 4),

		// Ranking
		FlockLimit:          getenvInt("FLICKFLOCK_FLOCK_LIMIT", 25),
		WorksContributors:   getenvInt("FLICKFLOCK_WORKS_CONTRIBUTORS", 10),
		WorksLimit:          getenvInt("FLICKFLOCK_WORKS_LIMIT", 50),
		RelationsMaxWorks:   getenvInt("FLICKFLOCK_RELATIONS_MAX_WORKS", 10),
		RelationsMaxCast:    getenvInt("FLICKFLOCK_RELATIONS_MAX_CAST", 15),
		GCInterval:          mustDuration("FLICKFLOCK_GC_INTERVAL", 24*time.Hour),
		FlockRetention:      mustDuration("FLICKFLOCK_FLOCK_RETENTION", 0),
		BookmarkHeader:      getenv("FLICKFLOCK_USER_HEADER", "X-User-Id"),
		AllowedOrigins:      getenvSlice("FLICKFLOCK_ALLOWED_ORIGINS", defaultAllowedOrigins),
		RateLimitBurst:      getenvInt("FLICKFLOCK_RATE_LIMIT_BURST", 20),
		RateLimitRefillPerM: getenvInt("FLICKFLOCK_RATE_LIMIT_PER_MIN", 60),

		// Redis settings
		RedisAddr:             requireEnv("FLICKFLOCK_REDIS_ADDR"),
		RedisUser:             getenv("FLICKFLOCK_REDIS_USERNAME", "default"),
		RedisPasswordRequired: mustBool("FLICKFLOCK_REDIS_PASSWORD_REQUIRED", false),
		RedisPassword:         getenv("FLICKFLOCK_REDIS_PASSWORD", ""),
		RedisDB:               getenvInt("FLICKFLOCK_REDIS_DB", 0),
		RedisDT:               mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:               mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:               mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:          mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:      mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:         getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout:   mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:    mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:    getenvInt("REDIS_WARN_THRESHOLD", 3),

		// Access restrictions
		AllowedCIDRS: parseAllowedIPs(getenv("FLICKFLOCK_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("FLICKFLOCK_TRUST_PROXY", true),
	}

	// Validate Redis password configuration
	if cfg.RedisPasswordRequired && cfg.RedisPassword == "" {
		panic("❌ FATAL: FLICKFLOCK_REDIS_PASSWORD is required when FLICKFLOCK_REDIS_PASSWORD_REQUIRED=true")
	}

	if cfg.FanoutConcurrent < 1 {
		cfg.FanoutConcurrent = 1
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		cfgCopy.RedisPassword = "***REDACTED***"
		cfgCopy.TMDBAPIKey = "***REDACTED***"
		if cfg.OMDbAPIKey != "" {
			cfgCopy.OMDbAPIKey = "***REDACTED***"
		}
		if cfg.RedisUser != "" {
			cfgCopy.RedisUser = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getenvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			return f
		}
	}
	return def
}

func getenvSlice(key string, def []string) []string {
	if parts := splitAndTrim(os.Getenv(key)); len(parts) > 0 {
		return parts
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
