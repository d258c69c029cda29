// Package provider holds the HTTP plumbing shared by the metadata provider
// clients: response cache, rate limiting, circuit breaking and accounting.
package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/MrSnakeDoc/flickflock/internal/logger"
	"github.com/MrSnakeDoc/flickflock/internal/metrics"
	"github.com/MrSnakeDoc/flickflock/internal/utils"
)

// ErrUpstreamUnavailable wraps every failure that is the provider's fault:
// transport errors, 5xx, rate limiting and an open circuit.
var ErrUpstreamUnavailable = errors.New("upstream unavailable")

const maxBodyBytes = 8 << 20

// StatusError is a non-2xx answer that is the caller's fault (4xx).
type StatusError struct {
	Provider string
	Code     int
	Message  string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: status %d: %s", e.Provider, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: status %d", e.Provider, e.Code)
}

// IsNotFound reports whether err is a provider 404.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == http.StatusNotFound
}

// Cache is a read-through store for raw response bodies.
type Cache interface {
	GetCachedResponse(ctx context.Context, key string) ([]byte, bool, error)
	CacheResponse(ctx context.Context, key string, body []byte, ttl time.Duration) error
}

// Options configures a Client.
type Options struct {
	Name       string        // provider label for logs, metrics and the breaker
	Timeout    time.Duration // per-call HTTP timeout
	RPS        float64       // sustained upstream requests per second
	Burst      int
	CacheTTL   time.Duration
	Cache      Cache // optional
	Metrics    *metrics.Metrics
	Logger     logger.Logger
	HTTPClient *http.Client // optional, overrides Timeout
}

// Client performs cached, rate-limited, circuit-broken GET requests.
type Client struct {
	name     string
	http     *http.Client
	limiter  *rate.Limiter
	breaker  *gobreaker.CircuitBreaker[[]byte]
	cache    Cache
	cacheTTL time.Duration
	metrics  *metrics.Metrics
	log      logger.Logger
}

// New builds a provider client.
func New(opts Options) *Client {
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New()
	}
	if opts.Burst < 1 {
		opts.Burst = 1
	}
	limit := rate.Inf
	if opts.RPS > 0 {
		limit = rate.Limit(opts.RPS)
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	c := &Client{
		name:     opts.Name,
		http:     httpClient,
		limiter:  rate.NewLimiter(limit, opts.Burst),
		cache:    opts.Cache,
		cacheTTL: opts.CacheTTL,
		metrics:  opts.Metrics,
		log:      opts.Logger.Component("provider").With(logger.String("provider", opts.Name)),
	}

	c.metrics.BreakerState(opts.Name, 0)
	c.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        opts.Name,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		// Client errors say nothing about upstream health.
		IsSuccessful: func(err error) bool {
			var se *StatusError
			return err == nil || errors.As(err, &se) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.log.Warn("circuit breaker state change",
				logger.String("from", from.String()),
				logger.String("to", to.String()))
			c.metrics.BreakerState(name, stateValue(to))
			c.metrics.BreakerTransition(name, from.String(), to.String())
		},
	})

	return c
}

// Name returns the provider label.
func (c *Client) Name() string {
	return c.name
}

// BreakerState returns "closed", "half-open" or "open".
func (c *Client) BreakerState() string {
	return c.breaker.State().String()
}

// GetJSON fetches requestURL and decodes the body into out. cacheKey
// identifies the request in the response cache and must not carry secrets.
func (c *Client) GetJSON(ctx context.Context, requestURL, cacheKey string, out any) error {
	stats := StatsFrom(ctx)

	if body, ok := c.cached(ctx, cacheKey); ok {
		if err := json.Unmarshal(body, out); err == nil {
			stats.addCached()
			c.metrics.ProviderRequest(c.name, metrics.OutcomeCached)
			return nil
		}
		c.log.Warn("discarding undecodable cache entry", logger.String("key", cacheKey))
	}

	body, err := c.fetch(ctx, requestURL)
	if err != nil {
		stats.addFailed()
		return err
	}
	stats.addUpstream()

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", c.name, err)
	}

	if c.cache != nil && cacheKey != "" {
		if err := c.cache.CacheResponse(ctx, cacheKey, body, c.cacheTTL); err != nil {
			c.log.Warn("failed to cache response", logger.Error(err))
		}
	}
	return nil
}

func (c *Client) cached(ctx context.Context, key string) ([]byte, bool) {
	if c.cache == nil || key == "" {
		return nil, false
	}
	body, ok, err := c.cache.GetCachedResponse(ctx, key)
	if err != nil {
		c.log.Warn("cache lookup failed", logger.Error(err))
		return nil, false
	}
	return body, ok
}

func (c *Client) fetch(ctx context.Context, requestURL string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		c.metrics.ProviderRequest(c.name, metrics.OutcomeFailed)
		return nil, fmt.Errorf("%s: rate limiter: %w", c.name, err)
	}

	start := time.Now()
	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.do(ctx, requestURL)
	})
	c.metrics.ProviderLatency(c.name, time.Since(start))

	switch {
	case err == nil:
		c.metrics.ProviderRequest(c.name, metrics.OutcomeUpstream)
		return body, nil
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		c.metrics.ProviderRequest(c.name, metrics.OutcomeRejected)
		return nil, fmt.Errorf("%s: %w: %w", c.name, ErrUpstreamUnavailable, err)
	default:
		c.metrics.ProviderRequest(c.name, metrics.OutcomeFailed)
		return nil, err
	}
}

func (c *Client) do(ctx context.Context, requestURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", c.name, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%s: %w: %w", c.name, ErrUpstreamUnavailable, stripURL(err))
	}
	defer utils.Close(resp.Body)

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%s: %w: read body: %w", c.name, ErrUpstreamUnavailable, err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return body, nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, fmt.Errorf("%s: %w: status %d", c.name, ErrUpstreamUnavailable, resp.StatusCode)
	default:
		return nil, &StatusError{Provider: c.name, Code: resp.StatusCode, Message: statusMessage(body)}
	}
}

// statusMessage extracts the error text TMDB and OMDb put in their bodies.
func statusMessage(body []byte) string {
	var payload struct {
		StatusMessage string `json:"status_message"`
		Error         string `json:"Error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if payload.StatusMessage != "" {
		return payload.StatusMessage
	}
	return payload.Error
}

// stripURL drops the request URL (and the api key in it) from transport errors.
func stripURL(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return ue.Err
	}
	return err
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
