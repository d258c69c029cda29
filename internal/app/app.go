package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/flickflock/internal/bookmarks"
	"github.com/MrSnakeDoc/flickflock/internal/config"
	"github.com/MrSnakeDoc/flickflock/internal/flock"
	"github.com/MrSnakeDoc/flickflock/internal/httpserver"
	"github.com/MrSnakeDoc/flickflock/internal/httpserver/deps"
	"github.com/MrSnakeDoc/flickflock/internal/locks"
	"github.com/MrSnakeDoc/flickflock/internal/logger"
	"github.com/MrSnakeDoc/flickflock/internal/metrics"
	"github.com/MrSnakeDoc/flickflock/internal/provider"
	"github.com/MrSnakeDoc/flickflock/internal/provider/omdb"
	"github.com/MrSnakeDoc/flickflock/internal/provider/tmdb"
	"github.com/MrSnakeDoc/flickflock/internal/redis"
	"github.com/MrSnakeDoc/flickflock/internal/scheduler"
	"github.com/MrSnakeDoc/flickflock/internal/sources/relations"
	redisstore "github.com/MrSnakeDoc/flickflock/internal/store/redis"
	"github.com/MrSnakeDoc/flickflock/internal/utils"
	"github.com/MrSnakeDoc/flickflock/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	reloader    *scheduler.RelationsReloader
	sweeper     *scheduler.FlockSweeper
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	// Initialize Redis early - fail fast if unavailable
	loggerClient.Infof("Connecting to Redis at %s", cfg.RedisAddr)
	redisClient, err := redis.New(context.Background(), redis.OptionsFromConfig(cfg), loggerClient)
	if err != nil {
		loggerClient.Errorf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	loggerClient.Info("Redis initialized successfully")

	store := redisstore.NewStore(redisClient)
	m := metrics.New()

	tmdbClient := tmdb.New(tmdb.Config{
		BaseURL: cfg.TMDBBaseURL,
		APIKey:  cfg.TMDBAPIKey,
		Fanout:  cfg.FanoutConcurrent,
	}, provider.New(provider.Options{
		Name:     "tmdb",
		Timeout:  cfg.ProviderTimeout,
		RPS:      cfg.ProviderRPS,
		Burst:    cfg.ProviderBurst,
		CacheTTL: cfg.CacheTTL,
		Cache:    store,
		Metrics:  m,
		Logger:   loggerClient,
	}), loggerClient)

	omdbClient := omdb.New(cfg.OMDbBaseURL, cfg.OMDbAPIKey, provider.New(provider.Options{
		Name:     "omdb",
		Timeout:  cfg.ProviderTimeout,
		RPS:      cfg.ProviderRPS,
		Burst:    cfg.ProviderBurst,
		CacheTTL: cfg.CacheTTL,
		Cache:    store,
		Metrics:  m,
		Logger:   loggerClient,
	}), loggerClient)
	if !omdbClient.Enabled() {
		loggerClient.Info("OMDB_API_KEY not set, awards enrichment disabled")
	}

	// Flocks and bookmark lists share one lock table, keys are namespaced.
	km := locks.NewKeyedMutex()

	flocks := flock.NewService(store, flock.NewTMDBResolver(tmdbClient), km, m, loggerClient, flock.Config{
		FlockLimit:        cfg.FlockLimit,
		WorksContributors: cfg.WorksContributors,
		WorksLimit:        cfg.WorksLimit,
		Fanout:            cfg.FanoutConcurrent,
	})
	bookmarkService := bookmarks.NewService(store, km, loggerClient)

	// Create manual reload trigger channel
	reloadTrigger := make(chan struct{}, 1)

	base := relations.DefaultFilter()
	if cfg.RelationsMaxWorks > 0 {
		base.MaxWorks = cfg.RelationsMaxWorks
	}
	if cfg.RelationsMaxCast > 0 {
		base.MaxCastPerWork = cfg.RelationsMaxCast
	}
	reloader := scheduler.NewRelationsReloader(
		cfg.RelationsFile,
		base,
		tmdbClient,
		m,
		loggerClient,
		cfg.ReloadInterval,
		reloadTrigger,
	)

	sweeper := scheduler.NewFlockSweeper(store, m, loggerClient, cfg.GCInterval, cfg.FlockRetention)

	d := deps.Deps{
		Logger:        loggerClient,
		StartTime:     time.Now(),
		Version:       version.Version,
		Commit:        version.Commit,
		BuildDate:     version.BuildDate,
		GoVersion:     version.GoVersion,
		TimeNow:       time.Now,
		AllowedCIDRS:  cfg.AllowedCIDRS,
		TrustProxy:    cfg.TrustProxy,
		RedisClient:   redisClient,
		Metrics:       m,
		TMDB:          tmdbClient,
		OMDb:          omdbClient,
		Flocks:        flocks,
		Bookmarks:     bookmarkService,
		FlockLimit:    cfg.FlockLimit,
		WorksLimit:    cfg.WorksLimit,
		UserHeader:    cfg.BookmarkHeader,
		RelationsFile: cfg.RelationsFile,
		ReloadTrigger: reloadTrigger,
		Cache:         store,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      server,
		redisClient: redisClient,
		reloader:    reloader,
		sweeper:     sweeper,
	}
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting flickflock v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Info(version.String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.reloader.Start(ctx); err != nil {
		return fmt.Errorf("failed to start relations reloader: %w", err)
	}
	a.logger.Info("relations reloader started",
		logger.Duration("interval", a.cfg.ReloadInterval))

	if err := a.sweeper.Start(ctx); err != nil {
		return fmt.Errorf("failed to start flock sweeper: %w", err)
	}
	a.logger.Info("flock sweeper started",
		logger.Duration("interval", a.cfg.GCInterval),
		logger.Duration("retention", a.cfg.FlockRetention))

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	a.reloader.Stop()
	a.sweeper.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	if a.redisClient != nil {
		utils.CloseLogged(a.redisClient, "redis", a.logger)
	}

	a.logger.Info("✅ flickflock stopped cleanly")
	return nil
}
