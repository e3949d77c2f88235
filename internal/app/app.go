package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/maltedev/marketplace-search/internal/api"
	"github.com/maltedev/marketplace-search/internal/browser"
	"github.com/maltedev/marketplace-search/internal/cache"
	"github.com/maltedev/marketplace-search/internal/config"
	"github.com/maltedev/marketplace-search/internal/database"
	"github.com/maltedev/marketplace-search/internal/events"
	"github.com/maltedev/marketplace-search/internal/fetch"
	"github.com/maltedev/marketplace-search/internal/ratelimit"
	"github.com/maltedev/marketplace-search/internal/scraper"
	"github.com/maltedev/marketplace-search/internal/search"
	"github.com/redis/go-redis/v9"
)

// App holds the wired search service and the resources it owns.
type App struct {
	Service *search.Service
	// History is nil unless the database is enabled.
	History *database.HistoryRepository
	Checks  map[string]api.HealthCheck

	closers []func()
	logger  *slog.Logger
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	a := &App{
		Checks: make(map[string]api.HealthCheck),
		logger: logger,
	}

	fetcher, err := a.fetcher(cfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	var opts []search.Option
	opts = append(opts, search.WithDefaultSite(cfg.Search.DefaultSite))

	if cfg.Database.Enabled {
		db, err := database.New(ctx, database.Config{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			Database: cfg.Database.DBName,
			SSLMode:  cfg.Database.SSLMode,
			MaxConns: int32(cfg.Database.MaxConns),
		})
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		a.closers = append(a.closers, db.Close)

		if err := db.EnsureSchema(ctx); err != nil {
			a.Close()
			return nil, err
		}

		a.History = database.NewHistoryRepository(db)
		a.Checks["database"] = func(ctx context.Context) error { return db.Pool().Ping(ctx) }
		opts = append(opts, search.WithHistory(a.History))
	}

	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		a.closers = append(a.closers, func() { redisClient.Close() })

		if err := redisClient.Ping(ctx).Err(); err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}

		a.Checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
		opts = append(opts,
			search.WithCache(cache.NewResultCache(redisClient, cfg.Redis.CacheTTL, logger)),
			search.WithPublisher(events.NewPublisher(redisClient, logger)),
		)
	}

	a.Service = search.NewService(cfg.Search.ResultLimit, logger, opts...)

	sites := []scraper.Site{
		scraper.NewEbay(cfg.Search.EbayEndpoint),
		scraper.NewAmazon(cfg.Search.AmazonEndpoint),
	}
	for _, site := range sites {
		var clientOpts []fetch.Option
		if limiter := newLimiter(cfg.HTTP); limiter != nil {
			clientOpts = append(clientOpts, fetch.WithRateLimiter(limiter))
		}
		if cfg.Output.DumpDir != "" {
			clientOpts = append(clientOpts, fetch.WithDumpDir(cfg.Output.DumpDir))
		}

		client := fetch.NewClient(site.Name(), fetcher, logger, clientOpts...)
		a.Service.Register(site.Name(), scraper.NewExecutor(site, client, cfg.Search.DetailConcurrency, logger))
	}

	return a, nil
}

func (a *App) fetcher(cfg *config.Config) (fetch.Fetcher, error) {
	if !cfg.HTTP.UseBrowser {
		return fetch.NewHTTPFetcher(fetch.HTTPOptions{
			UserAgent: cfg.HTTP.UserAgent,
			Timeout:   cfg.HTTP.Timeout,
		}), nil
	}

	b, err := browser.New(&browser.Options{
		Headless:       cfg.Browser.Headless,
		Timeout:        cfg.Browser.Timeout,
		UserAgent:      cfg.HTTP.UserAgent,
		ViewportWidth:  cfg.Browser.ViewportWidth,
		ViewportHeight: cfg.Browser.ViewportHeight,
		AcceptLanguage: cfg.Browser.AcceptLanguage,
		TimezoneID:     cfg.Browser.TimezoneID,
		Locale:         cfg.Browser.Locale,
	}, a.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize browser: %w", err)
	}
	a.closers = append(a.closers, func() {
		if err := b.Close(); err != nil {
			a.logger.Warn("failed to close browser", "error", err)
		}
	})
	return b, nil
}

// newLimiter returns nil when pacing is off.
func newLimiter(cfg config.HTTPConfig) ratelimit.RateLimiter {
	if cfg.RateLimitMax <= 0 {
		return nil
	}
	if cfg.Adaptive {
		return ratelimit.NewAdaptiveRateLimiter(cfg.RateLimitMin, cfg.RateLimitMax)
	}
	return ratelimit.NewSimpleRateLimiter(cfg.RateLimitMin, cfg.RateLimitMax)
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
