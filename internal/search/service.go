package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/maltedev/marketplace-search/internal/cache"
	"github.com/maltedev/marketplace-search/internal/models"
	"github.com/maltedev/marketplace-search/internal/ranking"
	"github.com/maltedev/marketplace-search/internal/scraper"
)

var (
	ErrUnknownSite = errors.New("unknown site")
	ErrEmptyQuery  = errors.New("query is empty")
)

// Executor runs one query against a single site.
type Executor interface {
	Search(ctx context.Context, query string) (*scraper.Batch, error)
}

type Cache interface {
	Get(ctx context.Context, site, query string) ([]models.ItemRecord, error)
	Set(ctx context.Context, site, query string, records []models.ItemRecord) error
}

type History interface {
	Save(ctx context.Context, run *models.SearchRun) error
}

type Publisher interface {
	PublishSearchCompleted(ctx context.Context, run *models.SearchRun) error
}

type Request struct {
	Site  string
	Query string
	// Limit overrides the service default when positive.
	Limit int
}

type Option func(*Service)

func WithCache(c Cache) Option {
	return func(s *Service) { s.cache = c }
}

func WithHistory(h History) Option {
	return func(s *Service) { s.history = h }
}

func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

func WithDefaultSite(site string) Option {
	return func(s *Service) { s.defaultSite = site }
}

// Service resolves a site, runs its executor and ranks the result. Cache,
// history and publisher are optional and their failures never fail a search.
type Service struct {
	executors   map[string]Executor
	limit       int
	defaultSite string
	cache       Cache
	history     History
	publisher   Publisher
	logger      *slog.Logger
}

func NewService(limit int, logger *slog.Logger, opts ...Option) *Service {
	if limit < 1 {
		limit = ranking.DefaultLimit
	}
	s := &Service{
		executors: make(map[string]Executor),
		limit:     limit,
		logger:    logger.With("component", "search_service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Register(site string, executor Executor) {
	s.executors[site] = executor
	if s.defaultSite == "" {
		s.defaultSite = site
	}
}

func (s *Service) Sites() []string {
	sites := make([]string, 0, len(s.executors))
	for name := range s.executors {
		sites = append(sites, name)
	}
	slices.Sort(sites)
	return sites
}

func (s *Service) Search(ctx context.Context, req Request) (*models.SearchRun, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	site := req.Site
	if site == "" {
		site = s.defaultSite
	}
	executor, ok := s.executors[site]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSite, site)
	}

	limit := s.limit
	if req.Limit > 0 {
		limit = req.Limit
	}

	run := models.NewSearchRun(site, query)

	ranked, hit := s.cached(ctx, site, query)
	if hit {
		run.FromCache = true
		run.Scraped = len(ranked)
	} else {
		batch, err := executor.Search(ctx, query)
		if err != nil {
			return nil, err
		}
		run.Scraped = len(batch.Records)
		run.Dropped = len(batch.Failures)

		// The cache holds the full filtered ordering so any limit can be served from it.
		ranked = ranking.New(0).Rank(batch.Records, query)
		if s.cache != nil {
			if err := s.cache.Set(ctx, site, query, ranked); err != nil {
				s.logger.Warn("failed to cache results", "site", site, "query", query, "error", err)
			}
		}
	}

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	run.Items = ranked
	run.Duration = time.Since(run.StartedAt)

	s.logger.Info("search completed",
		"run_id", run.ID,
		"site", site,
		"query", query,
		"items", len(run.Items),
		"dropped", run.Dropped,
		"from_cache", run.FromCache,
		"duration", run.Duration)

	s.record(ctx, run)
	return run, nil
}

func (s *Service) cached(ctx context.Context, site, query string) ([]models.ItemRecord, bool) {
	if s.cache == nil {
		return nil, false
	}
	records, err := s.cache.Get(ctx, site, query)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn("failed to read cache", "site", site, "query", query, "error", err)
		}
		return nil, false
	}
	return records, true
}

func (s *Service) record(ctx context.Context, run *models.SearchRun) {
	if s.history != nil {
		if err := s.history.Save(ctx, run); err != nil {
			s.logger.Warn("failed to save search history", "run_id", run.ID, "error", err)
		}
	}
	if s.publisher != nil {
		if err := s.publisher.PublishSearchCompleted(ctx, run); err != nil {
			s.logger.Warn("failed to publish search event", "run_id", run.ID, "error", err)
		}
	}
}
