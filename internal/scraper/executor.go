package scraper

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/maltedev/marketplace-search/internal/models"
	"golang.org/x/sync/errgroup"
)

const DefaultDetailConcurrency = 4

// Batch is the unranked output of one results page. Records keep the order
// their fragments had on the page.
type Batch struct {
	URL        string
	Records    []models.ItemRecord
	Enumerated int
	Failures   []error
}

// Executor runs a query against one site: it fetches the results page,
// enumerates listing fragments and extracts them with bounded concurrency.
type Executor struct {
	site        Site
	docs        Documents
	extractor   *Extractor
	concurrency int
	logger      *slog.Logger
}

func NewExecutor(site Site, docs Documents, concurrency int, logger *slog.Logger) *Executor {
	if concurrency < 1 {
		concurrency = DefaultDetailConcurrency
	}
	return &Executor{
		site:        site,
		docs:        docs,
		extractor:   NewExtractor(site, docs, logger),
		concurrency: concurrency,
		logger:      logger.With("component", "search_executor", "site", site.Name()),
	}
}

func (e *Executor) Site() Site {
	return e.site
}

// Search fails only when the results page itself cannot be retrieved.
// Listings whose extraction fails are dropped and reported in Failures.
func (e *Executor) Search(ctx context.Context, query string) (*Batch, error) {
	searchURL := e.site.SearchURL(query)
	e.logger.Info("scraping search results", "query", query, "url", searchURL)

	doc, err := e.docs.Document(ctx, searchURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch results page: %w", err)
	}

	frags := e.site.Fragments(doc)
	e.logger.Info("found listings", "count", len(frags))

	records := make([]*models.ItemRecord, len(frags))
	errs := make([]error, len(frags))

	var g errgroup.Group
	g.SetLimit(e.concurrency)
	for i, frag := range frags {
		i, frag := i, frag
		g.Go(func() error {
			records[i], errs[i] = e.extractor.Extract(ctx, frag)
			return nil
		})
	}
	g.Wait()

	batch := &Batch{
		URL:        searchURL,
		Records:    make([]models.ItemRecord, 0, len(frags)),
		Enumerated: len(frags),
	}
	for i := range frags {
		if errs[i] != nil {
			e.logger.Warn("dropping listing", "position", i, "error", errs[i])
			batch.Failures = append(batch.Failures, errs[i])
			continue
		}
		batch.Records = append(batch.Records, *records[i])
	}

	e.logger.Info("extracted listings", "kept", len(batch.Records), "dropped", len(batch.Failures))
	return batch, nil
}
