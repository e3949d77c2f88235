package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/maltedev/marketplace-search/internal/models"
)

// Extractor turns one listing fragment into an ItemRecord, following the
// listing link for seller statistics when the site requires it.
type Extractor struct {
	site   Site
	docs   Documents
	logger *slog.Logger
}

func NewExtractor(site Site, docs Documents, logger *slog.Logger) *Extractor {
	return &Extractor{
		site:   site,
		docs:   docs,
		logger: logger.With("component", "item_extractor", "site", site.Name()),
	}
}

// Extract returns a *models.MissingFieldError when a required anchor is
// absent and the detail page's *models.TransportError when it cannot be
// fetched. Unparseable numeric fields are left nil. If ctx ends while the
// detail page is loading, the record comes back without seller statistics.
func (e *Extractor) Extract(ctx context.Context, frag FragmentReader) (*models.ItemRecord, error) {
	title, ok := frag.Title()
	if !ok {
		return nil, &models.MissingFieldError{Field: "title"}
	}

	record := &models.ItemRecord{Title: title}

	priceText, ok := frag.PriceText()
	if !ok {
		return nil, &models.MissingFieldError{Field: "price"}
	}
	if price, err := ParsePrice(priceText); err != nil {
		e.logger.Warn("unparseable price", "title", title, "error", err)
	} else {
		record.PriceDollars = &price
	}

	itemURL, hasURL := frag.ItemURL()
	if hasURL {
		record.ItemURL = itemURL
	}

	if !e.site.NeedsDetail() {
		return record, nil
	}
	if !hasURL {
		return nil, &models.MissingFieldError{Field: "item_url"}
	}

	doc, err := e.docs.Document(ctx, itemURL)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			e.logger.Warn("detail fetch abandoned", "title", title, "error", err)
			return record, nil
		}
		return nil, fmt.Errorf("failed to fetch detail page for %q: %w", title, err)
	}

	e.enrich(record, e.site.Detail(doc))
	return record, nil
}

func (e *Extractor) enrich(record *models.ItemRecord, detail DetailReader) {
	record.RatingAverage = RatingAverage(detail.RatingValues())

	for _, info := range detail.SellerInfo() {
		info = strings.TrimSpace(info)

		if strings.Contains(info, "%") {
			pct, err := ParsePercentage(info)
			if err != nil {
				e.logger.Warn("unparseable feedback percentage", "title", record.Title, "error", err)
				continue
			}
			if record.PositiveFeedbackPercentage != nil {
				e.logger.Debug("duplicate feedback percentage, keeping last", "title", record.Title, "value", info)
			}
			record.PositiveFeedbackPercentage = &pct
			continue
		}

		qty, err := models.ParseQuantity(info)
		if err != nil {
			e.logger.Warn("unparseable quantity sold", "title", record.Title, "error", err)
			continue
		}
		if record.QuantitySold != nil {
			e.logger.Debug("duplicate quantity sold, keeping last", "title", record.Title, "value", info)
		}
		record.QuantitySold = &qty
	}
}
