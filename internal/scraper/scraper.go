package scraper

import (
	"context"

	"github.com/PuerkitoBio/goquery"
)

// Documents is the page source the scraper depends on; *fetch.Client implements it.
type Documents interface {
	Document(ctx context.Context, url string) (*goquery.Document, error)
}

// FragmentReader exposes the stable anchors of one listing on a results page.
// Each method reports false when the anchor is absent from the markup.
type FragmentReader interface {
	Title() (string, bool)
	PriceText() (string, bool)
	ItemURL() (string, bool)
}

// DetailReader exposes seller statistics found on a listing's detail page.
type DetailReader interface {
	// RatingValues returns the raw text of every displayed seller rating.
	RatingValues() []string
	// SellerInfo returns the bold text of every labelled seller info item.
	SellerInfo() []string
}

// Site binds the scraper to one marketplace's markup.
type Site interface {
	Name() string
	SearchURL(query string) string
	Fragments(doc *goquery.Document) []FragmentReader
	// NeedsDetail reports whether records are enriched from the detail page.
	NeedsDetail() bool
	Detail(doc *goquery.Document) DetailReader
}
