package scraper

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	amazonFragmentSelector = "div[data-component-type='s-search-result']"
	amazonPriceWhole       = "span.a-price-whole"
	amazonPriceFraction    = "span.a-price-fraction"
	amazonLinkSelector     = "h2 a, a.a-link-normal.s-no-outline"
)

var amazonTitleSelectors = []string{
	"span.a-size-base-plus.a-color-base.a-text-normal",
	"span.a-size-medium.a-color-base.a-text-normal",
	"h2 span",
}

// Amazon reads Amazon search results. Listings there carry no seller
// statistics, so records are built from the results page alone.
type Amazon struct {
	Endpoint string
}

func NewAmazon(endpoint string) *Amazon {
	return &Amazon{Endpoint: endpoint}
}

func (s *Amazon) Name() string {
	return "amazon"
}

func (s *Amazon) SearchURL(query string) string {
	return s.Endpoint + url.QueryEscape(query)
}

func (s *Amazon) Fragments(doc *goquery.Document) []FragmentReader {
	items := doc.Find(amazonFragmentSelector)
	frags := make([]FragmentReader, 0, items.Length())
	items.Each(func(_ int, sel *goquery.Selection) {
		frags = append(frags, &amazonFragment{sel: sel, base: s.Endpoint})
	})
	return frags
}

func (s *Amazon) NeedsDetail() bool {
	return false
}

func (s *Amazon) Detail(doc *goquery.Document) DetailReader {
	return emptyDetail{}
}

type amazonFragment struct {
	sel  *goquery.Selection
	base string
}

func (f *amazonFragment) Title() (string, bool) {
	for _, selector := range amazonTitleSelectors {
		if title, ok := firstText(f.sel, selector); ok {
			return title, true
		}
	}
	return "", false
}

// PriceText joins the whole and fraction spans; the whole part renders
// with its own trailing decimal point.
func (f *amazonFragment) PriceText() (string, bool) {
	whole, ok := firstText(f.sel, amazonPriceWhole)
	if !ok {
		return "", false
	}
	whole = strings.TrimRight(whole, ".")

	fraction, ok := firstText(f.sel, amazonPriceFraction)
	if !ok {
		return whole, true
	}
	return whole + "." + fraction, true
}

func (f *amazonFragment) ItemURL() (string, bool) {
	href, ok := f.sel.Find(amazonLinkSelector).First().Attr("href")
	if !ok || strings.TrimSpace(href) == "" {
		return "", false
	}
	return resolveURL(f.base, href), true
}

type emptyDetail struct{}

func (emptyDetail) RatingValues() []string { return nil }
func (emptyDetail) SellerInfo() []string   { return nil }
