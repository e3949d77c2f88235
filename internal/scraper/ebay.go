package scraper

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	ebayFragmentSelector = "li.s-item.s-item__pl-on-bottom"
	ebayTitleSelector    = "span[role='heading']"
	ebayPriceSelector    = "span.s-item__price"
	ebayLinkSelector     = "a.s-item__link"

	ebayRatingSelector     = "div.fdbk-detail-seller-rating span.fdbk-detail-seller-rating__value"
	ebaySellerInfoSelector = "div.d-stores-info-categories__container__info__section__item"
	ebaySellerBoldSelector = "span.ux-textspans.ux-textspans--BOLD"

	ebayCategoryParam = "&_sacat=0"

	// The first matching <li> on a results page is a placeholder slot, not a listing.
	ebayLeadingPlaceholders = 1
)

// Ebay reads eBay search results. Endpoint is the search URL up to and
// including the query parameter name, e.g. "https://www.ebay.com/sch/i.html?_nkw=".
type Ebay struct {
	Endpoint string
}

func NewEbay(endpoint string) *Ebay {
	return &Ebay{Endpoint: endpoint}
}

func (s *Ebay) Name() string {
	return "ebay"
}

func (s *Ebay) SearchURL(query string) string {
	return s.Endpoint + url.QueryEscape(query) + ebayCategoryParam
}

func (s *Ebay) Fragments(doc *goquery.Document) []FragmentReader {
	items := doc.Find(ebayFragmentSelector)
	frags := make([]FragmentReader, 0, items.Length())

	items.Each(func(i int, sel *goquery.Selection) {
		if i < ebayLeadingPlaceholders {
			return
		}
		frags = append(frags, &ebayFragment{sel: sel, base: s.Endpoint})
	})

	return frags
}

func (s *Ebay) NeedsDetail() bool {
	return true
}

func (s *Ebay) Detail(doc *goquery.Document) DetailReader {
	return &ebayDetail{doc: doc}
}

type ebayFragment struct {
	sel  *goquery.Selection
	base string
}

func (f *ebayFragment) Title() (string, bool) {
	return firstText(f.sel, ebayTitleSelector)
}

func (f *ebayFragment) PriceText() (string, bool) {
	return firstText(f.sel, ebayPriceSelector)
}

func (f *ebayFragment) ItemURL() (string, bool) {
	href, ok := f.sel.Find(ebayLinkSelector).First().Attr("href")
	if !ok || strings.TrimSpace(href) == "" {
		return "", false
	}
	return resolveURL(f.base, href), true
}

type ebayDetail struct {
	doc *goquery.Document
}

func (d *ebayDetail) RatingValues() []string {
	var values []string
	d.doc.Find(ebayRatingSelector).Each(func(_ int, sel *goquery.Selection) {
		values = append(values, sel.Text())
	})
	return values
}

func (d *ebayDetail) SellerInfo() []string {
	var info []string
	d.doc.Find(ebaySellerInfoSelector).Each(func(_ int, sel *goquery.Selection) {
		if text, ok := firstText(sel, ebaySellerBoldSelector); ok {
			info = append(info, text)
		}
	})
	return info
}

func firstText(sel *goquery.Selection, selector string) (string, bool) {
	found := sel.Find(selector).First()
	if found.Length() == 0 {
		return "", false
	}
	text := strings.TrimSpace(found.Text())
	return text, text != ""
}

// resolveURL makes href absolute against base; unparseable input is returned as is.
func resolveURL(base, href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return href
	}
	if ref.IsAbs() {
		return ref.String()
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return href
	}
	return baseURL.ResolveReference(ref).String()
}
