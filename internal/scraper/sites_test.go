package scraper

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestEbaySearchURL(t *testing.T) {
	site := NewEbay("https://www.ebay.com/sch/i.html?_nkw=")
	assert.Equal(t, "https://www.ebay.com/sch/i.html?_nkw=logitech+k400+plus&_sacat=0", site.SearchURL("logitech k400 plus"))
	assert.Equal(t, "https://www.ebay.com/sch/i.html?_nkw=usb-c+%26+hdmi&_sacat=0", site.SearchURL("usb-c & hdmi"))
}

func TestEbayFragmentsSkipPlaceholder(t *testing.T) {
	site := NewEbay("https://www.ebay.com/sch/i.html?_nkw=")
	frags := site.Fragments(parseDoc(t, ebayResultsPage))
	require.Len(t, frags, 4)

	title, ok := frags[0].Title()
	require.True(t, ok)
	assert.Equal(t, "Logitech K400", title)

	price, ok := frags[1].PriceText()
	require.True(t, ok)
	assert.Equal(t, "$30.00 to $34.99", price)

	link, ok := frags[1].ItemURL()
	require.True(t, ok)
	assert.Equal(t, "https://www.ebay.com/itm/2", link)

	_, ok = frags[2].Title()
	assert.False(t, ok)
}

func TestEbayDetail(t *testing.T) {
	site := NewEbay("https://www.ebay.com/sch/i.html?_nkw=")
	detail := site.Detail(parseDoc(t, ebayDetailPage([]string{"4.9", "5.0"}, []string{"99.1%", "12K"})))

	assert.Equal(t, []string{"4.9", "5.0"}, detail.RatingValues())
	assert.Equal(t, []string{"99.1%", "12K"}, detail.SellerInfo())
}

func TestAmazonFragments(t *testing.T) {
	site := NewAmazon("https://www.amazon.com/s?k=")
	assert.Equal(t, "https://www.amazon.com/s?k=logitech+k400", site.SearchURL("logitech k400"))
	assert.False(t, site.NeedsDetail())

	frags := site.Fragments(parseDoc(t, amazonResultsPage))
	require.Len(t, frags, 2)

	title, ok := frags[0].Title()
	require.True(t, ok)
	assert.Equal(t, "Logitech K400 Plus Wireless", title)

	price, ok := frags[0].PriceText()
	require.True(t, ok)
	assert.Equal(t, "1,029.99", price)

	link, ok := frags[0].ItemURL()
	require.True(t, ok)
	assert.Equal(t, "https://www.amazon.com/dp/B001", link)

	title, ok = frags[1].Title()
	require.True(t, ok)
	assert.Equal(t, "Logitech K400 Refurbished", title)

	_, ok = frags[1].PriceText()
	assert.False(t, ok)
}

func TestResolveURL(t *testing.T) {
	assert.Equal(t, "https://www.ebay.com/itm/9", resolveURL("https://www.ebay.com/sch/i.html?_nkw=", "/itm/9"))
	assert.Equal(t, "https://other.example/itm/9", resolveURL("https://www.ebay.com/", "https://other.example/itm/9"))
}
