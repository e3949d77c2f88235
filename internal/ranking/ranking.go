// Package ranking orders scraped listings and keeps those matching the query.
//
// Records are ordered by quantity sold (descending), positive feedback
// (descending), seller rating (descending) and price (ascending). A missing
// quantity counts as zero; any other missing key sorts after present values.
// Equal records keep their page order.
package ranking

import (
	"cmp"
	"slices"
	"strings"

	"github.com/maltedev/marketplace-search/internal/models"
	"golang.org/x/text/cases"
)

const DefaultLimit = 10

type Ranker struct {
	limit int
}

// New returns a Ranker keeping at most limit records; limit <= 0 keeps all.
func New(limit int) *Ranker {
	return &Ranker{limit: limit}
}

// Rank returns a new slice; records is left untouched.
func (r *Ranker) Rank(records []models.ItemRecord, query string) []models.ItemRecord {
	ranked := Filter(Sort(records), query)
	if r.limit > 0 && len(ranked) > r.limit {
		ranked = ranked[:r.limit]
	}
	return ranked
}

func Sort(records []models.ItemRecord) []models.ItemRecord {
	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, Compare)
	return sorted
}

// Compare reports whether a ranks before (-1) or after (1) b.
func Compare(a, b models.ItemRecord) int {
	if c := cmp.Compare(b.QuantitySoldInt(), a.QuantitySoldInt()); c != 0 {
		return c
	}
	if c := compareOptional(a.PositiveFeedbackPercentage, b.PositiveFeedbackPercentage, true); c != 0 {
		return c
	}
	if c := compareOptional(a.RatingAverage, b.RatingAverage, true); c != 0 {
		return c
	}
	return compareOptional(a.PriceDollars, b.PriceDollars, false)
}

func compareOptional(a, b *float64, descending bool) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	case descending:
		return cmp.Compare(*b, *a)
	default:
		return cmp.Compare(*a, *b)
	}
}

// Filter keeps records whose title contains the whole query, ignoring case.
func Filter(records []models.ItemRecord, query string) []models.ItemRecord {
	fold := cases.Fold()
	needle := fold.String(strings.TrimSpace(query))

	kept := make([]models.ItemRecord, 0, len(records))
	for _, record := range records {
		if strings.Contains(fold.String(record.Title), needle) {
			kept = append(kept, record)
		}
	}
	return kept
}
