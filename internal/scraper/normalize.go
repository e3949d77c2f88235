package scraper

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/maltedev/marketplace-search/internal/models"
)

const (
	PriceGrammar      = "a decimal amount, optionally with currency symbols and thousands separators"
	PercentageGrammar = "a decimal number followed by %"
)

// Ratings are shown on a 0 to 5 scale; anything else on the page is noise.
var ratingPattern = regexp.MustCompile(`^(0|[1-4](\.\d+)?|5(\.0*)?)$`)

// ParsePrice reads a displayed price. For a range such as "$10.00 to $25.50"
// the last token, the upper bound, is the price.
func ParsePrice(text string) (float64, error) {
	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return 0, &models.FormatError{Input: text, Grammar: PriceGrammar}
	}

	cleaned := strings.Map(func(r rune) rune {
		if r == ',' || unicode.Is(unicode.Sc, r) {
			return -1
		}
		return r
	}, tokens[len(tokens)-1])

	price, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
		return 0, &models.FormatError{Input: text, Grammar: PriceGrammar}
	}
	return price, nil
}

// ParsePercentage reads "98.5%" as 98.5.
func ParsePercentage(text string) (float64, error) {
	value, err := strconv.ParseFloat(strings.TrimSpace(strings.Trim(strings.TrimSpace(text), "%")), 64)
	if err != nil || math.IsNaN(value) || value < 0 || value > 100 {
		return 0, &models.FormatError{Input: text, Grammar: PercentageGrammar}
	}
	return value, nil
}

// RatingAverage averages the values that look like a 0-5 rating, rounded to
// three decimals. It returns nil when none qualify, which is "no signal"
// rather than a zero rating.
func RatingAverage(values []string) *float64 {
	var sum float64
	var count int

	for _, v := range values {
		v = strings.TrimSpace(v)
		if !ratingPattern.MatchString(v) {
			continue
		}
		rating, err := strconv.ParseFloat(v, 64)
		if err != nil {
			continue
		}
		sum += rating
		count++
	}

	if count == 0 {
		return nil
	}

	avg := math.Round(sum/float64(count)*1000) / 1000
	return &avg
}
