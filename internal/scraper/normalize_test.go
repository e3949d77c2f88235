package scraper

import (
	"errors"
	"testing"

	"github.com/maltedev/marketplace-search/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected float64
	}{
		{"Simple", "$29.99", 29.99},
		{"Thousands separator", "$1,299.00", 1299.00},
		{"Range takes upper bound", "$10.00 to $25.50", 25.50},
		{"Leading currency symbol token", "€ 15.00", 15.00},
		{"Padded", "  $7.50 ", 7.50},
		{"No symbol", "42", 42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			price, err := ParsePrice(tt.input)
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, price, 1e-9)
		})
	}
}

func TestParsePriceRejects(t *testing.T) {
	for _, input := range []string{"", "Contact seller", "$", "NaN", "29.99 EUR", "-$5"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParsePrice(input)
			var formatErr *models.FormatError
			require.True(t, errors.As(err, &formatErr))
			assert.Equal(t, input, formatErr.Input)
		})
	}
}

func TestParsePercentage(t *testing.T) {
	value, err := ParsePercentage("98.5%")
	require.NoError(t, err)
	assert.Equal(t, 98.5, value)

	value, err = ParsePercentage(" 100% ")
	require.NoError(t, err)
	assert.Equal(t, 100.0, value)

	_, err = ParsePercentage("positive%")
	assert.Error(t, err)

	_, err = ParsePercentage("140%")
	assert.Error(t, err)
}

func TestRatingAverage(t *testing.T) {
	tests := []struct {
		name     string
		values   []string
		expected *float64
	}{
		{"No values", nil, nil},
		{"Nothing qualifies", []string{"N/A", "5.5", "0.5", "-1", "six"}, nil},
		{"Single", []string{"4.8"}, models.Float(4.8)},
		{"Zero is a rating", []string{"0"}, models.Float(0)},
		{"Discards noise", []string{"4.9", "excellent", "5.0", "7"}, models.Float(4.95)},
		{"Rounds to three places", []string{"4.1", "4.2", "4.2"}, models.Float(4.167)},
		{"Five with zeros", []string{"5.000", "5"}, models.Float(5)},
		{"Whitespace trimmed", []string{" 3.5 \n"}, models.Float(3.5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RatingAverage(tt.values)
			if tt.expected == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tt.expected, *got, 1e-9)
		})
	}
}
