package models

import (
	"time"

	"github.com/google/uuid"
)

// ItemRecord is one marketplace listing. Optional fields are nil when the
// page did not carry a usable value.
type ItemRecord struct {
	Title                      string    `json:"title"`
	PriceDollars               *float64  `json:"price_dollars,omitempty"`
	RatingAverage              *float64  `json:"rating_average,omitempty"`
	PositiveFeedbackPercentage *float64  `json:"positive_feedback_percentage,omitempty"`
	QuantitySold               *Quantity `json:"quantity_sold,omitempty"`
	ItemURL                    string    `json:"item_url,omitempty"`
}

// QuantitySoldInt is the ranking key for QuantitySold; a missing quantity counts as zero.
func (r *ItemRecord) QuantitySoldInt() int64 {
	if r.QuantitySold == nil {
		return 0
	}
	return r.QuantitySold.Int()
}

// SearchRun is one executed query and its ranked output.
type SearchRun struct {
	ID        uuid.UUID     `json:"id"`
	Site      string        `json:"site"`
	Query     string        `json:"query"`
	Items     []ItemRecord  `json:"items"`
	Scraped   int           `json:"scraped"`
	Dropped   int           `json:"dropped"`
	FromCache bool          `json:"from_cache"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
}

func NewSearchRun(site, query string) *SearchRun {
	return &SearchRun{
		ID:        uuid.New(),
		Site:      site,
		Query:     query,
		Items:     make([]ItemRecord, 0),
		StartedAt: time.Now(),
	}
}

func Float(v float64) *float64 {
	return &v
}
