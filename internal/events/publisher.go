package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/maltedev/marketplace-search/internal/models"
	"github.com/redis/go-redis/v9"
)

const (
	StreamSearchCompleted = "stream:search_completed"
	TypeSearchCompleted   = "SEARCH_COMPLETED"
)

// RedisClient is the subset of *redis.Client the publisher uses.
type RedisClient interface {
	XAdd(ctx context.Context, args *redis.XAddArgs) *redis.StringCmd
}

// Publisher announces finished searches on a Redis stream.
type Publisher struct {
	redis  RedisClient
	stream string
	logger *slog.Logger
	now    func() time.Time
}

func NewPublisher(client RedisClient, logger *slog.Logger) *Publisher {
	return &Publisher{
		redis:  client,
		stream: StreamSearchCompleted,
		logger: logger.With("component", "event_publisher"),
		now:    time.Now,
	}
}

type searchCompletedPayload struct {
	RunID      string  `json:"run_id"`
	Site       string  `json:"site"`
	Query      string  `json:"query"`
	ItemCount  int     `json:"item_count"`
	Scraped    int     `json:"scraped"`
	Dropped    int     `json:"dropped"`
	FromCache  bool    `json:"from_cache"`
	DurationMS int64   `json:"duration_ms"`
	TopTitle   string  `json:"top_title,omitempty"`
	TopPrice   float64 `json:"top_price,omitempty"`
}

// PublishSearchCompleted writes one SEARCH_COMPLETED entry for run.
func (p *Publisher) PublishSearchCompleted(ctx context.Context, run *models.SearchRun) error {
	payload := searchCompletedPayload{
		RunID:      run.ID.String(),
		Site:       run.Site,
		Query:      run.Query,
		ItemCount:  len(run.Items),
		Scraped:    run.Scraped,
		Dropped:    run.Dropped,
		FromCache:  run.FromCache,
		DurationMS: run.Duration.Milliseconds(),
	}
	if len(run.Items) > 0 {
		payload.TopTitle = run.Items[0].Title
		if run.Items[0].PriceDollars != nil {
			payload.TopPrice = *run.Items[0].PriceDollars
		}
	}

	eventID := uuid.New()
	createdAt := p.now()

	streamData := map[string]interface{}{
		"id":        eventID.String(),
		"type":      TypeSearchCompleted,
		"timestamp": createdAt.Format(time.RFC3339),
		"payload":   payload,
		"metadata": map[string]interface{}{
			"source": "marketplace-search",
		},
	}

	dataJSON, err := json.Marshal(streamData)
	if err != nil {
		return fmt.Errorf("failed to marshal stream data: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]interface{}{
			"data":       string(dataJSON),
			"type":       TypeSearchCompleted,
			"timestamp":  fmt.Sprintf("%d", createdAt.UnixNano()),
			"event_id":   eventID.String(),
			"run_id":     run.ID.String(),
			"event_type": TypeSearchCompleted,
		},
	}

	if _, err := p.redis.XAdd(ctx, args).Result(); err != nil {
		return fmt.Errorf("failed to publish to redis: %w", err)
	}

	p.logger.Debug("published search event", "run_id", run.ID, "stream", p.stream)
	return nil
}
