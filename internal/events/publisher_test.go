package events

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/maltedev/marketplace-search/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockRedisClient is a mock for Redis client
type MockRedisClient struct {
	mock.Mock
}

func (m *MockRedisClient) XAdd(ctx context.Context, args *redis.XAddArgs) *redis.StringCmd {
	mockArgs := m.Called(ctx, args)
	cmd := redis.NewStringCmd(ctx)
	if mockArgs.Get(0) != nil {
		cmd.SetErr(mockArgs.Error(0))
	} else {
		cmd.SetVal("1234567890-0")
	}
	return cmd
}

func testRun() *models.SearchRun {
	run := models.NewSearchRun("ebay", "logitech k400")
	run.Items = []models.ItemRecord{
		{Title: "Logitech K400 Plus", PriceDollars: models.Float(29.99)},
		{Title: "Logitech K400"},
	}
	run.Scraped = 3
	run.Dropped = 1
	run.Duration = 1500 * time.Millisecond
	return run
}

func TestPublisher_PublishSearchCompleted(t *testing.T) {
	ctx := context.Background()

	t.Run("correct stream data format", func(t *testing.T) {
		mockRedis := new(MockRedisClient)
		publisher := NewPublisher(mockRedis, slog.Default())
		run := testRun()

		mockRedis.On("XAdd", ctx, mock.MatchedBy(func(args *redis.XAddArgs) bool {
			values, ok := args.Values.(map[string]interface{})
			if !ok || args.Stream != StreamSearchCompleted || values["run_id"] != run.ID.String() {
				return false
			}
			val, ok := values["data"].(string)
			if !ok {
				return false
			}

			var data map[string]interface{}
			if err := json.Unmarshal([]byte(val), &data); err != nil {
				return false
			}
			payload, ok := data["payload"].(map[string]interface{})
			if !ok {
				return false
			}

			return data["id"] != nil &&
				data["type"] == TypeSearchCompleted &&
				payload["query"] == "logitech k400" &&
				payload["item_count"] == float64(2) &&
				payload["dropped"] == float64(1) &&
				payload["duration_ms"] == float64(1500) &&
				payload["top_title"] == "Logitech K400 Plus" &&
				payload["top_price"] == 29.99
		})).Return(nil)

		require.NoError(t, publisher.PublishSearchCompleted(ctx, run))
		mockRedis.AssertExpectations(t)
	})

	t.Run("empty run omits top item", func(t *testing.T) {
		mockRedis := new(MockRedisClient)
		publisher := NewPublisher(mockRedis, slog.Default())
		run := models.NewSearchRun("ebay", "nothing here")

		mockRedis.On("XAdd", ctx, mock.MatchedBy(func(args *redis.XAddArgs) bool {
			values, _ := args.Values.(map[string]interface{})
			val, _ := values["data"].(string)
			return json.Valid([]byte(val)) && !strings.Contains(val, "top_title")
		})).Return(nil)

		require.NoError(t, publisher.PublishSearchCompleted(ctx, run))
		mockRedis.AssertExpectations(t)
	})

	t.Run("redis failure", func(t *testing.T) {
		mockRedis := new(MockRedisClient)
		publisher := NewPublisher(mockRedis, slog.Default())

		mockRedis.On("XAdd", ctx, mock.Anything).Return(errors.New("redis down"))

		err := publisher.PublishSearchCompleted(ctx, testRun())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to publish to redis")
	})
}
