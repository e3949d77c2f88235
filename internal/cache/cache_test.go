package cache

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/maltedev/marketplace-search/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRedisClient struct {
	mock.Mock
}

func (m *MockRedisClient) Get(ctx context.Context, key string) *redis.StringCmd {
	args := m.Called(ctx, key)
	cmd := redis.NewStringCmd(ctx)
	if err := args.Error(1); err != nil {
		cmd.SetErr(err)
	} else {
		cmd.SetVal(args.String(0))
	}
	return cmd
}

func (m *MockRedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	args := m.Called(ctx, key, value, expiration)
	cmd := redis.NewStatusCmd(ctx)
	if err := args.Error(0); err != nil {
		cmd.SetErr(err)
	} else {
		cmd.SetVal("OK")
	}
	return cmd
}

func TestKey(t *testing.T) {
	assert.Equal(t, "search:ebay:logitech k400", Key("ebay", "  Logitech   K400 "))
	assert.Equal(t, Key("ebay", "logitech k400"), Key("ebay", "LOGITECH K400"))
	assert.NotEqual(t, Key("ebay", "k400"), Key("amazon", "k400"))
}

func TestResultCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	client := new(MockRedisClient)
	c := NewResultCache(client, 15*time.Minute, slog.Default())

	q, err := models.ParseQuantity("1.2K")
	require.NoError(t, err)
	records := []models.ItemRecord{{Title: "Logitech K400", PriceDollars: models.Float(29.99), QuantitySold: &q}}

	var stored []byte
	client.On("Set", ctx, "search:ebay:logitech k400", mock.Anything, 15*time.Minute).
		Run(func(args mock.Arguments) { stored = args.Get(2).([]byte) }).
		Return(nil)

	require.NoError(t, c.Set(ctx, "ebay", "Logitech K400", records))

	client.On("Get", ctx, "search:ebay:logitech k400").Return(string(stored), nil)

	got, err := c.Get(ctx, "ebay", "logitech k400")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Logitech K400", got[0].Title)
	assert.Equal(t, int64(1200), got[0].QuantitySoldInt())
	assert.Nil(t, got[0].RatingAverage)

	client.AssertExpectations(t)
}

func TestResultCacheMiss(t *testing.T) {
	ctx := context.Background()
	client := new(MockRedisClient)
	client.On("Get", ctx, "search:ebay:mouse").Return("", redis.Nil)

	_, err := NewResultCache(client, time.Minute, slog.Default()).Get(ctx, "ebay", "mouse")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestResultCacheErrors(t *testing.T) {
	ctx := context.Background()
	client := new(MockRedisClient)
	down := errors.New("connection refused")
	client.On("Get", ctx, "search:ebay:mouse").Return("", down)
	client.On("Set", ctx, "search:ebay:mouse", mock.Anything, time.Minute).Return(down)
	c := NewResultCache(client, time.Minute, slog.Default())

	_, err := c.Get(ctx, "ebay", "mouse")
	assert.ErrorIs(t, err, down)
	assert.NotErrorIs(t, err, ErrCacheMiss)

	assert.ErrorIs(t, c.Set(ctx, "ebay", "mouse", nil), down)
}
