package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis creates a miniredis server and returns a RedisStore instance
func setupTestRedis(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStore(client, ttl), mr
}

func sample() Checkout {
	return Checkout{
		ID:         "sess-1",
		GatewayRef: "cs_test_1",
		UserID:     "user123",
		Lines: []Line{
			{ProductID: 1, Name: "X1 Carbon", UnitPrice: decimal.RequireFromString("1200.00"), Quantity: 3},
		},
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestRedisStore_RoundTripWithTTL(t *testing.T) {
	store, mr := setupTestRedis(t, 10*time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, sample()))
	assert.Equal(t, 10*time.Minute, mr.TTL("checkout:user123"))

	got, err := store.Get(ctx, "user123")
	require.NoError(t, err)
	assert.Equal(t, "cs_test_1", got.GatewayRef)
	line, ok := got.Line(1)
	require.True(t, ok)
	assert.True(t, line.UnitPrice.Equal(decimal.RequireFromString("1200")))
	assert.Equal(t, 3, line.Quantity)
}

func TestRedisStore_ExpiryAndDelete(t *testing.T) {
	store, mr := setupTestRedis(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, sample()))
	mr.FastForward(2 * time.Minute)
	_, err := store.Get(ctx, "user123")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Save(ctx, sample()))
	require.NoError(t, store.Delete(ctx, "user123"))
	_, err = store.Get(ctx, "user123")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_InvalidJSON(t *testing.T) {
	store, mr := setupTestRedis(t, time.Minute)
	require.NoError(t, mr.Set("checkout:user123", "{not json"))

	_, err := store.Get(context.Background(), "user123")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_Expiry(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemoryStore(time.Minute)
	m.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, m.Save(ctx, sample()))
	_, err := m.Get(ctx, "user123")
	require.NoError(t, err)

	now = now.Add(time.Minute)
	_, err = m.Get(ctx, "user123")
	assert.ErrorIs(t, err, ErrNotFound)
}
