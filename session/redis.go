package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (r *RedisStore) Save(ctx context.Context, c Checkout) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal checkout failed: %w", err)
	}
	if err := r.client.Set(ctx, key(c.UserID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisStore) Get(ctx context.Context, userID string) (Checkout, error) {
	data, err := r.client.Get(ctx, key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Checkout{}, ErrNotFound
	}
	if err != nil {
		return Checkout{}, fmt.Errorf("redis get failed: %w", err)
	}
	var c Checkout
	if err := json.Unmarshal(data, &c); err != nil {
		return Checkout{}, fmt.Errorf("unmarshal checkout failed: %w", err)
	}
	return c, nil
}

func (r *RedisStore) Delete(ctx context.Context, userID string) error {
	if err := r.client.Del(ctx, key(userID)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func key(userID string) string {
	return "checkout:" + userID
}
