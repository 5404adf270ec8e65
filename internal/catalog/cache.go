package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/deadpool750/list7/internal/domain"
)

var ErrCacheMiss = errors.New("cache miss")

// ItemsCache holds the last full catalog listing.
type ItemsCache interface {
	Get(ctx context.Context) ([]domain.Item, error)
	Set(ctx context.Context, items []domain.Item) error
	Delete(ctx context.Context) error
}

const itemsCacheKey = "catalog:items"

// RedisItemsCache caches the listing in Redis with a jittered TTL so
// entries across instances do not expire in lockstep.
type RedisItemsCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

func NewRedisItemsCache(client *redis.Client) *RedisItemsCache {
	return &RedisItemsCache{
		client:  client,
		baseTTL: 15 * time.Minute,
	}
}

func (r *RedisItemsCache) Get(ctx context.Context) ([]domain.Item, error) {
	data, err := r.client.Get(ctx, itemsCacheKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var items []domain.Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("unmarshal items failed: %w", err)
	}
	return items, nil
}

func (r *RedisItemsCache) Set(ctx context.Context, items []domain.Item) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal items failed: %w", err)
	}

	jitter := time.Duration(rand.Intn(5)) * time.Minute
	if err := r.client.Set(ctx, itemsCacheKey, data, r.baseTTL+jitter).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisItemsCache) Delete(ctx context.Context) error {
	if err := r.client.Del(ctx, itemsCacheKey).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}
