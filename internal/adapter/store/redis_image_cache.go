package store

import (
	"context"
	"encoding/json"
	"fmt"

	"weatherchat/internal/domain/entity"

	"github.com/redis/go-redis/v9"
)

// RedisImageCache is the durable image-enrichment cache. Entries are
// immutable and keyed by content, so last-writer-wins on concurrent
// writes is fine; no TTL is set.
type RedisImageCache struct {
	client *redis.Client
}

func NewRedisImageCache(client *redis.Client) *RedisImageCache {
	return &RedisImageCache{client: client}
}

func (c *RedisImageCache) cacheKey(key string) string {
	return "unsplash:" + key
}

func (c *RedisImageCache) Get(ctx context.Context, key string) (*entity.Image, error) {
	val, err := c.client.Get(ctx, c.cacheKey(key)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("image cache read: %w", err)
	}

	var img entity.Image
	if err := json.Unmarshal([]byte(val), &img); err != nil {
		return nil, fmt.Errorf("image cache entry %q: %w", key, err)
	}
	return &img, nil
}

func (c *RedisImageCache) Set(ctx context.Context, key string, img *entity.Image) error {
	data, err := json.Marshal(img)
	if err != nil {
		return fmt.Errorf("image cache marshal: %w", err)
	}
	if err := c.client.Set(ctx, c.cacheKey(key), data, 0).Err(); err != nil {
		return fmt.Errorf("image cache write: %w", err)
	}
	return nil
}
