package store

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"weatherchat/internal/domain/entity"

	"github.com/redis/go-redis/v9"
)

// RedisSessionStore maps session tokens to user IDs with a TTL.
type RedisSessionStore struct {
	client *redis.Client
}

func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

func sessionKey(token string) string {
	return "session:" + token
}

func (s *RedisSessionStore) Create(ctx context.Context, token string, userID int64, ttl time.Duration) error {
	if err := s.client.Set(ctx, sessionKey(token), userID, ttl).Err(); err != nil {
		return fmt.Errorf("session write: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) Get(ctx context.Context, token string) (int64, error) {
	val, err := s.client.Get(ctx, sessionKey(token)).Result()
	if err == redis.Nil {
		return 0, entity.ErrSessionNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("session read: %w", err)
	}
	id, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("session entry %q: %w", token, err)
	}
	return id, nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, token string) error {
	return s.client.Del(ctx, sessionKey(token)).Err()
}
