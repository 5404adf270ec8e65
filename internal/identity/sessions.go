package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SessionStore keeps token -> user id mappings.
type SessionStore interface {
	Create(ctx context.Context, userID string) (token string, err error)
	Lookup(ctx context.Context, token string) (userID string, err error)
	Delete(ctx context.Context, token string) error
}

// RedisSessions stores sessions in Redis with a TTL, so a crashed
// server never leaves immortal sessions behind.
type RedisSessions struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSessions(client *redis.Client) *RedisSessions {
	return &RedisSessions{
		client: client,
		ttl:    24 * time.Hour,
	}
}

func (r *RedisSessions) Create(ctx context.Context, userID string) (string, error) {
	token := uuid.New().String()
	if err := r.client.Set(ctx, sessionKey(token), userID, r.ttl).Err(); err != nil {
		return "", fmt.Errorf("redis set failed: %w", err)
	}
	return token, nil
}

func (r *RedisSessions) Lookup(ctx context.Context, token string) (string, error) {
	userID, err := r.client.Get(ctx, sessionKey(token)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNoSuchToken
	}
	if err != nil {
		return "", fmt.Errorf("redis get failed: %w", err)
	}
	return userID, nil
}

func (r *RedisSessions) Delete(ctx context.Context, token string) error {
	if err := r.client.Del(ctx, sessionKey(token)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func sessionKey(token string) string {
	return fmt.Sprintf("session:%s", token)
}
