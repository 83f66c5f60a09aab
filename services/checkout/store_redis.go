package checkout

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"

	"bookedai/models"
)

// RedisContextStore is the multi-instance ContextStore. Intents are stored
// as JSON under a kind-specific prefix with a Redis TTL as a backstop; the
// creation timestamp in the payload stays authoritative for TakeIfFresh.
type RedisContextStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisContextStore(client *redis.Client, prefix string, ttl time.Duration) *RedisContextStore {
	return &RedisContextStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *RedisContextStore) key(ctxID string) string {
	return s.prefix + ctxID
}

func (s *RedisContextStore) Put(ctx context.Context, intent models.CheckoutIntent) (string, error) {
	ctxID := newCtxID()
	intent.CtxID = ctxID
	if intent.CreatedAt.IsZero() {
		intent.CreatedAt = time.Now()
	}
	b, err := json.Marshal(intent)
	if err != nil {
		return "", err
	}
	if err := s.client.Set(ctx, s.key(ctxID), b, s.ttl).Err(); err != nil {
		return "", err
	}
	return ctxID, nil
}

func (s *RedisContextStore) Get(ctx context.Context, ctxID string) (*models.CheckoutIntent, error) {
	data, err := s.client.Get(ctx, s.key(ctxID)).Result()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var intent models.CheckoutIntent
	if err := json.Unmarshal([]byte(data), &intent); err != nil {
		return nil, err
	}
	return &intent, nil
}

func (s *RedisContextStore) TakeIfFresh(ctx context.Context, ctxID string, ttl time.Duration) (*models.CheckoutIntent, error) {
	intent, err := s.Get(ctx, ctxID)
	if err != nil {
		return nil, err
	}
	if time.Since(intent.CreatedAt) > ttl {
		s.client.Del(ctx, s.key(ctxID))
		return nil, ErrExpired
	}
	return intent, nil
}

func (s *RedisContextStore) Delete(ctx context.Context, ctxID string) error {
	return s.client.Del(ctx, s.key(ctxID)).Err()
}
