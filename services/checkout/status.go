package checkout

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"

	"bookedai/models"
)

// MemoryStatusTracker keeps last-known checkout states in-process. Once an
// entry reaches a terminal state it is frozen: a later Set with a
// different state is ignored, so a settled payment can never be reported
// as pending again.
type MemoryStatusTracker struct {
	mu      sync.Mutex
	entries map[string]models.CheckoutStatus
}

func NewMemoryStatusTracker() *MemoryStatusTracker {
	return &MemoryStatusTracker{entries: make(map[string]models.CheckoutStatus)}
}

func (t *MemoryStatusTracker) Set(_ context.Context, status models.CheckoutStatus) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	existing, ok := t.entries[status.CtxID]
	if ok && existing.Status.Terminal() && existing.Status != status.Status {
		return nil
	}
	if status.CreatedAt.IsZero() {
		if ok {
			status.CreatedAt = existing.CreatedAt
		} else {
			status.CreatedAt = time.Now()
		}
	}
	status.UpdatedAt = time.Now()
	t.entries[status.CtxID] = status
	return nil
}

func (t *MemoryStatusTracker) Get(_ context.Context, ctxID string) (*models.CheckoutStatus, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	status, ok := t.entries[ctxID]
	if !ok {
		return nil, nil
	}
	return &status, nil
}

// RedisStatusTracker is the shared-store variant. Entries are written
// without a TTL so polls keep working after the intent is gone.
type RedisStatusTracker struct {
	client *redis.Client
	prefix string
}

func NewRedisStatusTracker(client *redis.Client, prefix string) *RedisStatusTracker {
	return &RedisStatusTracker{client: client, prefix: prefix}
}

func (t *RedisStatusTracker) Set(ctx context.Context, status models.CheckoutStatus) error {
	key := t.prefix + status.CtxID

	existing, err := t.Get(ctx, status.CtxID)
	if err != nil {
		return err
	}
	if existing != nil && existing.Status.Terminal() && existing.Status != status.Status {
		return nil
	}
	if status.CreatedAt.IsZero() {
		if existing != nil {
			status.CreatedAt = existing.CreatedAt
		} else {
			status.CreatedAt = time.Now()
		}
	}
	status.UpdatedAt = time.Now()

	b, err := json.Marshal(status)
	if err != nil {
		return err
	}
	return t.client.Set(ctx, key, b, 0).Err()
}

func (t *RedisStatusTracker) Get(ctx context.Context, ctxID string) (*models.CheckoutStatus, error) {
	data, err := t.client.Get(ctx, t.prefix+ctxID).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var status models.CheckoutStatus
	if err := json.Unmarshal([]byte(data), &status); err != nil {
		return nil, err
	}
	return &status, nil
}
