package checkout

import (
	"context"
	"sync"

	"github.com/go-redis/redis/v8"
)

// MemoryGate holds the per-kind one-shot latches for a single-instance
// deployment. The latch is tripped by the widget's browser beacon and
// consumed by the agent's next search call, two unrelated channels, so the
// test-and-reset has to happen under one lock.
type MemoryGate struct {
	mu      sync.Mutex
	tripped map[GateKind]bool
}

func NewMemoryGate() *MemoryGate {
	return &MemoryGate{tripped: make(map[GateKind]bool)}
}

func (g *MemoryGate) Trip(_ context.Context, kind GateKind) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.tripped[kind] = true
	return nil
}

func (g *MemoryGate) ConsumeIfTripped(_ context.Context, kind GateKind) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.tripped[kind] {
		return false, nil
	}
	g.tripped[kind] = false
	return true, nil
}

// RedisGate backs the latches with Redis so the one-shot guarantee
// survives horizontal scaling: GETDEL makes the consume atomic across
// instances.
type RedisGate struct {
	client *redis.Client
	prefix string
}

func NewRedisGate(client *redis.Client, prefix string) *RedisGate {
	return &RedisGate{client: client, prefix: prefix}
}

func (g *RedisGate) Trip(ctx context.Context, kind GateKind) error {
	return g.client.Set(ctx, g.prefix+string(kind), "1", 0).Err()
}

func (g *RedisGate) ConsumeIfTripped(ctx context.Context, kind GateKind) (bool, error) {
	_, err := g.client.GetDel(ctx, g.prefix+string(kind)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
