package checkout

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"bookedai/models"
)

// MemoryContextStore is the single-instance ContextStore: a mutex-guarded
// map with lazy expiry. Entries are small and bounded by the number of
// active checkouts, so no background sweep is needed.
type MemoryContextStore struct {
	mu      sync.Mutex
	entries map[string]models.CheckoutIntent
	now     func() time.Time
}

func NewMemoryContextStore() *MemoryContextStore {
	return &MemoryContextStore{
		entries: make(map[string]models.CheckoutIntent),
		now:     time.Now,
	}
}

func newCtxID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

func (s *MemoryContextStore) Put(_ context.Context, intent models.CheckoutIntent) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctxID := newCtxID()
	intent.CtxID = ctxID
	if intent.CreatedAt.IsZero() {
		intent.CreatedAt = s.now()
	}
	s.entries[ctxID] = intent
	return ctxID, nil
}

func (s *MemoryContextStore) Get(_ context.Context, ctxID string) (*models.CheckoutIntent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	intent, ok := s.entries[ctxID]
	if !ok {
		return nil, ErrNotFound
	}
	return &intent, nil
}

func (s *MemoryContextStore) TakeIfFresh(_ context.Context, ctxID string, ttl time.Duration) (*models.CheckoutIntent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	intent, ok := s.entries[ctxID]
	if !ok {
		return nil, ErrNotFound
	}
	if s.now().Sub(intent.CreatedAt) > ttl {
		delete(s.entries, ctxID)
		return nil, ErrExpired
	}
	return &intent, nil
}

func (s *MemoryContextStore) Delete(_ context.Context, ctxID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, ctxID)
	return nil
}
