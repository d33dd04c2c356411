package session

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	c         Checkout
	expiresAt time.Time
}

// MemoryStore keeps snapshots in process. Expired entries are dropped lazily on read.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]entry
	now     func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{ttl: ttl, entries: map[string]entry{}, now: time.Now}
}

func (m *MemoryStore) Save(_ context.Context, c Checkout) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[c.UserID] = entry{c: c, expiresAt: m.now().Add(m.ttl)}
	return nil
}

func (m *MemoryStore) Get(_ context.Context, userID string) (Checkout, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[userID]
	if !ok {
		return Checkout{}, ErrNotFound
	}
	if !m.now().Before(e.expiresAt) {
		delete(m.entries, userID)
		return Checkout{}, ErrNotFound
	}
	return e.c, nil
}

func (m *MemoryStore) Delete(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, userID)
	return nil
}
