package cache

import (
	"context"
	"sync"
	"time"

	"quickpick/internal/model"
)

type memoryEntry struct {
	session   *model.Session
	expiresAt time.Time
}

type memoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryStore creates an in-process session store, used when no Redis
// address is configured. Expired entries are dropped lazily on access.
func NewMemoryStore(ttl time.Duration) SessionStore {
	return &memoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (c *memoryStore) Save(_ context.Context, session *model.Session) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[session.ID] = memoryEntry{
		session:   session,
		expiresAt: c.now().Add(c.ttl),
	}
	return nil
}

func (c *memoryStore) Get(_ context.Context, id string) (*model.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[id]
	if !ok {
		return nil, nil
	}
	if c.now().After(entry.expiresAt) {
		delete(c.entries, id)
		return nil, nil
	}
	return entry.session, nil
}

func (c *memoryStore) Delete(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
	return nil
}
