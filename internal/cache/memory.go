package cache

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	value     string
	expiresAt time.Time
}

type memoryCache struct {
	mu          sync.RWMutex
	store       map[string]entry
	serviceName string
	now         func() time.Time
}

// NewMemoryCache is used when no redis address is configured.
func NewMemoryCache(serviceName string) Cache {
	return &memoryCache{
		store:       make(map[string]entry),
		serviceName: serviceName,
		now:         time.Now,
	}
}

func (c *memoryCache) Set(_ context.Context, key string, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := entry{value: value}
	if ttl > 0 {
		e.expiresAt = c.now().Add(ttl)
	}
	c.store[key] = e
	return nil
}

func (c *memoryCache) Get(_ context.Context, key string) (string, error) {
	c.mu.RLock()
	e, ok := c.store[key]
	c.mu.RUnlock()
	if !ok {
		return "", nil
	}
	if !e.expiresAt.IsZero() && !c.now().Before(e.expiresAt) {
		c.mu.Lock()
		delete(c.store, key)
		c.mu.Unlock()
		return "", nil
	}
	return e.value, nil
}

func (c *memoryCache) GenerateKey(operation, key string) string {
	return generateKey(c.serviceName, operation, key)
}
