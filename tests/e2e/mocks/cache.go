package mocks

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// InMemoryCache stores JSON values the way the Redis cache does and reports misses with
// redis.Nil.
type InMemoryCache struct {
	mu          sync.Mutex
	data        map[string]cacheEntry
	GetCalls    int
	SetCalls    int
	DeleteCalls int
}

type cacheEntry struct {
	value  []byte
	expiry time.Time
}

func NewInMemoryCache() *InMemoryCache {
	return &InMemoryCache{data: make(map[string]cacheEntry)}
}

func (c *InMemoryCache) Get(ctx context.Context, key string, dest any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.GetCalls++

	entry, ok := c.data[key]
	if !ok || time.Now().After(entry.expiry) {
		return redis.Nil
	}
	return json.Unmarshal(entry.value, dest)
}

func (c *InMemoryCache) Set(ctx context.Context, key string, value any, exp time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.SetCalls++
	c.data[key] = cacheEntry{value: b, expiry: time.Now().Add(exp)}
	return nil
}

func (c *InMemoryCache) Delete(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.DeleteCalls++
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

// Incr increments the JSON integer stored at key, starting from 0.
func (c *InMemoryCache) Incr(ctx context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var n int64
	if entry, ok := c.data[key]; ok && time.Now().Before(entry.expiry) {
		if err := json.Unmarshal(entry.value, &n); err != nil {
			return 0, err
		}
	}
	n++
	b, err := json.Marshal(n)
	if err != nil {
		return 0, err
	}
	c.data[key] = cacheEntry{value: b, expiry: time.Now().Add(100 * 365 * 24 * time.Hour)}
	return n, nil
}

// Has reports whether key holds an unexpired value.
func (c *InMemoryCache) Has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.data[key]
	return ok && time.Now().Before(entry.expiry)
}

func (c *InMemoryCache) Close() error {
	return nil
}
