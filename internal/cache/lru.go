// Package cache provides the caching implementations for Heron.
package cache

import (
	"container/list"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/opensource-health/heron/internal/domain"
)

// LRUCache is an in-process cache with TTL entries and least-recently
// used eviction. It backs the community tier and serves as the local
// layer of the two-phase cache.
type LRUCache struct {
	mu       sync.RWMutex
	maxSize  int
	entries  map[string]*list.Element
	recency  *list.List
	counters map[string]*windowCounter
}

type lruEntry struct {
	key       string
	value     []byte
	expiresAt time.Time
}

type windowCounter struct {
	count     int64
	expiresAt time.Time
}

// NewLRUCache creates a cache holding at most maxSize entries.
func NewLRUCache(maxSize int) *LRUCache {
	if maxSize <= 0 {
		maxSize = 10000
	}
	return &LRUCache{
		maxSize:  maxSize,
		entries:  make(map[string]*list.Element),
		recency:  list.New(),
		counters: make(map[string]*windowCounter),
	}
}

func keyFor(facilityID, key string) string {
	return facilityID + ":" + key
}

// Get returns the cached value, or nil on a miss or expired entry.
func (c *LRUCache) Get(ctx context.Context, facilityID string, key string) ([]byte, error) {
	if facilityID == "" {
		return nil, fmt.Errorf("facilityID is required")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[keyFor(facilityID, key)]
	if !ok {
		return nil, nil
	}

	entry := elem.Value.(*lruEntry)
	if time.Now().After(entry.expiresAt) {
		c.evict(elem)
		return nil, nil
	}

	c.recency.MoveToFront(elem)
	return entry.value, nil
}

// Set stores a value under the facility's keyspace with the given TTL.
func (c *LRUCache) Set(ctx context.Context, facilityID string, key string, value []byte, ttl time.Duration) error {
	if facilityID == "" {
		return fmt.Errorf("facilityID is required")
	}

	full := keyFor(facilityID, key)
	deadline := time.Now().Add(ttl)

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[full]; ok {
		c.recency.MoveToFront(elem)
		entry := elem.Value.(*lruEntry)
		entry.value = value
		entry.expiresAt = deadline
		return nil
	}

	c.entries[full] = c.recency.PushFront(&lruEntry{key: full, value: value, expiresAt: deadline})

	for c.recency.Len() > c.maxSize {
		if oldest := c.recency.Back(); oldest != nil {
			c.evict(oldest)
		}
	}
	return nil
}

func (c *LRUCache) Delete(ctx context.Context, facilityID string, key string) error {
	if facilityID == "" {
		return fmt.Errorf("facilityID is required")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[keyFor(facilityID, key)]; ok {
		c.evict(elem)
	}
	return nil
}

// GetBill reads a session-bill snapshot, or nil on a miss.
func (c *LRUCache) GetBill(ctx context.Context, facilityID string, sessionKey string) (*domain.BillCache, error) {
	data, err := c.Get(ctx, facilityID, "bill:"+sessionKey)
	if err != nil || data == nil {
		return nil, err
	}

	var snap domain.BillCache
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// SetBill stores a session-bill snapshot.
func (c *LRUCache) SetBill(ctx context.Context, facilityID string, sessionKey string, data *domain.BillCache, ttl time.Duration) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return c.Set(ctx, facilityID, "bill:"+sessionKey, raw, ttl)
}

// IncrementCounter bumps a rolling counter, resetting it when its
// window has lapsed, and returns the new count.
func (c *LRUCache) IncrementCounter(ctx context.Context, facilityID string, key string, window time.Duration) (int64, error) {
	if facilityID == "" {
		return 0, fmt.Errorf("facilityID is required")
	}

	full := keyFor(facilityID, "counter:"+key)
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	ctr, ok := c.counters[full]
	if !ok || now.After(ctr.expiresAt) {
		c.counters[full] = &windowCounter{count: 1, expiresAt: now.Add(window)}
		return 1, nil
	}

	ctr.count++
	return ctr.count, nil
}

func (c *LRUCache) Ping(ctx context.Context) error {
	return nil
}

// Close drops all entries and counters.
func (c *LRUCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*list.Element)
	c.recency = list.New()
	c.counters = make(map[string]*windowCounter)
	return nil
}

// Stats reports the current size and the configured capacity.
func (c *LRUCache) Stats() (size int, capacity int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.recency.Len(), c.maxSize
}

// evict must be called with the write lock held.
func (c *LRUCache) evict(elem *list.Element) {
	c.recency.Remove(elem)
	delete(c.entries, elem.Value.(*lruEntry).key)
}
