package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/opensource-health/heron/internal/domain"
)

// New selects a cache implementation from configuration. The community
// tier runs an in-process LRU; the pro tier runs Redis, optionally
// fronted by the LRU as a local read layer.
func New(cfg domain.CacheConfig) (domain.Cache, error) {
	switch cfg.Type {
	case "memory":
		return NewLRUCache(cfg.LocalMaxSize), nil
	case "redis":
		if cfg.EnableTwoPhase {
			return NewTwoPhaseCache(cfg)
		}
		return NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	default:
		return nil, fmt.Errorf("unsupported cache type: %s", cfg.Type)
	}
}

// TwoPhaseCache fronts Redis with a local LRU. Reads hit the LRU
// first; Redis remains the source of truth and the only store for
// counters, which must stay accurate across nodes.
type TwoPhaseCache struct {
	local  *LRUCache
	remote *RedisCache
	l1TTL  time.Duration
}

// NewTwoPhaseCache builds the layered cache from configuration.
func NewTwoPhaseCache(cfg domain.CacheConfig) (*TwoPhaseCache, error) {
	remote, err := NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, fmt.Errorf("failed to create redis cache: %w", err)
	}

	l1TTL := cfg.LocalTTL
	if l1TTL == 0 {
		l1TTL = 5 * time.Minute
	}

	return &TwoPhaseCache{
		local:  NewLRUCache(cfg.LocalMaxSize),
		remote: remote,
		l1TTL:  l1TTL,
	}, nil
}

// localTTL caps the LRU entry lifetime at the caller's TTL so the
// local layer never outlives the Redis entry.
func (c *TwoPhaseCache) localTTL(ttl time.Duration) time.Duration {
	if ttl < c.l1TTL {
		return ttl
	}
	return c.l1TTL
}

func (c *TwoPhaseCache) Get(ctx context.Context, facilityID string, key string) ([]byte, error) {
	if val, err := c.local.Get(ctx, facilityID, key); err != nil || val != nil {
		return val, err
	}

	val, err := c.remote.Get(ctx, facilityID, key)
	if err != nil {
		return nil, err
	}
	if val != nil {
		_ = c.local.Set(ctx, facilityID, key, val, c.l1TTL)
	}
	return val, nil
}

func (c *TwoPhaseCache) Set(ctx context.Context, facilityID string, key string, value []byte, ttl time.Duration) error {
	if err := c.local.Set(ctx, facilityID, key, value, c.localTTL(ttl)); err != nil {
		return err
	}
	return c.remote.Set(ctx, facilityID, key, value, ttl)
}

func (c *TwoPhaseCache) Delete(ctx context.Context, facilityID string, key string) error {
	if err := c.local.Delete(ctx, facilityID, key); err != nil {
		return err
	}
	return c.remote.Delete(ctx, facilityID, key)
}

// GetBill reads a session-bill snapshot, preferring the local layer
// and repopulating it on a Redis hit.
func (c *TwoPhaseCache) GetBill(ctx context.Context, facilityID string, sessionKey string) (*domain.BillCache, error) {
	if snap, err := c.local.GetBill(ctx, facilityID, sessionKey); err != nil || snap != nil {
		return snap, err
	}

	snap, err := c.remote.GetBill(ctx, facilityID, sessionKey)
	if err != nil {
		return nil, err
	}
	if snap != nil {
		_ = c.local.SetBill(ctx, facilityID, sessionKey, snap, c.l1TTL)
	}
	return snap, nil
}

// SetBill writes a session-bill snapshot through both layers.
func (c *TwoPhaseCache) SetBill(ctx context.Context, facilityID string, sessionKey string, data *domain.BillCache, ttl time.Duration) error {
	if err := c.local.SetBill(ctx, facilityID, sessionKey, data, c.localTTL(ttl)); err != nil {
		return err
	}
	return c.remote.SetBill(ctx, facilityID, sessionKey, data, ttl)
}

// IncrementCounter always goes to Redis; a locally buffered count
// would drift between nodes.
func (c *TwoPhaseCache) IncrementCounter(ctx context.Context, facilityID string, key string, window time.Duration) (int64, error) {
	return c.remote.IncrementCounter(ctx, facilityID, key, window)
}

func (c *TwoPhaseCache) Ping(ctx context.Context) error {
	if err := c.local.Ping(ctx); err != nil {
		return fmt.Errorf("local cache ping failed: %w", err)
	}
	if err := c.remote.Ping(ctx); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (c *TwoPhaseCache) Close() error {
	_ = c.local.Close()
	return c.remote.Close()
}

// Stats reports the local layer's size and capacity.
func (c *TwoPhaseCache) Stats() (size int, capacity int) {
	return c.local.Stats()
}
