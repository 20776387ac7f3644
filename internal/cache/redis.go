package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/opensource-health/heron/internal/domain"
	"github.com/redis/go-redis/v9"
)

// counterScript increments and stamps the window TTL on first use in
// one round trip, keeping the count atomic across nodes.
var counterScript = redis.NewScript(`
	local current = redis.call('INCR', KEYS[1])
	if current == 1 then
		redis.call('PEXPIRE', KEYS[1], ARGV[1])
	end
	return current
`)

// RedisCache is the pro-tier cache. Keys are namespaced
// "heron:<facility>:<key>" so facilities never collide even on a
// shared Redis instance.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache connects to Redis and verifies the connection before
// returning.
func NewRedisCache(addr, password string, db int) (*RedisCache, error) {
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisCache{client: client}, nil
}

func redisKey(facilityID, key string) string {
	return "heron:" + facilityID + ":" + key
}

func (c *RedisCache) Get(ctx context.Context, facilityID string, key string) ([]byte, error) {
	if facilityID == "" {
		return nil, fmt.Errorf("facilityID is required")
	}

	val, err := c.client.Get(ctx, redisKey(facilityID, key)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	return val, err
}

func (c *RedisCache) Set(ctx context.Context, facilityID string, key string, value []byte, ttl time.Duration) error {
	if facilityID == "" {
		return fmt.Errorf("facilityID is required")
	}
	return c.client.Set(ctx, redisKey(facilityID, key), value, ttl).Err()
}

func (c *RedisCache) Delete(ctx context.Context, facilityID string, key string) error {
	if facilityID == "" {
		return fmt.Errorf("facilityID is required")
	}
	return c.client.Del(ctx, redisKey(facilityID, key)).Err()
}

// GetBill reads a session-bill snapshot, or nil on a miss.
func (c *RedisCache) GetBill(ctx context.Context, facilityID string, sessionKey string) (*domain.BillCache, error) {
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
func (c *RedisCache) SetBill(ctx context.Context, facilityID string, sessionKey string, data *domain.BillCache, ttl time.Duration) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return c.Set(ctx, facilityID, "bill:"+sessionKey, raw, ttl)
}

// IncrementCounter bumps a rolling counter and returns the new count.
func (c *RedisCache) IncrementCounter(ctx context.Context, facilityID string, key string, window time.Duration) (int64, error) {
	if facilityID == "" {
		return 0, fmt.Errorf("facilityID is required")
	}

	full := redisKey(facilityID, "counter:"+key)
	return counterScript.Run(ctx, c.client, []string{full}, window.Milliseconds()).Int64()
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
