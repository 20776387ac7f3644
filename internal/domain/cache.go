package domain

import (
	"context"
	"time"
)

// Cache is the session-bill and counter store. Every call is scoped
// to one facility. Implementations report a miss as (nil, nil).
type Cache interface {
	Get(ctx context.Context, facilityID string, key string) ([]byte, error)
	Set(ctx context.Context, facilityID string, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, facilityID string, key string) error

	// GetBill reads a session-bill snapshot, or nil on a miss.
	GetBill(ctx context.Context, facilityID string, sessionKey string) (*BillCache, error)

	// SetBill stores a session-bill snapshot.
	SetBill(ctx context.Context, facilityID string, sessionKey string, data *BillCache, ttl time.Duration) error

	// IncrementCounter bumps a rolling counter and returns the new
	// count. Backs the per-facility bill-frequency tracking.
	IncrementCounter(ctx context.Context, facilityID string, key string, window time.Duration) (int64, error)

	Ping(ctx context.Context) error
	Close() error
}

// BillCache holds a cached session-bill snapshot served on repeat
// reads without a repository round trip.
type BillCache struct {
	SessionID    string  `json:"sessionId"`
	Type         string  `json:"type"`
	BillData     string  `json:"billData"`
	DaysAdmitted int     `json:"daysAdmitted"`
	Total        float64 `json:"total"`
	Currency     string  `json:"ccy"`
	UpdatedAt    string  `json:"updatedAt"`
}

// CacheConfig selects and tunes the cache implementation.
type CacheConfig struct {
	// Type is "memory" (community) or "redis" (pro).
	Type string

	LocalMaxSize int
	LocalTTL     time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// EnableTwoPhase fronts Redis with the local LRU.
	EnableTwoPhase bool
}
