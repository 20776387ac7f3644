package cache

import (
	"context"
	"testing"
	"time"

	"github.com/opensource-health/heron/internal/domain"
)

func TestLRUCache(t *testing.T) {
	cache := NewLRUCache(100)
	ctx := context.Background()
	facilityID := "facility-001"

	t.Run("SetAndGet", func(t *testing.T) {
		err := cache.Set(ctx, facilityID, "key1", []byte("value1"), time.Minute)
		if err != nil {
			t.Fatalf("Set failed: %v", err)
		}

		val, err := cache.Get(ctx, facilityID, "key1")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}

		if string(val) != "value1" {
			t.Errorf("expected 'value1', got '%s'", string(val))
		}
	})

	t.Run("GetMiss", func(t *testing.T) {
		val, err := cache.Get(ctx, facilityID, "nonexistent")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if val != nil {
			t.Errorf("expected nil for cache miss, got: %v", val)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		_ = cache.Set(ctx, facilityID, "key2", []byte("value2"), time.Minute)

		err := cache.Delete(ctx, facilityID, "key2")
		if err != nil {
			t.Fatalf("Delete failed: %v", err)
		}

		val, _ := cache.Get(ctx, facilityID, "key2")
		if val != nil {
			t.Error("expected nil after delete")
		}
	})

	t.Run("TTLExpiration", func(t *testing.T) {
		_ = cache.Set(ctx, facilityID, "expiring", []byte("temp"), 10*time.Millisecond)

		// Should be available immediately
		val, _ := cache.Get(ctx, facilityID, "expiring")
		if val == nil {
			t.Error("expected value before expiration")
		}

		// Wait for expiration
		time.Sleep(20 * time.Millisecond)

		val, _ = cache.Get(ctx, facilityID, "expiring")
		if val != nil {
			t.Error("expected nil after expiration")
		}
	})

	t.Run("LRUEviction", func(t *testing.T) {
		smallCache := NewLRUCache(3)

		_ = smallCache.Set(ctx, facilityID, "a", []byte("1"), time.Minute)
		_ = smallCache.Set(ctx, facilityID, "b", []byte("2"), time.Minute)
		_ = smallCache.Set(ctx, facilityID, "c", []byte("3"), time.Minute)

		// Access 'a' to make it recently used
		_, _ = smallCache.Get(ctx, facilityID, "a")

		// Add 'd' - should evict 'b' (oldest accessed)
		_ = smallCache.Set(ctx, facilityID, "d", []byte("4"), time.Minute)

		// 'b' should be evicted
		val, _ := smallCache.Get(ctx, facilityID, "b")
		if val != nil {
			t.Error("expected 'b' to be evicted")
		}

		// 'a' should still be there
		val, _ = smallCache.Get(ctx, facilityID, "a")
		if val == nil {
			t.Error("expected 'a' to still exist")
		}
	})

	t.Run("FacilityIsolation", func(t *testing.T) {
		facility1 := "facility-001"
		facility2 := "facility-002"

		_ = cache.Set(ctx, facility1, "shared-key", []byte("facility1-value"), time.Minute)
		_ = cache.Set(ctx, facility2, "shared-key", []byte("facility2-value"), time.Minute)

		val1, _ := cache.Get(ctx, facility1, "shared-key")
		val2, _ := cache.Get(ctx, facility2, "shared-key")

		if string(val1) != "facility1-value" {
			t.Errorf("expected 'facility1-value', got '%s'", string(val1))
		}
		if string(val2) != "facility2-value" {
			t.Errorf("expected 'facility2-value', got '%s'", string(val2))
		}
	})

	t.Run("RequiresFacilityID", func(t *testing.T) {
		err := cache.Set(ctx, "", "key", []byte("value"), time.Minute)
		if err == nil {
			t.Error("expected error for empty facilityID")
		}

		_, err = cache.Get(ctx, "", "key")
		if err == nil {
			t.Error("expected error for empty facilityID")
		}
	})

	t.Run("IncrementCounter", func(t *testing.T) {
		window := 100 * time.Millisecond

		count1, err := cache.IncrementCounter(ctx, facilityID, "bills_saved", window)
		if err != nil {
			t.Fatalf("IncrementCounter failed: %v", err)
		}
		if count1 != 1 {
			t.Errorf("expected count 1, got %d", count1)
		}

		count2, _ := cache.IncrementCounter(ctx, facilityID, "bills_saved", window)
		if count2 != 2 {
			t.Errorf("expected count 2, got %d", count2)
		}

		// Wait for window to expire
		time.Sleep(150 * time.Millisecond)

		count3, _ := cache.IncrementCounter(ctx, facilityID, "bills_saved", window)
		if count3 != 1 {
			t.Errorf("expected count 1 after window reset, got %d", count3)
		}
	})

	t.Run("BillCache", func(t *testing.T) {
		data := &domain.BillCache{
			SessionID:    "session-abc",
			Type:         "outpatient",
			BillData:     `[{"category":"Medicine","name":"Paracetamol 500mg","price":15}]`,
			DaysAdmitted: 0,
			Total:        15,
			Currency:     "BDT",
		}

		err := cache.SetBill(ctx, facilityID, "session-abc:outpatient", data, time.Minute)
		if err != nil {
			t.Fatalf("SetBill failed: %v", err)
		}

		retrieved, err := cache.GetBill(ctx, facilityID, "session-abc:outpatient")
		if err != nil {
			t.Fatalf("GetBill failed: %v", err)
		}

		if retrieved.SessionID != data.SessionID {
			t.Errorf("expected SessionID %s, got %s", data.SessionID, retrieved.SessionID)
		}
		if retrieved.Total != data.Total {
			t.Errorf("expected Total %.2f, got %.2f", data.Total, retrieved.Total)
		}
	})

	t.Run("Stats", func(t *testing.T) {
		statsCache := NewLRUCache(50)
		_ = statsCache.Set(ctx, facilityID, "k1", []byte("v1"), time.Minute)
		_ = statsCache.Set(ctx, facilityID, "k2", []byte("v2"), time.Minute)

		size, capacity := statsCache.Stats()
		if size != 2 {
			t.Errorf("expected size 2, got %d", size)
		}
		if capacity != 50 {
			t.Errorf("expected capacity 50, got %d", capacity)
		}
	})

	t.Run("Ping", func(t *testing.T) {
		if err := cache.Ping(ctx); err != nil {
			t.Errorf("Ping failed: %v", err)
		}
	})

	t.Run("Close", func(t *testing.T) {
		testCache := NewLRUCache(10)
		_ = testCache.Set(ctx, facilityID, "k", []byte("v"), time.Minute)

		err := testCache.Close()
		if err != nil {
			t.Errorf("Close failed: %v", err)
		}

		// Cache should be empty after close
		val, _ := testCache.Get(ctx, facilityID, "k")
		if val != nil {
			t.Error("expected cache to be cleared after close")
		}
	})
}

func TestNewCache(t *testing.T) {
	t.Run("MemoryType", func(t *testing.T) {
		cfg := domain.CacheConfig{
			Type:         "memory",
			LocalMaxSize: 100,
		}

		cache, err := New(cfg)
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		defer cache.Close()

		_, ok := cache.(*LRUCache)
		if !ok {
			t.Error("expected LRUCache for memory type")
		}
	})

	t.Run("UnsupportedType", func(t *testing.T) {
		cfg := domain.CacheConfig{
			Type: "memcached",
		}

		_, err := New(cfg)
		if err == nil {
			t.Error("expected error for unsupported type")
		}
	})
}
