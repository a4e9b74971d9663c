// README: Ledger tests, including the concurrent merge contract (run with -race).
package tracking

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"testing"
	"time"

	"catering/internal/modules/status"
)

// memCache is an in-memory stand-in for the redis cache.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	ttls map[string]time.Duration
}

func newMemCache() *memCache {
	return &memCache{data: make(map[string][]byte), ttls: make(map[string]time.Duration)}
}

func (c *memCache) Get(_ context.Context, namespace, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[namespace+":"+key]
	return v, ok, nil
}

func (c *memCache) Set(_ context.Context, namespace, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[namespace+":"+key] = value
	c.ttls[namespace+":"+key] = ttl
	return nil
}

func (c *memCache) Delete(_ context.Context, namespace, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, namespace+":"+key)
	return nil
}

func TestLedgerCreateGet(t *testing.T) {
	ctx := context.Background()
	cache := newMemCache()
	ledger := NewLedger(cache, 7*24*time.Hour)

	if err := ledger.Create(ctx, 17, NewRecord([]string{"1", "2"})); err != nil {
		t.Fatalf("create: %v", err)
	}
	rec, err := ledger.Get(ctx, 17)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(rec.Restaurants) != 2 {
		t.Fatalf("expected 2 legs, got %d", len(rec.Restaurants))
	}
	if ttl := cache.ttls["orders:17"]; ttl != 7*24*time.Hour {
		t.Errorf("ttl = %v, want 168h", ttl)
	}
}

func TestLedgerGetMissing(t *testing.T) {
	ledger := NewLedger(newMemCache(), time.Hour)
	if _, err := ledger.Get(context.Background(), 404); !errors.Is(err, ErrMissingTrackingRecord) {
		t.Fatalf("expected ErrMissingTrackingRecord, got %v", err)
	}
}

func TestLedgerUpdateAbortsOnError(t *testing.T) {
	ctx := context.Background()
	ledger := NewLedger(newMemCache(), time.Hour)
	if err := ledger.Create(ctx, 1, NewRecord([]string{"1"})); err != nil {
		t.Fatalf("create: %v", err)
	}

	boom := errors.New("boom")
	if _, err := ledger.Update(ctx, 1, func(r *Record) (bool, error) {
		r.ApplyLegStatus("1", status.Cooked)
		return true, boom
	}); !errors.Is(err, boom) {
		t.Fatalf("expected fn error, got %v", err)
	}
	rec, err := ledger.Get(ctx, 1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec.Restaurants["1"].Status != status.NotStarted {
		t.Error("failed update must not be written")
	}
}

// TestLedgerConcurrentWriters covers the webhook-race scenario: restaurant
// workers and a delivery webhook share one physical record; nobody's update
// may be lost.
func TestLedgerConcurrentWriters(t *testing.T) {
	ctx := context.Background()
	ledger := NewLedger(newMemCache(), time.Hour)

	const legs = 8
	ids := make([]string, legs)
	for i := range ids {
		ids[i] = strconv.Itoa(i + 1)
	}
	if err := ledger.Create(ctx, 42, NewRecord(ids)); err != nil {
		t.Fatalf("create: %v", err)
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(restaurantID string) {
			defer wg.Done()
			for _, s := range []status.OrderStatus{status.Cooking, status.Cooked} {
				_, err := ledger.Update(ctx, 42, func(r *Record) (bool, error) {
					if _, err := r.SetLegExternalID(restaurantID, "EXT-"+restaurantID); err != nil {
						return false, err
					}
					return r.ApplyLegStatus(restaurantID, s)
				})
				if err != nil {
					t.Errorf("leg %s: %v", restaurantID, err)
				}
			}
		}(id)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 10; i++ {
			_, err := ledger.Update(ctx, 42, func(r *Record) (bool, error) {
				r.SetDeliveryLocation(50.45, 30.52)
				return true, nil
			})
			if err != nil {
				t.Errorf("delivery writer: %v", err)
			}
		}
	}()
	wg.Wait()

	rec, err := ledger.Get(ctx, 42)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	for _, id := range ids {
		leg := rec.Restaurants[id]
		if leg.Status != status.Cooked {
			t.Errorf("leg %s: status = %s, want cooked", id, leg.Status)
		}
		if leg.ExternalID == nil || *leg.ExternalID != "EXT-"+id {
			t.Errorf("leg %s: lost external id", id)
		}
	}
	if rec.Delivery.Location == nil {
		t.Error("lost delivery location update")
	}
}

func TestExternalIDMapping(t *testing.T) {
	ctx := context.Background()
	cache := newMemCache()
	ledger := NewLedger(cache, time.Hour)

	if err := ledger.MapExternalID(ctx, "uklon", "abc-123", 17); err != nil {
		t.Fatalf("map: %v", err)
	}
	if _, ok := cache.data["uklon_orders:abc-123"]; !ok {
		t.Fatalf("expected uklon_orders namespace key, have %v", keysOf(cache.data))
	}
	orderID, err := ledger.ResolveExternalID(ctx, "uklon", "abc-123")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if orderID != 17 {
		t.Errorf("resolved order = %d, want 17", orderID)
	}
	if _, err := ledger.ResolveExternalID(ctx, "uklon", "nope"); !errors.Is(err, ErrUnknownExternalOrder) {
		t.Errorf("expected ErrUnknownExternalOrder, got %v", err)
	}
	if _, err := ledger.ResolveExternalID(ctx, "kfc", "abc-123"); !errors.Is(err, ErrUnknownExternalOrder) {
		t.Errorf("mappings must be namespaced per provider, got %v", err)
	}
}

func keysOf(m map[string][]byte) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, fmt.Sprint(k))
	}
	return out
}
