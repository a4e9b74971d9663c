// README: Tracking ledger; namespaced JSON cache plus per-order mutual
// exclusion around every read-modify-write. The backing store stays
// last-writer-wins, the ledger is what makes concurrent writers safe.
package tracking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"
)

var (
	// ErrMissingTrackingRecord means an order that should be in flight has no
	// ledger entry: a scheduling bug or premature TTL expiry. Surfaced, never
	// swallowed.
	ErrMissingTrackingRecord = errors.New("missing tracking record")

	// ErrUnknownExternalOrder means a provider external id has no recorded
	// mapping back to an internal order.
	ErrUnknownExternalOrder = errors.New("unknown external order id")
)

const (
	ordersNamespace = "orders"

	// External-id mappings live per provider, e.g. "kfc_orders:MOCK-1".
	externalNamespaceSuffix = "_orders"
)

// Cache is the minimal namespaced KV contract the ledger needs. The redis
// implementation lives in redis.go; tests use an in-memory map.
type Cache interface {
	Get(ctx context.Context, namespace, key string) ([]byte, bool, error)
	Set(ctx context.Context, namespace, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, namespace, key string) error
}

// Ledger is the sole source of truth for in-flight order status.
type Ledger struct {
	cache Cache
	ttl   time.Duration

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func NewLedger(cache Cache, ttl time.Duration) *Ledger {
	return &Ledger{cache: cache, ttl: ttl, locks: make(map[int64]*sync.Mutex)}
}

// orderLock returns the mutex serializing read-modify-write for one order.
func (l *Ledger) orderLock(orderID int64) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[orderID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[orderID] = m
	}
	return m
}

// Create persists the schedule-time record. It must complete before any
// worker is dispatched; that ordering is the only happens-before edge workers
// get.
func (l *Ledger) Create(ctx context.Context, orderID int64, rec *Record) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return l.cache.Set(ctx, ordersNamespace, orderKey(orderID), payload, l.ttl)
}

// Get loads the current record, or ErrMissingTrackingRecord.
func (l *Ledger) Get(ctx context.Context, orderID int64) (*Record, error) {
	payload, ok, err := l.cache.Get(ctx, ordersNamespace, orderKey(orderID))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("order %d: %w", orderID, ErrMissingTrackingRecord)
	}
	var rec Record
	if err := json.Unmarshal(payload, &rec); err != nil {
		return nil, fmt.Errorf("order %d: decode tracking record: %w", orderID, err)
	}
	return &rec, nil
}

// Update runs fn against the full current record under the order lock and
// writes the result back only when fn reports a change. fn always sees every
// sibling leg, never a narrowed view. Errors from fn abort without writing.
func (l *Ledger) Update(ctx context.Context, orderID int64, fn func(*Record) (bool, error)) (*Record, error) {
	lock := l.orderLock(orderID)
	lock.Lock()
	defer lock.Unlock()

	rec, err := l.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	changed, err := fn(rec)
	if err != nil {
		return nil, err
	}
	if !changed {
		return rec, nil
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	if err := l.cache.Set(ctx, ordersNamespace, orderKey(orderID), payload, l.ttl); err != nil {
		return nil, err
	}
	return rec, nil
}

// Delete drops the record and its lock.
func (l *Ledger) Delete(ctx context.Context, orderID int64) error {
	if err := l.cache.Delete(ctx, ordersNamespace, orderKey(orderID)); err != nil {
		return err
	}
	l.mu.Lock()
	delete(l.locks, orderID)
	l.mu.Unlock()
	return nil
}

type externalMapping struct {
	InternalOrderID int64 `json:"internal_order_id"`
}

// MapExternalID records provider external id -> internal order id so webhooks
// carrying only the external id can find their way back. Same TTL as the
// tracking record, never deleted earlier.
func (l *Ledger) MapExternalID(ctx context.Context, provider, externalID string, orderID int64) error {
	payload, err := json.Marshal(externalMapping{InternalOrderID: orderID})
	if err != nil {
		return err
	}
	return l.cache.Set(ctx, provider+externalNamespaceSuffix, externalID, payload, l.ttl)
}

// ResolveExternalID looks up the internal order for a provider external id.
func (l *Ledger) ResolveExternalID(ctx context.Context, provider, externalID string) (int64, error) {
	payload, ok, err := l.cache.Get(ctx, provider+externalNamespaceSuffix, externalID)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("%s order %s: %w", provider, externalID, ErrUnknownExternalOrder)
	}
	var m externalMapping
	if err := json.Unmarshal(payload, &m); err != nil {
		return 0, fmt.Errorf("%s order %s: decode mapping: %w", provider, externalID, err)
	}
	return m.InternalOrderID, nil
}

func orderKey(orderID int64) string {
	return strconv.FormatInt(orderID, 10)
}
