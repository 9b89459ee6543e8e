package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/trinhlong183/Pharmaceutical-and-Cosmetic-Shop-Management-System-Frontend-sub000/internal/application/fulfillment"
)

// DefaultStatusTTL is used when a cache is created without a TTL
const DefaultStatusTTL = 5 * time.Minute

// DefaultInFlightTTL bounds how long a crashed transition can hold an order.
// It covers a primary write plus a shipping write and a reload at the
// default backend timeout.
const DefaultInFlightTTL = time.Minute

// entry is a stored value with expiration
type entry[T any] struct {
	value     T
	expiresAt time.Time
}

func (e entry[T]) expired(now time.Time) bool {
	return !now.Before(e.expiresAt)
}

// ttlMap is a mutex-guarded map whose entries expire. A background loop
// removes expired entries until Close.
type ttlMap[T any] struct {
	mu        sync.Mutex
	entries   map[string]entry[T]
	now       func() time.Time
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

func newTTLMap[T any](sweep time.Duration) *ttlMap[T] {
	m := &ttlMap[T]{
		entries:  make(map[string]entry[T]),
		now:      time.Now,
		stopChan: make(chan struct{}),
	}
	m.wg.Add(1)
	go m.cleanupLoop(sweep)
	return m
}

func (m *ttlMap[T]) get(key string) (T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok || e.expired(m.now()) {
		var zero T
		return zero, false
	}
	return e.value, true
}

func (m *ttlMap[T]) set(key string, value T, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = entry[T]{value: value, expiresAt: m.now().Add(ttl)}
}

// setNX stores value only when key is absent or expired
func (m *ttlMap[T]) setNX(key string, value T, ttl time.Duration) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if e, ok := m.entries[key]; ok && !e.expired(now) {
		return false
	}
	m.entries[key] = entry[T]{value: value, expiresAt: now.Add(ttl)}
	return true
}

// deleteIf removes key only when its live value satisfies match
func (m *ttlMap[T]) deleteIf(key string, match func(T) bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok || e.expired(m.now()) || !match(e.value) {
		return false
	}
	delete(m.entries, key)
	return true
}

func (m *ttlMap[T]) delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
}

func (m *ttlMap[T]) size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (m *ttlMap[T]) Close() error {
	m.closeOnce.Do(func() {
		close(m.stopChan)
		m.wg.Wait()
	})
	return nil
}

func (m *ttlMap[T]) cleanupLoop(sweep time.Duration) {
	defer m.wg.Done()

	ticker := time.NewTicker(sweep)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopChan:
			return
		case <-ticker.C:
			m.cleanup()
		}
	}
}

func (m *ttlMap[T]) cleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for key, e := range m.entries {
		if e.expired(now) {
			delete(m.entries, key)
		}
	}
}

// InMemoryStatusCache keeps unified statuses in process memory.
// Suitable for single-instance deployments and testing.
type InMemoryStatusCache struct {
	*ttlMap[fulfillment.CachedStatus]
	ttl time.Duration
}

// NewInMemoryStatusCache creates an in-memory status cache
func NewInMemoryStatusCache(ttl time.Duration) *InMemoryStatusCache {
	if ttl <= 0 {
		ttl = DefaultStatusTTL
	}
	return &InMemoryStatusCache{ttlMap: newTTLMap[fulfillment.CachedStatus](time.Minute), ttl: ttl}
}

// Get returns the cached status of an order
func (c *InMemoryStatusCache) Get(_ context.Context, orderID string) (*fulfillment.CachedStatus, bool, error) {
	v, ok := c.get(orderID)
	if !ok {
		return nil, false, nil
	}
	return &v, true, nil
}

// Set stores the status of an order
func (c *InMemoryStatusCache) Set(_ context.Context, orderID string, status fulfillment.CachedStatus) error {
	c.set(orderID, status, c.ttl)
	return nil
}

// Invalidate drops the status of an order
func (c *InMemoryStatusCache) Invalidate(_ context.Context, orderID string) error {
	c.delete(orderID)
	return nil
}

// Size returns the number of entries (for testing/monitoring)
func (c *InMemoryStatusCache) Size() int {
	return c.size()
}

// InMemoryInFlightGuard marks orders busy in process memory. It does not
// coordinate across instances.
type InMemoryInFlightGuard struct {
	*ttlMap[string]
	ttl time.Duration
}

// NewInMemoryInFlightGuard creates an in-memory guard
func NewInMemoryInFlightGuard(ttl time.Duration) *InMemoryInFlightGuard {
	if ttl <= 0 {
		ttl = DefaultInFlightTTL
	}
	return &InMemoryInFlightGuard{ttlMap: newTTLMap[string](time.Minute), ttl: ttl}
}

// Acquire marks the order busy under a fresh token. It returns false when
// already held.
func (g *InMemoryInFlightGuard) Acquire(_ context.Context, orderID string) (string, bool, error) {
	token := uuid.NewString()
	if !g.setNX(orderID, token, g.ttl) {
		return "", false, nil
	}
	return token, true, nil
}

// Release clears the busy mark if token still holds it
func (g *InMemoryInFlightGuard) Release(_ context.Context, orderID, token string) error {
	g.deleteIf(orderID, func(held string) bool { return held == token })
	return nil
}

var (
	_ fulfillment.StatusCache   = (*InMemoryStatusCache)(nil)
	_ fulfillment.InFlightGuard = (*InMemoryInFlightGuard)(nil)
)
