package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/trinhlong183/Pharmaceutical-and-Cosmetic-Shop-Management-System-Frontend-sub000/internal/application/fulfillment"
)

// RedisStatusCache shares unified statuses across instances
type RedisStatusCache struct {
	client    redis.Cmdable
	keyPrefix string
	ttl       time.Duration
	logger    *zap.Logger
}

// NewRedisStatusCache creates a status cache on an existing client.
// The caller owns the client.
func NewRedisStatusCache(client redis.Cmdable, keyPrefix string, ttl time.Duration, logger *zap.Logger) *RedisStatusCache {
	if ttl <= 0 {
		ttl = DefaultStatusTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisStatusCache{client: client, keyPrefix: keyPrefix + "status:", ttl: ttl, logger: logger}
}

// Get retrieves the cached status of an order
func (c *RedisStatusCache) Get(ctx context.Context, orderID string) (*fulfillment.CachedStatus, bool, error) {
	key := c.keyPrefix + orderID

	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get status from cache: %w", err)
	}

	var status fulfillment.CachedStatus
	if err := json.Unmarshal(data, &status); err != nil {
		c.logger.Warn("Dropping corrupted status cache entry", zap.String("order_id", orderID), zap.Error(err))
		_ = c.client.Del(ctx, key)
		return nil, false, nil
	}
	return &status, true, nil
}

// Set stores the status of an order
func (c *RedisStatusCache) Set(ctx context.Context, orderID string, status fulfillment.CachedStatus) error {
	data, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("failed to marshal status: %w", err)
	}
	if err := c.client.Set(ctx, c.keyPrefix+orderID, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set status in cache: %w", err)
	}
	return nil
}

// Invalidate removes the status of an order
func (c *RedisStatusCache) Invalidate(ctx context.Context, orderID string) error {
	if err := c.client.Del(ctx, c.keyPrefix+orderID).Err(); err != nil {
		return fmt.Errorf("failed to invalidate status: %w", err)
	}
	return nil
}

// releaseScript deletes the busy key only while it holds the caller's token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisInFlightGuard marks orders busy across instances with SETNX and a TTL.
// Each hold stores a random token so an expired holder cannot release a
// newer one.
type RedisInFlightGuard struct {
	client    redis.Cmdable
	keyPrefix string
	ttl       time.Duration
}

// NewRedisInFlightGuard creates a guard on an existing client
func NewRedisInFlightGuard(client redis.Cmdable, keyPrefix string, ttl time.Duration) *RedisInFlightGuard {
	if ttl <= 0 {
		ttl = DefaultInFlightTTL
	}
	return &RedisInFlightGuard{client: client, keyPrefix: keyPrefix + "inflight:", ttl: ttl}
}

// Acquire sets the busy key if absent. It returns false when already held.
func (g *RedisInFlightGuard) Acquire(ctx context.Context, orderID string) (string, bool, error) {
	token := uuid.NewString()
	ok, err := g.client.SetNX(ctx, g.keyPrefix+orderID, token, g.ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("failed to acquire in-flight guard: %w", err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

// Release deletes the busy key if token still holds it
func (g *RedisInFlightGuard) Release(ctx context.Context, orderID, token string) error {
	if err := releaseScript.Run(ctx, g.client, []string{g.keyPrefix + orderID}, token).Err(); err != nil {
		return fmt.Errorf("failed to release in-flight guard: %w", err)
	}
	return nil
}

var (
	_ fulfillment.StatusCache   = (*RedisStatusCache)(nil)
	_ fulfillment.InFlightGuard = (*RedisInFlightGuard)(nil)
)
