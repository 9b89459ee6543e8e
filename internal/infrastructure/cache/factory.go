package cache

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/trinhlong183/Pharmaceutical-and-Cosmetic-Shop-Management-System-Frontend-sub000/internal/application/fulfillment"
	"github.com/trinhlong183/Pharmaceutical-and-Cosmetic-Shop-Management-System-Frontend-sub000/internal/infrastructure/config"
)

// Stores bundles the status cache and in-flight guard
type Stores struct {
	StatusCache fulfillment.StatusCache
	Guard       fulfillment.InFlightGuard
	// Redis is nil when the in-memory stores are in use
	Redis   *redis.Client
	closers []io.Closer
}

// Close releases the stores and the Redis client, if any
func (s *Stores) Close() error {
	var first error
	for _, c := range s.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Factory creates stores based on configuration
type Factory struct {
	redisConfig           config.RedisConfig
	statusTTL             time.Duration
	inFlightTTL           time.Duration
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// FactoryOption is a functional option for configuring the factory
type FactoryOption func(*Factory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *Factory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to in-memory stores when Redis is unavailable.
// Default is true.
func WithInMemoryFallback(allow bool) FactoryOption {
	return func(f *Factory) {
		f.allowInMemoryFallback = allow
	}
}

// NewFactory creates a new factory
func NewFactory(redisCfg config.RedisConfig, fulfillmentCfg config.FulfillmentConfig, opts ...FactoryOption) *Factory {
	f := &Factory{
		redisConfig:           redisCfg,
		statusTTL:             fulfillmentCfg.StatusCacheTTL,
		inFlightTTL:           fulfillmentCfg.InFlightTTL,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateRedisStores connects to Redis and builds Redis-backed stores
func (f *Factory) CreateRedisStores(ctx context.Context) (*Stores, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     f.redisConfig.Addr(),
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	prefix := f.redisConfig.KeyPrefix
	return &Stores{
		StatusCache: NewRedisStatusCache(client, prefix, f.statusTTL, f.logger),
		Guard:       NewRedisInFlightGuard(client, prefix, f.inFlightTTL),
		Redis:       client,
		closers:     []io.Closer{client},
	}, nil
}

// CreateInMemoryStores builds process-local stores.
// WARNING: the in-flight guard does not coordinate across instances.
func (f *Factory) CreateInMemoryStores() *Stores {
	statusCache := NewInMemoryStatusCache(f.statusTTL)
	guard := NewInMemoryInFlightGuard(f.inFlightTTL)
	return &Stores{
		StatusCache: statusCache,
		Guard:       guard,
		closers:     []io.Closer{statusCache, guard},
	}
}

// CreateStores uses Redis when enabled and reachable, falling back to
// in-memory stores when allowed
func (f *Factory) CreateStores(ctx context.Context) (*Stores, error) {
	if !f.redisConfig.Enabled {
		f.logger.Info("Redis disabled, using in-memory status cache and in-flight guard")
		return f.CreateInMemoryStores(), nil
	}

	stores, err := f.CreateRedisStores(ctx)
	if err == nil {
		f.logger.Info("using Redis status cache and in-flight guard", zap.String("addr", f.redisConfig.Addr()))
		return stores, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory stores. "+
		"Concurrent transitions on different instances are not serialised.",
		zap.Error(err),
	)
	return f.CreateInMemoryStores(), nil
}
