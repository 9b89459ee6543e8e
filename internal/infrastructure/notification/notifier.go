// Package notification delivers customer notifications produced by the
// fulfillment event handlers.
package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/trinhlong183/Pharmaceutical-and-Cosmetic-Shop-Management-System-Frontend-sub000/internal/application/fulfillment"
)

// DefaultChannel is the pub/sub channel the storefront listens on
const DefaultChannel = "customer-notifications"

// Publisher is the subset of the redis client used for notifications
type Publisher interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

// RedisNotifier publishes notifications as JSON on a Redis channel
type RedisNotifier struct {
	client  Publisher
	channel string
	logger  *zap.Logger
	now     func() time.Time
}

var _ fulfillment.Notifier = (*RedisNotifier)(nil)

// RedisNotifierOption is a functional option for configuring the notifier
type RedisNotifierOption func(*RedisNotifier)

// WithChannel sets the Pub/Sub channel name
func WithChannel(channel string) RedisNotifierOption {
	return func(n *RedisNotifier) {
		if channel != "" {
			n.channel = channel
		}
	}
}

// WithLogger sets the logger for the notifier
func WithLogger(logger *zap.Logger) RedisNotifierOption {
	return func(n *RedisNotifier) {
		n.logger = logger
	}
}

// NewRedisNotifier creates a notifier on an existing client. The caller
// keeps ownership of the client.
func NewRedisNotifier(client Publisher, opts ...RedisNotifierOption) *RedisNotifier {
	n := &RedisNotifier{
		client:  client,
		channel: DefaultChannel,
		logger:  zap.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Notify publishes one notification
func (n *RedisNotifier) Notify(ctx context.Context, msg fulfillment.Notification) error {
	if msg.OccurredAt.IsZero() {
		msg.OccurredAt = n.now().UTC()
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	receivers, err := n.client.Publish(ctx, n.channel, data).Result()
	if err != nil {
		n.logger.Error("Failed to publish notification",
			zap.String("channel", n.channel),
			zap.String("type", msg.Type),
			zap.Error(err))
		return fmt.Errorf("failed to publish notification: %w", err)
	}

	n.logger.Debug("Published notification",
		zap.String("type", msg.Type),
		zap.String("order_id", msg.OrderID),
		zap.String("channel", n.channel),
		zap.Int64("receivers", receivers))
	return nil
}

// LogNotifier writes notifications to the log. It is used when Redis is
// disabled.
type LogNotifier struct {
	logger *zap.Logger
}

var _ fulfillment.Notifier = (*LogNotifier)(nil)

// NewLogNotifier creates a log-only notifier
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.Named("notification")}
}

// Notify logs the notification
func (n *LogNotifier) Notify(_ context.Context, msg fulfillment.Notification) error {
	n.logger.Info("customer notification",
		zap.String("type", msg.Type),
		zap.String("order_id", msg.OrderID),
		zap.String("status", msg.Status),
		zap.String("message", msg.Message),
	)
	return nil
}

// New picks the Redis notifier when a client is available
func New(client *redis.Client, channel string, logger *zap.Logger) fulfillment.Notifier {
	if client == nil {
		return NewLogNotifier(logger)
	}
	return NewRedisNotifier(client, WithChannel(channel), WithLogger(logger))
}
