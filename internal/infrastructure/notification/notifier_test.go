package notification

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/trinhlong183/Pharmaceutical-and-Cosmetic-Shop-Management-System-Frontend-sub000/internal/application/fulfillment"
)

type published struct {
	channel string
	payload []byte
}

type fakePublisher struct {
	sent []published
	err  error
}

func (f *fakePublisher) Publish(ctx context.Context, channel string, message any) *redis.IntCmd {
	if f.err != nil {
		return redis.NewIntResult(0, f.err)
	}
	f.sent = append(f.sent, published{channel: channel, payload: message.([]byte)})
	return redis.NewIntResult(1, nil)
}

// ==================== RedisNotifier Tests ====================

func TestRedisNotifier_Notify(t *testing.T) {
	t.Run("publishes JSON on the configured channel", func(t *testing.T) {
		pub := &fakePublisher{}
		n := NewRedisNotifier(pub, WithChannel("shop-notices"))

		at := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
		err := n.Notify(context.Background(), fulfillment.Notification{
			Type:       fulfillment.NotificationOrderApproved,
			OrderID:    "ord-1",
			Status:     "approved",
			Message:    "Your order has been approved",
			OccurredAt: at,
		})
		require.NoError(t, err)
		require.Len(t, pub.sent, 1)
		assert.Equal(t, "shop-notices", pub.sent[0].channel)

		var got fulfillment.Notification
		require.NoError(t, json.Unmarshal(pub.sent[0].payload, &got))
		assert.Equal(t, "ord-1", got.OrderID)
		assert.Equal(t, fulfillment.NotificationOrderApproved, got.Type)
		assert.True(t, at.Equal(got.OccurredAt))
	})

	t.Run("stamps a missing timestamp", func(t *testing.T) {
		pub := &fakePublisher{}
		n := NewRedisNotifier(pub)
		fixed := time.Date(2026, 5, 2, 9, 0, 0, 0, time.UTC)
		n.now = func() time.Time { return fixed }

		require.NoError(t, n.Notify(context.Background(), fulfillment.Notification{OrderID: "ord-2"}))

		var got fulfillment.Notification
		require.NoError(t, json.Unmarshal(pub.sent[0].payload, &got))
		assert.Equal(t, DefaultChannel, pub.sent[0].channel)
		assert.True(t, fixed.Equal(got.OccurredAt))
	})

	t.Run("empty channel option keeps the default", func(t *testing.T) {
		n := NewRedisNotifier(&fakePublisher{}, WithChannel(""))
		assert.Equal(t, DefaultChannel, n.channel)
	})

	t.Run("wraps publish errors", func(t *testing.T) {
		core, logs := observer.New(zapcore.ErrorLevel)
		n := NewRedisNotifier(&fakePublisher{err: assert.AnError}, WithLogger(zap.New(core)))

		err := n.Notify(context.Background(), fulfillment.Notification{Type: "order.rejected", OrderID: "ord-3"})
		require.Error(t, err)
		assert.ErrorIs(t, err, assert.AnError)
		assert.Equal(t, 1, logs.FilterMessage("Failed to publish notification").Len())
	})
}

// ==================== LogNotifier Tests ====================

func TestLogNotifier_Notify(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	n := NewLogNotifier(zap.New(core))

	err := n.Notify(context.Background(), fulfillment.Notification{
		Type:    fulfillment.NotificationShipmentCreated,
		OrderID: "ord-4",
		Status:  "Pending",
		Message: "Your shipment has been created",
	})
	require.NoError(t, err)

	entries := logs.FilterMessage("customer notification").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "ord-4", fields["order_id"])
	assert.Equal(t, fulfillment.NotificationShipmentCreated, fields["type"])
	assert.Equal(t, "notification", entries[0].LoggerName)
}

func TestNew(t *testing.T) {
	assert.IsType(t, &LogNotifier{}, New(nil, "", zap.NewNop()))

	client := redis.NewClient(&redis.Options{Addr: "localhost:0"})
	defer client.Close()
	n, ok := New(client, "chan", zap.NewNop()).(*RedisNotifier)
	require.True(t, ok)
	assert.Equal(t, "chan", n.channel)
}
