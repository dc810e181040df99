package broadcast

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"github.com/stockpulse/invsync/internal/domain/notification"
	"github.com/stockpulse/invsync/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRedisBroadcaster_Publish(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	ctx := context.Background()

	sub := client.Subscribe(ctx, "invsync:"+notification.UserChannel(9))
	t.Cleanup(func() { _ = sub.Close() })
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	b := NewRedisBroadcaster(client, "")
	require.NoError(t, b.Publish(ctx, notification.UserChannel(9), notification.EventStockAlertTriggered, map[string]any{"sku": "A"}))

	select {
	case msg := <-sub.Channel():
		var env Envelope
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &env))
		assert.Equal(t, "private-user.9", env.Channel)
		assert.Equal(t, notification.EventStockAlertTriggered, env.Event)
		assert.Equal(t, "A", env.Payload["sku"])
	case <-time.After(2 * time.Second):
		t.Fatal("no message received")
	}
}

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaBroadcaster_Publish(t *testing.T) {
	w := &fakeWriter{}
	b := NewKafkaBroadcasterWithWriter(w)

	require.NoError(t, b.Publish(context.Background(), "private-user.3", notification.EventSyncCompleted, map[string]any{"created": 2}))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "private-user.3", string(w.msgs[0].Key))
	assert.Equal(t, notification.EventSyncCompleted, string(w.msgs[0].Headers[0].Value))

	var env Envelope
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &env))
	assert.EqualValues(t, 2, env.Payload["created"])

	w.err = errors.New("broker down")
	assert.ErrorContains(t, b.Publish(context.Background(), "c", "e", nil), "broker down")

	require.NoError(t, b.Close())
	assert.True(t, w.closed)
}

func TestLogBroadcaster_Publish(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	b := NewLogBroadcaster(zap.New(core))

	require.NoError(t, b.Publish(context.Background(), "private-user.1", "evt", map[string]any{"k": "v"}))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "private-user.1", logs.All()[0].ContextMap()["channel"])
}

func TestNew(t *testing.T) {
	b, err := New(config.BroadcastConfig{}, nil, nil)
	require.NoError(t, err)
	assert.IsType(t, &LogBroadcaster{}, b)

	_, err = New(config.BroadcastConfig{Driver: DriverRedis}, nil, nil)
	assert.Error(t, err)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	b, err = New(config.BroadcastConfig{Driver: DriverRedis}, client, nil)
	require.NoError(t, err)
	assert.IsType(t, &RedisBroadcaster{}, b)

	_, err = New(config.BroadcastConfig{Driver: DriverKafka}, nil, nil)
	assert.Error(t, err)

	b, err = New(config.BroadcastConfig{Driver: DriverKafka, KafkaBrokers: []string{"localhost:9092"}, KafkaTopic: "alerts"}, nil, nil)
	require.NoError(t, err)
	kb, ok := b.(*KafkaBroadcaster)
	require.True(t, ok)
	require.NoError(t, kb.Close())

	_, err = New(config.BroadcastConfig{Driver: "pigeon"}, nil, nil)
	assert.Error(t, err)
}
