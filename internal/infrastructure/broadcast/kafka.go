package broadcast

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stockpulse/invsync/internal/domain/notification"
)

// MessageWriter is the subset of *kafka.Writer used here
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaBroadcaster writes envelopes to a topic keyed by channel, so all events
// of one user land on the same partition in order.
type KafkaBroadcaster struct {
	writer MessageWriter
}

// NewKafkaBroadcaster creates a synchronous writer on brokers/topic
func NewKafkaBroadcaster(brokers []string, topic string) *KafkaBroadcaster {
	return NewKafkaBroadcasterWithWriter(&kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 10 * time.Millisecond,
	})
}

// NewKafkaBroadcasterWithWriter wraps an existing writer
func NewKafkaBroadcasterWithWriter(w MessageWriter) *KafkaBroadcaster {
	return &KafkaBroadcaster{writer: w}
}

// Publish writes one message and waits for the broker ack
func (b *KafkaBroadcaster) Publish(ctx context.Context, channel, event string, payload map[string]any) error {
	body, err := encode(channel, event, payload)
	if err != nil {
		return err
	}
	msg := kafka.Message{
		Key:     []byte(channel),
		Value:   body,
		Time:    time.Now(),
		Headers: []kafka.Header{{Key: "event", Value: []byte(event)}},
	}
	if err := b.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka publish %s on %s: %w", event, channel, err)
	}
	return nil
}

// Close flushes and closes the writer
func (b *KafkaBroadcaster) Close() error {
	return b.writer.Close()
}

var _ notification.Broadcaster = (*KafkaBroadcaster)(nil)
