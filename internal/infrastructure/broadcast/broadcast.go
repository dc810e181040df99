// Package broadcast implements the real-time channel used to push alert and
// sync events to connected dashboards. The driver is chosen by configuration:
// log (default), redis pub/sub or kafka.
package broadcast

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/stockpulse/invsync/internal/domain/notification"
	"github.com/stockpulse/invsync/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Driver names accepted in configuration
const (
	DriverLog   = "log"
	DriverRedis = "redis"
	DriverKafka = "kafka"
)

// Envelope is the wire form of a broadcast message
type Envelope struct {
	Channel string         `json:"channel"`
	Event   string         `json:"event"`
	Payload map[string]any `json:"payload"`
	SentAt  time.Time      `json:"sent_at"`
}

func encode(channel, event string, payload map[string]any) ([]byte, error) {
	b, err := json.Marshal(Envelope{Channel: channel, Event: event, Payload: payload, SentAt: time.Now().UTC()})
	if err != nil {
		return nil, fmt.Errorf("failed to encode broadcast %s: %w", event, err)
	}
	return b, nil
}

// LogBroadcaster writes broadcasts to the log; used when no transport is configured
type LogBroadcaster struct {
	logger *zap.Logger
}

// NewLogBroadcaster creates a LogBroadcaster
func NewLogBroadcaster(l *zap.Logger) *LogBroadcaster {
	if l == nil {
		l = zap.NewNop()
	}
	return &LogBroadcaster{logger: l.Named("broadcast")}
}

// Publish logs the event
func (b *LogBroadcaster) Publish(_ context.Context, channel, event string, payload map[string]any) error {
	b.logger.Info("Broadcast",
		zap.String("channel", channel),
		zap.String("event", event),
		zap.Any("payload", payload),
	)
	return nil
}

// Closer is implemented by broadcasters holding a connection
type Closer interface {
	Close() error
}

// New builds the broadcaster selected by cfg.Driver. redisPublisher is only
// consulted for the redis driver and may be nil otherwise.
func New(cfg config.BroadcastConfig, redisPublisher RedisPublisher, l *zap.Logger) (notification.Broadcaster, error) {
	switch cfg.Driver {
	case "", DriverLog:
		return NewLogBroadcaster(l), nil
	case DriverRedis:
		if redisPublisher == nil {
			return nil, fmt.Errorf("broadcast driver %q needs a redis connection", cfg.Driver)
		}
		return NewRedisBroadcaster(redisPublisher, ""), nil
	case DriverKafka:
		if len(cfg.KafkaBrokers) == 0 || cfg.KafkaTopic == "" {
			return nil, fmt.Errorf("broadcast driver %q needs brokers and a topic", cfg.Driver)
		}
		return NewKafkaBroadcaster(cfg.KafkaBrokers, cfg.KafkaTopic), nil
	default:
		return nil, fmt.Errorf("unknown broadcast driver %q", cfg.Driver)
	}
}

var _ notification.Broadcaster = (*LogBroadcaster)(nil)
