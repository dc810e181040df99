// Package notification routes triggered stock alerts to their owner's channels.
package notification

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/stockpulse/invsync/internal/domain/catalog"
	"github.com/stockpulse/invsync/internal/domain/identity"
	"github.com/stockpulse/invsync/internal/domain/integration"
	"github.com/stockpulse/invsync/internal/domain/inventory"
	"github.com/stockpulse/invsync/internal/domain/notification"
	"github.com/stockpulse/invsync/internal/domain/shared"
	"github.com/stockpulse/invsync/internal/infrastructure/logger"
	"github.com/stockpulse/invsync/internal/infrastructure/telemetry"
)

// Channel names used in logs and metrics
const (
	ChannelBroadcast = "broadcast"
	ChannelInApp     = "in_app"
	ChannelEmail     = "email"
	ChannelSlack     = "slack"
	ChannelDiscord   = "discord"
)

// DefaultDedupeTTL bounds how long a crossing is remembered as delivered
const DefaultDedupeTTL = 7 * 24 * time.Hour

// Deps are the collaborators of a NotificationDispatcher.
// Mailer, Webhooks and Dedupe may be nil; the matching feature is then disabled.
type Deps struct {
	Alerts      inventory.StockAlertRepository
	Products    catalog.ProductRepository
	Stores      integration.StoreIntegrationRepository
	Users       identity.UserRepository
	InApp       notification.InAppNotificationRepository
	Broadcaster notification.Broadcaster
	Mailer      notification.Mailer
	Webhooks    notification.WebhookNotifier
	Dedupe      shared.IdempotencyStore
	DedupeTTL   time.Duration
	Metrics     *telemetry.SyncMetrics
}

// DispatchReport lists the outcome of each channel for one alert
type DispatchReport struct {
	AlertID   uint64
	Duplicate bool
	Delivered []string
	Failed    map[string]error
}

// NotificationDispatcher resolves a triggered alert into a message and fans it out:
// a real-time broadcast on the owner's private channel, an in-app record, and the
// alert's own method (email, slack or discord). Channel failures are logged and never
// propagated; notified_at is stamped when any channel succeeded.
type NotificationDispatcher struct {
	deps   Deps
	now    func() time.Time
	logger *zap.Logger
}

// NewNotificationDispatcher creates a dispatcher
func NewNotificationDispatcher(deps Deps, l *zap.Logger) *NotificationDispatcher {
	if deps.DedupeTTL <= 0 {
		deps.DedupeTTL = DefaultDedupeTTL
	}
	if l == nil {
		l = zap.NewNop()
	}
	return &NotificationDispatcher{deps: deps, now: time.Now, logger: l}
}

// SetClock replaces the time source
func (d *NotificationDispatcher) SetClock(now func() time.Time) {
	d.now = now
}

// Dispatch implements the alert evaluator's dispatcher port
func (d *NotificationDispatcher) Dispatch(ctx context.Context, ta inventory.TriggeredAlert) error {
	_, err := d.DispatchWithReport(ctx, ta)
	return err
}

// DispatchWithReport delivers ta and reports per-channel results.
// The error is non-nil only when the message could not be built.
func (d *NotificationDispatcher) DispatchWithReport(ctx context.Context, ta inventory.TriggeredAlert) (*DispatchReport, error) {
	ctx, span := telemetry.StartSpan(ctx, "notification.dispatch",
		telemetry.SpanAttrAlertID, ta.AlertID,
		telemetry.SpanAttrProductID, ta.ProductID,
	)
	defer span.End()

	report := &DispatchReport{AlertID: ta.AlertID, Failed: map[string]error{}}
	l := logger.L(ctx).With(zap.Uint64("alert_id", ta.AlertID), zap.Uint64("user_id", ta.UserID))

	dedupe := !ta.Renotify && d.deps.Dedupe != nil
	if dedupe {
		done, err := d.deps.Dedupe.IsProcessed(ctx, DedupeKey(ta))
		if err != nil {
			l.Warn("Dedupe store unavailable, delivering anyway", zap.Error(err))
		} else if done {
			l.Debug("Alert crossing already notified")
			report.Duplicate = true
			return report, nil
		}
	}

	msg, recipient, user, err := d.resolve(ctx, ta)
	if err != nil {
		telemetry.RecordError(span, err)
		return report, err
	}

	d.deliver(ctx, report, ChannelBroadcast, func() error {
		return d.deps.Broadcaster.Publish(ctx, notification.UserChannel(ta.UserID), notification.EventStockAlertTriggered, msg.Payload())
	})
	d.deliver(ctx, report, ChannelInApp, func() error {
		return d.deps.InApp.Create(ctx, notification.NewInAppNotification(ta.UserID, notification.TypeStockAlertTriggered, msg.Payload()))
	})

	switch ta.Method {
	case inventory.NotificationMethodEmail:
		d.deliver(ctx, report, ChannelEmail, func() error {
			if d.deps.Mailer == nil {
				return fmt.Errorf("mail channel is not configured")
			}
			return d.deps.Mailer.SendAlertMail(ctx, recipient, msg)
		})
	case inventory.NotificationMethodSlack:
		d.deliver(ctx, report, ChannelSlack, func() error {
			return d.notifyWebhook(ctx, ChannelSlack, user.SlackWebhookURL, msg)
		})
	case inventory.NotificationMethodDiscord:
		d.deliver(ctx, report, ChannelDiscord, func() error {
			return d.notifyWebhook(ctx, ChannelDiscord, user.DiscordWebhookURL, msg)
		})
	}

	for ch, err := range report.Failed {
		l.Warn("Notification channel failed", zap.String("channel", ch), zap.Error(err))
	}

	// the crossing counts as notified only once a channel took it
	if len(report.Delivered) > 0 {
		if err := d.deps.Alerts.MarkNotified(ctx, ta.AlertID, d.now()); err != nil {
			l.Warn("Failed to stamp notified_at", zap.Error(err))
		}
		if dedupe {
			if _, err := d.deps.Dedupe.MarkProcessed(ctx, DedupeKey(ta), d.deps.DedupeTTL); err != nil {
				l.Warn("Failed to record delivered crossing", zap.Error(err))
			}
		}
	}
	l.Info("Alert dispatched",
		zap.Strings("delivered", report.Delivered),
		zap.Int("failed", len(report.Failed)),
		zap.Bool("renotify", ta.Renotify),
	)
	return report, nil
}

// DedupeKey identifies one crossing of one alert
func DedupeKey(ta inventory.TriggeredAlert) string {
	return fmt.Sprintf("alert:%d:%d", ta.AlertID, ta.TriggeredAt.UnixNano())
}

func (d *NotificationDispatcher) resolve(ctx context.Context, ta inventory.TriggeredAlert) (notification.AlertMessage, notification.Recipient, *identity.User, error) {
	var msg notification.AlertMessage

	product, err := d.deps.Products.FindByID(ctx, ta.ProductID)
	if err != nil {
		return msg, notification.Recipient{}, nil, fmt.Errorf("load product %d: %w", ta.ProductID, err)
	}
	store, err := d.deps.Stores.FindByID(ctx, product.StoreIntegrationID)
	if err != nil {
		return msg, notification.Recipient{}, nil, fmt.Errorf("load store %d: %w", product.StoreIntegrationID, err)
	}
	user, err := d.deps.Users.FindByID(ctx, ta.UserID)
	if err != nil {
		return msg, notification.Recipient{}, nil, fmt.Errorf("load user %d: %w", ta.UserID, err)
	}

	msg = notification.AlertMessage{
		AlertID:      ta.AlertID,
		ProductID:    product.ID,
		ProductTitle: product.Title,
		SKU:          product.SKU,
		Quantity:     ta.Quantity,
		Threshold:    ta.Threshold,
		StoreID:      store.ID,
		StoreName:    store.Name,
		Platform:     store.Platform.DisplayName(),
		TriggeredAt:  ta.TriggeredAt,
	}
	return msg, notification.Recipient{UserID: user.ID, Name: user.Name, Email: user.Email}, user, nil
}

func (d *NotificationDispatcher) notifyWebhook(ctx context.Context, kind, url string, msg notification.AlertMessage) error {
	if d.deps.Webhooks == nil {
		return fmt.Errorf("%s channel is not configured", kind)
	}
	if url == "" {
		return fmt.Errorf("user has no %s webhook url", kind)
	}
	return d.deps.Webhooks.Notify(ctx, kind, url, msg)
}

func (d *NotificationDispatcher) deliver(ctx context.Context, report *DispatchReport, channel string, send func() error) {
	err := send()
	d.deps.Metrics.RecordNotification(ctx, channel, err)
	if err != nil {
		report.Failed[channel] = err
		return
	}
	report.Delivered = append(report.Delivered, channel)
}
