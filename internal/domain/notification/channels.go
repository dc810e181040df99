package notification

import (
	"context"
	"fmt"
	"time"
)

// Broadcast event names
const (
	EventStockAlertTriggered = "stock.alert.triggered"
	EventSyncCompleted       = "inventory.sync.completed"
)

// UserChannel returns the private real-time channel of a user
func UserChannel(userID uint64) string {
	return fmt.Sprintf("private-user.%d", userID)
}

// AlertMessage is the fully resolved content of one alert notification
type AlertMessage struct {
	AlertID      uint64
	ProductID    uint64
	ProductTitle string
	SKU          string
	Quantity     int
	Threshold    int
	StoreID      uint64
	StoreName    string
	Platform     string
	TriggeredAt  time.Time
}

// Payload renders the message as the JSON payload shared by every channel
func (m AlertMessage) Payload() map[string]any {
	return map[string]any{
		"alert_id":      m.AlertID,
		"product_id":    m.ProductID,
		"product_title": m.ProductTitle,
		"sku":           m.SKU,
		"quantity":      m.Quantity,
		"threshold":     m.Threshold,
		"store_id":      m.StoreID,
		"store_name":    m.StoreName,
		"platform":      m.Platform,
		"triggered_at":  m.TriggeredAt.UTC().Format(time.RFC3339),
	}
}

// Recipient is who a notification is addressed to
type Recipient struct {
	UserID uint64
	Name   string
	Email  string
}

// Broadcaster pushes real-time events to a named channel
type Broadcaster interface {
	Publish(ctx context.Context, channel, event string, payload map[string]any) error
}

// Mailer delivers alert emails
type Mailer interface {
	SendAlertMail(ctx context.Context, to Recipient, msg AlertMessage) error
}

// WebhookNotifier posts an alert to a chat webhook (Slack or Discord)
type WebhookNotifier interface {
	Notify(ctx context.Context, kind, url string, msg AlertMessage) error
}
