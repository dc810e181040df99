package notification

import (
	"context"
	"time"
)

// TypeStockAlertTriggered is the in-app notification type for a fired alert
const TypeStockAlertTriggered = "stock_alert_triggered"

// InAppNotification is a persisted notification shown in the user's dashboard inbox
type InAppNotification struct {
	ID        uint64
	UserID    uint64
	Type      string
	Payload   map[string]any
	ReadAt    *time.Time
	CreatedAt time.Time
}

// NewInAppNotification creates an unread notification
func NewInAppNotification(userID uint64, typ string, payload map[string]any) *InAppNotification {
	return &InAppNotification{
		UserID:    userID,
		Type:      typ,
		Payload:   payload,
		CreatedAt: time.Now(),
	}
}

// MarkRead stamps the notification as read; reading twice keeps the first time
func (n *InAppNotification) MarkRead(at time.Time) {
	if n.ReadAt == nil {
		n.ReadAt = &at
	}
}

// InAppNotificationRepository persists in-app notifications
type InAppNotificationRepository interface {
	Create(ctx context.Context, n *InAppNotification) error
	FindUnreadByUser(ctx context.Context, userID uint64) ([]InAppNotification, error)
}
