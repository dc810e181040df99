package inventory

import (
	"errors"
	"time"
)

var (
	ErrAlertNotFound         = errors.New("inventory: stock alert not found")
	ErrAlertInvalidThreshold = errors.New("inventory: alert threshold cannot be negative")
	ErrAlertInvalidMethod    = errors.New("inventory: invalid notification method")
	ErrAlertNotTriggered     = errors.New("inventory: stock alert is not triggered")
	ErrAlertAlreadyTriggered = errors.New("inventory: stock alert already triggered")
)

// AlertStatus is the lifecycle state of a stock alert
type AlertStatus string

const (
	AlertStatusPending   AlertStatus = "pending"
	AlertStatusTriggered AlertStatus = "triggered"
	AlertStatusResolved  AlertStatus = "resolved"
)

// NotificationMethod is the user's preferred delivery channel for an alert
type NotificationMethod string

const (
	NotificationMethodEmail   NotificationMethod = "email"
	NotificationMethodInApp   NotificationMethod = "in_app"
	NotificationMethodSlack   NotificationMethod = "slack"
	NotificationMethodDiscord NotificationMethod = "discord"
)

// IsValid returns true if the method is supported
func (m NotificationMethod) IsValid() bool {
	switch m {
	case NotificationMethodEmail, NotificationMethodInApp, NotificationMethodSlack, NotificationMethodDiscord:
		return true
	default:
		return false
	}
}

// StockAlert is a user's subscription to a product falling to or below a threshold.
//
// State machine: pending -> triggered -> resolved -> pending (reactivation).
// IsActive is an independent on/off switch. TriggeredAt is set at most once per
// crossing; an alert with a non-nil TriggeredAt never fires again until it is
// resolved or re-armed.
type StockAlert struct {
	ID                 uint64
	ProductID          uint64
	UserID             uint64
	Threshold          int
	Status             AlertStatus
	NotificationMethod NotificationMethod
	IsActive           bool
	TriggeredAt        *time.Time
	ResolvedAt         *time.Time
	NotifiedAt         *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// NewStockAlert creates an armed, active alert
func NewStockAlert(productID, userID uint64, threshold int, method NotificationMethod) (*StockAlert, error) {
	if threshold < 0 {
		return nil, ErrAlertInvalidThreshold
	}
	if !method.IsValid() {
		return nil, ErrAlertInvalidMethod
	}
	now := time.Now()
	return &StockAlert{
		ProductID:          productID,
		UserID:             userID,
		Threshold:          threshold,
		Status:             AlertStatusPending,
		NotificationMethod: method,
		IsActive:           true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}, nil
}

// IsArmed reports whether the alert can fire on the next crossing
func (a *StockAlert) IsArmed() bool {
	return a.IsActive && a.TriggeredAt == nil
}

// ShouldTrigger reports whether quantity is at or below the threshold
func (a *StockAlert) ShouldTrigger(quantity int) bool {
	return quantity <= a.Threshold
}

// ShouldResolve reports whether a triggered alert has recovered at quantity
func (a *StockAlert) ShouldResolve(quantity int) bool {
	return a.TriggeredAt != nil && quantity > a.Threshold
}

// Trigger records a crossing
func (a *StockAlert) Trigger(at time.Time) error {
	if a.TriggeredAt != nil {
		return ErrAlertAlreadyTriggered
	}
	a.Status = AlertStatusTriggered
	a.TriggeredAt = &at
	a.UpdatedAt = at
	return nil
}

// Resolve marks recovery above the threshold and re-arms the alert for the next crossing
func (a *StockAlert) Resolve(at time.Time) error {
	if a.TriggeredAt == nil {
		return ErrAlertNotTriggered
	}
	a.Status = AlertStatusResolved
	a.TriggeredAt = nil
	a.ResolvedAt = &at
	a.UpdatedAt = at
	return nil
}

// Reactivate switches the alert on and re-arms it as pending
func (a *StockAlert) Reactivate() {
	a.IsActive = true
	a.rearm()
}

// Deactivate switches the alert off without touching its status
func (a *StockAlert) Deactivate() {
	a.IsActive = false
	a.UpdatedAt = time.Now()
}

// UpdateThreshold edits the threshold; an edited alert is re-armed
func (a *StockAlert) UpdateThreshold(threshold int) error {
	if threshold < 0 {
		return ErrAlertInvalidThreshold
	}
	a.Threshold = threshold
	a.rearm()
	return nil
}

// MarkNotified stamps a successful delivery
func (a *StockAlert) MarkNotified(at time.Time) {
	a.NotifiedAt = &at
}

// NeedsRenotify reports whether a still-triggered alert was last notified more than cooldown ago.
// A zero cooldown disables re-notification.
func (a *StockAlert) NeedsRenotify(now time.Time, cooldown time.Duration) bool {
	if cooldown <= 0 || a.TriggeredAt == nil || !a.IsActive {
		return false
	}
	return a.NotifiedAt == nil || now.Sub(*a.NotifiedAt) > cooldown
}

func (a *StockAlert) rearm() {
	a.Status = AlertStatusPending
	a.TriggeredAt = nil
	a.UpdatedAt = time.Now()
}

// TriggeredAlert is one alert that fired for a crossing, handed to notification dispatch
type TriggeredAlert struct {
	AlertID     uint64
	ProductID   uint64
	UserID      uint64
	Threshold   int
	Quantity    int
	Method      NotificationMethod
	TriggeredAt time.Time
	// Renotify marks a repeat notification for an alert that is still triggered
	Renotify bool
}

// NewTriggeredAlert captures a just-triggered alert at quantity
func NewTriggeredAlert(a *StockAlert, quantity int) TriggeredAlert {
	ta := TriggeredAlert{
		AlertID:   a.ID,
		ProductID: a.ProductID,
		UserID:    a.UserID,
		Threshold: a.Threshold,
		Quantity:  quantity,
		Method:    a.NotificationMethod,
	}
	if a.TriggeredAt != nil {
		ta.TriggeredAt = *a.TriggeredAt
	}
	return ta
}
