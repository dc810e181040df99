package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/stockpulse/invsync/internal/infrastructure/config"
)

// Trigger names
const (
	SyncTriggerName       = "store-sync"
	AlertCheckTriggerName = "alert-check"
)

// NewSyncTrigger runs syncAll every cfg.SyncInterval
func NewSyncTrigger(cfg config.SchedulerConfig, syncAll JobFunc, l *zap.Logger) (*Trigger, error) {
	return NewTrigger(TriggerConfig{
		Name:       SyncTriggerName,
		Interval:   cfg.SyncInterval,
		RunOnStart: true,
	}, syncAll, l)
}

// NewAlertCheckTrigger runs checkAlerts every cfg.AlertCheckInterval
func NewAlertCheckTrigger(cfg config.SchedulerConfig, checkAlerts JobFunc, l *zap.Logger) (*Trigger, error) {
	return NewTrigger(TriggerConfig{
		Name:     AlertCheckTriggerName,
		Interval: cfg.AlertCheckInterval,
	}, checkAlerts, l)
}

// Group starts and stops a set of triggers together
type Group struct {
	triggers []*Trigger
}

// NewGroup creates a group of triggers
func NewGroup(triggers ...*Trigger) *Group {
	return &Group{triggers: triggers}
}

// Start starts every trigger, stopping the already started ones on failure
func (g *Group) Start(ctx context.Context) error {
	for i, t := range g.triggers {
		if err := t.Start(ctx); err != nil {
			stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			for _, started := range g.triggers[:i] {
				_ = started.Stop(stopCtx)
			}
			cancel()
			return err
		}
	}
	return nil
}

// Stop stops every trigger and returns the first error
func (g *Group) Stop(ctx context.Context) error {
	var first error
	for _, t := range g.triggers {
		if err := t.Stop(ctx); err != nil && first == nil {
			first = err
		}
	}
	return first
}
