package telemetry

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// SyncMetrics are the instruments recorded by the sync runner, alert evaluator and dispatcher.
// A nil *SyncMetrics is valid and records nothing.
type SyncMetrics struct {
	syncRuns        *Counter
	syncDuration    *Histogram
	productsSynced  *Counter
	productsFailed  *Counter
	alertsTriggered *Counter
	alertsResolved  *Counter
	notifications   *Counter
}

// NewSyncMetrics creates the instruments on meter
func NewSyncMetrics(meter metric.Meter) (*SyncMetrics, error) {
	m := &SyncMetrics{}
	var errs []error
	var err error

	m.syncRuns, err = NewCounter(meter, "invsync.sync.runs", "Store sync runs by outcome", "{run}")
	errs = append(errs, err)
	m.syncDuration, err = NewHistogram(meter, "invsync.sync.duration", "Duration of a store sync", "s", SyncDurationBuckets...)
	errs = append(errs, err)
	m.productsSynced, err = NewCounter(meter, "invsync.sync.products_synced", "Snapshots reconciled", "{product}")
	errs = append(errs, err)
	m.productsFailed, err = NewCounter(meter, "invsync.sync.products_failed", "Snapshots rejected", "{product}")
	errs = append(errs, err)
	m.alertsTriggered, err = NewCounter(meter, "invsync.alerts.triggered", "Stock alerts fired", "{alert}")
	errs = append(errs, err)
	m.alertsResolved, err = NewCounter(meter, "invsync.alerts.resolved", "Stock alerts resolved", "{alert}")
	errs = append(errs, err)
	m.notifications, err = NewCounter(meter, "invsync.notifications", "Notification deliveries by channel", "{notification}")
	errs = append(errs, err)

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return m, nil
}

// RecordSync records one finished SyncOne call
func (m *SyncMetrics) RecordSync(ctx context.Context, platform, syncType, status, reason string, synced, failed int, d time.Duration) {
	if m == nil {
		return
	}
	attrs := []attribute.KeyValue{AttrPlatform.String(platform), AttrSyncType.String(syncType)}
	m.syncRuns.Inc(ctx, append(attrs, AttrStatus.String(status), AttrReason.String(reason))...)
	m.syncDuration.RecordDuration(ctx, d, append(attrs, AttrStatus.String(status))...)
	if synced > 0 {
		m.productsSynced.Add(ctx, int64(synced), attrs...)
	}
	if failed > 0 {
		m.productsFailed.Add(ctx, int64(failed), attrs...)
	}
}

// RecordAlerts records alert transitions from one evaluation
func (m *SyncMetrics) RecordAlerts(ctx context.Context, triggered, resolved int) {
	if m == nil {
		return
	}
	if triggered > 0 {
		m.alertsTriggered.Add(ctx, int64(triggered))
	}
	if resolved > 0 {
		m.alertsResolved.Add(ctx, int64(resolved))
	}
}

// RecordNotification records one channel delivery attempt
func (m *SyncMetrics) RecordNotification(ctx context.Context, channel string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.notifications.Inc(ctx, AttrChannel.String(channel), AttrResult.String(result))
}
