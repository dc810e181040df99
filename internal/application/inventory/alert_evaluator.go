package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/stockpulse/invsync/internal/domain/catalog"
	"github.com/stockpulse/invsync/internal/domain/inventory"
	"github.com/stockpulse/invsync/internal/domain/shared"
	"github.com/stockpulse/invsync/internal/infrastructure/logger"
	"github.com/stockpulse/invsync/internal/infrastructure/telemetry"
)

// AlertDispatcher delivers a triggered alert to its owner.
// Delivery failures are handled by the dispatcher; a returned error is only logged.
type AlertDispatcher interface {
	Dispatch(ctx context.Context, alert inventory.TriggeredAlert) error
}

// CheckResult summarises a CheckAlerts sweep
type CheckResult struct {
	Checked    int
	Triggered  int
	Resolved   int
	Renotified int
}

// AlertEvaluator fires and resolves stock alerts when a product quantity changes.
// Triggering uses a conditional update, so one crossing notifies at most once even
// when evaluations race.
type AlertEvaluator struct {
	alerts        inventory.StockAlertRepository
	products      catalog.ProductRepository
	dispatcher    AlertDispatcher
	publisher     shared.EventPublisher
	metrics       *telemetry.SyncMetrics
	renotifyAfter time.Duration
	now           func() time.Time
	logger        *zap.Logger
}

// EvaluatorOption configures an AlertEvaluator
type EvaluatorOption func(*AlertEvaluator)

// WithEventPublisher publishes StockAlertTriggered and StockAlertResolved events
func WithEventPublisher(p shared.EventPublisher) EvaluatorOption {
	return func(e *AlertEvaluator) { e.publisher = p }
}

// WithMetrics records alert transitions
func WithMetrics(m *telemetry.SyncMetrics) EvaluatorOption {
	return func(e *AlertEvaluator) { e.metrics = m }
}

// WithRenotifyAfter makes CheckAlerts repeat notifications for alerts still triggered after d
func WithRenotifyAfter(d time.Duration) EvaluatorOption {
	return func(e *AlertEvaluator) { e.renotifyAfter = d }
}

// WithClock replaces the time source
func WithClock(now func() time.Time) EvaluatorOption {
	return func(e *AlertEvaluator) { e.now = now }
}

// NewAlertEvaluator creates an evaluator
func NewAlertEvaluator(alerts inventory.StockAlertRepository, products catalog.ProductRepository, dispatcher AlertDispatcher, l *zap.Logger, opts ...EvaluatorOption) *AlertEvaluator {
	if l == nil {
		l = zap.NewNop()
	}
	e := &AlertEvaluator{
		alerts:     alerts,
		products:   products,
		dispatcher: dispatcher,
		now:        time.Now,
		logger:     l,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate checks every alert on productID against newQuantity. Armed alerts at or
// below their threshold are triggered and dispatched before Evaluate returns; triggered
// alerts above their threshold are resolved and re-armed.
func (e *AlertEvaluator) Evaluate(ctx context.Context, productID uint64, newQuantity int) ([]inventory.TriggeredAlert, error) {
	ctx, span := telemetry.StartSpan(ctx, "alerts.evaluate",
		telemetry.SpanAttrProductID, productID,
		telemetry.SpanAttrQuantity, newQuantity,
	)
	defer span.End()

	l := logger.L(ctx).With(zap.Uint64("product_id", productID), zap.Int("quantity", newQuantity))
	var errs []error

	armed, err := e.alerts.FindArmedByProduct(ctx, productID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("load armed alerts: %w", err)
	}

	var triggered []inventory.TriggeredAlert
	var events []shared.DomainEvent
	for i := range armed {
		a := &armed[i]
		if !a.ShouldTrigger(newQuantity) {
			continue
		}
		at := e.now()
		won, err := e.alerts.MarkTriggered(ctx, a.ID, at)
		if err != nil {
			errs = append(errs, fmt.Errorf("trigger alert %d: %w", a.ID, err))
			continue
		}
		if !won {
			l.Debug("Alert already triggered by a concurrent evaluation", zap.Uint64("alert_id", a.ID))
			continue
		}
		_ = a.Trigger(at)
		triggered = append(triggered, inventory.NewTriggeredAlert(a, newQuantity))
		events = append(events, inventory.NewStockAlertTriggeredEvent(a, newQuantity))
		l.Info("Stock alert triggered",
			zap.Uint64("alert_id", a.ID),
			zap.Uint64("user_id", a.UserID),
			zap.Int("threshold", a.Threshold),
		)
	}

	resolved := 0
	active, err := e.alerts.FindTriggeredByProduct(ctx, productID)
	if err != nil {
		errs = append(errs, fmt.Errorf("load triggered alerts: %w", err))
	}
	for i := range active {
		a := &active[i]
		if !a.ShouldResolve(newQuantity) {
			continue
		}
		at := e.now()
		ok, err := e.alerts.MarkResolved(ctx, a.ID, at)
		if err != nil {
			errs = append(errs, fmt.Errorf("resolve alert %d: %w", a.ID, err))
			continue
		}
		if !ok {
			continue
		}
		resolved++
		events = append(events, inventory.NewStockAlertResolvedEvent(a, newQuantity))
		l.Info("Stock alert resolved", zap.Uint64("alert_id", a.ID), zap.Int("threshold", a.Threshold))
	}

	for _, ta := range triggered {
		e.dispatch(ctx, ta)
	}
	e.publish(ctx, events)
	e.metrics.RecordAlerts(ctx, len(triggered), resolved)

	if err := errors.Join(errs...); err != nil {
		telemetry.RecordError(span, err)
		return triggered, err
	}
	return triggered, nil
}

// CheckAlerts sweeps every armed alert against the stored product quantity and,
// when re-notification is enabled, repeats notifications for alerts left triggered.
func (e *AlertEvaluator) CheckAlerts(ctx context.Context) (CheckResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "alerts.check")
	defer span.End()

	var res CheckResult
	armed, err := e.alerts.FindArmed(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return res, fmt.Errorf("load armed alerts: %w", err)
	}
	res.Checked = len(armed)

	var productIDs []uint64
	seen := make(map[uint64]struct{}, len(armed))
	for _, a := range armed {
		if _, ok := seen[a.ProductID]; ok {
			continue
		}
		seen[a.ProductID] = struct{}{}
		productIDs = append(productIDs, a.ProductID)
	}

	var errs []error
	if len(productIDs) > 0 {
		products, err := e.products.FindByIDs(ctx, productIDs)
		if err != nil {
			telemetry.RecordError(span, err)
			return res, fmt.Errorf("load products: %w", err)
		}
		for i := range products {
			if err := ctx.Err(); err != nil {
				return res, err
			}
			fired, err := e.Evaluate(ctx, products[i].ID, products[i].Quantity)
			res.Triggered += len(fired)
			if err != nil {
				errs = append(errs, err)
			}
		}
	}

	if e.renotifyAfter > 0 {
		n, err := e.renotify(ctx)
		res.Renotified = n
		if err != nil {
			errs = append(errs, err)
		}
	}

	logger.L(ctx).Info("Alert check finished",
		zap.Int("checked", res.Checked),
		zap.Int("triggered", res.Triggered),
		zap.Int("renotified", res.Renotified),
	)
	return res, errors.Join(errs...)
}

func (e *AlertEvaluator) renotify(ctx context.Context) (int, error) {
	due, err := e.alerts.FindRenotifyDue(ctx, e.now().Add(-e.renotifyAfter))
	if err != nil {
		return 0, fmt.Errorf("load alerts due for re-notification: %w", err)
	}
	n := 0
	for i := range due {
		a := &due[i]
		p, err := e.products.FindByID(ctx, a.ProductID)
		if err != nil {
			logger.L(ctx).Warn("Skipping re-notification", zap.Uint64("alert_id", a.ID), zap.Error(err))
			continue
		}
		ta := inventory.NewTriggeredAlert(a, p.Quantity)
		ta.Renotify = true
		e.dispatch(ctx, ta)
		n++
	}
	return n, nil
}

func (e *AlertEvaluator) dispatch(ctx context.Context, ta inventory.TriggeredAlert) {
	if e.dispatcher == nil {
		return
	}
	if err := e.dispatcher.Dispatch(ctx, ta); err != nil {
		logger.L(ctx).Error("Alert dispatch failed", zap.Uint64("alert_id", ta.AlertID), zap.Error(err))
	}
}

func (e *AlertEvaluator) publish(ctx context.Context, events []shared.DomainEvent) {
	if e.publisher == nil || len(events) == 0 {
		return
	}
	if err := e.publisher.Publish(ctx, events...); err != nil {
		logger.L(ctx).Warn("Failed to publish alert events", zap.Error(err))
	}
}

// QuantityChangedHandler evaluates alerts for every ProductQuantityChanged event
type QuantityChangedHandler struct {
	evaluator *AlertEvaluator
}

// NewQuantityChangedHandler creates the handler
func NewQuantityChangedHandler(evaluator *AlertEvaluator) *QuantityChangedHandler {
	return &QuantityChangedHandler{evaluator: evaluator}
}

// EventTypes returns the event types this handler is interested in
func (h *QuantityChangedHandler) EventTypes() []string {
	return []string{catalog.EventTypeProductQuantityChanged}
}

// Handle evaluates the product's alerts at its new quantity
func (h *QuantityChangedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	qc, ok := event.(*catalog.ProductQuantityChangedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			catalog.EventTypeProductQuantityChanged, event.EventType())
	}
	_, err := h.evaluator.Evaluate(ctx, qc.ProductID, qc.NewQuantity)
	return err
}

var _ shared.EventHandler = (*QuantityChangedHandler)(nil)
