// Package integration runs store syncs: fetch, reconcile, audit, then alert evaluation.
package integration

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	inventoryapp "github.com/stockpulse/invsync/internal/application/inventory"
	"github.com/stockpulse/invsync/internal/domain/catalog"
	"github.com/stockpulse/invsync/internal/domain/integration"
	"github.com/stockpulse/invsync/internal/domain/shared"
	"github.com/stockpulse/invsync/internal/infrastructure/config"
	"github.com/stockpulse/invsync/internal/infrastructure/logger"
	"github.com/stockpulse/invsync/internal/infrastructure/telemetry"
)

// Outcome reasons for a sync that did not complete
const (
	ReasonPrecondition = "precondition"
	ReasonTransport    = "transport"
	ReasonInternal     = "internal"
)

// Defaults applied when SyncConfig leaves a field at zero
const (
	DefaultPacingDelay  = 2 * time.Second
	DefaultFetchTimeout = 2 * time.Minute
	DefaultLockTTL      = 10 * time.Minute
)

// Reconciler applies remote snapshots to local products
type Reconciler interface {
	Reconcile(ctx context.Context, storeIntegrationID uint64, snapshots []integration.RemoteProductSnapshot) (*inventoryapp.ReconcileResult, error)
}

// SyncOutcome is the structured result of one SyncOne or SyncProduct call.
// Status is empty when a precondition failed and no log was written.
type SyncOutcome struct {
	StoreIntegrationID uint64
	SyncLogID          uint64
	SyncType           integration.SyncType
	Status             integration.SyncStatus
	Reason             string
	Message            string
	Created            int
	Updated            int
	Skipped            int
	Synced             int
	Failed             int
	Changes            []inventoryapp.QuantityChange
	Duration           time.Duration
	Err                error
}

// Succeeded reports whether the log was closed as completed
func (o SyncOutcome) Succeeded() bool {
	return o.Status == integration.SyncStatusCompleted
}

// SyncRunnerDeps are the collaborators of a SyncRunner
type SyncRunnerDeps struct {
	Stores     integration.StoreIntegrationRepository
	Logs       integration.SyncLogRepository
	Products   catalog.ProductRepository
	Clients    integration.StoreClientRegistry
	Reconciler Reconciler
	Locker     integration.SyncLocker
	Publisher  shared.EventPublisher
	Metrics    *telemetry.SyncMetrics
}

// SyncRunner drives store syncs. Every run that passes its preconditions leaves exactly
// one closed InventorySyncLog, whatever the exit path.
type SyncRunner struct {
	deps   SyncRunnerDeps
	cfg    config.SyncConfig
	now    func() time.Time
	sleep  func(ctx context.Context, d time.Duration) error
	logger *zap.Logger
}

// NewSyncRunner creates a runner
func NewSyncRunner(deps SyncRunnerDeps, cfg config.SyncConfig, l *zap.Logger) *SyncRunner {
	if cfg.PacingDelay < 0 {
		cfg.PacingDelay = 0
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = DefaultFetchTimeout
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = DefaultLockTTL
	}
	if l == nil {
		l = zap.NewNop()
	}
	return &SyncRunner{
		deps:   deps,
		cfg:    cfg,
		now:    time.Now,
		sleep:  sleepContext,
		logger: l,
	}
}

// SetClock replaces the time source
func (r *SyncRunner) SetClock(now func() time.Time) {
	r.now = now
}

// SyncOne syncs one store integration
func (r *SyncRunner) SyncOne(ctx context.Context, storeIntegrationID uint64, syncType integration.SyncType) SyncOutcome {
	return r.run(ctx, storeIntegrationID, nil, syncType)
}

// SyncProduct syncs a single product: the whole store is fetched but only the
// snapshot with the product's SKU is applied, and the log is scoped to the product.
func (r *SyncRunner) SyncProduct(ctx context.Context, productID uint64, syncType integration.SyncType) SyncOutcome {
	p, err := r.deps.Products.FindByID(ctx, productID)
	if err != nil {
		return SyncOutcome{SyncType: syncType, Reason: ReasonPrecondition, Err: err, Message: err.Error()}
	}
	return r.run(ctx, p.StoreIntegrationID, p, syncType)
}

// SyncAll syncs every active integration one after another, pausing PacingDelay
// between stores. It stops early only when ctx is done.
func (r *SyncRunner) SyncAll(ctx context.Context, syncType integration.SyncType) ([]SyncOutcome, error) {
	stores, err := r.deps.Stores.FindActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("load active store integrations: %w", err)
	}

	outcomes := make([]SyncOutcome, 0, len(stores))
	for i := range stores {
		if i > 0 && r.cfg.PacingDelay > 0 {
			if err := r.sleep(ctx, r.cfg.PacingDelay); err != nil {
				return outcomes, err
			}
		}
		if err := ctx.Err(); err != nil {
			return outcomes, err
		}
		outcomes = append(outcomes, r.SyncOne(ctx, stores[i].ID, syncType))
	}

	succeeded := 0
	for _, o := range outcomes {
		if o.Succeeded() {
			succeeded++
		}
	}
	r.logger.Info("Sync of all stores finished",
		zap.String("sync_type", string(syncType)),
		zap.Int("stores", len(outcomes)),
		zap.Int("succeeded", succeeded),
	)
	return outcomes, nil
}

func (r *SyncRunner) run(ctx context.Context, storeIntegrationID uint64, product *catalog.Product, syncType integration.SyncType) (out SyncOutcome) {
	start := r.now()
	out = SyncOutcome{StoreIntegrationID: storeIntegrationID, SyncType: syncType}

	ctx, span := telemetry.StartSpan(ctx, "sync.one",
		telemetry.SpanAttrStoreID, storeIntegrationID,
		telemetry.SpanAttrSyncType, string(syncType),
	)
	defer span.End()

	correlationID := logger.GetCorrelationID(ctx)
	if correlationID == "" {
		correlationID = uuid.NewString()
	}
	ctx, l := logger.WithCorrelationID(ctx, logger.ForStore(r.logger, storeIntegrationID), correlationID)

	store, release, client, err := r.checkPreconditions(ctx, storeIntegrationID, syncType)
	if err != nil {
		l.Info("Sync skipped", zap.Error(err))
		out.Reason = ReasonPrecondition
		out.Err = err
		out.Message = err.Error()
		telemetry.RecordError(span, err)
		r.deps.Metrics.RecordSync(ctx, "", string(syncType), "skipped", ReasonPrecondition, 0, 0, r.now().Sub(start))
		return out
	}
	defer release()
	telemetry.SetAttributes(span, telemetry.SpanAttrPlatform, store.Platform.String())

	var productID *uint64
	if product != nil {
		id := product.ID
		productID = &id
	}
	log := integration.NewInventorySyncLog(storeIntegrationID, productID, syncType)
	_ = log.Start(r.now())
	if err := r.deps.Logs.Create(ctx, log); err != nil {
		out.Reason = ReasonInternal
		out.Err = fmt.Errorf("create sync log: %w", err)
		out.Message = out.Err.Error()
		telemetry.RecordError(span, out.Err)
		return out
	}
	out.SyncLogID = log.ID
	telemetry.SetAttributes(span, telemetry.SpanAttrSyncLogID, log.ID)

	defer func() {
		if rec := recover(); rec != nil {
			err := fmt.Errorf("panic during sync: %v", rec)
			l.Error("Sync panicked", zap.Any("panic", rec), zap.Stack("stacktrace"))
			r.fail(ctx, store, log, &out, ReasonInternal, err)
		}
		out.Duration = r.now().Sub(start)
		if out.Err != nil {
			telemetry.RecordError(span, out.Err)
		}
		r.deps.Metrics.RecordSync(ctx, store.Platform.String(), string(syncType), string(out.Status), out.Reason, out.Synced, out.Failed, out.Duration)
	}()

	fetchCtx, cancel := context.WithTimeout(ctx, r.cfg.FetchTimeout)
	snapshots, err := client.FetchProducts(fetchCtx, store)
	cancel()
	if err != nil {
		r.fail(ctx, store, log, &out, ReasonTransport, fmt.Errorf("fetch products: %w", err))
		return out
	}

	scopeSkipped := 0
	if product != nil {
		snapshots, scopeSkipped = filterSKU(snapshots, product.SKU)
	}

	result, err := r.deps.Reconciler.Reconcile(ctx, storeIntegrationID, snapshots)
	if err != nil {
		r.fail(ctx, store, log, &out, ReasonInternal, fmt.Errorf("reconcile: %w", err))
		return out
	}
	result.Skipped += scopeSkipped

	out.Created, out.Updated, out.Skipped = result.Created, result.Updated, result.Skipped
	out.Synced, out.Failed = result.Synced(), result.Failed()
	out.Changes = result.Changes
	out.Message = fmt.Sprintf("Synced %d products (%d created, %d updated, %d skipped, %d failed)",
		out.Synced, result.Created, result.Updated, result.Skipped, out.Failed)

	completedAt := r.now()
	_ = log.Complete(completedAt, out.Synced, out.Failed, out.Message, result.Details())
	if err := r.deps.Logs.Close(ctx, log); err != nil {
		r.fail(ctx, store, log, &out, ReasonInternal, fmt.Errorf("close sync log: %w", err))
		return out
	}
	out.Status = integration.SyncStatusCompleted

	if err := r.deps.Stores.UpdateLastSyncAt(ctx, storeIntegrationID, completedAt); err != nil {
		l.Warn("Failed to update last_sync_at", zap.Error(err))
	}

	l.Info("Sync completed",
		zap.Uint64("sync_log_id", log.ID),
		zap.String("platform", store.Platform.String()),
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", out.Failed),
	)

	// quantity events drive alert evaluation, so they go out only after the log is closed
	r.publish(ctx, result.Events()...)
	r.publish(ctx, integration.NewSyncCompletedEvent(store, log))
	return out
}

func (r *SyncRunner) checkPreconditions(ctx context.Context, id uint64, syncType integration.SyncType) (*integration.StoreIntegration, func(), integration.StoreClient, error) {
	if !syncType.IsValid() {
		return nil, nil, nil, fmt.Errorf("%w: sync type %q", shared.ErrInvalidInput, syncType)
	}
	store, err := r.deps.Stores.FindByID(ctx, id)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := store.CanSync(r.now()); err != nil {
		return nil, nil, nil, err
	}
	client, err := r.deps.Clients.ClientFor(store.Platform)
	if err != nil {
		return nil, nil, nil, err
	}
	release, ok, err := r.deps.Locker.TryLock(ctx, id, r.cfg.LockTTL)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("acquire sync lock: %w", err)
	}
	if !ok {
		return nil, nil, nil, integration.ErrSyncInProgress
	}
	return store, release, client, nil
}

// fail closes log as failed. The close runs detached from ctx so a cancelled
// caller still leaves a terminal log.
func (r *SyncRunner) fail(ctx context.Context, store *integration.StoreIntegration, log *integration.InventorySyncLog, out *SyncOutcome, reason string, cause error) {
	if out.Status == integration.SyncStatusCompleted {
		logger.L(ctx).Error("Sync error after log was closed", zap.Uint64("sync_log_id", log.ID), zap.Error(cause))
		return
	}
	out.Status = integration.SyncStatusFailed
	out.Reason = reason
	out.Err = cause
	out.Message = cause.Error()
	out.Synced = 0

	// a completion that never reached the store is rewritten as a failure
	if log.Status.IsTerminal() {
		log.Status = integration.SyncStatusInProgress
	}
	closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := log.Fail(r.now(), integration.TruncateText(cause.Error(), integration.MaxSyncMessageLength)); err == nil {
		r.closeFailed(closeCtx, log, reason)
	}
	logger.L(ctx).Warn("Sync failed", zap.Uint64("sync_log_id", log.ID), zap.String("reason", reason), zap.Error(cause))
	r.publish(closeCtx, integration.NewSyncFailedEvent(store, log))
}

// closeFailed stores a failed log, retrying once with a plain message if the
// store rejects the original one.
func (r *SyncRunner) closeFailed(ctx context.Context, log *integration.InventorySyncLog, reason string) {
	err := r.deps.Logs.Close(ctx, log)
	if err == nil || errors.Is(err, integration.ErrSyncLogInvalidTransition) {
		return
	}
	logger.L(ctx).Error("Failed to close sync log", zap.Uint64("sync_log_id", log.ID), zap.Error(err))

	log.Message = fmt.Sprintf("Sync failed (%s)", reason)
	if err := r.deps.Logs.Close(ctx, log); err != nil && !errors.Is(err, integration.ErrSyncLogInvalidTransition) {
		logger.L(ctx).Error("Failed to close sync log with fallback message", zap.Uint64("sync_log_id", log.ID), zap.Error(err))
	}
}

func (r *SyncRunner) publish(ctx context.Context, events ...shared.DomainEvent) {
	if r.deps.Publisher == nil || len(events) == 0 {
		return
	}
	if err := r.deps.Publisher.Publish(ctx, events...); err != nil {
		logger.L(ctx).Warn("Failed to publish sync events", zap.Error(err))
	}
}

func filterSKU(snapshots []integration.RemoteProductSnapshot, sku string) ([]integration.RemoteProductSnapshot, int) {
	var kept []integration.RemoteProductSnapshot
	for _, s := range snapshots {
		if strings.TrimSpace(s.SKU) == sku {
			kept = append(kept, s)
		}
	}
	return kept, len(snapshots) - len(kept)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
