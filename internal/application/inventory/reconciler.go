package inventory

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/stockpulse/invsync/internal/domain/catalog"
	"github.com/stockpulse/invsync/internal/domain/integration"
	"github.com/stockpulse/invsync/internal/domain/shared"
	"github.com/stockpulse/invsync/internal/infrastructure/logger"
)

// ItemError describes a snapshot that could not be reconciled
type ItemError struct {
	Index   int    `json:"index"`
	SKU     string `json:"sku"`
	Message string `json:"message"`
}

// QuantityChange is a quantity transition produced by one reconciliation
type QuantityChange struct {
	ProductID   uint64 `json:"product_id"`
	SKU         string `json:"sku"`
	OldQuantity int    `json:"old_quantity"`
	NewQuantity int    `json:"new_quantity"`
}

// ReconcileResult summarises a batch reconciliation
type ReconcileResult struct {
	Created int
	Updated int
	Skipped int
	Errors  []ItemError
	Changes []QuantityChange

	events []shared.DomainEvent
}

// Synced is the number of snapshots written to a product row
func (r *ReconcileResult) Synced() int {
	return r.Created + r.Updated
}

// Failed is the number of snapshots rejected or not persisted
func (r *ReconcileResult) Failed() int {
	return len(r.Errors)
}

// Events returns the ProductQuantityChanged events in reconciliation order
func (r *ReconcileResult) Events() []shared.DomainEvent {
	return r.events
}

// Details converts the result to the structure stored on the sync log
func (r *ReconcileResult) Details() *integration.SyncDetails {
	d := &integration.SyncDetails{
		Created: r.Created,
		Updated: r.Updated,
		Skipped: r.Skipped,
	}
	for _, e := range r.Errors {
		d.Errors = append(d.Errors, integration.SyncItemDetail{SKU: e.SKU, Message: e.Message})
	}
	return d
}

// ProductReconciler upserts remote snapshots into the local product table.
// It never deletes products that are missing from a batch.
type ProductReconciler struct {
	products catalog.ProductRepository
	validate *validator.Validate
	now      func() time.Time
	logger   *zap.Logger
}

// NewProductReconciler creates a reconciler over products
func NewProductReconciler(products catalog.ProductRepository, l *zap.Logger) *ProductReconciler {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	})
	if l == nil {
		l = zap.NewNop()
	}
	return &ProductReconciler{
		products: products,
		validate: v,
		now:      time.Now,
		logger:   l,
	}
}

// SetClock replaces the time source
func (r *ProductReconciler) SetClock(now func() time.Time) {
	r.now = now
}

// Reconcile applies snapshots for one store. Invalid or unpersistable snapshots become
// ItemErrors and the batch continues; only context cancellation aborts it.
// When a SKU appears more than once the last occurrence wins and earlier ones are skipped.
func (r *ProductReconciler) Reconcile(ctx context.Context, storeIntegrationID uint64, snapshots []integration.RemoteProductSnapshot) (*ReconcileResult, error) {
	result := &ReconcileResult{}
	syncedAt := r.now()

	valid := make([]bool, len(snapshots))
	last := make(map[string]int, len(snapshots))
	for i := range snapshots {
		snapshots[i].SKU = strings.TrimSpace(snapshots[i].SKU)
		if err := r.validate.Struct(&snapshots[i]); err != nil {
			result.Errors = append(result.Errors, ItemError{Index: i, SKU: snapshots[i].SKU, Message: validationMessage(err)})
			continue
		}
		valid[i] = true
		last[snapshots[i].SKU] = i
	}

	for i := range snapshots {
		if !valid[i] {
			continue
		}
		if err := ctx.Err(); err != nil {
			return result, err
		}
		snap := &snapshots[i]
		if last[snap.SKU] != i {
			result.Skipped++
			continue
		}

		created, p, err := r.upsert(ctx, storeIntegrationID, snap, syncedAt)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return result, ctxErr
			}
			logger.L(ctx).Warn("Failed to reconcile product",
				zap.Uint64("store_integration_id", storeIntegrationID),
				zap.String("sku", snap.SKU),
				zap.Error(err),
			)
			result.Errors = append(result.Errors, ItemError{Index: i, SKU: snap.SKU, Message: err.Error()})
			continue
		}
		if created {
			result.Created++
		} else {
			result.Updated++
		}
		result.collect(p)
	}
	return result, nil
}

func (r *ProductReconciler) upsert(ctx context.Context, storeIntegrationID uint64, snap *integration.RemoteProductSnapshot, syncedAt time.Time) (bool, *catalog.Product, error) {
	listing := toListing(snap)

	existing, err := r.products.FindBySKU(ctx, storeIntegrationID, snap.SKU)
	switch {
	case errors.Is(err, catalog.ErrProductNotFound):
		p, err := catalog.NewProductFromListing(storeIntegrationID, listing, syncedAt)
		if err != nil {
			return false, nil, err
		}
		inserted, err := r.products.CreateIfAbsent(ctx, p)
		if err != nil {
			return false, nil, fmt.Errorf("create product: %w", err)
		}
		if inserted {
			p.RecordCreated()
			return true, p, nil
		}
		// lost the race to a concurrent insert; fall through to an update of the winner's row
		existing, err = r.products.FindBySKU(ctx, storeIntegrationID, snap.SKU)
		if err != nil {
			return false, nil, fmt.Errorf("reload product: %w", err)
		}
	case err != nil:
		return false, nil, fmt.Errorf("find product: %w", err)
	}

	existing.ApplyListing(listing, syncedAt)
	if err := r.products.Save(ctx, existing); err != nil {
		existing.ClearDomainEvents()
		return false, nil, fmt.Errorf("save product: %w", err)
	}
	return false, existing, nil
}

func (r *ReconcileResult) collect(p *catalog.Product) {
	for _, ev := range p.GetDomainEvents() {
		if qc, ok := ev.(*catalog.ProductQuantityChangedEvent); ok {
			r.Changes = append(r.Changes, QuantityChange{
				ProductID:   qc.ProductID,
				SKU:         qc.SKU,
				OldQuantity: qc.OldQuantity,
				NewQuantity: qc.NewQuantity,
			})
		}
		r.events = append(r.events, ev)
	}
	p.ClearDomainEvents()
}

func toListing(s *integration.RemoteProductSnapshot) catalog.Listing {
	return catalog.Listing{
		SKU:               s.SKU,
		Title:             s.Title,
		PlatformProductID: s.PlatformProductID,
		Quantity:          s.Quantity,
		Price:             s.Price,
		Description:       s.Description,
		Images:            s.Images,
		Variants:          s.Variants,
		AdditionalData:    s.AdditionalData,
	}
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		switch e.Tag() {
		case "required":
			msgs = append(msgs, e.Field()+" is required")
		case "max":
			msgs = append(msgs, e.Field()+" must be at most "+e.Param()+" characters")
		default:
			msgs = append(msgs, e.Field()+" is invalid")
		}
	}
	return strings.Join(msgs, "; ")
}
