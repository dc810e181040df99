package inventory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/stockpulse/invsync/internal/domain/catalog"
	"github.com/stockpulse/invsync/internal/domain/inventory"
	"github.com/stockpulse/invsync/internal/infrastructure/event"
	"github.com/stockpulse/invsync/internal/infrastructure/persistence"
	"github.com/stockpulse/invsync/internal/testutil"
)

// recordingDispatcher collects every dispatched alert
type recordingDispatcher struct {
	mu     sync.Mutex
	alerts []inventory.TriggeredAlert
}

func (d *recordingDispatcher) Dispatch(_ context.Context, ta inventory.TriggeredAlert) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.alerts = append(d.alerts, ta)
	return nil
}

func (d *recordingDispatcher) Dispatched() []inventory.TriggeredAlert {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]inventory.TriggeredAlert, len(d.alerts))
	copy(out, d.alerts)
	return out
}

type alertFixture struct {
	repos      *persistence.Repositories
	dispatcher *recordingDispatcher
	product    *catalog.Product
}

func newAlertFixture(t *testing.T, qty int) *alertFixture {
	t.Helper()
	repos := persistence.NewRepositories(testutil.NewSQLiteDB(t))
	store := newStore(t, repos)

	p, err := catalog.NewProductFromListing(store.ID, catalog.Listing{SKU: "A", Title: "Widget", Quantity: qty}, time.Now())
	require.NoError(t, err)
	inserted, err := repos.Products.CreateIfAbsent(context.Background(), p)
	require.NoError(t, err)
	require.True(t, inserted)

	return &alertFixture{repos: repos, dispatcher: &recordingDispatcher{}, product: p}
}

func (f *alertFixture) addAlert(t *testing.T, threshold int, method inventory.NotificationMethod) *inventory.StockAlert {
	t.Helper()
	a, err := inventory.NewStockAlert(f.product.ID, 1, threshold, method)
	require.NoError(t, err)
	require.NoError(t, f.repos.Alerts.Save(context.Background(), a))
	return a
}

func (f *alertFixture) setQuantity(t *testing.T, qty int) {
	t.Helper()
	f.product.Quantity = qty
	require.NoError(t, f.repos.Products.Save(context.Background(), f.product))
}

func TestAlertEvaluator_Evaluate(t *testing.T) {
	ctx := context.Background()

	t.Run("triggers once per crossing and re-arms on recovery", func(t *testing.T) {
		f := newAlertFixture(t, 10)
		alert := f.addAlert(t, 5, inventory.NotificationMethodEmail)
		ev := NewAlertEvaluator(f.repos.Alerts, f.repos.Products, f.dispatcher, zaptest.NewLogger(t))

		fired, err := ev.Evaluate(ctx, f.product.ID, 4)
		require.NoError(t, err)
		require.Len(t, fired, 1)
		assert.Equal(t, alert.ID, fired[0].AlertID)
		assert.Equal(t, 4, fired[0].Quantity)
		assert.Equal(t, inventory.NotificationMethodEmail, fired[0].Method)
		assert.False(t, fired[0].TriggeredAt.IsZero())

		fired, err = ev.Evaluate(ctx, f.product.ID, 2)
		require.NoError(t, err)
		assert.Empty(t, fired, "still below threshold, no second notification")

		fired, err = ev.Evaluate(ctx, f.product.ID, 6)
		require.NoError(t, err)
		assert.Empty(t, fired)

		stored, err := f.repos.Alerts.FindByID(ctx, alert.ID)
		require.NoError(t, err)
		assert.Equal(t, inventory.AlertStatusResolved, stored.Status)
		assert.Nil(t, stored.TriggeredAt)
		assert.NotNil(t, stored.ResolvedAt)

		fired, err = ev.Evaluate(ctx, f.product.ID, 1)
		require.NoError(t, err)
		assert.Len(t, fired, 1, "re-armed alert fires on the next crossing")
		assert.Len(t, f.dispatcher.Dispatched(), 2)
	})

	t.Run("quantity equal to threshold triggers", func(t *testing.T) {
		f := newAlertFixture(t, 10)
		f.addAlert(t, 5, inventory.NotificationMethodInApp)
		ev := NewAlertEvaluator(f.repos.Alerts, f.repos.Products, f.dispatcher, zaptest.NewLogger(t))

		fired, err := ev.Evaluate(ctx, f.product.ID, 5)
		require.NoError(t, err)
		assert.Len(t, fired, 1)
	})

	t.Run("negative quantity triggers", func(t *testing.T) {
		f := newAlertFixture(t, 10)
		f.addAlert(t, 0, inventory.NotificationMethodInApp)
		ev := NewAlertEvaluator(f.repos.Alerts, f.repos.Products, f.dispatcher, zaptest.NewLogger(t))

		fired, err := ev.Evaluate(ctx, f.product.ID, -1)
		require.NoError(t, err)
		assert.Len(t, fired, 1)
	})

	t.Run("inactive alert never fires", func(t *testing.T) {
		f := newAlertFixture(t, 10)
		a := f.addAlert(t, 5, inventory.NotificationMethodInApp)
		a.Deactivate()
		require.NoError(t, f.repos.Alerts.Save(ctx, a))
		ev := NewAlertEvaluator(f.repos.Alerts, f.repos.Products, f.dispatcher, zaptest.NewLogger(t))

		fired, err := ev.Evaluate(ctx, f.product.ID, 0)
		require.NoError(t, err)
		assert.Empty(t, fired)
		assert.Empty(t, f.dispatcher.Dispatched())
	})

	t.Run("each alert uses its own threshold", func(t *testing.T) {
		f := newAlertFixture(t, 10)
		low := f.addAlert(t, 2, inventory.NotificationMethodInApp)
		high := f.addAlert(t, 8, inventory.NotificationMethodSlack)
		ev := NewAlertEvaluator(f.repos.Alerts, f.repos.Products, f.dispatcher, zaptest.NewLogger(t))

		fired, err := ev.Evaluate(ctx, f.product.ID, 7)
		require.NoError(t, err)
		require.Len(t, fired, 1)
		assert.Equal(t, high.ID, fired[0].AlertID)

		fired, err = ev.Evaluate(ctx, f.product.ID, 2)
		require.NoError(t, err)
		require.Len(t, fired, 1)
		assert.Equal(t, low.ID, fired[0].AlertID)
	})

	t.Run("concurrent evaluations notify once", func(t *testing.T) {
		f := newAlertFixture(t, 10)
		f.addAlert(t, 5, inventory.NotificationMethodInApp)
		ev := NewAlertEvaluator(f.repos.Alerts, f.repos.Products, f.dispatcher, zaptest.NewLogger(t))

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := ev.Evaluate(ctx, f.product.ID, 1)
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		assert.Len(t, f.dispatcher.Dispatched(), 1)
	})

	t.Run("publishes triggered and resolved events", func(t *testing.T) {
		f := newAlertFixture(t, 10)
		f.addAlert(t, 5, inventory.NotificationMethodInApp)
		bus := event.NewInMemoryEventBus(zaptest.NewLogger(t))
		rec := testutil.NewRecordingEventHandler(inventory.EventTypeStockAlertTriggered, inventory.EventTypeStockAlertResolved)
		bus.Subscribe(rec)
		ev := NewAlertEvaluator(f.repos.Alerts, f.repos.Products, f.dispatcher, zaptest.NewLogger(t), WithEventPublisher(bus))

		_, err := ev.Evaluate(ctx, f.product.ID, 3)
		require.NoError(t, err)
		_, err = ev.Evaluate(ctx, f.product.ID, 9)
		require.NoError(t, err)

		handled := rec.Handled()
		require.Len(t, handled, 2)
		assert.Equal(t, inventory.EventTypeStockAlertTriggered, handled[0].EventType())
		assert.Equal(t, inventory.EventTypeStockAlertResolved, handled[1].EventType())
	})
}

func TestAlertEvaluator_CheckAlerts(t *testing.T) {
	ctx := context.Background()

	t.Run("fires alerts on products already below threshold", func(t *testing.T) {
		f := newAlertFixture(t, 2)
		f.addAlert(t, 5, inventory.NotificationMethodInApp)
		ev := NewAlertEvaluator(f.repos.Alerts, f.repos.Products, f.dispatcher, zaptest.NewLogger(t))

		res, err := ev.CheckAlerts(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, res.Checked)
		assert.Equal(t, 1, res.Triggered)

		res, err = ev.CheckAlerts(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, res.Checked, "triggered alert is no longer armed")
		assert.Len(t, f.dispatcher.Dispatched(), 1)
	})

	t.Run("leaves healthy products alone", func(t *testing.T) {
		f := newAlertFixture(t, 50)
		f.addAlert(t, 5, inventory.NotificationMethodInApp)
		ev := NewAlertEvaluator(f.repos.Alerts, f.repos.Products, f.dispatcher, zaptest.NewLogger(t))

		res, err := ev.CheckAlerts(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, res.Checked)
		assert.Equal(t, 0, res.Triggered)
	})

	t.Run("re-notifies alerts left triggered past the cooldown", func(t *testing.T) {
		now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
		f := newAlertFixture(t, 10)
		alert := f.addAlert(t, 5, inventory.NotificationMethodInApp)
		ev := NewAlertEvaluator(f.repos.Alerts, f.repos.Products, f.dispatcher, zaptest.NewLogger(t),
			WithRenotifyAfter(24*time.Hour),
			WithClock(func() time.Time { return now }),
		)

		_, err := ev.Evaluate(ctx, f.product.ID, 3)
		require.NoError(t, err)
		f.setQuantity(t, 3)
		require.NoError(t, f.repos.Alerts.MarkNotified(ctx, alert.ID, now.Add(-2*time.Hour)))

		res, err := ev.CheckAlerts(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, res.Renotified, "inside the cooldown")

		require.NoError(t, f.repos.Alerts.MarkNotified(ctx, alert.ID, now.Add(-25*time.Hour)))
		res, err = ev.CheckAlerts(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, res.Renotified)

		dispatched := f.dispatcher.Dispatched()
		require.Len(t, dispatched, 2)
		assert.True(t, dispatched[1].Renotify)
		assert.Equal(t, 3, dispatched[1].Quantity)
	})
}

func TestQuantityChangedHandler(t *testing.T) {
	ctx := context.Background()
	f := newAlertFixture(t, 10)
	f.addAlert(t, 5, inventory.NotificationMethodInApp)
	h := NewQuantityChangedHandler(NewAlertEvaluator(f.repos.Alerts, f.repos.Products, f.dispatcher, zaptest.NewLogger(t)))

	assert.Equal(t, []string{catalog.EventTypeProductQuantityChanged}, h.EventTypes())

	f.product.Quantity = 4
	require.NoError(t, h.Handle(ctx, catalog.NewProductQuantityChangedEvent(f.product, 10, 4)))
	assert.Len(t, f.dispatcher.Dispatched(), 1)

	err := h.Handle(ctx, inventory.NewStockAlertTriggeredEvent(&inventory.StockAlert{ID: 1}, 0))
	assert.Error(t, err)
}
