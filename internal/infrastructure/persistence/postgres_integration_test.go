package persistence_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stockpulse/invsync/internal/domain/catalog"
	"github.com/stockpulse/invsync/internal/domain/identity"
	"github.com/stockpulse/invsync/internal/domain/integration"
	"github.com/stockpulse/invsync/internal/domain/inventory"
	"github.com/stockpulse/invsync/internal/infrastructure/persistence"
	"github.com/stockpulse/invsync/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgres_RepositoriesAgainstMigratedSchema(t *testing.T) {
	pg := testutil.NewPostgresDB(t)
	repos := persistence.NewRepositories(pg.DB)
	ctx := context.Background()

	user := &identity.User{Name: "Owner", Email: "owner@example.com"}
	require.NoError(t, repos.Users.Save(ctx, user))

	store, err := integration.NewStoreIntegration(user.ID, "Shop", integration.PlatformShopify, integration.Credentials{AccessToken: "t", ShopDomain: "shop.myshopify.com"})
	require.NoError(t, err)
	require.NoError(t, repos.Stores.Save(ctx, store))

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, _ := catalog.NewProductFromListing(store.ID, catalog.Listing{SKU: "SKU-PG", Quantity: 2}, time.Now())
			created, err := repos.Products.CreateIfAbsent(ctx, p)
			assert.NoError(t, err)
			if created {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins.Load())

	p, err := repos.Products.FindBySKU(ctx, store.ID, "SKU-PG")
	require.NoError(t, err)

	alert, err := inventory.NewStockAlert(p.ID, user.ID, 5, inventory.NotificationMethodInApp)
	require.NoError(t, err)
	require.NoError(t, repos.Alerts.Save(ctx, alert))

	ok, err := repos.Alerts.MarkTriggered(ctx, alert.ID, time.Now())
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repos.Alerts.MarkTriggered(ctx, alert.ID, time.Now())
	require.NoError(t, err)
	assert.False(t, ok)

	log := integration.NewInventorySyncLog(store.ID, nil, integration.SyncTypeManual)
	require.NoError(t, log.Start(time.Now()))
	require.NoError(t, repos.SyncLogs.Create(ctx, log))
	require.NoError(t, log.Fail(time.Now(), "boom"))
	require.NoError(t, repos.SyncLogs.Close(ctx, log))

	// deleting the store cascades to products, alerts and logs
	require.NoError(t, repos.Stores.Delete(ctx, store.ID))
	_, err = repos.Products.FindByID(ctx, p.ID)
	assert.ErrorIs(t, err, catalog.ErrProductNotFound)
	_, err = repos.Alerts.FindByID(ctx, alert.ID)
	assert.ErrorIs(t, err, inventory.ErrAlertNotFound)
}
