package persistence

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stockpulse/invsync/internal/domain/catalog"
	"github.com/stockpulse/invsync/internal/domain/integration"
	"github.com/stockpulse/invsync/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedStore(t *testing.T, db *gorm.DB) *integration.StoreIntegration {
	t.Helper()
	s, err := integration.NewStoreIntegration(1, "Test Shop", integration.PlatformShopify, integration.Credentials{AccessToken: "tok"})
	require.NoError(t, err)
	require.NoError(t, NewGormStoreIntegrationRepository(db).Save(context.Background(), s))
	return s
}

func TestGormProductRepository_CreateIfAbsent(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()
	store := seedStore(t, db)

	p, err := catalog.NewProductFromListing(store.ID, catalog.Listing{
		SKU:            "MUG-01",
		Title:          "Mug",
		Quantity:       7,
		Price:          decimal.RequireFromString("12.5"),
		Images:         []string{"https://cdn.example.com/mug.png"},
		Variants:       []map[string]any{{"color": "red"}},
		AdditionalData: map[string]any{"vendor": "acme"},
	}, time.Now())
	require.NoError(t, err)

	created, err := repo.CreateIfAbsent(ctx, p)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotZero(t, p.ID)

	dup, err := catalog.NewProductFromListing(store.ID, catalog.Listing{SKU: "MUG-01", Quantity: 1}, time.Now())
	require.NoError(t, err)
	created, err = repo.CreateIfAbsent(ctx, dup)
	require.NoError(t, err)
	assert.False(t, created, "second insert for the same key is a no-op")

	found, err := repo.FindBySKU(ctx, store.ID, "MUG-01")
	require.NoError(t, err)
	assert.Equal(t, p.ID, found.ID)
	assert.Equal(t, 7, found.Quantity)
	assert.True(t, decimal.RequireFromString("12.5").Equal(found.Price))
	assert.Equal(t, []string{"https://cdn.example.com/mug.png"}, found.Images)
	assert.Equal(t, "red", found.Variants[0]["color"])
	assert.Equal(t, "acme", found.AdditionalData["vendor"])
	assert.Equal(t, catalog.DefaultLowStockThreshold, found.LowStockThreshold)
}

func TestGormProductRepository_SameSKUDifferentStores(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()
	a := seedStore(t, db)
	b := seedStore(t, db)

	for _, storeID := range []uint64{a.ID, b.ID} {
		p, err := catalog.NewProductFromListing(storeID, catalog.Listing{SKU: "SHARED"}, time.Now())
		require.NoError(t, err)
		created, err := repo.CreateIfAbsent(ctx, p)
		require.NoError(t, err)
		assert.True(t, created)
	}

	products, err := repo.FindByStore(ctx, a.ID)
	require.NoError(t, err)
	assert.Len(t, products, 1)
}

func TestGormProductRepository_ConcurrentCreateIfAbsent(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewGormProductRepository(db)
	store := seedStore(t, db)

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, _ := catalog.NewProductFromListing(store.ID, catalog.Listing{SKU: "RACE", Quantity: 1}, time.Now())
			created, err := repo.CreateIfAbsent(context.Background(), p)
			assert.NoError(t, err)
			if created {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	products, err := repo.FindByStore(context.Background(), store.ID)
	require.NoError(t, err)
	assert.Len(t, products, 1)
}

func TestGormProductRepository_SaveAndFind(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()
	store := seedStore(t, db)

	p, _ := catalog.NewProductFromListing(store.ID, catalog.Listing{SKU: "A", Quantity: 10}, time.Now())
	_, err := repo.CreateIfAbsent(ctx, p)
	require.NoError(t, err)

	p.ApplyListing(catalog.Listing{SKU: "A", Title: "Renamed", Quantity: 3}, time.Now())
	require.NoError(t, repo.Save(ctx, p))

	found, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", found.Title)
	assert.Equal(t, 3, found.Quantity)

	list, err := repo.FindByIDs(ctx, []uint64{p.ID, 9999})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	empty, err := repo.FindByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = repo.FindBySKU(ctx, store.ID, "missing")
	assert.ErrorIs(t, err, catalog.ErrProductNotFound)

	require.NoError(t, repo.Delete(ctx, p.ID))
	assert.ErrorIs(t, repo.Delete(ctx, p.ID), catalog.ErrProductNotFound)
}
