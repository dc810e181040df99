package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/stockpulse/invsync/internal/domain/integration"
	"github.com/stockpulse/invsync/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormSyncLogRepository_CreateAndClose(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewGormSyncLogRepository(db)
	ctx := context.Background()
	store := seedStore(t, db)

	log := integration.NewInventorySyncLog(store.ID, nil, integration.SyncTypeManual)
	require.NoError(t, log.Start(time.Now()))
	require.NoError(t, repo.Create(ctx, log))
	require.NotZero(t, log.ID)

	details := &integration.SyncDetails{Created: 1, Updated: 2, Errors: []integration.SyncItemDetail{{SKU: "", Message: "sku is required"}}}
	require.NoError(t, log.Complete(time.Now(), 3, 1, "Synced 3 products", details))
	require.NoError(t, repo.Close(ctx, log))

	found, err := repo.FindByID(ctx, log.ID)
	require.NoError(t, err)
	assert.Equal(t, integration.SyncStatusCompleted, found.Status)
	assert.Equal(t, 3, found.ProductsSynced)
	assert.Equal(t, 1, found.ProductsFailed)
	require.NotNil(t, found.CompletedAt)
	require.NotNil(t, found.Details)
	assert.Equal(t, 2, found.Details.Updated)
	assert.Len(t, found.Details.Errors, 1)

	// a terminal row is never rewritten
	again := *found
	again.Status = integration.SyncStatusFailed
	assert.ErrorIs(t, repo.Close(ctx, &again), integration.ErrSyncLogInvalidTransition)

	open := integration.NewInventorySyncLog(store.ID, nil, integration.SyncTypeManual)
	assert.ErrorIs(t, repo.Close(ctx, open), integration.ErrSyncLogInvalidTransition)
}

func TestGormSyncLogRepository_FindByStore(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewGormSyncLogRepository(db)
	ctx := context.Background()
	store := seedStore(t, db)

	for i := 0; i < 3; i++ {
		l := integration.NewInventorySyncLog(store.ID, nil, integration.SyncTypeScheduled)
		l.CreatedAt = time.Now().Add(time.Duration(i) * time.Minute)
		require.NoError(t, repo.Create(ctx, l))
	}

	logs, err := repo.FindByStore(ctx, store.ID, 2)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.True(t, logs[0].CreatedAt.After(logs[1].CreatedAt))

	_, err = repo.FindByID(ctx, 12345)
	assert.ErrorIs(t, err, integration.ErrSyncLogNotFound)
}
