package integration

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInventorySyncLog_Lifecycle(t *testing.T) {
	l := NewInventorySyncLog(9, nil, SyncTypeManual)
	assert.Equal(t, SyncStatusPending, l.Status)

	start := time.Now()
	require.NoError(t, l.Start(start))
	assert.Equal(t, SyncStatusInProgress, l.Status)
	assert.ErrorIs(t, l.Start(start), ErrSyncLogInvalidTransition)

	end := start.Add(3 * time.Second)
	require.NoError(t, l.Complete(end, 4, 1, "Synced 4 products", &SyncDetails{Created: 1, Updated: 3}))
	assert.Equal(t, SyncStatusCompleted, l.Status)
	assert.Equal(t, 4, l.ProductsSynced)
	assert.Equal(t, 3*time.Second, l.Duration())

	// terminal logs are immutable
	assert.ErrorIs(t, l.Fail(end.Add(time.Second), "late"), ErrSyncLogInvalidTransition)
	assert.ErrorIs(t, l.Complete(end.Add(time.Second), 0, 0, "", nil), ErrSyncLogInvalidTransition)
	assert.Equal(t, end, *l.CompletedAt)
}

func TestInventorySyncLog_Fail(t *testing.T) {
	productID := uint64(5)
	l := NewInventorySyncLog(9, &productID, SyncTypeWebhook)
	require.NoError(t, l.Start(time.Now()))

	require.NoError(t, l.Fail(time.Now(), "fetch: connection refused"))
	assert.Equal(t, SyncStatusFailed, l.Status)
	assert.Equal(t, 0, l.ProductsSynced)
	assert.NotNil(t, l.CompletedAt)
	assert.True(t, l.Status.IsTerminal())
}

func TestInventorySyncLog_CompleteRequiresInProgress(t *testing.T) {
	l := NewInventorySyncLog(1, nil, SyncTypeScheduled)
	assert.ErrorIs(t, l.Complete(time.Now(), 1, 0, "", nil), ErrSyncLogInvalidTransition)
	assert.Zero(t, l.Duration())
}

func TestSyncType_IsValid(t *testing.T) {
	assert.True(t, SyncTypeWebhook.IsValid())
	assert.False(t, SyncType("cron").IsValid())
}

func TestSyncEvents(t *testing.T) {
	store := &StoreIntegration{ID: 4, UserID: 9, Platform: PlatformEtsy}
	log := NewInventorySyncLog(store.ID, nil, SyncTypeWebhook)
	log.ID = 11
	require.NoError(t, log.Start(time.Now()))
	require.NoError(t, log.Complete(time.Now(), 3, 1, "Synced 3 products", nil))

	completed := NewSyncCompletedEvent(store, log)
	assert.Equal(t, EventTypeSyncCompleted, completed.EventType())
	assert.Equal(t, uint64(11), completed.AggregateID())
	assert.Equal(t, uint64(9), completed.UserID)
	assert.Equal(t, 3, completed.ProductsSynced)
	assert.Equal(t, 1, completed.ProductsFailed)

	failed := NewSyncFailedEvent(store, log)
	assert.Equal(t, EventTypeSyncFailed, failed.EventType())
	assert.Equal(t, SyncTypeWebhook, failed.SyncType)
}
