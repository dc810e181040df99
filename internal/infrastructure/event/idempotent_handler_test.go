package event

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stockpulse/invsync/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubStore struct {
	seen map[string]bool
	err  error
}

func (s *stubStore) MarkProcessed(_ context.Context, key string, _ time.Duration) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	if s.seen[key] {
		return false, nil
	}
	s.seen[key] = true
	return true, nil
}

func (s *stubStore) IsProcessed(_ context.Context, key string) (bool, error) {
	return s.seen[key], s.err
}

func (s *stubStore) Close() error { return nil }

func TestIdempotentHandler_DropsRedelivery(t *testing.T) {
	inner := testutil.NewRecordingEventHandler("A")
	h := NewIdempotentHandler(inner, &stubStore{seen: map[string]bool{}}, 0, nil)
	ev := newTestEvent("A", 1)

	require.NoError(t, h.Handle(context.Background(), ev))
	require.NoError(t, h.Handle(context.Background(), ev))
	require.NoError(t, h.Handle(context.Background(), newTestEvent("A", 1)))

	assert.Len(t, inner.Handled(), 2)
	assert.Equal(t, []string{"A"}, h.EventTypes())
}

func TestIdempotentHandler_StoreFailureStillDelivers(t *testing.T) {
	inner := testutil.NewRecordingEventHandler("A")
	h := NewIdempotentHandler(inner, &stubStore{err: errors.New("redis down")}, time.Minute, nil)

	require.NoError(t, h.Handle(context.Background(), newTestEvent("A", 1)))
	assert.Len(t, inner.Handled(), 1)
}
