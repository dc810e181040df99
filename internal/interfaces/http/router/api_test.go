package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	integrationapp "github.com/stockpulse/invsync/internal/application/integration"
	inventoryapp "github.com/stockpulse/invsync/internal/application/inventory"
	"github.com/stockpulse/invsync/internal/domain/integration"
	"github.com/stockpulse/invsync/internal/interfaces/http/handler"
	"github.com/stockpulse/invsync/internal/interfaces/http/middleware"
)

type stubSyncer struct{ calls int }

func (s *stubSyncer) SyncOne(_ context.Context, id uint64, t integration.SyncType) integrationapp.SyncOutcome {
	s.calls++
	return integrationapp.SyncOutcome{StoreIntegrationID: id, SyncType: t, Status: integration.SyncStatusCompleted}
}

func (s *stubSyncer) SyncProduct(_ context.Context, _ uint64, t integration.SyncType) integrationapp.SyncOutcome {
	s.calls++
	return integrationapp.SyncOutcome{SyncType: t, Status: integration.SyncStatusCompleted}
}

type stubLogs struct{}

func (stubLogs) FindByID(context.Context, uint64) (*integration.InventorySyncLog, error) {
	return nil, integration.ErrSyncLogNotFound
}

func (stubLogs) FindByStore(context.Context, uint64, int) ([]integration.InventorySyncLog, error) {
	return nil, nil
}

type stubChecker struct{}

func (stubChecker) CheckAlerts(context.Context) (inventoryapp.CheckResult, error) {
	return inventoryapp.CheckResult{}, nil
}

func newTestEngine(t *testing.T, syncer *stubSyncer) *gin.Engine {
	t.Helper()
	return NewEngine(Handlers{
		System: handler.NewSystemHandler("invsync", "test", nil),
		Sync:   handler.NewSyncHandler(syncer, stubLogs{}),
		Alert:  handler.NewAlertHandler(stubChecker{}),
	}, EngineConfig{
		WebhookSecret: "0123456789abcdef",
		RateLimit:     100,
		RateBurst:     100,
		Tracing:       middleware.TracingConfig{Enabled: false},
	}, zaptest.NewLogger(t))
}

func TestNewEngine(t *testing.T) {
	t.Run("health needs no secret", func(t *testing.T) {
		w := httptest.NewRecorder()
		newTestEngine(t, &stubSyncer{}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	})

	t.Run("webhook requires secret", func(t *testing.T) {
		syncer := &stubSyncer{}
		w := httptest.NewRecorder()
		newTestEngine(t, syncer).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/stores/1/sync", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Zero(t, syncer.calls)
	})

	t.Run("webhook with secret syncs", func(t *testing.T) {
		syncer := &stubSyncer{}
		req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/stores/1/sync", nil)
		req.Header.Set(middleware.WebhookSecretHeader, "0123456789abcdef")
		req.Header.Set("X-Request-ID", "req-1")
		w := httptest.NewRecorder()
		newTestEngine(t, syncer).ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 1, syncer.calls)
		assert.Equal(t, "req-1", w.Header().Get("X-Request-ID"))
	})

	t.Run("sync log lookup is routed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/sync-logs/5", nil)
		req.Header.Set(middleware.WebhookSecretHeader, "0123456789abcdef")
		w := httptest.NewRecorder()
		newTestEngine(t, &stubSyncer{}).ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
