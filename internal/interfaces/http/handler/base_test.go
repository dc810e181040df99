package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/stockpulse/invsync/internal/domain/catalog"
	"github.com/stockpulse/invsync/internal/domain/integration"
	"github.com/stockpulse/invsync/internal/domain/shared"
	"github.com/stockpulse/invsync/internal/infrastructure/logger"
	"github.com/stockpulse/invsync/internal/interfaces/http/dto"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestGetRequestID(t *testing.T) {
	t.Run("from correlation id", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		ctx, _ := logger.WithCorrelationID(req.Context(), zaptest.NewLogger(t), "ctx-id")
		req.Header.Set(RequestIDKey, "header-id")
		c.Request = req.WithContext(ctx)

		assert.Equal(t, "ctx-id", getRequestID(c))
	})

	t.Run("from header", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		c.Request.Header.Set(RequestIDKey, "header-id")

		assert.Equal(t, "header-id", getRequestID(c))
	})

	t.Run("empty when not set", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		assert.Empty(t, getRequestID(c))
	})
}

func TestBaseHandler_HandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"store not found", integration.ErrStoreNotFound, http.StatusNotFound, dto.ErrCodeNotFound},
		{"wrapped product not found", fmt.Errorf("load: %w", catalog.ErrProductNotFound), http.StatusNotFound, dto.ErrCodeNotFound},
		{"sync log not found", integration.ErrSyncLogNotFound, http.StatusNotFound, dto.ErrCodeNotFound},
		{"sync in progress", integration.ErrSyncInProgress, http.StatusConflict, dto.ErrCodeSyncInProgress},
		{"inactive store", integration.ErrStoreInactive, http.StatusUnprocessableEntity, dto.ErrCodePrecondition},
		{"expired token", integration.ErrTokenExpired, http.StatusUnprocessableEntity, dto.ErrCodePrecondition},
		{"unsupported platform", integration.ErrPlatformNotSupported, http.StatusUnprocessableEntity, dto.ErrCodePrecondition},
		{"platform auth", integration.ErrPlatformAuth, http.StatusBadGateway, dto.ErrCodeUpstream},
		{"domain error", shared.ErrInvalidState, http.StatusUnprocessableEntity, dto.ErrCodeInvalidState},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError, dto.ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &BaseHandler{}
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			h.HandleError(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			resp := decodeResponse(t, w)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.NotContains(t, resp.Error.Message, "boom")
		})
	}

	t.Run("nil error writes nothing", func(t *testing.T) {
		h := &BaseHandler{}
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		h.HandleError(c, nil)

		assert.Zero(t, w.Body.Len())
	})
}
