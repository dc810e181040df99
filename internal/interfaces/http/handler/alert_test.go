package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	inventoryapp "github.com/stockpulse/invsync/internal/application/inventory"
)

type fakeChecker struct {
	res inventoryapp.CheckResult
	err error
}

func (f *fakeChecker) CheckAlerts(context.Context) (inventoryapp.CheckResult, error) {
	return f.res, f.err
}

func TestAlertHandler_CheckAlerts(t *testing.T) {
	newRouter := func(c AlertChecker) *gin.Engine {
		r := gin.New()
		r.POST("/alerts/check", NewAlertHandler(c).CheckAlerts)
		return r
	}

	t.Run("returns sweep counts", func(t *testing.T) {
		w := serve(newRouter(&fakeChecker{res: inventoryapp.CheckResult{Checked: 5, Triggered: 2, Resolved: 1, Renotified: 1}}), http.MethodPost, "/alerts/check", "")

		require.Equal(t, http.StatusOK, w.Code)
		data := decodeResponse(t, w).Data.(map[string]any)
		assert.EqualValues(t, 5, data["checked"])
		assert.EqualValues(t, 2, data["triggered"])
		assert.EqualValues(t, 1, data["resolved"])
		assert.EqualValues(t, 1, data["renotified"])
	})

	t.Run("store failure is a 500", func(t *testing.T) {
		w := serve(newRouter(&fakeChecker{err: errors.New("db down")}), http.MethodPost, "/alerts/check", "")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
