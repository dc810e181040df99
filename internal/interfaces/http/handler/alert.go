package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	inventoryapp "github.com/stockpulse/invsync/internal/application/inventory"
	"github.com/stockpulse/invsync/internal/interfaces/http/dto"
)

// AlertChecker sweeps armed alerts against current stock
type AlertChecker interface {
	CheckAlerts(ctx context.Context) (inventoryapp.CheckResult, error)
}

// AlertHandler exposes the alert sweep
type AlertHandler struct {
	BaseHandler
	checker AlertChecker
}

// NewAlertHandler creates a new AlertHandler
func NewAlertHandler(checker AlertChecker) *AlertHandler {
	return &AlertHandler{checker: checker}
}

// CheckAlerts evaluates every armed alert and re-notifies due ones
func (h *AlertHandler) CheckAlerts(c *gin.Context) {
	res, err := h.checker.CheckAlerts(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.CheckAlertsResponse{
		Checked:    res.Checked,
		Triggered:  res.Triggered,
		Resolved:   res.Resolved,
		Renotified: res.Renotified,
	})
}
