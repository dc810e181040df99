package handler

import (
	"context"
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	integrationapp "github.com/stockpulse/invsync/internal/application/integration"
	"github.com/stockpulse/invsync/internal/domain/integration"
	"github.com/stockpulse/invsync/internal/interfaces/http/dto"
	"github.com/stockpulse/invsync/internal/interfaces/http/middleware"
)

const (
	defaultLogLimit = 20
	maxLogLimit     = 100
)

// StoreSyncer runs store and product syncs
type StoreSyncer interface {
	SyncOne(ctx context.Context, storeIntegrationID uint64, syncType integration.SyncType) integrationapp.SyncOutcome
	SyncProduct(ctx context.Context, productID uint64, syncType integration.SyncType) integrationapp.SyncOutcome
}

// SyncLogReader reads sync audit logs
type SyncLogReader interface {
	FindByID(ctx context.Context, id uint64) (*integration.InventorySyncLog, error)
	FindByStore(ctx context.Context, storeIntegrationID uint64, limit int) ([]integration.InventorySyncLog, error)
}

// SyncHandler exposes sync triggers and the sync audit trail
type SyncHandler struct {
	BaseHandler
	syncer StoreSyncer
	logs   SyncLogReader
}

// NewSyncHandler creates a new SyncHandler
func NewSyncHandler(syncer StoreSyncer, logs SyncLogReader) *SyncHandler {
	return &SyncHandler{syncer: syncer, logs: logs}
}

// SyncStore triggers a sync of one store integration.
// The body is optional; sync_type defaults to webhook.
func (h *SyncHandler) SyncStore(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	syncType, ok := h.bindSyncType(c)
	if !ok {
		return
	}
	h.writeOutcome(c, h.syncer.SyncOne(c.Request.Context(), id, syncType))
}

// SyncProduct triggers a sync scoped to one product
func (h *SyncHandler) SyncProduct(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	syncType, ok := h.bindSyncType(c)
	if !ok {
		return
	}
	h.writeOutcome(c, h.syncer.SyncProduct(c.Request.Context(), id, syncType))
}

// ListStoreLogs returns the latest sync logs of a store, newest first
func (h *SyncHandler) ListStoreLogs(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	limit := defaultLogLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			h.BadRequest(c, "limit must be a positive integer")
			return
		}
		limit = min(n, maxLogLimit)
	}

	logs, err := h.logs.FindByStore(c.Request.Context(), id, limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	resp := make([]dto.SyncLogResponse, 0, len(logs))
	for i := range logs {
		resp = append(resp, dto.NewSyncLogResponse(&logs[i]))
	}
	h.Success(c, resp)
}

// GetLog returns one sync log
func (h *SyncHandler) GetLog(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	log, err := h.logs.FindByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.NewSyncLogResponse(log))
}

func (h *SyncHandler) parseID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		h.BadRequest(c, "id must be a positive integer")
		return 0, false
	}
	return id, true
}

func (h *SyncHandler) bindSyncType(c *gin.Context) (integration.SyncType, bool) {
	var req dto.TriggerSyncRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			middleware.HandleValidationError(c, err)
			return "", false
		}
	}
	if req.SyncType == "" {
		return integration.SyncTypeWebhook, true
	}
	return integration.SyncType(req.SyncType), true
}

// writeOutcome answers 200 for a completed sync. Refused syncs map through
// HandleError; syncs that failed after logging carry the outcome in data.
func (h *SyncHandler) writeOutcome(c *gin.Context, out integrationapp.SyncOutcome) {
	resp := newSyncOutcomeResponse(out)
	if out.Succeeded() {
		h.Success(c, resp)
		return
	}
	if out.Reason == integrationapp.ReasonPrecondition {
		h.HandleError(c, out.Err)
		return
	}

	code := dto.ErrCodeInternal
	if out.Reason == integrationapp.ReasonTransport {
		code = dto.ErrCodeUpstream
	}
	if errors.Is(out.Err, context.Canceled) || errors.Is(out.Err, context.DeadlineExceeded) {
		code = dto.ErrCodeUpstream
	}

	body := dto.NewErrorResponseWithRequestID(code, out.Message, getRequestID(c))
	body.Data = resp
	c.JSON(dto.GetHTTPStatus(code), body)
}

func newSyncOutcomeResponse(out integrationapp.SyncOutcome) dto.SyncOutcomeResponse {
	resp := dto.SyncOutcomeResponse{
		StoreIntegrationID: out.StoreIntegrationID,
		SyncLogID:          out.SyncLogID,
		SyncType:           string(out.SyncType),
		Success:            out.Succeeded(),
		Status:             string(out.Status),
		Reason:             out.Reason,
		Message:            out.Message,
		Created:            out.Created,
		Updated:            out.Updated,
		Skipped:            out.Skipped,
		Failed:             out.Failed,
		DurationMS:         out.Duration.Milliseconds(),
	}
	if out.Err != nil && !out.Succeeded() {
		resp.Error = out.Err.Error()
	}
	return resp
}

