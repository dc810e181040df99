package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stockpulse/invsync/internal/domain/catalog"
	"github.com/stockpulse/invsync/internal/domain/integration"
	"github.com/stockpulse/invsync/internal/domain/shared"
	"github.com/stockpulse/invsync/internal/infrastructure/logger"
	"github.com/stockpulse/invsync/internal/interfaces/http/dto"
)

// RequestIDKey is the header carrying the request ID
const RequestIDKey = "X-Request-ID"

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getRequestID prefers the correlation ID bound by the logging middleware
func getRequestID(c *gin.Context) string {
	if id := logger.GetCorrelationID(c.Request.Context()); id != "" {
		return id
	}
	if id := c.GetHeader(RequestIDKey); id != "" {
		return id
	}
	return ""
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// ErrorWithCode sends an error response, deriving status code from error code
func (h *BaseHandler) ErrorWithCode(c *gin.Context, code, message string) {
	h.Error(c, dto.GetHTTPStatus(code), code, message)
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// NotFound sends a 404 not found response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, message)
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// errorMapping maps sentinel errors of the sync domain to API codes
var errorMapping = []struct {
	err     error
	code    string
	message string
}{
	{integration.ErrStoreNotFound, dto.ErrCodeNotFound, "Store integration not found"},
	{catalog.ErrProductNotFound, dto.ErrCodeNotFound, "Product not found"},
	{integration.ErrSyncLogNotFound, dto.ErrCodeNotFound, "Sync log not found"},
	{integration.ErrSyncInProgress, dto.ErrCodeSyncInProgress, "A sync is already running for this store"},
	{integration.ErrStoreInactive, dto.ErrCodePrecondition, "Store integration is inactive"},
	{integration.ErrTokenExpired, dto.ErrCodePrecondition, "Store access token has expired"},
	{integration.ErrPlatformNotSupported, dto.ErrCodePrecondition, "Store platform is not supported"},
	{integration.ErrInvalidPlatform, dto.ErrCodePrecondition, "Store platform is invalid"},
	{integration.ErrPlatformAuth, dto.ErrCodeUpstream, "Store platform rejected the credentials"},
	{integration.ErrPlatformRateLimited, dto.ErrCodeUpstream, "Store platform rate limit reached"},
	{integration.ErrPlatformRequest, dto.ErrCodeUpstream, "Store platform request failed"},
	{integration.ErrInvalidResponse, dto.ErrCodeUpstream, "Store platform returned an invalid response"},
}

// HandleError converts domain errors to HTTP responses. Unknown errors become a 500
// without leaking their text.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	for _, m := range errorMapping {
		if errors.Is(err, m.err) {
			h.ErrorWithCode(c, m.code, m.message)
			return
		}
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		h.ErrorWithCode(c, dto.NormalizeErrorCode(domainErr.Code), domainErr.Message)
		return
	}

	_ = c.Error(err)
	h.InternalError(c, "An unexpected error occurred")
}
