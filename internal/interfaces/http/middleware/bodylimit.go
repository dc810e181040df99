package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stockpulse/invsync/internal/interfaces/http/dto"
)

// DefaultBodyLimit caps webhook bodies; trigger payloads are tiny
const DefaultBodyLimit = 64 << 10

// BodyLimit rejects bodies larger than maxBytes
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeRequestTooLarge,
				"Request body exceeds maximum allowed size",
				getRequestID(c),
			))
			return
		}

		// streamed bodies without Content-Length are cut off by the reader
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
