package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vertinimas/portal/internal/interfaces/http/dto"
)

// BodyLimit returns a middleware that limits request body size. overrides
// raise or lower the limit for specific route patterns such as the report
// upload.
func BodyLimit(maxBytes int64, overrides map[string]int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := maxBytes
		if l, ok := overrides[c.FullPath()]; ok {
			limit = l
		}
		if limit <= 0 {
			c.Next()
			return
		}

		if c.Request.ContentLength > limit {
			AbortWithError(c, dto.ErrCodeTooLarge, dto.ErrCodeTooLarge)
			return
		}

		// streamed bodies without a length are cut off by the reader
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}
