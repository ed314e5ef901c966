package httpapi

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/gofactcheck/internal/metrics"
)

const requestIDKey = "request_id"

// RequestID assigns each request a UUID, honoring an incoming X-Request-ID
// so upstream proxies can correlate.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

// RequestIDFrom returns the request id set by the RequestID middleware.
func RequestIDFrom(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// RequestLogger emits one structured line per request and feeds the HTTP
// metrics. The /metrics scrape itself is not logged.
func RequestLogger(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		c.Next()
		elapsed := time.Since(started)
		code := c.Writer.Status()
		m.ObserveRequest(path, code, elapsed)
		if path == "/metrics" {
			return
		}
		log.Info().
			Str("request_id", RequestIDFrom(c)).
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", code).
			Dur("elapsed", elapsed).
			Msg("request")
	}
}
