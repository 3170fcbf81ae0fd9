package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/OldStager01/parksense/internal/logger"
)

// RequestLogger writes one entry per request. Probe traffic on /health is
// logged at debug so it does not drown the dashboard's own calls.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := map[string]interface{}{
			"status":     status,
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"latency_ms": time.Since(start).Milliseconds(),
			"ip":         c.ClientIP(),
		}
		optional := map[string]string{
			"query":    c.Request.URL.RawQuery,
			"route":    c.FullPath(),
			"spot_id":  c.Param("id"),
			"trace_id": GetTraceID(c),
			"username": GetUsername(c),
		}
		for k, v := range optional {
			if v != "" {
				fields[k] = v
			}
		}
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.String()
		}

		entry := logger.WithFields(fields)
		switch {
		case status >= 500:
			entry.Error("request failed")
		case status >= 400:
			entry.Warn("request rejected")
		case strings.HasPrefix(c.Request.URL.Path, "/health"):
			entry.Debug("probe served")
		default:
			entry.Info("request served")
		}
	}
}
