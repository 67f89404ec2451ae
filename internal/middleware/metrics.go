package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/universe-app/universe/pkg/metrics"
)

// Metrics records request counters and latency for each HTTP request.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		status := strconv.Itoa(c.Writer.Status())
		metrics.HTTPRequests.WithLabelValues(c.Request.Method, path, status).Inc()
		metrics.HTTPLatency.WithLabelValues(c.Request.Method, path).Observe(duration)
	}
}
