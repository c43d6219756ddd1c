package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/algotrack/backend/internal/infrastructure"
)

// MetricsMiddleware records request duration and count per route.
// Paths in skip (probe and scrape endpoints) are not recorded.
func MetricsMiddleware(metrics *infrastructure.TelemetryMetrics, skip ...string) gin.HandlerFunc {
	skipped := make(map[string]bool, len(skip))
	for _, p := range skip {
		skipped[p] = true
	}

	return func(c *gin.Context) {
		if skipped[c.Request.URL.Path] {
			c.Next()
			return
		}
		start := time.Now()

		c.Next()

		// route pattern keeps cardinality bounded
		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		status := c.Writer.Status()

		attrs := metric.WithAttributes(
			attribute.String("http.request.method", c.Request.Method),
			attribute.String("http.route", route),
			attribute.String("http.status_class", strconv.Itoa(status/100)+"xx"),
			attribute.Int("http.response.status_code", status),
		)
		metrics.HTTPRequestDuration.Record(c.Request.Context(), time.Since(start).Seconds(), attrs)
		metrics.HTTPRequestCount.Add(c.Request.Context(), 1, attrs)
	}
}
