package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campusconnect-api/internal/service"
)

// unmatchedRoute labels requests no route claimed so scanners cannot grow the label set.
const unmatchedRoute = "unmatched"

// Metrics observes request latency per route template. Scrapes of skip paths are not recorded.
func Metrics(metricsSvc *service.MetricsService, skip ...string) gin.HandlerFunc {
	ignored := make(map[string]struct{}, len(skip))
	for _, path := range skip {
		ignored[path] = struct{}{}
	}
	return func(c *gin.Context) {
		if metricsSvc == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if _, ok := ignored[route]; ok {
			return
		}
		if route == "" {
			route = unmatchedRoute
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
