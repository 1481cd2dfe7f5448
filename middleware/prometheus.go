package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/songquanpeng/apitest/monitor"
)

// PrometheusMiddleware counts handled requests by route and status code.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		monitor.RecordHTTPRequest(path, c.Writer.Status())
	}
}
