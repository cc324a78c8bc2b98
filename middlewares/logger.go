package middlewares

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/gourmet-house/metrics"
	"github.com/yeremiapane/gourmet-house/utils"
)

func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.RecordHTTPRequest(c.Request.Method, route, strconv.Itoa(status), latency)

		if raw != "" {
			path = path + "?" + raw
		}

		entry := utils.InfoLogger.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"status":     status,
			"latency":    latency.String(),
			"path":       path,
			"ip":         c.ClientIP(),
			"request_id": c.GetString(RequestIDKey),
		})
		switch {
		case status >= 500:
			entry.Warn("request failed")
		default:
			entry.Info("request handled")
		}
	}
}
