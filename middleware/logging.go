package middleware

import (
	"time"

	"newsdesk/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLogger writes one structured line per request.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch status := c.Writer.Status(); {
		case status >= 500:
			logger.Log.Error("Request", fields...)
		case status >= 400:
			logger.Log.Warn("Request", fields...)
		default:
			logger.Log.Info("Request", fields...)
		}
	}
}
