// README: Access log middleware.
package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"travelbook/internal/logger"
)

func Logging(log logger.ILogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []logger.Field{
			logger.String("method", c.Request.Method),
			logger.String("route", c.FullPath()),
			logger.String("path", c.Request.URL.Path),
			logger.Int("status", c.Writer.Status()),
			logger.Duration("latency", time.Since(start)),
			logger.String("request_id", RequestIDFrom(c)),
		}
		if uid := CallerUID(c); uid != "" {
			fields = append(fields, logger.String("uid", uid))
		}
		switch {
		case c.Writer.Status() >= 500:
			log.Error("request", fields...)
		case c.Writer.Status() >= 400:
			log.Warning("request", fields...)
		default:
			log.Info("request", fields...)
		}
	}
}
