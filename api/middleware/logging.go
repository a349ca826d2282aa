package middleware

import (
	"errors"
	"net/http"
	"time"

	"empowerpwd/api/response"
	"empowerpwd/logger"

	"github.com/gin-gonic/gin"
)

var errPanic = errors.New("panic")

// LoggingMiddleware writes one structured line per request.
func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
		}
		if id := CurrentUserID(c); id != 0 {
			fields = append(fields, "user_id", id)
		}
		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			logger.Log.Errorw("request", fields...)
		case status >= http.StatusBadRequest:
			logger.Log.Warnw("request", fields...)
		default:
			logger.Log.Infow("request", fields...)
		}
	}
}

// Recovery turns panics into the regular error envelope.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Log.Errorf("panic serving %s %s: %v", c.Request.Method, c.Request.URL.Path, recovered)
		response.Error(c, errPanic)
	})
}
