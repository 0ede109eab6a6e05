package middleware

import (
	"time"

	"sourcehub/pkg/logger"

	"github.com/gin-gonic/gin"
)

// LoggingMiddleware emits one structured line per request, tagged with the
// request ID that RequestIDMiddleware placed in the context.
func LoggingMiddleware(contextLogger *logger.ContextLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		contextLogger.LogRequest(
			c.Request.Context(),
			c.Request.Method,
			path,
			c.Writer.Status(),
			time.Since(start).Milliseconds(),
		)
	}
}
