package middleware

import (
	"context"

	"sourcehub/pkg/utils"

	"github.com/gin-gonic/gin"
)

const RequestIDHeader = "X-Request-ID"

// RequestIDMiddleware assigns each request an ID, reusing the caller's when
// one is supplied. The ID travels in the request context under "request_id"
// so log lines can be correlated.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = utils.GenerateRequestID()
		}

		c.Set("request_id", requestID)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), "request_id", requestID))
		c.Header(RequestIDHeader, requestID)

		c.Next()
	}
}
