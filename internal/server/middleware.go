package server

import (
	"log/slog"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/amishk599/uxcelerator/internal/requestid"
)

// RequestIDMiddleware ensures every request has a stable request ID.
// It reads X-Request-Id if present and generates one otherwise, stores it in
// the request context, echoes it back, and logs the request once it finishes.
func RequestIDMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(requestid.Header)
		if strings.TrimSpace(rid) == "" {
			rid = requestid.New()
		}

		c.Set("request_id", rid)
		c.Request = c.Request.WithContext(requestid.With(c.Request.Context(), rid))
		c.Writer.Header().Set(requestid.Header, rid)

		start := time.Now()
		c.Next()

		logger.Info("request",
			"request_id", rid,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
		)
	}
}
