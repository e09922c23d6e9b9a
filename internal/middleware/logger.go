package middleware

import (
	"log/slog"
	"time"

	"accessapi/internal/logging"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const HeaderRequestID = "X-Request-ID"

// RequestLogger attaches a request-scoped logger to the request context and logs one line per
// request once the handler chain has finished.
func RequestLogger(base *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(HeaderRequestID, requestID)

		l := base.With(
			"request_id", requestID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"remote_ip", c.ClientIP(),
		)
		c.Request = c.Request.WithContext(logging.IntoContext(c.Request.Context(), l))

		c.Next()

		status := c.Writer.Status()
		attrs := []any{"status", status, "duration_ms", time.Since(start).Milliseconds()}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "errors", c.Errors.String())
		}

		switch {
		case status >= 500:
			l.Error("request completed", attrs...)
		case status >= 400:
			l.Warn("request completed", attrs...)
		default:
			l.Info("request completed", attrs...)
		}
	}
}
