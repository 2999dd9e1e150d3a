// README: Request logging with a correlation ID propagated through the request context.
package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"wayfarer/internal/logging"
)

// CorrelationIDHeader is read from requests and echoed on responses.
const CorrelationIDHeader = "Correlation-ID"

func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		correlationID := c.GetHeader(CorrelationIDHeader)
		if correlationID == "" {
			correlationID = uuid.NewString()
		}
		entry := logrus.WithFields(logrus.Fields{"correlation_id": correlationID})

		ctx := logging.ToContext(c.Request.Context(), entry)
		ctx = logging.ContextWithCorrelationID(ctx, correlationID)
		c.Request = c.Request.WithContext(ctx)
		c.Header(CorrelationIDHeader, correlationID)

		c.Next()

		entry.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.FullPath(),
			"status":     c.Writer.Status(),
			"latency_ms": time.Since(start).Milliseconds(),
		}).Info("http request")
	}
}
