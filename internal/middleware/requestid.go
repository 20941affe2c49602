package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lumabot/lumabot-backend/internal/pkg/logger"
)

const RequestIDHeader = "X-Request-ID"

type RequestIDMiddleware struct {
	log *logger.Logger
}

func NewRequestIDMiddleware(baseLog *logger.Logger) *RequestIDMiddleware {
	return &RequestIDMiddleware{log: baseLog.With("middleware", "RequestIDMiddleware")}
}

// Attach tags every request with an id, echoed in the response header,
// so relay log lines for one inbound message can be correlated.
func (m *RequestIDMiddleware) Attach() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("request_id", requestID)
		c.Writer.Header().Set(RequestIDHeader, requestID)

		m.log.Debug("Inbound request",
			"request_id", requestID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
		)
		c.Next()
	}
}
