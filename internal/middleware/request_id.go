package middleware

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid/v5"

	"storefront/internal/httpclient"
)

const (
	RequestIDHeader = "X-Request-ID"
	requestIDKey    = "requestId"
)

// RequestID tags each console request with an id, echoes it in the response and
// forwards it on every backend call made while serving the request.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(RequestIDHeader))
		if id == "" || len(id) > 64 {
			generated, err := uuid.NewV7()
			if err != nil {
				slog.Warn("request id generation failed", "err", err)
			} else {
				id = generated.String()
			}
		}

		if id != "" {
			c.Set(requestIDKey, id)
			c.Header(RequestIDHeader, id)
			c.Request = c.Request.WithContext(httpclient.WithRequestID(c.Request.Context(), id))
		}
		c.Next()
	}
}
