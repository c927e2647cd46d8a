package middlewares

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/codedrop/relay/internal/utils/platformerrors"
)

// Timeout bounds every request with a deadline. Store calls inherit the
// request context, so a slow backend surfaces as a 504 unless the handler
// already wrote a response.
func Timeout(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if timeout <= 0 {
			c.Next()
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !c.Writer.Written() {
			c.AbortWithStatusJSON(http.StatusGatewayTimeout, platformerrors.HTTPErrorResponse{
				Message:   "Request timeout",
				Type:      "timeout_error",
				RequestID: GetRequestID(c),
			})
		}
	}
}
