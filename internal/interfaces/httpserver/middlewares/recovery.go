package middlewares

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/codedrop/relay/internal/utils/platformerrors"
)

const errUUIDPanic = "5f0c2b7e-8a41-4d3e-9b6a-1c7e2f4d8a01"

// Recovery turns a handler panic into the standard JSON error envelope.
func Recovery(log zerolog.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		err := platformerrors.NewError(c.Request.Context(), platformerrors.LayerHandler,
			platformerrors.ErrorTypeInternal, "Server error", fmt.Errorf("panic: %v", recovered), errUUIDPanic)
		if c.Writer.Written() {
			platformerrors.LogError(log, err)
			c.Abort()
			return
		}
		platformerrors.WriteHTTPError(c, err, log)
	})
}
