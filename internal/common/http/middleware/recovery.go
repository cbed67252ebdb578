package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"coderun/pkg/utils/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Recovery turns a panic into a 500 whose body is built by payload.
// The panic value and stack are only logged.
func Recovery(payload func(c *gin.Context) any) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered any) {
		logger.Error(c.Request.Context(), "panic recovered",
			zap.String("panic", fmt.Sprint(recovered)),
			zap.ByteString("stack", debug.Stack()),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, payload(c))
	})
}
