package response

import (
	"net/http"

	"coderun/pkg/errors"
	"coderun/pkg/utils/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Response is the envelope used by every endpoint except execution results.
type Response struct {
	Code    errors.ErrorCode `json:"code"`
	Message string           `json:"message"`
	Data    interface{}      `json:"data,omitempty"`
	Details interface{}      `json:"details,omitempty"`
	TraceID string           `json:"trace_id,omitempty"`
}

// Success sends a successful response with data
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    errors.Success,
		Message: "Success",
		Data:    data,
		TraceID: TraceID(c),
	})
}

// Error sends an error response derived from err.
// Client errors are logged at warn, everything else at error with the stack.
func Error(c *gin.Context, err error) {
	customErr := errors.GetError(err)
	LogError(c, customErr)

	c.JSON(customErr.Code.HTTPStatus(), Response{
		Code:    customErr.Code,
		Message: customErr.Error(),
		Details: customErr.Details,
		TraceID: TraceID(c),
	})
}

// ErrorWithCode sends an error response with a specific code
func ErrorWithCode(c *gin.Context, code errors.ErrorCode, message string) {
	if message == "" {
		message = code.Message()
	}
	LogError(c, errors.New(code).WithMessage(message))

	c.JSON(code.HTTPStatus(), Response{
		Code:    code,
		Message: message,
		TraceID: TraceID(c),
	})
}

// LogError writes err to the request-scoped logger.
func LogError(c *gin.Context, err *errors.Error) {
	ctx := c.Request.Context()
	if err.Code.IsClientError() {
		logger.Warn(ctx, "request rejected",
			zap.Int("code", int(err.Code)),
			zap.String("message", err.Error()),
			zap.Any("details", err.Details),
		)
		return
	}
	logger.Error(ctx, "request error",
		zap.Int("code", int(err.Code)),
		zap.String("message", err.Error()),
		zap.Any("details", err.Details),
		zap.String("stack", err.Stack),
		zap.NamedError("cause", err.Err),
	)
}

// NotFound sends a 404 not found error
func NotFound(c *gin.Context, message string) {
	ErrorWithCode(c, errors.NotFound, message)
}

// TraceID returns the trace id set by the trace middleware.
func TraceID(c *gin.Context) string {
	if traceID, ok := c.Get("trace_id"); ok {
		if s, ok := traceID.(string); ok {
			return s
		}
	}
	return ""
}

// AbortWithError aborts the request and sends error response
func AbortWithError(c *gin.Context, err error) {
	Error(c, err)
	c.Abort()
}
