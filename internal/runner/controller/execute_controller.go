package controller

import (
	"context"
	"net/http"

	"coderun/internal/runner/service"
	appErr "coderun/pkg/errors"
	"coderun/pkg/utils/response"

	"github.com/gin-gonic/gin"
)

const (
	languageContextKey   = "language"
	internalErrorMessage = "An internal server error occurred. Please check server logs."
)

// Executor runs submissions.
type Executor interface {
	Execute(ctx context.Context, req service.Request) (service.Result, error)
	Languages() []service.LanguageInfo
}

// ExecuteController serves the execution API.
type ExecuteController struct {
	executor Executor
}

// NewExecuteController creates a new controller.
func NewExecuteController(executor Executor) *ExecuteController {
	return &ExecuteController{executor: executor}
}

// Execute runs one submission and returns its result.
// Handled outcomes, compile errors and timeouts included, are 200.
func (h *ExecuteController) Execute(c *gin.Context) {
	var req service.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		writeFailure(c, req.Language, appErr.Wrapf(err, appErr.InvalidParams, "Invalid request body"))
		return
	}
	c.Set(languageContextKey, req.Language)

	result, err := h.executor.Execute(c.Request.Context(), req)
	if err != nil {
		writeFailure(c, req.Language, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Languages lists the supported languages.
func (h *ExecuteController) Languages(c *gin.Context) {
	response.Success(c, h.executor.Languages())
}

// InternalErrorResult is the body sent for any unexpected failure.
// It never carries the cause.
func InternalErrorResult(language string) service.Result {
	return service.Result{Error: internalErrorMessage, Language: language}
}

// RecoveryPayload builds the panic response for routes served by this controller.
func RecoveryPayload(c *gin.Context) any {
	return InternalErrorResult(c.GetString(languageContextKey))
}

// writeFailure keeps the execution result shape for errors: validation
// problems are echoed with 400, everything else is hidden behind a 500.
func writeFailure(c *gin.Context, language string, err error) {
	customErr := appErr.GetError(err)
	response.LogError(c, customErr)

	if customErr.Code.IsClientError() {
		c.JSON(customErr.Code.HTTPStatus(), service.Result{Error: customErr.Error(), Language: language})
		return
	}
	c.JSON(http.StatusInternalServerError, InternalErrorResult(language))
}
