package errors

import "net/http"

// ErrorCode identifies an application error
// 10xxx common, 11xxx authentication, 13xxx submission and execution
type ErrorCode int

const (
	Success ErrorCode = 10000

	InternalServerError ErrorCode = 10001
	InvalidParams       ErrorCode = 10002
	NotFound            ErrorCode = 10003
	Unauthorized        ErrorCode = 10004

	ValidationFailed ErrorCode = 10300

	TokenExpired ErrorCode = 11003
	TokenInvalid ErrorCode = 11004

	CodeTooLarge         ErrorCode = 13002
	LanguageNotSupported ErrorCode = 13003

	CompilationError     ErrorCode = 13102
	RuntimeError         ErrorCode = 13103
	TimeLimitExceeded    ErrorCode = 13104
	OutputLimitExceeded  ErrorCode = 13106
	ToolchainUnavailable ErrorCode = 13107
	FileSystemError      ErrorCode = 13108
)

// errorMessages are the default client-facing messages
var errorMessages = map[ErrorCode]string{
	// System & Common
	Success:             "Success",
	InternalServerError: "Internal server error",
	InvalidParams:       "Invalid parameters",
	NotFound:            "Resource not found",
	Unauthorized:        "Unauthorized access",

	// Validation
	ValidationFailed: "Validation failed",

	// Authentication
	TokenExpired: "Token has expired",
	TokenInvalid: "Invalid token",

	// Submission
	CodeTooLarge:         "Code is too large",
	LanguageNotSupported: "Programming language not supported",

	// Execution
	CompilationError:     "Compilation error",
	RuntimeError:         "Runtime error",
	TimeLimitExceeded:    "Time limit exceeded",
	OutputLimitExceeded:  "Output limit exceeded",
	ToolchainUnavailable: "Toolchain is not available",
	FileSystemError:      "Job file operation failed",
}

// Message returns the default message for c
func (c ErrorCode) Message() string {
	if msg, ok := errorMessages[c]; ok {
		return msg
	}
	return "Unknown error"
}

// HTTPStatus maps a code to the status the HTTP boundary should answer with
func (c ErrorCode) HTTPStatus() int {
	switch c {
	case Success:
		return http.StatusOK
	case InvalidParams, ValidationFailed, LanguageNotSupported, CodeTooLarge:
		return http.StatusBadRequest
	case Unauthorized, TokenExpired, TokenInvalid:
		return http.StatusUnauthorized
	case NotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// IsClientError reports whether the code blames the caller's input
func (c ErrorCode) IsClientError() bool {
	status := c.HTTPStatus()
	return status >= 400 && status < 500
}
