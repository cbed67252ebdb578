package errors

import (
	stderrors "errors"
	"fmt"
	"runtime"
	"strings"
)

const maxStackDepth = 10

// Error is an application error carrying a code, a client-safe message,
// optional details and the cause it wraps
type Error struct {
	Code    ErrorCode
	Message string
	Details map[string]any
	Err     error
	Stack   string
}

func newError(code ErrorCode, msg string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: msg,
		Details: map[string]any{},
		Err:     cause,
		Stack:   captureStack(3),
	}
}

// Error returns the message, falling back to the code's default
func (e *Error) Error() string {
	if e.Message == "" {
		return e.Code.Message()
	}
	return e.Message
}

// Unwrap exposes the cause to errors.Is and errors.As
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an error with the code's default message
func New(code ErrorCode) *Error {
	return newError(code, code.Message(), nil)
}

// Newf creates an error with a formatted message
func Newf(code ErrorCode, format string, args ...any) *Error {
	return newError(code, fmt.Sprintf(format, args...), nil)
}

// Wrap attaches code to err, keeping err's text as the message
// Wrapping one of our errors returns a copy; the original is left untouched
func Wrap(err error, code ErrorCode) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if stderrors.As(err, &e) {
		cp := *e
		cp.Code = code
		cp.Details = cloneDetails(e.Details)
		return &cp
	}
	return newError(code, err.Error(), err)
}

// Wrapf attaches code and a formatted message to err
func Wrapf(err error, code ErrorCode, format string, args ...any) *Error {
	if err == nil {
		return nil
	}
	return newError(code, fmt.Sprintf(format, args...), err)
}

// WithMessage replaces the message
func (e *Error) WithMessage(msg string) *Error {
	e.Message = msg
	return e
}

// WithDetail records a key/value pair for logs
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = map[string]any{}
	}
	e.Details[key] = value
	return e
}

// GetCode returns the code of the outermost *Error in the chain
// Foreign errors report InternalServerError
func GetCode(err error) ErrorCode {
	if err == nil {
		return Success
	}
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code
	}
	return InternalServerError
}

// GetError returns the outermost *Error in the chain, wrapping foreign
// errors as InternalServerError
func GetError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if stderrors.As(err, &e) {
		return e
	}
	return InternalError(err)
}

// Is reports whether any *Error in the chain carries code
func Is(err error, code ErrorCode) bool {
	for err != nil {
		var e *Error
		if !stderrors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.Err
	}
	return false
}

func cloneDetails(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func captureStack(skip int) string {
	var pcs [maxStackDepth]uintptr
	n := runtime.Callers(skip+1, pcs[:])
	if n == 0 {
		return ""
	}

	var b strings.Builder
	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()
		if !strings.HasPrefix(frame.Function, "runtime.") {
			fmt.Fprintf(&b, "\n\t%s:%d %s", frame.File, frame.Line, frame.Function)
		}
		if !more {
			return b.String()
		}
	}
}

// BadRequest is an InvalidParams error with msg
func BadRequest(msg string) *Error {
	return newError(InvalidParams, msg, nil)
}

// InternalError wraps err as InternalServerError
func InternalError(err error) *Error {
	if err == nil {
		return newError(InternalServerError, InternalServerError.Message(), nil)
	}
	return newError(InternalServerError, err.Error(), err)
}

// ValidationError reports a rejected field
func ValidationError(field, reason string) *Error {
	return newError(ValidationFailed, fmt.Sprintf("%s: %s", field, reason), nil).
		WithDetail("field", field).
		WithDetail("reason", reason)
}

// UnsupportedLanguage is returned for an unknown language tag
func UnsupportedLanguage(language string) *Error {
	return Newf(LanguageNotSupported, "Language not supported: %s", language).
		WithDetail("language", language)
}
