package service

import appErr "coderun/pkg/errors"

// Status classifies how a submission ended.
type Status string

const (
	StatusOK                   Status = "ok"
	StatusCompileError         Status = "compile_error"
	StatusRuntimeError         Status = "runtime_error"
	StatusTimeout              Status = "timeout"
	StatusToolchainUnavailable Status = "toolchain_unavailable"
)

// Code maps a status to the error code used when logging it.
func (s Status) Code() appErr.ErrorCode {
	switch s {
	case StatusOK:
		return appErr.Success
	case StatusCompileError:
		return appErr.CompilationError
	case StatusRuntimeError:
		return appErr.RuntimeError
	case StatusTimeout:
		return appErr.TimeLimitExceeded
	case StatusToolchainUnavailable:
		return appErr.ToolchainUnavailable
	default:
		return appErr.InternalServerError
	}
}

// Request is one code submission.
type Request struct {
	Language string `json:"language"`
	Code     string `json:"code"`
	Input    string `json:"input"`
}

// Result is what the caller gets back for a handled submission.
type Result struct {
	Output   string `json:"output"`
	Error    string `json:"error"`
	Language string `json:"language"`
	Info     string `json:"info"`
	Status   Status `json:"status,omitempty"`
}

// LanguageInfo describes one supported language.
type LanguageInfo struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Compiled   bool   `json:"compiled"`
	VersionCmd string `json:"versionCmd"`
}
