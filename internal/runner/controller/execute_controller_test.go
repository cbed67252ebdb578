package controller_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"coderun/internal/common/http/middleware"
	"coderun/internal/runner/controller"
	"coderun/internal/runner/service"
	appErr "coderun/pkg/errors"

	"github.com/gin-gonic/gin"
)

type fakeExecutor struct {
	execute func(req service.Request) (service.Result, error)
	got     service.Request
}

func (f *fakeExecutor) Execute(ctx context.Context, req service.Request) (service.Result, error) {
	f.got = req
	return f.execute(req)
}

func (f *fakeExecutor) Languages() []service.LanguageInfo {
	return []service.LanguageInfo{{ID: "py", Name: "Python 3", VersionCmd: "python3 --version"}}
}

func newRouter(exec controller.Executor) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.Recovery(controller.RecoveryPayload))
	router.Use(middleware.TraceContext())
	h := controller.NewExecuteController(exec)
	router.POST("/api/v1/execute", h.Execute)
	router.GET("/api/v1/languages", h.Languages)
	return router
}

func post(router http.Handler, body string) (*httptest.ResponseRecorder, map[string]any) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/execute", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)

	var out map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return rec, out
}

func TestExecuteHandledOutcomes(t *testing.T) {
	cases := []struct {
		name   string
		result service.Result
	}{
		{name: "ok", result: service.Result{Output: "Hello World\n", Language: "py", Info: "Python 3.12", Status: service.StatusOK}},
		{name: "compile error", result: service.Result{Error: "error: expected ';'", Language: "cpp", Info: "g++", Status: service.StatusCompileError}},
		{name: "timeout", result: service.Result{Error: "Process timed out after 30s.", Language: "py", Status: service.StatusTimeout}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			exec := &fakeExecutor{execute: func(req service.Request) (service.Result, error) { return tc.result, nil }}
			rec, body := post(newRouter(exec), `{"language":"py","code":"print(1)","input":"abc"}`)

			if rec.Code != http.StatusOK {
				t.Fatalf("unexpected status: %d", rec.Code)
			}
			if body["output"] != tc.result.Output || body["error"] != tc.result.Error || body["status"] != string(tc.result.Status) {
				t.Fatalf("unexpected body: %v", body)
			}
			if exec.got.Input != "abc" || exec.got.Code != "print(1)" {
				t.Fatalf("request not bound: %+v", exec.got)
			}
		})
	}
}

func TestExecuteValidationErrors(t *testing.T) {
	cases := []struct {
		name    string
		body    string
		err     error
		wantMsg string
	}{
		{name: "malformed json", body: `{"language":`, wantMsg: "Invalid request body"},
		{name: "blank code", body: `{"language":"py","code":"  "}`, err: appErr.New(appErr.InvalidParams).WithMessage("No code found to execute."), wantMsg: "No code found to execute."},
		{name: "unsupported language", body: `{"language":"rust","code":"fn main(){}"}`, err: appErr.UnsupportedLanguage("rust"), wantMsg: "Language not supported: rust"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			exec := &fakeExecutor{execute: func(req service.Request) (service.Result, error) { return service.Result{}, tc.err }}
			rec, body := post(newRouter(exec), tc.body)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("unexpected status: %d", rec.Code)
			}
			if body["error"] != tc.wantMsg || body["output"] != "" {
				t.Fatalf("unexpected body: %v", body)
			}
		})
	}
}

func TestExecuteInternalErrorIsGeneric(t *testing.T) {
	exec := &fakeExecutor{execute: func(req service.Request) (service.Result, error) {
		return service.Result{}, appErr.Newf(appErr.FileSystemError, "disk full at /secret/path")
	}}
	rec, body := post(newRouter(exec), `{"language":"c","code":"int main(){}"}`)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	want := map[string]any{
		"output":   "",
		"error":    "An internal server error occurred. Please check server logs.",
		"language": "c",
		"info":     "",
	}
	if len(body) != len(want) {
		t.Fatalf("unexpected body: %v", body)
	}
	for k, v := range want {
		if body[k] != v {
			t.Fatalf("%s = %v, want %v", k, body[k], v)
		}
	}
	if strings.Contains(rec.Body.String(), "/secret/path") {
		t.Fatal("internal details leaked to the client")
	}
}

func TestExecutePanicIsGeneric(t *testing.T) {
	exec := &fakeExecutor{execute: func(req service.Request) (service.Result, error) {
		panic("unexpected")
	}}
	rec, body := post(newRouter(exec), `{"language":"java","code":"class A {}"}`)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	if body["language"] != "java" || body["error"] != "An internal server error occurred. Please check server logs." {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestLanguages(t *testing.T) {
	exec := &fakeExecutor{}
	rec := httptest.NewRecorder()
	newRouter(exec).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/languages", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	var resp struct {
		Code    int                    `json:"code"`
		Data    []service.LanguageInfo `json:"data"`
		TraceID string                 `json:"trace_id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response failed: %v", err)
	}
	if resp.Code != int(appErr.Success) || len(resp.Data) != 1 || resp.Data[0].ID != "py" || resp.TraceID == "" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}
