package response

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"coderun/pkg/errors"

	"github.com/gin-gonic/gin"
)

func newContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Set("trace_id", "trace-1")
	return c, w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
	return resp
}

func TestSuccess(t *testing.T) {
	c, w := newContext()
	Success(c, map[string]string{"k": "v"})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	resp := decode(t, w)
	if resp.Code != errors.Success || resp.TraceID != "trace-1" {
		t.Fatalf("unexpected envelope: %+v", resp)
	}
}

func TestError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   errors.ErrorCode
	}{
		{
			name:       "client error",
			err:        errors.UnsupportedLanguage("cobol"),
			wantStatus: http.StatusBadRequest,
			wantCode:   errors.LanguageNotSupported,
		},
		{
			name:       "plain error",
			err:        stderrors.New("disk gone"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   errors.InternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newContext()
			AbortWithError(c, tt.err)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if !c.IsAborted() {
				t.Fatalf("expected context to be aborted")
			}
			if resp := decode(t, w); resp.Code != tt.wantCode {
				t.Fatalf("code = %d, want %d", resp.Code, tt.wantCode)
			}
		})
	}
}

func TestNotFoundUsesDefaultMessage(t *testing.T) {
	c, w := newContext()
	NotFound(c, "")

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	if resp := decode(t, w); resp.Message != errors.NotFound.Message() {
		t.Fatalf("message = %q", resp.Message)
	}
}
